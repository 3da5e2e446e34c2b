package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vibast-solutions/ms-go-season-tickets/app/entity"
)

var ErrPackageNotFound = errors.New("package not found")

type packageFinder interface {
	FindByID(ctx context.Context, id uint64) (*entity.Package, error)
}

// StubGateway approves every charge for the package's list price. It stands in
// for a real processor, which is outside this service.
type StubGateway struct {
	packages packageFinder
}

func NewStubGateway(packages packageFinder) *StubGateway {
	return &StubGateway{packages: packages}
}

func (g *StubGateway) Charge(ctx context.Context, _ uint64, packageID uint64) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	pkg, err := g.packages.FindByID(ctx, packageID)
	if err != nil {
		return Result{}, fmt.Errorf("load package %d: %w", packageID, err)
	}
	if pkg == nil {
		return Result{Success: false, Error: ErrPackageNotFound.Error()}, nil
	}

	return Result{
		Success:       true,
		AmountCents:   pkg.PriceCents,
		TransactionID: "stub-" + uuid.NewString(),
	}, nil
}
