package payment

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/vibast-solutions/ms-go-season-tickets/app/entity"
)

type fakePackageFinder struct {
	pkg *entity.Package
	err error
}

func (f *fakePackageFinder) FindByID(context.Context, uint64) (*entity.Package, error) {
	return f.pkg, f.err
}

func TestStubGatewayChargesListPrice(t *testing.T) {
	gw := NewStubGateway(&fakePackageFinder{pkg: &entity.Package{ID: 3, PriceCents: 500000}})

	res, err := gw.Charge(context.Background(), 1, 3)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !res.Success || res.AmountCents != 500000 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if !strings.HasPrefix(res.TransactionID, "stub-") {
		t.Fatalf("unexpected transaction id: %q", res.TransactionID)
	}
}

func TestStubGatewayDeclinesUnknownPackage(t *testing.T) {
	gw := NewStubGateway(&fakePackageFinder{})

	res, err := gw.Charge(context.Background(), 1, 99)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if res.Success {
		t.Fatalf("expected declined charge, got %+v", res)
	}
}

func TestStubGatewayPropagatesLookupError(t *testing.T) {
	gw := NewStubGateway(&fakePackageFinder{err: errors.New("db down")})

	if _, err := gw.Charge(context.Background(), 1, 3); err == nil {
		t.Fatal("expected error")
	}
}

func TestStubGatewayHonoursCancelledContext(t *testing.T) {
	gw := NewStubGateway(&fakePackageFinder{pkg: &entity.Package{PriceCents: 1}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := gw.Charge(ctx, 1, 3); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
