package payment

import "context"

// Result of a single charge attempt. AmountCents is meaningful only when
// Success is true.
type Result struct {
	Success       bool
	AmountCents   int64
	TransactionID string
	Error         string
}

// Gateway charges a user for one year of a package. A returned error means the
// attempt could not be completed; a declined charge is Success=false.
// Implementations are expected to honour ctx deadlines.
type Gateway interface {
	Charge(ctx context.Context, userID, packageID uint64) (Result, error)
}
