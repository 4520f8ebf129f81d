package interfaces

import (
	"context"
	"errors"

	"payment_records/internal/domain/entities"
)

var (
	// ErrDuplicateDebitCode is returned by Save when the storage-level
	// uniqueness constraint on the debit code rejects an insert.
	ErrDuplicateDebitCode = errors.New("debit code already stored")
	// ErrConcurrentUpdate is returned by Save when the stored version no longer
	// matches the one that was loaded.
	ErrConcurrentUpdate = errors.New("payment was modified concurrently")
)

//go:generate mockgen -source=payment_repository_interface.go -destination=mocks/payment_repository_interface_mock.go -package=mock_interfaces

// IPaymentRepository abstracts persistence for Payment.
//
// Lookups return the zero Payment (ID == "") when nothing matches.
// Save inserts when ID is empty, assigning the ID, and updates otherwise.
// FindAll only returns active payments.
//
// WithinTransaction runs fn as one unit of work; fn must use the repository it
// receives so its reads and writes share the same transaction.

type IPaymentRepository interface {
	FindByDebitCode(ctx context.Context, debitCode int64) (entities.Payment, error)
	FindByID(ctx context.Context, id string) (entities.Payment, error)
	FindActiveByID(ctx context.Context, id string) (entities.Payment, error)
	FindAll(ctx context.Context, filter entities.PaymentFilter) ([]entities.Payment, error)
	Save(ctx context.Context, p entities.Payment) (entities.Payment, error)
	WithinTransaction(ctx context.Context, fn func(repo IPaymentRepository) error) error
	Ping(ctx context.Context) error
}
