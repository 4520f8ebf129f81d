package repository

import (
	"context"
	"os"

	"payment_records/internal/usecase/interfaces"
)

const amountScale = 2

// Store is a payment repository that can also create its own schema.
type Store interface {
	interfaces.IPaymentRepository
	Migrate(ctx context.Context) error
}

var (
	_ Store = (*PaymentGormRepository)(nil)
	_ Store = (*PaymentDynamoRepository)(nil)
)

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
