package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"payment_records/internal/domain/entities"
	"payment_records/internal/domain/validation"
	"payment_records/internal/usecase/interfaces"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrPaymentNotFound        = errors.New("payment not found")
	ErrInvalidPaymentID       = errors.New("invalid payment id")
	ErrInvalidDebitCode       = errors.New("debit code must be a positive integer")
	ErrDebitCodeAlreadyExists = errors.New("a payment with this debit code already exists")
	ErrInvalidDocument        = errors.New("invalid payer document (CPF/CNPJ)")
	ErrInvalidAmount          = errors.New("payment amount must be greater than zero")
	ErrStatusRequired         = errors.New("status is required")
	ErrInvalidStatus          = errors.New("invalid payment status")
)

// CreatePaymentCommand carries the caller input for a new payment.
type CreatePaymentCommand struct {
	DebitCode     int64
	PayerDocument string
	Method        entities.PaymentMethod
	CardNumber    string
	Amount        decimal.Decimal
}

//go:generate mockgen -destination=../adapter/http/handlers/mocks/payment_usecase_mock.go -package=mocks payment_records/internal/usecase IPaymentUseCase

// IPaymentUseCase exposes the payment record operations:
//   - Create validates and stores a new pending payment.
//   - UpdateStatus moves a payment through the status state machine.
//   - SoftDelete deactivates a pending payment.
//   - GetByID and List are read-only queries; List only returns active payments.

type IPaymentUseCase interface {
	Create(ctx context.Context, cmd CreatePaymentCommand) (entities.Payment, error)
	UpdateStatus(ctx context.Context, id string, status *entities.PaymentStatus) (entities.Payment, error)
	SoftDelete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (entities.Payment, bool, error)
	List(ctx context.Context, filter entities.PaymentFilter) ([]entities.Payment, error)
	Health(ctx context.Context) error
}

type PaymentUseCase struct {
	repo interfaces.IPaymentRepository
	now  func() time.Time
}

var _ IPaymentUseCase = (*PaymentUseCase)(nil)

func NewPaymentUseCase(repo interfaces.IPaymentRepository) *PaymentUseCase {
	return &PaymentUseCase{repo: repo, now: time.Now}
}

func (u *PaymentUseCase) Create(ctx context.Context, cmd CreatePaymentCommand) (entities.Payment, error) {
	log.Printf("[payment][usecase] create start debit_code=%d method=%s", cmd.DebitCode, cmd.Method)
	if cmd.DebitCode <= 0 {
		return entities.Payment{}, ErrInvalidDebitCode
	}

	var created entities.Payment
	err := u.repo.WithinTransaction(ctx, func(repo interfaces.IPaymentRepository) error {
		if err := validateNewPayment(ctx, repo, cmd); err != nil {
			return err
		}

		amount := validation.NormalizeAmount(cmd.Amount)
		if !amount.IsPositive() {
			log.Printf("[payment][usecase] invalid amount debit_code=%d amount=%s", cmd.DebitCode, cmd.Amount)
			return ErrInvalidAmount
		}

		now := u.now().UTC()
		p := entities.Payment{
			DebitCode:     cmd.DebitCode,
			PayerDocument: validation.NormalizeDocument(cmd.PayerDocument),
			Method:        cmd.Method,
			CardNumber:    validation.MaskCard(cmd.Method, cmd.CardNumber),
			Amount:        amount,
			State:         entities.NewPaymentState(),
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		saved, err := repo.Save(ctx, p)
		if err != nil {
			if errors.Is(err, interfaces.ErrDuplicateDebitCode) {
				log.Printf("[payment][usecase] debit code taken by concurrent writer debit_code=%d", cmd.DebitCode)
				return ErrDebitCodeAlreadyExists
			}
			return err
		}
		created = saved
		return nil
	})
	if err != nil {
		log.Printf("[payment][usecase] create failed debit_code=%d err=%v", cmd.DebitCode, err)
		return entities.Payment{}, err
	}

	log.Printf("[payment][usecase] create success payment_id=%s debit_code=%d", created.ID, created.DebitCode)
	return created, nil
}

// validateNewPayment applies the creation rules in order: duplicate debit
// code, payer document, then method and card number consistency.
func validateNewPayment(ctx context.Context, repo interfaces.IPaymentRepository, cmd CreatePaymentCommand) error {
	existing, err := repo.FindByDebitCode(ctx, cmd.DebitCode)
	if err != nil {
		return err
	}
	// Inactive payments still hold their debit code.
	if existing.Exists() {
		log.Printf("[payment][usecase] duplicate debit code debit_code=%d existing_id=%s", cmd.DebitCode, existing.ID)
		return ErrDebitCodeAlreadyExists
	}

	if !validation.ValidateDocument(cmd.PayerDocument) {
		return ErrInvalidDocument
	}

	if !cmd.Method.IsValid() {
		return fmt.Errorf("%w: %q", validation.ErrInvalidPaymentMethod, cmd.Method)
	}
	return validation.ValidateCardConsistency(cmd.Method, cmd.CardNumber)
}

func (u *PaymentUseCase) UpdateStatus(ctx context.Context, id string, status *entities.PaymentStatus) (entities.Payment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Payment{}, ErrInvalidPaymentID
	}
	if status == nil {
		return entities.Payment{}, ErrStatusRequired
	}
	if !status.IsValid() {
		return entities.Payment{}, fmt.Errorf("%w: %q", ErrInvalidStatus, *status)
	}
	log.Printf("[payment][usecase] update-status start payment_id=%s target=%s", id, *status)

	var updated entities.Payment
	err := u.repo.WithinTransaction(ctx, func(repo interfaces.IPaymentRepository) error {
		p, err := repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if !p.Exists() {
			return ErrPaymentNotFound
		}

		previous := p.State.Status
		next, err := p.State.TransitionTo(*status)
		if err != nil {
			log.Printf("[payment][usecase] transition rejected payment_id=%s active=%t %s -> %s", id, p.State.Active, previous, *status)
			return err
		}
		p.State = next
		p.UpdatedAt = u.now().UTC()

		saved, err := repo.Save(ctx, p)
		if err != nil {
			return err
		}
		log.Printf("[payment][usecase] status updated payment_id=%s %s -> %s", id, previous, saved.State.Status)
		updated = saved
		return nil
	})
	if err != nil {
		return entities.Payment{}, err
	}
	return updated, nil
}

func (u *PaymentUseCase) SoftDelete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrInvalidPaymentID
	}
	log.Printf("[payment][usecase] soft-delete start payment_id=%s", id)

	return u.repo.WithinTransaction(ctx, func(repo interfaces.IPaymentRepository) error {
		p, err := repo.FindActiveByID(ctx, id)
		if err != nil {
			return err
		}
		if !p.Exists() {
			return ErrPaymentNotFound
		}

		next, err := p.State.Deactivate()
		if err != nil {
			log.Printf("[payment][usecase] soft-delete rejected payment_id=%s status=%s", id, p.State.Status)
			return err
		}
		p.State = next
		p.UpdatedAt = u.now().UTC()

		if _, err := repo.Save(ctx, p); err != nil {
			return err
		}
		log.Printf("[payment][usecase] soft-delete success payment_id=%s", id)
		return nil
	})
}

func (u *PaymentUseCase) GetByID(ctx context.Context, id string) (entities.Payment, bool, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Payment{}, false, nil
	}

	p, err := u.repo.FindByID(ctx, id)
	if err != nil {
		return entities.Payment{}, false, err
	}
	return p, p.Exists(), nil
}

func (u *PaymentUseCase) List(ctx context.Context, filter entities.PaymentFilter) ([]entities.Payment, error) {
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, *filter.Status)
	}
	if filter.PayerDocument != nil {
		doc := validation.NormalizeDocument(*filter.PayerDocument)
		if doc == "" {
			filter.PayerDocument = nil
		} else {
			filter.PayerDocument = &doc
		}
	}

	payments, err := u.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	if payments == nil {
		payments = []entities.Payment{}
	}
	return payments, nil
}

// Health reports whether the payment storage is reachable.
func (u *PaymentUseCase) Health(ctx context.Context) error {
	return u.repo.Ping(ctx)
}
