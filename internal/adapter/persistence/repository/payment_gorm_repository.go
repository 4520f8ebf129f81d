package repository

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"payment_records/internal/domain/entities"
	"payment_records/internal/usecase/interfaces"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const pgUniqueViolation = "23505"

type paymentRecord struct {
	ID            string          `gorm:"column:id;type:varchar(36);primaryKey"`
	DebitCode     int64           `gorm:"column:debit_code;not null;uniqueIndex:uq_payments_debit_code"`
	PayerDocument string          `gorm:"column:payer_document;size:14;not null;index:idx_payments_payer_document"`
	Method        string          `gorm:"column:payment_method;size:30;not null"`
	CardNumber    *string         `gorm:"column:card_number;size:20"`
	Amount        decimal.Decimal `gorm:"column:amount;type:decimal(17,2);not null"`
	Status        string          `gorm:"column:status;size:40;not null;index:idx_payments_status"`
	Active        bool            `gorm:"column:active;not null"`
	Version       int64           `gorm:"column:version;not null"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime:false"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime:false"`
}

func (paymentRecord) TableName() string {
	return "payments"
}

// PaymentGormRepository persists Payment entities in Postgres through GORM.
//
// Table requirements (created by Migrate):
//   - PK: id
//   - unique index on debit_code, so concurrent creates cannot both win
//   - indexes on payer_document and status for the listing filters
//
// Inside WithinTransaction, single-row loads take a row lock (SELECT ... FOR UPDATE).

type PaymentGormRepository struct {
	db    *gorm.DB
	inTx  bool
	newID func() string
}

var _ interfaces.IPaymentRepository = (*PaymentGormRepository)(nil)

func NewPaymentGormRepository(db *gorm.DB) *PaymentGormRepository {
	return &PaymentGormRepository{db: db, newID: uuid.NewString}
}

// Migrate creates or updates the payments table and its indexes.
func (r *PaymentGormRepository) Migrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&paymentRecord{})
}

func (r *PaymentGormRepository) WithinTransaction(ctx context.Context, fn func(repo interfaces.IPaymentRepository) error) error {
	if r.inTx {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PaymentGormRepository{db: tx, inTx: true, newID: r.newID})
	})
}

func (r *PaymentGormRepository) FindByDebitCode(ctx context.Context, debitCode int64) (entities.Payment, error) {
	return r.first(ctx, "debit_code = ?", debitCode)
}

func (r *PaymentGormRepository) FindByID(ctx context.Context, id string) (entities.Payment, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *PaymentGormRepository) FindActiveByID(ctx context.Context, id string) (entities.Payment, error) {
	return r.first(ctx, "id = ? AND active = ?", id, true)
}

func (r *PaymentGormRepository) first(ctx context.Context, query string, args ...any) (entities.Payment, error) {
	q := r.db.WithContext(ctx)
	if r.inTx {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var rec paymentRecord
	err := q.Where(query, args...).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entities.Payment{}, nil
	}
	if err != nil {
		return entities.Payment{}, err
	}
	return fromPaymentRecord(rec), nil
}

func (r *PaymentGormRepository) FindAll(ctx context.Context, filter entities.PaymentFilter) ([]entities.Payment, error) {
	q := r.db.WithContext(ctx).Model(&paymentRecord{}).Where("active = ?", true)
	if filter.DebitCode != nil {
		q = q.Where("debit_code = ?", *filter.DebitCode)
	}
	if filter.PayerDocument != nil {
		q = q.Where("payer_document = ?", *filter.PayerDocument)
	}
	if filter.Status != nil {
		q = q.Where("status = ?", string(*filter.Status))
	}

	var recs []paymentRecord
	if err := q.Order("created_at ASC").Order("id ASC").Find(&recs).Error; err != nil {
		return nil, err
	}

	items := make([]entities.Payment, 0, len(recs))
	for _, rec := range recs {
		items = append(items, fromPaymentRecord(rec))
	}
	return items, nil
}

func (r *PaymentGormRepository) Save(ctx context.Context, p entities.Payment) (entities.Payment, error) {
	if p.ID == "" {
		return r.insert(ctx, p)
	}
	return r.update(ctx, p)
}

func (r *PaymentGormRepository) insert(ctx context.Context, p entities.Payment) (entities.Payment, error) {
	p.ID = r.newID()
	p.Version = 1
	rec := toPaymentRecord(p)

	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isUniqueViolation(err) {
			log.Printf("[payment][repository] unique debit code rejected insert debit_code=%d", p.DebitCode)
			return entities.Payment{}, interfaces.ErrDuplicateDebitCode
		}
		return entities.Payment{}, err
	}
	return fromPaymentRecord(rec), nil
}

// update only writes the mutable columns and bumps the version.
func (r *PaymentGormRepository) update(ctx context.Context, p entities.Payment) (entities.Payment, error) {
	res := r.db.WithContext(ctx).
		Model(&paymentRecord{}).
		Where("id = ? AND version = ?", p.ID, p.Version).
		Updates(map[string]any{
			"status":     string(p.State.Status),
			"active":     p.State.Active,
			"version":    p.Version + 1,
			"updated_at": p.UpdatedAt.UTC(),
		})
	if res.Error != nil {
		return entities.Payment{}, res.Error
	}
	if res.RowsAffected == 0 {
		return entities.Payment{}, interfaces.ErrConcurrentUpdate
	}
	return r.FindByID(ctx, p.ID)
}

func (r *PaymentGormRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint")
}

func toPaymentRecord(p entities.Payment) paymentRecord {
	return paymentRecord{
		ID:            p.ID,
		DebitCode:     p.DebitCode,
		PayerDocument: p.PayerDocument,
		Method:        string(p.Method),
		CardNumber:    p.CardNumber,
		Amount:        p.Amount,
		Status:        string(p.State.Status),
		Active:        p.State.Active,
		Version:       p.Version,
		CreatedAt:     p.CreatedAt.UTC(),
		UpdatedAt:     p.UpdatedAt.UTC(),
	}
}

func fromPaymentRecord(rec paymentRecord) entities.Payment {
	return entities.Payment{
		ID:            rec.ID,
		DebitCode:     rec.DebitCode,
		PayerDocument: rec.PayerDocument,
		Method:        entities.PaymentMethod(rec.Method),
		CardNumber:    rec.CardNumber,
		Amount:        rec.Amount.Round(amountScale),
		State: entities.PaymentState{
			Status: entities.PaymentStatus(rec.Status),
			Active: rec.Active,
		},
		Version:   rec.Version,
		CreatedAt: rec.CreatedAt.UTC(),
		UpdatedAt: rec.UpdatedAt.UTC(),
	}
}
