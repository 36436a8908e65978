package repository

import (
	"context"
	"errors"

	"checkout-service/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	GetByProviderOrderID(ctx context.Context, providerOrderID string) (*models.Payment, error)
	SetProviderOrderID(ctx context.Context, id uuid.UUID, providerOrderID string) error
	MarkCaptured(ctx context.Context, id uuid.UUID, providerPaymentID string) (bool, error)
	MarkFailed(ctx context.Context, id uuid.UUID) (bool, error)
	LinkOrder(ctx context.Context, id, orderID uuid.UUID) error
	ApplyRefund(ctx context.Context, id uuid.UUID, amount int64) (*models.Payment, error)
}

type GormPaymentRepository struct {
	db *gorm.DB
}

func NewGormPaymentRepository(db *gorm.DB) PaymentRepository {
	return &GormPaymentRepository{db: db}
}

func (r *GormPaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *GormPaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.WithContext(ctx).First(&payment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &payment, nil
}

func (r *GormPaymentRepository) GetByProviderOrderID(ctx context.Context, providerOrderID string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Where("provider_order_id = ?", providerOrderID).
		First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &payment, nil
}

func (r *GormPaymentRepository) SetProviderOrderID(ctx context.Context, id uuid.UUID, providerOrderID string) error {
	return r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ?", id).
		Update("provider_order_id", providerOrderID).Error
}

// MarkCaptured transitions to SUCCESS unless the payment is already SUCCESS.
// Redelivered capture webhooks lose the guard and become no-ops.
func (r *GormPaymentRepository) MarkCaptured(ctx context.Context, id uuid.UUID, providerPaymentID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ? AND status <> ?", id, models.PaymentSuccess).
		Updates(map[string]interface{}{
			"status":              models.PaymentSuccess,
			"provider_payment_id": providerPaymentID,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// MarkFailed only fires from the pre-terminal states; a capture that already
// landed is never overwritten by a late failure notification.
func (r *GormPaymentRepository) MarkFailed(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ? AND status IN ?", id, []string{models.PaymentInitiated, models.PaymentProcessing}).
		Update("status", models.PaymentFailed)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *GormPaymentRepository) LinkOrder(ctx context.Context, id, orderID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ?", id).
		Update("order_id", orderID).Error
}

// ApplyRefund adds amount to refunded_amount and derives the status in the
// same statement, guarded so refunded_amount can never exceed amount. The
// updated row is re-read and returned.
func (r *GormPaymentRepository) ApplyRefund(ctx context.Context, id uuid.UUID, amount int64) (*models.Payment, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ? AND refunded_amount + ? <= amount", id, amount).
		UpdateColumns(map[string]interface{}{
			"refunded_amount": gorm.Expr("refunded_amount + ?", amount),
			"status": gorm.Expr(
				"CASE WHEN refunded_amount + ? >= amount THEN ? ELSE ? END",
				amount, models.PaymentRefunded, models.PaymentPartiallyRefunded,
			),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}
