package repository

import (
	"context"
	"errors"

	"checkout-service/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RefundRepository interface {
	Create(ctx context.Context, refund *models.Refund) error
	GetByProviderRefundID(ctx context.Context, providerRefundID string) (*models.Refund, error)
	MarkProcessing(ctx context.Context, id uuid.UUID, providerRefundID string) error
	MarkFailed(ctx context.Context, id uuid.UUID) error
	MarkCompleted(ctx context.Context, id uuid.UUID) (bool, error)
}

type GormRefundRepository struct {
	db *gorm.DB
}

func NewGormRefundRepository(db *gorm.DB) RefundRepository {
	return &GormRefundRepository{db: db}
}

func (r *GormRefundRepository) Create(ctx context.Context, refund *models.Refund) error {
	return r.db.WithContext(ctx).Create(refund).Error
}

func (r *GormRefundRepository) GetByProviderRefundID(ctx context.Context, providerRefundID string) (*models.Refund, error) {
	var refund models.Refund
	err := r.db.WithContext(ctx).
		Where("provider_refund_id = ?", providerRefundID).
		First(&refund).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &refund, nil
}

func (r *GormRefundRepository) MarkProcessing(ctx context.Context, id uuid.UUID, providerRefundID string) error {
	return r.db.WithContext(ctx).
		Model(&models.Refund{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":             models.RefundProcessing,
			"provider_refund_id": providerRefundID,
		}).Error
}

func (r *GormRefundRepository) MarkFailed(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Refund{}).
		Where("id = ?", id).
		Update("status", models.RefundFailed).Error
}

// MarkCompleted is the CAS the refund webhook relies on: only the caller that
// flips the row away from a non-terminal state applies the payment and stock
// effects.
func (r *GormRefundRepository) MarkCompleted(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Refund{}).
		Where("id = ? AND status <> ?", id, models.RefundCompleted).
		Update("status", models.RefundCompleted)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
