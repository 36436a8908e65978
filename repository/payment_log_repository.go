package repository

import (
	"context"

	"checkout-service/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentLogRepository interface {
	Create(ctx context.Context, log *models.PaymentLog) error
	FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.PaymentLog, error)
}

type GormPaymentLogRepository struct {
	db *gorm.DB
}

func NewGormPaymentLogRepository(db *gorm.DB) PaymentLogRepository {
	return &GormPaymentLogRepository{db: db}
}

func (r *GormPaymentLogRepository) Create(ctx context.Context, log *models.PaymentLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *GormPaymentLogRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.PaymentLog, error) {
	var logs []models.PaymentLog
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		Find(&logs).Error
	return logs, err
}
