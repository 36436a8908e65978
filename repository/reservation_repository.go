package repository

import (
	"context"
	"errors"
	"time"

	"checkout-service/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReservationRepository owns the reservation state machine. MarkCompleted and
// MarkExpired are compare-and-swap transitions scoped by (id, status=ACTIVE);
// the bool result tells the caller whether it won the transition and
// therefore owns the compensating action.
type ReservationRepository interface {
	Create(ctx context.Context, reservation *models.Reservation) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Reservation, error)
	HasActive(ctx context.Context, userID, productID uuid.UUID) (bool, error)
	FindActiveByPaymentID(ctx context.Context, paymentID uuid.UUID) (*models.Reservation, error)
	LinkPayment(ctx context.Context, id, paymentID uuid.UUID) error
	MarkCompleted(ctx context.Context, id uuid.UUID) (bool, error)
	MarkExpired(ctx context.Context, id uuid.UUID) (bool, error)
	FindExpired(ctx context.Context, now time.Time, limit int) ([]models.Reservation, error)
	List(ctx context.Context, status string, page, limit int) ([]models.Reservation, int64, error)
}

type GormReservationRepository struct {
	db *gorm.DB
}

func NewGormReservationRepository(db *gorm.DB) ReservationRepository {
	return &GormReservationRepository{db: db}
}

func (r *GormReservationRepository) Create(ctx context.Context, reservation *models.Reservation) error {
	return r.db.WithContext(ctx).Create(reservation).Error
}

func (r *GormReservationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := r.db.WithContext(ctx).First(&reservation, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &reservation, nil
}

func (r *GormReservationRepository) HasActive(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("user_id = ? AND product_id = ? AND status = ?", userID, productID, models.ReservationActive).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormReservationRepository) FindActiveByPaymentID(ctx context.Context, paymentID uuid.UUID) (*models.Reservation, error) {
	var reservation models.Reservation
	err := r.db.WithContext(ctx).
		Where("payment_id = ? AND status = ?", paymentID, models.ReservationActive).
		First(&reservation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &reservation, nil
}

func (r *GormReservationRepository) LinkPayment(ctx context.Context, id, paymentID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("id = ?", id).
		Update("payment_id", paymentID).Error
}

func (r *GormReservationRepository) MarkCompleted(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.transition(ctx, id, models.ReservationCompleted)
}

func (r *GormReservationRepository) MarkExpired(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.transition(ctx, id, models.ReservationExpired)
}

func (r *GormReservationRepository) transition(ctx context.Context, id uuid.UUID, to string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("id = ? AND status = ?", id, models.ReservationActive).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *GormReservationRepository) FindExpired(ctx context.Context, now time.Time, limit int) ([]models.Reservation, error) {
	var reservations []models.Reservation
	err := r.db.WithContext(ctx).
		Where("status = ? AND expires_at < ?", models.ReservationActive, now).
		Limit(limit).
		Find(&reservations).Error
	return reservations, err
}

func (r *GormReservationRepository) List(ctx context.Context, status string, page, limit int) ([]models.Reservation, int64, error) {
	var reservations []models.Reservation
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Reservation{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.
		Offset(offset).
		Limit(limit).
		Order("created_at DESC").
		Find(&reservations).Error; err != nil {
		return nil, 0, err
	}
	return reservations, total, nil
}
