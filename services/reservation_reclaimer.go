package services

import (
	"context"
	"time"

	"checkout-service/repository"

	"go.uber.org/zap"
)

// ReservationReclaimer sweeps expired reservations in the background and
// returns their stock. Overlapping runs are safe: the ACTIVE guard on the
// status transition means each reservation's stock is restored exactly once
// no matter how many sweeps or webhook handlers race on it.
type ReservationReclaimer struct {
	products     repository.ProductRepository
	reservations repository.ReservationRepository
	interval     time.Duration
	batch        int
	logger       *zap.Logger
	now          func() time.Time
}

func NewReservationReclaimer(
	products repository.ProductRepository,
	reservations repository.ReservationRepository,
	interval time.Duration,
	batch int,
	logger *zap.Logger,
) *ReservationReclaimer {
	return &ReservationReclaimer{
		products:     products,
		reservations: reservations,
		interval:     interval,
		batch:        batch,
		logger:       logger,
		now:          time.Now,
	}
}

// Start runs the sweep loop until ctx is cancelled. The first sweep happens
// immediately so a restart doesn't leave stale holds waiting a full interval.
func (r *ReservationReclaimer) Start(ctx context.Context) {
	r.logger.Info("Reservation reclaimer started",
		zap.Duration("interval", r.interval),
		zap.Int("batch", r.batch),
	)

	r.RunOnce(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Reservation reclaimer stopped")
			return
		case <-ticker.C:
			r.RunOnce(ctx)
		}
	}
}

// RunOnce sweeps a single batch of expired reservations.
func (r *ReservationReclaimer) RunOnce(ctx context.Context) {
	expired, err := r.reservations.FindExpired(ctx, r.now(), r.batch)
	if err != nil {
		r.logger.Error("Expired reservation scan failed", zap.Error(err))
		return
	}
	if len(expired) == 0 {
		return
	}

	reclaimed := 0
	for i := range expired {
		reservation := &expired[i]
		won, err := r.reservations.MarkExpired(ctx, reservation.ID)
		if err != nil {
			r.logger.Error("Reservation expire failed",
				zap.String("reservation_id", reservation.ID.String()),
				zap.Error(err),
			)
			continue
		}
		if !won {
			// Something else settled this reservation between the scan and
			// the transition; it owns the stock movement.
			continue
		}
		if err := r.products.RestoreStock(ctx, reservation.ProductID, reservation.Quantity); err != nil {
			r.logger.Error("Stock restore failed",
				zap.String("reservation_id", reservation.ID.String()),
				zap.String("product_id", reservation.ProductID.String()),
				zap.Error(err),
			)
			continue
		}
		reclaimed++
	}

	r.logger.Info("Reservation sweep finished",
		zap.Int("scanned", len(expired)),
		zap.Int("reclaimed", reclaimed),
	)
}
