package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"checkout-service/models"
	"checkout-service/repository"

	"github.com/google/uuid"
)

// In-memory repository fakes with the same transition guards as the SQL
// implementations, so the races the services rely on behave the same way
// under test.

type fakeProductRepo struct {
	mu       sync.Mutex
	products map[uuid.UUID]*models.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[uuid.UUID]*models.Product)}
}

func (f *fakeProductRepo) add(p *models.Product) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *p
	f.products[p.ID] = &cp
}

func (f *fakeProductRepo) quantity(id uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.products[id].Quantity
}

func (f *fakeProductRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProductRepo) DecrementStock(_ context.Context, id uuid.UUID, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok || !p.IsActive || p.Quantity < quantity {
		return repository.ErrInsufficientStock
	}
	p.Quantity -= quantity
	return nil
}

func (f *fakeProductRepo) RestoreStock(_ context.Context, id uuid.UUID, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.Quantity += quantity
	return nil
}

type fakeReservationRepo struct {
	mu           sync.Mutex
	reservations map[uuid.UUID]*models.Reservation
}

func newFakeReservationRepo() *fakeReservationRepo {
	return &fakeReservationRepo{reservations: make(map[uuid.UUID]*models.Reservation)}
}

func (f *fakeReservationRepo) add(r *models.Reservation) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *r
	f.reservations[r.ID] = &cp
}

func (f *fakeReservationRepo) status(id uuid.UUID) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reservations[id].Status
}

func (f *fakeReservationRepo) Create(_ context.Context, r *models.Reservation) error {
	f.add(r)
	return nil
}

func (f *fakeReservationRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reservations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeReservationRepo) HasActive(_ context.Context, userID, productID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.reservations {
		if r.UserID == userID && r.ProductID == productID && r.Status == models.ReservationActive {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeReservationRepo) FindActiveByPaymentID(_ context.Context, paymentID uuid.UUID) (*models.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.reservations {
		if r.PaymentID != nil && *r.PaymentID == paymentID && r.Status == models.ReservationActive {
			cp := *r
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeReservationRepo) LinkPayment(_ context.Context, id, paymentID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reservations[id]
	if !ok {
		return repository.ErrNotFound
	}
	pid := paymentID
	r.PaymentID = &pid
	return nil
}

func (f *fakeReservationRepo) MarkCompleted(_ context.Context, id uuid.UUID) (bool, error) {
	return f.transition(id, models.ReservationCompleted)
}

func (f *fakeReservationRepo) MarkExpired(_ context.Context, id uuid.UUID) (bool, error) {
	return f.transition(id, models.ReservationExpired)
}

func (f *fakeReservationRepo) transition(id uuid.UUID, to string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reservations[id]
	if !ok || r.Status != models.ReservationActive {
		return false, nil
	}
	r.Status = to
	return true, nil
}

func (f *fakeReservationRepo) FindExpired(_ context.Context, now time.Time, limit int) ([]models.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Reservation
	for _, r := range f.reservations {
		if r.Status == models.ReservationActive && r.ExpiresAt.Before(now) {
			out = append(out, *r)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (f *fakeReservationRepo) List(_ context.Context, status string, _, _ int) ([]models.Reservation, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Reservation
	for _, r := range f.reservations {
		if status == "" || r.Status == status {
			out = append(out, *r)
		}
	}
	return out, int64(len(out)), nil
}

type fakePaymentRepo struct {
	mu       sync.Mutex
	payments map[uuid.UUID]*models.Payment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: make(map[uuid.UUID]*models.Payment)}
}

func (f *fakePaymentRepo) add(p *models.Payment) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *p
	f.payments[p.ID] = &cp
}

func (f *fakePaymentRepo) get(id uuid.UUID) models.Payment {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.payments[id]
}

func (f *fakePaymentRepo) Create(_ context.Context, p *models.Payment) error {
	f.add(p)
	return nil
}

func (f *fakePaymentRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePaymentRepo) GetByProviderOrderID(_ context.Context, providerOrderID string) (*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.payments {
		if p.ProviderOrderID != nil && *p.ProviderOrderID == providerOrderID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakePaymentRepo) SetProviderOrderID(_ context.Context, id uuid.UUID, providerOrderID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[id]
	if !ok {
		return repository.ErrNotFound
	}
	v := providerOrderID
	p.ProviderOrderID = &v
	return nil
}

func (f *fakePaymentRepo) MarkCaptured(_ context.Context, id uuid.UUID, providerPaymentID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[id]
	if !ok || p.Status == models.PaymentSuccess {
		return false, nil
	}
	v := providerPaymentID
	p.ProviderPaymentID = &v
	p.Status = models.PaymentSuccess
	return true, nil
}

func (f *fakePaymentRepo) MarkFailed(_ context.Context, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[id]
	if !ok {
		return false, nil
	}
	if p.Status != models.PaymentInitiated && p.Status != models.PaymentProcessing {
		return false, nil
	}
	p.Status = models.PaymentFailed
	return true, nil
}

func (f *fakePaymentRepo) LinkOrder(_ context.Context, id, orderID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[id]
	if !ok {
		return repository.ErrNotFound
	}
	oid := orderID
	p.OrderID = &oid
	return nil
}

func (f *fakePaymentRepo) ApplyRefund(_ context.Context, id uuid.UUID, amount int64) (*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[id]
	if !ok || p.RefundedAmount+amount > p.Amount {
		return nil, repository.ErrNotFound
	}
	p.RefundedAmount += amount
	if p.RefundedAmount >= p.Amount {
		p.Status = models.PaymentRefunded
	} else {
		p.Status = models.PaymentPartiallyRefunded
	}
	cp := *p
	return &cp, nil
}

type fakeRefundRepo struct {
	mu      sync.Mutex
	refunds map[uuid.UUID]*models.Refund
}

func newFakeRefundRepo() *fakeRefundRepo {
	return &fakeRefundRepo{refunds: make(map[uuid.UUID]*models.Refund)}
}

func (f *fakeRefundRepo) add(r *models.Refund) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *r
	f.refunds[r.ID] = &cp
}

func (f *fakeRefundRepo) get(id uuid.UUID) models.Refund {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.refunds[id]
}

func (f *fakeRefundRepo) Create(_ context.Context, r *models.Refund) error {
	f.add(r)
	return nil
}

func (f *fakeRefundRepo) GetByProviderRefundID(_ context.Context, providerRefundID string) (*models.Refund, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.refunds {
		if r.ProviderRefundID != nil && *r.ProviderRefundID == providerRefundID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeRefundRepo) MarkProcessing(_ context.Context, id uuid.UUID, providerRefundID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.refunds[id]
	if !ok {
		return repository.ErrNotFound
	}
	v := providerRefundID
	r.ProviderRefundID = &v
	r.Status = models.RefundProcessing
	return nil
}

func (f *fakeRefundRepo) MarkFailed(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.refunds[id]
	if !ok {
		return repository.ErrNotFound
	}
	r.Status = models.RefundFailed
	return nil
}

func (f *fakeRefundRepo) MarkCompleted(_ context.Context, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.refunds[id]
	if !ok || r.Status == models.RefundCompleted {
		return false, nil
	}
	r.Status = models.RefundCompleted
	return true, nil
}

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*models.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[uuid.UUID]*models.Order)}
}

func (f *fakeOrderRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.orders)
}

func (f *fakeOrderRepo) Create(_ context.Context, o *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *o
	f.orders[o.ID] = &cp
	return nil
}

func (f *fakeOrderRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrderRepo) FindByIDAndUserID(_ context.Context, id, userID uuid.UUID) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok || o.UserID != userID {
		return nil, repository.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrderRepo) FindByUserID(_ context.Context, userID uuid.UUID, _, _ int) ([]models.Order, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Order
	for _, o := range f.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeOrderRepo) SetPaymentStatus(_ context.Context, id uuid.UUID, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return repository.ErrNotFound
	}
	o.PaymentStatus = status
	return nil
}

func (f *fakeOrderRepo) CancelFulfillment(_ context.Context, id, userID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok || o.UserID != userID || o.FulfillmentStatus != models.FulfillmentPending {
		return false, nil
	}
	o.FulfillmentStatus = models.FulfillmentCancelled
	return true, nil
}

type fakePaymentLogRepo struct {
	mu   sync.Mutex
	logs []*models.PaymentLog
}

func (f *fakePaymentLogRepo) Create(_ context.Context, l *models.PaymentLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *l
	f.logs = append(f.logs, &cp)
	return nil
}

func (f *fakePaymentLogRepo) FindByOrderID(_ context.Context, orderID uuid.UUID) ([]models.PaymentLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.PaymentLog
	for _, l := range f.logs {
		if l.OrderID != nil && *l.OrderID == orderID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (f *fakePaymentLogRepo) eventTypes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, l := range f.logs {
		out = append(out, l.EventType)
	}
	return out
}

// fakeGateway records calls and can be told to fail.
type fakeGateway struct {
	mu          sync.Mutex
	failOrders  bool
	failRefunds bool
	orderCalls  int
	refundCalls int
	lastNotes   map[string]interface{}
}

func (g *fakeGateway) CreateOrder(amount int64, currency, receipt string, notes map[string]interface{}) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.orderCalls++
	g.lastNotes = notes
	if g.failOrders {
		return "", fmt.Errorf("gateway unavailable")
	}
	return fmt.Sprintf("order_fake%d", g.orderCalls), nil
}

func (g *fakeGateway) CreateRefund(providerPaymentID string, amount int64, notes map[string]interface{}) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.refundCalls++
	if g.failRefunds {
		return "", fmt.Errorf("gateway unavailable")
	}
	return fmt.Sprintf("rfnd_fake%d", g.refundCalls), nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []models.PaymentEvent
}

func (p *fakePublisher) Publish(event models.PaymentEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *fakePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}
