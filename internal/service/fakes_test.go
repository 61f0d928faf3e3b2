package service

import (
	"context"
	"sync"

	"milan/internal/external"
	"milan/internal/models"
)

type fakeBookings struct {
	mu        sync.Mutex
	rows      map[string]*models.TicketConfirmation
	inserts   int
	updates   int
	lookupErr error
	insertErr error
}

func newFakeBookings() *fakeBookings {
	return &fakeBookings{rows: make(map[string]*models.TicketConfirmation)}
}

func (f *fakeBookings) GetByOrderID(_ context.Context, orderID string) (*models.TicketConfirmation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	row, ok := f.rows[orderID]
	if !ok {
		return nil, nil
	}
	cp := *row
	return &cp, nil
}

func (f *fakeBookings) Insert(_ context.Context, booking *models.TicketConfirmation) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return false, f.insertErr
	}
	if _, ok := f.rows[booking.RazorpayOrderID]; ok {
		return false, nil
	}
	f.inserts++
	booking.ID = int64(f.inserts)
	cp := *booking
	f.rows[booking.RazorpayOrderID] = &cp
	return true, nil
}

func (f *fakeBookings) MarkCompleted(_ context.Context, orderID, paymentID, signature, reference string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[orderID]
	if !ok || row.IsCompleted() {
		return "", false, nil
	}
	f.updates++
	row.PaymentStatus = models.PaymentStatusCompleted
	row.RazorpayPaymentID = &paymentID
	row.RazorpaySignature = &signature
	if row.BookingReference == nil {
		row.BookingReference = &reference
	}
	return *row.BookingReference, true, nil
}

func (f *fakeBookings) AssignReference(_ context.Context, orderID, reference string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[orderID]
	if !ok || row.BookingReference != nil {
		return "", false, nil
	}
	f.updates++
	row.BookingReference = &reference
	return reference, true, nil
}

type fakeStudents map[string]*models.Student

func (f fakeStudents) GetByEmail(_ context.Context, email string) (*models.Student, error) {
	return f[email], nil
}

type fakePublisher struct {
	mu       sync.Mutex
	subjects []string
	err      error
}

func (f *fakePublisher) Publish(subject string, _ interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subjects = append(f.subjects, subject)
	return f.err
}

type fakeBackend struct {
	email, code   string
	body          []byte
	authorization string
	resp          *external.ProxyResponse
	err           error
}

func (f *fakeBackend) SendOTP(_ context.Context, email, code string) (*external.ProxyResponse, error) {
	f.email, f.code = email, code
	return f.resp, f.err
}

func (f *fakeBackend) PurchasePass(_ context.Context, body []byte, authorization string) (*external.ProxyResponse, error) {
	f.body, f.authorization = body, authorization
	return f.resp, f.err
}
