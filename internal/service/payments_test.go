package service

import (
	"context"
	"encoding/hex"
	"errors"
	"net/http"
	"regexp"
	"sync"
	"testing"
	"time"

	apperrors "milan/internal/errors"
	"milan/internal/external"
	"milan/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "rzp_test_secret"

var referencePattern = regexp.MustCompile(`^MILAN-[A-Z0-9]{1,4}-\d+[A-Z0-9]{4}$`)

func newTestPaymentService(bookings BookingStore) (*PaymentService, *fakePublisher) {
	pub := &fakePublisher{}
	batch := "2022"
	students := fakeStudents{
		"asha@srmist.edu.in": {Email: "asha@srmist.edu.in", FullName: "Asha Rao", RegistrationNumber: "RA2211003010001", Batch: &batch},
	}
	svc := NewPaymentService(bookings, students, external.NewRazorpaySigner(testSecret), pub).
		WithClock(func() time.Time { return time.UnixMilli(1767225600000) })
	return svc, pub
}

func signedRequest(orderID, paymentID string) *models.VerifyPaymentRequest {
	return &models.VerifyPaymentRequest{
		RazorpayOrderID:   orderID,
		RazorpayPaymentID: paymentID,
		RazorpaySignature: external.NewRazorpaySigner(testSecret).Sign(orderID, paymentID),
		Email:             "Asha@srmist.edu.in",
		EventName:         "Pro Show Night 1",
		EventDate:         "2026-03-14",
		TicketPrice:       699,
	}
}

func requireAppError(t *testing.T, err error, status int, code string) *apperrors.AppError {
	t.Helper()
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	assert.Equal(t, status, appErr.Status)
	assert.Equal(t, code, appErr.Code)
	return appErr
}

func TestVerifyCreatesBooking(t *testing.T) {
	bookings := newFakeBookings()
	svc, pub := newTestPaymentService(bookings)

	resp, err := svc.Verify(context.Background(), signedRequest("order_1", "pay_1"))
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Regexp(t, referencePattern, resp.BookingReference)
	assert.Equal(t, "MILAN-PROS-1767225600000", resp.BookingReference[:24])
	assert.Equal(t, "Asha Rao", resp.TicketData.Name)
	assert.Equal(t, "asha@srmist.edu.in", resp.TicketData.Email)
	assert.Equal(t, "RA2211003010001", resp.TicketData.RegistrationNumber)
	assert.Equal(t, "2022", resp.TicketData.Batch)
	assert.Equal(t, "pay_1", resp.TicketData.PaymentID)
	assert.Equal(t, models.PaymentStatusCompleted, resp.TicketData.PaymentStatus)
	assert.Equal(t, 1, bookings.inserts)
	assert.Equal(t, []string{models.EventBookingConfirmed}, pub.subjects)
}

func TestVerifyIsIdempotent(t *testing.T) {
	bookings := newFakeBookings()
	svc, _ := newTestPaymentService(bookings)
	req := signedRequest("order_1", "pay_1")

	first, err := svc.Verify(context.Background(), req)
	require.NoError(t, err)
	second, err := svc.Verify(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.BookingReference, second.BookingReference)
	assert.Equal(t, 1, bookings.inserts)
	assert.Equal(t, 0, bookings.updates)
}

func TestVerifyRejectsFlippedSignature(t *testing.T) {
	bookings := newFakeBookings()
	svc, _ := newTestPaymentService(bookings)
	req := signedRequest("order_1", "pay_1")

	raw, err := hex.DecodeString(req.RazorpaySignature)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0x01
	req.RazorpaySignature = hex.EncodeToString(raw)

	_, err = svc.Verify(context.Background(), req)
	appErr := requireAppError(t, err, http.StatusBadRequest, apperrors.CodeSignatureMismatch)
	assert.Equal(t, "pay_1", appErr.PaymentID)
	assert.Equal(t, 0, bookings.inserts)
}

func TestVerifyMissingFields(t *testing.T) {
	svc, _ := newTestPaymentService(newFakeBookings())

	for _, req := range []*models.VerifyPaymentRequest{
		{RazorpayPaymentID: "pay_1", RazorpaySignature: "sig"},
		{RazorpayOrderID: "order_1", RazorpaySignature: "sig"},
		{RazorpayOrderID: "order_1", RazorpayPaymentID: "pay_1"},
	} {
		_, err := svc.Verify(context.Background(), req)
		requireAppError(t, err, http.StatusBadRequest, apperrors.CodeMissingFields)
	}
}

func TestVerifyWithoutSecret(t *testing.T) {
	svc := NewPaymentService(newFakeBookings(), fakeStudents{}, external.NewRazorpaySigner(""), nil)

	_, err := svc.Verify(context.Background(), signedRequest("order_1", "pay_1"))
	requireAppError(t, err, http.StatusInternalServerError, apperrors.CodeConfigMissing)
}

func TestVerifyUnknownStudent(t *testing.T) {
	svc, _ := newTestPaymentService(newFakeBookings())
	req := signedRequest("order_1", "pay_1")
	req.Email = "stranger@example.com"

	_, err := svc.Verify(context.Background(), req)
	requireAppError(t, err, http.StatusNotFound, apperrors.CodeUserNotFound)
}

func TestVerifyRequiresEmailForNewBooking(t *testing.T) {
	svc, _ := newTestPaymentService(newFakeBookings())
	req := signedRequest("order_1", "pay_1")
	req.Email = "  "

	_, err := svc.Verify(context.Background(), req)
	requireAppError(t, err, http.StatusBadRequest, apperrors.CodeMissingFields)
}

func TestVerifyCompletesPendingBooking(t *testing.T) {
	bookings := newFakeBookings()
	bookings.rows["order_1"] = &models.TicketConfirmation{
		Name:            "Asha Rao",
		Email:           "asha@srmist.edu.in",
		EventName:       "DJ Night",
		RazorpayOrderID: "order_1",
		PaymentStatus:   models.PaymentStatusPending,
	}
	svc, pub := newTestPaymentService(bookings)

	resp, err := svc.Verify(context.Background(), signedRequest("order_1", "pay_9"))
	require.NoError(t, err)

	assert.Regexp(t, `^MILAN-DJNI-`, resp.BookingReference)
	assert.Equal(t, models.PaymentStatusCompleted, resp.TicketData.PaymentStatus)
	assert.Equal(t, "pay_9", resp.TicketData.PaymentID)
	assert.Equal(t, 0, bookings.inserts)
	assert.Equal(t, 1, bookings.updates)
	assert.Len(t, pub.subjects, 1)
}

func TestVerifyPendingBookingKeepsReference(t *testing.T) {
	ref := "MILAN-DJNI-1700000000000ZZ99"
	bookings := newFakeBookings()
	bookings.rows["order_1"] = &models.TicketConfirmation{
		EventName:        "DJ Night",
		RazorpayOrderID:  "order_1",
		PaymentStatus:    models.PaymentStatusPending,
		BookingReference: &ref,
	}
	svc, _ := newTestPaymentService(bookings)

	resp, err := svc.Verify(context.Background(), signedRequest("order_1", "pay_9"))
	require.NoError(t, err)
	assert.Equal(t, ref, resp.BookingReference)
}

func TestVerifyDatabaseFailures(t *testing.T) {
	bookings := newFakeBookings()
	bookings.lookupErr = errors.New("connection refused")
	svc, _ := newTestPaymentService(bookings)

	_, err := svc.Verify(context.Background(), signedRequest("order_1", "pay_1"))
	appErr := requireAppError(t, err, http.StatusInternalServerError, apperrors.CodeDBLookupFailed)
	assert.Equal(t, "pay_1", appErr.PaymentID)

	bookings = newFakeBookings()
	bookings.insertErr = errors.New("disk full")
	svc, _ = newTestPaymentService(bookings)

	_, err = svc.Verify(context.Background(), signedRequest("order_1", "pay_1"))
	requireAppError(t, err, http.StatusInternalServerError, apperrors.CodeDBInsertFailed)
}

// racingBookings hides the row from the first lookup, as if another request
// inserted it between the lookup and the insert.
func TestVerifyAssignsMissingReference(t *testing.T) {
	paymentID := "pay_1"
	bookings := newFakeBookings()
	bookings.rows["order_1"] = &models.TicketConfirmation{
		Name:              "Asha Rao",
		EventName:         "Fashion Show",
		RazorpayOrderID:   "order_1",
		RazorpayPaymentID: &paymentID,
		PaymentStatus:     models.PaymentStatusCompleted,
	}
	svc, pub := newTestPaymentService(bookings)

	first, err := svc.Verify(context.Background(), signedRequest("order_1", "pay_1"))
	require.NoError(t, err)
	assert.Regexp(t, `^MILAN-FASH-`, first.BookingReference)
	assert.Equal(t, first.BookingReference, bookings.rows["order_1"].Reference())
	assert.Equal(t, []string{models.EventBookingConfirmed}, pub.subjects)

	second, err := svc.Verify(context.Background(), signedRequest("order_1", "pay_1"))
	require.NoError(t, err)
	assert.Equal(t, first.BookingReference, second.BookingReference)
	assert.Equal(t, 1, bookings.updates)
}

// staleBookings отдает pending снимок, хотя строку уже подтвердил другой запрос
type staleBookings struct {
	*fakeBookings
	served bool
}

func (s *staleBookings) GetByOrderID(ctx context.Context, orderID string) (*models.TicketConfirmation, error) {
	row, err := s.fakeBookings.GetByOrderID(ctx, orderID)
	if err != nil || row == nil || s.served {
		return row, err
	}
	s.served = true
	row.PaymentStatus = models.PaymentStatusPending
	return row, nil
}

func TestVerifyLostCompletionRaceKeepsWinner(t *testing.T) {
	ref := "MILAN-PROS-1700000000000WIN1"
	paymentID, signature := "pay_winner", "sig_winner"
	inner := newFakeBookings()
	inner.rows["order_1"] = &models.TicketConfirmation{
		Name:              "Asha Rao",
		EventName:         "Pro Show Night 1",
		RazorpayOrderID:   "order_1",
		RazorpayPaymentID: &paymentID,
		RazorpaySignature: &signature,
		PaymentStatus:     models.PaymentStatusCompleted,
		BookingReference:  &ref,
	}
	svc, pub := newTestPaymentService(&staleBookings{fakeBookings: inner})

	resp, err := svc.Verify(context.Background(), signedRequest("order_1", "pay_1"))
	require.NoError(t, err)

	assert.Equal(t, ref, resp.BookingReference)
	assert.Equal(t, "pay_winner", resp.TicketData.PaymentID)
	assert.Equal(t, "sig_winner", *inner.rows["order_1"].RazorpaySignature)
	assert.Equal(t, 0, inner.updates)
	assert.Empty(t, pub.subjects)
}

func TestVerifyConcurrentPendingCompletesOnce(t *testing.T) {
	bookings := newFakeBookings()
	bookings.rows["order_1"] = &models.TicketConfirmation{
		Name:            "Asha Rao",
		EventName:       "DJ Night",
		RazorpayOrderID: "order_1",
		PaymentStatus:   models.PaymentStatusPending,
	}
	svc, pub := newTestPaymentService(bookings)

	const workers = 8
	refs := make([]string, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := svc.Verify(context.Background(), signedRequest("order_1", "pay_1"))
			if assert.NoError(t, err) {
				refs[i] = resp.BookingReference
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, bookings.updates)
	for _, ref := range refs {
		assert.Equal(t, bookings.rows["order_1"].Reference(), ref)
	}
	pub.mu.Lock()
	defer pub.mu.Unlock()
	assert.Len(t, pub.subjects, 1)
}

type racingBookings struct {
	*fakeBookings
	hidden bool
}

func (r *racingBookings) GetByOrderID(ctx context.Context, orderID string) (*models.TicketConfirmation, error) {
	if !r.hidden {
		r.hidden = true
		return nil, nil
	}
	return r.fakeBookings.GetByOrderID(ctx, orderID)
}

func TestVerifyLostInsertRaceReturnsWinner(t *testing.T) {
	ref := "MILAN-PROS-1700000000000WIN1"
	paymentID := "pay_1"
	inner := newFakeBookings()
	inner.rows["order_1"] = &models.TicketConfirmation{
		Name:              "Asha Rao",
		EventName:         "Pro Show Night 1",
		RazorpayOrderID:   "order_1",
		RazorpayPaymentID: &paymentID,
		PaymentStatus:     models.PaymentStatusCompleted,
		BookingReference:  &ref,
	}
	svc, pub := newTestPaymentService(&racingBookings{fakeBookings: inner})

	resp, err := svc.Verify(context.Background(), signedRequest("order_1", "pay_1"))
	require.NoError(t, err)
	assert.Equal(t, ref, resp.BookingReference)
	assert.Equal(t, 0, inner.inserts)
	assert.Empty(t, pub.subjects)
}

func TestVerifyPublishFailureDoesNotFail(t *testing.T) {
	svc, pub := newTestPaymentService(newFakeBookings())
	pub.err = errors.New("nats down")

	resp, err := svc.Verify(context.Background(), signedRequest("order_1", "pay_1"))
	require.NoError(t, err)
	assert.True(t, resp.Success)
}

func TestEventPrefix(t *testing.T) {
	cases := map[string]string{
		"Pro Show Night 1":  "PROS",
		"DJ":                "DJ",
		"":                  "EVNT",
		"!! ??":             "EVNT",
		"Nukkad-Natak 2026": "NUKK",
		"quiz":              "QUIZ",
		"Café Crawl":        "CAFC",
	}
	for name, want := range cases {
		assert.Equal(t, want, EventPrefix(name), name)
	}
}

func TestNewBookingReference(t *testing.T) {
	now := time.UnixMilli(1767225600123)
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		ref, err := NewBookingReference("Fashion Show", now)
		require.NoError(t, err)
		assert.Regexp(t, referencePattern, ref)
		assert.Regexp(t, `^MILAN-FASH-1767225600123`, ref)
		seen[ref] = true
	}
	assert.Greater(t, len(seen), 1)
}
