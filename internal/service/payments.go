package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"
	"unicode"

	apperrors "milan/internal/errors"
	"milan/internal/logger"
	"milan/internal/metrics"
	"milan/internal/models"
	"milan/internal/otp"
)

const referenceAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

type PaymentService struct {
	bookings  BookingStore
	students  StudentDirectory
	signer    SignatureVerifier
	publisher EventPublisher
	now       func() time.Time
}

func NewPaymentService(bookings BookingStore, students StudentDirectory, signer SignatureVerifier, publisher EventPublisher) *PaymentService {
	return &PaymentService{
		bookings:  bookings,
		students:  students,
		signer:    signer,
		publisher: publisher,
		now:       time.Now,
	}
}

// WithClock replaces the time source used for booking references.
func (s *PaymentService) WithClock(now func() time.Time) *PaymentService {
	s.now = now
	return s
}

// Verify проверяет подпись Razorpay и создает или подтверждает бронирование.
// Все ошибки возвращаются как *errors.AppError.
func (s *PaymentService) Verify(ctx context.Context, req *models.VerifyPaymentRequest) (*models.VerifyPaymentResponse, error) {
	resp, result, err := s.verify(ctx, req)
	if err != nil {
		appErr := apperrors.As(err).WithPayment(req.RazorpayPaymentID)
		metrics.PaymentVerifications.WithLabelValues(appErr.Code).Inc()
		return nil, appErr
	}

	metrics.PaymentVerifications.WithLabelValues(result).Inc()
	return resp, nil
}

func (s *PaymentService) verify(ctx context.Context, req *models.VerifyPaymentRequest) (*models.VerifyPaymentResponse, string, error) {
	if req.RazorpayOrderID == "" || req.RazorpayPaymentID == "" || req.RazorpaySignature == "" {
		return nil, "", apperrors.New(http.StatusBadRequest, apperrors.CodeMissingFields,
			"razorpay_order_id, razorpay_payment_id and razorpay_signature are required")
	}

	if s.signer == nil || !s.signer.Configured() {
		return nil, "", apperrors.New(http.StatusInternalServerError, apperrors.CodeConfigMissing,
			"Payment gateway is not configured")
	}

	if !s.signer.Verify(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature) {
		logger.WithContext(ctx).Warn("Razorpay signature mismatch",
			"security_event", true,
			"order_id", req.RazorpayOrderID,
			"payment_id", req.RazorpayPaymentID)
		return nil, "", apperrors.New(http.StatusBadRequest, apperrors.CodeSignatureMismatch,
			"Payment signature verification failed")
	}

	booking, err := s.bookings.GetByOrderID(ctx, req.RazorpayOrderID)
	if err != nil {
		return nil, "", apperrors.Wrap(err, http.StatusInternalServerError, apperrors.CodeDBLookupFailed,
			"Failed to look up booking")
	}

	switch {
	case booking == nil:
		return s.create(ctx, req)
	case booking.IsCompleted() && booking.Reference() == "":
		return s.assignReference(ctx, booking, req)
	case booking.IsCompleted():
		// повторная проверка того же заказа
		return s.respond(booking, req.RazorpayPaymentID), "duplicate", nil
	default:
		return s.complete(ctx, booking, req)
	}
}

// create заполняет бронирование из справочника студентов
func (s *PaymentService) create(ctx context.Context, req *models.VerifyPaymentRequest) (*models.VerifyPaymentResponse, string, error) {
	email := otp.NormalizeEmail(req.Email)
	if email == "" {
		return nil, "", apperrors.New(http.StatusBadRequest, apperrors.CodeMissingFields,
			"email is required to create a booking")
	}

	student, err := s.students.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", apperrors.Wrap(err, http.StatusInternalServerError, apperrors.CodeDBLookupFailed,
			"Failed to look up student")
	}
	if student == nil {
		return nil, "", apperrors.New(http.StatusNotFound, apperrors.CodeUserNotFound,
			"No registered student found for this email")
	}

	reference, err := NewBookingReference(req.EventName, s.now())
	if err != nil {
		return nil, "", err
	}

	regNumber := student.RegistrationNumber
	paymentID := req.RazorpayPaymentID
	signature := req.RazorpaySignature
	booking := &models.TicketConfirmation{
		Name:               student.FullName,
		RegistrationNumber: &regNumber,
		Email:              email,
		Batch:              student.Batch,
		EventName:          req.EventName,
		EventDate:          optional(req.EventDate),
		TicketPrice:        req.TicketPrice,
		RazorpayOrderID:    req.RazorpayOrderID,
		RazorpayPaymentID:  &paymentID,
		RazorpaySignature:  &signature,
		PaymentStatus:      models.PaymentStatusCompleted,
		BookingReference:   &reference,
	}

	inserted, err := s.bookings.Insert(ctx, booking)
	if err != nil {
		return nil, "", apperrors.Wrap(err, http.StatusInternalServerError, apperrors.CodeDBInsertFailed,
			"Failed to create booking")
	}

	if !inserted {
		// параллельный запрос успел вставить строку для этого заказа
		winner, err := s.current(ctx, req.RazorpayOrderID)
		if err != nil {
			return nil, "", err
		}
		if !winner.IsCompleted() {
			return s.complete(ctx, winner, req)
		}
		return s.respond(winner, req.RazorpayPaymentID), "duplicate", nil
	}

	s.publishConfirmed(ctx, booking, true)
	return s.respond(booking, req.RazorpayPaymentID), "created", nil
}

// complete переводит pending бронирование в completed
func (s *PaymentService) complete(ctx context.Context, booking *models.TicketConfirmation, req *models.VerifyPaymentRequest) (*models.VerifyPaymentResponse, string, error) {
	eventName := booking.EventName
	if eventName == "" {
		eventName = req.EventName
	}
	reference, err := NewBookingReference(eventName, s.now())
	if err != nil {
		return nil, "", err
	}

	stored, updated, err := s.bookings.MarkCompleted(ctx, booking.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature, reference)
	if err != nil {
		return nil, "", apperrors.Wrap(err, http.StatusInternalServerError, apperrors.CodeDBUpdateFailed,
			"Failed to update booking")
	}
	if !updated {
		return s.duplicate(ctx, req)
	}

	paymentID := req.RazorpayPaymentID
	booking.PaymentStatus = models.PaymentStatusCompleted
	booking.RazorpayPaymentID = &paymentID
	booking.BookingReference = &stored

	s.publishConfirmed(ctx, booking, false)
	return s.respond(booking, req.RazorpayPaymentID), "updated", nil
}

// assignReference выдает номер подтвержденному бронированию, у которого его нет
func (s *PaymentService) assignReference(ctx context.Context, booking *models.TicketConfirmation, req *models.VerifyPaymentRequest) (*models.VerifyPaymentResponse, string, error) {
	reference, err := NewBookingReference(booking.EventName, s.now())
	if err != nil {
		return nil, "", err
	}

	stored, updated, err := s.bookings.AssignReference(ctx, booking.RazorpayOrderID, reference)
	if err != nil {
		return nil, "", apperrors.Wrap(err, http.StatusInternalServerError, apperrors.CodeDBUpdateFailed,
			"Failed to update booking")
	}
	if !updated {
		return s.duplicate(ctx, req)
	}

	booking.BookingReference = &stored
	s.publishConfirmed(ctx, booking, false)
	return s.respond(booking, req.RazorpayPaymentID), "updated", nil
}

// duplicate отвечает сохраненной строкой, которую подтвердил параллельный запрос
func (s *PaymentService) duplicate(ctx context.Context, req *models.VerifyPaymentRequest) (*models.VerifyPaymentResponse, string, error) {
	booking, err := s.current(ctx, req.RazorpayOrderID)
	if err != nil {
		return nil, "", err
	}
	return s.respond(booking, req.RazorpayPaymentID), "duplicate", nil
}

func (s *PaymentService) current(ctx context.Context, orderID string) (*models.TicketConfirmation, error) {
	booking, err := s.bookings.GetByOrderID(ctx, orderID)
	if err != nil || booking == nil {
		return nil, apperrors.Wrap(err, http.StatusInternalServerError, apperrors.CodeDBLookupFailed,
			"Failed to look up booking")
	}
	return booking, nil
}

func (s *PaymentService) respond(booking *models.TicketConfirmation, paymentID string) *models.VerifyPaymentResponse {
	if booking.RazorpayPaymentID != nil && *booking.RazorpayPaymentID != "" {
		paymentID = *booking.RazorpayPaymentID
	}

	return &models.VerifyPaymentResponse{
		Success:          true,
		BookingReference: booking.Reference(),
		TicketData: models.TicketData{
			Name:               booking.Name,
			Email:              booking.Email,
			RegistrationNumber: deref(booking.RegistrationNumber),
			Batch:              deref(booking.Batch),
			EventName:          booking.EventName,
			EventDate:          deref(booking.EventDate),
			TicketPrice:        booking.TicketPrice,
			PaymentID:          paymentID,
			OrderID:            booking.RazorpayOrderID,
			PaymentStatus:      booking.PaymentStatus,
		},
	}
}

func (s *PaymentService) publishConfirmed(ctx context.Context, booking *models.TicketConfirmation, created bool) {
	if s.publisher == nil {
		return
	}

	event := models.BookingConfirmedEvent{
		BookingReference: booking.Reference(),
		OrderID:          booking.RazorpayOrderID,
		PaymentID:        deref(booking.RazorpayPaymentID),
		Email:            booking.Email,
		EventName:        booking.EventName,
		Created:          created,
		Timestamp:        s.now(),
	}

	if err := s.publisher.Publish(models.EventBookingConfirmed, event); err != nil {
		// Log error but don't fail the operation
		logger.WithContext(ctx).Error("Failed to publish booking confirmed event",
			"error", err,
			"order_id", booking.RazorpayOrderID,
			"event_type", models.EventBookingConfirmed)
	}
}

// NewBookingReference returns MILAN-<PREFIX>-<unix millis><4 random chars>.
func NewBookingReference(eventName string, now time.Time) (string, error) {
	suffix := make([]byte, 4)
	max := big.NewInt(int64(len(referenceAlphabet)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate booking reference: %w", err)
		}
		suffix[i] = referenceAlphabet[n.Int64()]
	}

	return fmt.Sprintf("MILAN-%s-%d%s", EventPrefix(eventName), now.UnixMilli(), suffix), nil
}

// EventPrefix - первые 4 буквы/цифры названия в верхнем регистре, EVNT для пустого
func EventPrefix(eventName string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(eventName) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			if b.Len() == 4 {
				break
			}
		}
	}
	if b.Len() == 0 {
		return "EVNT"
	}
	return b.String()
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
