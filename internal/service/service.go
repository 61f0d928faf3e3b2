package service

import (
	"context"
	"time"

	"milan/internal/external"
	"milan/internal/models"
	"milan/internal/otp"
	"milan/internal/status"
)

// BookingStore - хранилище бронирований, ключ - Razorpay order id
type BookingStore interface {
	GetByOrderID(ctx context.Context, orderID string) (*models.TicketConfirmation, error)
	Insert(ctx context.Context, booking *models.TicketConfirmation) (bool, error)
	// MarkCompleted и AssignReference возвращают false, если строку уже изменил другой запрос
	MarkCompleted(ctx context.Context, orderID, paymentID, signature, reference string) (string, bool, error)
	AssignReference(ctx context.Context, orderID, reference string) (string, bool, error)
}

// StudentDirectory - справочник студентов
type StudentDirectory interface {
	GetByEmail(ctx context.Context, email string) (*models.Student, error)
}

// EventPublisher публикует доменные события в брокер
type EventPublisher interface {
	Publish(subject string, data interface{}) error
}

// SignatureVerifier проверяет подпись Razorpay checkout
type SignatureVerifier interface {
	Configured() bool
	Verify(orderID, paymentID, signature string) bool
}

// Backend - удаленный backend, который рассылает OTP и продает пропуска
type Backend interface {
	SendOTP(ctx context.Context, email, code string) (*external.ProxyResponse, error)
	PurchasePass(ctx context.Context, body []byte, authorization string) (*external.ProxyResponse, error)
}

// EventSearcher - полнотекстовый поиск по каталогу
type EventSearcher interface {
	Search(ctx context.Context, query, date string) ([]models.Event, error)
}

// Deps собирает зависимости сервисов
type Deps struct {
	Bookings  BookingStore
	Students  StudentDirectory
	OTPs      otp.Store
	Statuses  status.Store
	Publisher EventPublisher
	Signer    SignatureVerifier
	Backend   Backend
	Searcher  EventSearcher
	Teams     map[string]models.Team
	Events    []models.Event
	Now       func() time.Time
}

type Services struct {
	Payments *PaymentService
	Auth     *AuthService
	Status   *StatusService
	Passes   *PassService
	Teams    *TeamsService
	Catalog  *CatalogService
}

func NewServices(deps Deps) *Services {
	if deps.Now == nil {
		deps.Now = time.Now
	}

	return &Services{
		Payments: NewPaymentService(deps.Bookings, deps.Students, deps.Signer, deps.Publisher).WithClock(deps.Now),
		Auth:     NewAuthService(deps.OTPs, deps.Students, deps.Backend),
		Status:   NewStatusService(deps.Statuses, deps.Publisher),
		Passes:   NewPassService(deps.Backend),
		Teams:    NewTeamsService(deps.Teams),
		Catalog:  NewCatalogService(deps.Events, deps.Searcher),
	}
}
