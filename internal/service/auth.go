package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"milan/internal/logger"
	"milan/internal/metrics"
	"milan/internal/models"
	"milan/internal/otp"

	"github.com/google/uuid"
)

// ErrInvalidOTP возвращается, когда код не совпал, истек или уже использован
var ErrInvalidOTP = errors.New("invalid or expired OTP")

// userNamespace - пространство имен UUIDv5 для пользователей без записи студента
var userNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://milan.srmist.edu.in/users"))

type AuthService struct {
	otps     otp.Store
	students StudentDirectory
	backend  Backend
}

func NewAuthService(otps otp.Store, students StudentDirectory, backend Backend) *AuthService {
	return &AuthService{
		otps:     otps,
		students: students,
		backend:  backend,
	}
}

// SendOTP генерирует код, сохраняет его и просит backend отправить письмо.
// Ответ backend возвращается как есть.
func (s *AuthService) SendOTP(ctx context.Context, email string) (*ProxyResult, error) {
	email = otp.NormalizeEmail(email)

	code, err := otp.Generate()
	if err != nil {
		return nil, err
	}

	if err := s.otps.Store(ctx, email, code); err != nil {
		return nil, fmt.Errorf("failed to store OTP: %w", err)
	}

	resp, err := s.backend.SendOTP(ctx, email, code)
	if err != nil {
		return nil, fmt.Errorf("failed to send OTP: %w", err)
	}

	logger.WithContext(ctx).Info("OTP sent", "email", email, "backend_status", resp.StatusCode)
	return resp, nil
}

// VerifyOTP проверяет и погашает код
func (s *AuthService) VerifyOTP(ctx context.Context, email, code string) (*models.AuthUser, error) {
	email = otp.NormalizeEmail(email)

	ok, err := s.otps.Verify(ctx, email, strings.TrimSpace(code))
	if err != nil {
		metrics.OTPVerifications.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to verify OTP: %w", err)
	}
	if !ok {
		metrics.OTPVerifications.WithLabelValues("rejected").Inc()
		return nil, ErrInvalidOTP
	}
	metrics.OTPVerifications.WithLabelValues("accepted").Inc()

	return s.resolveUser(ctx, email), nil
}

// resolveUser берет имя и id из справочника студентов, если запись есть
func (s *AuthService) resolveUser(ctx context.Context, email string) *models.AuthUser {
	user := &models.AuthUser{
		Email: email,
		Name:  localPart(email),
		ID:    uuid.NewSHA1(userNamespace, []byte(email)).String(),
	}

	if s.students == nil {
		return user
	}

	student, err := s.students.GetByEmail(ctx, email)
	if err != nil {
		// код уже погашен, поэтому вход не отклоняем
		logger.WithContext(ctx).Warn("Student lookup failed after OTP verification", "error", err, "email", email)
		return user
	}
	if student != nil {
		user.Name = student.FullName
		user.ID = student.RegistrationNumber
	}

	return user
}

func localPart(email string) string {
	if i := strings.IndexByte(email, '@'); i > 0 {
		return email[:i]
	}
	return email
}
