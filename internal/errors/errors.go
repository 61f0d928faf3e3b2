package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var ErrUnauthorized = errors.New("request is not authorized")
var ErrNotFound = errors.New("resource not found")

// Машиночитаемые коды ошибок проверки платежа
const (
	CodeMissingFields      = "MISSING_FIELDS"
	CodeSignatureMismatch  = "SIGNATURE_MISMATCH"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeDBLookupFailed     = "DB_LOOKUP_FAILED"
	CodeDBInsertFailed     = "DB_INSERT_FAILED"
	CodeDBUpdateFailed     = "DB_UPDATE_FAILED"
	CodeConfigMissing      = "CONFIG_MISSING"
	CodeVerificationFailed = "VERIFICATION_FAILED"
)

// AppError - ошибка с HTTP статусом и кодом для ответа клиенту
type AppError struct {
	Code      string
	Status    int
	Message   string
	PaymentID string
	Err       error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New создает AppError без исходной ошибки
func New(status int, code, message string) *AppError {
	return &AppError{Code: code, Status: status, Message: message}
}

// Wrap создает AppError поверх исходной ошибки
func Wrap(err error, status int, code, message string) *AppError {
	return &AppError{Code: code, Status: status, Message: message, Err: err}
}

// WithPayment returns a copy of e carrying the payment id for manual reconciliation.
func (e *AppError) WithPayment(paymentID string) *AppError {
	cp := *e
	cp.PaymentID = paymentID
	return &cp
}

// As извлекает AppError из цепочки; любая другая ошибка превращается в VERIFICATION_FAILED
func As(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, http.StatusInternalServerError, CodeVerificationFailed, "Payment verification failed")
}
