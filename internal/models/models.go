package models

// SendOTPRequest - запрос на отправку OTP
type SendOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// VerifyOTPRequest - запрос на проверку OTP
type VerifyOTPRequest struct {
	Email string `json:"email" binding:"required"`
	OTP   string `json:"otp" binding:"required"`
}

// AuthUser - пользователь, подтвердивший email
type AuthUser struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	ID    string `json:"id"`
}

// VerifyOTPResponse - ответ на успешную проверку OTP
type VerifyOTPResponse struct {
	Success bool     `json:"success"`
	User    AuthUser `json:"user"`
}

// VerifyPaymentRequest - данные, которые клиент получил от Razorpay checkout,
// и контекст билета для создания бронирования
type VerifyPaymentRequest struct {
	RazorpayOrderID   string  `json:"razorpay_order_id"`
	RazorpayPaymentID string  `json:"razorpay_payment_id"`
	RazorpaySignature string  `json:"razorpay_signature"`
	Email             string  `json:"email"`
	EventName         string  `json:"event_name"`
	EventDate         string  `json:"event_date"`
	TicketPrice       float64 `json:"ticket_price"`
}

// TicketData - данные билета в ответе
type TicketData struct {
	Name               string  `json:"name"`
	Email              string  `json:"email"`
	RegistrationNumber string  `json:"registration_number,omitempty"`
	Batch              string  `json:"batch,omitempty"`
	EventName          string  `json:"event_name"`
	EventDate          string  `json:"event_date,omitempty"`
	TicketPrice        float64 `json:"ticket_price"`
	PaymentID          string  `json:"payment_id"`
	OrderID            string  `json:"order_id"`
	PaymentStatus      string  `json:"payment_status"`
}

// VerifyPaymentResponse - ответ на успешную проверку платежа
type VerifyPaymentResponse struct {
	Success          bool       `json:"success"`
	BookingReference string     `json:"bookingReference"`
	TicketData       TicketData `json:"ticketData"`
}

// ErrorResponse - ошибка с машиночитаемым кодом
type ErrorResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	PaymentID string `json:"paymentId,omitempty"`
}

// CheckPaymentResponse - ответ для опроса статуса оплаты
type CheckPaymentResponse struct {
	Paid bool `json:"paid"`
}

// KonfhubWebhookPayload - уведомление Konfhub о платеже
type KonfhubWebhookPayload struct {
	Event string `json:"event"`
	Data  struct {
		Email         string `json:"email"`
		PaymentStatus string `json:"payment_status"`
		Status        string `json:"status"`
		BookingID     string `json:"booking_id"`
	} `json:"data"`
}

// Status returns the payment status field Konfhub filled in.
func (p *KonfhubWebhookPayload) Status() string {
	if p.Data.PaymentStatus != "" {
		return p.Data.PaymentStatus
	}
	return p.Data.Status
}

// WebhookAck - ответ на webhook
type WebhookAck struct {
	Received bool `json:"received"`
}
