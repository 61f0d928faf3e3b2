package consumers

// permanentError - сообщение, которое бессмысленно доставлять повторно
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }

func (e *permanentError) Unwrap() error { return e.err }
