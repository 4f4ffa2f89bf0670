package models

// Envelope is the uniform result of every data-access call. Error is nil on
// success and carries a readable message otherwise.
type Envelope[T any] struct {
	Success bool    `json:"success"`
	Data    T       `json:"data"`
	Error   *string `json:"error"`
}

// Ok wraps data in a successful envelope.
func Ok[T any](data T) Envelope[T] {
	return Envelope[T]{Success: true, Data: data}
}

// Fail builds a failed envelope around the empty default for T.
func Fail[T any](empty T, message string) Envelope[T] {
	return Envelope[T]{Success: false, Data: empty, Error: &message}
}

// ErrorMessage returns the error text or "" for a successful envelope.
func (e Envelope[T]) ErrorMessage() string {
	if e.Error == nil {
		return ""
	}
	return *e.Error
}
