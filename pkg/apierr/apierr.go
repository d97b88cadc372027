package apierr

import (
	"fmt"
	"net/http"
)

// Error is an application error carrying an HTTP status code and a
// human-readable message shown to the storefront user.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a new Error.
func New(code int, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// BadRequest is shorthand for a 400 with the given message.
func BadRequest(message string) *Error {
	return New(http.StatusBadRequest, message, nil)
}

// NotFound is shorthand for a 404 with the given message.
func NotFound(message string) *Error {
	return New(http.StatusNotFound, message, nil)
}

// Internal wraps err as a 500 with the given message.
func Internal(message string, err error) *Error {
	return New(http.StatusInternalServerError, message, err)
}

// Common error values.
var (
	ErrUnauthorized = New(http.StatusUnauthorized, "Yetkisiz erişim", nil)
	ErrForbidden    = New(http.StatusForbidden, "Bu işlem için yetkiniz yok", nil)

	ErrInvalidCredentials = New(http.StatusUnauthorized, "E-posta veya şifre hatalı", nil)
	ErrInvalidToken       = New(http.StatusUnauthorized, "Geçersiz oturum", nil)

	ErrInsufficientStock = New(http.StatusBadRequest, "Yetersiz stok", nil)
	ErrEmptyCart         = New(http.StatusBadRequest, "Sepetiniz boş", nil)
	ErrPaymentFailed     = New(http.StatusBadGateway, "Ödeme işlemi başarısız", nil)
)
