package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error represents an application error
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error with the same code and message,
// so wrapped copies of a sentinel still match it.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// JSON returns the error as a JSON string
func (e *Error) JSON() string {
	b, _ := json.Marshal(e)
	return string(b)
}

// New creates a new Error
func New(code int, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Wrap returns a copy of base carrying err as its cause. base is never mutated.
func Wrap(base *Error, err error) *Error {
	return New(base.Code, base.Message, err)
}

// WithMessage returns an error with base's code and a more specific
// user-facing message. It wraps base, so errors.Is(err, base) still holds.
func WithMessage(base *Error, message string) *Error {
	return New(base.Code, message, base)
}

// Common error types
var (
	ErrBadRequest         = New(http.StatusBadRequest, "Bad request", nil)
	ErrUnauthorized       = New(http.StatusUnauthorized, "Unauthorized", nil)
	ErrForbidden          = New(http.StatusForbidden, "Forbidden", nil)
	ErrNotFound           = New(http.StatusNotFound, "Not found", nil)
	ErrInternalServer     = New(http.StatusInternalServerError, "Internal server error", nil)
	ErrServiceUnavailable = New(http.StatusServiceUnavailable, "Service unavailable", nil)
)

// Validation error types
var (
	ErrValidation     = New(http.StatusBadRequest, "Validation error", nil)
	ErrInvalidInput   = New(http.StatusBadRequest, "Invalid input", nil)
	ErrInvalidProduct = New(http.StatusBadRequest, "Invalid product", nil)
)

// Authentication error types
var (
	ErrInvalidCredentials = New(http.StatusUnauthorized, "Invalid email or password", nil)
	ErrEmailExists        = New(http.StatusConflict, "Email already exists", nil)
	ErrLoginRequired      = New(http.StatusUnauthorized, "You must be logged in", nil)
	ErrInvalidToken       = New(http.StatusUnauthorized, "Invalid token", nil)
	ErrRegistryCorrupted  = New(http.StatusInternalServerError, "An internal error occurred. Please try again.", nil)
)

// Catalog error types
var (
	ErrCatalogFetch    = New(http.StatusBadGateway, "Failed to fetch products or categories", nil)
	ErrProductNotFound = New(http.StatusNotFound, "Product not found", nil)
)

// Checkout error types
var (
	ErrEmptyCart     = New(http.StatusBadRequest, "Your cart is empty", nil)
	ErrPaymentFailed = New(http.StatusPaymentRequired, "Payment failed. Please try again.", nil)
	ErrOrderNotSaved = New(http.StatusInternalServerError, "Payment was successful, but we encountered an error saving your order. Please contact support with your payment confirmation.", nil)
)

// From converts any error into an *Error, defaulting to an internal server error.
func From(err error) *Error {
	var appErr *Error
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return Wrap(ErrInternalServer, err)
}

// HandleError writes err as a JSON response on a plain ResponseWriter.
func HandleError(w http.ResponseWriter, err error) {
	appErr := From(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.Code)
	_, _ = w.Write([]byte(appErr.JSON()))
}

// Respond writes err to the gin context. extra fields (notifications, etc.)
// are merged into the body.
func Respond(c *gin.Context, err error, extra gin.H) {
	appErr := From(err)
	body := gin.H{"error": appErr.Message, "code": appErr.Code}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(appErr.Code, body)
}

// ErrorMiddleware renders the last error attached to the gin context.
func ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			Respond(c, c.Errors.Last().Err, nil)
			c.Abort()
		}
	}
}
