package errors

import (
	stderrors "errors"
	"fmt"
)

// HTTP status codes used when writing error envelopes.
const (
	CodeSuccess      = 200
	CodeInvalidParam = 400
	CodeUnauthorized = 401
	CodeForbidden    = 403
	CodeNotFound     = 404
	CodeConflict     = 409
	CodeServerError  = 500
)

// Kind classifies a failure surfaced to callers of the client layer.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindAuthentication
	KindBackendUnavailable
	KindRedirectMisconfiguration
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindBackendUnavailable:
		return "backend_unavailable"
	case KindRedirectMisconfiguration:
		return "redirect_misconfiguration"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

// Error carries a human-readable message plus enough context to branch on.
type Error struct {
	Kind     Kind
	Message  string
	Status   int    // HTTP status, 0 when no response was obtained
	Field    string // validation only
	Location string // redirect only
	Err      error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrAuthentication) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrValidation               = &Error{Kind: KindValidation}
	ErrAuthentication           = &Error{Kind: KindAuthentication}
	ErrBackendUnavailable       = &Error{Kind: KindBackendUnavailable}
	ErrRedirectMisconfiguration = &Error{Kind: KindRedirectMisconfiguration}
	ErrServer                   = &Error{Kind: KindServer}
)

func Validation(field, message string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: message}
}

func Authentication(message string, cause error) *Error {
	if message == "" {
		message = "Unauthenticated. Silakan login kembali."
	}
	return &Error{Kind: KindAuthentication, Status: CodeUnauthorized, Message: message, Err: cause}
}

func BackendUnavailable(baseURL string, cause error) *Error {
	return &Error{
		Kind:    KindBackendUnavailable,
		Message: fmt.Sprintf("Tidak dapat mengakses backend di %s. Pastikan backend berjalan dan CORS dikonfigurasi dengan benar.", baseURL),
		Err:     cause,
	}
}

func RedirectMisconfiguration(status int, endpoint, location string) *Error {
	return &Error{
		Kind:     KindRedirectMisconfiguration,
		Status:   status,
		Location: location,
		Message:  fmt.Sprintf("Backend mengembalikan redirect ke %s. Pastikan endpoint %s tersedia di backend.", location, endpoint),
	}
}

func Server(status int, message string) *Error {
	if message == "" {
		message = fmt.Sprintf("Terjadi kesalahan pada server (%d)", status)
	}
	return &Error{Kind: KindServer, Status: status, Message: message}
}

// KindOf reports the kind of err, or KindUnknown when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Message returns the display text for err, falling back to fallback for nil messages.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
