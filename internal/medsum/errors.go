package medsum

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies a pipeline failure.
type ErrorKind string

const (
	KindInvalidUpload        ErrorKind = "invalid_upload"
	KindUnsupportedMediaType ErrorKind = "unsupported_media_type"
	KindUpstream             ErrorKind = "upstream"
	KindResponseParse        ErrorKind = "response_parse"
	KindEmptySummary         ErrorKind = "empty_summary"
	KindNotFound             ErrorKind = "not_found"
	KindDecryption           ErrorKind = "decryption"
	KindUnauthorized         ErrorKind = "unauthorized"
	KindBadRequest           ErrorKind = "bad_request"
)

// Error is a typed failure that carries its own HTTP status and a
// user-visible message. Cause is kept for logs and is never rendered.
type Error struct {
	Kind    ErrorKind
	Status  int
	Message string
	// Detail is the raw upstream message for KindUpstream.
	Detail string
	Cause  error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error of the same kind, so sentinel-style checks like
// errors.Is(err, &Error{Kind: KindNotFound}) work.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain, or "".
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func NewInvalidUpload() *Error {
	return &Error{Kind: KindInvalidUpload, Status: http.StatusBadRequest, Message: "Invalid file upload"}
}

func NewUnsupportedMediaType(mimeType string) *Error {
	return &Error{
		Kind:    KindUnsupportedMediaType,
		Status:  http.StatusBadRequest,
		Message: "Only image and PDF files are supported for OCR.",
		Cause:   fmt.Errorf("media type %q", mimeType),
	}
}

// NewUpstream wraps a failed call to the summarization service. A status of 0
// means the service could not be reached at all.
func NewUpstream(status int, message string, cause error) *Error {
	if status == 0 {
		status = http.StatusBadGateway
	}
	return &Error{
		Kind:    KindUpstream,
		Status:  status,
		Message: "OpenRouter API failed: " + message,
		Detail:  message,
		Cause:   cause,
	}
}

func NewResponseParse(cause error) *Error {
	return &Error{
		Kind:    KindResponseParse,
		Status:  http.StatusInternalServerError,
		Message: "Failed to parse response from OpenRouter",
		Cause:   cause,
	}
}

func NewEmptySummary() *Error {
	return &Error{
		Kind:    KindEmptySummary,
		Status:  http.StatusInternalServerError,
		Message: "No summary was generated from the AI service",
	}
}

func NewNotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Status: http.StatusNotFound, Message: message}
}

func NewDecryption(cause error) *Error {
	return &Error{
		Kind:    KindDecryption,
		Status:  http.StatusInternalServerError,
		Message: "Failed to decrypt report",
		Cause:   cause,
	}
}

func NewUnauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Status: http.StatusUnauthorized, Message: message}
}

func NewBadRequest(message string) *Error {
	return &Error{Kind: KindBadRequest, Status: http.StatusBadRequest, Message: message}
}
