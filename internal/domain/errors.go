package domain

import (
	"errors"
	"fmt"
	"net/http"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrUpstream     = errors.New("upstream service failed")
)

// ConflictError represents a resource conflict with details about the conflicting resource
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // site, persona, project, article
	ResourceID   string // ID of the conflicting resource
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	return e.Message
}

// StatusCode implements the HTTPError interface
func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// FieldErrors carries per-field validation messages so clients can render them inline.
// It unwraps to ErrValidation.
type FieldErrors struct {
	Fields map[string]string
}

func (e *FieldErrors) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	msg := ErrValidation.Error() + ":"
	for _, k := range sortedKeys(e.Fields) {
		msg += " " + k + ": " + e.Fields[k] + ";"
	}
	return msg[:len(msg)-1]
}

func (e *FieldErrors) StatusCode() int { return http.StatusBadRequest }

func (e *FieldErrors) Unwrap() error { return ErrValidation }

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ValidationFailed wraps an ozzo-validation result. validation.Errors become
// FieldErrors, anything else is wrapped as ErrValidation.
func ValidationFailed(err error) error {
	if err == nil {
		return nil
	}
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		flattenErrors(fields, "", verrs)
		return &FieldErrors{Fields: fields}
	}
	return fmt.Errorf("%w: %v", ErrValidation, err)
}

// flattenErrors turns nested struct errors into dotted keys ("billing.iban").
func flattenErrors(dst map[string]string, prefix string, verrs validation.Errors) {
	for name, fieldErr := range verrs {
		if fieldErr == nil {
			continue
		}
		var nested validation.Errors
		if errors.As(fieldErr, &nested) {
			flattenErrors(dst, prefix+name+".", nested)
			continue
		}
		dst[prefix+name] = fieldErr.Error()
	}
}

// FieldError builds a single-field validation failure.
func FieldError(field, message string) error {
	return &FieldErrors{Fields: map[string]string{field: message}}
}
