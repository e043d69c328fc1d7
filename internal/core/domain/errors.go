// Package domain defines the error model shared by servetls components.
package domain

import (
	"errors"
	"fmt"
	"strings"
)

// DomainError is an error carrying a structured code.
//
// Codes have the form SV-<CLASS>-<NNNN>. The class groups errors that are
// handled the same way: CONF errors are startup configuration failures, NET
// errors are listener failures, FS and HTTP errors are per-request outcomes.
type DomainError struct {
	Code    string // Error code (e.g., "SV-CONF-4002")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Details != "" {
		msg += ": " + e.Details
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a DomainError with the same code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// IsConfigError reports whether err is a startup configuration error.
func IsConfigError(err error) bool {
	return strings.HasPrefix(GetErrorCode(err), classConfig)
}

// IsBindError reports whether err is a listener bind error.
func IsBindError(err error) bool {
	return strings.HasPrefix(GetErrorCode(err), classNet)
}

const (
	classConfig = "SV-CONF-"
	classNet    = "SV-NET-"
)

// Configuration errors (ConfigError). Fatal at startup.
var (
	// ErrConfig indicates an invalid configuration value.
	ErrConfig = NewDomainError("SV-CONF-4001", "invalid configuration")

	// ErrCertificate indicates the certificate/key pair cannot be loaded or does not match.
	ErrCertificate = NewDomainError("SV-CONF-4002", "cannot load certificate/key pair")

	// ErrServedRoot indicates the served root is missing or not a directory.
	ErrServedRoot = NewDomainError("SV-CONF-4003", "served root is not a readable directory")
)

// Listener errors (BindError). Fatal at startup.
var (
	// ErrBind indicates the listen address is unavailable.
	ErrBind = NewDomainError("SV-NET-5001", "cannot bind listen address")
)

// Request outcomes. Local to one request.
var (
	// ErrOutsideRoot indicates a request path that normalizes outside the served root.
	ErrOutsideRoot = NewDomainError("SV-FS-4030", "path escapes served root")

	// ErrForbidden indicates a path that exists but may not be served.
	ErrForbidden = NewDomainError("SV-FS-4031", "forbidden")

	// ErrNotFound indicates the requested path does not exist.
	ErrNotFound = NewDomainError("SV-FS-4040", "file not found")

	// ErrMethodNotImplemented indicates a method other than GET or HEAD.
	ErrMethodNotImplemented = NewDomainError("SV-HTTP-5010", "unsupported method")

	// ErrInternal indicates an unexpected server-side failure.
	ErrInternal = NewDomainError("SV-SYS-5000", "internal server error")

	// ErrNotReady indicates the HTTPS listener is not accepting connections yet.
	ErrNotReady = NewDomainError("SV-SYS-5030", "server not ready")
)
