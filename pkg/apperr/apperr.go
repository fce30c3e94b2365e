// Package apperr defines the error taxonomy for responses from the groups
// service. Every failed call surfaces as exactly one of three kinds:
//
//   - DomainError: the service understood the request and refused it for an
//     application reason; carries the structured error payload.
//   - ServerError: the service failed unexpectedly with no structured payload.
//   - TransportError: the response itself violated the wire contract (wrong
//     status, wrong content type, malformed JSON). Always an integration bug.
//
// Callers match with errors.As; this package performs no retries and no
// logging.
package apperr

import (
	"errors"
	"fmt"
)

// ErrorInfo is the structured payload the groups service attaches to domain
// failures (HTTP 500 with an application/json body).
type ErrorInfo struct {
	HTTPCode   int    `json:"httpcode"`
	HTTPStatus string `json:"httpstatus"`
	AppCode    int    `json:"appcode"`
	AppError   string `json:"apperror"`
	Message    string `json:"message"`
	CallID     string `json:"callid"`
	Time       int64  `json:"time"`
}

// ErrorEnvelope is the wire wrapper around ErrorInfo.
type ErrorEnvelope struct {
	Error ErrorInfo `json:"error"`
}

// DomainError is an expected, user-actionable failure reported by the
// service about the request's validity or business rules.
type DomainError struct {
	Info ErrorInfo
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s", e.Info.AppError, e.Info.Message)
}

// AppCode returns the machine-matchable application error code.
func (e *DomainError) AppCode() int {
	return e.Info.AppCode
}

// ServerError is an unexpected backend fault with only opaque text detail.
type ServerError struct {
	Detail string
}

func (e *ServerError) Error() string {
	return "server error: " + e.Detail
}

// TransportError means the response shape broke the client/server contract.
type TransportError struct {
	StatusCode int
	Status     string
	Reason     string
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %d %s", e.Reason, e.StatusCode, e.Status)
	}
	return e.Reason
}

// IsAppCode reports whether err is a DomainError with the given appcode.
func IsAppCode(err error, code int) bool {
	var de *DomainError
	return errors.As(err, &de) && de.Info.AppCode == code
}
