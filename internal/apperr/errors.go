// Package apperr defines the error taxonomy surfaced to callers of the client
// and normalizes backend error bodies into a single human-readable message.
package apperr

import (
	"errors"
	"fmt"

	"skillswap/internal/constants"
)

// Kind categorizes errors for appropriate handling by the caller.
type Kind int

const (
	// KindValidation is a local form/field violation; it never reaches the backend.
	KindValidation Kind = iota + 1
	// KindAuthentication means the session could not be (re)established.
	KindAuthentication
	// KindAuthorization is a 403; the session is left untouched.
	KindAuthorization
	// KindInvalidTransition is a swap-request state change the state machine does not allow.
	KindInvalidTransition
	// KindStaleState means the backend rejected a transition because the entity moved on.
	KindStaleState
	KindNotFound
	KindConflict
	KindBadRequest
	// KindNetwork is a transport failure or timeout; safe to retry manually.
	KindNetwork
	// KindServer is a 5xx; safe to retry manually.
	KindServer
	// KindDecode means a response did not match the endpoint schema.
	KindDecode
)

var kindNames = map[Kind]string{
	KindValidation:        "validation",
	KindAuthentication:    "authentication",
	KindAuthorization:     "authorization",
	KindInvalidTransition: "invalid_transition",
	KindStaleState:        "stale_state",
	KindNotFound:          "not_found",
	KindConflict:          "conflict",
	KindBadRequest:        "bad_request",
	KindNetwork:           "network",
	KindServer:            "server",
	KindDecode:            "decode",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// kindSentinel lets callers match on a kind with errors.Is.
type kindSentinel Kind

func (k kindSentinel) Error() string { return Kind(k).String() }

// Sentinel errors
var (
	ErrValidation        error = kindSentinel(KindValidation)
	ErrAuthentication    error = kindSentinel(KindAuthentication)
	ErrAuthorization     error = kindSentinel(KindAuthorization)
	ErrInvalidTransition error = kindSentinel(KindInvalidTransition)
	ErrStaleState        error = kindSentinel(KindStaleState)
	ErrNotFound          error = kindSentinel(KindNotFound)
	ErrConflict          error = kindSentinel(KindConflict)
	ErrBadRequest        error = kindSentinel(KindBadRequest)
	ErrNetwork           error = kindSentinel(KindNetwork)
	ErrServer            error = kindSentinel(KindServer)
	ErrDecode            error = kindSentinel(KindDecode)
)

// Error is the typed failure every client operation returns.
type Error struct {
	Kind    Kind
	Code    string
	Status  int    // HTTP status, 0 for local failures
	Field   string // set for field-scoped failures
	Message string // single human-readable message
	Body    []byte // raw backend body of a non-2xx response
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Err == nil {
		return msg
	}
	return msg + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	if k, ok := target.(kindSentinel); ok {
		return e.Kind == Kind(k)
	}
	return false
}

// Validation creates a field-scoped local validation error.
func Validation(field, message string) *Error {
	return &Error{Kind: KindValidation, Code: constants.ErrCodeValidation, Field: field, Message: message}
}

// InvalidTransition reports a state change the state machine forbids.
func InvalidTransition(action, from string) *Error {
	return &Error{
		Kind:    KindInvalidTransition,
		Code:    constants.ErrCodeInvalidTransition,
		Message: fmt.Sprintf("cannot %s a request that is %s", action, from),
	}
}

// StaleState reports that the backend already moved an entity to a different state.
func StaleState(message string, err error) *Error {
	if message == "" {
		message = "This request was changed by someone else. Showing its latest state."
	}
	return &Error{Kind: KindStaleState, Code: constants.ErrCodeStaleState, Status: 409, Message: message, Err: err}
}

// Authentication reports that the session must be re-established.
func Authentication(message string, err error) *Error {
	if message == "" {
		message = "Authentication required"
	}
	return &Error{Kind: KindAuthentication, Code: constants.ErrCodeAuthRequired, Status: 401, Message: message, Err: err}
}

// Network wraps a transport failure. Timeouts are network errors too.
func Network(err error, timeout bool) *Error {
	code := constants.ErrCodeNetwork
	message := "Network error, please check your connection and try again"
	if timeout {
		code = constants.ErrCodeTimeout
		message = "The request timed out, please try again"
	}
	return &Error{Kind: KindNetwork, Code: code, Message: message, Err: err}
}

// Decode reports a response that does not match the endpoint schema.
func Decode(endpoint string, err error) *Error {
	return &Error{
		Kind:    KindDecode,
		Code:    constants.ErrCodeInvalidSchema,
		Message: "Unexpected response from server (" + endpoint + ")",
		Err:     err,
	}
}

// KindOf returns the kind of err, or 0 if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}

// Message returns the single human-readable message to show for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		if e.Field != "" {
			return e.Field + ": " + e.Message
		}
		return e.Message
	}
	return "Something went wrong, please try again"
}
