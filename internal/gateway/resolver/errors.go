package resolver

import (
	"errors"
	"fmt"
)

// Kind classifies a resolver failure. Kinds are part of the caller contract:
// the client UI branches on them (TokenNotRegistered sends the user to
// registration, UpbankUnauthorized tells them the stored secret is bad).
type Kind string

const (
	// KindUnauthorized: no verified identity on the invocation.
	KindUnauthorized Kind = "Unauthorized"
	// KindBadRequest: invalid caller-supplied arguments.
	KindBadRequest Kind = "BadRequest"
	// KindTokenNotRegistered: no secret stored for this identity yet.
	KindTokenNotRegistered Kind = "TokenNotRegistered"
	// KindUpbankUnauthorized: the stored secret was rejected upstream
	// (401/403). Distinct from TokenNotRegistered: a secret exists but is
	// invalid, expired or revoked.
	KindUpbankUnauthorized Kind = "UpbankUnauthorized"
	// KindUpbankAPIError: any other upstream failure (>= 400).
	KindUpbankAPIError Kind = "UpbankApiError"
	// KindInternal: invariant violation inside the pipeline.
	KindInternal Kind = "InternalError"
)

// Error is a typed resolver abort. It propagates to the caller unchanged
// from whichever step raised it.
type Error struct {
	Kind    Kind
	Message string
	// StatusCode and Body carry upstream diagnostics for the Upbank kinds.
	StatusCode int
	Body       string
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s (upstream status %d)", e.Kind, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Errorf builds an Error with a formatted message.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// AsError extracts a typed resolver error, wrapping anything else as
// KindInternal so callers always see a classified failure.
func AsError(err error) *Error {
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr
	}
	return &Error{Kind: KindInternal, Message: err.Error()}
}
