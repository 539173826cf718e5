// Package action defines the action catalog, argument validation, and
// the executor that applies actions to the canvas store.
package action

import (
	"errors"
	"fmt"

	"canvassist/internal/auth"
)

// Kind classifies an action error. Every kind is recoverable and scoped
// to one turn.
type Kind string

const (
	KindPermissionDenied    Kind = "permission_denied"
	KindUnknownAction       Kind = "unknown_action"
	KindInvalidArgument     Kind = "invalid_argument"
	KindNotFound            Kind = "not_found"
	KindAmbiguousTarget     Kind = "ambiguous_target"
	KindProviderUnavailable Kind = "provider_unavailable"
)

// Error is a typed action failure.
type Error struct {
	Kind    Kind
	Action  string
	Field   string
	Missing auth.Permission
	Msg     string
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindPermissionDenied:
		return fmt.Sprintf("%s: requires the %s permission", e.Action, e.Missing)
	case KindUnknownAction:
		return fmt.Sprintf("%s: action is not available", e.Action)
	case KindInvalidArgument:
		if e.Field != "" {
			return fmt.Sprintf("%s: invalid argument %q: %s", e.Action, e.Field, e.Msg)
		}
		return fmt.Sprintf("%s: invalid argument: %s", e.Action, e.Msg)
	case KindNotFound:
		return fmt.Sprintf("%s: %s", e.Action, e.Msg)
	default:
		return fmt.Sprintf("%s: %s", e.Action, e.Msg)
	}
}

// PermissionDenied builds a denial error.
func PermissionDenied(actionID string, missing auth.Permission) *Error {
	return &Error{Kind: KindPermissionDenied, Action: actionID, Missing: missing}
}

// UnknownAction builds an unknown-action error. Unknown ids are treated
// the same as denials for safety.
func UnknownAction(actionID string) *Error {
	return &Error{Kind: KindUnknownAction, Action: actionID}
}

// InvalidArgument builds a schema-mismatch error.
func InvalidArgument(actionID, field, msg string) *Error {
	return &Error{Kind: KindInvalidArgument, Action: actionID, Field: field, Msg: msg}
}

// NotFound builds a stale-reference error.
func NotFound(actionID, msg string) *Error {
	return &Error{Kind: KindNotFound, Action: actionID, Msg: msg}
}

// AsError extracts a typed *Error from err, or wraps it as an
// invalid-argument failure.
func AsError(actionID string, err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return &Error{Kind: KindInvalidArgument, Action: actionID, Msg: err.Error()}
}
