// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package app

import (
	"context"
	"errors"
	"fmt"
)

// Taxonomy sentinels. Package-level errors of lower layers wrap one of these
// so that errors.Is classifies them regardless of wrapping depth.
var (
	ErrCrypto       = errors.New("crypto error")
	ErrAuth         = errors.New("authentication failed")
	ErrAccessDenied = errors.New("access denied")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrCancelled    = errors.New("cancelled")
)

// Kind is the typed reason of a failed operation.
type Kind int

const (
	KindInternal Kind = iota
	KindCrypto
	KindAuth
	KindAccessDenied
	KindNotFound
	KindConflict
	KindInvalidState
	KindCancelled
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindCrypto:
		return "crypto"
	case KindAuth:
		return "auth"
	case KindAccessDenied:
		return "access_denied"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindInvalidState:
		return "invalid_state"
	case KindCancelled:
		return "cancelled"
	default:
		return "internal"
	}
}

// Message returns the user-facing message of the kind.
func (k Kind) Message() string {
	switch k {
	case KindCrypto:
		return MsgCrypto
	case KindAuth:
		return MsgAuthFailed
	case KindAccessDenied:
		return MsgAccessDenied
	case KindNotFound:
		return MsgNotFound
	case KindConflict:
		return MsgConflict
	case KindInvalidState:
		return MsgInvalidState
	case KindCancelled:
		return MsgCancelled
	default:
		return MsgInternal
	}
}

// sentinel returns the taxonomy sentinel matching k, or nil for KindInternal.
func (k Kind) sentinel() error {
	switch k {
	case KindCrypto:
		return ErrCrypto
	case KindAuth:
		return ErrAuth
	case KindAccessDenied:
		return ErrAccessDenied
	case KindNotFound:
		return ErrNotFound
	case KindConflict:
		return ErrConflict
	case KindInvalidState:
		return ErrInvalidState
	case KindCancelled:
		return ErrCancelled
	default:
		return nil
	}
}

// KindOf maps err onto the taxonomy. Context cancellation and deadline
// errors are reported as [KindCancelled]; unknown errors as [KindInternal].
func KindOf(err error) Kind {
	var appErr *Error
	switch {
	case err == nil:
		return KindInternal
	case errors.As(err, &appErr):
		return appErr.Kind
	case errors.Is(err, ErrCancelled),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return KindCancelled
	case errors.Is(err, ErrCrypto):
		return KindCrypto
	case errors.Is(err, ErrAuth):
		return KindAuth
	case errors.Is(err, ErrAccessDenied):
		return KindAccessDenied
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrInvalidState):
		return KindInvalidState
	default:
		return KindInternal
	}
}

// Error is the error type returned by service operations. It carries the
// typed reason, a message safe to show to the caller and the underlying
// cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is makes an *Error match the taxonomy sentinel of its kind even when the
// cause does not wrap it.
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && s == target
}

// Wrap converts err into an [*Error] classified by [KindOf]. A nil err gives
// nil; an err that already is an *Error is returned unchanged.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return err
	}
	kind := KindOf(err)
	return &Error{Kind: kind, Message: kind.Message(), Err: err}
}

// NewError builds an [*Error] of the given kind with a custom message.
func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: kind.sentinel()}
}
