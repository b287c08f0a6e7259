package ssi

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindValidation Kind = iota + 1
	KindPolicyDisabled
	KindDuplicateAccount
	KindNotRegistered
	KindVerificationRejected
	KindDelivery
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindPolicyDisabled:
		return "policy disabled"
	case KindDuplicateAccount:
		return "duplicate account"
	case KindNotRegistered:
		return "not registered"
	case KindVerificationRejected:
		return "verification rejected"
	case KindDelivery:
		return "delivery"
	}
	return "unknown"
}

var (
	ErrValidation           = errors.New("validation error")
	ErrPolicyDisabled       = errors.New("policy disabled")
	ErrDuplicateAccount     = errors.New("duplicate account")
	ErrNotRegistered        = errors.New("not registered")
	ErrVerificationRejected = errors.New("verification rejected")
	ErrDelivery             = errors.New("delivery failed")
)

var kindSentinels = map[Kind]error{
	KindValidation:           ErrValidation,
	KindPolicyDisabled:       ErrPolicyDisabled,
	KindDuplicateAccount:     ErrDuplicateAccount,
	KindNotRegistered:        ErrNotRegistered,
	KindVerificationRejected: ErrVerificationRejected,
	KindDelivery:             ErrDelivery,
}

// Error is a business failure reported to the caller. ID and Message are
// the Strapi-compatible i18n id and default text.
type Error struct {
	Kind    Kind
	ID      string
	Message string
	Field   string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.ID, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.ID)
}

// Is matches the sentinel of the error's kind
func (e *Error) Is(target error) bool {
	return kindSentinels[e.Kind] == target
}

func (e *Error) Unwrap() error {
	return e.cause
}

func newError(kind Kind, id, message string) *Error {
	return &Error{Kind: kind, ID: id, Message: message}
}

func errRegisterDisabled() *Error {
	return newError(KindPolicyDisabled, "Auth.advanced.allow_register", "Register action is currently disabled.")
}

func errEmailProvide() *Error {
	e := newError(KindValidation, "Auth.form.error.email.provide", "Please provide your email.")
	e.Field = "email"
	return e
}

func errRoleNotFound() *Error {
	return newError(KindValidation, "Auth.form.error.role.notFound", "Impossible to find the default role.")
}

func errEmailFormat() *Error {
	e := newError(KindValidation, "Auth.form.error.email.format", "Please provide valid email address.")
	e.Field = "email"
	return e
}

func errEmailTaken() *Error {
	e := newError(KindDuplicateAccount, "Auth.form.error.email.taken", "Email is already taken.")
	e.Field = "email"
	return e
}

func errUsernameTaken() *Error {
	e := newError(KindDuplicateAccount, "Auth.form.error.username.taken", "Username already taken")
	e.Field = "username"
	return e
}

func errTokenProvide() *Error {
	return newError(KindValidation, "vp-auth.error.token.provide", "Please provide a correlation token.")
}

func errNotRegistered() *Error {
	return newError(KindNotRegistered, "vp-auth.error.not_registered", "User not registered!")
}

func errBlocked() *Error {
	return newError(KindNotRegistered, "Auth.form.error.blocked", "Your account has been blocked by an administrator")
}

func errVerificationRejected(reason string) *Error {
	e := newError(KindVerificationRejected, "vp-auth.error.invalid_presentation", "Verifiable presentation rejected.")
	if reason != "" {
		e.cause = errors.New(reason)
	}
	return e
}

func errDelivery(cause error) *Error {
	e := newError(KindDelivery, "Auth.form.error.email.send", "Unable to send the confirmation email.")
	e.cause = cause
	return e
}

// AsError extracts the business error from err's chain
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
