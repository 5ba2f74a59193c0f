// Package apperr defines the domain error taxonomy shared by services,
// repositories and handlers.
//
// Services return typed errors, handlers map them to HTTP responses:
//
//	if errors.Is(err, apperr.ErrAlreadyExists) {
//	    ...
//	}
//
// Matching works on two levels. A sentinel carrying a Reason matches only
// errors with the same Reason; a sentinel with only a Kind matches every
// error of that Kind.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the coarse category of a domain error.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindConflict     Kind = "conflict"
	KindNotFound     Kind = "not_found"
	KindForbidden    Kind = "forbidden"
	KindUnauthorized Kind = "unauthorized"
	KindRateLimited  Kind = "rate_limited"
	KindInternal     Kind = "internal"
)

// HTTPStatus returns the status code used when the kind reaches a handler.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Reason is the precise, machine-readable cause of an error.
type Reason string

const (
	ReasonEmptyIngredients       Reason = "empty_ingredients"
	ReasonDuplicateIngredient    Reason = "duplicate_ingredient"
	ReasonAmountOutOfRange       Reason = "amount_out_of_range"
	ReasonDuplicateTag           Reason = "duplicate_tag"
	ReasonCookingTimeOutOfRange  Reason = "cooking_time_out_of_range"
	ReasonMissingImage           Reason = "missing_image"
	ReasonMissingTags            Reason = "missing_tags"
	ReasonUnknownIngredient      Reason = "unknown_ingredient"
	ReasonUnknownTag             Reason = "unknown_tag"
	ReasonInvalidImage           Reason = "invalid_image"
	ReasonAlreadyExists          Reason = "already_exists"
	ReasonSelfReferenceForbidden Reason = "self_reference_forbidden"
	ReasonRelationNotFound       Reason = "relation_not_found"
	ReasonLinkNotFound           Reason = "link_not_found"
	ReasonRecipeNotFound         Reason = "recipe_not_found"
	ReasonUserNotFound           Reason = "user_not_found"
	ReasonTagNotFound            Reason = "tag_not_found"
	ReasonIngredientNotFound     Reason = "ingredient_not_found"
	ReasonUsernameTaken          Reason = "username_taken"
	ReasonEmailTaken             Reason = "email_taken"
	ReasonReservedUsername       Reason = "reserved_username"
	ReasonInvalidUsername        Reason = "invalid_username"
	ReasonInvalidURL             Reason = "invalid_url"
	ReasonTokenSpaceExhausted    Reason = "token_space_exhausted"
)

// Error is a domain error. Field names the input attribute at fault, when
// there is one. Details carries extra structured data such as a per-field
// message map.
type Error struct {
	Kind    Kind   `json:"-"`
	Reason  Reason `json:"reason,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"error"`
	Details any    `json:"details,omitempty"`
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches by Reason when the target has one, otherwise by Kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	if t.Reason != "" {
		return e.Reason == t.Reason
	}
	return e.Kind == t.Kind
}

// HTTPStatus returns the HTTP status for this error.
func (e *Error) HTTPStatus() int {
	return e.Kind.HTTPStatus()
}

// WithField returns a copy attributed to field.
func (e *Error) WithField(field string) *Error {
	cp := *e
	cp.Field = field
	return &cp
}

// WithMessage returns a copy with a custom message.
func (e *Error) WithMessage(format string, args ...any) *Error {
	cp := *e
	cp.Message = fmt.Sprintf(format, args...)
	return &cp
}

// WithDetails returns a copy carrying details.
func (e *Error) WithDetails(details any) *Error {
	cp := *e
	cp.Details = details
	return &cp
}

// WithCause returns a copy wrapping err.
func (e *Error) WithCause(err error) *Error {
	cp := *e
	cp.cause = err
	return &cp
}

// Kind sentinels.
var (
	ErrValidation   = &Error{Kind: KindValidation, Message: "validation failed"}
	ErrConflict     = &Error{Kind: KindConflict, Message: "conflict"}
	ErrNotFound     = &Error{Kind: KindNotFound, Message: "not found"}
	ErrForbidden    = &Error{Kind: KindForbidden, Message: "forbidden"}
	ErrUnauthorized = &Error{Kind: KindUnauthorized, Message: "unauthorized"}
	ErrRateLimited  = &Error{Kind: KindRateLimited, Message: "too many requests"}
	ErrInternal     = &Error{Kind: KindInternal, Message: "internal error"}
)

// Recipe composition.
var (
	ErrEmptyIngredients      = newErr(KindValidation, ReasonEmptyIngredients, "ingredients", "at least one ingredient is required")
	ErrDuplicateIngredient   = newErr(KindValidation, ReasonDuplicateIngredient, "ingredients", "ingredients must not repeat")
	ErrAmountOutOfRange      = newErr(KindValidation, ReasonAmountOutOfRange, "ingredients", "ingredient amount is out of range")
	ErrDuplicateTag          = newErr(KindValidation, ReasonDuplicateTag, "tags", "tags must not repeat")
	ErrCookingTimeOutOfRange = newErr(KindValidation, ReasonCookingTimeOutOfRange, "cooking_time", "cooking time is out of range")
	ErrMissingImage          = newErr(KindValidation, ReasonMissingImage, "image", "image is required")
	ErrMissingTags           = newErr(KindValidation, ReasonMissingTags, "tags", "at least one tag is required")
	ErrUnknownIngredient     = newErr(KindValidation, ReasonUnknownIngredient, "ingredients", "ingredient does not exist")
	ErrUnknownTag            = newErr(KindValidation, ReasonUnknownTag, "tags", "tag does not exist")
	ErrInvalidImage          = newErr(KindValidation, ReasonInvalidImage, "image", "image payload is invalid")
)

// Relations.
var (
	ErrAlreadyExists          = newErr(KindConflict, ReasonAlreadyExists, "", "relation already exists")
	ErrSelfReferenceForbidden = newErr(KindConflict, ReasonSelfReferenceForbidden, "", "cannot subscribe to yourself")
	ErrRelationNotFound       = newErr(KindNotFound, ReasonRelationNotFound, "", "relation does not exist")
)

// Entities.
var (
	ErrRecipeNotFound     = newErr(KindNotFound, ReasonRecipeNotFound, "", "recipe not found")
	ErrUserNotFound       = newErr(KindNotFound, ReasonUserNotFound, "", "user not found")
	ErrTagNotFound        = newErr(KindNotFound, ReasonTagNotFound, "", "tag not found")
	ErrIngredientNotFound = newErr(KindNotFound, ReasonIngredientNotFound, "", "ingredient not found")
)

// Users.
var (
	ErrUsernameTaken    = newErr(KindConflict, ReasonUsernameTaken, "username", "username already in use")
	ErrEmailTaken       = newErr(KindConflict, ReasonEmailTaken, "email", "email already in use")
	ErrReservedUsername = newErr(KindValidation, ReasonReservedUsername, "username", "username is reserved")
	ErrInvalidUsername  = newErr(KindValidation, ReasonInvalidUsername, "username", "username contains invalid characters")
)

// Short links.
var (
	ErrLinkNotFound        = newErr(KindNotFound, ReasonLinkNotFound, "token", "short link not found")
	ErrInvalidURL          = newErr(KindValidation, ReasonInvalidURL, "url", "url must be an absolute http(s) address")
	ErrTokenSpaceExhausted = newErr(KindInternal, ReasonTokenSpaceExhausted, "", "could not allocate a unique short link token")
)

func newErr(kind Kind, reason Reason, field, msg string) *Error {
	return &Error{Kind: kind, Reason: reason, Field: field, Message: msg}
}

// Validation creates an ad hoc validation error for field.
func Validation(field, msg string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: msg}
}

// Forbidden creates a forbidden error.
func Forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Message: msg}
}

// Unauthorized creates an unauthorized error.
func Unauthorized(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

// Internal wraps an unexpected failure.
func Internal(err error) *Error {
	return ErrInternal.WithCause(err)
}

// As extracts the domain error from err. Non-domain errors come back as
// an internal error wrapping err.
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err)
}
