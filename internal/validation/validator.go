// Package validation wraps go-playground/validator and converts its
// failures into apperr validation errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"foodgram/internal/apperr"

	"github.com/go-playground/validator/v10"
)

var (
	slugPattern     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.@+-]+$`)
)

// ReservedUsername is the path segment used for the caller's own profile.
const ReservedUsername = "me"

// Validator wraps go-playground/validator with domain error conversion.
type Validator struct {
	v *validator.Validate
}

// New creates a validator with the slug and username tags registered.
func New() *Validator {
	v := validator.New()

	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("json")
		if name == "" {
			return fld.Name
		}
		if i := strings.IndexByte(name, ','); i >= 0 {
			name = name[:i]
		}
		if name == "-" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return IsSlug(fl.Field().String())
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})

	return &Validator{v: v}
}

// Engine exposes the underlying validator so gin binding can share it.
func (v *Validator) Engine() *validator.Validate {
	return v.v
}

// Validate validates a struct and returns a domain error.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return v.formatError(err)
	}
	return nil
}

func (v *Validator) formatError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	fieldErrors := make(map[string]string, len(validationErrs))
	for _, e := range validationErrs {
		fieldErrors[e.Field()] = v.friendlyMessage(e)
	}

	out := apperr.ErrValidation.WithDetails(fieldErrors)
	if len(validationErrs) == 1 {
		e := validationErrs[0]
		out = out.WithField(e.Field()).WithMessage("%s %s", e.Field(), fieldErrors[e.Field()])
	}
	return out
}

func (v *Validator) friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s", e.Param())
	case "max":
		return fmt.Sprintf("must not exceed %s", e.Param())
	case "url", "http_url":
		return "must be a valid URL"
	case "oneof":
		return "must be one of: " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	case "slug":
		return "may contain only letters, digits, '-' and '_'"
	case "username":
		return "may contain only letters, digits and @/./+/-/_"
	default:
		return "is invalid"
	}
}

// IsSlug reports whether s is a valid tag slug.
func IsSlug(s string) bool {
	return slugPattern.MatchString(s)
}

// CheckUsername enforces the ASCII charset and the reserved name.
func CheckUsername(username string) error {
	if strings.EqualFold(username, ReservedUsername) {
		return apperr.ErrReservedUsername
	}
	if !usernamePattern.MatchString(username) {
		return apperr.ErrInvalidUsername
	}
	return nil
}
