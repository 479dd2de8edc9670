// Package validation holds the checkout field rules shared by the storefront
// client and the order API. Rules are expressed as `binding` struct tags on
// domain.CheckoutForm; RegisterRules installs the custom ones into any
// validator engine, including the one behind gin's binding package.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/jafarshop/storefront/internal/domain"
)

const (
	tagTrimmedMin = "trimmin"
	tagMinDigits  = "mindigits"
)

var (
	engineOnce sync.Once
	engine     *validator.Validate
)

// Engine returns the process-wide validator configured with the storefront rules.
func Engine() *validator.Validate {
	engineOnce.Do(func() {
		v := validator.New()
		v.SetTagName("binding")
		if err := RegisterRules(v); err != nil {
			panic(fmt.Sprintf("register validation rules: %v", err))
		}
		engine = v
	})
	return engine
}

// RegisterRules adds the custom storefront rules to v and reports field
// names using their json names.
func RegisterRules(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation(tagTrimmedMin, trimmedMin); err != nil {
		return fmt.Errorf("register %s: %w", tagTrimmedMin, err)
	}
	if err := v.RegisterValidation(tagMinDigits, minDigits); err != nil {
		return fmt.Errorf("register %s: %w", tagMinDigits, err)
	}
	return nil
}

// Validate checks every field of form and returns all failures, in field order.
func Validate(form domain.CheckoutForm) []domain.FieldError {
	return FieldErrors(Engine().Struct(form))
}

// FieldErrors converts validator errors into field errors. Errors that are
// not rule failures (bad input type, malformed JSON) yield nil.
func FieldErrors(err error) []domain.FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	out := make([]domain.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, domain.FieldError{
			Field:   fe.Field(),
			Message: message(fe),
		})
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case tagTrimmedMin:
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case tagMinDigits:
		return fmt.Sprintf("%s must contain at least %s digits", fe.Field(), fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed the %s rule", fe.Field(), fe.Tag())
	}
}

// trimmedMin counts characters after trimming surrounding whitespace.
func trimmedMin(fl validator.FieldLevel) bool {
	n, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return utf8.RuneCountInString(strings.TrimSpace(fl.Field().String())) >= n
}

// minDigits counts decimal digits, ignoring separators such as "+", "-" or spaces.
func minDigits(fl validator.FieldLevel) bool {
	n, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	digits := 0
	for _, r := range fl.Field().String() {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= n
}
