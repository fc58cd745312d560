// Package validation checks inbound payloads before any business logic runs.
package validation

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"gamestore/backend/internal/apperror"

	"github.com/go-playground/validator/v10"
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	fullNamePattern = regexp.MustCompile(`^[a-zA-Z ]+$`)
	gameNamePattern = regexp.MustCompile(`^[a-zA-Z0-9\s':-]+$`)
)

// PasswordSymbols are the special characters a password may (and must) contain.
const PasswordSymbols = "@$!%*?&_"

// Validator wraps a validator.Validate with the store's custom rules.
type Validator struct {
	validate *validator.Validate
}

// New creates a Validator with the custom rules registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	mustRegister(v, "username", patternRule(usernamePattern))
	mustRegister(v, "fullname", patternRule(fullNamePattern))
	mustRegister(v, "gamename", patternRule(gameNamePattern))
	mustRegister(v, "strongpassword", func(fl validator.FieldLevel) bool {
		return IsStrongPassword(fl.Field().String())
	})
	mustRegister(v, "decimal2", func(fl validator.FieldLevel) bool {
		return HasAtMostTwoDecimals(fl.Field().Float())
	})

	return &Validator{validate: v}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

func patternRule(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

// Struct validates s and returns a ValidationError describing the first violation.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return apperror.NewValidation("%s", describe(verrs[0]))
	}
	return apperror.NewValidation("%s", err.Error())
}

// IsStrongPassword reports whether pw has at least one lower case letter, one upper case
// letter, one digit and one symbol from PasswordSymbols, and nothing else.
func IsStrongPassword(pw string) bool {
	var lower, upper, digit, symbol bool
	for _, r := range pw {
		switch {
		case r > unicode.MaxASCII:
			return false
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(PasswordSymbols, r):
			symbol = true
		default:
			return false
		}
	}
	return lower && upper && digit && symbol
}

// HasAtMostTwoDecimals reports whether f has no more than two fractional digits.
func HasAtMostTwoDecimals(f float64) bool {
	scaled := f * 100
	return math.Abs(scaled-math.Round(scaled)) < 1e-6
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	isString := fe.Kind() == reflect.String

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%q is required", field)
	case "min":
		if isString {
			return fmt.Sprintf("%q length must be at least %s characters long", field, fe.Param())
		}
		return fmt.Sprintf("%q must be greater than or equal to %s", field, fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("%q length must be less than or equal to %s characters long", field, fe.Param())
		}
		return fmt.Sprintf("%q must be less than or equal to %s", field, fe.Param())
	case "email":
		return fmt.Sprintf("%q must be a valid email", field)
	case "uuid", "uuid4":
		return fmt.Sprintf("%q must be a valid GUID", field)
	case "username", "fullname", "gamename":
		return fmt.Sprintf("%q with value %q fails to match the required pattern", field, fmt.Sprint(fe.Value()))
	case "strongpassword":
		return fmt.Sprintf("%q must contain upper and lower case letters, a digit and one of %s", field, PasswordSymbols)
	case "decimal2":
		return fmt.Sprintf("%q must have no more than 2 decimal places", field)
	default:
		return fmt.Sprintf("%q is invalid", field)
	}
}
