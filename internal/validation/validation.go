package validation

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// slugPattern accepts lowercase kebab-case: letters/digits separated by
// single hyphens, no leading or trailing hyphen.
var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

func init() {
	_ = validate.RegisterValidation("slug", validateSlug)
}

func validateSlug(fl validator.FieldLevel) bool {
	return slugPattern.MatchString(fl.Field().String())
}

// ValidateStruct validates a struct using go-playground/validator
func ValidateStruct(s interface{}) error {
	if s == nil {
		return nil
	}

	// Check if it's a pointer to a struct
	val := reflect.ValueOf(s)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	if val.Kind() != reflect.Struct {
		return fmt.Errorf("validator: expected a struct, got %T", s)
	}

	err := validate.Struct(s)
	if err != nil {
		// Convert validation errors to a more user-friendly format
		if ve, ok := err.(validator.ValidationErrors); ok {
			errMsgs := make([]string, 0, len(ve))
			for _, e := range ve {
				errMsgs = append(errMsgs, fmt.Sprintf("field '%s' failed validation: %s", e.Field(), e.Tag()))
			}
			return fmt.Errorf("%s", strings.Join(errMsgs, "; "))
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	return nil
}
