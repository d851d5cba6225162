package validation

import (
	"fmt"
	"reflect"
	"strings"

	"careerquest/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report json names so messages match the request body
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	mustRegister(v, "mission_category", func(fl validator.FieldLevel) bool {
		return models.MissionCategory(fl.Field().String()).IsValid()
	})
	mustRegister(v, "mission_difficulty", func(fl validator.FieldLevel) bool {
		return models.MissionDifficulty(fl.Field().String()).IsValid()
	})
	mustRegister(v, "notblank", validators.NotBlank)

	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %q: %v", tag, err))
	}
}

// ValidateStruct validates a struct using go-playground/validator
func ValidateStruct(s interface{}) error {
	if s == nil {
		return nil
	}

	// Check if it's a pointer to a struct
	val := reflect.ValueOf(s)
	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return nil
		}
		val = val.Elem()
	}

	if val.Kind() != reflect.Struct {
		return fmt.Errorf("validator: expected a struct, got %T", s)
	}

	err := validate.Struct(s)
	if err != nil {
		// Convert validation errors to a more user-friendly format
		if ve, ok := err.(validator.ValidationErrors); ok {
			var errs models.ValidationErrors
			for _, e := range ve {
				errs.Add(fieldPath(e), fmt.Sprintf("failed validation: %s", e.Tag()), strings.ToUpper(e.Tag()), e.Value())
			}
			return errs
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	return nil
}

// fieldPath drops the root struct name from the namespace
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return e.Field()
}
