// Package validation wraps go-playground/validator with a shared instance,
// a region tag and messages suitable for API responses.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"travel-blog-server/models"
	apierrors "travel-blog-server/utils/errors"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// GetValidator returns the process-wide validator.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
		// region accepts an empty value or one of the known regions.
		_ = validate.RegisterValidation("region", func(fl validator.FieldLevel) bool {
			v := fl.Field().String()
			return v == "" || models.Region(v).Valid()
		})
	})
	return validate
}

// ValidateStruct returns nil when s is valid, otherwise a 400 APIError whose
// message lists every failing field.
func ValidateStruct(s any) *apierrors.APIError {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apierrors.Invalid("VALIDATION_ERROR", err.Error())
	}
	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, translateError(fe))
	}
	return apierrors.Invalid("VALIDATION_ERROR", strings.Join(messages, "; "))
}

var errorMessageTemplates = map[string]string{
	"required": "%s is required",
	"email":    "%s must be a valid email address",
	"region":   "%s must be a known region",
}

var errorMessageWithParam = map[string]string{
	"min":     "%s must be at least %s characters",
	"max":     "%s must be at most %s characters",
	"eqfield": "%s must match %s",
	"oneof":   "%s must be one of: %s",
}

func translateError(fe validator.FieldError) string {
	if template, ok := errorMessageTemplates[fe.Tag()]; ok {
		return fmt.Sprintf(template, fe.Field())
	}
	if template, ok := errorMessageWithParam[fe.Tag()]; ok {
		return fmt.Sprintf(template, fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
}
