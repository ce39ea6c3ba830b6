package settings

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	apperrors "argus-settings/internal/common/errors"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Report the upper-case setting names instead of Go field names.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// Validate checks s and returns a SETTINGS_INVALID error listing every problem,
// or nil.
func Validate(s *Settings) error {
	var problems []string

	if err := structValidator().Struct(s); err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return apperrors.NewSettingsInvalidError([]string{err.Error()})
		}
		for _, fe := range validationErrors {
			problems = append(problems, describeFieldError(fe))
		}
	}

	if err := ValidateMediaPlugins(s.MediaPlugins); err != nil {
		if stdErr, ok := apperrors.AsStandardError(err); ok {
			problems = append(problems, "MEDIA_PLUGINS: "+stdErr.Details)
		} else {
			problems = append(problems, "MEDIA_PLUGINS: "+err.Error())
		}
	}

	if len(problems) > 0 {
		return apperrors.NewSettingsInvalidError(problems)
	}
	return nil
}

func describeFieldError(fe validator.FieldError) string {
	key := strings.TrimPrefix(fe.Namespace(), "Settings.")
	switch fe.Tag() {
	case "required", "required_if":
		return fmt.Sprintf("%s: is required", key)
	case "oneof":
		return fmt.Sprintf("%s: %q is not one of [%s]", key, fe.Value(), fe.Param())
	case "email":
		return fmt.Sprintf("%s: %q is not a valid e-mail address", key, fe.Value())
	case "url":
		return fmt.Sprintf("%s: %q is not a valid URL", key, fe.Value())
	case "gte", "lte":
		return fmt.Sprintf("%s: %v is out of range", key, fe.Value())
	}
	return fmt.Sprintf("%s: failed %s", key, fe.Tag())
}
