package fields

import (
	"errors"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Custom validation tags.
const (
	TagSlug        = "slug"
	TagDockerImage = "dockerimage"
	TagHTTPURL     = "httpurl"
)

// ErrorResponse describes one failed field.
type ErrorResponse struct {
	FailedField string `json:"field"`
	Tag         string `json:"tag"`
	Param       string `json:"param,omitempty"`
	Value       any    `json:"value,omitempty"`
}

var (
	validate     *validator.Validate //nolint:gochecknoglobals
	validateOnce sync.Once           //nolint:gochecknoglobals
)

// Validator returns the shared validator with the custom tags registered.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		_ = validate.RegisterValidation(TagSlug, func(fl validator.FieldLevel) bool {
			return ValidSlug(fl.Field().String())
		})
		_ = validate.RegisterValidation(TagDockerImage, func(fl validator.FieldLevel) bool {
			return ValidDockerImage(fl.Field().String())
		})
		_ = validate.RegisterValidation(TagHTTPURL, func(fl validator.FieldLevel) bool {
			return ValidURL(fl.Field().String())
		})
	})

	return validate
}

// Validate checks data against its validate tags. It returns nil when data is valid.
func Validate(data any) []ErrorResponse {
	err := Validator().Struct(data)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []ErrorResponse{{Tag: err.Error()}}
	}

	out := make([]ErrorResponse, 0, len(verrs))

	for _, fe := range verrs {
		out = append(out, ErrorResponse{
			FailedField: fe.Namespace(),
			Tag:         fe.Tag(),
			Param:       fe.Param(),
			Value:       fe.Value(),
		})
	}

	return out
}
