package validator

import (
	stderrors "errors"

	"github.com/go-playground/validator/v10"
	"github.com/visitor-geolocation/internal/domain"
	"github.com/visitor-geolocation/internal/pkg/errors"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("axis_order", func(fl validator.FieldLevel) bool {
		_, ok := domain.ParseAxisOrder(fl.Field().String())
		return ok
	})
}

// Validate - валидация структуры, ошибки полей возвращаются как INVALID_REQUEST с деталями
func Validate(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return errors.ErrInvalidRequest
	}

	details := make(map[string]interface{}, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[fe.Field()] = fe.Tag()
	}
	return errors.ErrInvalidRequest.WithDetails(details)
}

// GetValidator - получить валидатор для кастомной конфигурации
func GetValidator() *validator.Validate {
	return validate
}
