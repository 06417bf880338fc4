package entities

import (
	"errors"
	"fmt"
	"github.com/go-playground/validator/v10"
	"reflect"
	"strings"
	"sync"
)

// ValidationError reports the first violated rule of a form.
type ValidationError struct {
	Field string
	Rule  string
	Param string
}

func (e *ValidationError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("field %s failed rule %s=%s", e.Field, e.Rule, e.Param)
	}
	return fmt.Sprintf("field %s failed rule %s", e.Field, e.Rule)
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func formValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return field.Name
			}
			return name
		})
		_ = validate.RegisterValidation("province", func(fl validator.FieldLevel) bool {
			return Province(fl.Field().String()).IsValid()
		})
		_ = validate.RegisterValidation("jobtype", func(fl validator.FieldLevel) bool {
			return JobType(fl.Field().String()).IsValid()
		})
		// An absent salary is allowed, a present one must be a finite non-negative amount.
		validate.RegisterCustomTypeFunc(func(field reflect.Value) any {
			salary, ok := field.Interface().(Salary)
			if !ok || !salary.Valid {
				return 0.0
			}
			return salary.Amount
		}, Salary{})
		_ = validate.RegisterValidation("salary", func(fl validator.FieldLevel) bool {
			return Salary{Amount: fl.Field().Float(), Valid: true}.IsSound()
		})
	})
	return validate
}

func Validate(form any) error {

	err := formValidator().Struct(form)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
		first := fieldErrors[0]
		return &ValidationError{Field: first.Field(), Rule: first.Tag(), Param: first.Param()}
	}
	return err
}
