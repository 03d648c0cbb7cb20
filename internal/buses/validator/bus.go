package validator

import (
	"errors"
	"fmt"
	"strings"

	"busline/pkg/logger"
	"busline/pkg/model"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type BusValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBusValidator(log *logger.Logger) *BusValidator {
	return &BusValidator{
		validate: validator.New(),
		logger:   log,
	}
}

func (v *BusValidator) Validate(bus *model.Bus) error {
	if err := v.validate.Struct(bus); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if !bus.Arrival.Time.After(bus.Departure.Time) {
		return ValidationErrors{
			ValidationError{
				Field:   "Arrival",
				Message: "arrival time must be after departure time",
			},
		}
	}

	return nil
}

func (v *BusValidator) ValidateUpdate(update *model.BusUpdate) error {
	if err := v.validate.Struct(update); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if update.Departure != nil && update.Arrival != nil {
		if !update.Arrival.Time.After(update.Departure.Time) {
			return ValidationErrors{
				ValidationError{
					Field:   "Arrival",
					Message: "arrival time must be after departure time",
				},
			}
		}
	}

	return nil
}

func (v *BusValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "gt":
			message = fmt.Sprintf("%s must be greater than %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
