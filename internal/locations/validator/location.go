package validator

import (
	"errors"
	"fmt"
	"strings"

	"gateless/pkg/logger"
	"gateless/pkg/model"

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

type LocationValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewLocationValidator(log *logger.Logger) *LocationValidator {
	return &LocationValidator{
		validate: validator.New(),
		logger:   log,
	}
}

func (v *LocationValidator) Validate(location *model.ParkingLocation) error {
	if err := v.validate.Struct(location); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translateValidationErrors(validationErrs)
		}
		return err
	}

	return validatePosition(&location.Position)
}

func (v *LocationValidator) ValidateUpdate(update *model.ParkingLocationUpdate) error {
	if err := v.validate.Struct(update); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translateValidationErrors(validationErrs)
		}
		return err
	}

	if update.Position != nil {
		return validatePosition(update.Position)
	}
	return nil
}

func validatePosition(p *model.GeoPoint) error {
	if len(p.Coordinates) != 2 {
		return ValidationErrors{
			ValidationError{Field: "Position", Message: "coordinates must be [longitude, latitude]"},
		}
	}

	lng, lat := p.Longitude(), p.Latitude()
	if lng < -180 || lng > 180 {
		return ValidationErrors{
			ValidationError{Field: "Position", Message: fmt.Sprintf("longitude must be between -180 and 180, got %f", lng)},
		}
	}
	if lat < -90 || lat > 90 {
		return ValidationErrors{
			ValidationError{Field: "Position", Message: fmt.Sprintf("latitude must be between -90 and 90, got %f", lat)},
		}
	}
	return nil
}

func translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
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
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "eq":
			message = fmt.Sprintf("%s must equal %s", err.Field(), err.Param())
		case "len":
			message = fmt.Sprintf("%s must have length %s", err.Field(), err.Param())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
