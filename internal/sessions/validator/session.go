package validator

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"checkinapp/pkg/logger"
	"checkinapp/pkg/model"

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

type SessionValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewSessionValidator(log *logger.Logger) *SessionValidator {
	v := validator.New()

	v.RegisterStructValidation(validateSessionWindow, model.Session{})

	log.Info("Session validator initialized successfully")

	return &SessionValidator{
		validate: v,
		logger:   log,
	}
}

// validateSessionWindow enforces cross-field rules the tag syntax cannot
// express: a session must span a positive window, and enforcing capacity on
// an unlimited (zero) capacity is a contradiction.
func validateSessionWindow(sl validator.StructLevel) {
	session := sl.Current().Interface().(model.Session)

	if !session.StartTime.IsZero() && !session.EndTime.IsZero() {
		if !session.EndTime.After(session.StartTime) {
			sl.ReportError(session.EndTime, "EndTime", "end_time", "valid_session_window", "")
		} else if session.EndTime.Sub(session.StartTime) > 24*time.Hour {
			sl.ReportError(session.EndTime, "EndTime", "end_time", "valid_session_window", "")
		}
	}

	if session.CapacityEnforced && session.Capacity <= 0 {
		sl.ReportError(session.Capacity, "Capacity", "capacity", "enforceable_capacity", "")
	}
}

func (v *SessionValidator) Validate(s *model.Session) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *SessionValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
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
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "gtfield":
			message = fmt.Sprintf("%s must be after %s", err.Field(), err.Param())
		case "valid_session_window":
			message = "end_time must be after start_time and the session must not span more than 24 hours"
		case "enforceable_capacity":
			message = "capacity must be positive when capacity_enforced is set"
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
