package middleware

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/creatorhub/backend/internal/domain/earnings"
	"github.com/creatorhub/backend/internal/interfaces/http/dto"
)

var (
	setupOnce sync.Once
	setupErr  error
)

// SetupValidator configures gin's validator: field names come from json/form
// tags, and the platform and earnings_status tags are registered. Safe to call
// more than once.
func SetupValidator() error {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			setupErr = errors.New("middleware: gin validator engine is not validator/v10")
			return
		}
		setupErr = RegisterValidations(v)
	})
	return setupErr
}

// RegisterValidations installs the tag-name function and custom tags on v
func RegisterValidations(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})
	if err := v.RegisterValidation("platform", validatePlatform); err != nil {
		return err
	}
	return v.RegisterValidation("earnings_status", validateEarningsStatus)
}

func validatePlatform(fl validator.FieldLevel) bool {
	_, err := earnings.ParsePlatform(fl.Field().String())
	return err == nil
}

func validateEarningsStatus(fl validator.FieldLevel) bool {
	return earnings.Status(strings.ToLower(strings.TrimSpace(fl.Field().String()))).IsValid()
}

// FormatValidationErrors formats validation errors into a standard response
func FormatValidationErrors(err error, requestID string) dto.Response {
	var details []dto.ValidationDetail

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			details = append(details, dto.ValidationDetail{
				Field:   e.Field(),
				Message: getValidationMessage(e),
			})
		}
	}

	return dto.NewValidationErrorResponse("Request validation failed", requestID, details)
}

// HandleValidationError answers 400 for a failed bind. Validator failures list
// the offending fields; anything else (bad JSON, non-numeric query) is a plain
// bad request.
func HandleValidationError(c *gin.Context, err error) {
	requestID := c.GetString("request_id")
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		c.AbortWithStatusJSON(dto.GetHTTPStatus(dto.ErrCodeBadRequest),
			dto.NewErrorResponseWithRequestID(dto.ErrCodeBadRequest, "Malformed request", requestID))
		return
	}
	c.AbortWithStatusJSON(dto.GetHTTPStatus(dto.ErrCodeValidation), FormatValidationErrors(err, requestID))
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "min":
		if e.Type().Kind() == reflect.String {
			return "Must be at least " + e.Param() + " characters"
		}
		return "Must be at least " + e.Param()
	case "max":
		if e.Type().Kind() == reflect.String {
			return "Must be at most " + e.Param() + " characters"
		}
		return "Must be at most " + e.Param()
	case "oneof":
		return "Must be one of: " + e.Param()
	case "gte":
		return "Must be greater than or equal to " + e.Param()
	case "lte":
		return "Must be less than or equal to " + e.Param()
	case "numeric":
		return "Must be numeric"
	case "datetime":
		return "Must be a date in the format " + e.Param()
	case "platform":
		return "Must be one of: mavely shopmy ltk amazon instagram"
	case "earnings_status":
		return "Must be one of: open pending paid reversed"
	default:
		return "Invalid value"
	}
}
