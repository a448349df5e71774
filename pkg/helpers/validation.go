package helpers

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

// CustomValidator wraps go-playground validator with marketplace rules
type CustomValidator struct {
	validate *validator.Validate
}

// NewCustomValidator creates a new custom validator
func NewCustomValidator() *CustomValidator {
	v := validator.New()

	// Register custom validators
	v.RegisterValidation("upi_vpa", validateUPIVPA)
	v.RegisterValidation("payment_method", validatePaymentMethod)

	return &CustomValidator{validate: v}
}

// Validate validates a struct
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validate.Struct(i)
}

// validateUPIVPA validates UPI virtual payment addresses (name@bank)
func validateUPIVPA(fl validator.FieldLevel) bool {
	vpaRegex := regexp.MustCompile(`^[a-zA-Z0-9._-]{2,256}@[a-zA-Z]{2,64}$`)
	return vpaRegex.MatchString(fl.Field().String())
}

// validatePaymentMethod validates supported payment methods
func validatePaymentMethod(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "TC", "UPI", "EXCHANGE":
		return true
	}
	return false
}
