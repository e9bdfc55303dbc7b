package validators

import (
	"fmt"
	"regexp"
	"strings"

	"forkly/internal/utils"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var validate *validator.Validate

// Referral codes are generated without 0, O, I and L.
var referralCodePattern = regexp.MustCompile(`^[A-HJ-KM-NP-Z1-9]+$`)

func init() {
	validate = validator.New()

	validate.RegisterValidation("object_id", validateObjectID)
	validate.RegisterValidation("referral_code", validateReferralCode)
}

// ValidationError represents a field validation error
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var messages []string
	for _, err := range v {
		messages = append(messages, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return strings.Join(messages, "; ")
}

// Fields flattens the errors into a field-to-message map for API responses.
func (v ValidationErrors) Fields() map[string]string {
	fields := make(map[string]string, len(v))
	for _, err := range v {
		fields[err.Field] = err.Message
	}
	return fields
}

// ValidateStruct validates a struct and returns detailed errors
func ValidateStruct(s interface{}) ValidationErrors {
	var validationErrors ValidationErrors

	err := validate.Struct(s)
	if err != nil {
		for _, fieldErr := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, ValidationError{
				Field:   fieldErr.Field(),
				Tag:     fieldErr.Tag(),
				Message: fmt.Sprintf("failed on the '%s' rule", fieldErr.Tag()),
			})
		}
	}

	return validationErrors
}

func validateObjectID(fl validator.FieldLevel) bool {
	_, err := primitive.ObjectIDFromHex(fl.Field().String())
	return err == nil
}

func validateReferralCode(fl validator.FieldLevel) bool {
	return IsValidReferralCode(fl.Field().String())
}

// IsValidReferralCode reports whether a string has the shape of a generated
// referral code. Codes that fail this never hit the database.
func IsValidReferralCode(code string) bool {
	if len(code) != utils.ReferralCodeLength {
		return false
	}
	return referralCodePattern.MatchString(code)
}
