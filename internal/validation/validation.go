package validation

import (
	"fmt"
	"strings"
	"unicode"

	"campaigner/internal/constants"
	"campaigner/internal/errors"
)

// ValidatePhoneNumber validates a normalized phone number's format and length.
func ValidatePhoneNumber(phone string) error {
	if phone == "" {
		return errors.New(errors.ErrCodeMissingPhone, "phone number cannot be empty")
	}

	cleaned := strings.TrimPrefix(phone, "+")

	if len(cleaned) < constants.MinPhoneNumberLength {
		return errors.New(errors.ErrCodeValidationFailed,
			fmt.Sprintf("phone number must be at least %d digits", constants.MinPhoneNumberLength))
	}
	if len(cleaned) > constants.MaxPhoneNumberLength {
		return errors.New(errors.ErrCodeValidationFailed,
			fmt.Sprintf("phone number too long (max %d digits)", constants.MaxPhoneNumberLength))
	}

	for _, char := range cleaned {
		if !unicode.IsDigit(char) {
			return errors.New(errors.ErrCodeValidationFailed, "phone number must contain only digits")
		}
	}

	return nil
}

// ValidateExternalID validates a channel-assigned message identifier.
func ValidateExternalID(externalID string) error {
	if externalID == "" {
		return errors.New(errors.ErrCodeValidationFailed, "external ID cannot be empty")
	}
	if len(externalID) > constants.MaxExternalIDLength {
		return errors.New(errors.ErrCodeValidationFailed,
			fmt.Sprintf("external ID too long (max %d characters)", constants.MaxExternalIDLength))
	}
	for _, char := range externalID {
		if char == '\x00' || char == '\n' || char == '\r' || char == '\t' {
			return errors.New(errors.ErrCodeValidationFailed, "external ID contains invalid characters")
		}
	}
	return nil
}

// ValidateTemplateName validates a template's display name.
func ValidateTemplateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.NewValidationError("name", "template name cannot be empty")
	}
	if len(name) > constants.MaxTemplateNameLength {
		return errors.NewValidationError("name",
			fmt.Sprintf("template name too long (max %d characters)", constants.MaxTemplateNameLength))
	}
	return nil
}

// ValidateTemplateContent validates a template body.
func ValidateTemplateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return errors.NewValidationError("content", "template content cannot be empty")
	}
	if len(content) > constants.MaxTemplateContentLength {
		return errors.NewValidationError("content",
			fmt.Sprintf("template content too long (max %d characters)", constants.MaxTemplateContentLength))
	}
	return nil
}
