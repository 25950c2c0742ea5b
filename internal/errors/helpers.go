package errors

import (
	"fmt"
)

// Common error creators for frequent use cases

// NewValidationError creates a validation error with field context
func NewValidationError(field, message string) *AppError {
	return New(ErrCodeValidationFailed, message).
		WithContext("field", field).
		WithUserMessage(fmt.Sprintf("Invalid %s: %s", field, message))
}

// NewConfigError creates a configuration error
func NewConfigError(key, message string) *AppError {
	return New(ErrCodeInvalidConfig, message).
		WithContext("config_key", key).
		WithUserMessage("Configuration error")
}

// NewStoreError creates a backing-store error with operation context
func NewStoreError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeStoreQuery, fmt.Sprintf("store %s failed", operation)).
		WithContext("operation", operation).
		WithUserMessage("Store operation failed")
}

// NewTransientStoreError creates a retryable backing-store error
func NewTransientStoreError(operation string, err error) *AppError {
	return WrapRetryable(err, ErrCodeTransientStore, fmt.Sprintf("store %s failed transiently", operation)).
		WithContext("operation", operation).
		WithUserMessage("Store is busy, please retry")
}

// NewNotFoundError creates a not found error with resource context
func NewNotFoundError(resource, identifier string) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource)).
		WithContext("resource", resource).
		WithContext("identifier", identifier).
		WithUserMessage(fmt.Sprintf("%s not found", resource))
}

// NewDuplicatePhoneError creates a conflict error for a phone uniqueness
// violation
func NewDuplicatePhoneError(maskedPhone string) *AppError {
	return New(ErrCodeDuplicatePhone, "phone number already exists").
		WithContext("phone", maskedPhone).
		WithUserMessage("A contact with this phone number already exists")
}

// NewIllegalTransitionError creates a conflict error for a rejected lifecycle
// transition request
func NewIllegalTransitionError(from, to string) *AppError {
	return New(ErrCodeIllegalTransition, fmt.Sprintf("cannot transition from %s to %s", from, to)).
		WithContext("from", from).
		WithContext("to", to).
		WithUserMessage("The message is not in a state that allows this action")
}

// NewChannelError creates an error for external channel calls, retryable on
// server-side and throttling statuses
func NewChannelError(endpoint string, statusCode int, err error) *AppError {
	appErr := Wrap(err, ErrCodeChannelAPI, "channel API call failed").
		WithContext("endpoint", endpoint).
		WithContext("status_code", statusCode)
	if statusCode >= 500 || statusCode == 429 || statusCode == 408 {
		appErr.Retryable = true
	}
	return appErr
}
