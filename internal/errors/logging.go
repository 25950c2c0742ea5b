package errors

import (
	"errors"

	"github.com/sirupsen/logrus"
)

// LogError logs an error with the structured context carried by AppError.
func LogError(logger *logrus.Logger, err error, message string, fields ...logrus.Fields) {
	entry := withErrorFields(logger, err)
	for _, f := range fields {
		entry = entry.WithFields(f)
	}
	entry.Error(message)
}

// LogWarn logs a warning with the structured context carried by AppError.
func LogWarn(logger *logrus.Logger, err error, message string, fields ...logrus.Fields) {
	entry := withErrorFields(logger, err)
	for _, f := range fields {
		entry = entry.WithFields(f)
	}
	entry.Warn(message)
}

func withErrorFields(logger *logrus.Logger, err error) *logrus.Entry {
	entry := logger.WithError(err)

	var appErr *AppError
	if errors.As(err, &appErr) {
		entry = entry.WithFields(logrus.Fields{
			"error_code": appErr.Code,
			"retryable":  appErr.Retryable,
		})
		for k, v := range appErr.Context {
			entry = entry.WithField(k, v)
		}
	}
	return entry
}
