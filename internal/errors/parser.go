package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo is the parsed form of a store error.
type ErrorInfo struct {
	Code    string
	Message string
}

// IsDuplicateKey reports whether err is a write-time uniqueness violation.
// Postgres reports "duplicate key value violates unique constraint"; SQLite
// (used by the test store) reports "UNIQUE constraint failed". The variant
// service uses this to retry code generation after losing a cross-request
// race, instead of surfacing the violation to the user.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint")
}

// ParseError converts a store error to a response code and message. Detailed
// causes stay in the server logs; the payload stays generic.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalServerError,
			Message: "an internal error occurred",
		}
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: notFoundMessage(context),
		}
	}

	if IsDuplicateKey(err) {
		return ErrorInfo{
			Code:    ResourceAlreadyExists,
			Message: context + " already exists",
		}
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "foreign key constraint") {
		return ErrorInfo{
			Code:    ResourceConflict,
			Message: context + " is referenced by other records",
		}
	}

	return ErrorInfo{
		Code:    InternalDatabaseError,
		Message: "a database error occurred",
	}
}

func notFoundMessage(context string) string {
	if context == "" {
		return "record not found"
	}
	return context + " not found"
}
