package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// FieldError reports an unusable user supplied value.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Field + " " + e.Message
}

// ValidateText checks that a user supplied label is present and at most max
// characters once trimmed. field names the value in the error.
func ValidateText(field, value string, max int) error {
	trimmed := strings.TrimSpace(value)

	if trimmed == "" {
		return &FieldError{Field: field, Message: "is required"}
	}

	if utf8.RuneCountInString(trimmed) > max {
		return &FieldError{Field: field, Message: fmt.Sprintf("is too long (max %d characters)", max)}
	}

	return nil
}
