package util

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// CanonicalUUID parses value as a UUID and returns it in the lowercase
// hyphenated form that uuid.NewString produces, so ids typed in other forms
// still match registry keys.
func CanonicalUUID(field, value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", fmt.Errorf("%s cannot be empty", field)
	}
	id, err := uuid.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("%s must be a UUID", field)
	}
	return id.String(), nil
}
