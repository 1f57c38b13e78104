package util

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

var (
	// ErrInvalidUUID is returned when a value is not a UUID v4.
	ErrInvalidUUID = errors.New("invalid uuid v4")
	// ErrInvalidUserID indicates a RongCloud user id is empty or malformed.
	ErrInvalidUserID = errors.New("invalid user id")
)

// RongCloud user, group and chatroom ids are limited to 64 characters of
// letters, digits and a few separators.
var idPattern = regexp.MustCompile(`^[A-Za-z0-9_=+\-.@]{1,64}$`)

// ParseUUIDv4 parses and validates a UUID string, ensuring it is version 4.
func ParseUUIDv4(value string) (uuid.UUID, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return uuid.UUID{}, fmt.Errorf("%w: value is empty", ErrInvalidUUID)
	}

	u, err := uuid.Parse(trimmed)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("%w: %v", ErrInvalidUUID, err)
	}

	if u.Version() != 4 {
		return uuid.UUID{}, fmt.Errorf("%w: expected version 4", ErrInvalidUUID)
	}

	return u, nil
}

// ValidateUserID trims value and checks it against the id alphabet.
func ValidateUserID(value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", fmt.Errorf("%w: value is empty", ErrInvalidUserID)
	}
	if !idPattern.MatchString(trimmed) {
		return "", fmt.Errorf("%w: %q", ErrInvalidUserID, trimmed)
	}
	return trimmed, nil
}

// ValidateMetadata enforces constraints on metadata maps and returns a copy
// containing trimmed keys and values.
func ValidateMetadata(meta map[string]string, maxEntries, maxKeyLen, maxValueLen int) (map[string]string, error) {
	if len(meta) == 0 {
		return nil, nil
	}

	if maxEntries > 0 && len(meta) > maxEntries {
		return nil, fmt.Errorf("metadata entries exceeded: got %d, max %d", len(meta), maxEntries)
	}

	out := make(map[string]string, len(meta))
	for rawKey, rawValue := range meta {
		key := strings.TrimSpace(rawKey)
		value := strings.TrimSpace(rawValue)

		if key == "" {
			return nil, errors.New("metadata key cannot be empty")
		}

		if maxKeyLen > 0 && utf8.RuneCountInString(key) > maxKeyLen {
			return nil, fmt.Errorf("metadata key %q exceeds max length %d", key, maxKeyLen)
		}

		if maxValueLen > 0 && utf8.RuneCountInString(value) > maxValueLen {
			return nil, fmt.Errorf("metadata value for %q exceeds max length %d", key, maxValueLen)
		}

		out[key] = value
	}

	return out, nil
}

// EnsureMaxBytes checks that a byte slice does not exceed the specified size.
func EnsureMaxBytes(field string, b []byte, max int) error {
	if max <= 0 {
		return nil
	}
	if len(b) > max {
		return fmt.Errorf("%s exceeds maximum size of %d bytes", field, max)
	}
	return nil
}
