package service

import (
	"fmt"
	"strings"
	"time"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// parseTimestamp accepts RFC3339 or the date formats the web client sends.
// Values without a zone are read as UTC.
func parseTimestamp(field, value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, newKindError(ErrValidation, fmt.Sprintf("%s is required", field))
	}

	for _, layout := range timestampLayouts {
		if parsed, err := time.ParseInLocation(layout, trimmed, time.UTC); err == nil {
			return parsed.UTC(), nil
		}
	}

	return time.Time{}, newKindError(ErrValidation, fmt.Sprintf("%s must be a valid date", field))
}

// parseOptionalTimestamp returns nil for nil or blank input.
func parseOptionalTimestamp(field string, value *string) (*time.Time, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}

	parsed, err := parseTimestamp(field, *value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
