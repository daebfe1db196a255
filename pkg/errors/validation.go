package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// MaxSlots is the number of preset slots a dashboard carries.
const MaxSlots = 9

// widgetIDRegex matches the identifiers used by the widget registry:
// letters, digits, dash, underscore, dot and colon.
var widgetIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._:-]*$`)

// ValidateWidgetID validates a widget identifier.
//
// The rules are intentionally conservative:
//   - No empty IDs
//   - Maximum length of 128 characters
//   - No control characters or whitespace
//   - Must start with a letter or digit
func ValidateWidgetID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidWidget, "widget id cannot be empty")
	}
	if len(id) > 128 {
		return New(ErrCodeInvalidWidget, "widget id too long (max 128 characters)")
	}
	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidWidget, "widget id contains invalid characters")
		}
	}
	if !widgetIDRegex.MatchString(id) {
		return New(ErrCodeInvalidWidget, "invalid widget id: %q", id)
	}
	return nil
}

// ValidateSlot validates a preset slot index (0-based).
func ValidateSlot(index int) error {
	if index < 0 || index >= MaxSlots {
		return New(ErrCodeInvalidSlot, "preset slot %d out of range (0-%d)", index, MaxSlots-1)
	}
	return nil
}

// ValidatePreferenceKey validates a dot-notation preference key such as
// "dashboard.layout".
//
// Validation rules:
//   - Key cannot be empty
//   - Maximum length of 256 characters
//   - No empty segments (leading, trailing or doubled dots)
//   - No control characters
func ValidatePreferenceKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidKey, "preference key cannot be empty")
	}
	if len(key) > 256 {
		return New(ErrCodeInvalidKey, "preference key too long (max 256 characters)")
	}
	for _, r := range key {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidKey, "preference key contains invalid characters")
		}
	}
	for _, seg := range strings.Split(key, ".") {
		if strings.TrimSpace(seg) == "" {
			return New(ErrCodeInvalidKey, "preference key %q has an empty segment", key)
		}
	}
	return nil
}

// ValidateGrid validates grid geometry: a positive column count and
// positive minimum spans that fit within the grid.
func ValidateGrid(cols, minW, minH int) error {
	if cols <= 0 {
		return New(ErrCodeInvalidConfig, "grid columns must be positive, got %d", cols)
	}
	if minW <= 0 || minH <= 0 {
		return New(ErrCodeInvalidConfig, "minimum widget size must be positive, got %dx%d", minW, minH)
	}
	if minW > cols {
		return New(ErrCodeInvalidConfig, "minimum widget width %d exceeds %d columns", minW, cols)
	}
	return nil
}
