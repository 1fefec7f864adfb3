package validation

import (
	"fmt"
	"strconv"
	"strings"

	"qr-logo-bot/internal/constants"
	apperrors "qr-logo-bot/internal/errors"
	"qr-logo-bot/internal/models"
)

// Validation error fields
const (
	FieldURL        = "url"
	FieldModuleSize = "size"
	FieldArgs       = "args"
)

// NormalizeURL validates a URL for QR encoding.
// Bare hosts such as "example.com" get an https:// prefix, other schemes are rejected.
func NormalizeURL(text string) (string, error) {
	url := strings.TrimSpace(text)
	if url == "" {
		return "", &apperrors.ValidationError{Field: FieldURL, Message: "URL is required"}
	}
	if len(url) > constants.MaxURLInputLength {
		return "", &apperrors.ValidationError{Field: FieldURL, Message: fmt.Sprintf("URL cannot exceed %d characters", constants.MaxURLInputLength)}
	}

	if hasHTTPScheme(url) {
		return url, nil
	}

	if strings.Contains(url, ".") && !strings.HasPrefix(url, "ftp://") && !strings.HasPrefix(url, "file://") {
		return "https://" + url, nil
	}

	return "", &apperrors.ValidationError{Field: FieldURL, Message: "URL must start with http:// or https://"}
}

// LooksLikeURL reports whether free text should be turned into a QR code without a command
func LooksLikeURL(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" || strings.ContainsAny(text, " \t\n") {
		return false
	}
	if hasHTTPScheme(text) {
		return true
	}
	parts := strings.Split(text, ".")
	return len(parts) >= 2 && parts[0] != "" && parts[len(parts)-1] != ""
}

// ValidateModuleSize checks that a module size lies in [min, max]
func ValidateModuleSize(size, min, max int) error {
	if size < min || size > max {
		return &apperrors.ValidationError{Field: FieldModuleSize, Message: fmt.Sprintf("size must be between %d and %d", min, max)}
	}
	return nil
}

// ParseModuleSize parses and validates a module size argument
func ParseModuleSize(text string, min, max int) (int, error) {
	size, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, &apperrors.ValidationError{Field: FieldModuleSize, Message: "size must be a number"}
	}

	if err := ValidateModuleSize(size, min, max); err != nil {
		return 0, err
	}

	return size, nil
}

// ParseQRArgs parses "<url> [color] [background] [size]" on top of the given defaults.
// Colors are passed through unparsed, the renderer rejects unknown ones.
func ParseQRArgs(args []string, defaults models.StyleConfig, min, max int) (string, models.StyleConfig, error) {
	style := defaults
	if len(args) == 0 {
		return "", style, &apperrors.ValidationError{Field: FieldArgs, Message: "URL is required"}
	}
	if len(args) > 4 {
		return "", style, &apperrors.ValidationError{Field: FieldArgs, Message: "too many arguments"}
	}

	url, err := NormalizeURL(args[0])
	if err != nil {
		return "", style, err
	}

	if len(args) > 1 {
		style.Foreground = args[1]
	}
	if len(args) > 2 {
		style.Background = args[2]
	}
	if len(args) > 3 {
		size, err := ParseModuleSize(args[3], min, max)
		if err != nil {
			return "", style, err
		}
		style.ModuleSize = size
	}

	return url, style, nil
}

// hasHTTPScheme checks for an http:// or https:// prefix
func hasHTTPScheme(text string) bool {
	return strings.HasPrefix(text, "http://") || strings.HasPrefix(text, "https://")
}
