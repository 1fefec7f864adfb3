package helpers

import (
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"

	apperrors "qr-logo-bot/internal/errors"
)

// ParseColor parses a color spec into an opaque color.
// Accepted forms are CSS color names ("black", "SteelBlue"), "#rgb" and "#rrggbb".
func ParseColor(spec string) (color.RGBA, error) {
	s := strings.ToLower(strings.TrimSpace(spec))
	if s == "" {
		return color.RGBA{}, &apperrors.ColorError{Spec: spec}
	}

	if c, ok := colornames.Map[s]; ok {
		return c, nil
	}

	if !strings.HasPrefix(s, "#") {
		return color.RGBA{}, &apperrors.ColorError{Spec: spec}
	}

	hex := s[1:]
	switch len(hex) {
	case 3:
		// #abc expands to #aabbcc
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	case 6:
	default:
		return color.RGBA{}, &apperrors.ColorError{Spec: spec}
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, &apperrors.ColorError{Spec: spec}
	}

	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

// IsColor reports whether spec is a color ParseColor accepts
func IsColor(spec string) bool {
	_, err := ParseColor(spec)
	return err == nil
}
