package models

import (
	"image"

	apperrors "qr-logo-bot/internal/errors"
)

// StyleConfig holds the user selected QR appearance
type StyleConfig struct {
	Foreground string
	Background string
	ModuleSize int
}

// QRRequest is a single synthesis request. Logo is borrowed and never modified.
type QRRequest struct {
	URL   string
	Style StyleConfig
	Logo  *LogoArtifact
}

// QRImage is the synthesized QR code
type QRImage struct {
	PNG     []byte
	Width   int
	Height  int
	Version int
	// Modules is the symbol width in modules, quiet zone excluded
	Modules int
	// LogoBounds is empty when no logo was composited
	LogoBounds image.Rectangle
	// Warning is set when a logo was requested but could not be composited
	Warning *apperrors.CompositeWarning
}

// HasLogo reports whether a logo was composited onto the image
func (q *QRImage) HasLogo() bool {
	return !q.LogoBounds.Empty()
}
