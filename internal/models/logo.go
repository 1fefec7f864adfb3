package models

// ColorMode describes whether a logo artifact carries transparency
type ColorMode int

const (
	// ColorModeOpaque is three channel color without transparency
	ColorModeOpaque ColorMode = iota
	// ColorModeAlpha is four channel color with at least one non-opaque pixel
	ColorModeAlpha
)

// String returns a readable name for logging
func (m ColorMode) String() string {
	if m == ColorModeAlpha {
		return "RGBA"
	}
	return "RGB"
}

// LogoArtifact is a normalized logo, PNG encoded and ready for compositing.
// It must not be modified after creation.
type LogoArtifact struct {
	Width  int
	Height int
	Mode   ColorMode
	Data   []byte
}
