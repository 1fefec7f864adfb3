package services

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"
	"github.com/skip2/go-qrcode"

	"qr-logo-bot/internal/config"
	"qr-logo-bot/internal/constants"
	apperrors "qr-logo-bot/internal/errors"
	"qr-logo-bot/internal/helpers"
	"qr-logo-bot/internal/models"
	"qr-logo-bot/internal/validation"
)

// QRService provides QR code generation functionality
type QRService struct {
	defaults    models.StyleConfig
	logoDivisor int
	logger      *logrus.Logger
}

// NewQRService creates a new QR code service
func NewQRService(cfg config.QRConfig, logger *logrus.Logger) *QRService {
	return &QRService{
		defaults: models.StyleConfig{
			Foreground: cfg.Foreground,
			Background: cfg.Background,
			ModuleSize: cfg.ModuleSize,
		},
		logoDivisor: cfg.LogoDivisor,
		logger:      logger,
	}
}

// DefaultStyle returns the configured default style
func (s *QRService) DefaultStyle() models.StyleConfig {
	return s.defaults
}

// Synthesize encodes the request URL at the highest error correction level, renders
// it and composites the optional logo in the center. A logo that cannot be
// composited does not fail the request, the result carries a CompositeWarning instead.
func (s *QRService) Synthesize(req models.QRRequest) (*models.QRImage, error) {
	s.logger.Debugf("Generating QR code for %s (%+v, logo: %v)", req.URL, req.Style, req.Logo != nil)

	// Level H tolerates the modules hidden behind the logo
	qr, err := qrcode.New(req.URL, qrcode.Highest)
	if err != nil {
		s.logger.Errorf("Failed to encode QR payload: %v", err)
		return nil, &apperrors.EncodeError{PayloadLength: len(req.URL), Err: err}
	}

	fg, err := helpers.ParseColor(req.Style.Foreground)
	if err != nil {
		return nil, err
	}
	bg, err := helpers.ParseColor(req.Style.Background)
	if err != nil {
		return nil, err
	}
	if req.Style.ModuleSize < 1 {
		return nil, &apperrors.ValidationError{Field: validation.FieldModuleSize, Message: "module size must be positive"}
	}

	bitmap := qr.Bitmap()
	img := render(bitmap, req.Style.ModuleSize, fg, bg)

	result := &models.QRImage{
		Width:   img.Bounds().Dx(),
		Height:  img.Bounds().Dy(),
		Version: qr.VersionNumber,
		Modules: len(bitmap) - 2*quietZone(qr),
	}

	if req.Logo != nil {
		bounds, err := s.compositeLogo(img, req.Logo, bg)
		if err != nil {
			var warning *apperrors.CompositeWarning
			if !errors.As(err, &warning) {
				warning = &apperrors.CompositeWarning{Stage: "composite", Err: err}
			}
			s.logger.Warnf("Generating QR without logo: %v", warning)
			result.Warning = warning
		} else {
			result.LogoBounds = bounds
		}
	}

	var buf bytes.Buffer
	encoder := png.Encoder{CompressionLevel: png.BestCompression}
	if err := encoder.Encode(&buf, img); err != nil {
		s.logger.Errorf("Failed to encode QR image: %v", err)
		return nil, err
	}
	result.PNG = buf.Bytes()

	return result, nil
}

// compositeLogo pastes the logo in the center of img on a patch of the background
// color and returns the area it covers
func (s *QRService) compositeLogo(img *image.RGBA, artifact *models.LogoArtifact, bg color.RGBA) (image.Rectangle, error) {
	logo, err := png.Decode(bytes.NewReader(artifact.Data))
	if err != nil {
		return image.Rectangle{}, &apperrors.CompositeWarning{Stage: "decode", Err: err}
	}

	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	target := min(w, h) / s.logoDivisor
	if target < 1 {
		return image.Rectangle{}, &apperrors.CompositeWarning{Stage: "resize", Err: errors.New("QR image too small for a logo")}
	}

	resized := imaging.Fit(logo, target, target, imaging.Lanczos)
	lw, lh := resized.Bounds().Dx(), resized.Bounds().Dy()
	if lw == 0 || lh == 0 {
		return image.Rectangle{}, &apperrors.CompositeWarning{Stage: "resize", Err: errors.New("logo resized to an empty image")}
	}

	pos := image.Pt((w-lw)/2, (h-lh)/2)
	area := image.Rectangle{Min: pos, Max: pos.Add(image.Pt(lw, lh))}

	// Solid backing so no modules show through transparent logo pixels
	draw.Draw(img, area, &image.Uniform{C: bg}, image.Point{}, draw.Src)

	// Over equals Src for opaque pixels and keeps the bitmap opaque whatever the artifact holds
	draw.Draw(img, area, resized, resized.Bounds().Min, draw.Over)

	return area, nil
}

// render paints the module bitmap, quiet zone included, at size pixels per module
func render(bitmap [][]bool, size int, fg, bg color.RGBA) *image.RGBA {
	n := len(bitmap) * size
	img := image.NewRGBA(image.Rect(0, 0, n, n))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: bg}, image.Point{}, draw.Src)

	fill := &image.Uniform{C: fg}
	for y, row := range bitmap {
		for x, set := range row {
			if set {
				cell := image.Rect(x*size, y*size, (x+1)*size, (y+1)*size)
				draw.Draw(img, cell, fill, image.Point{}, draw.Src)
			}
		}
	}

	return img
}

// quietZone returns the border width in modules
func quietZone(qr *qrcode.QRCode) int {
	if qr.DisableBorder {
		return 0
	}
	return constants.QuietZoneModules
}
