package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"time"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"

	// imaging registers PNG, JPEG, GIF, BMP and TIFF
	_ "golang.org/x/image/webp"

	"qr-logo-bot/internal/config"
	apperrors "qr-logo-bot/internal/errors"
	"qr-logo-bot/internal/models"
)

// LogoService turns uploaded images into normalized logo artifacts
type LogoService struct {
	maxBytes        int64
	maxDimension    int
	maxSourcePixels int64
	decodeTimeout   time.Duration
	logger          *logrus.Logger
}

// NewLogoService creates a new logo service
func NewLogoService(cfg config.LogoConfig, logger *logrus.Logger) *LogoService {
	return &LogoService{
		maxBytes:        cfg.MaxBytes,
		maxDimension:    cfg.MaxDimension,
		maxSourcePixels: cfg.MaxSourcePixels,
		decodeTimeout:   cfg.DecodeTimeout,
		logger:          logger,
	}
}

// MaxBytes returns the upload size ceiling
func (s *LogoService) MaxBytes() int64 {
	return s.maxBytes
}

// Normalize decodes raw image bytes and returns a bounded PNG artifact together
// with the size of the source image. The input is rejected with a SizeError
// before any decoding when it is over the byte ceiling.
func (s *LogoService) Normalize(ctx context.Context, raw []byte) (*models.LogoArtifact, image.Point, error) {
	if int64(len(raw)) > s.maxBytes {
		return nil, image.Point{}, &apperrors.SizeError{What: apperrors.SizeImageBytes, Size: int64(len(raw)), Limit: s.maxBytes}
	}

	// Probe the header so huge canvases are refused before pixels are allocated
	cfg, format, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, image.Point{}, &apperrors.DecodeError{Reason: "unrecognized image", Err: err}
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, image.Point{}, &apperrors.DecodeError{Reason: fmt.Sprintf("invalid dimensions %dx%d", cfg.Width, cfg.Height)}
	}
	if pixels := int64(cfg.Width) * int64(cfg.Height); pixels > s.maxSourcePixels {
		return nil, image.Point{}, &apperrors.SizeError{What: apperrors.SizeImagePixels, Size: pixels, Limit: s.maxSourcePixels}
	}

	s.logger.Debugf("Decoding %s logo %dx%d (%d bytes)", format, cfg.Width, cfg.Height, len(raw))

	res, err := s.decodeAndFit(ctx, raw)
	if err != nil {
		return nil, image.Point{}, err
	}
	original, thumb := res.original, res.thumb

	var canvas *image.NRGBA
	if res.alpha {
		// Composite through the thumbnail's own alpha onto a transparent canvas
		canvas = imaging.New(thumb.Bounds().Dx(), thumb.Bounds().Dy(), color.NRGBA{R: 255, G: 255, B: 255, A: 0})
		draw.Draw(canvas, canvas.Bounds(), thumb, thumb.Bounds().Min, draw.Over)
	} else {
		canvas = flatten(thumb)
	}

	mode := models.ColorModeOpaque
	if !canvas.Opaque() {
		mode = models.ColorModeAlpha
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, canvas, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression)); err != nil {
		return nil, image.Point{}, fmt.Errorf("failed to encode logo: %w", err)
	}

	artifact := &models.LogoArtifact{
		Width:  canvas.Bounds().Dx(),
		Height: canvas.Bounds().Dy(),
		Mode:   mode,
		Data:   buf.Bytes(),
	}

	s.logger.Debugf("Normalized logo %dx%d -> %dx%d %s (%d bytes)",
		original.X, original.Y, artifact.Width, artifact.Height, artifact.Mode, len(artifact.Data))

	return artifact, original, nil
}

type decodeResult struct {
	original image.Point
	thumb    *image.NRGBA
	alpha    bool
	err      error
}

// decodeAndFit decodes and thumbnails the image under the configured wall-clock budget
func (s *LogoService) decodeAndFit(ctx context.Context, raw []byte) (decodeResult, error) {
	if err := ctx.Err(); err != nil {
		return decodeResult{}, &apperrors.DecodeError{Reason: "decode cancelled", Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, s.decodeTimeout)
	defer cancel()

	done := make(chan decodeResult, 1)
	go func() {
		src, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
		if err != nil {
			done <- decodeResult{err: err}
			return
		}
		done <- decodeResult{
			original: src.Bounds().Size(),
			thumb:    imaging.Fit(src, s.maxDimension, s.maxDimension, imaging.Lanczos),
			alpha:    hasAlpha(src),
		}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return decodeResult{}, &apperrors.DecodeError{Reason: "corrupt image", Err: res.err}
		}
		return res, nil
	case <-ctx.Done():
		s.logger.Warnf("Logo decode exceeded %s", s.decodeTimeout)
		return decodeResult{}, &apperrors.DecodeError{Reason: "decode timed out", Err: ctx.Err()}
	}
}

// hasAlpha reports whether an image holds any non-opaque pixel
func hasAlpha(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return !o.Opaque()
	}
	return true
}

// flatten copies an image onto an opaque canvas
func flatten(img image.Image) *image.NRGBA {
	b := img.Bounds()
	bg := imaging.New(b.Dx(), b.Dy(), color.White)
	return imaging.Overlay(bg, img, image.Pt(0, 0), 1.0)
}
