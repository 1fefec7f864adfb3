package services

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"

	"qr-logo-bot/internal/config"
	"qr-logo-bot/internal/constants"
	apperrors "qr-logo-bot/internal/errors"
	"qr-logo-bot/internal/models"
)

func newTestLogoService(t *testing.T) *LogoService {
	t.Helper()
	logger, _ := test.NewNullLogger()
	return NewLogoService(config.LogoConfig{
		MaxBytes:        constants.MaxLogoBytes,
		MaxDimension:    constants.MaxLogoDimension,
		MaxSourcePixels: constants.MaxLogoSourcePixels,
		DecodeTimeout:   5 * time.Second,
	}, logger)
}

func TestNormalizeDownscalesOpaque(t *testing.T) {
	s := newTestLogoService(t)
	raw := encodeJPEG(t, solidImage(800, 600, color.RGBA{200, 30, 30, 255}))

	artifact, original, err := s.Normalize(context.Background(), raw)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}

	if original != image.Pt(800, 600) {
		t.Errorf("original size = %v, want 800x600", original)
	}
	if artifact.Width != 400 || artifact.Height != 300 {
		t.Errorf("artifact size = %dx%d, want 400x300", artifact.Width, artifact.Height)
	}
	if artifact.Mode != models.ColorModeOpaque {
		t.Errorf("artifact mode = %s, want RGB", artifact.Mode)
	}

	cfg, err := png.DecodeConfig(bytes.NewReader(artifact.Data))
	if err != nil {
		t.Fatalf("artifact is not a PNG: %v", err)
	}
	if cfg.Width != artifact.Width || cfg.Height != artifact.Height {
		t.Errorf("encoded size = %dx%d, want %dx%d", cfg.Width, cfg.Height, artifact.Width, artifact.Height)
	}
}

func TestNormalizeKeepsAspectRatioForTallImages(t *testing.T) {
	s := newTestLogoService(t)
	raw := encodePNG(t, solidImage(300, 1200, color.Black))

	artifact, _, err := s.Normalize(context.Background(), raw)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	if artifact.Width != 100 || artifact.Height != 400 {
		t.Errorf("artifact size = %dx%d, want 100x400", artifact.Width, artifact.Height)
	}
}

func TestNormalizeDoesNotUpscale(t *testing.T) {
	s := newTestLogoService(t)
	raw := encodePNG(t, solidImage(50, 20, color.Black))

	artifact, _, err := s.Normalize(context.Background(), raw)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	if artifact.Width != 50 || artifact.Height != 20 {
		t.Errorf("artifact size = %dx%d, want 50x20", artifact.Width, artifact.Height)
	}
}

func TestNormalizePreservesTransparency(t *testing.T) {
	s := newTestLogoService(t)
	raw := encodePNG(t, cornerCutImage(200, 200, 50, color.RGBA{0, 0, 255, 255}))

	artifact, _, err := s.Normalize(context.Background(), raw)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	if artifact.Mode != models.ColorModeAlpha {
		t.Fatalf("artifact mode = %s, want RGBA", artifact.Mode)
	}

	img := decodePNG(t, artifact.Data)
	if _, _, _, a := img.At(10, 10).RGBA(); a != 0 {
		t.Errorf("transparent corner alpha = %d, want 0", a)
	}
	if got := rgbaAt(img, 150, 150); got != (color.RGBA{0, 0, 255, 255}) {
		t.Errorf("opaque pixel = %v, want blue", got)
	}
}

func TestNormalizeOpaqueRGBAIsFlattened(t *testing.T) {
	s := newTestLogoService(t)
	raw := encodePNG(t, solidImage(64, 64, color.NRGBA{10, 20, 30, 255}))

	artifact, _, err := s.Normalize(context.Background(), raw)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	if artifact.Mode != models.ColorModeOpaque {
		t.Errorf("artifact mode = %s, want RGB", artifact.Mode)
	}
}

func TestNormalizeIsDeterministic(t *testing.T) {
	s := newTestLogoService(t)
	raw := encodePNG(t, cornerCutImage(900, 500, 100, color.RGBA{0, 128, 0, 255}))

	first, _, err := s.Normalize(context.Background(), raw)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	second, _, err := s.Normalize(context.Background(), raw)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}

	if first.Width != second.Width || first.Height != second.Height || first.Mode != second.Mode {
		t.Errorf("artifacts differ: %dx%d %s vs %dx%d %s",
			first.Width, first.Height, first.Mode, second.Width, second.Height, second.Mode)
	}
	if !bytes.Equal(first.Data, second.Data) {
		t.Error("artifact bytes differ between runs")
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	s := newTestLogoService(t)

	for _, raw := range [][]byte{
		encodePNG(t, cornerCutImage(1000, 640, 120, color.RGBA{200, 0, 0, 255})),
		encodeJPEG(t, solidImage(640, 1000, color.RGBA{0, 0, 200, 255})),
	} {
		first, _, err := s.Normalize(context.Background(), raw)
		if err != nil {
			t.Fatalf("Normalize() error: %v", err)
		}
		second, original, err := s.Normalize(context.Background(), first.Data)
		if err != nil {
			t.Fatalf("Normalize(artifact) error: %v", err)
		}

		if original.X != first.Width || original.Y != first.Height {
			t.Errorf("renormalized source size = %v, want %dx%d", original, first.Width, first.Height)
		}
		if second.Width != first.Width || second.Height != first.Height || second.Mode != first.Mode {
			t.Errorf("renormalized artifact %dx%d %s, want %dx%d %s",
				second.Width, second.Height, second.Mode, first.Width, first.Height, first.Mode)
		}
	}
}

func TestNormalizeByteCeiling(t *testing.T) {
	s := newTestLogoService(t)

	// PNG decoding stops at IEND, trailing padding is ignored
	raw := encodePNG(t, solidImage(16, 16, color.Black))
	atLimit := make([]byte, constants.MaxLogoBytes)
	copy(atLimit, raw)

	if _, _, err := s.Normalize(context.Background(), atLimit); err != nil {
		t.Fatalf("Normalize() at the ceiling error: %v", err)
	}

	// Garbage one byte over the ceiling must be rejected for its size, not its content
	over := make([]byte, constants.MaxLogoBytes+1)
	_, _, err := s.Normalize(context.Background(), over)

	var sizeErr *apperrors.SizeError
	if !errors.As(err, &sizeErr) {
		t.Fatalf("Normalize() error = %v, want SizeError", err)
	}
	if sizeErr.Limit != constants.MaxLogoBytes || sizeErr.Size != constants.MaxLogoBytes+1 {
		t.Errorf("SizeError = %+v", sizeErr)
	}
}

func TestNormalizePixelCeiling(t *testing.T) {
	logger, _ := test.NewNullLogger()
	s := NewLogoService(config.LogoConfig{
		MaxBytes:        constants.MaxLogoBytes,
		MaxDimension:    constants.MaxLogoDimension,
		MaxSourcePixels: 100,
		DecodeTimeout:   time.Second,
	}, logger)

	_, _, err := s.Normalize(context.Background(), encodePNG(t, solidImage(20, 20, color.Black)))
	var sizeErr *apperrors.SizeError
	if !errors.As(err, &sizeErr) {
		t.Fatalf("Normalize() error = %v, want SizeError", err)
	}
}

func TestNormalizeCorrupt(t *testing.T) {
	s := newTestLogoService(t)

	tests := map[string][]byte{
		"garbage":   []byte("definitely not an image"),
		"empty":     {},
		"truncated": encodePNG(t, solidImage(64, 64, color.Black))[:60],
	}

	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, _, err := s.Normalize(context.Background(), raw)
			var decodeErr *apperrors.DecodeError
			if !errors.As(err, &decodeErr) {
				t.Fatalf("Normalize() error = %v, want DecodeError", err)
			}
		})
	}
}

func TestNormalizeCancelled(t *testing.T) {
	s := newTestLogoService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := s.Normalize(ctx, encodePNG(t, solidImage(32, 32, color.Black)))
	var decodeErr *apperrors.DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("Normalize() error = %v, want DecodeError", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error does not wrap context.Canceled: %v", err)
	}
}

func TestNormalizeTimeoutCoversResize(t *testing.T) {
	logger, _ := test.NewNullLogger()
	s := NewLogoService(config.LogoConfig{
		MaxBytes:        constants.MaxLogoBytes,
		MaxDimension:    constants.MaxLogoDimension,
		MaxSourcePixels: constants.MaxLogoSourcePixels,
		DecodeTimeout:   time.Nanosecond,
	}, logger)

	_, _, err := s.Normalize(context.Background(), encodePNG(t, solidImage(2000, 2000, color.RGBA{10, 20, 30, 255})))
	var decodeErr *apperrors.DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("Normalize() error = %v, want DecodeError", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error does not wrap context.DeadlineExceeded: %v", err)
	}
}
