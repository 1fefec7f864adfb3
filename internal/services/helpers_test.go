package services

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
)

// solidImage returns an opaque image filled with c
func solidImage(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// cornerCutImage returns an opaque image with a fully transparent corner x corner square at the origin
func cornerCutImage(w, h, corner int, c color.Color) *image.NRGBA {
	img := solidImage(w, h, c)
	for y := 0; y < corner; y++ {
		for x := 0; x < corner; x++ {
			img.SetNRGBA(x, y, color.NRGBA{})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() error: %v", err)
	}
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("jpeg.Encode() error: %v", err)
	}
	return buf.Bytes()
}

func decodePNG(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode() error: %v", err)
	}
	return img
}

// scanQR reads the payload of the QR code in a PNG
func scanQR(t *testing.T, data []byte) string {
	t.Helper()

	bmp, err := gozxing.NewBinaryBitmapFromImage(decodePNG(t, data))
	if err != nil {
		t.Fatalf("NewBinaryBitmapFromImage() error: %v", err)
	}

	reader := qrcode.NewQRCodeReader()
	result, err := reader.Decode(bmp, map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	})
	if err != nil {
		// Fall back to sampling the symbol directly, the image holds nothing else
		result, err = reader.Decode(bmp, map[gozxing.DecodeHintType]interface{}{
			gozxing.DecodeHintType_PURE_BARCODE: true,
		})
	}
	if err != nil {
		t.Fatalf("QR decode error: %v", err)
	}

	return result.GetText()
}

func rgbaAt(img image.Image, x, y int) color.RGBA {
	return color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
}
