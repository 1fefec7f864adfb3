package handlers

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"qr-logo-bot/internal/config"
	apperrors "qr-logo-bot/internal/errors"
	"qr-logo-bot/internal/helpers"
	"qr-logo-bot/internal/validation"
)

const genericErrorMessage = "⚠️ Something went wrong. Please try again."

// helpText builds the /start and /help message
func helpText(cfg *config.Config) string {
	var sb strings.Builder
	sb.WriteString("🤖 <b>Custom QR Code Generator</b>\n\n")
	sb.WriteString("<b>Commands:</b>\n")
	sb.WriteString("/start - Show this message\n")
	sb.WriteString("/setlogo - Configure your logo\n")
	sb.WriteString("/qr &lt;url&gt; [color] [background] [size] - Generate a custom QR code\n")
	sb.WriteString("/clearlogo - Remove your logo\n\n")
	sb.WriteString("📋 <b>How to configure your logo:</b>\n")
	sb.WriteString("1. Send /setlogo\n")
	sb.WriteString("2. Send your image in the next message\n\n")
	sb.WriteString("<b>Examples:</b>\n")
	sb.WriteString("<code>/qr https://example.com</code>\n")
	sb.WriteString(fmt.Sprintf("<code>/qr https://example.com #FF0000 white %d</code>\n\n", exampleModuleSize(cfg)))
	sb.WriteString("💡 You can also just send a link.")
	return sb.String()
}

// qrUsageText builds the message shown for /qr without arguments
func qrUsageText(cfg *config.Config) string {
	var sb strings.Builder
	sb.WriteString("ℹ️ <b>Usage:</b> <code>/qr &lt;url&gt; [color] [background] [size]</code>\n\n")
	sb.WriteString("<b>Examples:</b>\n")
	sb.WriteString("• <code>/qr https://google.com</code>\n")
	sb.WriteString(fmt.Sprintf("• <code>/qr https://github.com blue white %d</code>\n", cfg.QR.MaxModuleSize))
	sb.WriteString(fmt.Sprintf("• <code>/qr https://example.com #FF0000 #00FF00 %d</code>\n\n", exampleModuleSize(cfg)))
	sb.WriteString("<b>Colors:</b> black, white, red, blue, green, #FF0000, etc.\n")
	sb.WriteString(fmt.Sprintf("<b>Size:</b> %d-%d", cfg.QR.MinModuleSize, cfg.QR.MaxModuleSize))
	return sb.String()
}

// setLogoText builds the message shown when logo configuration starts
func setLogoText(cfg *config.Config) string {
	var sb strings.Builder
	sb.WriteString("📷 <b>Logo configuration mode</b>\n\n")
	sb.WriteString("Send your image in the next message.\n\n")
	sb.WriteString("Recommendations:\n")
	sb.WriteString("• Format: PNG, JPG, GIF, WebP\n")
	sb.WriteString(fmt.Sprintf("• Size: up to %s\n", helpers.FormatMegabytes(cfg.Logo.MaxBytes)))
	sb.WriteString("• Shape: preferably square\n")
	sb.WriteString("• A transparent PNG looks best, send it as a file to keep the transparency\n\n")
	sb.WriteString("To cancel, use /start")
	return sb.String()
}

// exampleModuleSize picks a size inside the configured range for examples
func exampleModuleSize(cfg *config.Config) int {
	return (cfg.QR.MinModuleSize + cfg.QR.MaxModuleSize) / 2
}

// userMessageFor turns an error into the reply shown to the user
func userMessageFor(err error) string {
	var (
		sizeErr       *apperrors.SizeError
		decodeErr     *apperrors.DecodeError
		encodeErr     *apperrors.EncodeError
		colorErr      *apperrors.ColorError
		validationErr *apperrors.ValidationError
	)

	switch {
	case errors.As(err, &sizeErr):
		if sizeErr.What == apperrors.SizeImagePixels {
			return fmt.Sprintf("📏 The image resolution is too large (%d pixels, maximum %d).", sizeErr.Size, sizeErr.Limit)
		}
		return fmt.Sprintf("📏 The image is too large. Maximum %s.", helpers.FormatMegabytes(sizeErr.Limit))
	case errors.As(err, &decodeErr):
		if errors.Is(err, context.DeadlineExceeded) {
			return "⌛ Processing the image took too long. Try a smaller image."
		}
		return "❌ I couldn't process that image.\nSupported formats: JPG, PNG, GIF, WebP, BMP, TIFF\nTry another image."
	case errors.Is(err, context.DeadlineExceeded):
		return "⌛ The download took too long. Try a smaller image."
	case errors.As(err, &encodeErr):
		return "📏 The URL is too long to fit in a QR code."
	case errors.As(err, &colorErr):
		return fmt.Sprintf("🎨 Unknown color <code>%s</code>. Use a name like red or a hex code like #FF0000.", html.EscapeString(colorErr.Spec))
	case errors.As(err, &validationErr):
		switch validationErr.Field {
		case validation.FieldURL:
			return "🔒 " + html.EscapeString(validationErr.Message)
		case validation.FieldModuleSize:
			return "📏 " + html.EscapeString(validationErr.Message)
		default:
			return "⚠️ " + html.EscapeString(validationErr.Message)
		}
	default:
		return genericErrorMessage
	}
}
