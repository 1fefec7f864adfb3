package helpers

import (
	"fmt"
	"html"
	"image"
	"strings"

	"qr-logo-bot/internal/constants"
	"qr-logo-bot/internal/models"
)

// FormatQRCaption formats the caption sent along with a generated QR code
func FormatQRCaption(url string, style models.StyleConfig, withLogo bool) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🔗 <b>URL:</b> %s\n", html.EscapeString(TruncateURL(url))))
	sb.WriteString(fmt.Sprintf("🎨 <b>Color:</b> %s | <b>Background:</b> %s | <b>Size:</b> %d\n",
		html.EscapeString(style.Foreground), html.EscapeString(style.Background), style.ModuleSize))

	if withLogo {
		sb.WriteString("🖼️ <b>Logo:</b> included")
	} else {
		sb.WriteString("💡 <b>Tip:</b> use /setlogo to add your logo")
	}

	return sb.String()
}

// FormatAutoQRCaption formats the caption of a QR code generated from a plain text URL
func FormatAutoQRCaption(url string) string {
	escaped := html.EscapeString(TruncateURL(url))
	return fmt.Sprintf("📲 <b>QR generated automatically</b>\n🔗 %s\n\n💡 Use <code>/qr %s</code> to customize it", escaped, escaped)
}

// FormatLogoSaved formats the confirmation sent after a logo upload
func FormatLogoSaved(original image.Point, artifact *models.LogoArtifact) string {
	var sb strings.Builder
	sb.WriteString("✅ <b>Logo configured!</b>\n\n")
	sb.WriteString(fmt.Sprintf("📐 Original size: %dx%dpx\n", original.X, original.Y))
	sb.WriteString(fmt.Sprintf("📐 Processed size: %dx%dpx", artifact.Width, artifact.Height))
	if artifact.Mode == models.ColorModeAlpha {
		sb.WriteString(" (transparent)")
	}
	sb.WriteString("\n\nNow use <code>/qr &lt;url&gt;</code> to generate your QR code.\n")
	sb.WriteString("Use /clearlogo to remove it.")
	return sb.String()
}

// FormatMegabytes formats a byte count as whole or fractional megabytes
func FormatMegabytes(bytes int64) string {
	mb := float64(bytes) / (1024 * 1024)
	if bytes%(1024*1024) == 0 {
		return fmt.Sprintf("%dMB", bytes/(1024*1024))
	}
	return fmt.Sprintf("%.1fMB", mb)
}

// TruncateURL shortens long URLs for display
func TruncateURL(url string) string {
	runes := []rune(url)
	if len(runes) <= constants.MaxURLDisplayLength {
		return url
	}
	return string(runes[:constants.MaxURLDisplayLength-3]) + "..."
}
