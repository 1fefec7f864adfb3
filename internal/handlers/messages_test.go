package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	telebot "gopkg.in/telebot.v3"

	apperrors "qr-logo-bot/internal/errors"
	"qr-logo-bot/internal/validation"
)

func TestUserMessageFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"file too large", &apperrors.SizeError{What: apperrors.SizeFileBytes, Size: 6 << 20, Limit: 5 << 20}, "Maximum 5MB"},
		{"too many pixels", &apperrors.SizeError{What: apperrors.SizeImagePixels, Size: 50_000_000, Limit: 40_000_000}, "resolution is too large"},
		{"corrupt image", &apperrors.DecodeError{Reason: "corrupt image", Err: errors.New("bad header")}, "couldn't process"},
		{"decode timeout", &apperrors.DecodeError{Reason: "decode timed out", Err: context.DeadlineExceeded}, "Processing the image took too long"},
		{"download timeout", fmt.Errorf("download request failed: %w", context.DeadlineExceeded), "download took too long"},
		{"payload too long", &apperrors.EncodeError{PayloadLength: 3000}, "too long to fit"},
		{"unknown color", &apperrors.ColorError{Spec: "<notacolor>"}, "&lt;notacolor&gt;"},
		{"bad url", &apperrors.ValidationError{Field: validation.FieldURL, Message: "URL must start with http:// or https://"}, "🔒"},
		{"bad size", &apperrors.ValidationError{Field: validation.FieldModuleSize, Message: "size must be between 5 and 20"}, "📏 size must be between 5 and 20"},
		{"other", errors.New("boom"), genericErrorMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := userMessageFor(tt.err); !strings.Contains(got, tt.want) {
				t.Errorf("userMessageFor() = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}

func TestSplitCommand(t *testing.T) {
	tests := []struct {
		text    string
		command string
		args    []string
	}{
		{"/qr https://example.com red", "/qr", []string{"https://example.com", "red"}},
		{"/qr@qr_logo_bot  https://example.com", "/qr", []string{"https://example.com"}},
		{"/start", "/start", []string{}},
		{"", "", nil},
	}

	for _, tt := range tests {
		command, args := splitCommand(tt.text)
		if command != tt.command || len(args) != len(tt.args) {
			t.Errorf("splitCommand(%q) = %q %v, want %q %v", tt.text, command, args, tt.command, tt.args)
			continue
		}
		for i := range args {
			if args[i] != tt.args[i] {
				t.Errorf("splitCommand(%q) args[%d] = %q, want %q", tt.text, i, args[i], tt.args[i])
			}
		}
	}
}

func TestImageFile(t *testing.T) {
	photo := &telebot.Message{Photo: &telebot.Photo{File: telebot.File{FileID: "photo"}}}
	if f, ok := imageFile(photo); !ok || f.FileID != "photo" {
		t.Errorf("imageFile(photo) = %v, %v", f, ok)
	}

	doc := &telebot.Message{Document: &telebot.Document{File: telebot.File{FileID: "doc"}, MIME: "image/png"}}
	if f, ok := imageFile(doc); !ok || f.FileID != "doc" {
		t.Errorf("imageFile(image document) = %v, %v", f, ok)
	}

	pdf := &telebot.Message{Document: &telebot.Document{File: telebot.File{FileID: "pdf"}, MIME: "application/pdf"}}
	if _, ok := imageFile(pdf); ok {
		t.Error("imageFile() accepted a PDF document")
	}
}
