package handlers

import (
	"context"
	"strings"

	telebot "gopkg.in/telebot.v3"

	apperrors "qr-logo-bot/internal/errors"
	"qr-logo-bot/internal/helpers"
	"qr-logo-bot/internal/models"
)

// handleImage turns an uploaded photo or image document into the user's logo
func (h *UserHandler) handleImage(ctx context.Context, c telebot.Context) error {
	userID := c.Sender().ID

	if !h.stateService.IsAwaitingLogo(userID) {
		return h.sendTextMessage(c, "ℹ️ If you want to set a logo, use /setlogo first.", nil)
	}

	file, ok := imageFile(c.Message())
	if !ok {
		return h.sendTextMessage(c, "⚠️ Please send a valid image.", h.createCancelKeyboard())
	}

	// Telegram reports the size up front, refuse before downloading anything
	if file.FileSize > h.logoService.MaxBytes() {
		err := &apperrors.SizeError{What: apperrors.SizeFileBytes, Size: file.FileSize, Limit: h.logoService.MaxBytes()}
		return h.sendTextMessage(c, userMessageFor(err), h.createCancelKeyboard())
	}

	if err := h.sendTextMessage(c, "⏳ Processing your image...", nil); err != nil {
		return err
	}

	downloadCtx, cancel := context.WithTimeout(ctx, h.config.Logo.DownloadTimeout)
	defer cancel()

	raw, err := h.fileClient.Download(downloadCtx, file.FileID)
	if err != nil {
		h.logger.Errorf("Failed to download logo for user %d: %v", userID, err)
		return h.sendTextMessage(c, userMessageFor(err), h.createCancelKeyboard())
	}

	artifact, original, err := h.logoService.Normalize(ctx, raw)
	if err != nil {
		h.logger.Warnf("Rejected logo from user %d: %v", userID, err)
		return h.sendTextMessage(c, userMessageFor(err), h.createCancelKeyboard())
	}

	if err := h.logoStore.Save(userID, artifact); err != nil {
		h.logger.Errorf("Failed to save logo for user %d: %v", userID, err)
		h.stateService.ClearState(userID)
		return h.sendTextMessage(c, "⚠️ An unexpected error occurred. Use /setlogo to try again.", h.createMainKeyboard())
	}

	if err := h.stateService.WithConversationState(userID, models.Idle); err != nil {
		h.logger.Errorf("Failed to reset user state: %v", err)
	}

	h.logger.Infof("User %d configured a %dx%d logo", userID, artifact.Width, artifact.Height)
	return h.sendTextMessage(c, helpers.FormatLogoSaved(original, artifact), h.createMainKeyboard())
}

// imageFile picks the uploaded image from a message. Photos arrive as the
// largest available size, documents are accepted when they carry an image type.
func imageFile(msg *telebot.Message) (*telebot.File, bool) {
	if msg == nil {
		return nil, false
	}
	if msg.Photo != nil {
		return &msg.Photo.File, true
	}
	if msg.Document != nil && strings.HasPrefix(msg.Document.MIME, "image/") {
		return &msg.Document.File, true
	}
	return nil, false
}
