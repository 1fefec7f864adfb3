package handlers

import (
	"bytes"

	"github.com/sirupsen/logrus"
	telebot "gopkg.in/telebot.v3"

	"qr-logo-bot/internal/commands"
	"qr-logo-bot/internal/config"
	"qr-logo-bot/internal/models"
	"qr-logo-bot/internal/permissions"
	"qr-logo-bot/internal/services"
	"qr-logo-bot/pkg/tgfile"
)

// BaseHandler provides common functionality for all handlers
type BaseHandler struct {
	stateService *services.UserStateService
	qrService    *services.QRService
	logoService  *services.LogoService
	logoStore    *services.LogoStore
	fileClient   *tgfile.Client
	config       *config.Config
	logger       *logrus.Logger
}

// NewBaseHandler creates a new base handler
func NewBaseHandler(
	stateService *services.UserStateService,
	qrService *services.QRService,
	logoService *services.LogoService,
	logoStore *services.LogoStore,
	fileClient *tgfile.Client,
	config *config.Config,
	logger *logrus.Logger,
) BaseHandler {
	return BaseHandler{
		stateService: stateService,
		qrService:    qrService,
		logoService:  logoService,
		logoStore:    logoStore,
		fileClient:   fileClient,
		config:       config,
		logger:       logger,
	}
}

// CanHandle checks if the handler can handle the given access type
func (h *BaseHandler) CanHandle(accessType permissions.AccessType) bool {
	// Base handler can't handle any access type directly
	return false
}

// sendTextMessage sends a text message with optional markup
func (h *BaseHandler) sendTextMessage(c telebot.Context, text string, markup *telebot.ReplyMarkup) error {
	opts := &telebot.SendOptions{
		ParseMode: telebot.ModeHTML,
	}

	if markup != nil {
		opts.ReplyMarkup = markup
	}

	_, err := c.Bot().Send(c.Recipient(), text, opts)
	if err != nil {
		h.logger.Errorf("Failed to send message: %v", err)
	}
	return err
}

// sendQRImage sends a synthesized QR code as a photo with an HTML caption
func (h *BaseHandler) sendQRImage(c telebot.Context, img *models.QRImage, caption string) error {
	photo := &telebot.Photo{
		File:    telebot.FromReader(bytes.NewReader(img.PNG)),
		Caption: caption,
	}

	_, err := c.Bot().Send(c.Recipient(), photo, &telebot.SendOptions{ParseMode: telebot.ModeHTML})
	if err != nil {
		h.logger.Errorf("Failed to send QR code: %v", err)
	}
	return err
}

// createMainKeyboard creates the main keyboard
func (h *BaseHandler) createMainKeyboard() *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{
		ResizeKeyboard: true,
	}

	markup.Reply(
		telebot.Row{
			telebot.Btn{Text: commands.SetLogoButton},
			telebot.Btn{Text: commands.ClearLogoButton},
		},
		telebot.Row{
			telebot.Btn{Text: commands.HelpButton},
		},
	)

	return markup
}

// createCancelKeyboard creates a keyboard with a cancel button
func (h *BaseHandler) createCancelKeyboard() *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{
		ResizeKeyboard: true,
	}

	markup.Reply(
		telebot.Row{
			telebot.Btn{Text: commands.Cancel},
		},
	)

	return markup
}
