package handlers

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
	telebot "gopkg.in/telebot.v3"

	"qr-logo-bot/internal/commands"
	"qr-logo-bot/internal/config"
	"qr-logo-bot/internal/helpers"
	"qr-logo-bot/internal/models"
	"qr-logo-bot/internal/permissions"
	"qr-logo-bot/internal/services"
	"qr-logo-bot/internal/validation"
	"qr-logo-bot/pkg/tgfile"
)

type commandFunc func(ctx context.Context, c telebot.Context, args []string) error

// UserHandler handles QR and logo commands
type UserHandler struct {
	BaseHandler
	commandHandlers map[string]commandFunc
}

// NewUserHandler creates a new user handler
func NewUserHandler(
	stateService *services.UserStateService,
	qrService *services.QRService,
	logoService *services.LogoService,
	logoStore *services.LogoStore,
	fileClient *tgfile.Client,
	config *config.Config,
	logger *logrus.Logger,
) *UserHandler {
	handler := &UserHandler{
		BaseHandler: NewBaseHandler(stateService, qrService, logoService, logoStore, fileClient, config, logger),
	}

	handler.initializeCommands()
	return handler
}

// CanHandle checks if the handler can handle the given access type
func (h *UserHandler) CanHandle(accessType permissions.AccessType) bool {
	return accessType == permissions.User
}

// Handle handles a message from Telegram
func (h *UserHandler) Handle(ctx context.Context, c telebot.Context) error {
	msg := c.Message()
	if msg == nil {
		return nil
	}

	if msg.Photo != nil || msg.Document != nil {
		return h.handleImage(ctx, c)
	}

	text := strings.TrimSpace(msg.Text)

	// Keyboard buttons match on the whole text
	if handler, ok := h.commandHandlers[text]; ok {
		return handler(ctx, c, nil)
	}

	command, args := splitCommand(text)
	if strings.HasPrefix(command, "/") {
		if handler, ok := h.commandHandlers[command]; ok {
			return handler(ctx, c, args)
		}
	}

	return h.handleText(ctx, c, text)
}

// initializeCommands initializes the command handlers
func (h *UserHandler) initializeCommands() {
	h.commandHandlers = map[string]commandFunc{
		commands.Start:           h.handleStart,
		commands.Help:            h.handleHelp,
		commands.HelpButton:      h.handleHelp,
		commands.SetLogo:         h.handleSetLogo,
		commands.SetLogoButton:   h.handleSetLogo,
		commands.ClearLogo:       h.handleClearLogo,
		commands.ClearLogoButton: h.handleClearLogo,
		commands.QR:              h.handleQR,
		commands.Cancel:          h.handleCancel,
	}
}

// handleStart handles the /start command, cancelling any logo configuration
func (h *UserHandler) handleStart(ctx context.Context, c telebot.Context, args []string) error {
	if err := h.stateService.ClearState(c.Sender().ID); err != nil {
		h.logger.Errorf("Failed to clear user state: %v", err)
		return err
	}

	return h.sendTextMessage(c, helpText(h.config), h.createMainKeyboard())
}

// handleHelp handles the /help command
func (h *UserHandler) handleHelp(ctx context.Context, c telebot.Context, args []string) error {
	return h.sendTextMessage(c, helpText(h.config), h.createMainKeyboard())
}

// handleCancel handles the Cancel button
func (h *UserHandler) handleCancel(ctx context.Context, c telebot.Context, args []string) error {
	if err := h.stateService.ClearState(c.Sender().ID); err != nil {
		h.logger.Errorf("Failed to clear user state: %v", err)
		return err
	}

	return h.sendTextMessage(c, "❌ Logo configuration cancelled.", h.createMainKeyboard())
}

// handleSetLogo handles the /setlogo command
func (h *UserHandler) handleSetLogo(ctx context.Context, c telebot.Context, args []string) error {
	if err := h.stateService.WithConversationState(c.Sender().ID, models.AwaitingLogo); err != nil {
		h.logger.Errorf("Failed to set user state: %v", err)
		return h.sendTextMessage(c, "⚠️ Failed to start logo configuration.", nil)
	}

	return h.sendTextMessage(c, setLogoText(h.config), h.createCancelKeyboard())
}

// handleClearLogo handles the /clearlogo command
func (h *UserHandler) handleClearLogo(ctx context.Context, c telebot.Context, args []string) error {
	userID := c.Sender().ID
	hadLogo := h.logoStore.Exists(userID)

	if err := h.logoStore.Delete(userID); err != nil {
		h.logger.Errorf("Failed to delete logo for user %d: %v", userID, err)
		return h.sendTextMessage(c, "⚠️ Failed to remove your logo.", nil)
	}
	if err := h.stateService.ClearState(userID); err != nil {
		h.logger.Errorf("Failed to clear user state: %v", err)
	}

	if !hadLogo {
		return h.sendTextMessage(c, "ℹ️ You don't have a logo configured.", h.createMainKeyboard())
	}
	return h.sendTextMessage(c, "🗑️ Logo removed.", h.createMainKeyboard())
}

// handleQR handles the /qr command
func (h *UserHandler) handleQR(ctx context.Context, c telebot.Context, args []string) error {
	if len(args) == 0 {
		return h.sendTextMessage(c, qrUsageText(h.config), nil)
	}

	url, style, err := validation.ParseQRArgs(args, h.qrService.DefaultStyle(), h.config.QR.MinModuleSize, h.config.QR.MaxModuleSize)
	if err != nil {
		h.logger.Debugf("Rejected /qr arguments from user %d: %v", c.Sender().ID, err)
		return h.sendTextMessage(c, userMessageFor(err), nil)
	}

	logo, err := h.logoStore.Load(c.Sender().ID)
	if err != nil {
		h.logger.Warnf("Failed to load logo for user %d, generating without it: %v", c.Sender().ID, err)
		logo = nil
	}

	if err := h.sendTextMessage(c, "⏳ Generating your QR code...", nil); err != nil {
		return err
	}

	img, err := h.qrService.Synthesize(models.QRRequest{URL: url, Style: style, Logo: logo})
	if err != nil {
		return h.sendTextMessage(c, userMessageFor(err), nil)
	}

	caption := helpers.FormatQRCaption(url, style, img.HasLogo())
	if img.Warning != nil {
		caption += "\n⚠️ Your logo could not be applied, use /setlogo to upload it again."
	}

	return h.sendQRImage(c, img, caption)
}

// handleText handles text that is not a command
func (h *UserHandler) handleText(ctx context.Context, c telebot.Context, text string) error {
	if h.stateService.IsAwaitingLogo(c.Sender().ID) {
		return h.sendTextMessage(c, "📷 Waiting for your logo image.\nSend a photo in the next message or use /start to cancel.", h.createCancelKeyboard())
	}

	if !validation.LooksLikeURL(text) {
		return h.sendTextMessage(c, "ℹ️ Send me a link or use /help to see what I can do.", nil)
	}

	url, err := validation.NormalizeURL(text)
	if err != nil {
		return h.sendTextMessage(c, userMessageFor(err), nil)
	}

	img, err := h.qrService.Synthesize(models.QRRequest{URL: url, Style: h.qrService.DefaultStyle()})
	if err != nil {
		h.logger.Errorf("Failed to generate automatic QR for user %d: %v", c.Sender().ID, err)
		return h.sendTextMessage(c, userMessageFor(err), nil)
	}

	return h.sendQRImage(c, img, helpers.FormatAutoQRCaption(url))
}

// splitCommand splits message text into a command and its arguments,
// dropping a "@botname" suffix from the command
func splitCommand(text string) (string, []string) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return "", nil
	}

	command := fields[0]
	if i := strings.Index(command, "@"); i > 0 {
		command = command[:i]
	}

	return command, fields[1:]
}
