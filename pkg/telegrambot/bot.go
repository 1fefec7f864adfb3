package telegrambot

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	telebot "gopkg.in/telebot.v3"

	"qr-logo-bot/internal/commands"
	"qr-logo-bot/internal/config"
	"qr-logo-bot/internal/handlers"
	"qr-logo-bot/internal/permissions"
	"qr-logo-bot/internal/services"
	"qr-logo-bot/pkg/tgfile"
)

// Bot represents a Telegram bot
type Bot struct {
	bot      *telebot.Bot
	config   *config.Config
	handlers map[permissions.AccessType]handlers.MessageHandler
	permCtrl *permissions.PermissionController
	ctx      context.Context
	logger   *logrus.Logger
}

// NewBot creates a new Telegram bot
func NewBot(
	cfg *config.Config,
	stateService *services.UserStateService,
	qrService *services.QRService,
	logoService *services.LogoService,
	logoStore *services.LogoStore,
	fileClient *tgfile.Client,
	permCtrl *permissions.PermissionController,
	logger *logrus.Logger,
) (*Bot, error) {
	// Create bot settings
	settings := telebot.Settings{
		URL:    cfg.Telegram.APIURL,
		Token:  cfg.Telegram.Token,
		Poller: &telebot.LongPoller{Timeout: cfg.Telegram.PollTimeout},
		OnError: func(err error, c telebot.Context) {
			logger.Errorf("Telegram bot error: %v", err)
			if c != nil {
				c.Send("An error occurred. Please try again later.")
			}
		},
	}

	// Create bot instance
	b, err := telebot.NewBot(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	// Create handler factory
	factory := handlers.NewHandlerFactory(stateService, qrService, logoService, logoStore, fileClient, cfg, logger)

	// Create bot
	bot := &Bot{
		bot:      b,
		config:   cfg,
		handlers: make(map[permissions.AccessType]handlers.MessageHandler),
		permCtrl: permCtrl,
		ctx:      context.Background(),
		logger:   logger,
	}

	bot.handlers[permissions.User] = factory.CreateHandler(permissions.User)

	// Setup middleware
	bot.setupMiddleware()

	return bot, nil
}

// Start registers the command menu and polls for updates until ctx is cancelled
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("Starting Telegram bot")
	b.ctx = ctx

	if err := b.bot.SetCommands([]telebot.Command{
		{Text: commands.Start, Description: "Show help"},
		{Text: commands.SetLogo, Description: "Configure your logo"},
		{Text: commands.QR, Description: "Generate a custom QR code"},
		{Text: commands.ClearLogo, Description: "Remove your logo"},
	}); err != nil {
		b.logger.Warnf("Failed to register bot commands: %v", err)
	}

	// Setup context for graceful shutdown
	go func() {
		<-ctx.Done()
		b.logger.Info("Stopping Telegram bot")
		b.bot.Stop()
	}()

	// Start the bot
	b.bot.Start()
	return nil
}

// setupMiddleware sets up the bot middleware
func (b *Bot) setupMiddleware() {
	// Add middleware for all updates
	b.bot.Use(func(next telebot.HandlerFunc) telebot.HandlerFunc {
		return func(c telebot.Context) error {
			if c.Sender() == nil {
				return nil
			}

			// Log incoming message
			switch msg := c.Message(); {
			case msg != nil && msg.Photo != nil:
				b.logger.Infof("Received photo from %d", c.Sender().ID)
			case msg != nil && msg.Document != nil:
				b.logger.Infof("Received document from %d (%s)", c.Sender().ID, msg.Document.MIME)
			default:
				b.logger.Infof("Received message from %d: %s", c.Sender().ID, c.Text())
			}

			// Pass to the next handler
			return next(c)
		}
	})

	// Handle all messages
	b.bot.Handle(telebot.OnText, b.handleUpdate)
	b.bot.Handle(telebot.OnPhoto, b.handleUpdate)
	b.bot.Handle(telebot.OnDocument, b.handleUpdate)
	for _, command := range []string{commands.Start, commands.Help, commands.SetLogo, commands.ClearLogo, commands.QR} {
		b.bot.Handle(command, b.handleUpdate)
	}
}

// handleUpdate handles an update from Telegram
func (b *Bot) handleUpdate(c telebot.Context) error {
	// Get user ID
	userID := c.Sender().ID

	// Get access type
	accessType := b.permCtrl.GetAccessType(userID)

	// Get handler for access type
	handler, ok := b.handlers[accessType]
	if !ok || handler == nil {
		b.logger.Warnf("User %d has no access", userID)
		return c.Send("You don't have permission to use this bot.")
	}

	// Handle the update
	return handler.Handle(b.ctx, c)
}
