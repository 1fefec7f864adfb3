package handlers

import (
	"context"

	"github.com/sirupsen/logrus"
	telebot "gopkg.in/telebot.v3"

	"qr-logo-bot/internal/config"
	"qr-logo-bot/internal/permissions"
	"qr-logo-bot/internal/services"
	"qr-logo-bot/pkg/tgfile"
)

// MessageHandler defines the interface for handling Telegram messages
type MessageHandler interface {
	Handle(ctx context.Context, c telebot.Context) error
	CanHandle(accessType permissions.AccessType) bool
}

// HandlerFactory creates message handlers
type HandlerFactory struct {
	stateService *services.UserStateService
	qrService    *services.QRService
	logoService  *services.LogoService
	logoStore    *services.LogoStore
	fileClient   *tgfile.Client
	config       *config.Config
	logger       *logrus.Logger
}

// NewHandlerFactory creates a new handler factory
func NewHandlerFactory(
	stateService *services.UserStateService,
	qrService *services.QRService,
	logoService *services.LogoService,
	logoStore *services.LogoStore,
	fileClient *tgfile.Client,
	config *config.Config,
	logger *logrus.Logger,
) *HandlerFactory {
	return &HandlerFactory{
		stateService: stateService,
		qrService:    qrService,
		logoService:  logoService,
		logoStore:    logoStore,
		fileClient:   fileClient,
		config:       config,
		logger:       logger,
	}
}

// CreateHandler creates a message handler for the given access type.
// Returns nil for users without access.
func (f *HandlerFactory) CreateHandler(accessType permissions.AccessType) MessageHandler {
	switch accessType {
	case permissions.User:
		return NewUserHandler(f.stateService, f.qrService, f.logoService, f.logoStore, f.fileClient, f.config, f.logger)
	default:
		f.logger.Warnf("No handler for access type: %d", accessType)
		return nil
	}
}
