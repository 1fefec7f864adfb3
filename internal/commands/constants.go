package commands

// TelegramCommands contains all commands for the Telegram bot
const (
	// Slash commands
	Start     = "/start"
	Help      = "/help"
	SetLogo   = "/setlogo"
	ClearLogo = "/clearlogo"
	QR        = "/qr"

	// Keyboard buttons
	SetLogoButton   = "Set Logo"
	ClearLogoButton = "Clear Logo"
	HelpButton      = "Help"
	Cancel          = "Cancel"
)
