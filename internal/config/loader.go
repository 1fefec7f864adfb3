package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"qr-logo-bot/internal/constants"
	apperrors "qr-logo-bot/internal/errors"
	"qr-logo-bot/internal/helpers"
)

// Load loads the configuration from environment variables and an optional .env file
func Load() (*Config, error) {
	// A missing .env is fine, the environment may already carry everything
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("")
	v.AutomaticEnv()

	// Set default values
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("TG_API_URL", constants.DefaultTelegramAPIURL)
	v.SetDefault("TG_POLL_TIMEOUT", constants.DefaultPollTimeout*time.Second)
	v.SetDefault("LOGO_DIR", constants.DefaultLogoDir)
	v.SetDefault("LOGO_MAX_BYTES", constants.MaxLogoBytes)
	v.SetDefault("LOGO_MAX_DIMENSION", constants.MaxLogoDimension)
	v.SetDefault("LOGO_MAX_SOURCE_PIXELS", constants.MaxLogoSourcePixels)
	v.SetDefault("LOGO_DECODE_TIMEOUT", constants.DefaultDecodeTimeout*time.Second)
	v.SetDefault("LOGO_DOWNLOAD_TIMEOUT", constants.DefaultDownloadTimeout*time.Second)
	v.SetDefault("QR_FOREGROUND", constants.DefaultForeground)
	v.SetDefault("QR_BACKGROUND", constants.DefaultBackground)
	v.SetDefault("QR_MODULE_SIZE", constants.DefaultModuleSize)
	v.SetDefault("QR_MIN_MODULE_SIZE", constants.MinModuleSize)
	v.SetDefault("QR_MAX_MODULE_SIZE", constants.MaxModuleSize)
	v.SetDefault("QR_LOGO_DIVISOR", constants.DefaultLogoDivisor)
	v.SetDefault("HTTP_ADDR", "")

	// Define environment variables without defaults
	v.BindEnv("TG_TOKEN")
	v.BindEnv("TG_ALLOWED_IDS")

	cfg := &Config{
		LogLevel: v.GetString("LOG_LEVEL"),
		Telegram: TelegramConfig{
			Token:       strings.TrimSpace(v.GetString("TG_TOKEN")),
			APIURL:      strings.TrimRight(strings.TrimSpace(v.GetString("TG_API_URL")), "/"),
			PollTimeout: v.GetDuration("TG_POLL_TIMEOUT"),
		},
		Logo: LogoConfig{
			Dir:             strings.TrimSpace(v.GetString("LOGO_DIR")),
			MaxBytes:        v.GetInt64("LOGO_MAX_BYTES"),
			MaxDimension:    v.GetInt("LOGO_MAX_DIMENSION"),
			MaxSourcePixels: v.GetInt64("LOGO_MAX_SOURCE_PIXELS"),
			DecodeTimeout:   v.GetDuration("LOGO_DECODE_TIMEOUT"),
			DownloadTimeout: v.GetDuration("LOGO_DOWNLOAD_TIMEOUT"),
		},
		QR: QRConfig{
			Foreground:    strings.TrimSpace(v.GetString("QR_FOREGROUND")),
			Background:    strings.TrimSpace(v.GetString("QR_BACKGROUND")),
			ModuleSize:    v.GetInt("QR_MODULE_SIZE"),
			MinModuleSize: v.GetInt("QR_MIN_MODULE_SIZE"),
			MaxModuleSize: v.GetInt("QR_MAX_MODULE_SIZE"),
			LogoDivisor:   v.GetInt("QR_LOGO_DIVISOR"),
		},
		HTTP: HTTPConfig{
			Addr: strings.TrimSpace(v.GetString("HTTP_ADDR")),
		},
	}

	// Parse allowed IDs
	allowedIDs, err := parseIDList(v.GetString("TG_ALLOWED_IDS"))
	if err != nil {
		return nil, err
	}
	cfg.Telegram.AllowedIDs = allowedIDs

	// Validate configuration
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// parseIDList parses a comma separated list of Telegram user IDs
func parseIDList(raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, &apperrors.ConfigError{Section: "telegram", Message: fmt.Sprintf("invalid user ID %q in TG_ALLOWED_IDS", part)}
		}
		ids = append(ids, id)
	}

	return ids, nil
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if cfg.Telegram.Token == "" {
		return errors.New("TG_TOKEN is required")
	}
	if cfg.Telegram.APIURL == "" {
		return &apperrors.ConfigError{Section: "telegram", Message: "TG_API_URL must not be empty"}
	}

	// Validate logo limits
	if cfg.Logo.Dir == "" {
		return &apperrors.ConfigError{Section: "logo", Message: "LOGO_DIR must not be empty"}
	}
	if cfg.Logo.MaxBytes <= 0 {
		return &apperrors.ConfigError{Section: "logo", Message: "LOGO_MAX_BYTES must be positive"}
	}
	if cfg.Logo.MaxDimension <= 0 {
		return &apperrors.ConfigError{Section: "logo", Message: "LOGO_MAX_DIMENSION must be positive"}
	}
	if cfg.Logo.MaxSourcePixels <= 0 {
		return &apperrors.ConfigError{Section: "logo", Message: "LOGO_MAX_SOURCE_PIXELS must be positive"}
	}
	if cfg.Logo.DecodeTimeout <= 0 || cfg.Logo.DownloadTimeout <= 0 {
		return &apperrors.ConfigError{Section: "logo", Message: "timeouts must be positive"}
	}

	// Validate QR style defaults
	if cfg.QR.MinModuleSize < 1 || cfg.QR.MinModuleSize > cfg.QR.MaxModuleSize {
		return &apperrors.ConfigError{Section: "qr", Message: fmt.Sprintf("invalid module size range [%d,%d]", cfg.QR.MinModuleSize, cfg.QR.MaxModuleSize)}
	}
	if cfg.QR.ModuleSize < cfg.QR.MinModuleSize || cfg.QR.ModuleSize > cfg.QR.MaxModuleSize {
		return &apperrors.ConfigError{Section: "qr", Message: fmt.Sprintf("QR_MODULE_SIZE %d is outside [%d,%d]", cfg.QR.ModuleSize, cfg.QR.MinModuleSize, cfg.QR.MaxModuleSize)}
	}
	if cfg.QR.LogoDivisor < 2 {
		return &apperrors.ConfigError{Section: "qr", Message: "QR_LOGO_DIVISOR must be at least 2"}
	}
	if _, err := helpers.ParseColor(cfg.QR.Foreground); err != nil {
		return &apperrors.ConfigError{Section: "qr", Message: err.Error()}
	}
	if _, err := helpers.ParseColor(cfg.QR.Background); err != nil {
		return &apperrors.ConfigError{Section: "qr", Message: err.Error()}
	}

	return nil
}
