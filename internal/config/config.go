package config

import "time"

// Config represents the application configuration
type Config struct {
	Telegram TelegramConfig `mapstructure:"telegram"`
	Logo     LogoConfig     `mapstructure:"logo"`
	QR       QRConfig       `mapstructure:"qr"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	LogLevel string         `mapstructure:"log_level"`
}

// TelegramConfig holds the Telegram bot configuration
type TelegramConfig struct {
	Token       string        `mapstructure:"token"`
	APIURL      string        `mapstructure:"api_url"`
	AllowedIDs  []int64       `mapstructure:"allowed_ids"`
	PollTimeout time.Duration `mapstructure:"poll_timeout"`
}

// LogoConfig holds the limits applied to uploaded logos
type LogoConfig struct {
	Dir             string        `mapstructure:"dir"`
	MaxBytes        int64         `mapstructure:"max_bytes"`
	MaxDimension    int           `mapstructure:"max_dimension"`
	MaxSourcePixels int64         `mapstructure:"max_source_pixels"`
	DecodeTimeout   time.Duration `mapstructure:"decode_timeout"`
	DownloadTimeout time.Duration `mapstructure:"download_timeout"`
}

// QRConfig holds the default QR style and its tunables
type QRConfig struct {
	Foreground    string `mapstructure:"foreground"`
	Background    string `mapstructure:"background"`
	ModuleSize    int    `mapstructure:"module_size"`
	MinModuleSize int    `mapstructure:"min_module_size"`
	MaxModuleSize int    `mapstructure:"max_module_size"`
	// LogoDivisor bounds the composited logo to min(width, height) / LogoDivisor.
	LogoDivisor int `mapstructure:"logo_divisor"`
}

// HTTPConfig holds the optional HTTP API configuration. An empty Addr disables it.
type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}
