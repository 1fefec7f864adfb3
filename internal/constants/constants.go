package constants

const (
	// Telegram constants
	DefaultTelegramAPIURL = "https://api.telegram.org"
	DefaultPollTimeout    = 10 // seconds

	// Logo constants
	DefaultLogoDir         = "user_logos"
	MaxLogoBytes           = 5 * 1024 * 1024
	MaxLogoDimension       = 400
	MaxLogoSourcePixels    = 40_000_000
	DefaultDecodeTimeout   = 30 // seconds
	DefaultDownloadTimeout = 30 // seconds
	LogoFilePrefix         = "logo_"
	LogoFileExt            = ".png"

	// QR constants
	DefaultForeground    = "black"
	DefaultBackground    = "white"
	DefaultModuleSize    = 10
	MinModuleSize        = 5
	MaxModuleSize        = 20
	DefaultLogoDivisor   = 7
	QuietZoneModules     = 4
	MaxURLDisplayLength  = 64
	MaxURLInputLength    = 2048

	// Network constants
	DefaultRetryCount       = 2
	DefaultRetryWaitTime    = 1
	DefaultRetryMaxWaitTime = 5

	// Cache constants
	CacheExpiration      = 30 // minutes
	CacheCleanupInterval = 10 // minutes

	// Formatting constants
	TimestampFormat = "2006-01-02 15:04:05"
)
