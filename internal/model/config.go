package model

import "time"

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	Logging   LoggingConfig
	Extractor ExtractorConfig
	Resolver  ResolverConfig
	Lookup    LookupConfig
	Security  SecurityConfig
	Metrics   MetricsConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            int
	Host            string
	Timeout         int // seconds
	ShutdownTimeout int // seconds
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level    string
	FilePath string // empty logs to stdout only
	Stderr   bool   // log to stderr instead of stdout
}

// ExtractorConfig holds yt-dlp configuration
type ExtractorConfig struct {
	Path           string
	CookiesFile    string // optional, read-only
	YouTubeClient  string // player_client extractor argument for YouTube
	PreferCombined bool   // keep only renditions carrying both audio and video when any exist
	Timeout        time.Duration
	StreamFormat   string // -f selector used for direct streaming
}

// ResolverConfig holds chain execution configuration
type ResolverConfig struct {
	AttemptTimeout time.Duration // default per strategy attempt
	LookupTimeout  time.Duration // HTTP lookup and scraping strategies
	ChainBudget    time.Duration // whole chain; zero disables
	Chains         map[Platform][]string
}

// LookupConfig holds third-party endpoint locations
type LookupConfig struct {
	TikmateURL        string
	SsstikURL         string
	SavefromURL       string
	Yt5sURL           string
	YouTubeOEmbedURL  string
	TwitsaveURL       string
	TwdownURL         string
	FdownURL          string
	SnapdownloaderURL string
}

// SecurityConfig holds security configuration
type SecurityConfig struct {
	AllowedOrigins []string
	MaxURLLength   int
}

// MetricsConfig holds Prometheus exposition configuration
type MetricsConfig struct {
	Enabled bool
	Path    string
}
