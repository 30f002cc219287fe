package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"socialdl/internal/model"

	"github.com/joho/godotenv"
)

// DefaultChains is the strategy order used when CHAIN_<PLATFORM> is unset.
// The structured extractor goes first, JSON lookups next and HTML scrapers
// last since their markup contract breaks most often.
var DefaultChains = map[model.Platform][]string{
	model.PlatformTikTok:    {"ytdlp", "tikmate", "ssstik"},
	model.PlatformInstagram: {"ytdlp", "savefrom"},
	model.PlatformYouTube:   {"ytdlp", "yt5s"},
	model.PlatformTwitter:   {"ytdlp", "twdown", "twitsave"},
	model.PlatformFacebook:  {"ytdlp", "fdown"},
	model.PlatformSnapchat:  {"ytdlp", "opengraph", "snapdownloader"},
}

// Load loads configuration from environment variables
func Load() *model.Config {
	godotenv.Load()

	return &model.Config{
		Server: model.ServerConfig{
			Port:            getEnvInt("SERVER_PORT", 3000),
			Host:            getEnvStr("SERVER_HOST", "0.0.0.0"),
			Timeout:         getEnvInt("SERVER_TIMEOUT", 300),
			ShutdownTimeout: getEnvInt("SERVER_SHUTDOWN_TIMEOUT", 30),
		},
		Logging: model.LoggingConfig{
			Level:    getEnvStr("LOG_LEVEL", "info"),
			FilePath: getEnvStr("LOG_FILE", ""),
		},
		Extractor: model.ExtractorConfig{
			Path:           getEnvStr("YTDLP_PATH", "yt-dlp"),
			CookiesFile:    getEnvStr("YTDLP_COOKIES_FILE", ""),
			YouTubeClient:  getEnvStr("YTDLP_YOUTUBE_CLIENT", "android"),
			PreferCombined: getEnvBool("YTDLP_PREFER_COMBINED", true),
			Timeout:        getEnvDuration("YTDLP_TIMEOUT", 30*time.Second),
			StreamFormat:   getEnvStr("YTDLP_STREAM_FORMAT", "best[ext=mp4]/best"),
		},
		Resolver: model.ResolverConfig{
			AttemptTimeout: getEnvDuration("RESOLVER_ATTEMPT_TIMEOUT", 20*time.Second),
			LookupTimeout:  getEnvDuration("RESOLVER_LOOKUP_TIMEOUT", 15*time.Second),
			ChainBudget:    getEnvDuration("RESOLVER_CHAIN_BUDGET", 60*time.Second),
			Chains:         loadChains(),
		},
		Lookup: model.LookupConfig{
			TikmateURL:        getEnvStr("LOOKUP_TIKMATE_URL", "https://api.tikmate.app/api/lookup"),
			SsstikURL:         getEnvStr("LOOKUP_SSSTIK_URL", "https://ssstik.io/abc"),
			SavefromURL:       getEnvStr("LOOKUP_SAVEFROM_URL", "https://savefrom.net/api/convert"),
			Yt5sURL:           getEnvStr("LOOKUP_YT5S_URL", "https://yt5s.io/api/ajaxSearch"),
			YouTubeOEmbedURL:  getEnvStr("LOOKUP_YOUTUBE_OEMBED_URL", "https://www.youtube.com/oembed"),
			TwitsaveURL:       getEnvStr("LOOKUP_TWITSAVE_URL", "https://twitsave.com/info"),
			TwdownURL:         getEnvStr("LOOKUP_TWDOWN_URL", "https://api.twdown.net/api/url"),
			FdownURL:          getEnvStr("LOOKUP_FDOWN_URL", "https://fdown.net/download.php"),
			SnapdownloaderURL: getEnvStr("LOOKUP_SNAPDOWNLOADER_URL", "https://snapdownloader.com/api/download"),
		},
		Security: model.SecurityConfig{
			AllowedOrigins: parseList(getEnvStr("CORS_ALLOWED_ORIGINS", "*")),
			MaxURLLength:   getEnvInt("MAX_URL_LENGTH", 2048),
		},
		Metrics: model.MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", true),
			Path:    getEnvStr("METRICS_PATH", "/metrics"),
		},
	}
}

// loadChains reads CHAIN_<PLATFORM> overrides on top of DefaultChains
func loadChains() map[model.Platform][]string {
	chains := make(map[model.Platform][]string, len(DefaultChains))
	for _, platform := range model.SupportedPlatforms() {
		key := "CHAIN_" + strings.ToUpper(string(platform))
		if names := parseList(getEnvStr(key, "")); len(names) > 0 {
			chains[platform] = names
			continue
		}
		chains[platform] = append([]string(nil), DefaultChains[platform]...)
	}
	return chains
}

// parseList splits a comma-separated value, dropping blanks
func parseList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		item = strings.ToLower(strings.TrimSpace(item))
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

func getEnvStr(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	valStr := getEnvStr(key, "")
	if val, err := strconv.Atoi(valStr); err == nil {
		return val
	}
	return defaultVal
}

// getEnvDuration accepts Go durations ("15s") or plain seconds ("15")
func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	valStr := getEnvStr(key, "")
	if valStr == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(valStr); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(valStr); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	valStr := strings.ToLower(getEnvStr(key, ""))
	if valStr == "true" || valStr == "1" || valStr == "yes" {
		return true
	}
	if valStr == "false" || valStr == "0" || valStr == "no" {
		return false
	}
	return defaultVal
}
