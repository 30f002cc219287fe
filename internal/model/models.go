package model

// Platform identifies the social media service a URL belongs to
type Platform string

const (
	PlatformTikTok    Platform = "tiktok"
	PlatformInstagram Platform = "instagram"
	PlatformYouTube   Platform = "youtube"
	PlatformTwitter   Platform = "twitter"
	PlatformFacebook  Platform = "facebook"
	PlatformSnapchat  Platform = "snapchat"
	PlatformUnknown   Platform = "unknown"
)

// SupportedPlatforms returns the known platforms in classification order
func SupportedPlatforms() []Platform {
	return []Platform{
		PlatformTikTok,
		PlatformInstagram,
		PlatformYouTube,
		PlatformTwitter,
		PlatformFacebook,
		PlatformSnapchat,
	}
}

// DisplayName returns the human readable platform name
func (p Platform) DisplayName() string {
	switch p {
	case PlatformTikTok:
		return "TikTok"
	case PlatformInstagram:
		return "Instagram"
	case PlatformYouTube:
		return "YouTube"
	case PlatformTwitter:
		return "Twitter/X"
	case PlatformFacebook:
		return "Facebook"
	case PlatformSnapchat:
		return "Snapchat"
	default:
		return "Unknown"
	}
}

// DefaultTitle is the placeholder title used when a source exposes none
func (p Platform) DefaultTitle() string {
	switch p {
	case PlatformInstagram:
		return "Instagram Post"
	case PlatformTwitter:
		return "Twitter Video"
	case PlatformUnknown:
		return "Video"
	default:
		return p.DisplayName() + " Video"
	}
}

// MediaFormat is one concrete downloadable rendition
type MediaFormat struct {
	Quality   string `json:"quality"`
	URL       string `json:"url"`
	Extension string `json:"ext,omitempty"`
	Size      string `json:"size,omitempty"`
	HasVideo  *bool  `json:"hasVideo,omitempty"`
	HasAudio  *bool  `json:"hasAudio,omitempty"`
}

// Combined reports whether the rendition is known to carry both tracks
func (f MediaFormat) Combined() bool {
	return f.HasVideo != nil && *f.HasVideo && f.HasAudio != nil && *f.HasAudio
}

// ResolutionResult is the normalized success payload.
// Formats are ordered best-first.
type ResolutionResult struct {
	Success     bool          `json:"success"`
	Platform    Platform      `json:"platform"`
	Title       string        `json:"title"`
	Thumbnail   string        `json:"thumbnail,omitempty"`
	Duration    string        `json:"duration,omitempty"`
	Author      string        `json:"author,omitempty"`
	Description string        `json:"description,omitempty"`
	Music       *MusicInfo    `json:"music,omitempty"`
	Formats     []MediaFormat `json:"formats"`
	BestURL     string        `json:"bestUrl,omitempty"`
	Strategy    string        `json:"strategy,omitempty"`
}

// MusicInfo describes the soundtrack of a post
type MusicInfo struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	URL    string `json:"url"`
}

// Valid reports whether the result points at any media at all
func (r *ResolutionResult) Valid() bool {
	if r == nil {
		return false
	}
	return len(r.Formats) > 0 || r.BestURL != ""
}

// DownloadRequest is the body of POST /api/download
type DownloadRequest struct {
	URL string `json:"url"`
}

// ErrorResponse represents an API error
type ErrorResponse struct {
	Success    bool     `json:"success"`
	Error      string   `json:"error"`
	Strategies []string `json:"strategies,omitempty"`
}

// PlatformInfo describes one supported platform for /api/platforms
type PlatformInfo struct {
	ID   Platform `json:"id"`
	Name string   `json:"name"`
}

// URLInfo is the classification answer of /api/info
type URLInfo struct {
	Success     bool     `json:"success"`
	URL         string   `json:"url"`
	Platform    Platform `json:"platform"`
	IsSupported bool     `json:"isSupported"`
}

// Bool returns a pointer to b, for the optional track flags
func Bool(b bool) *bool {
	return &b
}
