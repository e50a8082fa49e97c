// Package config assembles the pipeline configuration from four layers:
// built-in defaults, an optional YAML file, environment variables (with
// .env support), and command-line flags, in that order of increasing
// priority.
package config

// Config holds all pipeline configuration options.
type Config struct {
	// Run settings
	Category  string `yaml:"category"`   // topic category: kids, science, tech, auto
	Language  string `yaml:"language"`   // narration language, e.g. "english"
	Topic     string `yaml:"topic"`      // manual topic override (skips selection)
	OutputDir string `yaml:"output_dir"` // root for run workspaces and finished videos
	MusicDir  string `yaml:"music_dir"`  // directory holding background music tracks

	// Behavioral flags
	UseVideos  bool `yaml:"use_videos"`  // stock clips instead of generated images
	TestMode   bool `yaml:"test_mode"`   // short video, no upload, keep workdir
	SkipUpload bool `yaml:"skip_upload"` // produce the video but do not upload
	NoMusic    bool `yaml:"no_music"`    // narration only, no background track
	KeepVideos int  `yaml:"keep_videos"` // finished videos retained after cleanup
	Verbose    bool `yaml:"verbose"`     // debug-level logs
	Quiet      bool `yaml:"quiet"`       // error-level logs only
	DryRun     bool `yaml:"dry_run"`     // show config without producing anything

	// Video settings
	Video VideoConfig `yaml:"video"`

	// Audio settings
	Audio AudioConfig `yaml:"audio"`

	// External service settings
	API APIConfig `yaml:"api"`

	// Upload settings
	Upload UploadConfig `yaml:"upload"`

	// Media tool locations
	Tools ToolsConfig `yaml:"tools"`
}

// VideoConfig holds encoding and composition settings.
type VideoConfig struct {
	Width         int     `yaml:"width"`          // canvas width in pixels
	Height        int     `yaml:"height"`         // canvas height in pixels
	FPS           int     `yaml:"fps"`            // slideshow frame rate
	CRF           int     `yaml:"crf"`            // Constant Rate Factor (0-51, lower = better)
	Preset        string  `yaml:"preset"`         // e.g. "medium", "slow", "veryslow"
	Tune          string  `yaml:"tune"`           // e.g. "animation", "film"
	TargetSeconds int     `yaml:"target_seconds"` // advisory length handed to script generation
	FadeSeconds   float64 `yaml:"fade_seconds"`   // cross-fade between assets
}

// AudioConfig holds audio encoding and synthesis settings.
type AudioConfig struct {
	Bitrate    string `yaml:"bitrate"`     // e.g. "192k"
	SampleRate int    `yaml:"sample_rate"` // e.g. 48000
	VoiceID    string `yaml:"voice_id"`    // TTS voice override (empty = provider default)
}

// APIConfig holds endpoints and credentials for external services.
// Keys come from the environment only and are never written to YAML.
type APIConfig struct {
	OpenAIKey     string `yaml:"-"`
	OpenAIBaseURL string `yaml:"openai_base_url"`
	Model         string `yaml:"model"`
	TTSKey        string `yaml:"-"`
	TTSBaseURL    string `yaml:"tts_base_url"`
	StockKey      string `yaml:"-"`
	StockBaseURL  string `yaml:"stock_base_url"`
}

// UploadConfig holds upload target settings.
type UploadConfig struct {
	PrivacyStatus   string `yaml:"privacy_status"` // "private", "unlisted", "public"
	MadeForKids     bool   `yaml:"made_for_kids"`  // COPPA self-declaration
	CategoryID      string `yaml:"category_id"`    // platform category ("27" = Education)
	CredentialsFile string `yaml:"credentials_file"`
	TokenFile       string `yaml:"token_file"`
}

// ToolsConfig holds overrides for external binary locations.
// Empty values mean "resolve from PATH".
type ToolsConfig struct {
	FFmpegPath  string `yaml:"ffmpeg_path"`
	FFprobePath string `yaml:"ffprobe_path"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		// Run defaults
		Category:  "kids",
		Language:  "english",
		Topic:     "", // empty = let the selector choose
		OutputDir: "output",
		MusicDir:  "assets/music",

		// Behavioral defaults
		UseVideos:  false, // generated images
		TestMode:   false,
		SkipUpload: false,
		NoMusic:    false,
		KeepVideos: 3,
		Verbose:    false,
		Quiet:      false,
		DryRun:     false,

		// Video defaults (1080p60, animation-tuned x264)
		Video: VideoConfig{
			Width:         1920,
			Height:        1080,
			FPS:           60,
			CRF:           21,
			Preset:        "slow",
			Tune:          "animation",
			TargetSeconds: 300, // 5 minute target
			FadeSeconds:   0.8,
		},

		// Audio defaults (AAC stereo at broadcast bitrate)
		Audio: AudioConfig{
			Bitrate:    "192k",
			SampleRate: 48000,
			VoiceID:    "",
		},

		// External service defaults (hosted endpoints)
		API: APIConfig{
			OpenAIBaseURL: "https://api.openai.com/v1",
			Model:         "gpt-4o-mini",
			TTSBaseURL:    "https://api.elevenlabs.io/v1",
			StockBaseURL:  "https://api.pexels.com",
		},

		// Upload defaults (private until reviewed, Education category)
		Upload: UploadConfig{
			PrivacyStatus:   "private",
			MadeForKids:     true,
			CategoryID:      "27",
			CredentialsFile: "client_secret.json",
			TokenFile:       "token.json",
		},

		Tools: ToolsConfig{
			FFmpegPath:  "",
			FFprobePath: "",
		},
	}
}

// Copy creates a deep copy of the config.
func (c *Config) Copy() *Config {
	copy := *c
	copy.Video = c.Video
	copy.Audio = c.Audio
	copy.API = c.API
	copy.Upload = c.Upload
	copy.Tools = c.Tools
	return &copy
}

// LogLevel derives the zerolog level string from the verbosity flags.
// Quiet wins over verbose when both are set.
func (c *Config) LogLevel() string {
	switch {
	case c.Quiet:
		return "error"
	case c.Verbose:
		return "debug"
	default:
		return "info"
	}
}

// CategoryValues returns valid category values.
func CategoryValues() []string {
	return []string{"kids", "science", "tech", "auto"}
}

// IsValidCategory checks if category is valid.
func IsValidCategory(category string) bool {
	for _, valid := range CategoryValues() {
		if category == valid {
			return true
		}
	}
	return false
}
