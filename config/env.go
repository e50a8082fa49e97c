package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variable names recognized by MergeFromEnv.
const (
	EnvOpenAIKey     = "OPENAI_API_KEY"
	EnvTTSKey        = "ELEVENLABS_API_KEY"
	EnvStockKey      = "PEXELS_API_KEY"
	EnvFFmpegPath    = "FFMPEG_PATH"
	EnvFFprobePath   = "FFPROBE_PATH"
	EnvPrivacyStatus = "PRIVACY_STATUS"
	EnvMadeForKids   = "MADE_FOR_KIDS"
)

// LoadDotEnv loads a .env file from the working directory into the
// process environment. A missing file is not an error; a malformed one
// is.
func LoadDotEnv() error {
	if _, err := os.Stat(".env"); err != nil {
		return nil
	}
	return godotenv.Load()
}

// MergeFromEnv overlays environment variables onto the config. API keys
// only ever come from here; the remaining keys are overrides for values
// a config file could also set.
func (c *Config) MergeFromEnv() {
	if v := os.Getenv(EnvOpenAIKey); v != "" {
		c.API.OpenAIKey = v
	}
	if v := os.Getenv(EnvTTSKey); v != "" {
		c.API.TTSKey = v
	}
	if v := os.Getenv(EnvStockKey); v != "" {
		c.API.StockKey = v
	}
	if v := os.Getenv(EnvFFmpegPath); v != "" {
		c.Tools.FFmpegPath = v
	}
	if v := os.Getenv(EnvFFprobePath); v != "" {
		c.Tools.FFprobePath = v
	}
	if v := os.Getenv(EnvPrivacyStatus); v != "" {
		c.Upload.PrivacyStatus = v
	}
	if v := os.Getenv(EnvMadeForKids); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			c.Upload.MadeForKids = parsed
		}
	}
}
