package config

import (
	"fmt"
	"strings"
)

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errors []string

	// Validate category
	if !IsValidCategory(c.Category) {
		errors = append(errors, fmt.Sprintf("invalid category '%s', must be one of: %s",
			c.Category, strings.Join(CategoryValues(), ", ")))
	}

	if strings.TrimSpace(c.Language) == "" {
		errors = append(errors, "language is required")
	}

	if strings.TrimSpace(c.OutputDir) == "" {
		errors = append(errors, "output directory is required")
	}

	// Validate retention (0 is valid, means keep nothing beyond the new video)
	if c.KeepVideos < 0 {
		errors = append(errors, "keep-videos cannot be negative")
	}

	// Credentials are only needed when the run will actually call the
	// services; test mode runs fully offline.
	if !c.TestMode {
		if c.API.OpenAIKey == "" {
			errors = append(errors, fmt.Sprintf("%s is required (set it in the environment or a .env file)", EnvOpenAIKey))
		}
		if c.UseVideos && c.API.StockKey == "" {
			errors = append(errors, fmt.Sprintf("%s is required with --use-videos", EnvStockKey))
		}
	}

	// Validate video config
	if err := c.Video.Validate(); err != nil {
		errors = append(errors, fmt.Sprintf("video config: %v", err))
	}

	// Validate audio config
	if err := c.Audio.Validate(); err != nil {
		errors = append(errors, fmt.Sprintf("audio config: %v", err))
	}

	// Validate upload config
	if err := c.Upload.Validate(); err != nil {
		errors = append(errors, fmt.Sprintf("upload config: %v", err))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// Validate checks if video configuration is valid
func (vc *VideoConfig) Validate() error {
	var errors []string

	if vc.Width <= 0 || vc.Height <= 0 {
		errors = append(errors, "canvas dimensions must be positive")
	}

	if vc.FPS <= 0 {
		errors = append(errors, "fps must be positive")
	}

	// CRF validation
	if vc.CRF < 0 || vc.CRF > 51 {
		errors = append(errors, "CRF must be between 0 and 51")
	}

	if vc.Preset == "" {
		errors = append(errors, "preset is required")
	}

	if vc.TargetSeconds <= 0 {
		errors = append(errors, "target duration must be positive")
	}

	if vc.FadeSeconds < 0 {
		errors = append(errors, "fade duration cannot be negative")
	}

	if len(errors) > 0 {
		return fmt.Errorf("%s", strings.Join(errors, ", "))
	}

	return nil
}

// Validate checks if audio configuration is valid
func (ac *AudioConfig) Validate() error {
	var errors []string

	if ac.Bitrate == "" {
		errors = append(errors, "bitrate is required")
	}

	if ac.SampleRate <= 0 {
		errors = append(errors, "sample rate must be positive")
	}

	if len(errors) > 0 {
		return fmt.Errorf("%s", strings.Join(errors, ", "))
	}

	return nil
}

// Validate checks if upload configuration is valid
func (uc *UploadConfig) Validate() error {
	var errors []string

	switch uc.PrivacyStatus {
	case "private", "unlisted", "public":
	default:
		errors = append(errors, fmt.Sprintf("invalid privacy status '%s', must be private, unlisted or public", uc.PrivacyStatus))
	}

	if uc.CategoryID == "" {
		errors = append(errors, "category id is required")
	}

	if len(errors) > 0 {
		return fmt.Errorf("%s", strings.Join(errors, ", "))
	}

	return nil
}
