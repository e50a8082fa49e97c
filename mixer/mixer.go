// Package mixer lays category-appropriate background music under the
// narration track. Music is an enhancement, never a requirement: every
// failure path (missing track, probe failure, encoder failure, empty
// output) degrades to copying the narration through unchanged and
// reporting a warning, so the pipeline always has an audio file to cut
// the video against.
package mixer

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"kidreel/command/musicmix"
	"kidreel/internal/fsutil"
	"kidreel/mediatool"
	"kidreel/models"
)

// TrackSettings selects a music bed and its pre-duck volume for one
// topic category.
type TrackSettings struct {
	Track  string
	Volume float64
}

var trackFiles = map[string]string{
	"upbeat_kids":      "upbeat_kids.mp3",
	"gentle_learning":  "gentle_learning.mp3",
	"playful_melody":   "playful_melody.mp3",
	"happy_piano":      "happy_piano.mp3",
	"cheerful_ukulele": "cheerful_ukulele.mp3",
}

var categorySettings = map[string]TrackSettings{
	"english_alphabet":  {Track: "upbeat_kids", Volume: 0.15},
	"hindi_alphabet":    {Track: "upbeat_kids", Volume: 0.15},
	"numbers_counting":  {Track: "playful_melody", Volume: 0.18},
	"colors_shapes":     {Track: "cheerful_ukulele", Volume: 0.16},
	"fruits_vegetables": {Track: "happy_piano", Volume: 0.15},
	"animals_sounds":    {Track: "playful_melody", Volume: 0.14},
	"simple_logic":      {Track: "gentle_learning", Volume: 0.17},
	"body_parts":        {Track: "upbeat_kids", Volume: 0.16},
	"daily_habits":      {Track: "gentle_learning", Volume: 0.15},
	"emotions":          {Track: "gentle_learning", Volume: 0.14},
	"basic_math":        {Track: "playful_melody", Volume: 0.17},
	"rhymes_learning":   {Track: "cheerful_ukulele", Volume: 0.18},
	"memory_games":      {Track: "upbeat_kids", Volume: 0.16},
	"puzzle_games":      {Track: "playful_melody", Volume: 0.17},
	"observation_games": {Track: "upbeat_kids", Volume: 0.16},
	"default":           {Track: "upbeat_kids", Volume: 0.15},
}

// SettingsFor returns the music settings for a category, falling back
// to the default settings for unknown categories.
func SettingsFor(category string) TrackSettings {
	if s, ok := categorySettings[category]; ok {
		return s
	}
	return categorySettings["default"]
}

// Outcome reports what the mix stage produced. Path always names a
// usable audio file; Mixed is false when the stage degraded to a plain
// copy of the narration, in which case Warning says why.
type Outcome struct {
	Path    string
	Mixed   bool
	Warning *models.Warning
}

// Mixer mixes narration with looped background music.
type Mixer struct {
	musicDir string
	gateway  mediatool.Gateway
	logger   zerolog.Logger
	ducking  bool
}

// New creates a Mixer that looks up music beds in musicDir.
func New(musicDir string, gateway mediatool.Gateway, logger zerolog.Logger) *Mixer {
	return &Mixer{
		musicDir: musicDir,
		gateway:  gateway,
		logger:   logger.With().Str("component", "mixer").Logger(),
		ducking:  true,
	}
}

// SetDucking toggles side-chain compression of the music under speech.
func (m *Mixer) SetDucking(enabled bool) *Mixer {
	m.ducking = enabled
	return m
}

// Mix writes a music-backed version of narrationPath to outputPath and
// returns where downstream stages should read audio from. The returned
// error is non-nil only when even the copy-through fallback failed,
// which means the narration itself is unusable.
func (m *Mixer) Mix(ctx context.Context, narrationPath, outputPath, category string) (*Outcome, error) {
	settings := SettingsFor(category)
	musicPath := filepath.Join(m.musicDir, trackFiles[settings.Track])

	if !fsutil.NonEmpty(musicPath) {
		m.logger.Warn().
			Str("category", category).
			Str("music", musicPath).
			Msg("music track missing, skipping background music")
		return m.copyThrough(narrationPath, outputPath,
			models.NewWarning("mixer", "music track missing for category %s, narration used unmixed", category))
	}

	duration, err := mediatool.Duration(ctx, m.gateway, narrationPath)
	if err != nil {
		m.logger.Warn().Err(err).Msg("narration probe failed, skipping background music")
		return m.copyThrough(narrationPath, outputPath,
			models.NewWarning("mixer", "narration probe failed, narration used unmixed: %v", err))
	}

	cmd := musicmix.NewMusicMixBuilder(musicPath, narrationPath, outputPath, duration).
		SetMusicVolume(settings.Volume).
		SetDucking(m.ducking)

	if err := cmd.Validate(); err != nil {
		return m.copyThrough(narrationPath, outputPath,
			models.NewWarning("mixer", "mix command invalid, narration used unmixed: %v", err))
	}

	m.logger.Info().
		Str("category", category).
		Str("track", settings.Track).
		Float64("volume", settings.Volume).
		Bool("ducking", m.ducking).
		Float64("duration", duration).
		Msg("mixing background music")

	err = m.gateway.Encode(ctx, mediatool.EncodeRequest{
		Args:          cmd.BuildArgs(),
		TotalDuration: cmd.GetTotalDuration(),
	})
	if err == nil && !fsutil.NonEmpty(outputPath) {
		err = fmt.Errorf("mixer produced no output at %s", outputPath)
	}
	if err != nil {
		m.logger.Warn().Err(err).Msg("music mix failed, falling back to plain narration")
		return m.copyThrough(narrationPath, outputPath,
			models.NewWarning("mixer", "mixing failed, narration used unmixed: %v", err))
	}

	return &Outcome{Path: outputPath, Mixed: true}, nil
}

// copyThrough copies the narration to the output path unchanged so the
// rest of the pipeline does not care whether mixing happened.
func (m *Mixer) copyThrough(narrationPath, outputPath string, warning models.Warning) (*Outcome, error) {
	if err := fsutil.CopyFile(narrationPath, outputPath); err != nil {
		return nil, fmt.Errorf("mix fallback copy failed: %w", err)
	}
	return &Outcome{Path: outputPath, Mixed: false, Warning: &warning}, nil
}
