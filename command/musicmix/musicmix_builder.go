package musicmix

import (
	"fmt"
	"os"
	"strings"

	"kidreel/command"
	"kidreel/filtergraph"
)

// MusicMixBuilder constructs the ffmpeg invocation that lays a looped,
// faded background track under a narration file. Music is input 0 and
// narration input 1, matching the pad labels the audio graphs expect.
type MusicMixBuilder struct {
	musicPath     string
	narrationPath string
	outputPath    string
	duration      float64

	mix     filtergraph.MixOptions
	ducking bool

	channels     int
	audioBitrate string
}

// NewMusicMixBuilder creates a builder for a narration of the given
// probed duration. Ducking is on by default.
func NewMusicMixBuilder(musicPath, narrationPath, outputPath string, duration float64) *MusicMixBuilder {
	return &MusicMixBuilder{
		musicPath:     musicPath,
		narrationPath: narrationPath,
		outputPath:    outputPath,
		duration:      duration,
		mix:           filtergraph.DefaultMixOptions(),
		ducking:       true,
		channels:      2,
		audioBitrate:  "192k",
	}
}

// SetMusicVolume sets the music level before ducking (0.0 to 1.0).
func (m *MusicMixBuilder) SetMusicVolume(volume float64) *MusicMixBuilder {
	m.mix.MusicVolume = volume
	return m
}

// SetFades sets the music fade-in and fade-out lengths in seconds.
func (m *MusicMixBuilder) SetFades(fadeIn, fadeOut float64) *MusicMixBuilder {
	m.mix.FadeIn = fadeIn
	m.mix.FadeOut = fadeOut
	return m
}

// SetDucking toggles side-chain compression of the music under speech.
func (m *MusicMixBuilder) SetDucking(enabled bool) *MusicMixBuilder {
	m.ducking = enabled
	return m
}

// Validate checks both audio inputs exist and the duration is sane.
func (m *MusicMixBuilder) Validate() error {
	if m.duration <= 0 {
		return fmt.Errorf("narration duration must be positive, got %.3f", m.duration)
	}
	if m.outputPath == "" {
		return fmt.Errorf("output path cannot be empty")
	}
	if _, err := os.Stat(m.musicPath); err != nil {
		return fmt.Errorf("music track not readable: %w", err)
	}
	if _, err := os.Stat(m.narrationPath); err != nil {
		return fmt.Errorf("narration not readable: %w", err)
	}
	return nil
}

// BuildArgs constructs the ffmpeg command arguments.
func (m *MusicMixBuilder) BuildArgs() []string {
	if m.duration <= 0 || m.musicPath == "" || m.narrationPath == "" {
		return []string{}
	}

	var graph *filtergraph.Graph
	if m.ducking {
		graph = filtergraph.DuckedMix(m.duration, m.mix)
	} else {
		graph = filtergraph.SimpleMix(m.duration, m.mix)
	}

	return []string{
		"-i", m.musicPath,
		"-i", m.narrationPath,
		"-filter_complex", graph.String(),
		"-map", "[out]",
		"-ac", fmt.Sprintf("%d", m.channels),
		"-ar", fmt.Sprintf("%d", m.mix.SampleRate),
		"-b:a", m.audioBitrate,
		"-y", m.outputPath,
	}
}

// DryRun returns the command line without executing it.
func (m *MusicMixBuilder) DryRun() (string, error) {
	args := m.BuildArgs()
	if len(args) == 0 {
		return "", fmt.Errorf("cannot build mix command: %w", m.Validate())
	}
	return fmt.Sprintf("ffmpeg %s", strings.Join(args, " ")), nil
}

// GetTaskType returns the task type (musicmix).
func (m *MusicMixBuilder) GetTaskType() command.TaskType {
	return command.TaskTypeMusicMix
}

// GetInputPath returns the narration path.
func (m *MusicMixBuilder) GetInputPath() string {
	return m.narrationPath
}

// GetOutputPath returns the output file path.
func (m *MusicMixBuilder) GetOutputPath() string {
	return m.outputPath
}

// GetTotalDuration returns the narration duration.
func (m *MusicMixBuilder) GetTotalDuration() float64 {
	return m.duration
}
