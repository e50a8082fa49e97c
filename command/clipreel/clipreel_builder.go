package clipreel

import (
	"fmt"
	"strings"

	"kidreel/command"
	"kidreel/filtergraph"
	"kidreel/models"
)

// ClipReelBuilder constructs the ffmpeg invocation that cuts stock
// video clips to their timeline slots and concatenates them under the
// narration track.
type ClipReelBuilder struct {
	assets        []models.VisualAsset
	timeline      []models.TimelineEntry
	narrationPath string
	outputPath    string

	clip filtergraph.ClipOptions

	videoCodec   string
	crf          int
	preset       string
	profile      string
	level        string
	audioCodec   string
	audioBitrate string
}

// NewClipReelBuilder creates a builder with the 1080p30 defaults used
// for stock-footage videos.
func NewClipReelBuilder(assets []models.VisualAsset, timeline []models.TimelineEntry, narrationPath, outputPath string) *ClipReelBuilder {
	return &ClipReelBuilder{
		assets:        assets,
		timeline:      timeline,
		narrationPath: narrationPath,
		outputPath:    outputPath,
		clip:          filtergraph.DefaultClipOptions(),
		videoCodec:    "libx264",
		crf:           20,
		preset:        "slow",
		profile:       "high",
		level:         "4.0",
		audioCodec:    "aac",
		audioBitrate:  "192k",
	}
}

// SetCanvas sets the output resolution.
func (c *ClipReelBuilder) SetCanvas(width, height int) *ClipReelBuilder {
	c.clip.Width = width
	c.clip.Height = height
	return c
}

// SetFPS sets the output frame rate.
func (c *ClipReelBuilder) SetFPS(fps int) *ClipReelBuilder {
	c.clip.FPS = fps
	return c
}

// SetGrade sets the color adjustments applied to every clip.
func (c *ClipReelBuilder) SetGrade(contrast, brightness, saturation float64) *ClipReelBuilder {
	c.clip.Contrast = contrast
	c.clip.Brightness = brightness
	c.clip.Saturation = saturation
	return c
}

// SetCRF sets the constant rate factor.
func (c *ClipReelBuilder) SetCRF(crf int) *ClipReelBuilder {
	c.crf = crf
	return c
}

// SetPreset sets the encoder speed/quality preset.
func (c *ClipReelBuilder) SetPreset(preset string) *ClipReelBuilder {
	c.preset = preset
	return c
}

// Validate checks the asset sequence, timeline, and input files.
func (c *ClipReelBuilder) Validate() error {
	if c.narrationPath == "" {
		return fmt.Errorf("narration path cannot be empty")
	}
	if c.outputPath == "" {
		return fmt.Errorf("output path cannot be empty")
	}
	_, err := filtergraph.ClipReel(c.assets, c.timeline, c.clip)
	return err
}

// BuildArgs constructs the ffmpeg command arguments.
func (c *ClipReelBuilder) BuildArgs() []string {
	graph, err := filtergraph.ClipReel(c.assets, c.timeline, c.clip)
	if err != nil {
		return []string{}
	}

	args := []string{}

	// Clips loop inside the filter graph, so inputs carry no flags.
	for _, asset := range c.assets {
		args = append(args, "-i", asset.Path)
	}
	args = append(args, "-i", c.narrationPath)

	args = append(args,
		"-filter_complex", graph.String(),
		"-map", "[outv]",
		"-map", fmt.Sprintf("%d:a", len(c.assets)),
		"-c:v", c.videoCodec,
		"-preset", c.preset,
		"-crf", fmt.Sprintf("%d", c.crf),
		"-profile:v", c.profile,
		"-level", c.level,
		"-pix_fmt", "yuv420p",
		"-c:a", c.audioCodec,
		"-b:a", c.audioBitrate,
		"-shortest",
		"-y", c.outputPath,
	)

	return args
}

// DryRun returns the command line without executing it.
func (c *ClipReelBuilder) DryRun() (string, error) {
	args := c.BuildArgs()
	if len(args) == 0 {
		return "", fmt.Errorf("cannot build clip-reel command: %w", c.Validate())
	}
	return fmt.Sprintf("ffmpeg %s", strings.Join(args, " ")), nil
}

// GetTaskType returns the task type (clipreel).
func (c *ClipReelBuilder) GetTaskType() command.TaskType {
	return command.TaskTypeClipReel
}

// GetInputPath returns the narration path.
func (c *ClipReelBuilder) GetInputPath() string {
	return c.narrationPath
}

// GetOutputPath returns the output file path.
func (c *ClipReelBuilder) GetOutputPath() string {
	return c.outputPath
}

// GetTotalDuration returns the summed timeline duration.
func (c *ClipReelBuilder) GetTotalDuration() float64 {
	total := 0.0
	for _, entry := range c.timeline {
		total += entry.Duration
	}
	return total
}
