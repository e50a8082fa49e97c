package slideshow

import (
	"fmt"
	"strings"

	"kidreel/command"
	"kidreel/filtergraph"
	"kidreel/models"
)

// SlideshowBuilder constructs the ffmpeg invocation that composes still
// images and a narration track into the final video. Each image is held
// for its timeline slot, cross-faded into the next, and the narration
// is mapped through unchanged.
type SlideshowBuilder struct {
	assets        []models.VisualAsset
	timeline      []models.TimelineEntry
	narrationPath string
	outputPath    string

	visual filtergraph.VisualOptions

	videoCodec   string
	crf          int
	preset       string
	tune         string
	profile      string
	level        string
	bFrames      int
	audioCodec   string
	audioBitrate string
}

// NewSlideshowBuilder creates a builder with the 1080p60 defaults used
// for generated learning videos.
func NewSlideshowBuilder(assets []models.VisualAsset, timeline []models.TimelineEntry, narrationPath, outputPath string) *SlideshowBuilder {
	return &SlideshowBuilder{
		assets:        assets,
		timeline:      timeline,
		narrationPath: narrationPath,
		outputPath:    outputPath,
		visual:        filtergraph.DefaultVisualOptions(),
		videoCodec:    "libx264",
		crf:           21,
		preset:        "slow",
		tune:          "animation",
		profile:       "high",
		level:         "4.2",
		bFrames:       2,
		audioCodec:    "aac",
		audioBitrate:  "192k",
	}
}

// SetCanvas sets the output resolution.
func (s *SlideshowBuilder) SetCanvas(width, height int) SlideshowCommand {
	s.visual.Width = width
	s.visual.Height = height
	return s
}

// SetFPS sets the output frame rate.
func (s *SlideshowBuilder) SetFPS(fps int) SlideshowCommand {
	s.visual.FPS = fps
	return s
}

// SetFadeDuration sets the cross-fade length between images.
func (s *SlideshowBuilder) SetFadeDuration(seconds float64) SlideshowCommand {
	s.visual.FadeDuration = seconds
	return s
}

// SetZoom sets the per-frame zoom increment and its upper limit. A
// limit of 1.0 or below disables the zoom ramp.
func (s *SlideshowBuilder) SetZoom(step, limit float64) SlideshowCommand {
	s.visual.ZoomStep = step
	s.visual.ZoomCap = limit
	return s
}

// SetCRF sets the constant rate factor (lower is higher quality).
func (s *SlideshowBuilder) SetCRF(crf int) SlideshowCommand {
	s.crf = crf
	return s
}

// SetPreset sets the encoder speed/quality preset.
func (s *SlideshowBuilder) SetPreset(preset string) SlideshowCommand {
	s.preset = preset
	return s
}

// SetTune sets the encoder content tuning (e.g. "animation").
func (s *SlideshowBuilder) SetTune(tune string) SlideshowCommand {
	s.tune = tune
	return s
}

// SetAudioBitrate sets the narration bitrate (e.g. "192k").
func (s *SlideshowBuilder) SetAudioBitrate(bitrate string) SlideshowCommand {
	s.audioBitrate = bitrate
	return s
}

// Validate checks the asset sequence, timeline, and input files.
func (s *SlideshowBuilder) Validate() error {
	if s.narrationPath == "" {
		return fmt.Errorf("narration path cannot be empty")
	}
	if s.outputPath == "" {
		return fmt.Errorf("output path cannot be empty")
	}
	_, err := filtergraph.Slideshow(s.assets, s.timeline, s.visual)
	return err
}

// BuildArgs constructs the ffmpeg command arguments.
func (s *SlideshowBuilder) BuildArgs() []string {
	graph, err := filtergraph.Slideshow(s.assets, s.timeline, s.visual)
	if err != nil {
		return []string{}
	}

	args := []string{}

	// Each image is a looped input held for its assigned duration.
	for i, asset := range s.assets {
		args = append(args,
			"-loop", "1",
			"-t", fmt.Sprintf("%.3f", s.timeline[i].Duration),
			"-i", asset.Path,
		)
	}
	args = append(args, "-i", s.narrationPath)

	args = append(args,
		"-filter_complex", graph.String(),
		"-map", "[outv]",
		"-map", fmt.Sprintf("%d:a", len(s.assets)),
		"-c:v", s.videoCodec,
		"-preset", s.preset,
		"-tune", s.tune,
		"-crf", fmt.Sprintf("%d", s.crf),
		"-profile:v", s.profile,
		"-level", s.level,
		"-bf", fmt.Sprintf("%d", s.bFrames),
		"-g", fmt.Sprintf("%d", s.visual.FPS*2),
		"-c:a", s.audioCodec,
		"-b:a", s.audioBitrate,
		"-r", fmt.Sprintf("%d", s.visual.FPS),
		"-pix_fmt", "yuv420p",
		"-movflags", "+faststart",
		"-shortest",
		"-y", s.outputPath,
	)

	return args
}

// DryRun returns the command line without executing it.
func (s *SlideshowBuilder) DryRun() (string, error) {
	args := s.BuildArgs()
	if len(args) == 0 {
		return "", fmt.Errorf("cannot build slideshow command: %w", s.Validate())
	}
	return fmt.Sprintf("ffmpeg %s", strings.Join(args, " ")), nil
}

// GetTaskType returns the task type (slideshow).
func (s *SlideshowBuilder) GetTaskType() command.TaskType {
	return command.TaskTypeSlideshow
}

// GetInputPath returns the narration path, the input that drives the
// output's length.
func (s *SlideshowBuilder) GetInputPath() string {
	return s.narrationPath
}

// GetOutputPath returns the output file path.
func (s *SlideshowBuilder) GetOutputPath() string {
	return s.outputPath
}

// GetTotalDuration returns the summed timeline duration.
func (s *SlideshowBuilder) GetTotalDuration() float64 {
	total := 0.0
	for _, entry := range s.timeline {
		total += entry.Duration
	}
	return total
}
