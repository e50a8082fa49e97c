// Package framegrab builds the ffmpeg invocation that extracts a single
// still frame from a rendered video, used as the base image for the
// thumbnail when no dedicated art is available.
package framegrab

import (
	"fmt"
	"os"
	"strings"

	"kidreel/command"
	"kidreel/internal/timeutil"
)

type FrameGrabBuilder struct {
	inputPath  string
	outputPath string
	seekTime   float64
	quality    int
}

// NewFrameGrabBuilder creates a builder that grabs the frame at
// seekTime seconds into the input video.
func NewFrameGrabBuilder(inputPath, outputPath string, seekTime float64) *FrameGrabBuilder {
	return &FrameGrabBuilder{
		inputPath:  inputPath,
		outputPath: outputPath,
		seekTime:   seekTime,
		quality:    2,
	}
}

// SetQuality sets the JPEG quality scale (2 is near-lossless, 31 is worst).
func (f *FrameGrabBuilder) SetQuality(q int) *FrameGrabBuilder {
	f.quality = q
	return f
}

// Validate checks the input exists and the seek point is usable.
func (f *FrameGrabBuilder) Validate() error {
	if f.seekTime < 0 {
		return fmt.Errorf("seek time cannot be negative, got %v", f.seekTime)
	}
	if f.outputPath == "" {
		return fmt.Errorf("output path cannot be empty")
	}
	if _, err := os.Stat(f.inputPath); err != nil {
		return fmt.Errorf("input video not readable: %w", err)
	}
	return nil
}

// BuildArgs constructs the ffmpeg command arguments. Seeking before the
// input keeps extraction fast on long videos.
func (f *FrameGrabBuilder) BuildArgs() []string {
	if f.inputPath == "" || f.outputPath == "" || f.seekTime < 0 {
		return []string{}
	}
	return []string{
		"-ss", timeutil.FormatSeconds(f.seekTime),
		"-i", f.inputPath,
		"-frames:v", "1",
		"-q:v", fmt.Sprintf("%d", f.quality),
		"-y", f.outputPath,
	}
}

// DryRun returns the command line without executing it.
func (f *FrameGrabBuilder) DryRun() (string, error) {
	args := f.BuildArgs()
	if len(args) == 0 {
		return "", fmt.Errorf("cannot build frame grab command: %w", f.Validate())
	}
	return fmt.Sprintf("ffmpeg %s", strings.Join(args, " ")), nil
}

// GetTaskType returns the task type (framegrab).
func (f *FrameGrabBuilder) GetTaskType() command.TaskType {
	return command.TaskTypeFrameGrab
}

// GetInputPath returns the input video path.
func (f *FrameGrabBuilder) GetInputPath() string {
	return f.inputPath
}

// GetOutputPath returns the output image path.
func (f *FrameGrabBuilder) GetOutputPath() string {
	return f.outputPath
}

// GetTotalDuration returns zero; a single frame has no duration.
func (f *FrameGrabBuilder) GetTotalDuration() float64 {
	return 0
}
