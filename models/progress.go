package models

import (
	"fmt"
	"time"
)

// EncodeProgress holds the metrics the encoder reports on its diagnostic
// stream while running. It exists for operator feedback only: the
// pipeline never derives decisions from it beyond logging.
type EncodeProgress struct {
	Frame   int64   // current frame number
	FPS     float64 // frames per second being processed
	OutTime string  // current output timestamp (HH:MM:SS.MS)
	Bitrate string  // current bitrate, e.g. "3201.5kbits/s"
	Speed   float64 // encoding speed multiplier relative to realtime
	Size    string  // current output size, e.g. "10240kB"

	TotalDuration float64 // seconds; used for percent calculation
	Percent       float64 // 0-100

	State     ProgressState
	StartTime time.Time
	UpdatedAt time.Time
}

// ProgressState is the coarse state of an encode operation.
type ProgressState string

const (
	ProgressStatePending   ProgressState = "pending"
	ProgressStateRunning   ProgressState = "running"
	ProgressStateSucceeded ProgressState = "succeeded"
	ProgressStateFailed    ProgressState = "failed"
)

// ProgressCallback receives progress updates during an encode.
type ProgressCallback func(progress *EncodeProgress)

// NewEncodeProgress creates a progress tracker for an encode expected to
// produce totalDuration seconds of output.
func NewEncodeProgress(totalDuration float64) *EncodeProgress {
	now := time.Now()
	return &EncodeProgress{
		TotalDuration: totalDuration,
		State:         ProgressStatePending,
		StartTime:     now,
		UpdatedAt:     now,
	}
}

// MarkPosition updates the percent-complete from the current output
// position in seconds.
func (p *EncodeProgress) MarkPosition(currentSeconds float64) {
	if p.TotalDuration > 0 {
		p.Percent = currentSeconds / p.TotalDuration * 100
		if p.Percent > 100 {
			p.Percent = 100
		}
	}
	p.UpdatedAt = time.Now()
}

// ETA estimates the remaining wall-clock time from progress so far.
// Returns zero when there is not enough signal yet.
func (p *EncodeProgress) ETA() time.Duration {
	if p.Percent <= 0 {
		return 0
	}
	elapsed := time.Since(p.StartTime)
	total := time.Duration(float64(elapsed) / (p.Percent / 100))
	if remaining := total - elapsed; remaining > 0 {
		return remaining
	}
	return 0
}

// Summary renders a one-line human-readable progress report.
func (p *EncodeProgress) Summary() string {
	return fmt.Sprintf("%.1f%% | speed %.2fx | %s | %s", p.Percent, p.Speed, p.Bitrate, p.Size)
}
