package mediatool

import (
	"context"
	"fmt"

	"kidreel/ffprobe"
	"kidreel/models"
)

// FallbackDuration is assumed when a media file cannot be probed. Three
// minutes matches the typical narration length this pipeline produces,
// so a broken probe degrades timing instead of aborting the run.
const FallbackDuration = 180.0

// Duration probes path and returns its duration in seconds.
func Duration(ctx context.Context, gw Gateway, path string) (float64, error) {
	output, err := gw.Probe(ctx, path)
	if err != nil {
		return 0, fmt.Errorf("probe of %s failed: %w", path, err)
	}

	result, err := ffprobe.Parse(output)
	if err != nil {
		return 0, fmt.Errorf("probe of %s returned unreadable output: %w", path, err)
	}

	duration, err := result.Duration()
	if err != nil {
		return 0, fmt.Errorf("probe of %s: %w", path, err)
	}

	return duration, nil
}

// DurationOrDefault probes path, falling back to FallbackDuration when
// the probe fails. The returned warning is non-nil on fallback.
func DurationOrDefault(ctx context.Context, gw Gateway, path string) (float64, *models.Warning) {
	duration, err := Duration(ctx, gw, path)
	if err != nil {
		w := models.NewWarning("probe", "assuming %.0fs for %s: %v", FallbackDuration, path, err)
		return FallbackDuration, &w
	}
	return duration, nil
}
