package filtergraph

import (
	"fmt"
	"math"
	"os"

	"kidreel/models"
)

// VisualOptions configure the composed video canvas.
type VisualOptions struct {
	Width        int
	Height       int
	FPS          int
	FadeDuration float64 // cross-fade length in seconds
	ZoomStep     float64 // per-frame zoom increment
	ZoomCap      float64 // maximum zoom factor; <= 1 disables zoom
}

// DefaultVisualOptions returns the 1080p60 canvas used for slideshow
// videos.
func DefaultVisualOptions() VisualOptions {
	return VisualOptions{
		Width:        1920,
		Height:       1080,
		FPS:          60,
		FadeDuration: 0.8,
		ZoomStep:     0.0002,
		ZoomCap:      1.15,
	}
}

// ClipOptions configure the clip-reel canvas and its color grade.
type ClipOptions struct {
	Width      int
	Height     int
	FPS        int
	Contrast   float64
	Brightness float64
	Saturation float64
}

// DefaultClipOptions returns the 1080p30 canvas used for stock-clip
// videos, with a mild grade that keeps footage lively for kids.
func DefaultClipOptions() ClipOptions {
	return ClipOptions{
		Width:      1920,
		Height:     1080,
		FPS:        30,
		Contrast:   1.05,
		Brightness: 0.02,
		Saturation: 1.1,
	}
}

// Slideshow builds the video half of the filter graph for a sequence of
// still images. Each image is scaled onto the canvas, pixel-aspect
// normalized, resampled, given a slow zoom ramp sized to its assigned
// display duration, and cross-faded into the next image at the offset
// where that image's timeline slot begins.
func Slideshow(assets []models.VisualAsset, timeline []models.TimelineEntry, opts VisualOptions) (*Graph, error) {
	if err := validateVisualInput(assets, timeline, models.AssetImage); err != nil {
		return nil, err
	}

	graph := &Graph{}

	for i, entry := range timeline {
		chain := Chain{
			Inputs: []string{fmt.Sprintf("%d:v", i)},
			Filters: []Filter{
				Filterf("scale", "w=%d:h=%d:force_original_aspect_ratio=decrease", opts.Width, opts.Height),
				Filterf("pad", "%d:%d:(ow-iw)/2:(oh-ih)/2", opts.Width, opts.Height),
				{Name: "setsar", Args: "1"},
				Filterf("fps", "%d", opts.FPS),
				{Name: "format", Args: "yuv420p"},
			},
			Outputs: []string{fmt.Sprintf("v%d", i)},
		}

		if opts.ZoomCap > 1.0 {
			// zoompan's d parameter counts frames, not seconds.
			frames := int(math.Round(entry.Duration * float64(opts.FPS)))
			chain.Filters = append(chain.Filters, Filterf(
				"zoompan",
				"z='min(zoom+%s,%s)':d=%d:s=%dx%d",
				ff(opts.ZoomStep), ff(opts.ZoomCap), frames, opts.Width, opts.Height,
			))
		}

		graph.Add(chain)
	}

	if len(assets) == 1 {
		graph.Add(Chain{
			Inputs:  []string{"v0"},
			Filters: []Filter{{Name: "copy"}},
			Outputs: []string{"outv"},
		})
		return graph, nil
	}

	current := "v0"
	for i := 1; i < len(assets); i++ {
		// The fade completes exactly where image i's slot starts.
		offset := timeline[i].Offset - opts.FadeDuration

		output := fmt.Sprintf("vt%d", i)
		if i == len(assets)-1 {
			output = "outv"
		}

		graph.Add(Chain{
			Inputs: []string{current, fmt.Sprintf("v%d", i)},
			Filters: []Filter{
				Filterf("xfade", "transition=%s:duration=%s:offset=%s",
					TransitionFor(i, len(assets)), ff(opts.FadeDuration), ff(offset)),
			},
			Outputs: []string{output},
		})
		current = output
	}

	return graph, nil
}

// ClipReel builds the video half of the filter graph for a sequence of
// stock clips. Each clip is looped so short footage can fill its slot,
// trimmed to its assigned duration, rebased to timestamp zero, scaled
// to cover the canvas, center-cropped, graded, and finally the clips
// are concatenated in order.
func ClipReel(assets []models.VisualAsset, timeline []models.TimelineEntry, opts ClipOptions) (*Graph, error) {
	if err := validateVisualInput(assets, timeline, models.AssetClip); err != nil {
		return nil, err
	}

	graph := &Graph{}

	labels := make([]string, len(assets))
	for i, entry := range timeline {
		labels[i] = fmt.Sprintf("v%d", i)
		graph.Add(Chain{
			Inputs: []string{fmt.Sprintf("%d:v", i)},
			Filters: []Filter{
				{Name: "loop", Args: "loop=-1:size=32767:start=0"},
				Filterf("trim", "duration=%s", ff(entry.Duration)),
				{Name: "setpts", Args: "PTS-STARTPTS"},
				Filterf("scale", "%d:%d:force_original_aspect_ratio=increase", opts.Width, opts.Height),
				Filterf("crop", "%d:%d", opts.Width, opts.Height),
				{Name: "setsar", Args: "1"},
				Filterf("fps", "%d", opts.FPS),
				Filterf("eq", "contrast=%s:brightness=%s:saturation=%s",
					ff(opts.Contrast), ff(opts.Brightness), ff(opts.Saturation)),
			},
			Outputs: []string{labels[i]},
		})
	}

	graph.Add(Chain{
		Inputs:  labels,
		Filters: []Filter{Filterf("concat", "n=%d:v=1:a=0", len(assets))},
		Outputs: []string{"outv"},
	})

	return graph, nil
}

// validateVisualInput enforces the builder's contract: a well-formed
// asset sequence of the expected kind, a matching timeline, positive
// total duration, and every asset file present on disk.
func validateVisualInput(assets []models.VisualAsset, timeline []models.TimelineEntry, kind models.AssetKind) error {
	if err := models.ValidateAssetSequence(assets); err != nil {
		return fmt.Errorf("invalid asset sequence: %w", err)
	}
	if assets[0].Kind != kind {
		return fmt.Errorf("expected %s assets, got %s", kind, assets[0].Kind)
	}
	if len(timeline) != len(assets) {
		return fmt.Errorf("timeline has %d entries for %d assets", len(timeline), len(assets))
	}

	total := 0.0
	for i, entry := range timeline {
		if err := entry.Validate(); err != nil {
			return fmt.Errorf("timeline entry %d: %w", i, err)
		}
		total += entry.Duration
	}
	if total <= 0 {
		return fmt.Errorf("total assigned duration must be positive, got %s", ff(total))
	}

	for _, asset := range assets {
		if _, err := os.Stat(asset.Path); err != nil {
			return fmt.Errorf("asset %d not readable: %w", asset.Position, err)
		}
	}

	return nil
}
