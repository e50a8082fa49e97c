package filtergraph

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"kidreel/models"
)

func makeAssets(t *testing.T, kind models.AssetKind, count int) []models.VisualAsset {
	t.Helper()
	dir := t.TempDir()

	ext := ".png"
	if kind == models.AssetClip {
		ext = ".mp4"
	}

	assets := make([]models.VisualAsset, count)
	for i := range assets {
		path := filepath.Join(dir, fmt.Sprintf("asset_%02d%s", i, ext))
		if err := os.WriteFile(path, []byte("placeholder"), 0o644); err != nil {
			t.Fatalf("Failed to create asset file: %v", err)
		}

		asset, err := models.NewVisualAsset(i, kind, path)
		if err != nil {
			t.Fatalf("Failed to create asset: %v", err)
		}
		assets[i] = *asset
	}
	return assets
}

func evenTimeline(count int, duration float64) []models.TimelineEntry {
	entries := make([]models.TimelineEntry, count)
	offset := 0.0
	for i := range entries {
		entries[i] = models.TimelineEntry{Duration: duration, Offset: offset}
		offset += duration
	}
	return entries
}

func TestSlideshow_SingleAssetHasNoTransitions(t *testing.T) {
	assets := makeAssets(t, models.AssetImage, 1)
	timeline := evenTimeline(1, 180.0)

	graph, err := Slideshow(assets, timeline, DefaultVisualOptions())
	if err != nil {
		t.Fatalf("Slideshow failed: %v", err)
	}

	if graph.CountFilter("xfade") != 0 {
		t.Error("Single asset should produce zero cross-fade filters")
	}

	rendered := graph.String()
	if !strings.Contains(rendered, "[v0]copy[outv]") {
		t.Errorf("Expected copy-through to output pad, got: %s", rendered)
	}
}

func TestSlideshow_ZoomDurationIsInFrames(t *testing.T) {
	assets := makeAssets(t, models.AssetImage, 1)
	timeline := []models.TimelineEntry{{Duration: 5.5, Offset: 0}}

	opts := DefaultVisualOptions()
	graph, err := Slideshow(assets, timeline, opts)
	if err != nil {
		t.Fatalf("Slideshow failed: %v", err)
	}

	// 5.5 seconds at 60 fps is 330 frames.
	rendered := graph.String()
	if !strings.Contains(rendered, "d=330") {
		t.Errorf("Expected zoompan duration of 330 frames, got: %s", rendered)
	}
	if strings.Contains(rendered, "d=5.5") {
		t.Error("zoompan duration must not be expressed in seconds")
	}
}

func TestSlideshow_ZoomDisabledWhenCapIsOne(t *testing.T) {
	assets := makeAssets(t, models.AssetImage, 2)
	timeline := evenTimeline(2, 10)

	opts := DefaultVisualOptions()
	opts.ZoomCap = 1.0

	graph, err := Slideshow(assets, timeline, opts)
	if err != nil {
		t.Fatalf("Slideshow failed: %v", err)
	}

	if graph.CountFilter("zoompan") != 0 {
		t.Error("Zoom cap of 1.0 should disable zoompan")
	}
}

func TestSlideshow_CrossFadeOffsetsAreCumulative(t *testing.T) {
	assets := makeAssets(t, models.AssetImage, 3)
	timeline := []models.TimelineEntry{
		{Duration: 12.0, Offset: 0},
		{Duration: 8.0, Offset: 12.0},
		{Duration: 10.0, Offset: 20.0},
	}

	opts := DefaultVisualOptions()
	graph, err := Slideshow(assets, timeline, opts)
	if err != nil {
		t.Fatalf("Slideshow failed: %v", err)
	}

	rendered := graph.String()

	// Each fade ends where the incoming image's slot begins.
	if !strings.Contains(rendered, "offset=11.2") {
		t.Errorf("Expected first junction at 12.0-0.8=11.2, got: %s", rendered)
	}
	if !strings.Contains(rendered, "offset=19.2") {
		t.Errorf("Expected second junction at 20.0-0.8=19.2, got: %s", rendered)
	}
	if graph.CountFilter("xfade") != 2 {
		t.Errorf("Expected 2 junctions for 3 assets, got %d", graph.CountFilter("xfade"))
	}
}

func TestSlideshow_FinalJunctionLandsOnOutputPad(t *testing.T) {
	assets := makeAssets(t, models.AssetImage, 4)
	timeline := evenTimeline(4, 10)

	graph, err := Slideshow(assets, timeline, DefaultVisualOptions())
	if err != nil {
		t.Fatalf("Slideshow failed: %v", err)
	}

	chains := graph.Chains()
	last := chains[len(chains)-1]
	if len(last.Outputs) != 1 || last.Outputs[0] != "outv" {
		t.Errorf("Expected final chain to output [outv], got %v", last.Outputs)
	}

	// Intermediate junctions chain through vt pads.
	rendered := graph.String()
	if !strings.Contains(rendered, "[vt1]") {
		t.Errorf("Expected intermediate pad vt1, got: %s", rendered)
	}
}

func TestSlideshow_PerAssetProcessing(t *testing.T) {
	assets := makeAssets(t, models.AssetImage, 2)
	timeline := evenTimeline(2, 10)

	graph, err := Slideshow(assets, timeline, DefaultVisualOptions())
	if err != nil {
		t.Fatalf("Slideshow failed: %v", err)
	}

	rendered := graph.String()

	for _, want := range []string{
		"scale=w=1920:h=1080:force_original_aspect_ratio=decrease",
		"pad=1920:1080:(ow-iw)/2:(oh-ih)/2",
		"setsar=1",
		"fps=60",
		"format=yuv420p",
		"zoompan=z='min(zoom+0.0002,1.15)'",
	} {
		if !strings.Contains(rendered, want) {
			t.Errorf("Expected %q in graph, got: %s", want, rendered)
		}
	}
}

func TestSlideshow_RejectsMissingAssetFile(t *testing.T) {
	assets := makeAssets(t, models.AssetImage, 2)
	assets[1].Path = "/nonexistent/missing.png"
	timeline := evenTimeline(2, 10)

	_, err := Slideshow(assets, timeline, DefaultVisualOptions())
	if err == nil {
		t.Fatal("Expected error for missing asset file")
	}
	if !strings.Contains(err.Error(), "not readable") {
		t.Errorf("Expected 'not readable' error, got: %v", err)
	}
}

func TestSlideshow_RejectsTimelineMismatch(t *testing.T) {
	assets := makeAssets(t, models.AssetImage, 3)
	timeline := evenTimeline(2, 10)

	if _, err := Slideshow(assets, timeline, DefaultVisualOptions()); err == nil {
		t.Error("Expected error for timeline/asset count mismatch")
	}
}

func TestSlideshow_RejectsNonPositiveDurations(t *testing.T) {
	assets := makeAssets(t, models.AssetImage, 1)
	timeline := []models.TimelineEntry{{Duration: -5, Offset: 0}}

	if _, err := Slideshow(assets, timeline, DefaultVisualOptions()); err == nil {
		t.Error("Expected error for negative duration")
	}
}

func TestSlideshow_RejectsClipAssets(t *testing.T) {
	assets := makeAssets(t, models.AssetClip, 2)
	timeline := evenTimeline(2, 10)

	if _, err := Slideshow(assets, timeline, DefaultVisualOptions()); err == nil {
		t.Error("Expected error for clip assets in slideshow builder")
	}
}

func TestClipReel_BuildsTrimAndConcat(t *testing.T) {
	assets := makeAssets(t, models.AssetClip, 3)
	timeline := []models.TimelineEntry{
		{Duration: 20.5, Offset: 0},
		{Duration: 20.5, Offset: 20.5},
		{Duration: 20.5, Offset: 41.0},
	}

	graph, err := ClipReel(assets, timeline, DefaultClipOptions())
	if err != nil {
		t.Fatalf("ClipReel failed: %v", err)
	}

	rendered := graph.String()

	for _, want := range []string{
		"loop=loop=-1:size=32767:start=0",
		"trim=duration=20.5",
		"setpts=PTS-STARTPTS",
		"scale=1920:1080:force_original_aspect_ratio=increase",
		"crop=1920:1080",
		"fps=30",
		"eq=contrast=1.05:brightness=0.02:saturation=1.1",
		"concat=n=3:v=1:a=0[outv]",
	} {
		if !strings.Contains(rendered, want) {
			t.Errorf("Expected %q in graph, got: %s", want, rendered)
		}
	}
}

func TestClipReel_NoCrossFades(t *testing.T) {
	assets := makeAssets(t, models.AssetClip, 2)
	timeline := evenTimeline(2, 15)

	graph, err := ClipReel(assets, timeline, DefaultClipOptions())
	if err != nil {
		t.Fatalf("ClipReel failed: %v", err)
	}

	if graph.CountFilter("xfade") != 0 {
		t.Error("Clip reel uses hard cuts, not cross-fades")
	}
}

func TestClipReel_RejectsImageAssets(t *testing.T) {
	assets := makeAssets(t, models.AssetImage, 2)
	timeline := evenTimeline(2, 10)

	if _, err := ClipReel(assets, timeline, DefaultClipOptions()); err == nil {
		t.Error("Expected error for image assets in clip-reel builder")
	}
}

func TestDuckedMix_GraphShape(t *testing.T) {
	graph := DuckedMix(184.5, DefaultMixOptions())

	rendered := graph.String()

	for _, want := range []string{
		"[0:a]aloop=loop=-1:size=8856000",
		"volume=0.15",
		"afade=t=in:st=0:d=2",
		"afade=t=out:st=181.5:d=3",
		"[music][1:a]sidechaincompress=threshold=0.02:ratio=4:attack=50:release=200[out]",
	} {
		if !strings.Contains(rendered, want) {
			t.Errorf("Expected %q in graph, got: %s", want, rendered)
		}
	}
}

func TestSimpleMix_GraphShape(t *testing.T) {
	graph := SimpleMix(120, DefaultMixOptions())

	rendered := graph.String()

	if !strings.Contains(rendered, "amix=inputs=2:duration=first:dropout_transition=2") {
		t.Errorf("Expected amix blend, got: %s", rendered)
	}
	if strings.Contains(rendered, "sidechaincompress") {
		t.Error("Simple mix must not duck")
	}
	if !strings.Contains(rendered, "afade=t=out:st=117:d=3") {
		t.Errorf("Expected fade-out ending at total duration, got: %s", rendered)
	}
}
