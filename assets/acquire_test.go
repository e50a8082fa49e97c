package assets

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"kidreel/client"
	"kidreel/mediatool"
	"kidreel/models"
)

// fakeImages records prompts and writes placeholder PNG bytes, with
// per-file failure modes keyed on the output base name.
type fakeImages struct {
	mu      sync.Mutex
	prompts []string
	fail    map[string]bool // base name -> return an error
	empty   map[string]bool // base name -> write a zero-byte file
}

func (f *fakeImages) Generate(ctx context.Context, prompt, outputPath string) error {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()

	base := filepath.Base(outputPath)
	if f.fail[base] {
		return fmt.Errorf("image api rejected prompt")
	}
	if f.empty[base] {
		return os.WriteFile(outputPath, nil, 0o644)
	}
	return os.WriteFile(outputPath, []byte("png"), 0o644)
}

func (f *fakeImages) promptCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

// fakeStock serves canned search hits and writes placeholder MP4 bytes.
type fakeStock struct {
	mu           sync.Mutex
	queries      []string
	videos       []client.StockVideo
	searchErr    error
	failDownload map[string]bool // base name -> return an error
}

func (f *fakeStock) Search(ctx context.Context, query string, perPage int) ([]client.StockVideo, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()

	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.videos, nil
}

func (f *fakeStock) Download(ctx context.Context, fileURL, outputPath string) error {
	if f.failDownload[filepath.Base(outputPath)] {
		return fmt.Errorf("download interrupted")
	}
	return os.WriteFile(outputPath, []byte("mp4"), 0o644)
}

func testScript(sections int) *models.Script {
	script := &models.Script{
		Topic:    "Why is the sky blue",
		Category: "science",
		Language: "english",
	}
	for i := 0; i < sections; i++ {
		script.Sections = append(script.Sections, models.ScriptSection{
			Position:      i,
			Title:         fmt.Sprintf("Part %d", i+1),
			Narration:     "Light scatters in the atmosphere.",
			VisualHint:    fmt.Sprintf("scene hint %d", i+1),
			TargetSeconds: 20,
		})
	}
	return script
}

func TestAcquireImages_AllSections(t *testing.T) {
	dir := t.TempDir()
	images := &fakeImages{}
	acquirer := NewAcquirer(&mediatool.FakeGateway{}, zerolog.Nop()).
		SetImageService(images)

	assets, warnings, err := acquirer.AcquireImages(context.Background(), testScript(3), dir)
	if err != nil {
		t.Fatalf("AcquireImages failed: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("Expected no warnings, got %v", warnings)
	}
	if len(assets) != 3 {
		t.Fatalf("Expected 3 assets, got %d", len(assets))
	}

	for i, asset := range assets {
		if asset.Position != i {
			t.Errorf("Asset %d: expected position %d, got %d", i, i, asset.Position)
		}
		if asset.Kind != models.AssetImage {
			t.Errorf("Asset %d: expected image kind, got %s", i, asset.Kind)
		}
		wantBase := fmt.Sprintf("scene_%02d.png", i+1)
		if filepath.Base(asset.Path) != wantBase {
			t.Errorf("Asset %d: expected file %s, got %s", i, wantBase, filepath.Base(asset.Path))
		}
	}
	if err := models.ValidateAssetSequence(assets); err != nil {
		t.Errorf("Asset sequence should validate: %v", err)
	}
	if images.promptCount() != 3 {
		t.Errorf("Expected 3 generate calls, got %d", images.promptCount())
	}
}

func TestAcquireImages_DegradesPerSection(t *testing.T) {
	dir := t.TempDir()
	images := &fakeImages{fail: map[string]bool{"scene_02.png": true}}
	acquirer := NewAcquirer(&mediatool.FakeGateway{}, zerolog.Nop()).
		SetImageService(images)

	assets, warnings, err := acquirer.AcquireImages(context.Background(), testScript(3), dir)
	if err != nil {
		t.Fatalf("AcquireImages should degrade, not fail: %v", err)
	}

	if len(assets) != 2 {
		t.Fatalf("Expected 2 assets after one failure, got %d", len(assets))
	}
	// Positions compact so the remaining sequence stays 0..n-1
	for i, asset := range assets {
		if asset.Position != i {
			t.Errorf("Asset %d: expected compacted position %d, got %d", i, i, asset.Position)
		}
	}
	if filepath.Base(assets[0].Path) != "scene_01.png" || filepath.Base(assets[1].Path) != "scene_03.png" {
		t.Errorf("Surviving assets should be scenes 1 and 3, got %s and %s",
			filepath.Base(assets[0].Path), filepath.Base(assets[1].Path))
	}

	if len(warnings) != 1 {
		t.Fatalf("Expected 1 warning, got %d", len(warnings))
	}
	if !strings.Contains(warnings[0].Message, "section 1 image failed") {
		t.Errorf("Warning should name the failed section: %s", warnings[0].Message)
	}
}

func TestAcquireImages_EmptyOutputRejected(t *testing.T) {
	dir := t.TempDir()
	images := &fakeImages{empty: map[string]bool{"scene_01.png": true}}
	acquirer := NewAcquirer(&mediatool.FakeGateway{}, zerolog.Nop()).
		SetImageService(images)

	assets, warnings, err := acquirer.AcquireImages(context.Background(), testScript(2), dir)
	if err != nil {
		t.Fatalf("AcquireImages failed: %v", err)
	}
	if len(assets) != 1 {
		t.Fatalf("Expected the empty image to be dropped, got %d assets", len(assets))
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0].Message, "no image") {
		t.Errorf("Expected a no-image warning, got %v", warnings)
	}
}

func TestAcquireImages_AllFail(t *testing.T) {
	dir := t.TempDir()
	images := &fakeImages{fail: map[string]bool{
		"scene_01.png": true,
		"scene_02.png": true,
	}}
	acquirer := NewAcquirer(&mediatool.FakeGateway{}, zerolog.Nop()).
		SetImageService(images)

	_, warnings, err := acquirer.AcquireImages(context.Background(), testScript(2), dir)
	if err == nil {
		t.Fatal("Expected error when no image could be generated")
	}
	if !strings.Contains(err.Error(), "no image assets could be acquired") {
		t.Errorf("Expected total-failure error, got: %v", err)
	}
	if len(warnings) != 2 {
		t.Errorf("Expected a warning per failed section, got %d", len(warnings))
	}
}

func TestAcquireImages_NoService(t *testing.T) {
	acquirer := NewAcquirer(&mediatool.FakeGateway{}, zerolog.Nop())

	_, _, err := acquirer.AcquireImages(context.Background(), testScript(1), t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "no image service") {
		t.Errorf("Expected missing-service error, got: %v", err)
	}
}

func TestAcquireImages_Canceled(t *testing.T) {
	dir := t.TempDir()
	images := &fakeImages{}
	acquirer := NewAcquirer(&mediatool.FakeGateway{}, zerolog.Nop()).
		SetImageService(images)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := acquirer.AcquireImages(ctx, testScript(3), dir)
	if err == nil || !strings.Contains(err.Error(), "canceled") {
		t.Errorf("Expected cancellation error, got: %v", err)
	}
}

func TestAcquireClips_DownloadsAndProbes(t *testing.T) {
	dir := t.TempDir()
	stock := &fakeStock{videos: []client.StockVideo{
		{ID: 7, Duration: 12, Width: 1920, Height: 1080, URL: "https://cdn.example.com/7.mp4"},
	}}

	gateway := &mediatool.FakeGateway{ProbeResults: map[string][]byte{}}
	for i := 1; i <= 3; i++ {
		path := filepath.Join(dir, fmt.Sprintf("section_%02d.mp4", i))
		gateway.ProbeResults[path] = mediatool.FakeProbeJSON(12)
	}

	acquirer := NewAcquirer(gateway, zerolog.Nop()).SetStockService(stock)

	assets, warnings, err := acquirer.AcquireClips(context.Background(), testScript(3), dir)
	if err != nil {
		t.Fatalf("AcquireClips failed: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("Expected no warnings, got %v", warnings)
	}
	if len(assets) != 3 {
		t.Fatalf("Expected 3 clips, got %d", len(assets))
	}
	for i, asset := range assets {
		if asset.Kind != models.AssetClip {
			t.Errorf("Asset %d: expected clip kind, got %s", i, asset.Kind)
		}
		wantBase := fmt.Sprintf("section_%02d.mp4", i+1)
		if filepath.Base(asset.Path) != wantBase {
			t.Errorf("Asset %d: expected file %s, got %s", i, wantBase, filepath.Base(asset.Path))
		}
	}

	// Each section searched with its visual hint
	if len(stock.queries) != 3 {
		t.Fatalf("Expected 3 searches, got %d", len(stock.queries))
	}
	for _, q := range stock.queries {
		if !strings.HasPrefix(q, "scene hint ") {
			t.Errorf("Search should use the visual hint, got %q", q)
		}
	}
}

func TestAcquireClips_UnreadableDownloadDropped(t *testing.T) {
	dir := t.TempDir()
	stock := &fakeStock{videos: []client.StockVideo{
		{ID: 7, Duration: 12, Width: 1920, Height: 1080, URL: "https://cdn.example.com/7.mp4"},
	}}

	// No probe result for section 2, so its download looks corrupt
	gateway := &mediatool.FakeGateway{ProbeResults: map[string][]byte{
		filepath.Join(dir, "section_01.mp4"): mediatool.FakeProbeJSON(12),
		filepath.Join(dir, "section_03.mp4"): mediatool.FakeProbeJSON(12),
	}}

	acquirer := NewAcquirer(gateway, zerolog.Nop()).SetStockService(stock)

	assets, warnings, err := acquirer.AcquireClips(context.Background(), testScript(3), dir)
	if err != nil {
		t.Fatalf("AcquireClips should degrade, not fail: %v", err)
	}
	if len(assets) != 2 {
		t.Fatalf("Expected 2 clips after dropping the unreadable one, got %d", len(assets))
	}
	if len(warnings) != 1 {
		t.Fatalf("Expected 1 warning, got %d", len(warnings))
	}
	if !strings.Contains(warnings[0].Message, "unreadable") {
		t.Errorf("Warning should mention the unreadable download: %s", warnings[0].Message)
	}
}

func TestAcquireClips_NoFootageFound(t *testing.T) {
	dir := t.TempDir()
	stock := &fakeStock{} // every search returns zero hits

	acquirer := NewAcquirer(&mediatool.FakeGateway{}, zerolog.Nop()).
		SetStockService(stock)

	_, warnings, err := acquirer.AcquireClips(context.Background(), testScript(2), dir)
	if err == nil {
		t.Fatal("Expected error when no footage exists for any section")
	}
	if !strings.Contains(err.Error(), "no clip assets could be acquired") {
		t.Errorf("Expected total-failure error, got: %v", err)
	}
	for _, w := range warnings {
		if !strings.Contains(w.Message, "no usable footage") {
			t.Errorf("Warning should carry the search failure, got: %s", w.Message)
		}
	}
}

func TestAcquireClips_NoService(t *testing.T) {
	acquirer := NewAcquirer(&mediatool.FakeGateway{}, zerolog.Nop())

	_, _, err := acquirer.AcquireClips(context.Background(), testScript(1), t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "no stock service") {
		t.Errorf("Expected missing-service error, got: %v", err)
	}
}

func TestImagePrompt(t *testing.T) {
	tests := []struct {
		name    string
		section models.ScriptSection
		want    string
	}{
		{
			name:    "uses visual hint",
			section: models.ScriptSection{Title: "Part 1", VisualHint: "a rocket over clouds"},
			want:    "Scene: a rocket over clouds.",
		},
		{
			name:    "falls back to title",
			section: models.ScriptSection{Title: "Part 1"},
			want:    "Scene: Part 1.",
		},
		{
			name:    "falls back to topic",
			section: models.ScriptSection{},
			want:    "Scene: space travel.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prompt := imagePrompt("space travel", &tt.section)
			if !strings.Contains(prompt, tt.want) {
				t.Errorf("Expected prompt to contain %q, got: %s", tt.want, prompt)
			}
			if !strings.Contains(prompt, "No text, no words") {
				t.Errorf("Prompt should carry the no-text clause")
			}
		})
	}
}

func TestImagePrompt_Capped(t *testing.T) {
	section := models.ScriptSection{VisualHint: strings.Repeat("x", 2000)}
	prompt := imagePrompt("topic", &section)
	if len(prompt) != maxPromptLen {
		t.Errorf("Expected prompt capped to %d characters, got %d", maxPromptLen, len(prompt))
	}
}

func TestSearchQuery(t *testing.T) {
	withHint := models.ScriptSection{Title: "Part 1", VisualHint: "ocean waves"}
	if got := searchQuery("the sea", &withHint); got != "ocean waves" {
		t.Errorf("Expected hint as query, got %q", got)
	}
	titleOnly := models.ScriptSection{Title: "Part 1"}
	if got := searchQuery("the sea", &titleOnly); got != "Part 1" {
		t.Errorf("Expected title as query, got %q", got)
	}
	bare := models.ScriptSection{}
	if got := searchQuery("the sea", &bare); got != "the sea" {
		t.Errorf("Expected topic as query, got %q", got)
	}
}

func TestPickClip(t *testing.T) {
	landscape := client.StockVideo{ID: 1, Duration: 10, Width: 1920, Height: 1080}
	portrait := client.StockVideo{ID: 2, Duration: 10, Width: 1080, Height: 1920}
	short := client.StockVideo{ID: 3, Duration: 1, Width: 1920, Height: 1080}

	if got := pickClip([]client.StockVideo{portrait, short, landscape}); got == nil || got.ID != 1 {
		t.Errorf("Expected the landscape clip, got %+v", got)
	}
	if got := pickClip([]client.StockVideo{portrait, short}); got == nil || got.ID != 2 {
		t.Errorf("Expected fallback to the first hit, got %+v", got)
	}
	if got := pickClip(nil); got != nil {
		t.Errorf("Expected nil for no hits, got %+v", got)
	}
}
