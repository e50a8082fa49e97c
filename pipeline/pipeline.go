// Package pipeline wires every stage of a video run into one
// synchronous flow: topic, script, visual assets, narration, music
// mix, timeline, encode, thumbnail, metadata, upload, bookkeeping.
//
// Stages that enhance the video (music, thumbnail, LLM metadata)
// degrade to fallbacks with warnings; stages that produce it (script,
// narration, assets, encode) fail the run. The upload failing after a
// successful encode fails the run too, but the video stays on disk.
package pipeline

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"kidreel/command"
	"kidreel/command/clipreel"
	"kidreel/command/framegrab"
	"kidreel/command/slideshow"
	"kidreel/command/thumbnail"
	"kidreel/config"
	"kidreel/mediatool"
	"kidreel/mixer"
	"kidreel/models"
	"kidreel/timeline"
	"kidreel/topics"
	"kidreel/voiceover"
	"kidreel/workspace"
)

const (
	// minNarrationSeconds rejects narration too short to carry a video.
	minNarrationSeconds = 10.0

	// testTargetSeconds replaces the configured video length in test mode.
	testTargetSeconds = 60

	// thumbnailSeekSeconds is where the thumbnail frame is grabbed
	// from clip-based videos.
	thumbnailSeekSeconds = 1.0
)

// TopicService picks what the video teaches.
type TopicService interface {
	Select() (*topics.Selection, error)
}

// ScriptService writes the narration script.
type ScriptService interface {
	Generate(ctx context.Context, topic, category string, targetSeconds int) (*models.Script, error)
}

// VoiceService synthesizes narration audio.
type VoiceService interface {
	Generate(ctx context.Context, text, outputPath string) (*voiceover.Result, error)
}

// AssetService produces the ordered visual assets.
type AssetService interface {
	AcquireImages(ctx context.Context, script *models.Script, dir string) ([]models.VisualAsset, []models.Warning, error)
	AcquireClips(ctx context.Context, script *models.Script, dir string) ([]models.VisualAsset, []models.Warning, error)
}

// MixService lays background music under the narration.
type MixService interface {
	Mix(ctx context.Context, narrationPath, outputPath, category string) (*mixer.Outcome, error)
}

// Renderer executes built encoder commands with retry and verification.
type Renderer interface {
	Render(ctx context.Context, cmd command.Command) (*models.EncodeResult, error)
}

// MetadataService derives upload metadata. Never fails.
type MetadataService interface {
	Generate(ctx context.Context, script *models.Script) (*models.VideoMetadata, *models.Warning)
}

// UploadService publishes the finished video.
type UploadService interface {
	Upload(ctx context.Context, videoPath, thumbnailPath string, meta *models.VideoMetadata) (string, error)
}

// SidecarWriter persists metadata next to the video.
type SidecarWriter func(path string, meta *models.VideoMetadata) error

// Outcome is the result of one pipeline run.
type Outcome struct {
	RunID         string
	Topic         string
	Category      string
	VideoPath     string
	ThumbnailPath string
	UploadID      string
	Duration      float64
	Sections      int
	Assets        int
	Warnings      []models.Warning
	Elapsed       time.Duration
}

// Pipeline produces one video end to end.
type Pipeline struct {
	cfg     *config.Config
	gateway mediatool.Gateway
	logger  zerolog.Logger

	topicsSvc TopicService
	scripts   ScriptService
	voice     VoiceService
	assets    AssetService
	mix       MixService
	renderer  Renderer
	metadata  MetadataService
	upload    UploadService
	sidecar   SidecarWriter

	rng *rand.Rand
}

// New creates a Pipeline. Services are attached with the setters;
// unset optional services (mix, metadata LLM, upload) degrade per the
// propagation policy, unset required ones fail the run unless test
// mode can substitute an offline placeholder.
func New(cfg *config.Config, gateway mediatool.Gateway, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		cfg:     cfg,
		gateway: gateway,
		logger:  logger.With().Str("component", "pipeline").Logger(),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetTopicService attaches the topic selector.
func (p *Pipeline) SetTopicService(svc TopicService) *Pipeline { p.topicsSvc = svc; return p }

// SetScriptService attaches the script generator.
func (p *Pipeline) SetScriptService(svc ScriptService) *Pipeline { p.scripts = svc; return p }

// SetVoiceService attaches the narration synthesizer.
func (p *Pipeline) SetVoiceService(svc VoiceService) *Pipeline { p.voice = svc; return p }

// SetAssetService attaches the visual asset acquirer.
func (p *Pipeline) SetAssetService(svc AssetService) *Pipeline { p.assets = svc; return p }

// SetMixService attaches the background music mixer.
func (p *Pipeline) SetMixService(svc MixService) *Pipeline { p.mix = svc; return p }

// SetRenderer attaches the encode orchestrator.
func (p *Pipeline) SetRenderer(r Renderer) *Pipeline { p.renderer = r; return p }

// SetMetadataService attaches the metadata generator.
func (p *Pipeline) SetMetadataService(svc MetadataService) *Pipeline { p.metadata = svc; return p }

// SetUploadService attaches the uploader.
func (p *Pipeline) SetUploadService(svc UploadService) *Pipeline { p.upload = svc; return p }

// SetSidecarWriter attaches the metadata sidecar writer.
func (p *Pipeline) SetSidecarWriter(w SidecarWriter) *Pipeline { p.sidecar = w; return p }

// SetRand replaces the random source feeding timeline jitter, pinning
// allocation for tests.
func (p *Pipeline) SetRand(rng *rand.Rand) *Pipeline {
	if rng != nil {
		p.rng = rng
	}
	return p
}

// Run produces one video. The returned Outcome is non-nil whenever a
// video file was produced, even if a later stage (upload) failed.
func (p *Pipeline) Run(ctx context.Context) (*Outcome, error) {
	start := time.Now()
	outcome := &Outcome{}

	run, err := workspace.NewRun(p.cfg.OutputDir, p.logger)
	if err != nil {
		return nil, err
	}
	outcome.RunID = run.ID
	keepWorkdir := p.cfg.TestMode
	defer func() {
		if !keepWorkdir {
			if err := run.Remove(); err != nil {
				p.logger.Warn().Err(err).Msg("could not remove run workspace")
			}
		}
	}()

	// Phase 1: topic
	p.banner(1, "Topic Selection")
	selection, err := p.selectTopic()
	if err != nil {
		return nil, err
	}
	outcome.Topic = selection.Topic
	outcome.Category = selection.CategoryKey
	fmt.Printf("  Topic:    %s\n  Category: %s\n\n", selection.Topic, selection.CategoryKey)

	// Phase 2: script
	p.banner(2, "Script Generation")
	script, err := p.generateScript(ctx, selection)
	if err != nil {
		return nil, fmt.Errorf("script generation failed: %w", err)
	}
	outcome.Sections = len(script.Sections)
	fmt.Printf("  Sections: %d\n  Words:    %d (~%.0fs at narration pace)\n\n",
		len(script.Sections), script.WordCount(), script.EstimatedSeconds(120))

	// Phase 3: visual assets
	p.banner(3, "Visual Assets")
	assets, warnings, err := p.acquireAssets(ctx, script, run)
	outcome.Warnings = append(outcome.Warnings, warnings...)
	if err != nil {
		return nil, fmt.Errorf("asset acquisition failed: %w", err)
	}
	outcome.Assets = len(assets)
	fmt.Printf("  Assets:   %d\n\n", len(assets))

	// Phase 4: narration
	p.banner(4, "Voice Synthesis")
	narrationPath, warning, err := p.synthesizeNarration(ctx, script, run)
	if warning != nil {
		outcome.Warnings = append(outcome.Warnings, *warning)
	}
	if err != nil {
		return nil, fmt.Errorf("voice synthesis failed: %w", err)
	}

	narrationSeconds, probeWarning := mediatool.DurationOrDefault(ctx, p.gateway, narrationPath)
	if probeWarning != nil {
		outcome.Warnings = append(outcome.Warnings, *probeWarning)
	}
	if narrationSeconds < minNarrationSeconds {
		return nil, fmt.Errorf("narration is %.1fs, need at least %.0fs for a video",
			narrationSeconds, minNarrationSeconds)
	}
	outcome.Duration = narrationSeconds
	fmt.Printf("  Narration: %.1fs\n\n", narrationSeconds)

	// Phase 5: background music
	p.banner(5, "Background Music")
	audioPath := narrationPath
	if p.cfg.NoMusic || p.mix == nil {
		fmt.Println("  Skipped")
	} else {
		mixOutcome, err := p.mix.Mix(ctx, narrationPath, run.Path("mixed_audio.mp3"), selection.CategoryKey)
		if err != nil {
			return nil, fmt.Errorf("audio stage failed: %w", err)
		}
		audioPath = mixOutcome.Path
		if mixOutcome.Warning != nil {
			outcome.Warnings = append(outcome.Warnings, *mixOutcome.Warning)
			fmt.Println("  Degraded: narration used unmixed")
		} else {
			fmt.Println("  Mixed with background track")
		}
	}
	fmt.Println()

	// Phase 6: timeline + encode
	p.banner(6, "Video Assembly")
	videoPath := run.VideoPath(selection.Topic)
	plan, err := timeline.Allocate(narrationSeconds, script.SectionDurations(), len(assets), p.rng)
	if err != nil {
		return nil, fmt.Errorf("timeline allocation failed: %w", err)
	}
	fmt.Printf("  Timeline: %d entries over %.1fs (%s)\n", len(plan.Entries), plan.TotalDuration(), plan.Branch)

	encodeCmd := p.buildEncodeCommand(assets, plan.Entries, audioPath, videoPath)
	result, err := p.renderer.Render(ctx, encodeCmd)
	if err != nil {
		return nil, fmt.Errorf("video encode failed: %w", err)
	}
	outcome.VideoPath = result.OutputPath
	fmt.Printf("  Encoded:  %s (%d attempt(s), %s)\n\n",
		result.OutputPath, result.Attempts, result.Elapsed.Round(time.Second))

	// Phase 7: thumbnail
	p.banner(7, "Thumbnail")
	thumbPath, warning := p.buildThumbnail(ctx, assets, videoPath, selection.Topic, run)
	if warning != nil {
		outcome.Warnings = append(outcome.Warnings, *warning)
		fmt.Println("  Skipped: " + warning.Message)
	} else {
		fmt.Printf("  Saved:    %s\n", thumbPath)
	}
	outcome.ThumbnailPath = thumbPath
	fmt.Println()

	// Phase 8: metadata
	p.banner(8, "Metadata")
	meta := p.generateMetadata(ctx, script, outcome)
	fmt.Printf("  Title:    %s\n\n", meta.Title)

	// Phase 9: upload
	p.banner(9, "Upload")
	if err := p.maybeUpload(ctx, videoPath, thumbPath, meta, outcome); err != nil {
		outcome.Elapsed = time.Since(start)
		p.record(outcome)
		return outcome, fmt.Errorf("upload failed (video kept at %s): %w", videoPath, err)
	}
	fmt.Println()

	outcome.Elapsed = time.Since(start)
	p.record(outcome)
	p.cleanup()
	return outcome, nil
}

func (p *Pipeline) banner(phase int, name string) {
	fmt.Printf("📍 Phase %d: %s\n", phase, name)
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
}

func (p *Pipeline) selectTopic() (*topics.Selection, error) {
	if p.cfg.Topic != "" {
		p.logger.Info().Str("topic", p.cfg.Topic).Msg("using manual topic override")
		return &topics.Selection{
			Topic:       p.cfg.Topic,
			Category:    p.cfg.Category,
			CategoryKey: "default",
			Language:    p.cfg.Language,
			Timestamp:   time.Now(),
		}, nil
	}
	if p.topicsSvc == nil {
		return nil, fmt.Errorf("no topic service configured and no -topic override given")
	}
	return p.topicsSvc.Select()
}

func (p *Pipeline) targetSeconds() int {
	if p.cfg.TestMode {
		return testTargetSeconds
	}
	return p.cfg.Video.TargetSeconds
}

func (p *Pipeline) generateScript(ctx context.Context, selection *topics.Selection) (*models.Script, error) {
	if p.scripts != nil {
		return p.scripts.Generate(ctx, selection.Topic, selection.CategoryKey, p.targetSeconds())
	}
	if !p.cfg.TestMode {
		return nil, fmt.Errorf("no script service configured")
	}
	p.logger.Warn().Msg("test mode without LLM, using built-in script")
	return placeholderScript(selection, p.targetSeconds()), nil
}

func (p *Pipeline) acquireAssets(ctx context.Context, script *models.Script, run *workspace.Run) ([]models.VisualAsset, []models.Warning, error) {
	if p.assets != nil {
		if p.cfg.UseVideos {
			return p.assets.AcquireClips(ctx, script, run.AssetsDir())
		}
		return p.assets.AcquireImages(ctx, script, run.AssetsDir())
	}
	if !p.cfg.TestMode {
		return nil, nil, fmt.Errorf("no asset service configured")
	}
	p.logger.Warn().Msg("test mode without image service, using placeholder slides")
	assets, err := p.placeholderImages(ctx, script, run.AssetsDir())
	warning := models.NewWarning("assets", "placeholder slides used, no image service in test mode")
	return assets, []models.Warning{warning}, err
}

func (p *Pipeline) synthesizeNarration(ctx context.Context, script *models.Script, run *workspace.Run) (string, *models.Warning, error) {
	outputPath := run.Path("narration.mp3")
	if p.voice != nil {
		result, err := p.voice.Generate(ctx, script.FullNarration(), outputPath)
		if err != nil {
			return "", nil, err
		}
		return result.Path, result.Warning, nil
	}
	if !p.cfg.TestMode {
		return "", nil, fmt.Errorf("no voice service configured")
	}
	p.logger.Warn().Msg("test mode without TTS, using silent narration")
	if err := p.placeholderNarration(ctx, outputPath); err != nil {
		return "", nil, err
	}
	warning := models.NewWarning("voiceover", "silent narration used, no TTS in test mode")
	return outputPath, &warning, nil
}

// buildEncodeCommand picks the image slideshow or the clip reel based
// on the asset kind.
func (p *Pipeline) buildEncodeCommand(assets []models.VisualAsset, entries []models.TimelineEntry, audioPath, videoPath string) command.Command {
	vc := p.cfg.Video
	if len(assets) > 0 && assets[0].Kind == models.AssetClip {
		return clipreel.NewClipReelBuilder(assets, entries, audioPath, videoPath).
			SetCanvas(vc.Width, vc.Height).
			SetCRF(vc.CRF).
			SetPreset(vc.Preset)
	}
	return slideshow.NewSlideshowBuilder(assets, entries, audioPath, videoPath).
		SetCanvas(vc.Width, vc.Height).
		SetFPS(vc.FPS).
		SetFadeDuration(vc.FadeSeconds).
		SetCRF(vc.CRF).
		SetPreset(vc.Preset).
		SetTune(vc.Tune).
		SetAudioBitrate(p.cfg.Audio.Bitrate)
}

// buildThumbnail renders the title card. Any failure degrades to no
// thumbnail: the platform generates one from the video if none is set.
func (p *Pipeline) buildThumbnail(ctx context.Context, assets []models.VisualAsset, videoPath, topic string, run *workspace.Run) (string, *models.Warning) {
	basePath := ""
	if len(assets) > 0 && assets[0].Kind == models.AssetImage {
		basePath = assets[0].Path
	} else {
		grabPath := run.Path("thumb_base.jpg")
		grab := framegrab.NewFrameGrabBuilder(videoPath, grabPath, thumbnailSeekSeconds)
		if _, err := p.renderer.Render(ctx, grab); err != nil {
			w := models.NewWarning("thumbnail", "frame grab failed, no thumbnail: %v", err)
			return "", &w
		}
		basePath = grabPath
	}

	thumbPath := workspace.ThumbnailPath(videoPath)
	card := thumbnail.NewThumbnailBuilder(basePath, topic, thumbPath)
	if _, err := p.renderer.Render(ctx, card); err != nil {
		w := models.NewWarning("thumbnail", "title card render failed, no thumbnail: %v", err)
		return "", &w
	}
	return thumbPath, nil
}

func (p *Pipeline) generateMetadata(ctx context.Context, script *models.Script, outcome *Outcome) *models.VideoMetadata {
	var meta *models.VideoMetadata
	if p.metadata != nil {
		var warning *models.Warning
		meta, warning = p.metadata.Generate(ctx, script)
		if warning != nil {
			outcome.Warnings = append(outcome.Warnings, *warning)
		}
	} else {
		meta = &models.VideoMetadata{
			Title:         script.Topic,
			Description:   script.Topic,
			CategoryID:    p.cfg.Upload.CategoryID,
			PrivacyStatus: p.cfg.Upload.PrivacyStatus,
			MadeForKids:   p.cfg.Upload.MadeForKids,
		}
		meta.ClampToLimits()
		outcome.Warnings = append(outcome.Warnings,
			models.NewWarning("metadata", "no metadata service configured, bare topic metadata used"))
	}

	if p.sidecar != nil {
		if err := p.sidecar(workspace.SidecarPath(outcome.VideoPath), meta); err != nil {
			p.logger.Warn().Err(err).Msg("could not write metadata sidecar")
			outcome.Warnings = append(outcome.Warnings,
				models.NewWarning("metadata", "sidecar write failed: %v", err))
		}
	}
	return meta
}

func (p *Pipeline) maybeUpload(ctx context.Context, videoPath, thumbPath string, meta *models.VideoMetadata, outcome *Outcome) error {
	switch {
	case p.cfg.TestMode:
		fmt.Println("  Skipped (test mode)")
		return nil
	case p.cfg.SkipUpload:
		fmt.Println("  Skipped (--skip-upload)")
		return nil
	case p.upload == nil:
		fmt.Println("  Skipped (no uploader configured)")
		outcome.Warnings = append(outcome.Warnings,
			models.NewWarning("uploader", "no uploader configured, video kept local"))
		return nil
	}

	uploadID, err := p.upload.Upload(ctx, videoPath, thumbPath, meta)
	if err != nil {
		return err
	}
	outcome.UploadID = uploadID
	fmt.Printf("  Uploaded: https://youtu.be/%s\n", uploadID)
	return nil
}

// record appends the run to the flat-file history. History failures
// only warn: the video already exists and that is what matters.
func (p *Pipeline) record(outcome *Outcome) {
	history := workspace.NewHistory(workspace.HistoryPath(p.cfg.OutputDir), p.logger)
	err := history.Append(models.RunRecord{
		ID:        outcome.RunID,
		Topic:     outcome.Topic,
		Category:  outcome.Category,
		Language:  p.cfg.Language,
		VideoPath: outcome.VideoPath,
		UploadID:  outcome.UploadID,
		CreatedAt: time.Now(),
		Warnings:  models.WarningStrings(outcome.Warnings),
	})
	if err != nil {
		p.logger.Warn().Err(err).Msg("could not append run history")
	}
}

func (p *Pipeline) cleanup() {
	removed, err := workspace.CleanupVideos(p.cfg.OutputDir, p.cfg.KeepVideos, p.logger)
	if err != nil {
		p.logger.Warn().Err(err).Msg("output cleanup failed")
		return
	}
	if removed > 0 {
		p.logger.Info().Int("removed", removed).Msg("old videos cleaned up")
	}
}
