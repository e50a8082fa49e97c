package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"kidreel/assets"
	"kidreel/client"
	"kidreel/config"
	"kidreel/internal/logging"
	"kidreel/mediatool"
	"kidreel/metadata"
	"kidreel/mixer"
	"kidreel/pipeline"
	"kidreel/render"
	"kidreel/scriptgen"
	"kidreel/topics"
	"kidreel/uploader"
	"kidreel/voiceover"
)

// encodeTimeout is the hard ceiling for any single ffmpeg run. A hung
// encoder is killed rather than retried.
const encodeTimeout = time.Hour

func main() {
	// Step 1: Load configuration (CLI flags > config file > env > defaults)
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Configuration error: %v\n", err)
		os.Exit(1)
	}

	// Step 2: Handle dry-run mode
	if cfg.DryRun {
		fmt.Println("═══════════════════════════════════════════════════════════")
		fmt.Println("                      DRY RUN MODE")
		fmt.Println("═══════════════════════════════════════════════════════════")
		cfg.PrintConfig()
		fmt.Println("\n✓ Configuration is valid. No video will be produced.")
		return
	}

	// Step 3: Set up context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\n\n⚠️  Interrupt received, cleaning up...")
		cancel()
	}()

	// Step 4: Run the production pipeline
	outcome, err := runPipeline(ctx, cfg)
	if err != nil {
		if ctx.Err() == context.Canceled {
			fmt.Println("\n⚠️  Run cancelled by user")
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "\n❌ Pipeline error: %v\n", err)
		os.Exit(1)
	}

	printReport(outcome)
}

// runPipeline wires the collaborators and produces one video.
func runPipeline(ctx context.Context, cfg *config.Config) (*pipeline.Outcome, error) {
	logger := logging.New(os.Stderr, cfg.LogLevel())

	fmt.Println("╔════════════════════════════════════════════════════════════════╗")
	fmt.Println("║                  KIDREEL - PIPELINE START                      ║")
	fmt.Println("╚════════════════════════════════════════════════════════════════╝")
	fmt.Printf("Category: %s\n", cfg.Category)
	fmt.Printf("Language: %s\n", cfg.Language)
	fmt.Printf("Output:   %s\n", cfg.OutputDir)
	if cfg.TestMode {
		fmt.Println("Mode:     test (short video, no upload)")
	}
	fmt.Println()

	ffmpegPath := cfg.Tools.FFmpegPath
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	ffprobePath := cfg.Tools.FFprobePath
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	gateway, err := mediatool.NewExecGateway(ffmpegPath, ffprobePath, encodeTimeout, logger)
	if err != nil {
		return nil, err
	}

	topicHistory := filepath.Join(cfg.OutputDir, "topic_history.json")
	p := pipeline.New(cfg, gateway, logger).
		SetRenderer(render.NewOrchestrator(gateway, logger)).
		SetTopicService(topics.NewSelector(topicHistory, logger).SetLanguage(languageCode(cfg.Language))).
		SetSidecarWriter(metadata.WriteSidecar)

	if !cfg.NoMusic {
		p.SetMixService(mixer.New(cfg.MusicDir, gateway, logger))
	}

	if cfg.API.OpenAIKey != "" {
		llm := client.NewLLMClient(cfg.API.OpenAIBaseURL, cfg.API.OpenAIKey, cfg.API.Model)
		p.SetScriptService(scriptgen.NewGenerator(llm, logger).SetLanguage(cfg.Language))
		p.SetMetadataService(metadata.NewGenerator(llm, logger).
			SetUploadDefaults(cfg.Upload.CategoryID, cfg.Upload.PrivacyStatus, cfg.Upload.MadeForKids))

		acquirer := assets.NewAcquirer(gateway, logger).
			SetImageService(client.NewImageClient(cfg.API.OpenAIBaseURL, cfg.API.OpenAIKey))
		if cfg.API.StockKey != "" {
			acquirer.SetStockService(client.NewStockClient(cfg.API.StockBaseURL, cfg.API.StockKey))
		}
		p.SetAssetService(acquirer)
	}

	if cfg.API.TTSKey != "" {
		tts := client.NewTTSClient(cfg.API.TTSBaseURL, cfg.API.TTSKey, cfg.Audio.VoiceID)
		p.SetVoiceService(voiceover.NewGenerator(tts, gateway, logger))
	}

	if !cfg.TestMode && !cfg.SkipUpload {
		up := uploader.New(cfg.Upload.CredentialsFile, cfg.Upload.TokenFile, logger)
		if up.IsConfigured() {
			p.SetUploadService(up)
		} else {
			logger.Warn().Msg("upload credentials missing, video will stay local")
		}
	}

	return p.Run(ctx)
}

// printReport summarizes the finished run.
func printReport(outcome *pipeline.Outcome) {
	fmt.Println("╔════════════════════════════════════════════════════════════════╗")
	fmt.Println("║                       RUN COMPLETE                             ║")
	fmt.Println("╚════════════════════════════════════════════════════════════════╝")
	fmt.Printf("Topic:     %s\n", outcome.Topic)
	fmt.Printf("Video:     %s\n", outcome.VideoPath)
	if info, err := os.Stat(outcome.VideoPath); err == nil {
		fmt.Printf("Size:      %.1f MB\n", float64(info.Size())/(1024*1024))
	}
	fmt.Printf("Duration:  %.1f seconds\n", outcome.Duration)
	fmt.Printf("Sections:  %d, assets: %d\n", outcome.Sections, outcome.Assets)
	if outcome.UploadID != "" {
		fmt.Printf("Uploaded:  https://youtu.be/%s\n", outcome.UploadID)
	}
	if len(outcome.Warnings) > 0 {
		fmt.Printf("\n⚠️  %d warning(s):\n", len(outcome.Warnings))
		for _, w := range outcome.Warnings {
			fmt.Printf("  - %s\n", w)
		}
	}
	fmt.Printf("\n✅ Finished in %s\n", outcome.Elapsed.Round(time.Second))
}

// languageCode maps the human-facing language setting to the topic
// catalog's language filter.
func languageCode(language string) string {
	switch language {
	case "hindi", "hi":
		return "hi"
	case "english", "en":
		return "en"
	default:
		return "both"
	}
}
