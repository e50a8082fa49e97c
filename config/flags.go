package config

import (
	"flag"
	"fmt"
	"os"
)

// MergeFromFlags parses command-line flags and overrides config values
func (c *Config) MergeFromFlags() error {
	// Define flags
	fs := flag.NewFlagSet("kidreel", flag.ContinueOnError)
	fs.Usage = printUsage

	// Config file override (handled by LoadConfig before this function is called)
	_ = fs.String("config", "", "Path to config file (default: search standard locations)")

	// Run settings
	category := fs.String("category", "", "Topic category: kids, science, tech, auto (default: from config)")
	language := fs.String("language", "", "Narration language (default: from config)")
	topic := fs.String("topic", "", "Manual topic override, skips topic selection")
	outputDir := fs.String("output-dir", "", "Directory for run workspaces and finished videos (default: from config)")
	musicDir := fs.String("music-dir", "", "Directory holding background music tracks (default: from config)")

	// Video settings
	targetSeconds := fs.Int("target-seconds", -1, "Advisory video length in seconds (default: from config)")
	crf := fs.Int("crf", -1, "Video CRF (0-51, lower = better quality) (default: from config)")
	preset := fs.String("preset", "", "Encoder preset: ultrafast, fast, medium, slow, veryslow (default: from config)")

	// Behavioral flags
	useVideos := fs.Bool("use-videos", false, "Use stock video clips instead of generated images")
	testMode := fs.Bool("test-mode", false, "Short video, no upload, keep the working directory")
	skipUpload := fs.Bool("skip-upload", false, "Produce the video but do not upload it")
	noMusic := fs.Bool("no-music", false, "Skip the background music mix")
	keepVideos := fs.Int("keep-videos", -1, "Finished videos retained after cleanup (default: from config)")
	verbose := fs.Bool("verbose", false, "Enable debug logging")
	quiet := fs.Bool("quiet", false, "Only log errors")
	dryRun := fs.Bool("dry-run", false, "Show effective configuration without producing anything")

	// Parse flags
	if err := fs.Parse(os.Args[1:]); err != nil {
		return err
	}

	// Note: Config file loading is handled by LoadConfig() before this function
	// is called. The -config flag is only used to specify which file to load.

	// Run settings (only override if explicitly set)
	if *category != "" {
		c.Category = *category
	}
	if *language != "" {
		c.Language = *language
	}
	if *topic != "" {
		c.Topic = *topic
	}
	if *outputDir != "" {
		c.OutputDir = *outputDir
	}
	if *musicDir != "" {
		c.MusicDir = *musicDir
	}

	// Video settings (-1 means not set)
	if *targetSeconds > 0 {
		c.Video.TargetSeconds = *targetSeconds
	}
	if *crf >= 0 {
		c.Video.CRF = *crf
	}
	if *preset != "" {
		c.Video.Preset = *preset
	}

	// Behavioral flags
	if *useVideos {
		c.UseVideos = true
	}
	if *testMode {
		c.TestMode = true
	}
	if *skipUpload {
		c.SkipUpload = true
	}
	if *noMusic {
		c.NoMusic = true
	}
	if *keepVideos >= 0 {
		c.KeepVideos = *keepVideos
	}
	if *verbose {
		c.Verbose = true
	}
	if *quiet {
		c.Quiet = true
	}
	if *dryRun {
		c.DryRun = true
	}

	return nil
}

// printUsage prints help text
func printUsage() {
	fmt.Fprintf(os.Stderr, `kidreel - Automated educational video production

USAGE:
  kidreel [OPTIONS]

CONFIGURATION:
  -config string
        Path to config file (default: search ./kidreel.yaml, ~/.kidreel/config.yaml, /etc/kidreel/config.yaml)

RUN SETTINGS:
  -category string
        Topic category: kids, science, tech, auto (default: kids)
  -language string
        Narration language (default: english)
  -topic string
        Manual topic override, skips topic selection
  -output-dir string
        Directory for run workspaces and finished videos (default: output)
  -music-dir string
        Directory holding background music tracks (default: assets/music)

VIDEO SETTINGS:
  -target-seconds int
        Advisory video length in seconds (default: 300)
  -crf int
        Video CRF: 0-51, lower = better quality (default: 21)
  -preset string
        Encoder preset: ultrafast, fast, medium, slow, veryslow (default: slow)

BEHAVIORAL FLAGS:
  --use-videos
        Use stock video clips instead of generated images
  --test-mode
        Short video, no upload, keep the working directory
  --skip-upload
        Produce the video but do not upload it
  --no-music
        Skip the background music mix
  -keep-videos int
        Finished videos retained after cleanup (default: 3)
  --verbose
        Enable debug logging
  --quiet
        Only log errors
  --dry-run
        Show effective configuration without producing anything

ENVIRONMENT:
  OPENAI_API_KEY        Script, image and metadata generation (required unless test mode)
  ELEVENLABS_API_KEY    Voice synthesis
  PEXELS_API_KEY        Stock footage search (required with --use-videos)
  FFMPEG_PATH           ffmpeg binary override
  FFPROBE_PATH          ffprobe binary override
  PRIVACY_STATUS        Upload privacy: private, unlisted, public
  MADE_FOR_KIDS         COPPA self-declaration: true or false

  A .env file in the working directory is loaded before reading the
  environment.

EXAMPLES:
  # Default run: pick a topic, build, upload privately
  kidreel

  # Science video in Hindi from stock footage, no upload
  kidreel -category science -language hindi --use-videos --skip-upload

  # Fast test run with a fixed topic
  kidreel --test-mode -topic "Counting with Dinosaurs"

  # Show effective configuration
  kidreel --dry-run

CONFIGURATION FILES:
  Config files are searched in order:
    1. ./kidreel.yaml
    2. ~/.kidreel/config.yaml
    3. /etc/kidreel/config.yaml

  Priority: CLI flags > Config file > Environment > Defaults

`)
}

// PrintConfig prints the effective configuration
func (c *Config) PrintConfig() {
	fmt.Println("═══════════════════════════════════════════════════════════")
	fmt.Println("                 Effective Configuration                  ")
	fmt.Println("═══════════════════════════════════════════════════════════")
	fmt.Printf("Category:       %s\n", c.Category)
	fmt.Printf("Language:       %s\n", c.Language)
	if c.Topic != "" {
		fmt.Printf("Topic:          %s (manual)\n", c.Topic)
	}
	fmt.Printf("Output Dir:     %s\n", c.OutputDir)
	fmt.Printf("Music Dir:      %s\n", c.MusicDir)

	fmt.Println("\nVideo Settings:")
	fmt.Printf("  Canvas:       %dx%d @ %d fps\n", c.Video.Width, c.Video.Height, c.Video.FPS)
	fmt.Printf("  CRF:          %d\n", c.Video.CRF)
	fmt.Printf("  Preset:       %s\n", c.Video.Preset)
	fmt.Printf("  Tune:         %s\n", c.Video.Tune)
	fmt.Printf("  Target:       %d seconds\n", c.Video.TargetSeconds)

	fmt.Println("\nAudio Settings:")
	fmt.Printf("  Bitrate:      %s\n", c.Audio.Bitrate)
	fmt.Printf("  Sample Rate:  %d Hz\n", c.Audio.SampleRate)

	fmt.Println("\nServices:")
	fmt.Printf("  LLM:          %s (%s) key=%s\n", c.API.OpenAIBaseURL, c.API.Model, maskKey(c.API.OpenAIKey))
	fmt.Printf("  TTS:          %s key=%s\n", c.API.TTSBaseURL, maskKey(c.API.TTSKey))
	fmt.Printf("  Stock:        %s key=%s\n", c.API.StockBaseURL, maskKey(c.API.StockKey))

	fmt.Println("\nUpload Settings:")
	fmt.Printf("  Privacy:      %s\n", c.Upload.PrivacyStatus)
	fmt.Printf("  For Kids:     %v\n", c.Upload.MadeForKids)
	fmt.Printf("  Category ID:  %s\n", c.Upload.CategoryID)

	fmt.Println("\nBehavioral Flags:")
	fmt.Printf("  Use Videos:   %v\n", c.UseVideos)
	fmt.Printf("  Test Mode:    %v\n", c.TestMode)
	fmt.Printf("  Skip Upload:  %v\n", c.SkipUpload)
	fmt.Printf("  No Music:     %v\n", c.NoMusic)
	fmt.Printf("  Keep Videos:  %d\n", c.KeepVideos)
	fmt.Println("═══════════════════════════════════════════════════════════")
}

// maskKey hides all but the last four characters of a credential.
func maskKey(key string) string {
	if key == "" {
		return "(unset)"
	}
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}
