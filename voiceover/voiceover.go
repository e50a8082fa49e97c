// Package voiceover turns script narration into a single audio file.
//
// Short texts go to the TTS service in one request. Longer texts are
// split at sentence boundaries, synthesized chunk by chunk, and merged
// with a lossless concat copy. A failed merge degrades to the first
// chunk with a warning instead of sinking the whole run.
package voiceover

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"kidreel/internal/fsutil"
	"kidreel/mediatool"
	"kidreel/models"
)

const (
	maxAttempts = 3
	retryDelay  = 2 * time.Second
)

// Synthesizer converts one piece of text into an audio file on disk.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, outputPath string) error
}

// Result describes a finished narration.
type Result struct {
	Path       string
	ChunkCount int
	Warning    *models.Warning
}

// Generator produces narration audio from script text.
type Generator struct {
	tts      Synthesizer
	gateway  mediatool.Gateway
	logger   zerolog.Logger
	maxChars int

	// sleep is swapped out in tests so retry backoff does not stall them.
	sleep func(time.Duration)
}

// NewGenerator wires a Generator to a TTS client and the media gateway
// used for chunk merging.
func NewGenerator(tts Synthesizer, gateway mediatool.Gateway, logger zerolog.Logger) *Generator {
	return &Generator{
		tts:      tts,
		gateway:  gateway,
		logger:   logger.With().Str("component", "voiceover").Logger(),
		maxChars: MaxCharsPerRequest,
		sleep:    time.Sleep,
	}
}

// SetMaxChars overrides the per-request character limit.
func (g *Generator) SetMaxChars(n int) *Generator {
	if n > 0 {
		g.maxChars = n
	}
	return g
}

// Generate synthesizes text into an MP3 at outputPath.
func (g *Generator) Generate(ctx context.Context, text, outputPath string) (*Result, error) {
	if len(strings.TrimSpace(text)) < minTextLength {
		return nil, fmt.Errorf("narration text must be at least %d characters long", minTextLength)
	}

	text = InsertPauses(text)
	chunks := ChunkText(text, g.maxChars)

	g.logger.Info().
		Int("chars", len(text)).
		Int("chunks", len(chunks)).
		Msg("generating narration")

	if len(chunks) == 1 {
		if err := g.synthesize(ctx, chunks[0], outputPath); err != nil {
			return nil, err
		}
		return &Result{Path: outputPath, ChunkCount: 1}, nil
	}

	return g.generateChunked(ctx, chunks, outputPath)
}

func (g *Generator) generateChunked(ctx context.Context, chunks []string, outputPath string) (*Result, error) {
	dir := filepath.Dir(outputPath)
	chunkPaths := make([]string, 0, len(chunks))

	cleanup := func() {
		for _, p := range chunkPaths {
			os.Remove(p)
		}
	}

	for i, chunk := range chunks {
		chunkPath := filepath.Join(dir, fmt.Sprintf("chunk_%03d.mp3", i+1))

		g.logger.Info().
			Int("chunk", i+1).
			Int("total", len(chunks)).
			Msg("synthesizing chunk")

		if err := g.synthesize(ctx, chunk, chunkPath); err != nil {
			cleanup()
			return nil, fmt.Errorf("chunk %d of %d: %w", i+1, len(chunks), err)
		}
		chunkPaths = append(chunkPaths, chunkPath)
	}
	defer cleanup()

	result := &Result{Path: outputPath, ChunkCount: len(chunks)}

	if err := g.merge(ctx, chunkPaths, outputPath); err != nil {
		// Every chunk synthesized fine, so salvage the opening chunk
		// rather than dropping the whole narration.
		g.logger.Warn().Err(err).Msg("chunk merge failed, using first chunk")

		if copyErr := fsutil.CopyFile(chunkPaths[0], outputPath); copyErr != nil {
			return nil, fmt.Errorf("merge fallback copy failed: %w", copyErr)
		}
		warning := models.NewWarning("voiceover", "chunk merge failed, first chunk used: %v", err)
		result.Warning = &warning
	}

	return result, nil
}

// synthesize calls the TTS service with linear backoff between attempts.
func (g *Generator) synthesize(ctx context.Context, text, outputPath string) error {
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastErr = g.tts.Synthesize(ctx, text, outputPath)
		if lastErr == nil {
			if fsutil.NonEmpty(outputPath) {
				return nil
			}
			lastErr = fmt.Errorf("synthesis wrote no audio to %s", outputPath)
		}

		if ctx.Err() != nil {
			return lastErr
		}
		if attempt < maxAttempts {
			delay := time.Duration(attempt) * retryDelay

			g.logger.Warn().
				Err(lastErr).
				Int("attempt", attempt).
				Dur("delay", delay).
				Msg("synthesis failed, retrying")

			g.sleep(delay)
		}
	}

	return fmt.Errorf("text-to-speech failed after %d attempts: %w", maxAttempts, lastErr)
}

// merge concatenates chunk files into outputPath without re-encoding.
func (g *Generator) merge(ctx context.Context, chunkPaths []string, outputPath string) error {
	listPath, err := writeConcatList(chunkPaths, filepath.Dir(outputPath))
	if err != nil {
		return err
	}
	defer os.Remove(listPath)

	req := mediatool.EncodeRequest{
		Args: []string{"-f", "concat", "-safe", "0", "-i", listPath, "-c", "copy", "-y", outputPath},
	}
	if err := g.gateway.Encode(ctx, req); err != nil {
		return fmt.Errorf("concat merge: %w", err)
	}
	if !fsutil.NonEmpty(outputPath) {
		return fmt.Errorf("concat merge produced no output at %s", outputPath)
	}
	return nil
}

// writeConcatList writes a concat-demuxer list file next to the output so
// both sit on the same filesystem.
func writeConcatList(paths []string, dir string) (string, error) {
	f, err := os.CreateTemp(dir, "concat-*.txt")
	if err != nil {
		return "", fmt.Errorf("create concat list: %w", err)
	}
	defer f.Close()

	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return "", fmt.Errorf("resolve %s: %w", p, err)
		}
		escaped := strings.ReplaceAll(abs, "'", `'\''`)
		if _, err := fmt.Fprintf(f, "file '%s'\n", escaped); err != nil {
			return "", fmt.Errorf("write concat list: %w", err)
		}
	}
	return f.Name(), nil
}
