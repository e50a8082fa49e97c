// Package render executes built encoder commands through the media-tool
// gateway, retrying transient failures with exponential backoff and
// verifying that a clean exit actually produced output.
package render

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"kidreel/command"
	"kidreel/internal/fsutil"
	"kidreel/mediatool"
	"kidreel/models"
)

// DefaultMaxAttempts is the retry ceiling for transient encoder
// failures. Fatal failures and timeouts never retry.
const DefaultMaxAttempts = 3

const backoffBase = time.Second

// transientPatterns are the stderr fragments that mark an encoder
// failure as worth retrying. Everything else is fatal on first sight.
var transientPatterns = []string{
	"Resource temporarily unavailable",
	"Connection reset",
	"Broken pipe",
	"I/O error",
}

// Orchestrator drives encoder commands to completion.
type Orchestrator struct {
	gateway     mediatool.Gateway
	logger      zerolog.Logger
	maxAttempts int
	onProgress  models.ProgressCallback

	// sleep is swapped out in tests so backoff does not stall them.
	sleep func(time.Duration)
}

// NewOrchestrator creates an orchestrator running commands through the
// given gateway.
func NewOrchestrator(gateway mediatool.Gateway, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		gateway:     gateway,
		logger:      logger.With().Str("component", "render").Logger(),
		maxAttempts: DefaultMaxAttempts,
		sleep:       time.Sleep,
	}
}

// SetMaxAttempts overrides the retry ceiling.
func (o *Orchestrator) SetMaxAttempts(n int) *Orchestrator {
	if n > 0 {
		o.maxAttempts = n
	}
	return o
}

// SetProgressCallback forwards encode progress updates to cb.
func (o *Orchestrator) SetProgressCallback(cb models.ProgressCallback) *Orchestrator {
	o.onProgress = cb
	return o
}

// Render validates cmd, executes it, and returns the outcome. Transient
// failures retry up to the ceiling with 2^attempt seconds of backoff
// between attempts; timeouts, fatal stderr, and empty outputs fail
// immediately. The returned result always reflects the attempts made.
func (o *Orchestrator) Render(ctx context.Context, cmd command.Command) (*models.EncodeResult, error) {
	start := time.Now()
	task := string(cmd.GetTaskType())

	args := cmd.BuildArgs()
	if len(args) == 0 {
		err := fmt.Errorf("%s command cannot be built: %w", task, cmd.Validate())
		return o.failure(err, 0, start)
	}

	o.logger.Debug().
		Str("task", task).
		Str("output", cmd.GetOutputPath()).
		Float64("duration", cmd.GetTotalDuration()).
		Msg("command assembled")

	var lastErr error
	attempts := 0

	for attempt := 1; attempt <= o.maxAttempts; attempt++ {
		attempts = attempt
		o.logger.Info().
			Str("task", task).
			Int("attempt", attempt).
			Int("max_attempts", o.maxAttempts).
			Msg("starting encode")

		err := o.gateway.Encode(ctx, mediatool.EncodeRequest{
			Args:          args,
			TotalDuration: cmd.GetTotalDuration(),
			OnProgress:    o.onProgress,
		})

		if err == nil && !fsutil.NonEmpty(cmd.GetOutputPath()) {
			err = fmt.Errorf("encoder exited cleanly but output %s is missing or empty", cmd.GetOutputPath())
		}

		if err == nil {
			elapsed := time.Since(start)
			o.logger.Info().
				Str("task", task).
				Str("output", cmd.GetOutputPath()).
				Int("attempts", attempts).
				Dur("elapsed", elapsed).
				Msg("encode succeeded")
			result, resErr := models.NewEncodeSuccess(cmd.GetOutputPath(), attempts, elapsed)
			if resErr != nil {
				return o.failure(resErr, attempts, start)
			}
			return result, nil
		}

		lastErr = err

		if !isTransient(err) {
			o.logger.Error().
				Str("task", task).
				Int("attempt", attempt).
				Err(err).
				Msg("fatal encode failure")
			break
		}

		if attempt < o.maxAttempts {
			delay := backoffBase * (1 << attempt)
			o.logger.Warn().
				Str("task", task).
				Int("attempt", attempt).
				Dur("backoff", delay).
				Err(err).
				Msg("transient encode failure, retrying")
			o.sleep(delay)
		}
	}

	err := fmt.Errorf("%s encode failed after %d attempt(s): %w", task, attempts, lastErr)
	return o.failure(err, attempts, start)
}

func (o *Orchestrator) failure(err error, attempts int, start time.Time) (*models.EncodeResult, error) {
	if attempts < 1 {
		attempts = 1
	}
	result := &models.EncodeResult{
		Success:  false,
		Attempts: attempts,
		Elapsed:  time.Since(start),
		Err:      err,
	}
	return result, err
}

// isTransient classifies an encode failure. Timeouts are always fatal;
// other tool failures are transient only when their stderr matches a
// known recoverable pattern.
func isTransient(err error) bool {
	if mediatool.IsTimeout(err) {
		return false
	}
	execErr, ok := mediatool.AsExecError(err)
	if !ok {
		return false
	}
	for _, pattern := range transientPatterns {
		if strings.Contains(execErr.Stderr, pattern) {
			return true
		}
	}
	return false
}
