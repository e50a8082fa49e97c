package mediatool

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"kidreel/ffprobe"
	"kidreel/models"
)

const (
	probeTimeout    = 30 * time.Second
	stderrTailLines = 40
)

// ExecGateway runs ffmpeg and ffprobe as subprocesses.
type ExecGateway struct {
	ffmpegPath    string
	ffprobePath   string
	encodeTimeout time.Duration
	logger        zerolog.Logger
}

// NewExecGateway resolves both binaries and returns a gateway that runs
// them. A missing binary is a hard error: nothing downstream can work
// without the tools installed.
func NewExecGateway(ffmpegPath, ffprobePath string, encodeTimeout time.Duration, logger zerolog.Logger) (*ExecGateway, error) {
	resolvedFFmpeg, err := exec.LookPath(ffmpegPath)
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found at %q: %w", ffmpegPath, err)
	}

	resolvedFFprobe, err := exec.LookPath(ffprobePath)
	if err != nil {
		return nil, fmt.Errorf("ffprobe not found at %q: %w", ffprobePath, err)
	}

	return &ExecGateway{
		ffmpegPath:    resolvedFFmpeg,
		ffprobePath:   resolvedFFprobe,
		encodeTimeout: encodeTimeout,
		logger:        logger,
	}, nil
}

// Probe runs ffprobe against path and returns its raw JSON output.
func (eg *ExecGateway) Probe(ctx context.Context, path string) ([]byte, error) {
	if path == "" {
		return nil, fmt.Errorf("probe path cannot be empty")
	}

	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	args := ffprobe.Args(path)
	eg.logger.Debug().Str("path", path).Msg("probing media file")

	cmd := exec.CommandContext(probeCtx, eg.ffprobePath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		return nil, eg.wrapExecError(err, probeCtx, "ffprobe", args, stderr.String())
	}

	return output, nil
}

// Encode runs ffmpeg with the request's arguments, streaming progress
// updates parsed from stderr.
func (eg *ExecGateway) Encode(ctx context.Context, req EncodeRequest) error {
	if len(req.Args) == 0 {
		return fmt.Errorf("encode arguments cannot be empty")
	}

	encodeCtx := ctx
	if eg.encodeTimeout > 0 {
		var cancel context.CancelFunc
		encodeCtx, cancel = context.WithTimeout(ctx, eg.encodeTimeout)
		defer cancel()
	}

	eg.logger.Debug().
		Int("arg_count", len(req.Args)).
		Str("output", req.Args[len(req.Args)-1]).
		Msg("running ffmpeg")

	cmd := exec.CommandContext(encodeCtx, eg.ffmpegPath, req.Args...)

	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to open stderr pipe: %w", err)
	}

	startedAt := time.Now()
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	tail := eg.consumeStderr(stderrPipe, req)

	if err := cmd.Wait(); err != nil {
		return eg.wrapExecError(err, encodeCtx, "ffmpeg", req.Args, strings.Join(tail, "\n"))
	}

	eg.logger.Debug().
		Dur("elapsed", time.Since(startedAt)).
		Msg("ffmpeg finished")

	return nil
}

// consumeStderr drains the encoder's diagnostic stream, feeding progress
// lines to the request callback and collecting the rest as an error tail.
func (eg *ExecGateway) consumeStderr(r io.Reader, req EncodeRequest) []string {
	parser := NewProgressParser()
	progress := models.NewEncodeProgress(req.TotalDuration)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	// ffmpeg rewrites its stats line in place with carriage returns, so
	// both \r and \n delimit lines here.
	scanner.Split(scanMediaLines)

	var tail []string
	for scanner.Scan() {
		line := scanner.Text()

		if parser.ParseLine(line, progress) {
			progress.State = models.ProgressStateRunning
			if req.OnProgress != nil {
				req.OnProgress(progress)
			}
			continue
		}

		if strings.TrimSpace(line) == "" {
			continue
		}
		if len(tail) >= stderrTailLines {
			copy(tail, tail[1:])
			tail[len(tail)-1] = line
			continue
		}
		tail = append(tail, line)
	}

	return tail
}

// wrapExecError converts a subprocess failure into an ExecError,
// flagging deadline hits so callers can treat them as fatal.
func (eg *ExecGateway) wrapExecError(err error, ctx context.Context, binary string, args []string, stderr string) error {
	execErr := &ExecError{
		Binary:  binary,
		Args:    args,
		Stderr:  stderr,
		Timeout: errors.Is(ctx.Err(), context.DeadlineExceeded),
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		execErr.ExitCode = exitErr.ExitCode()
		if stderr == "" && len(exitErr.Stderr) > 0 {
			execErr.Stderr = string(exitErr.Stderr)
		}
	} else {
		execErr.ExitCode = -1
	}

	return execErr
}

// scanMediaLines splits on both carriage returns and newlines.
func scanMediaLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
