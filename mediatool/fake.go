package mediatool

import (
	"context"
	"fmt"
	"os"
	"sync"

	"kidreel/ffprobe"
	"kidreel/models"
)

// FakeGateway is a deterministic Gateway for tests. It records every
// invocation and returns scripted outcomes instead of running binaries.
type FakeGateway struct {
	mu          sync.Mutex
	invocations []Invocation

	// ProbeResults maps a path to the raw JSON Probe returns for it.
	// Paths not present produce a not-found style ExecError unless
	// ProbeErr overrides all probes.
	ProbeResults map[string][]byte
	ProbeErr     error

	// EncodeScript holds per-call outcomes consumed in order; a nil
	// entry and every call past the end succeed.
	EncodeScript []error

	// OnEncode, when non-nil, runs on every successful encode. Tests
	// use it to materialize output files.
	OnEncode func(args []string) error
}

// Probe returns the scripted JSON for path.
func (f *FakeGateway) Probe(ctx context.Context, path string) ([]byte, error) {
	f.record(Invocation{Binary: "ffprobe", Args: ffprobe.Args(path)})

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.ProbeErr != nil {
		return nil, f.ProbeErr
	}
	if output, ok := f.ProbeResults[path]; ok {
		return output, nil
	}

	return nil, &ExecError{
		Binary:   "ffprobe",
		ExitCode: 1,
		Stderr:   path + ": No such file or directory",
	}
}

// Encode consumes the next scripted outcome.
func (f *FakeGateway) Encode(ctx context.Context, req EncodeRequest) error {
	f.record(Invocation{Binary: "ffmpeg", Args: req.Args})

	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	var scripted error
	if len(f.EncodeScript) > 0 {
		scripted = f.EncodeScript[0]
		f.EncodeScript = f.EncodeScript[1:]
	}
	f.mu.Unlock()

	if scripted != nil {
		return scripted
	}

	if req.OnProgress != nil {
		progress := models.NewEncodeProgress(req.TotalDuration)
		progress.State = models.ProgressStateRunning
		progress.MarkPosition(req.TotalDuration)
		req.OnProgress(progress)
	}

	if f.OnEncode != nil {
		return f.OnEncode(req.Args)
	}
	return nil
}

func (f *FakeGateway) record(inv Invocation) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invocations = append(f.invocations, inv)
}

// Invocations returns a copy of every recorded tool run.
func (f *FakeGateway) Invocations() []Invocation {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Invocation, len(f.invocations))
	copy(out, f.invocations)
	return out
}

// EncodeCalls counts recorded ffmpeg runs.
func (f *FakeGateway) EncodeCalls() int {
	count := 0
	for _, inv := range f.Invocations() {
		if inv.Binary == "ffmpeg" {
			count++
		}
	}
	return count
}

// LastEncodeArgs returns the argument vector of the most recent ffmpeg
// run, or nil when none happened.
func (f *FakeGateway) LastEncodeArgs() []string {
	var last []string
	for _, inv := range f.Invocations() {
		if inv.Binary == "ffmpeg" {
			last = inv.Args
		}
	}
	return last
}

// TouchLastArg writes placeholder bytes to the final argument of an
// ffmpeg invocation, which is where every builder places the output
// path. Use as a FakeGateway OnEncode hook so output verification sees
// a non-empty file.
func TouchLastArg(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("no arguments to touch")
	}
	return os.WriteFile(args[len(args)-1], []byte("media"), 0o644)
}

// FakeProbeJSON builds a minimal ffprobe JSON document reporting the
// given duration, suitable for FakeGateway.ProbeResults.
func FakeProbeJSON(duration float64) []byte {
	return []byte(fmt.Sprintf(`{
		"streams": [
			{"index": 0, "codec_name": "h264", "codec_type": "video", "width": 1920, "height": 1080, "r_frame_rate": "60/1"},
			{"index": 1, "codec_name": "aac", "codec_type": "audio", "channels": 2}
		],
		"format": {"format_name": "mov,mp4,m4a,3gp,3g2,mj2", "duration": "%.6f"}
	}`, duration))
}
