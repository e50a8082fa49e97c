// Package mediatool is the single seam between the pipeline and the
// external ffmpeg/ffprobe binaries.
//
// Builders assemble argument vectors, the render orchestrator decides
// retry policy, and this package does the actual process execution. A
// deterministic FakeGateway stands in for the binaries under test.
package mediatool

import (
	"context"
	"strings"

	"kidreel/models"
)

// EncodeRequest describes a single ffmpeg run.
type EncodeRequest struct {
	// Args is the full ffmpeg argument vector, binary name excluded.
	Args []string

	// TotalDuration is the expected output duration in seconds. It
	// drives percent calculation in progress reporting and may be
	// zero when unknown.
	TotalDuration float64

	// OnProgress, when non-nil, receives updates parsed from the
	// encoder's stderr stream.
	OnProgress models.ProgressCallback
}

// Gateway runs the external media binaries.
type Gateway interface {
	// Probe runs ffprobe against path and returns its raw JSON output.
	Probe(ctx context.Context, path string) ([]byte, error)

	// Encode runs ffmpeg with the given arguments and blocks until the
	// process exits or ctx is cancelled.
	Encode(ctx context.Context, req EncodeRequest) error
}

// Invocation records a single external tool run for inspection in tests.
type Invocation struct {
	Binary string
	Args   []string
}

// String renders the invocation as a shell-like command line.
func (inv Invocation) String() string {
	return inv.Binary + " " + strings.Join(inv.Args, " ")
}
