// Package command provides the Command interface implemented by every
// ffmpeg argument builder in the pipeline.
//
// Builders only assemble and validate argument vectors; execution is
// the mediatool gateway's job. This keeps every command previewable
// and testable without spawning a process.
package command

// TaskType identifies what kind of media operation a command performs.
type TaskType string

const (
	TaskTypeSlideshow TaskType = "slideshow" // still images composed into video
	TaskTypeClipReel  TaskType = "clipreel"  // stock clips trimmed and concatenated
	TaskTypeMusicMix  TaskType = "musicmix"  // narration mixed with background music
	TaskTypeThumbnail TaskType = "thumbnail" // title card rendering
	TaskTypeFrameGrab TaskType = "framegrab" // single frame extraction
	TaskTypeConcat    TaskType = "concat"    // lossless stream concatenation
)

// Command represents an ffmpeg invocation that can be built, validated,
// or previewed.
//
// Example usage:
//
//	cmd := musicmix.NewMusicMixBuilder(music, narration, out, duration).
//		SetMusicVolume(0.16).
//		SetDucking(true)
//
//	if err := cmd.Validate(); err != nil {
//		return err
//	}
//	preview, _ := cmd.DryRun()
//	log.Debug().Msg(preview)
//
//	err := gateway.Encode(ctx, mediatool.EncodeRequest{Args: cmd.BuildArgs()})
type Command interface {
	// BuildArgs constructs the ffmpeg argument vector, binary name
	// excluded. The output path is always the final element. Returns
	// an empty slice when the command is structurally unbuildable;
	// call Validate for the reason.
	BuildArgs() []string

	// Validate checks the command's inputs before execution. Builders
	// fail fast here on missing files and contract violations.
	Validate() error

	// DryRun returns the full command line as a string without
	// executing it, or an error when the command cannot be built.
	DryRun() (string, error)

	// GetTaskType returns the kind of operation for logging.
	GetTaskType() TaskType

	// GetInputPath returns the primary input file path.
	GetInputPath() string

	// GetOutputPath returns the output file path.
	GetOutputPath() string

	// GetTotalDuration returns the expected output duration in
	// seconds, or zero when unknown. The gateway uses it to compute
	// progress percentages.
	GetTotalDuration() float64
}
