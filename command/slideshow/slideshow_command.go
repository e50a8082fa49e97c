package slideshow

import "kidreel/command"

// SlideshowCommand extends the base Command interface with the knobs
// specific to composing still images into a narrated video.
type SlideshowCommand interface {
	command.Command
	SetCanvas(width, height int) SlideshowCommand
	SetFPS(fps int) SlideshowCommand
	SetFadeDuration(seconds float64) SlideshowCommand
	SetZoom(step, limit float64) SlideshowCommand
	SetCRF(crf int) SlideshowCommand
	SetPreset(preset string) SlideshowCommand
	SetTune(tune string) SlideshowCommand
	SetAudioBitrate(bitrate string) SlideshowCommand
}
