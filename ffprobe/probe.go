package ffprobe

// Package ffprobe parses ffprobe JSON output into typed media metadata.
// It never runs the ffprobe binary itself; callers obtain the raw JSON
// through the mediatool gateway and hand it to Parse.

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Stream represents a single media stream within a file.
type Stream struct {
	Index         int    `json:"index"`
	CodecName     string `json:"codec_name"`
	CodecLongName string `json:"codec_long_name"`
	CodecType     string `json:"codec_type"`
	Width         int    `json:"width,omitempty"`
	Height        int    `json:"height,omitempty"`
	PixFmt        string `json:"pix_fmt,omitempty"`
	RFrameRate    string `json:"r_frame_rate,omitempty"`
	SampleRate    string `json:"sample_rate,omitempty"`
	Channels      int    `json:"channels,omitempty"`
	Duration      string `json:"duration,omitempty"`
	BitRate       string `json:"bit_rate,omitempty"`
}

// Format represents container-level metadata.
type Format struct {
	Filename       string `json:"filename"`
	NBStreams      int    `json:"nb_streams"`
	FormatName     string `json:"format_name"`
	FormatLongName string `json:"format_long_name"`
	StartTime      string `json:"start_time"`
	Duration       string `json:"duration"`
	Size           string `json:"size"`
	BitRate        string `json:"bit_rate"`
}

// ProbeResult is the decoded form of ffprobe's -print_format json output.
type ProbeResult struct {
	Format  Format   `json:"format"`
	Streams []Stream `json:"streams"`
}

// Args returns the ffprobe argument vector that produces JSON this
// package can parse. The binary name itself is not included.
func Args(path string) []string {
	return []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	}
}

// Parse decodes raw ffprobe JSON output.
func Parse(data []byte) (*ProbeResult, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty probe output")
	}

	var result ProbeResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse probe output: %w", err)
	}

	return &result, nil
}

// Duration returns the container duration in seconds.
func (p *ProbeResult) Duration() (float64, error) {
	if p.Format.Duration == "" {
		return 0, fmt.Errorf("no duration in probe output")
	}

	duration, err := strconv.ParseFloat(p.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration %q: %w", p.Format.Duration, err)
	}

	return duration, nil
}

// VideoStreams returns all streams with codec type "video".
func (p *ProbeResult) VideoStreams() []Stream {
	return p.streamsOfType("video")
}

// AudioStreams returns all streams with codec type "audio".
func (p *ProbeResult) AudioStreams() []Stream {
	return p.streamsOfType("audio")
}

func (p *ProbeResult) streamsOfType(codecType string) []Stream {
	var streams []Stream
	for _, s := range p.Streams {
		if s.CodecType == codecType {
			streams = append(streams, s)
		}
	}
	return streams
}

// HasAudio reports whether the file contains at least one audio stream.
func (p *ProbeResult) HasAudio() bool {
	return len(p.AudioStreams()) > 0
}

// HasVideo reports whether the file contains at least one video stream.
func (p *ProbeResult) HasVideo() bool {
	return len(p.VideoStreams()) > 0
}

// Resolution returns the width and height of the first video stream,
// or an error when the file has no video stream.
func (p *ProbeResult) Resolution() (width, height int, err error) {
	videos := p.VideoStreams()
	if len(videos) == 0 {
		return 0, 0, fmt.Errorf("no video stream in probe output")
	}
	return videos[0].Width, videos[0].Height, nil
}

// FrameRate returns the frame rate of the first video stream. ffprobe
// reports rates as fractions like "60/1" or "30000/1001".
func (p *ProbeResult) FrameRate() (float64, error) {
	videos := p.VideoStreams()
	if len(videos) == 0 {
		return 0, fmt.Errorf("no video stream in probe output")
	}

	rate := videos[0].RFrameRate
	if rate == "" {
		return 0, fmt.Errorf("no frame rate in probe output")
	}

	num, den, found := strings.Cut(rate, "/")
	if !found {
		parsed, err := strconv.ParseFloat(rate, 64)
		if err != nil {
			return 0, fmt.Errorf("failed to parse frame rate %q: %w", rate, err)
		}
		return parsed, nil
	}

	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse frame rate %q: %w", rate, err)
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0, fmt.Errorf("failed to parse frame rate %q", rate)
	}

	return n / d, nil
}
