package thumbnail

import (
	"fmt"
	"os"
	"strings"

	"kidreel/command"
	"kidreel/filtergraph"
)

// ThumbnailBuilder constructs the ffmpeg invocation that turns a base
// image into a 1280x720 click-friendly title card: the image is scaled
// to cover the canvas, given a readability band, and overlaid with the
// wrapped video title plus an age badge.
type ThumbnailBuilder struct {
	basePath   string
	title      string
	outputPath string

	width        int
	height       int
	fontFile     string
	titleSize    int
	badgeText    string
	badgeSize    int
	maxLineChars int
	maxLines     int
}

// NewThumbnailBuilder creates a builder with YouTube's recommended
// thumbnail dimensions.
func NewThumbnailBuilder(basePath, title, outputPath string) *ThumbnailBuilder {
	return &ThumbnailBuilder{
		basePath:     basePath,
		title:        title,
		outputPath:   outputPath,
		width:        1280,
		height:       720,
		titleSize:    88,
		badgeText:    "Ages 2-6",
		badgeSize:    36,
		maxLineChars: 20,
		maxLines:     2,
	}
}

// SetFontFile points drawtext at a specific font file instead of the
// fontconfig default.
func (t *ThumbnailBuilder) SetFontFile(path string) *ThumbnailBuilder {
	t.fontFile = path
	return t
}

// SetBadge overrides the age badge text; empty disables the badge.
func (t *ThumbnailBuilder) SetBadge(text string) *ThumbnailBuilder {
	t.badgeText = text
	return t
}

// SetCanvas sets the thumbnail dimensions.
func (t *ThumbnailBuilder) SetCanvas(width, height int) *ThumbnailBuilder {
	t.width = width
	t.height = height
	return t
}

// Validate checks the base image exists and a title is present.
func (t *ThumbnailBuilder) Validate() error {
	if strings.TrimSpace(t.title) == "" {
		return fmt.Errorf("thumbnail title cannot be empty")
	}
	if t.outputPath == "" {
		return fmt.Errorf("output path cannot be empty")
	}
	if _, err := os.Stat(t.basePath); err != nil {
		return fmt.Errorf("base image not readable: %w", err)
	}
	return nil
}

// BuildArgs constructs the ffmpeg command arguments.
func (t *ThumbnailBuilder) BuildArgs() []string {
	if strings.TrimSpace(t.title) == "" || t.basePath == "" {
		return []string{}
	}

	chain := filtergraph.Chain{
		Inputs: []string{"0:v"},
		Filters: []filtergraph.Filter{
			filtergraph.Filterf("scale", "%d:%d:force_original_aspect_ratio=increase", t.width, t.height),
			filtergraph.Filterf("crop", "%d:%d", t.width, t.height),
			{Name: "eq", Args: "contrast=1.05:saturation=1.2"},
			filtergraph.Filterf("drawbox", "x=0:y=ih-%d:w=iw:h=%d:color=black@0.45:t=fill",
				t.bandHeight(), t.bandHeight()),
		},
		Outputs: []string{"card"},
	}

	lines := wrapTitle(t.title, t.maxLineChars, t.maxLines)
	for i, line := range lines {
		chain.Filters = append(chain.Filters, t.titleLine(line, i, len(lines)))
	}

	if t.badgeText != "" {
		chain.Filters = append(chain.Filters, filtergraph.Filterf(
			"drawtext",
			"text=%s%s:fontsize=%d:fontcolor=black:box=1:boxcolor=0xFFD700@0.9:boxborderw=16:x=w-text_w-48:y=48",
			escapeDrawText(t.badgeText), t.fontArg(), t.badgeSize,
		))
	}

	graph := &filtergraph.Graph{}
	graph.Add(chain)

	return []string{
		"-i", t.basePath,
		"-filter_complex", graph.String(),
		"-map", "[card]",
		"-frames:v", "1",
		"-q:v", "2",
		"-y", t.outputPath,
	}
}

// titleLine renders one wrapped line of the title, centered, stacked
// upward from the readability band.
func (t *ThumbnailBuilder) titleLine(line string, index, total int) filtergraph.Filter {
	lineHeight := t.titleSize + 16
	yFromBottom := (total-index)*lineHeight + 32
	return filtergraph.Filterf(
		"drawtext",
		"text=%s%s:fontsize=%d:fontcolor=white:borderw=6:bordercolor=black:shadowx=4:shadowy=4:x=(w-text_w)/2:y=h-%d",
		escapeDrawText(line), t.fontArg(), t.titleSize, yFromBottom,
	)
}

func (t *ThumbnailBuilder) fontArg() string {
	if t.fontFile == "" {
		return ""
	}
	return ":fontfile=" + escapeDrawText(t.fontFile)
}

func (t *ThumbnailBuilder) bandHeight() int {
	return t.maxLines*(t.titleSize+16) + 64
}

// DryRun returns the command line without executing it.
func (t *ThumbnailBuilder) DryRun() (string, error) {
	args := t.BuildArgs()
	if len(args) == 0 {
		return "", fmt.Errorf("cannot build thumbnail command: %w", t.Validate())
	}
	return fmt.Sprintf("ffmpeg %s", strings.Join(args, " ")), nil
}

// GetTaskType returns the task type (thumbnail).
func (t *ThumbnailBuilder) GetTaskType() command.TaskType {
	return command.TaskTypeThumbnail
}

// GetInputPath returns the base image path.
func (t *ThumbnailBuilder) GetInputPath() string {
	return t.basePath
}

// GetOutputPath returns the output file path.
func (t *ThumbnailBuilder) GetOutputPath() string {
	return t.outputPath
}

// GetTotalDuration returns zero; a single frame has no duration.
func (t *ThumbnailBuilder) GetTotalDuration() float64 {
	return 0
}

// wrapTitle breaks a title into at most maxLines lines of up to
// maxChars characters, wrapping on word boundaries. Overflow beyond
// the last line is dropped; thumbnails reward short titles.
func wrapTitle(title string, maxChars, maxLines int) []string {
	words := strings.Fields(title)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		if len(current)+1+len(word) <= maxChars {
			current += " " + word
			continue
		}
		lines = append(lines, current)
		if len(lines) == maxLines {
			return lines
		}
		current = word
	}
	lines = append(lines, current)
	if len(lines) > maxLines {
		lines = lines[:maxLines]
	}
	return lines
}

// escapeDrawText escapes the characters the filter-graph parser and
// drawtext treat specially.
func escapeDrawText(s string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`,
		`'`, `\'`,
		`:`, `\:`,
		`,`, `\,`,
		`;`, `\;`,
		`%`, `\%`,
		`=`, `\=`,
		`[`, `\[`,
		`]`, `\]`,
	)
	return replacer.Replace(s)
}
