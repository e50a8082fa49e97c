// Package models provides the core data structures shared across the
// video pipeline: script sections, visual assets, timeline entries,
// encode results and warnings.
package models

import (
	"fmt"
	"strings"
)

// ScriptSection is one segment of the narration script: its position in
// the running order, a short title, the narration text to be spoken, an
// optional visual hint for asset generation, and the duration the script
// author targeted for it.
//
// Target durations are advisory only. The ground truth for total video
// length always comes from probing the synthesized narration file.
type ScriptSection struct {
	Position      int     `json:"position"`
	Title         string  `json:"title"`
	Narration     string  `json:"narration"`
	VisualHint    string  `json:"visual_hint,omitempty"`
	TargetSeconds float64 `json:"target_seconds"`
}

// NewSection creates a validated ScriptSection.
//
// Returns an error if the narration is empty or the target duration is
// not positive.
func NewSection(position int, title, narration string, targetSeconds float64) (*ScriptSection, error) {
	s := &ScriptSection{
		Position:      position,
		Title:         title,
		Narration:     narration,
		TargetSeconds: targetSeconds,
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid section: %w", err)
	}
	return s, nil
}

// Validate checks the section for structural problems.
func (s *ScriptSection) Validate() error {
	if s.Position < 0 {
		return fmt.Errorf("position cannot be negative")
	}
	if strings.TrimSpace(s.Narration) == "" {
		return fmt.Errorf("narration cannot be empty")
	}
	if s.TargetSeconds <= 0 {
		return fmt.Errorf("target_seconds must be positive")
	}
	return nil
}

// WordCount returns the number of whitespace-separated words in the
// narration text.
func (s *ScriptSection) WordCount() int {
	return len(strings.Fields(s.Narration))
}

// Script is the full narration plan for one video: the chosen topic and
// an ordered sequence of sections. The first section is the intro and the
// last the outro, but the assembly pipeline treats all sections uniformly.
type Script struct {
	Topic    string          `json:"topic"`
	Category string          `json:"category"`
	Language string          `json:"language"`
	Sections []ScriptSection `json:"sections"`
}

// Validate checks the script and every section, and that positions are
// sequential starting at zero.
func (sc *Script) Validate() error {
	if strings.TrimSpace(sc.Topic) == "" {
		return fmt.Errorf("topic cannot be empty")
	}
	if len(sc.Sections) == 0 {
		return fmt.Errorf("script has no sections")
	}
	for i := range sc.Sections {
		if err := sc.Sections[i].Validate(); err != nil {
			return fmt.Errorf("section %d: %w", i, err)
		}
		if sc.Sections[i].Position != i {
			return fmt.Errorf("section %d has position %d, expected %d", i, sc.Sections[i].Position, i)
		}
	}
	return nil
}

// SectionDurations returns the advisory target duration of each section,
// in running order.
func (sc *Script) SectionDurations() []float64 {
	durations := make([]float64, len(sc.Sections))
	for i := range sc.Sections {
		durations[i] = sc.Sections[i].TargetSeconds
	}
	return durations
}

// FullNarration joins all section narrations into the single text handed
// to the voice synthesizer, separated by blank lines so the voice pauses
// between sections.
func (sc *Script) FullNarration() string {
	parts := make([]string, 0, len(sc.Sections))
	for i := range sc.Sections {
		if text := strings.TrimSpace(sc.Sections[i].Narration); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n")
}

// WordCount returns the total word count across all sections.
func (sc *Script) WordCount() int {
	total := 0
	for i := range sc.Sections {
		total += sc.Sections[i].WordCount()
	}
	return total
}

// EstimatedSeconds estimates spoken length from the word count at the
// given pace. Used for sanity logging only, never for timeline math.
func (sc *Script) EstimatedSeconds(wordsPerMinute int) float64 {
	if wordsPerMinute <= 0 {
		return 0
	}
	return float64(sc.WordCount()) / float64(wordsPerMinute) * 60
}
