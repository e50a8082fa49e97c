// Package scriptgen asks an LLM chat endpoint for a structured kids
// video script and turns the JSON reply into a validated models.Script.
//
// Section durations coming back from the model are advisory. They are
// clamped to a sane range here and treated as proportions later; the
// probed narration audio is the only ground truth for total length.
package scriptgen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"kidreel/client"
	"kidreel/models"
)

const (
	// WordsPerMinute is the narration pace scripts are sized for. Kids
	// narration runs slower than adult speech.
	WordsPerMinute = 120

	// MinSectionSeconds and MaxSectionSeconds bound every advisory
	// section duration the model returns.
	MinSectionSeconds = 20.0
	MaxSectionSeconds = 90.0

	// DefaultMinDuration and DefaultMaxDuration bound the target video
	// length in seconds.
	DefaultMinDuration = 180
	DefaultMaxDuration = 900

	maxResponseTokens = 3000
	rawErrorLimit     = 500
)

var languageNames = map[string]string{
	"en": "English",
	"hi": "Hindi",
	"es": "Spanish",
	"fr": "French",
	"de": "German",
	"pt": "Portuguese",
}

// ChatCompleter is the LLM call scriptgen depends on.
type ChatCompleter interface {
	ChatCompletion(ctx context.Context, messages []client.ChatMessage, temperature float64, maxTokens int) (string, error)
}

// wireSection mirrors one section object in the model's JSON reply.
type wireSection struct {
	SectionNumber     int      `json:"section_number"`
	Title             string   `json:"title"`
	DurationSeconds   float64  `json:"duration_seconds"`
	Narration         string   `json:"narration" validate:"required"`
	VisualSuggestions []string `json:"visual_suggestions"`
}

// wireScript mirrors the model's full JSON reply.
type wireScript struct {
	Intro        wireSection   `json:"intro"`
	BodySections []wireSection `json:"body_sections" validate:"min=1,dive"`
	Outro        wireSection   `json:"outro"`
}

// structure holds the computed shape of a script for a target length.
type structure struct {
	introSeconds   int
	outroSeconds   int
	bodySections   int
	sectionSeconds int
	totalWords     int
}

// Generator produces scripts through an LLM client.
type Generator struct {
	llm         ChatCompleter
	logger      zerolog.Logger
	validate    *validator.Validate
	temperature float64
	language    string
	minDuration int
	maxDuration int
}

// NewGenerator wires a Generator to an LLM client.
func NewGenerator(llm ChatCompleter, logger zerolog.Logger) *Generator {
	return &Generator{
		llm:         llm,
		logger:      logger.With().Str("component", "scriptgen").Logger(),
		validate:    validator.New(),
		temperature: 0.7,
		language:    "en",
		minDuration: DefaultMinDuration,
		maxDuration: DefaultMaxDuration,
	}
}

// SetLanguage sets the script language code.
func (g *Generator) SetLanguage(lang string) *Generator {
	if lang != "" {
		g.language = lang
	}
	return g
}

// SetTemperature sets the sampling temperature for generation.
func (g *Generator) SetTemperature(t float64) *Generator {
	if t >= 0 {
		g.temperature = t
	}
	return g
}

// SetDurationRange overrides the allowed target duration bounds.
func (g *Generator) SetDurationRange(min, max int) *Generator {
	if min > 0 && max >= min {
		g.minDuration = min
		g.maxDuration = max
	}
	return g
}

// Generate writes a script for the topic. A zero targetSeconds picks the
// midpoint of the configured duration range.
func (g *Generator) Generate(ctx context.Context, topic, category string, targetSeconds int) (*models.Script, error) {
	if len(strings.TrimSpace(topic)) < 5 {
		return nil, fmt.Errorf("topic must be at least 5 characters long")
	}
	if targetSeconds == 0 {
		targetSeconds = (g.minDuration + g.maxDuration) / 2
	}
	if targetSeconds < g.minDuration || targetSeconds > g.maxDuration {
		return nil, fmt.Errorf("duration must be between %d and %d seconds", g.minDuration, g.maxDuration)
	}

	st := structureFor(targetSeconds)

	g.logger.Info().
		Str("topic", topic).
		Int("target_seconds", targetSeconds).
		Int("body_sections", st.bodySections).
		Msg("generating script")

	content, err := g.llm.ChatCompletion(ctx, g.buildMessages(topic, targetSeconds, st), g.temperature, maxResponseTokens)
	if err != nil {
		return nil, fmt.Errorf("script generation: %w", err)
	}

	content = stripCodeFence(content)

	var wire wireScript
	if err := json.Unmarshal([]byte(content), &wire); err != nil {
		return nil, fmt.Errorf("script response is not valid JSON: %w; raw: %s", err, truncate(content, rawErrorLimit))
	}
	if err := g.validate.Struct(&wire); err != nil {
		return nil, fmt.Errorf("script response failed validation: %w; raw: %s", err, truncate(content, rawErrorLimit))
	}

	script := g.toScript(topic, category, &wire)
	if err := script.Validate(); err != nil {
		return nil, fmt.Errorf("assembled script invalid: %w", err)
	}

	g.logger.Info().
		Int("sections", len(script.Sections)).
		Int("words", script.WordCount()).
		Float64("estimated_seconds", script.EstimatedSeconds(WordsPerMinute)).
		Msg("script generated")

	return script, nil
}

// structureFor shapes the script for the target length: the intro takes
// roughly 12%, the outro roughly 10%, and the body splits the rest over
// three to five sections depending on total length.
func structureFor(duration int) structure {
	intro := int(float64(duration) * 0.12)
	if intro < 15 {
		intro = 15
	}
	outro := int(float64(duration) * 0.10)
	if outro < 15 {
		outro = 15
	}

	body := duration - intro - outro

	sections := 3
	switch {
	case duration > 480:
		sections = 5
	case duration > 240:
		sections = 4
	}

	return structure{
		introSeconds:   intro,
		outroSeconds:   outro,
		bodySections:   sections,
		sectionSeconds: body / sections,
		totalWords:     duration * WordsPerMinute / 60,
	}
}

func (g *Generator) buildMessages(topic string, duration int, st structure) []client.ChatMessage {
	system := "You are a children's educational scriptwriter for ages 4-8. " +
		"You write short sentences of 5-10 words at a grade 1-2 reading level, " +
		"in a warm conversational tone, present tense, with natural questions " +
		"sprinkled in. Never use complex vocabulary, scary topics, brand names " +
		"or copyrighted characters, and do not repeat filler praise words."
	if lang, ok := languageNames[g.language]; ok && g.language != "en" {
		system += fmt.Sprintf(" Write the entire script in %s.", lang)
	}

	user := fmt.Sprintf(`Write a complete narration script for a kids video.

TOPIC: %s

Video length: %d seconds, about %d words total.
Structure:
- intro (%ds): a hook that introduces the topic and builds curiosity
- %d body sections (about %ds each): one key idea per section
- outro (%ds): recap, positive message, gentle goodbye

Return ONLY valid JSON, no markdown and no code fences, in this exact shape:
{
  "intro": {"title": "Introduction", "duration_seconds": %d, "narration": "...", "visual_suggestions": ["...", "...", "..."]},
  "body_sections": [
    {"section_number": 1, "title": "...", "duration_seconds": %d, "narration": "...", "visual_suggestions": ["...", "...", "..."]}
  ],
  "outro": {"title": "Conclusion", "duration_seconds": %d, "narration": "...", "visual_suggestions": ["...", "..."]}
}

Every section needs three specific visual_suggestions describing what to
show on screen, like "A happy cartoon elephant splashing in a puddle"
rather than just "elephant". Narration length should match each section's
duration at roughly 2.5 words per second.`,
		topic, duration, st.totalWords,
		st.introSeconds, st.bodySections, st.sectionSeconds, st.outroSeconds,
		st.introSeconds, st.sectionSeconds, st.outroSeconds)

	return []client.ChatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}
}

// toScript maps the wire payload into the domain model, numbering
// sections by assembly order rather than trusting the model's numbers.
func (g *Generator) toScript(topic, category string, wire *wireScript) *models.Script {
	sections := make([]models.ScriptSection, 0, len(wire.BodySections)+2)

	sections = append(sections, models.ScriptSection{
		Position:      0,
		Title:         defaultTitle(wire.Intro.Title, "Introduction"),
		Narration:     strings.TrimSpace(wire.Intro.Narration),
		VisualHint:    visualHint(wire.Intro),
		TargetSeconds: clampSeconds(wire.Intro.DurationSeconds),
	})

	for i, body := range wire.BodySections {
		sections = append(sections, models.ScriptSection{
			Position:      i + 1,
			Title:         defaultTitle(body.Title, fmt.Sprintf("Part %d", i+1)),
			Narration:     strings.TrimSpace(body.Narration),
			VisualHint:    visualHint(body),
			TargetSeconds: clampSeconds(body.DurationSeconds),
		})
	}

	sections = append(sections, models.ScriptSection{
		Position:      len(sections),
		Title:         defaultTitle(wire.Outro.Title, "Conclusion"),
		Narration:     strings.TrimSpace(wire.Outro.Narration),
		VisualHint:    visualHint(wire.Outro),
		TargetSeconds: clampSeconds(wire.Outro.DurationSeconds),
	})

	return &models.Script{
		Topic:    topic,
		Category: category,
		Language: g.language,
		Sections: sections,
	}
}

// visualHint condenses a section's visual suggestions into the single
// description the asset acquirers consume.
func visualHint(s wireSection) string {
	suggestions := s.VisualSuggestions
	if len(suggestions) > 3 {
		suggestions = suggestions[:3]
	}

	parts := make([]string, 0, len(suggestions))
	for _, suggestion := range suggestions {
		if trimmed := strings.TrimSpace(suggestion); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	if len(parts) == 0 {
		return s.Title
	}
	return strings.Join(parts, ", ")
}

func clampSeconds(v float64) float64 {
	if v < MinSectionSeconds {
		return MinSectionSeconds
	}
	if v > MaxSectionSeconds {
		return MaxSectionSeconds
	}
	return v
}

func defaultTitle(title, fallback string) string {
	if strings.TrimSpace(title) == "" {
		return fallback
	}
	return title
}

// stripCodeFence unwraps a reply the model wrapped in markdown fences
// despite instructions.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	parts := strings.SplitN(s, "```", 3)
	if len(parts) < 2 {
		return s
	}
	inner := strings.TrimPrefix(parts[1], "json")
	return strings.TrimSpace(inner)
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
