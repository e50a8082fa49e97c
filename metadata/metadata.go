// Package metadata derives the upload-facing title, description and
// tags for a finished video. The LLM writes them when it can; a
// deterministic template takes over when it cannot, so metadata
// generation never sinks a run that already produced a video.
package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"kidreel/client"
	"kidreel/internal/fsutil"
	"kidreel/models"
)

const (
	maxResponseTokens = 800
	rawErrorLimit     = 300
)

// baseTags are always present so channel search behavior stays stable
// across runs regardless of what the model returns.
var baseTags = []string{
	"kids learning", "educational video", "toddler learning",
	"preschool", "kids education",
}

// ChatCompleter is the LLM call metadata generation depends on.
type ChatCompleter interface {
	ChatCompletion(ctx context.Context, messages []client.ChatMessage, temperature float64, maxTokens int) (string, error)
}

// wireMetadata mirrors the model's JSON reply.
type wireMetadata struct {
	Title       string   `json:"title" validate:"required,max=100"`
	Description string   `json:"description" validate:"required"`
	Tags        []string `json:"tags" validate:"min=1,dive,required"`
}

// Generator produces upload metadata through an LLM client.
type Generator struct {
	llm         ChatCompleter
	validate    *validator.Validate
	logger      zerolog.Logger
	temperature float64

	categoryID    string
	privacyStatus string
	madeForKids   bool
}

// NewGenerator wires a Generator to an LLM client. A nil llm is
// allowed; generation then always uses the template fallback.
func NewGenerator(llm ChatCompleter, logger zerolog.Logger) *Generator {
	return &Generator{
		llm:         llm,
		validate:    validator.New(),
		logger:      logger.With().Str("component", "metadata").Logger(),
		temperature: 0.7,

		categoryID:    "27",
		privacyStatus: "private",
		madeForKids:   true,
	}
}

// SetUploadDefaults sets the platform fields stamped onto every result.
func (g *Generator) SetUploadDefaults(categoryID, privacyStatus string, madeForKids bool) *Generator {
	if categoryID != "" {
		g.categoryID = categoryID
	}
	if privacyStatus != "" {
		g.privacyStatus = privacyStatus
	}
	g.madeForKids = madeForKids
	return g
}

// Generate builds metadata for the script's video. It never fails:
// when the LLM is unavailable or returns an unusable payload the
// deterministic template is used instead, and the returned warning
// says why. The result is always clamped to platform limits and valid.
func (g *Generator) Generate(ctx context.Context, script *models.Script) (*models.VideoMetadata, *models.Warning) {
	meta, warning := g.fromLLM(ctx, script)
	if meta == nil {
		meta = g.fromTemplate(script)
	}

	meta.CategoryID = g.categoryID
	meta.PrivacyStatus = g.privacyStatus
	meta.MadeForKids = g.madeForKids
	meta.Language = script.Language
	meta.Tags = mergeTags(meta.Tags, baseTags)
	meta.ClampToLimits()

	if err := meta.Validate(); err != nil {
		// The template plus clamping should always validate; if it
		// does not, fall back to the bare minimum rather than fail.
		g.logger.Warn().Err(err).Msg("clamped metadata still invalid, using template")
		meta = g.fromTemplate(script)
		meta.CategoryID = g.categoryID
		meta.PrivacyStatus = g.privacyStatus
		meta.MadeForKids = g.madeForKids
		meta.Language = script.Language
		meta.ClampToLimits()
		if warning == nil {
			w := models.NewWarning("metadata", "generated metadata invalid, template used: %v", err)
			warning = &w
		}
	}

	g.logger.Info().
		Str("title", meta.Title).
		Int("tags", len(meta.Tags)).
		Bool("from_llm", warning == nil && g.llm != nil).
		Msg("metadata ready")

	return meta, warning
}

// fromLLM asks the model for metadata. Returns nil when the template
// should be used instead, with a warning explaining why.
func (g *Generator) fromLLM(ctx context.Context, script *models.Script) (*models.VideoMetadata, *models.Warning) {
	if g.llm == nil {
		w := models.NewWarning("metadata", "no LLM configured, template metadata used")
		return nil, &w
	}

	raw, err := g.llm.ChatCompletion(ctx, g.buildMessages(script), g.temperature, maxResponseTokens)
	if err != nil {
		g.logger.Warn().Err(err).Msg("metadata request failed, using template")
		w := models.NewWarning("metadata", "LLM metadata failed, template used: %v", err)
		return nil, &w
	}

	var wire wireMetadata
	cleaned := stripCodeFence(raw)
	if err := json.Unmarshal([]byte(cleaned), &wire); err != nil {
		g.logger.Warn().Err(err).Msg("metadata reply was not valid JSON, using template")
		w := models.NewWarning("metadata", "unparsable LLM metadata, template used: %v (payload: %s)",
			err, truncate(cleaned, rawErrorLimit))
		return nil, &w
	}
	if err := g.validate.Struct(&wire); err != nil {
		g.logger.Warn().Err(err).Msg("metadata reply failed validation, using template")
		w := models.NewWarning("metadata", "invalid LLM metadata, template used: %v (payload: %s)",
			err, truncate(cleaned, rawErrorLimit))
		return nil, &w
	}

	return &models.VideoMetadata{
		Title:       strings.TrimSpace(wire.Title),
		Description: strings.TrimSpace(wire.Description),
		Tags:        wire.Tags,
	}, nil
}

func (g *Generator) buildMessages(script *models.Script) []client.ChatMessage {
	var sections strings.Builder
	for _, s := range script.Sections {
		if s.Title != "" {
			sections.WriteString("- " + s.Title + "\n")
		}
	}

	system := "You write YouTube metadata for educational videos aimed at " +
		"children aged 2-6 and their parents. Reply with JSON only, no prose, " +
		"no markdown fences."

	user := fmt.Sprintf(`Write upload metadata for a kids video.

Topic: %s
Sections covered:
%s
Return a JSON object:
{
  "title": "engaging title under 90 characters, include the topic",
  "description": "2-3 friendly paragraphs for parents, what the child will learn, end with a call to subscribe",
  "tags": ["8-12 short search tags"]
}`, script.Topic, sections.String())

	return []client.ChatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}
}

// fromTemplate builds deterministic metadata from the script alone.
func (g *Generator) fromTemplate(script *models.Script) *models.VideoMetadata {
	var learn strings.Builder
	for _, s := range script.Sections {
		if s.Title != "" {
			learn.WriteString("• " + s.Title + "\n")
		}
	}

	description := fmt.Sprintf(
		"%s — a fun learning video for toddlers and preschoolers!\n\n"+
			"In this video your child will explore:\n%s\n"+
			"Made for curious little learners aged 2-6.\n\n"+
			"Subscribe for a new learning adventure every week!",
		script.Topic, learn.String())

	return &models.VideoMetadata{
		Title:       fmt.Sprintf("%s | Fun Learning for Kids", script.Topic),
		Description: description,
		Tags:        topicTags(script.Topic),
	}
}

// WriteSidecar stores the metadata as a JSON file next to the video.
func WriteSidecar(path string, meta *models.VideoMetadata) error {
	if err := fsutil.WriteJSONAtomic(path, meta); err != nil {
		return fmt.Errorf("write metadata sidecar: %w", err)
	}
	return nil
}

// topicTags derives tags from the topic's significant words.
func topicTags(topic string) []string {
	var tags []string
	for _, word := range strings.Fields(strings.ToLower(topic)) {
		word = strings.Trim(word, ".,!?:;'\"")
		if len(word) > 3 {
			tags = append(tags, word)
		}
	}
	return tags
}

// mergeTags appends extras not already present, case-insensitively.
func mergeTags(tags, extras []string) []string {
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		seen[strings.ToLower(t)] = true
	}
	for _, e := range extras {
		if !seen[strings.ToLower(e)] {
			tags = append(tags, e)
			seen[strings.ToLower(e)] = true
		}
	}
	return tags
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "…"
}
