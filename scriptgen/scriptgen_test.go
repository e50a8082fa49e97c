package scriptgen

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"kidreel/client"
)

type fakeLLM struct {
	response    string
	err         error
	gotMessages []client.ChatMessage
	gotTemp     float64
	gotMax      int
}

func (f *fakeLLM) ChatCompletion(ctx context.Context, messages []client.ChatMessage, temperature float64, maxTokens int) (string, error) {
	f.gotMessages = messages
	f.gotTemp = temperature
	f.gotMax = maxTokens
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

const sampleResponse = `{
	"intro": {
		"title": "Introduction",
		"duration_seconds": 25,
		"narration": "Hey friends! Do you love counting? Let us count together today.",
		"visual_suggestions": ["A smiling cartoon sun over a green meadow", "Three happy ducks in a row"]
	},
	"body_sections": [
		{
			"section_number": 1,
			"title": "One Two Three",
			"duration_seconds": 55,
			"narration": "Look at the apples. One apple. Two apples. Three apples!",
			"visual_suggestions": ["A basket with three shiny red apples"]
		},
		{
			"section_number": 2,
			"title": "Four Five Six",
			"duration_seconds": 120,
			"narration": "Now we count the balloons. Four. Five. Six balloons!",
			"visual_suggestions": []
		}
	],
	"outro": {
		"title": "Conclusion",
		"duration_seconds": 12,
		"narration": "Great job counting today! See you next time.",
		"visual_suggestions": ["Children waving goodbye under a rainbow"]
	}
}`

func TestGenerateParsesSections(t *testing.T) {
	llm := &fakeLLM{response: sampleResponse}
	g := NewGenerator(llm, zerolog.Nop())

	script, err := g.Generate(context.Background(), "Counting to Six", "numbers_counting", 300)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if script.Topic != "Counting to Six" {
		t.Errorf("Expected topic carried over, got %q", script.Topic)
	}
	if script.Category != "numbers_counting" {
		t.Errorf("Expected category carried over, got %q", script.Category)
	}
	if len(script.Sections) != 4 {
		t.Fatalf("Expected 4 sections, got %d", len(script.Sections))
	}
	for i, section := range script.Sections {
		if section.Position != i {
			t.Errorf("Section %d has position %d", i, section.Position)
		}
	}
	if script.Sections[0].Title != "Introduction" {
		t.Errorf("Expected intro first, got %q", script.Sections[0].Title)
	}
	if script.Sections[3].Title != "Conclusion" {
		t.Errorf("Expected outro last, got %q", script.Sections[3].Title)
	}

	if llm.gotTemp != 0.7 {
		t.Errorf("Expected default temperature 0.7, got %v", llm.gotTemp)
	}
	if llm.gotMax != 3000 {
		t.Errorf("Expected 3000 max tokens, got %d", llm.gotMax)
	}
}

func TestGenerateClampsDurations(t *testing.T) {
	g := NewGenerator(&fakeLLM{response: sampleResponse}, zerolog.Nop())

	script, err := g.Generate(context.Background(), "Counting to Six", "numbers_counting", 300)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	durations := script.SectionDurations()
	expected := []float64{25, 55, 90, 20}
	for i, want := range expected {
		if durations[i] != want {
			t.Errorf("Section %d: expected %.0f seconds, got %.0f", i, want, durations[i])
		}
	}
}

func TestGenerateBuildsVisualHints(t *testing.T) {
	g := NewGenerator(&fakeLLM{response: sampleResponse}, zerolog.Nop())

	script, err := g.Generate(context.Background(), "Counting to Six", "numbers_counting", 300)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	intro := script.Sections[0].VisualHint
	if intro != "A smiling cartoon sun over a green meadow, Three happy ducks in a row" {
		t.Errorf("Expected joined suggestions, got %q", intro)
	}

	// A section without suggestions falls back to its title.
	if script.Sections[2].VisualHint != "Four Five Six" {
		t.Errorf("Expected title fallback, got %q", script.Sections[2].VisualHint)
	}
}

func TestGeneratePromptCarriesStructure(t *testing.T) {
	llm := &fakeLLM{response: sampleResponse}
	g := NewGenerator(llm, zerolog.Nop())

	if _, err := g.Generate(context.Background(), "Counting to Six", "numbers_counting", 300); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if len(llm.gotMessages) != 2 {
		t.Fatalf("Expected system and user messages, got %d", len(llm.gotMessages))
	}
	if llm.gotMessages[0].Role != "system" {
		t.Errorf("Expected system message first, got %s", llm.gotMessages[0].Role)
	}

	user := llm.gotMessages[1].Content
	if !strings.Contains(user, "Counting to Six") {
		t.Error("Expected topic in prompt")
	}
	if !strings.Contains(user, "300 seconds") {
		t.Error("Expected duration in prompt")
	}
	if !strings.Contains(user, "600 words") {
		t.Error("Expected word budget in prompt")
	}
	if !strings.Contains(user, "4 body sections") {
		t.Error("Expected section count in prompt")
	}
	if !strings.Contains(user, "visual_suggestions") {
		t.Error("Expected JSON shape in prompt")
	}
}

func TestGenerateDefaultsDurationToMidpoint(t *testing.T) {
	llm := &fakeLLM{response: sampleResponse}
	g := NewGenerator(llm, zerolog.Nop())

	if _, err := g.Generate(context.Background(), "Counting to Six", "numbers_counting", 0); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !strings.Contains(llm.gotMessages[1].Content, "540 seconds") {
		t.Error("Expected midpoint duration of 540 seconds in prompt")
	}
}

func TestGenerateStripsCodeFence(t *testing.T) {
	fenced := "```json\n" + sampleResponse + "\n```"
	g := NewGenerator(&fakeLLM{response: fenced}, zerolog.Nop())

	script, err := g.Generate(context.Background(), "Counting to Six", "numbers_counting", 300)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(script.Sections) != 4 {
		t.Errorf("Expected 4 sections from fenced response, got %d", len(script.Sections))
	}
}

func TestGenerateRejectsShortTopic(t *testing.T) {
	g := NewGenerator(&fakeLLM{response: sampleResponse}, zerolog.Nop())

	_, err := g.Generate(context.Background(), "Cats", "animals_sounds", 300)
	if err == nil {
		t.Fatal("Expected error for short topic")
	}
	if !strings.Contains(err.Error(), "at least 5 characters") {
		t.Errorf("Expected topic length error, got: %v", err)
	}
}

func TestGenerateRejectsOutOfRangeDuration(t *testing.T) {
	g := NewGenerator(&fakeLLM{response: sampleResponse}, zerolog.Nop())

	for _, duration := range []int{60, 1200} {
		_, err := g.Generate(context.Background(), "Counting to Six", "numbers_counting", duration)
		if err == nil {
			t.Fatalf("Expected error for duration %d", duration)
		}
		if !strings.Contains(err.Error(), "between 180 and 900") {
			t.Errorf("Expected range error for %d, got: %v", duration, err)
		}
	}
}

func TestGenerateInvalidJSONKeepsRaw(t *testing.T) {
	g := NewGenerator(&fakeLLM{response: "Sorry, I cannot write that script."}, zerolog.Nop())

	_, err := g.Generate(context.Background(), "Counting to Six", "numbers_counting", 300)
	if err == nil {
		t.Fatal("Expected error for non-JSON response")
	}
	if !strings.Contains(err.Error(), "not valid JSON") {
		t.Errorf("Expected JSON error, got: %v", err)
	}
	if !strings.Contains(err.Error(), "Sorry, I cannot") {
		t.Errorf("Expected raw response preserved in error, got: %v", err)
	}
}

func TestGenerateMissingNarrationFailsValidation(t *testing.T) {
	response := `{
		"intro": {"title": "Introduction", "duration_seconds": 25, "narration": "", "visual_suggestions": []},
		"body_sections": [{"section_number": 1, "title": "Part", "duration_seconds": 50, "narration": "Words here.", "visual_suggestions": []}],
		"outro": {"title": "Conclusion", "duration_seconds": 20, "narration": "Bye bye now!", "visual_suggestions": []}
	}`
	g := NewGenerator(&fakeLLM{response: response}, zerolog.Nop())

	_, err := g.Generate(context.Background(), "Counting to Six", "numbers_counting", 300)
	if err == nil {
		t.Fatal("Expected error for missing narration")
	}
	if !strings.Contains(err.Error(), "failed validation") {
		t.Errorf("Expected validation error, got: %v", err)
	}
}

func TestGenerateEmptyBodyFailsValidation(t *testing.T) {
	response := `{
		"intro": {"title": "Introduction", "duration_seconds": 25, "narration": "Hello friends!", "visual_suggestions": []},
		"body_sections": [],
		"outro": {"title": "Conclusion", "duration_seconds": 20, "narration": "Bye bye now!", "visual_suggestions": []}
	}`
	g := NewGenerator(&fakeLLM{response: response}, zerolog.Nop())

	_, err := g.Generate(context.Background(), "Counting to Six", "numbers_counting", 300)
	if err == nil {
		t.Fatal("Expected error for empty body sections")
	}
	if !strings.Contains(err.Error(), "failed validation") {
		t.Errorf("Expected validation error, got: %v", err)
	}
}

func TestGenerateLLMErrorPropagates(t *testing.T) {
	g := NewGenerator(&fakeLLM{err: fmt.Errorf("rate limited")}, zerolog.Nop())

	_, err := g.Generate(context.Background(), "Counting to Six", "numbers_counting", 300)
	if err == nil {
		t.Fatal("Expected error when the LLM call fails")
	}
	if !strings.Contains(err.Error(), "rate limited") {
		t.Errorf("Expected cause preserved, got: %v", err)
	}
}

func TestStructureFor(t *testing.T) {
	tests := []struct {
		duration int
		intro    int
		outro    int
		sections int
		section  int
		words    int
	}{
		{180, 21, 18, 3, 47, 360},
		{240, 28, 24, 3, 62, 480},
		{300, 36, 30, 4, 58, 600},
		{600, 72, 60, 5, 93, 1200},
		{900, 108, 90, 5, 140, 1800},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%ds", tt.duration), func(t *testing.T) {
			st := structureFor(tt.duration)
			if st.introSeconds != tt.intro {
				t.Errorf("Expected intro %d, got %d", tt.intro, st.introSeconds)
			}
			if st.outroSeconds != tt.outro {
				t.Errorf("Expected outro %d, got %d", tt.outro, st.outroSeconds)
			}
			if st.bodySections != tt.sections {
				t.Errorf("Expected %d body sections, got %d", tt.sections, st.bodySections)
			}
			if st.sectionSeconds != tt.section {
				t.Errorf("Expected section length %d, got %d", tt.section, st.sectionSeconds)
			}
			if st.totalWords != tt.words {
				t.Errorf("Expected %d words, got %d", tt.words, st.totalWords)
			}
		})
	}
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain json", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"leading whitespace", "  \n```json\n{\"a\":1}\n```", `{"a":1}`},
		{"unclosed fence", "```json\n{\"a\":1}", `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripCodeFence(tt.input); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}
