// Package topics selects what the next video teaches. Selection is a
// weighted random draw over a controlled category list, with weights
// reduced for recently used categories so consecutive runs do not
// repeat themselves. Every pick lands in a small JSON history file.
package topics

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"kidreel/internal/fsutil"
)

const (
	maxHistory   = 50
	recentWindow = 5

	// repeatPenalty is subtracted from a category's weight once per
	// recent use, floored at 1 so nothing becomes unselectable.
	repeatPenalty = 3
)

// Selection is one chosen topic, as stored in the history file.
type Selection struct {
	Topic       string    `json:"topic"`
	Category    string    `json:"category"`
	CategoryKey string    `json:"category_key"`
	AgeGroup    string    `json:"age_group"`
	Language    string    `json:"language"`
	Timestamp   time.Time `json:"timestamp"`
}

// Selector draws topics and maintains the selection history.
type Selector struct {
	historyPath string
	catalog     []Category
	language    string
	rng         *rand.Rand
	logger      zerolog.Logger
	now         func() time.Time
}

// NewSelector creates a Selector persisting history at historyPath.
func NewSelector(historyPath string, logger zerolog.Logger) *Selector {
	return &Selector{
		historyPath: historyPath,
		catalog:     Catalog(),
		language:    "en",
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:      logger.With().Str("component", "topics").Logger(),
		now:         time.Now,
	}
}

// SetLanguage restricts selection to categories for the language code
// ("en", "hi", or "both").
func (s *Selector) SetLanguage(lang string) *Selector {
	if lang != "" {
		s.language = lang
	}
	return s
}

// SetRand replaces the random source, pinning selection for tests.
func (s *Selector) SetRand(rng *rand.Rand) *Selector {
	if rng != nil {
		s.rng = rng
	}
	return s
}

// Select draws one topic, appends it to the history and returns it.
func (s *Selector) Select() (*Selection, error) {
	history := s.loadHistory()

	categories := s.filterByLanguage()
	if len(categories) == 0 {
		return nil, fmt.Errorf("no topic categories available for language %s", s.language)
	}

	weights := categoryWeights(categories, history)
	category := categories[s.pick(weights)]
	topic := s.buildTopic(category)

	language := "English"
	if category.Key == "hindi_alphabet" {
		language = "Hindi"
	}

	selection := Selection{
		Topic:       topic,
		Category:    displayName(category.Key),
		CategoryKey: category.Key,
		AgeGroup:    "2-6 years",
		Language:    language,
		Timestamp:   s.now(),
	}

	history = append(history, selection)
	if len(history) > maxHistory {
		history = history[len(history)-maxHistory:]
	}
	if err := s.saveHistory(history); err != nil {
		// A selection is still usable without its history entry.
		s.logger.Warn().Err(err).Msg("could not save topic history")
	}

	s.logger.Info().
		Str("topic", selection.Topic).
		Str("category", selection.CategoryKey).
		Msg("topic selected")

	return &selection, nil
}

// RecentTopics returns up to count most recent topic titles, oldest first.
func (s *Selector) RecentTopics(count int) []string {
	history := s.loadHistory()
	if len(history) > count {
		history = history[len(history)-count:]
	}
	topics := make([]string, len(history))
	for i, h := range history {
		topics[i] = h.Topic
	}
	return topics
}

func (s *Selector) filterByLanguage() []Category {
	switch s.language {
	case "hi":
		filtered := make([]Category, 0, len(s.catalog))
		for _, cat := range s.catalog {
			if hindiCategories[cat.Key] {
				filtered = append(filtered, cat)
			}
		}
		return filtered
	case "en":
		filtered := make([]Category, 0, len(s.catalog))
		for _, cat := range s.catalog {
			if cat.Key != "hindi_alphabet" {
				filtered = append(filtered, cat)
			}
		}
		return filtered
	default:
		return s.catalog
	}
}

// categoryWeights computes draw weights, penalizing categories that
// appear in the recent history window.
func categoryWeights(categories []Category, history []Selection) []int {
	recent := history
	if len(recent) > recentWindow {
		recent = recent[len(recent)-recentWindow:]
	}

	weights := make([]int, len(categories))
	for i, cat := range categories {
		count := 0
		for _, h := range recent {
			if h.CategoryKey == cat.Key {
				count++
			}
		}

		weight := cat.Weight - count*repeatPenalty
		if weight < 1 {
			weight = 1
		}
		weights[i] = weight
	}
	return weights
}

func (s *Selector) pick(weights []int) int {
	total := 0
	for _, w := range weights {
		total += w
	}

	n := s.rng.Intn(total)
	for i, w := range weights {
		n -= w
		if n < 0 {
			return i
		}
	}
	return len(weights) - 1
}

// buildTopic fills a randomly chosen template from the category's pools.
func (s *Selector) buildTopic(cat Category) string {
	template := cat.Templates[s.rng.Intn(len(cat.Templates))]
	out := template

	if cat.LetterWords != nil && strings.Contains(out, "{letter}") {
		letters := sortedKeys(cat.LetterWords)
		letter := letters[s.rng.Intn(len(letters))]
		words := cat.LetterWords[letter]
		word := words[s.rng.Intn(len(words))]

		out = strings.ReplaceAll(out, "{letter_lower}", strings.ToLower(letter))
		out = strings.ReplaceAll(out, "{letter}", letter)
		out = strings.ReplaceAll(out, "{word}", word)
	}

	if len(cat.Ranges) > 0 && strings.Contains(out, "{start}") {
		r := cat.Ranges[s.rng.Intn(len(cat.Ranges))]
		out = strings.ReplaceAll(out, "{start}", strconv.Itoa(r[0]))
		out = strings.ReplaceAll(out, "{end}", strconv.Itoa(r[1]))
	}

	if strings.Contains(out, "{item}") {
		// Fruit templates advertise fruit; everything else draws from
		// the vegetable pool.
		pool := cat.Slots["vegetables"]
		if strings.Contains(strings.ToLower(template), "fruit") {
			pool = cat.Slots["fruits"]
		}
		if len(pool) > 0 {
			out = strings.ReplaceAll(out, "{item}", pool[s.rng.Intn(len(pool))])
		}
	}

	for _, name := range sortedKeys(cat.Slots) {
		placeholder := "{" + name + "}"
		if !strings.Contains(out, placeholder) {
			continue
		}
		pool := cat.Slots[name]
		out = strings.ReplaceAll(out, placeholder, pool[s.rng.Intn(len(pool))])
	}

	return out
}

func (s *Selector) loadHistory() []Selection {
	data, err := os.ReadFile(s.historyPath)
	if err != nil {
		return nil
	}

	var history []Selection
	if err := json.Unmarshal(data, &history); err != nil {
		s.logger.Warn().Err(err).Msg("topic history unreadable, starting fresh")
		return nil
	}
	return history
}

func (s *Selector) saveHistory(history []Selection) error {
	if err := fsutil.EnsureDir(filepath.Dir(s.historyPath)); err != nil {
		return err
	}
	return fsutil.WriteJSONAtomic(s.historyPath, history)
}

func displayName(key string) string {
	words := strings.Split(key, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
