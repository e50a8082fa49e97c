package voiceover

import (
	"regexp"
	"strings"
	"unicode"
)

// MaxCharsPerRequest is the largest text a single synthesis request may carry.
const MaxCharsPerRequest = 5000

const minTextLength = 10

var sentenceEnding = regexp.MustCompile(`([.!?])(\s)`)

// InsertPauses adds an audible beat after every sentence ending so the
// narration does not rush. The ellipsis reads as a short pause on every
// TTS voice tried so far.
func InsertPauses(text string) string {
	return sentenceEnding.ReplaceAllString(text, "$1 ... $2")
}

// ChunkText splits text into chunks of at most maxChars, breaking only at
// sentence boundaries. A single sentence longer than maxChars becomes its
// own oversized chunk rather than being cut mid-sentence.
func ChunkText(text string, maxChars int) []string {
	sentences := splitSentences(text)

	var chunks []string
	current := ""

	for _, sentence := range sentences {
		if len(current)+len(sentence) > maxChars {
			if current != "" {
				chunks = append(chunks, strings.TrimSpace(current))
			}
			current = sentence
		} else if current != "" {
			current = current + " " + sentence
		} else {
			current = sentence
		}
	}

	if current != "" {
		chunks = append(chunks, strings.TrimSpace(current))
	}

	return chunks
}

// splitSentences breaks text after each ., ! or ? that is followed by
// whitespace. The punctuation stays with its sentence; the separating
// whitespace is dropped.
func splitSentences(text string) []string {
	var sentences []string
	var b strings.Builder

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		b.WriteRune(r)

		if (r == '.' || r == '!' || r == '?') && i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
			sentences = append(sentences, b.String())
			b.Reset()
			for i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
				i++
			}
		}
	}

	if b.Len() > 0 {
		sentences = append(sentences, b.String())
	}

	return sentences
}
