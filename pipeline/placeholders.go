package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"kidreel/mediatool"
	"kidreel/models"
	"kidreel/topics"
)

// placeholderNarrationSeconds is the length of the silent track test
// mode substitutes for TTS output. Long enough to clear the minimum
// narration check with room for several timeline entries.
const placeholderNarrationSeconds = 30

// slideColors are the backdrop colors for placeholder slides, cycled
// in order so consecutive slides are visually distinct.
var slideColors = []string{
	"steelblue", "mediumseagreen", "indianred", "goldenrod", "mediumpurple",
}

// placeholderScript is the built-in script test mode falls back to when
// no LLM is configured. Content is fixed; only the topic varies.
func placeholderScript(selection *topics.Selection, targetSeconds int) *models.Script {
	sectionSeconds := float64(targetSeconds) / 3

	narrations := []struct {
		title, text string
	}{
		{"Welcome", "Hello little friends! Today we are going to learn all about " +
			selection.Topic + ". Are you ready? Let's go!"},
		{"Let's Explore", "Look at that! " + selection.Topic + " is so much fun to learn. " +
			"Can you say it with me? Great job! You are doing wonderfully."},
		{"Great Job", "Wow, you learned so much today about " + selection.Topic + ". " +
			"You are so smart! See you next time for another fun adventure. Bye bye!"},
	}

	sections := make([]models.ScriptSection, len(narrations))
	for i, n := range narrations {
		sections[i] = models.ScriptSection{
			Position:      i,
			Title:         n.title,
			Narration:     n.text,
			TargetSeconds: sectionSeconds,
		}
	}

	return &models.Script{
		Topic:    selection.Topic,
		Category: selection.CategoryKey,
		Language: selection.Language,
		Sections: sections,
	}
}

// placeholderImages renders one solid-color slide per script section
// with the encoder's lavfi color source, keeping test mode fully
// offline.
func (p *Pipeline) placeholderImages(ctx context.Context, script *models.Script, dir string) ([]models.VisualAsset, error) {
	vc := p.cfg.Video
	assets := make([]models.VisualAsset, 0, len(script.Sections))

	for i := range script.Sections {
		path := filepath.Join(dir, fmt.Sprintf("slide_%02d.png", i))
		color := slideColors[i%len(slideColors)]
		args := []string{
			"-y",
			"-f", "lavfi",
			"-i", fmt.Sprintf("color=c=%s:s=%dx%d", color, vc.Width, vc.Height),
			"-frames:v", "1",
			path,
		}
		if err := p.gateway.Encode(ctx, mediatool.EncodeRequest{Args: args}); err != nil {
			return nil, fmt.Errorf("render placeholder slide %d: %w", i, err)
		}
		assets = append(assets, models.VisualAsset{
			Position: i,
			Kind:     models.AssetImage,
			Path:     path,
		})
	}
	return assets, nil
}

// placeholderNarration writes a silent audio track via the encoder's
// anullsrc source.
func (p *Pipeline) placeholderNarration(ctx context.Context, outputPath string) error {
	args := []string{
		"-y",
		"-f", "lavfi",
		"-i", fmt.Sprintf("anullsrc=r=%d:cl=stereo", p.cfg.Audio.SampleRate),
		"-t", fmt.Sprintf("%d", placeholderNarrationSeconds),
		"-b:a", p.cfg.Audio.Bitrate,
		outputPath,
	}
	if err := p.gateway.Encode(ctx, mediatool.EncodeRequest{Args: args}); err != nil {
		return fmt.Errorf("render silent narration: %w", err)
	}
	return nil
}
