// Package timeline turns a probed narration duration, advisory script
// section durations, and a visual asset count into per-asset display
// durations with cumulative offsets.
//
// Three strategies cover the possible shapes of the input. When the
// section list matches the asset count they map one to one; when assets
// outnumber sections each section's time is subdivided across its
// share of assets with a small random variation so the pacing does not
// feel mechanical; when sections outnumber assets (or are missing
// entirely) the narration is split evenly. Section durations are
// advisory: they are always rescaled against the probed narration
// length before use.
package timeline

import (
	"fmt"
	"math"
	"math/rand"

	"kidreel/models"
)

// Branch identifies which allocation strategy produced a plan.
type Branch string

const (
	// BranchExactMatch maps one section duration to one asset.
	BranchExactMatch Branch = "exact-match"
	// BranchSubdivided spreads section durations across multiple assets.
	BranchSubdivided Branch = "subdivided"
	// BranchEqualSplit divides the narration evenly, used when section
	// data is missing or there are fewer assets than sections.
	BranchEqualSplit Branch = "equal-split"
)

// Jitter bounds for the subdivided branch. Each per-asset duration is
// multiplied by a factor in this range and deliberately not
// renormalized afterwards; the resulting drift is bounded by the range
// and preferred over mechanically uniform pacing.
const (
	jitterMin = 0.8
	jitterMax = 1.2
)

// Plan is a complete allocation: one entry per asset, in asset order.
type Plan struct {
	Entries []models.TimelineEntry
	Branch  Branch
}

// TotalDuration returns the sum of all assigned durations.
func (p *Plan) TotalDuration() float64 {
	total := 0.0
	for _, e := range p.Entries {
		total += e.Duration
	}
	return total
}

// Durations returns just the assigned durations, in asset order.
func (p *Plan) Durations() []float64 {
	out := make([]float64, len(p.Entries))
	for i, e := range p.Entries {
		out[i] = e.Duration
	}
	return out
}

// Allocate computes a display-duration plan for assetCount assets over
// a narration of totalDuration seconds. sectionDurations are the
// script's advisory per-section lengths and may be empty. rng feeds
// the organic variation in the subdivided branch; a nil rng disables
// variation, which makes the plan fully deterministic.
func Allocate(totalDuration float64, sectionDurations []float64, assetCount int, rng *rand.Rand) (*Plan, error) {
	if assetCount <= 0 {
		return nil, fmt.Errorf("allocation requires at least one visual asset, got %d", assetCount)
	}
	if totalDuration <= 0 {
		return nil, fmt.Errorf("narration duration must be positive, got %.3f", totalDuration)
	}

	durations, branch, ok := allocateFromSections(totalDuration, sectionDurations, assetCount, rng)
	if !ok {
		durations = equalSplit(totalDuration, assetCount)
		branch = BranchEqualSplit
	}

	return &Plan{Entries: buildEntries(durations), Branch: branch}, nil
}

// allocateFromSections tries the two section-driven strategies. It
// reports ok=false when section data cannot drive the allocation, in
// which case the caller falls back to an equal split.
func allocateFromSections(totalDuration float64, sectionDurations []float64, assetCount int, rng *rand.Rand) ([]float64, Branch, bool) {
	sectionCount := len(sectionDurations)
	if sectionCount == 0 {
		return nil, "", false
	}

	sum := 0.0
	for _, d := range sectionDurations {
		if d < 0 {
			return nil, "", false
		}
		sum += d
	}
	if sum <= 0 {
		return nil, "", false
	}

	// Probed narration length is ground truth; section durations only
	// define proportions.
	scale := totalDuration / sum
	scaled := make([]float64, sectionCount)
	for i, d := range sectionDurations {
		scaled[i] = d * scale
	}

	if sectionCount == assetCount {
		return scaled, BranchExactMatch, true
	}

	if assetCount > sectionCount {
		return subdivide(scaled, assetCount, rng), BranchSubdivided, true
	}

	// Fewer assets than sections: no sensible mapping, equal split.
	return nil, "", false
}

// subdivide spreads each section's duration across its share of the
// assets. The last section absorbs every asset the earlier rounding
// left unassigned, which guarantees it at least one.
func subdivide(sectionDurations []float64, assetCount int, rng *rand.Rand) []float64 {
	sectionCount := len(sectionDurations)
	assetsPerSection := float64(assetCount) / float64(sectionCount)

	durations := make([]float64, 0, assetCount)
	assigned := 0

	for i, sectionDur := range sectionDurations {
		var share int
		if i == sectionCount-1 {
			share = assetCount - assigned
		} else {
			share = int(math.Round(float64(i+1)*assetsPerSection)) - assigned
			if share < 1 {
				share = 1
			}
		}

		perAsset := sectionDur / float64(share)
		for j := 0; j < share; j++ {
			durations = append(durations, perAsset*jitterFactor(rng))
		}
		assigned += share
	}

	return durations
}

func jitterFactor(rng *rand.Rand) float64 {
	if rng == nil {
		return 1.0
	}
	return jitterMin + rng.Float64()*(jitterMax-jitterMin)
}

func equalSplit(totalDuration float64, assetCount int) []float64 {
	per := totalDuration / float64(assetCount)
	durations := make([]float64, assetCount)
	for i := range durations {
		durations[i] = per
	}
	return durations
}

// buildEntries attaches cumulative offsets: each entry starts where the
// previous one ended.
func buildEntries(durations []float64) []models.TimelineEntry {
	entries := make([]models.TimelineEntry, len(durations))
	offset := 0.0
	for i, d := range durations {
		entries[i] = models.TimelineEntry{Duration: d, Offset: offset}
		offset += d
	}
	return entries
}
