package models

import (
	"fmt"
	"strings"
)

// AssetKind distinguishes still images from short video clips.
type AssetKind string

const (
	AssetImage AssetKind = "image" // still image, held on screen with a zoom ramp
	AssetClip  AssetKind = "clip"  // short video clip, looped/trimmed to its slot
)

// VisualAsset is one visual resource on the timeline: a file path, its
// position in the ordered input sequence, and its kind.
//
// Assets carry no intrinsic display duration. Durations are assigned by
// the timeline allocator. The sequence must never be reordered once
// handed to the allocator: position encodes narrative order and drives
// transition placement.
type VisualAsset struct {
	Position int       `json:"position"`
	Kind     AssetKind `json:"kind"`
	Path     string    `json:"path"`
}

// NewVisualAsset creates a validated VisualAsset.
func NewVisualAsset(position int, kind AssetKind, path string) (*VisualAsset, error) {
	a := &VisualAsset{Position: position, Kind: kind, Path: path}
	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("invalid asset: %w", err)
	}
	return a, nil
}

// Validate checks the asset fields for structural problems. It does not
// touch the filesystem; existence checks belong to the filter-graph
// builder, which fails fast on missing files.
func (a *VisualAsset) Validate() error {
	if a.Position < 0 {
		return fmt.Errorf("position cannot be negative")
	}
	if a.Kind != AssetImage && a.Kind != AssetClip {
		return fmt.Errorf("unknown asset kind %q", a.Kind)
	}
	if strings.TrimSpace(a.Path) == "" {
		return fmt.Errorf("path cannot be empty")
	}
	return nil
}

// ValidateAssetSequence checks an ordered asset list: non-empty,
// sequential positions from zero, and a single uniform kind (the
// builders compose either an image reel or a clip reel, never a mix).
func ValidateAssetSequence(assets []VisualAsset) error {
	if len(assets) == 0 {
		return fmt.Errorf("asset list is empty")
	}

	kind := assets[0].Kind
	for i := range assets {
		if err := assets[i].Validate(); err != nil {
			return fmt.Errorf("asset %d: %w", i, err)
		}
		if assets[i].Position != i {
			return fmt.Errorf("asset %d has position %d, expected %d", i, assets[i].Position, i)
		}
		if assets[i].Kind != kind {
			return fmt.Errorf("asset %d has kind %s, expected %s (mixed kinds are not supported)", i, assets[i].Kind, kind)
		}
	}
	return nil
}
