package models

import (
	"fmt"
	"strings"
	"time"
)

// Platform limits enforced on upload metadata.
const (
	TitleMaxLen       = 100
	DescriptionMaxLen = 5000
	TagsMaxTotalLen   = 500
)

// VideoMetadata is the upload-facing description of a finished video.
type VideoMetadata struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Tags          []string `json:"tags"`
	CategoryID    string   `json:"category_id"`
	PrivacyStatus string   `json:"privacy_status"`
	MadeForKids   bool     `json:"made_for_kids"`
	Language      string   `json:"language,omitempty"`
}

// Validate checks the metadata against platform limits.
func (m *VideoMetadata) Validate() error {
	if strings.TrimSpace(m.Title) == "" {
		return fmt.Errorf("title cannot be empty")
	}
	if len(m.Title) > TitleMaxLen {
		return fmt.Errorf("title exceeds %d characters", TitleMaxLen)
	}
	if len(m.Description) > DescriptionMaxLen {
		return fmt.Errorf("description exceeds %d characters", DescriptionMaxLen)
	}
	if total := m.tagsTotalLen(); total > TagsMaxTotalLen {
		return fmt.Errorf("tags total %d characters, limit is %d", total, TagsMaxTotalLen)
	}
	switch m.PrivacyStatus {
	case "public", "private", "unlisted":
	default:
		return fmt.Errorf("invalid privacy_status %q", m.PrivacyStatus)
	}
	return nil
}

// ClampToLimits trims the title, description and tag list in place until
// they fit the platform limits, dropping whole tags from the end rather
// than truncating individual tags.
func (m *VideoMetadata) ClampToLimits() {
	m.Title = strings.TrimSpace(m.Title)
	if len(m.Title) > TitleMaxLen {
		m.Title = strings.TrimSpace(m.Title[:TitleMaxLen])
	}
	if len(m.Description) > DescriptionMaxLen {
		m.Description = m.Description[:DescriptionMaxLen]
	}
	for m.tagsTotalLen() > TagsMaxTotalLen && len(m.Tags) > 0 {
		m.Tags = m.Tags[:len(m.Tags)-1]
	}
}

func (m *VideoMetadata) tagsTotalLen() int {
	total := 0
	for _, tag := range m.Tags {
		total += len(tag)
	}
	return total
}

// RunRecord is one entry in the flat-file run history: what was made,
// from which topic, and how degraded the run was.
type RunRecord struct {
	ID        string    `json:"id"`
	Topic     string    `json:"topic"`
	Category  string    `json:"category"`
	Language  string    `json:"language,omitempty"`
	VideoPath string    `json:"video_path,omitempty"`
	UploadID  string    `json:"upload_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Warnings  []string  `json:"warnings,omitempty"`
}
