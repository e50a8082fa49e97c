package workspace

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"kidreel/internal/fsutil"
	"kidreel/models"
)

// maxHistoryRecords caps the run history file, oldest entries first out.
const maxHistoryRecords = 50

// historyFile is the run history filename inside the output root.
const historyFile = "run_history.json"

// HistoryPath returns the run history location for an output directory.
func HistoryPath(outputDir string) string {
	return filepath.Join(outputDir, historyFile)
}

// History is the flat-file log of completed runs.
type History struct {
	path   string
	logger zerolog.Logger
}

// NewHistory creates a History persisting records at path.
func NewHistory(path string, logger zerolog.Logger) *History {
	return &History{
		path:   path,
		logger: logger.With().Str("component", "history").Logger(),
	}
}

// Append adds a run record to the history file, trimming it to the
// newest maxHistoryRecords entries. The rewrite is atomic, so a crash
// mid-write never corrupts the file.
func (h *History) Append(record models.RunRecord) error {
	records := h.Records()
	records = append(records, record)
	if len(records) > maxHistoryRecords {
		records = records[len(records)-maxHistoryRecords:]
	}

	if err := fsutil.EnsureDir(filepath.Dir(h.path)); err != nil {
		return err
	}
	return fsutil.WriteJSONAtomic(h.path, records)
}

// Records returns all stored run records, oldest first. A missing or
// unreadable file yields an empty history rather than an error.
func (h *History) Records() []models.RunRecord {
	data, err := os.ReadFile(h.path)
	if err != nil {
		return nil
	}
	var records []models.RunRecord
	if err := json.Unmarshal(data, &records); err != nil {
		h.logger.Warn().Err(err).Msg("run history unreadable, starting fresh")
		return nil
	}
	return records
}
