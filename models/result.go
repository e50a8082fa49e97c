package models

import (
	"fmt"
	"strings"
	"time"
)

// EncodeResult is the outcome of one encode operation after all retries.
//
// It enforces logical consistency: successful results carry an output
// path and no error, failed results carry an error and no output path.
// Use NewEncodeSuccess or NewEncodeFailure to build validated instances.
type EncodeResult struct {
	OutputPath string        `json:"output_path"`
	Success    bool          `json:"success"`
	Attempts   int           `json:"attempts"`
	Elapsed    time.Duration `json:"elapsed"`
	Err        error         `json:"-"`
}

// NewEncodeSuccess creates a successful EncodeResult.
//
// Returns an error if outputPath is empty or attempts is not positive.
func NewEncodeSuccess(outputPath string, attempts int, elapsed time.Duration) (*EncodeResult, error) {
	r := &EncodeResult{
		OutputPath: outputPath,
		Success:    true,
		Attempts:   attempts,
		Elapsed:    elapsed,
	}
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("invalid encode result: %w", err)
	}
	return r, nil
}

// NewEncodeFailure creates a failed EncodeResult. The error must not be nil.
func NewEncodeFailure(encErr error, attempts int, elapsed time.Duration) (*EncodeResult, error) {
	if encErr == nil {
		return nil, fmt.Errorf("invalid encode result: error cannot be nil for a failure")
	}
	return &EncodeResult{
		Success:  false,
		Attempts: attempts,
		Elapsed:  elapsed,
		Err:      encErr,
	}, nil
}

// Validate checks the result for consistent state.
func (r *EncodeResult) Validate() error {
	if r.Success && r.Err != nil {
		return fmt.Errorf("inconsistent state: success with non-nil error")
	}
	if !r.Success && r.Err == nil {
		return fmt.Errorf("failed result must carry an error")
	}
	if r.Success && strings.TrimSpace(r.OutputPath) == "" {
		return fmt.Errorf("output_path cannot be empty for a successful result")
	}
	if !r.Success && strings.TrimSpace(r.OutputPath) != "" {
		return fmt.Errorf("failed result should not carry an output_path")
	}
	if r.Attempts <= 0 {
		return fmt.Errorf("attempts must be positive")
	}
	return nil
}
