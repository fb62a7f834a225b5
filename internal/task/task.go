// internal/task/task.go

// Package task defines the job description handed to the pipeline,
// normally read from a JSON spool file.
package task

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"

	"pathoscope/pkg/api"
)

// Task carries everything an analysis run needs besides configuration.
type Task struct {
	SampleID   string `json:"sample_id"`
	RefID      string `json:"ref_id"`
	AnalysisID string `json:"analysis_id"`
	IndexID    string `json:"index_id"`

	// Proc overrides the configured worker count when > 0.
	Proc int `json:"proc,omitempty"`

	// OTUs maps OTU IDs to their last-indexed reference version.
	OTUs map[string]api.OTURefV1 `json:"otus"`

	// SequenceOTUMap maps sequence IDs to their parent OTU ID.
	SequenceOTUMap map[string]string `json:"sequence_otu_map"`
}

// Load reads and validates a task file, assigning a fresh analysis ID
// when the file carries none.
func Load(path string) (Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Task{}, err
	}

	var t Task
	if err := json.Unmarshal(data, &t); err != nil {
		return Task{}, fmt.Errorf("task %s: %w", path, err)
	}

	if t.AnalysisID == "" {
		t.AnalysisID = uuid.NewString()
	}

	if err := t.Validate(); err != nil {
		return Task{}, fmt.Errorf("task %s: %w", path, err)
	}

	return t, nil
}

// Validate checks the fields no run can proceed without.
func (t Task) Validate() error {
	switch {
	case t.SampleID == "":
		return errors.New("sample_id is required")
	case t.RefID == "":
		return errors.New("ref_id is required")
	case t.IndexID == "":
		return errors.New("index_id is required")
	case t.AnalysisID == "":
		return errors.New("analysis_id is required")
	}
	return nil
}
