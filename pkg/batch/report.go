package batch

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
)

// Report summarizes a batch run.
type Report struct {
	Results   []FileResult `json:"results"`
	Processed int          `json:"processed"`
	Skipped   int          `json:"skipped"`
	Failed    int          `json:"failed"`
}

func (r *Report) count(fr FileResult) {
	switch fr.Status {
	case StatusProcessed:
		r.Processed++
	case StatusSkipped:
		r.Skipped++
	case StatusFailed:
		r.Failed++
	}
}

// Add appends a result and updates the summary counts.
func (r *Report) Add(fr FileResult) {
	r.Results = append(r.Results, fr)
	r.count(fr)
}

// WriteReport writes the report as indented JSON to path.
func WriteReport(path string, r *Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
