package internal

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Manifest is an optional JSONL audit trail of a run: one event per output
// file plus batch start/end records. It lives next to the output archive.
type Manifest struct {
	f *os.File
}

type manifestEvent struct {
	Event string `json:"event"`
	Ts    string `json:"ts"`

	// Per-file fields
	Path           string `json:"path,omitempty"`
	Output         string `json:"output,omitempty"`
	Tier           string `json:"tier,omitempty"`
	Classification string `json:"classification,omitempty"`
	Timestamp      string `json:"timestamp,omitempty"`

	// Batch start/end fields
	ExportType           string `json:"export_type,omitempty"`
	TotalFiles           int    `json:"total_files,omitempty"`
	Fixed                int    `json:"fixed,omitempty"`
	RestoredFromFilename int    `json:"restored_from_filename,omitempty"`
	RenamedOnly          int    `json:"renamed_only,omitempty"`
	Skipped              int    `json:"skipped,omitempty"`
}

func NewManifest(path string) (*Manifest, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create manifest file: %w", err)
	}
	return &Manifest{f: f}, nil
}

func (m *Manifest) LogBatchStart(exportType ExportType, totalFiles int) error {
	return m.writeEvent(manifestEvent{
		Event:      "batch_start",
		Ts:         time.Now().UTC().Format(time.RFC3339),
		ExportType: string(exportType),
		TotalFiles: totalFiles,
	})
}

func (m *Manifest) LogFile(entry PlanEntry) error {
	ev := manifestEvent{
		Event:          "file",
		Ts:             time.Now().UTC().Format(time.RFC3339),
		Path:           entry.Source.RelPath,
		Output:         entry.OutputPath,
		Tier:           string(entry.Resolved.SourceTier),
		Classification: string(entry.Classification),
	}
	if entry.Resolved.HasTimestamp {
		ev.Timestamp = entry.Resolved.Timestamp.Format(time.RFC3339)
	}
	return m.writeEvent(ev)
}

func (m *Manifest) LogBatchEnd(sum Summary) error {
	return m.writeEvent(manifestEvent{
		Event:                "batch_end",
		Ts:                   time.Now().UTC().Format(time.RFC3339),
		Fixed:                sum.Fixed,
		RestoredFromFilename: sum.RestoredFromFilename,
		RenamedOnly:          sum.RenamedOnly,
		Skipped:              sum.Skipped,
	})
}

func (m *Manifest) Close() error {
	return m.f.Close()
}

// writeEvent writes a manifest event as a JSON line
func (m *Manifest) writeEvent(event manifestEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if _, err := m.f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write to manifest: %w", err)
	}
	return nil
}
