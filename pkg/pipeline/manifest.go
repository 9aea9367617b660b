package pipeline

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// RunManifest is the YAML record of a run written next to its outputs.
type RunManifest struct {
	RunID        string      `yaml:"run_id"`
	Started      time.Time   `yaml:"started"`
	Finished     time.Time   `yaml:"finished"`
	Region       string      `yaml:"region"`
	Suffix       string      `yaml:"suffix"`
	Files        []FileEntry `yaml:"files"`
	Consolidated []Output    `yaml:"consolidated,omitempty"`
	Warnings     []string    `yaml:"warnings,omitempty"`
	Audit        string      `yaml:"audit"`
}

// FileEntry is one input file's entry in the run manifest.
type FileEntry struct {
	File       string   `yaml:"file"`
	Family     string   `yaml:"family"`
	Encoding   string   `yaml:"encoding,omitempty"`
	Delimiter  string   `yaml:"delimiter,omitempty"`
	State      string   `yaml:"state"`
	Status     string   `yaml:"status"`
	InputRows  *int     `yaml:"input_rows"`
	OutputRows *int     `yaml:"output_rows"`
	Dropped    int      `yaml:"dropped_lines,omitempty"`
	Outputs    []string `yaml:"outputs,omitempty"`
}

func newRunManifest(rep *Report) *RunManifest {
	m := &RunManifest{
		RunID:        rep.RunID,
		Started:      rep.Started,
		Finished:     rep.Finished,
		Region:       rep.Region,
		Suffix:       rep.Suffix,
		Consolidated: rep.Consolidated,
		Warnings:     rep.Warnings,
		Audit:        rep.AuditPath,
	}
	for _, r := range rep.Results {
		m.Files = append(m.Files, FileEntry{
			File:       r.File,
			Family:     r.Family,
			Encoding:   r.Encoding,
			Delimiter:  r.Delimiter,
			State:      r.State.String(),
			Status:     r.Status(),
			InputRows:  r.InputRows,
			OutputRows: r.OutputRows,
			Dropped:    r.DroppedLines,
			Outputs:    r.Outputs,
		})
	}
	return m
}

// writeManifest writes the run manifest as YAML to path.
func writeManifest(path string, rep *Report) error {
	data, err := yaml.Marshal(newRunManifest(rep))
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadManifest reads a run manifest written by Run.
func LoadManifest(path string) (*RunManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	var m RunManifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return &m, nil
}

// ensureDir creates a directory if it doesn't exist.
func ensureDir(path string) error {
	return os.MkdirAll(path, 0o755)
}
