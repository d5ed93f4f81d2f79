package output

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// ManifestName is the file written at the end of every run.
const ManifestName = "manifest.json"

// Artifact is one file produced by a run.
type Artifact struct {
	Name  string `json:"name"`
	Path  string `json:"path"`
	Kind  string `json:"kind"` // json or csv
	Bytes int    `json:"bytes"`
}

// Manifest describes a run and everything it wrote.
type Manifest struct {
	RunID     string         `json:"run_id"`
	Command   string         `json:"command"`
	Input     string         `json:"input"`
	Params    map[string]any `json:"params,omitempty"`
	StartedAt time.Time      `json:"started_at"`
	Finished  time.Time      `json:"finished_at"`
	Artifacts []Artifact     `json:"artifacts"`
}

// Run writes artifacts into one output directory and records them.
type Run struct {
	Dir      string
	manifest Manifest
}

// NewRun creates dir when needed and starts a manifest with a fresh run ID.
func NewRun(dir, command, input string, params map[string]any) (*Run, error) {
	if err := EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &Run{
		Dir: dir,
		manifest: Manifest{
			RunID:     uuid.NewString(),
			Command:   command,
			Input:     input,
			Params:    params,
			StartedAt: time.Now().UTC(),
			Artifacts: []Artifact{},
		},
	}, nil
}

// ID returns the run identifier.
func (r *Run) ID() string { return r.manifest.RunID }

// WriteJSON writes v as indented JSON under name and returns the full path.
func (r *Run) WriteJSON(name string, v any) (string, error) {
	data, err := PrettyJSON(v)
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return r.write(name, "json", data)
}

// WriteCSV writes header and rows under name and returns the full path.
func (r *Run) WriteCSV(name string, header []string, rows [][]string) (string, error) {
	data, err := EncodeCSV(header, rows)
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return r.write(name, "csv", data)
}

func (r *Run) write(name, kind string, data []byte) (string, error) {
	path := filepath.Join(r.Dir, name)
	if err := SafeWriteFile(path, data); err != nil {
		return "", err
	}
	r.manifest.Artifacts = append(r.manifest.Artifacts, Artifact{Name: name, Path: path, Kind: kind, Bytes: len(data)})
	return path, nil
}

// Close writes the manifest and returns it.
func (r *Run) Close() (*Manifest, error) {
	r.manifest.Finished = time.Now().UTC()
	data, err := PrettyJSON(r.manifest)
	if err != nil {
		return nil, err
	}
	if err := SafeWriteFile(filepath.Join(r.Dir, ManifestName), data); err != nil {
		return nil, err
	}
	m := r.manifest
	return &m, nil
}
