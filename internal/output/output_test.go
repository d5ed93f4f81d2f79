package output

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWritesArtifactsAndManifest(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	run, err := NewRun(dir, "qual freq", "corpus.csv", map[string]any{"top_n": 3})
	require.NoError(t, err)
	_, err = uuid.Parse(run.ID())
	require.NoError(t, err)

	p, err := run.WriteJSON("words.json", []map[string]any{{"term": "a<b", "freq": 2}})
	require.NoError(t, err)
	raw, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"a<b"`)

	_, err = run.WriteCSV("sent.csv", []string{"doc_id", "sentiment"}, [][]string{{"1", "-2"}, {"x,y", "0"}})
	require.NoError(t, err)
	raw, err = os.ReadFile(filepath.Join(dir, "sent.csv"))
	require.NoError(t, err)
	assert.Equal(t, "doc_id,sentiment\n1,-2\n\"x,y\",0\n", string(raw))

	m, err := run.Close()
	require.NoError(t, err)
	require.Len(t, m.Artifacts, 2)
	assert.Equal(t, "json", m.Artifacts[0].Kind)

	var onDisk Manifest
	raw, err = os.ReadFile(filepath.Join(dir, ManifestName))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &onDisk))
	assert.Equal(t, run.ID(), onDisk.RunID)
	assert.Equal(t, "qual freq", onDisk.Command)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".tmp"), "leftover temp file %s", e.Name())
	}
}

func TestStoreRecordsRuns(t *testing.T) {
	ctx := context.Background()
	s, err := OpenStore(filepath.Join(t.TempDir(), "db", "runs.db"))
	require.NoError(t, err)
	defer s.Close()

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	first := &Manifest{RunID: "r1", Command: "quant describe", Input: "a.csv", StartedAt: base, Finished: base,
		Artifacts: []Artifact{{Name: "x.json", Path: "/o/x.json", Kind: "json", Bytes: 10}}}
	second := &Manifest{RunID: "r2", Command: "quant model", Input: "a.csv", StartedAt: base.Add(time.Minute), Finished: base.Add(time.Minute)}
	require.NoError(t, s.Record(ctx, first))
	require.NoError(t, s.Record(ctx, second))

	runs, err := s.Runs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "r2", runs[0].RunID)
	assert.Equal(t, 0, runs[0].Artifacts)
	assert.Equal(t, "r1", runs[1].RunID)
	assert.Equal(t, 1, runs[1].Artifacts)
	assert.True(t, base.Equal(runs[1].StartedAt))

	assert.Error(t, s.Record(ctx, first), "duplicate run id must fail")
}
