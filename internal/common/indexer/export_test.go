package indexer

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/project-tktt/warn-crawler/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONExporter_WriteBatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "public", "notices.json")
	exp := NewJSONExporter(path)

	batch := &domain.Batch{
		BatchID:   "batch-1",
		FetchedAt: time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC),
		Notices:   []domain.NormalizedNotice{*sampleNotice("a1", "Sunrise Skilled Nursing Facility")},
		Manifest:  []domain.ManifestEntry{{Jurisdiction: domain.StateCA, Status: domain.StatusOK, Count: 1}},
	}
	require.NoError(t, exp.WriteBatch(context.Background(), batch))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got domain.Batch
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "batch-1", got.BatchID)
	require.Len(t, got.Notices, 1)
	assert.Equal(t, "2025-03-04", got.Notices[0].NoticeDate.String())

	// no temp files left behind
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestJSONExporter_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notices.json")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))

	exp := NewJSONExporter(path)
	require.NoError(t, exp.WriteBatch(context.Background(), &domain.Batch{BatchID: "fresh"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"batchId": "fresh"`)
}
