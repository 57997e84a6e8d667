package snapshot

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/flinketl/etldash/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissing(t *testing.T) {
	s := New(zerolog.Nop(), filepath.Join(t.TempDir(), "runs.json"))

	_, err := s.Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "runs.json")
	s := New(zerolog.Nop(), path)

	runs := []model.TestRun{
		{
			ID:         "run-1",
			ImageTag:   "1.0.0",
			Logs:       []string{"line"},
			TestStatus: model.OutcomePassed,
			Status:     model.StatusFinished,
		},
	}
	require.NoError(t, s.Save(runs))

	got, err := s.Load()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "run-1", got[0].ID)
	assert.Equal(t, model.StatusFinished, got[0].Status)
	assert.Equal(t, []string{"line"}, got[0].Logs)

	// Overwrite leaves no temp files behind
	require.NoError(t, s.Save(nil))
	got, err = s.Load()
	require.NoError(t, err)
	assert.Empty(t, got)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestLoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := New(zerolog.Nop(), path).Load()
	require.Error(t, err)
	assert.False(t, errors.Is(err, os.ErrNotExist))
}
