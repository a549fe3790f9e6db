package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "movrec/internal/errors"
)

func TestValidateOutputs(t *testing.T) {
	dir := t.TempDir()
	v := NewFileValidator(nil)

	outputs := []string{
		filepath.Join(dir, "data", "movie_data.tsv"),
		filepath.Join(dir, "data", "summary.json"),
		filepath.Join(dir, "reports", "movie_data.xlsx"),
	}
	require.NoError(t, v.ValidateOutputs(outputs))

	assert.DirExists(t, filepath.Join(dir, "data"))
	assert.DirExists(t, filepath.Join(dir, "reports"))

	entries, err := os.ReadDir(filepath.Join(dir, "data"))
	require.NoError(t, err)
	assert.Empty(t, entries, "write probe must be removed")
}

func TestValidateOutputDirectoryBlockedByFile(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "data")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	err := NewFileValidator(nil).ValidateOutputDirectory(filepath.Join(blocker, "out"))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))
}

func TestValidateOutputsEmpty(t *testing.T) {
	assert.NoError(t, NewFileValidator(nil).ValidateOutputs(nil))
}
