package harness

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunFiles(t *testing.T) {
	paths, err := FindScenarioFiles("testdata/scenarios", "")
	require.NoError(t, err)

	for _, workers := range []int{0, 1, 4} {
		results, err := RunFiles(t.Context(), paths, workers)
		require.NoError(t, err)
		require.Len(t, results, len(paths))

		for i, fr := range results {
			assert.Equal(t, paths[i], fr.Path, "results keep input order")
			assert.True(t, fr.Pass(), "%s: %v %v", fr.Path, fr.Err, fr.Result)
		}
		assert.Equal(t, "arithmetic", results[0].Name())
	}
}

func TestRunFiles_LoadFailure(t *testing.T) {
	dir := t.TempDir()
	bad := writeScenario(t, dir, "bad.yaml", "name: only")
	good := filepath.Join("testdata", "scenarios", "failures.yaml")

	results, err := RunFiles(t.Context(), []string{bad, good}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.False(t, results[0].Pass())
	assert.Nil(t, results[0].Scenario)
	assert.Equal(t, bad, results[0].Name())
	require.Error(t, results[0].Err)
	assert.Contains(t, results[0].Err.Error(), "description is required")

	assert.True(t, results[1].Pass())
	assert.Equal(t, "failures", results[1].Name())
}

func TestRunFiles_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := RunFiles(ctx, []string{filepath.Join("testdata", "scenarios", "arithmetic.yaml")}, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunFiles_Empty(t *testing.T) {
	results, err := RunFiles(t.Context(), nil, 4)
	require.NoError(t, err)
	assert.Empty(t, results)
}
