package pipeline

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPipeline(t *testing.T, outDir, cacheDir string, scorer *stubScorer) *Pipeline {
	t.Helper()
	p, err := New(Options{
		Vocabulary:  testVocab(),
		PromptGen:   &stubPromptGen{},
		ImageGen:    &stubImageGen{n: 1},
		Scorer:      scorer,
		OutputDir:   outDir,
		CacheDir:    cacheDir,
		Concurrency: 3,
		RunID:       "lx_test",
		Logger:      testLogger(),
	})
	require.NoError(t, err)
	return p
}

func endToEndScorer() *stubScorer {
	return &stubScorer{scores: map[string]float64{
		"P:cat": 0.1,
		"P:run": 0.9,
	}}
}

func TestPipelineEndToEnd(t *testing.T) {
	outDir := t.TempDir()
	scorer := endToEndScorer()
	p := newTestPipeline(t, outDir, filepath.Join(outDir, "cache"), scorer)

	records, err := p.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	f, err := os.Open(filepath.Join(outDir, "scores.csv"))
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, []string{"word", "image", "clip"}, rows[0])
	assert.Equal(t, "猫", rows[1][0])
	assert.Equal(t, "0", rows[1][2])
	assert.Equal(t, "跑", rows[2][0])
	assert.Equal(t, "100", rows[2][2])

	// Scorer lifecycle is explicit: weights loaded once, released at the end.
	assert.EqualValues(t, 1, scorer.initCalls.Load())
	assert.True(t, scorer.closed.Load())
}

func TestPipelineDeterministicAcrossFreshRuns(t *testing.T) {
	run := func(outDir string) []byte {
		p := newTestPipeline(t, outDir, filepath.Join(outDir, "cache"), endToEndScorer())
		_, err := p.Run(context.Background())
		require.NoError(t, err)
		data, err := os.ReadFile(filepath.Join(outDir, "scores.csv"))
		require.NoError(t, err)
		return data
	}

	first := run(t.TempDir())
	second := run(t.TempDir())

	// Image paths differ across temp dirs, so compare word and score columns.
	parse := func(data []byte) [][]string {
		rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
		require.NoError(t, err)
		out := make([][]string, len(rows))
		for i, r := range rows {
			out[i] = []string{r[0], r[2]}
		}
		return out
	}
	assert.Equal(t, parse(first), parse(second))
}

func TestPipelineScoringAlwaysRecomputes(t *testing.T) {
	outDir := t.TempDir()
	cacheDir := filepath.Join(outDir, "cache")

	p := newTestPipeline(t, outDir, cacheDir, endToEndScorer())
	_, err := p.Run(context.Background())
	require.NoError(t, err)

	// Second run over the same cache: prompt and image stages are served
	// from cache, scoring runs again.
	scorer := endToEndScorer()
	p2 := newTestPipeline(t, outDir, cacheDir, scorer)
	records, err := p2.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.EqualValues(t, 1, scorer.initCalls.Load())
}

func TestPipelinePromptFailureIsFatal(t *testing.T) {
	outDir := t.TempDir()
	p, err := New(Options{
		Vocabulary:  testVocab(),
		PromptGen:   &stubPromptGen{failOn: "猫"},
		ImageGen:    &stubImageGen{n: 1},
		Scorer:      endToEndScorer(),
		OutputDir:   outDir,
		CacheDir:    filepath.Join(outDir, "cache"),
		Concurrency: 3,
		RunID:       "lx_test",
		Logger:      testLogger(),
	})
	require.NoError(t, err)

	_, err = p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prompt stage")
}
