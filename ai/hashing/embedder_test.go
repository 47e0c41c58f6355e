package hashing

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/poiesic/secondbrain/ai"
	"github.com/poiesic/secondbrain/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func magnitude(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func cosine(a, b []float32) float64 {
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot / (magnitude(a) * magnitude(b))
}

func TestNewEmbedder(t *testing.T) {
	e, err := NewEmbedder()
	require.NoError(t, err)
	assert.Equal(t, DefaultDimensions, e.Dimensions())

	e, err = NewEmbedder(WithDimensions(64))
	require.NoError(t, err)
	assert.Equal(t, 64, e.Dimensions())

	_, err = NewEmbedder(WithDimensions(0))
	assert.ErrorIs(t, err, ErrInvalidDimensions)
}

func TestEmbedText_Deterministic(t *testing.T) {
	ctx := context.Background()
	e1, err := NewEmbedder()
	require.NoError(t, err)
	e2, err := NewEmbedder()
	require.NoError(t, err)

	text := "Problem: git merge conflict\nSolution: git mergetool\nExplanation: resolve markers"
	v1, err := e1.EmbedText(ctx, text)
	require.NoError(t, err)
	v2, err := e2.EmbedText(ctx, text)
	require.NoError(t, err)

	assert.Equal(t, v1, v2)
	assert.Len(t, v1, DefaultDimensions)
	assert.InDelta(t, 1.0, magnitude(v1), 1e-5)
}

func TestEmbedText_RejectsBlank(t *testing.T) {
	e, err := NewEmbedder()
	require.NoError(t, err)

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := e.EmbedText(context.Background(), text)
		assert.ErrorIs(t, err, core.ErrValidation)
	}
}

func TestEmbedText_StopWordsOnly(t *testing.T) {
	e, err := NewEmbedder()
	require.NoError(t, err)

	v, err := e.EmbedText(context.Background(), "the and of ...")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, magnitude(v), 1e-9)
}

func TestEmbedTexts(t *testing.T) {
	e, err := NewEmbedder(WithDimensions(128))
	require.NoError(t, err)
	ctx := context.Background()

	texts := []string{"pandas dataframe", "list index out of range"}
	vectors, err := e.EmbedTexts(ctx, texts)
	require.NoError(t, err)
	require.Len(t, vectors, 2)

	for i, text := range texts {
		single, err := e.EmbedText(ctx, text)
		require.NoError(t, err)
		assert.Equal(t, single, vectors[i])
	}

	_, err = e.EmbedTexts(ctx, []string{"ok", ""})
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestEmbedText_Relatedness(t *testing.T) {
	e, err := NewEmbedder()
	require.NoError(t, err)
	ctx := context.Background()

	embed := func(s string) []float32 {
		v, err := e.EmbedText(ctx, s)
		require.NoError(t, err)
		return v
	}

	query := embed("SettingWithCopyWarning pandas")
	pandas := embed(core.CanonicalText(
		"pandas raises SettingWithCopyWarning when assigning to a filtered DataFrame",
		"df = df.copy(); df.loc[mask, 'col'] = value",
		"Chained indexing may operate on a copy; use .loc on an explicit copy",
	))
	list := embed(core.CanonicalText(
		"IndexError: list index out of range in a Python loop",
		"for i in range(len(items)): ...",
		"Indices run from 0 to len-1",
	))
	git := embed(core.CanonicalText(
		"git merge conflict after pulling",
		"git mergetool && git commit",
		"Resolve the conflict markers, then commit the merge",
	))

	assert.Greater(t, cosine(query, pandas), cosine(query, list))
	assert.Greater(t, cosine(query, pandas), cosine(query, git))

	assert.Greater(t, cosine(embed("commit changes"), embed("commits changed")), cosine(embed("commit changes"), embed("pandas dataframe")))
}

func TestEmbedder_Concurrent(t *testing.T) {
	e, err := NewEmbedder()
	require.NoError(t, err)
	ctx := context.Background()
	want, err := e.EmbedText(ctx, "concurrent use")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := e.EmbedText(ctx, "concurrent use")
			assert.NoError(t, err)
			assert.Equal(t, want, got)
		}()
	}
	wg.Wait()
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(ai.NewConfig(ai.WithDimensions(32)))
	require.NoError(t, err)
	defer p.Close()
	assert.Equal(t, 32, p.Embedder().Dimensions())
}
