package seshat

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexBasicOperations(t *testing.T) {
	index := New("test")

	index.Insert("hello")
	index.Insert("help")
	index.Insert("world")

	assert.Equal(t, 3, index.Size())
	assert.False(t, index.Empty())
	assert.True(t, index.Search("hello"))
	assert.False(t, index.Search("hel"))
	assert.True(t, index.StartsWith("wo"))
	assert.ElementsMatch(t, []string{"hello", "help"}, index.WordsWithPrefix("he"))

	assert.True(t, index.Remove("hello"))
	assert.False(t, index.Remove("hello"))
	assert.Equal(t, 2, index.Size())

	index.Clear()
	assert.True(t, index.Empty())
}

func TestIndexBatchOperations(t *testing.T) {
	index := New("test")
	index.InsertBatch([]string{"one", "two", "three"})

	assert.Equal(t, []bool{true, true, false}, index.SearchBatch([]string{"one", "three", "four"}))
	assert.Equal(t, []bool{true, false}, index.RemoveBatch([]string{"two", "four"}))
	assert.Equal(t, 2, index.Size())
}

func TestIndexDefaultsToVerbatimBytes(t *testing.T) {
	index := New("test")
	index.Insert("Hello")

	assert.True(t, index.Search("Hello"))
	assert.False(t, index.Search("hello"))
}

func TestIndexNormalizer(t *testing.T) {
	index := New("test", WithNormalizer(NewSimpleNormalizer()))
	index.Insert("  Hello ")

	assert.True(t, index.Search("hello"))
	assert.True(t, index.Search("HELLO"))
	assert.Equal(t, []string{"hello"}, index.Words())
}

func TestIndexBuildFromWords(t *testing.T) {
	index := New("test")
	require.NoError(t, index.Build(context.Background(), []string{"alpha", "beta"}))
	assert.Equal(t, 2, index.Size())
}

func TestIndexBuildFromJSONPayload(t *testing.T) {
	index := New("test")
	require.NoError(t, index.Build(context.Background(), []byte(`["alpha","beta","gamma"]`)))
	assert.Equal(t, 3, index.Size())
}

func TestIndexBuildFromReader(t *testing.T) {
	index := New("test")
	require.NoError(t, index.Build(context.Background(), strings.NewReader("alpha\nbeta\n")))
	assert.True(t, index.Search("alpha"))
	assert.True(t, index.Search("beta"))
}

func TestIndexBuildFromReflectedSlice(t *testing.T) {
	index := New("test")
	require.NoError(t, index.Build(context.Background(), []any{"word", 42}))
	assert.True(t, index.Search("word"))
	assert.True(t, index.Search("42"))
}

func TestIndexBuildUnsupportedInput(t *testing.T) {
	index := New("test")
	assert.Error(t, index.Build(context.Background(), 42))
}

func TestIndexBuildFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	require.NoError(t, os.WriteFile(path, []byte("alpha\nbeta\r\ngamma\r\n\n  delta  \n"), 0644))

	index := New("test")
	inserted, err := index.BuildFromFile(context.Background(), path, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, inserted)
	assert.Equal(t, 4, index.Size())
	assert.True(t, index.Search("delta"))
}

func TestIndexBuildFromMissingFile(t *testing.T) {
	index := New("test")
	_, err := index.BuildFromFile(context.Background(), filepath.Join(t.TempDir(), "absent.txt"), 0)
	assert.Error(t, err)
	// A failed ingest must release the in-progress flag.
	_, err = index.BuildFromReader(context.Background(), strings.NewReader("word\n"), 0)
	assert.NoError(t, err)
}

func TestIndexBuildCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	index := New("test")
	assert.Error(t, index.Build(ctx, []string{"alpha"}))
	assert.True(t, index.Empty())
}

func TestIndexPatternSearchAndCache(t *testing.T) {
	index := New("test", WithCacheExpiry(time.Minute))
	index.InsertBatch([]string{"cat", "car", "card", "care", "careful", "dog"})

	want := []string{"car", "card", "care", "careful", "cat"}
	assert.Equal(t, want, index.PatternSearch("ca*"))
	assert.Equal(t, want, index.PatternSearch("ca*"))

	status := index.Status()
	assert.EqualValues(t, int64(1), status["cache_hits"])

	// Mutation invalidates cached results.
	index.Insert("cab")
	assert.Equal(t, []string{"cab", "car", "card", "care", "careful", "cat"}, index.PatternSearch("ca*"))
}

func TestIndexSuggest(t *testing.T) {
	index := New("test")
	index.InsertBatch([]string{"cat", "car", "card", "dog"})

	assert.ElementsMatch(t, []string{"cat", "car"}, index.Suggest("cap", 1))
	assert.ElementsMatch(t, []string{"cat", "car", "card"}, index.Suggest("cart", 2))
	assert.Empty(t, index.Suggest("", 2))
}

func TestIndexSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	index := New("test")
	index.InsertBatch([]string{"alpha", "beta", "gamma"})
	require.NoError(t, index.SaveToDisk(path))

	restored := New("restored")
	require.NoError(t, restored.LoadFromDisk(path))
	assert.Equal(t, index.Words(), restored.Words())
}

func TestIndexAnalyticsPassthrough(t *testing.T) {
	index := New("test")
	index.InsertBatch([]string{"a", "aa", "aaa", "aaaa"})

	heights := index.HeightStats()
	assert.Equal(t, 1, heights.MinHeight)
	assert.Equal(t, 4, heights.MaxHeight)

	metrics := index.WordMetrics()
	assert.Equal(t, []int{0, 1, 1, 1, 1}, metrics.LengthDistribution)

	memory := index.MemoryStats()
	assert.Equal(t, 5, memory.NodeCount)
}

func TestIndexStatus(t *testing.T) {
	index := New("test")
	index.Insert("word")

	status := index.Status()
	assert.Equal(t, "test", status["id"])
	assert.Equal(t, 1, status["size"])
	assert.Equal(t, false, status["ingest_in_progress"])
}
