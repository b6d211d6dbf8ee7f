package trie

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validate checks the structural invariants of the tree: labels agree with
// their parent-side slots, child vectors are strictly sorted, leaves are
// terminal, the tree is fully compressed, and the cached size matches the
// terminal count.
func validate(t *testing.T, tr *Trie) {
	t.Helper()
	terminals := 0
	var walk func(n *node)
	walk = func(n *node) {
		if n != tr.root {
			require.NotEmpty(t, n.key, "non-root node with empty label")
			assert.Equal(t, n.key[0], n.parentKey, "label first byte disagrees with parentKey")
			_, child := n.parent.findChild(n.parentKey)
			assert.Same(t, n, child, "node not reachable through its parent slot")
			if !n.isEnd {
				assert.NotEqual(t, 1, len(n.children), "uncompressed single-child chain")
			}
		}
		if n.isEnd {
			terminals++
		}
		if len(n.children) == 0 && n != tr.root {
			assert.True(t, n.isEnd, "non-terminal leaf")
		}
		for i, child := range n.children {
			if i > 0 {
				assert.Less(t, n.children[i-1].key[0], child.key[0], "children out of order")
			}
			assert.Same(t, n, child.parent)
			walk(child)
		}
	}
	walk(tr.root)
	assert.Equal(t, terminals, tr.size, "size does not match terminal count")
}

func TestEmptyTrie(t *testing.T) {
	tr := New()
	assert.True(t, tr.Empty())
	assert.Equal(t, 0, tr.Size())
	assert.False(t, tr.Search("x"))
	assert.False(t, tr.StartsWith(""))
	assert.Empty(t, tr.WordsWithPrefix(""))
	validate(t, tr)
}

func TestInsertSplitsSharedPrefix(t *testing.T) {
	tr := New()
	tr.Insert("hello")
	tr.Insert("help")
	tr.Insert("world")

	assert.Equal(t, 3, tr.Size())
	assert.True(t, tr.Search("hello"))
	assert.True(t, tr.Search("help"))
	assert.True(t, tr.Search("world"))
	assert.False(t, tr.Search("hel"))
	assert.ElementsMatch(t, []string{"hello", "help"}, tr.WordsWithPrefix("he"))
	assert.True(t, tr.StartsWith("wo"))
	assert.False(t, tr.StartsWith("x"))

	_, mid := tr.root.findChild('h')
	require.NotNil(t, mid)
	assert.Equal(t, "hel", string(mid.key))
	assert.False(t, mid.isEnd)
	require.Len(t, mid.children, 2)
	assert.Equal(t, "lo", string(mid.children[0].key))
	assert.Equal(t, "p", string(mid.children[1].key))
	validate(t, tr)
}

func TestInsertEmptyWordIsNoOp(t *testing.T) {
	tr := New()
	tr.Insert("")
	assert.True(t, tr.Empty())
	validate(t, tr)
}

func TestInsertIsIdempotent(t *testing.T) {
	tr := New()
	tr.Insert("alpha")
	tr.Insert("alpha")
	assert.Equal(t, 1, tr.Size())
	assert.Equal(t, []string{"alpha"}, tr.WordsWithPrefix(""))
	validate(t, tr)
}

func TestInsertMarksIntermediateTerminal(t *testing.T) {
	tr := New()
	tr.Insert("hello")
	tr.Insert("hel")
	assert.Equal(t, 2, tr.Size())
	assert.True(t, tr.Search("hel"))
	assert.True(t, tr.Search("hello"))
	validate(t, tr)
}

func TestInsertKeepsChildrenSorted(t *testing.T) {
	tr := New()
	for _, w := range []string{"melon", "apple", "zebra", "banana", "cherry"} {
		tr.Insert(w)
	}
	keys := make([]string, 0, len(tr.root.children))
	for _, child := range tr.root.children {
		keys = append(keys, string(child.key))
	}
	assert.Equal(t, []string{"apple", "banana", "cherry", "melon", "zebra"}, keys)
	validate(t, tr)
}

func TestRemoveCompressesSurvivor(t *testing.T) {
	tr := New()
	tr.Insert("hello")
	tr.Insert("help")
	tr.Insert("world")

	assert.True(t, tr.Remove("hello"))
	assert.False(t, tr.Search("hello"))
	assert.True(t, tr.Search("help"))
	assert.Equal(t, []string{"help"}, tr.WordsWithPrefix("he"))

	// The hel/p chain must have merged into a single edge off the root.
	_, merged := tr.root.findChild('h')
	require.NotNil(t, merged)
	assert.Equal(t, "help", string(merged.key))
	assert.Empty(t, merged.children)
	validate(t, tr)
}

func TestRemoveMergesWithoutDetach(t *testing.T) {
	tr := New()
	tr.Insert("a")
	tr.Insert("ab")

	assert.True(t, tr.Remove("a"))
	_, merged := tr.root.findChild('a')
	require.NotNil(t, merged)
	assert.Equal(t, "ab", string(merged.key))
	assert.True(t, tr.Search("ab"))
	validate(t, tr)
}

func TestRemoveAbsentReturnsFalse(t *testing.T) {
	tr := New()
	tr.Insert("hello")

	assert.False(t, tr.Remove(""))
	assert.False(t, tr.Remove("help"))
	assert.False(t, tr.Remove("hel"))    // mid-path, not terminal
	assert.False(t, tr.Remove("helloo")) // extension
	assert.Equal(t, 1, tr.Size())
	validate(t, tr)
}

func TestRemoveCascadesCleanup(t *testing.T) {
	tr := New()
	tr.Insert("abc")
	tr.Insert("abcdef")
	tr.Insert("abcdxy")

	assert.True(t, tr.Remove("abcdef"))
	validate(t, tr)
	assert.True(t, tr.Remove("abcdxy"))
	assert.Equal(t, []string{"abc"}, tr.WordsWithPrefix(""))
	// Everything below "abc" is gone and the surviving edge is one label.
	_, n := tr.root.findChild('a')
	require.NotNil(t, n)
	assert.Equal(t, "abc", string(n.key))
	assert.Empty(t, n.children)
	validate(t, tr)
}

func TestRemoveIsObservationalInverse(t *testing.T) {
	tr := New()
	words := []string{"cat", "car", "card", "care", "careful", "dog"}
	for _, w := range words {
		tr.Insert(w)
	}
	before := tr.WordsWithPrefix("")

	tr.Insert("carpet")
	assert.True(t, tr.Remove("carpet"))

	assert.Equal(t, before, tr.WordsWithPrefix(""))
	assert.Equal(t, len(words), tr.Size())
	validate(t, tr)
}

func TestRoundTrip(t *testing.T) {
	words := []string{"a", "ab", "abc", "b", "ba", "romane", "romanus", "romulus", "rubens", "ruber", "rubicon", "rubicundus"}
	tr := New()
	for _, w := range words {
		tr.Insert(w)
	}
	for _, w := range words {
		assert.True(t, tr.Search(w), "missing %q", w)
	}
	for _, w := range []string{"r", "rom", "roman", "rubicundu", "romanes", "c", "abcd"} {
		assert.False(t, tr.Search(w), "unexpected %q", w)
	}
	assert.Equal(t, len(words), tr.Size())
	validate(t, tr)
}

func TestCompressionHoldsUnderChurn(t *testing.T) {
	tr := New()
	words := []string{"slow", "slower", "slowest", "slot", "sloth", "water", "waterfall", "watermelon", "watt"}
	for _, w := range words {
		tr.Insert(w)
		validate(t, tr)
	}
	for _, w := range []string{"slower", "slot", "watermelon", "water", "sloth", "waterfall", "slowest", "watt", "slow"} {
		assert.True(t, tr.Remove(w))
		validate(t, tr)
	}
	assert.True(t, tr.Empty())
}

func TestStartsWithInsideEdge(t *testing.T) {
	tr := New()
	tr.Insert("hello")

	assert.True(t, tr.StartsWith("h"))
	assert.True(t, tr.StartsWith("hell"))
	assert.True(t, tr.StartsWith("hello"))
	assert.False(t, tr.StartsWith("hellos"))
	assert.False(t, tr.StartsWith("x"))
	assert.True(t, tr.StartsWith(""))
}

func TestWordsWithPrefix(t *testing.T) {
	tr := New()
	for _, w := range []string{"cat", "car", "card", "care", "careful", "dog"} {
		tr.Insert(w)
	}

	cases := []struct {
		prefix string
		want   []string
	}{
		{"", []string{"car", "card", "care", "careful", "cat", "dog"}},
		{"ca", []string{"car", "card", "care", "careful", "cat"}},
		{"car", []string{"car", "card", "care", "careful"}},
		{"care", []string{"care", "careful"}},
		{"caref", []string{"careful"}},
		{"d", []string{"dog"}},
		{"dog", []string{"dog"}},
		{"dogs", nil},
		{"x", nil},
	}
	for _, tc := range cases {
		t.Run("prefix="+tc.prefix, func(t *testing.T) {
			assert.Equal(t, tc.want, tr.WordsWithPrefix(tc.prefix))
		})
	}
}

func TestWordsWithPrefixDeterministicOrder(t *testing.T) {
	tr := New()
	for _, w := range []string{"bravo", "alpha", "charlie"} {
		tr.Insert(w)
	}
	first := tr.WordsWithPrefix("")
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, tr.WordsWithPrefix(""))
	}
}

func TestWalkStopsEarly(t *testing.T) {
	tr := New()
	for _, w := range []string{"one", "two", "three"} {
		tr.Insert(w)
	}
	seen := 0
	tr.Walk(func(string) bool {
		seen++
		return seen < 2
	})
	assert.Equal(t, 2, seen)
}

func TestClear(t *testing.T) {
	tr := New()
	tr.Insert("hello")
	tr.Insert("world")
	tr.Clear()

	assert.True(t, tr.Empty())
	assert.Equal(t, 0, tr.Size())
	assert.False(t, tr.Search("hello"))
	tr.Insert("again")
	assert.True(t, tr.Search("again"))
	validate(t, tr)
}

func TestLongWords(t *testing.T) {
	long := make([]byte, 10000)
	for i := range long {
		long[i] = byte('a' + i%26)
	}
	tr := New()
	tr.Insert(string(long))
	tr.Insert(string(long[:5000]))

	assert.True(t, tr.Search(string(long)))
	assert.True(t, tr.Search(string(long[:5000])))
	assert.False(t, tr.Search(string(long[:4999])))
	assert.Equal(t, 2, tr.Size())
	validate(t, tr)
}
