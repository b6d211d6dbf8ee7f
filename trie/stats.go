package trie

import (
	"unsafe"
)

// HeightStats summarizes the depth, in nodes traversed from the root, of
// every terminal node. The root sits at depth 0.
type HeightStats struct {
	MinHeight     int     `json:"min_height"`
	MaxHeight     int     `json:"max_height"`
	AverageHeight float64 `json:"average_height"`
	ModeHeight    int     `json:"mode_height"`
	AllHeights    []int   `json:"all_heights"`
}

// MemoryStats approximates the resident footprint of the tree: the trie
// header plus one node struct per node plus the label bytes.
type MemoryStats struct {
	TotalBytes    int     `json:"total_bytes"`
	NodeCount     int     `json:"node_count"`
	StringBytes   int     `json:"string_bytes"`
	OverheadBytes int     `json:"overhead_bytes"`
	BytesPerWord  float64 `json:"bytes_per_word"`
}

// WordMetrics summarizes stored word lengths. LengthDistribution is indexed
// from 0 to MaxLength.
type WordMetrics struct {
	MinLength          int     `json:"min_length"`
	MaxLength          int     `json:"max_length"`
	AverageLength      float64 `json:"average_length"`
	ModeLength         int     `json:"mode_length"`
	LengthDistribution []int   `json:"length_distribution"`
	TotalCharacters    int     `json:"total_characters"`
}

type walkFrame struct {
	n     *node
	depth int
}

// HeightStats walks the tree once and aggregates per-terminal depths. Mode
// ties resolve to the lowest depth.
func (t *Trie) HeightStats() HeightStats {
	var stats HeightStats
	if t.Empty() {
		return stats
	}
	heights := make([]int, 0, t.size)
	stack := []walkFrame{{t.root, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.n.isEnd {
			heights = append(heights, f.depth)
		}
		for i := len(f.n.children) - 1; i >= 0; i-- {
			stack = append(stack, walkFrame{f.n.children[i], f.depth + 1})
		}
	}
	stats.AllHeights = heights
	stats.MinHeight = heights[0]
	stats.MaxHeight = heights[0]
	sum := 0
	freq := make(map[int]int, len(heights))
	for _, h := range heights {
		if h < stats.MinHeight {
			stats.MinHeight = h
		}
		if h > stats.MaxHeight {
			stats.MaxHeight = h
		}
		sum += h
		freq[h]++
	}
	stats.AverageHeight = float64(sum) / float64(len(heights))
	stats.ModeHeight = modeOf(freq)
	return stats
}

// MemoryStats counts nodes and label bytes in one traversal. An empty trie
// reports the header plus the root node and zero bytes per word.
func (t *Trie) MemoryStats() MemoryStats {
	headerSize := int(unsafe.Sizeof(Trie{}))
	nodeSize := int(unsafe.Sizeof(node{}))
	var stats MemoryStats
	if t.Empty() {
		stats.NodeCount = 1
		stats.TotalBytes = headerSize + nodeSize
		stats.OverheadBytes = stats.TotalBytes
		return stats
	}
	stack := []*node{t.root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		stats.NodeCount++
		stats.StringBytes += len(n.key)
		stack = append(stack, n.children...)
	}
	stats.TotalBytes = headerSize + stats.NodeCount*nodeSize + stats.StringBytes
	stats.OverheadBytes = stats.TotalBytes - stats.StringBytes
	stats.BytesPerWord = float64(stats.TotalBytes) / float64(t.size)
	return stats
}

// WordMetrics walks the tree once, measuring each stored word as the sum of
// edge-label lengths along its path. Mode ties resolve to the lowest length.
func (t *Trie) WordMetrics() WordMetrics {
	var metrics WordMetrics
	if t.Empty() {
		return metrics
	}
	lengths := make([]int, 0, t.size)
	stack := []walkFrame{{t.root, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		length := f.depth + len(f.n.key)
		if f.n.isEnd {
			lengths = append(lengths, length)
		}
		for i := len(f.n.children) - 1; i >= 0; i-- {
			stack = append(stack, walkFrame{f.n.children[i], length})
		}
	}
	metrics.MinLength = lengths[0]
	metrics.MaxLength = lengths[0]
	freq := make(map[int]int, len(lengths))
	for _, l := range lengths {
		if l < metrics.MinLength {
			metrics.MinLength = l
		}
		if l > metrics.MaxLength {
			metrics.MaxLength = l
		}
		metrics.TotalCharacters += l
		freq[l]++
	}
	metrics.AverageLength = float64(metrics.TotalCharacters) / float64(len(lengths))
	metrics.ModeLength = modeOf(freq)
	metrics.LengthDistribution = make([]int, metrics.MaxLength+1)
	for _, l := range lengths {
		metrics.LengthDistribution[l]++
	}
	return metrics
}

// modeOf returns the most frequent value in freq, preferring the lowest
// value on a tie.
func modeOf(freq map[int]int) int {
	mode, best := 0, 0
	for v, count := range freq {
		if count > best || (count == best && v < mode) {
			mode, best = v, count
		}
	}
	return mode
}
