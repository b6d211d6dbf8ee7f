package trie

import (
	"sort"
)

// PatternSearch returns every stored word matching pattern, sorted ascending
// by byte order. In a pattern, '?' matches exactly one byte and '*' matches
// zero or more bytes; every other byte matches itself. There is no escape
// syntax. An empty pattern matches nothing.
func (t *Trie) PatternSearch(pattern string) []string {
	if pattern == "" || t.Empty() {
		return nil
	}
	var results []string
	t.Walk(func(word string) bool {
		if matchPattern(word, pattern) {
			results = append(results, word)
		}
		return true
	})
	sort.Strings(results)
	return results
}

// matchPattern implements the recursive glob match. A '*' in final position
// short-circuits to success.
func matchPattern(word, pattern string) bool {
	wi, pi := 0, 0
	for wi < len(word) && pi < len(pattern) {
		switch {
		case pattern[pi] == '?':
			wi++
			pi++
		case pattern[pi] == '*':
			if pi+1 == len(pattern) {
				return true
			}
			for i := wi; i <= len(word); i++ {
				if matchPattern(word[i:], pattern[pi+1:]) {
					return true
				}
			}
			return false
		case pattern[pi] == word[wi]:
			wi++
			pi++
		default:
			return false
		}
	}
	for pi < len(pattern) && pattern[pi] == '*' {
		pi++
	}
	return wi == len(word) && pi == len(pattern)
}
