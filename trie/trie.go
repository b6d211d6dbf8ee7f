// Package trie implements an in-memory compressed (radix) trie over byte
// strings. Edges carry multi-byte labels; children are kept in a small
// vector sorted by the first byte of their label and located by binary
// search. The trie is not safe for concurrent mutation.
package trie

import (
	"sort"
)

// Trie is the root of a compressed radix tree storing a set of non-empty
// byte strings.
type Trie struct {
	root *node
	size int
}

// node is a single tree node. key is the label of the edge from the parent;
// parentKey duplicates key[0] so the parent-side slot can be located during
// cleanup without touching the label.
type node struct {
	key       []byte
	isEnd     bool
	parent    *node
	parentKey byte
	children  []*node // sorted ascending by key[0], first bytes unique
}

// New returns an empty Trie.
func New() *Trie {
	return &Trie{root: &node{}}
}

// findChild locates the child whose label starts with c. It returns the
// insertion index and the child, or nil when no child starts with c.
func (n *node) findChild(c byte) (int, *node) {
	i := sort.Search(len(n.children), func(i int) bool {
		return n.children[i].key[0] >= c
	})
	if i < len(n.children) && n.children[i].key[0] == c {
		return i, n.children[i]
	}
	return i, nil
}

// insertChildAt splices child into the sorted child vector at index i.
func (n *node) insertChildAt(i int, child *node) {
	n.children = append(n.children, nil)
	copy(n.children[i+1:], n.children[i:])
	n.children[i] = child
}

// removeChild detaches the child stored under first byte c, preserving order.
func (n *node) removeChild(c byte) {
	i, child := n.findChild(c)
	if child == nil {
		return
	}
	copy(n.children[i:], n.children[i+1:])
	n.children[len(n.children)-1] = nil
	n.children = n.children[:len(n.children)-1]
}

func commonPrefixLen(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}

// descend walks from the root consuming word against successive edge labels.
// It returns the deepest node reached, the number of label bytes matched when
// the word ends inside that node's label (0 on an exact node boundary), and
// whether the whole word was consumed. ok=false means the word diverged from
// every stored path.
func (t *Trie) descend(word []byte) (n *node, mid int, ok bool) {
	cur := t.root
	pos := 0
	for pos < len(word) {
		_, child := cur.findChild(word[pos])
		if child == nil {
			return cur, 0, false
		}
		k := commonPrefixLen(child.key, word[pos:])
		pos += k
		if k == len(child.key) {
			cur = child
			continue
		}
		if pos == len(word) {
			return child, k, true
		}
		return cur, 0, false
	}
	return cur, 0, true
}

// Insert adds word to the set. The empty string is ignored; inserting a word
// already present is a no-op.
func (t *Trie) Insert(word string) {
	if word == "" {
		return
	}
	w := []byte(word)
	cur := t.root
	pos := 0
	for pos < len(w) {
		c := w[pos]
		i, child := cur.findChild(c)
		if child == nil {
			leaf := &node{key: w[pos:], isEnd: true, parent: cur, parentKey: c}
			cur.insertChildAt(i, leaf)
			t.size++
			return
		}
		k := commonPrefixLen(child.key, w[pos:])
		if k == len(child.key) {
			pos += k
			cur = child
			if pos == len(w) {
				if !child.isEnd {
					child.isEnd = true
					t.size++
				}
				return
			}
			continue
		}
		mid := splitChild(cur, i, k)
		pos += k
		cur = mid
		if pos == len(w) {
			mid.isEnd = true
			t.size++
			return
		}
	}
}

// splitChild breaks the edge to parent.children[i] at offset k, introducing
// an intermediate node that carries the common prefix and inherits the
// demoted child as its sole descendant.
func splitChild(parent *node, i, k int) *node {
	child := parent.children[i]
	mid := &node{
		key:       child.key[:k:k],
		parent:    parent,
		parentKey: child.key[0],
	}
	child.key = child.key[k:]
	child.parent = mid
	child.parentKey = child.key[0]
	mid.children = []*node{child}
	parent.children[i] = mid
	return mid
}

// Search reports whether word is stored in the trie.
func (t *Trie) Search(word string) bool {
	n, mid, ok := t.descend([]byte(word))
	return ok && mid == 0 && n.isEnd
}

// StartsWith reports whether any stored word begins with prefix. The empty
// prefix matches any non-empty trie.
func (t *Trie) StartsWith(prefix string) bool {
	if prefix == "" {
		return !t.Empty()
	}
	_, _, ok := t.descend([]byte(prefix))
	return ok
}

// WordsWithPrefix returns every stored word beginning with prefix, in child
// order (byte-ascending per level, not globally sorted). The empty prefix
// enumerates the whole set.
func (t *Trie) WordsWithPrefix(prefix string) []string {
	p := []byte(prefix)
	n, mid, ok := t.descend(p)
	if !ok {
		return nil
	}
	var base []byte
	if mid > 0 {
		base = p[:len(p)-mid]
	} else {
		base = p[:len(p)-len(n.key)]
	}
	var out []string
	collect(n, base, func(word string) bool {
		out = append(out, word)
		return true
	})
	return out
}

// Walk visits every stored word in child order until fn returns false.
func (t *Trie) Walk(fn func(word string) bool) {
	collect(t.root, nil, fn)
}

// collect runs an explicit-stack DFS from n, emitting accumulated words at
// terminal nodes. An explicit stack keeps pathological label lengths from
// exhausting goroutine stacks.
func collect(n *node, base []byte, fn func(word string) bool) {
	type frame struct {
		n      *node
		prefix []byte
	}
	stack := []frame{{n, base}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		word := make([]byte, 0, len(f.prefix)+len(f.n.key))
		word = append(append(word, f.prefix...), f.n.key...)
		if f.n.isEnd && !fn(string(word)) {
			return
		}
		for i := len(f.n.children) - 1; i >= 0; i-- {
			stack = append(stack, frame{f.n.children[i], word})
		}
	}
}

// Remove deletes word from the set. It returns true iff the word was
// present. Childless non-terminal ancestors are pruned and any surviving
// single-child non-terminal node is merged with its child, keeping the tree
// in fully compressed form.
func (t *Trie) Remove(word string) bool {
	if word == "" {
		return false
	}
	n, mid, ok := t.descend([]byte(word))
	if !ok || mid != 0 || !n.isEnd {
		return false
	}
	n.isEnd = false
	t.size--
	t.cleanup(n)
	return true
}

// cleanup prunes the orphan chain starting at n, then re-compresses the
// surviving node.
func (t *Trie) cleanup(n *node) {
	cur := n
	for cur.parent != nil && len(cur.children) == 0 && !cur.isEnd {
		parent := cur.parent
		parent.removeChild(cur.parentKey)
		cur.parent = nil
		cur = parent
	}
	t.mergeSingleChild(cur)
}

// mergeSingleChild collapses cur into its sole child when cur is a non-root,
// non-terminal node left with exactly one child: the child absorbs the
// combined label and takes over cur's slot in the grandparent.
func (t *Trie) mergeSingleChild(cur *node) {
	if cur.parent == nil || cur.isEnd || len(cur.children) != 1 {
		return
	}
	child := cur.children[0]
	key := make([]byte, 0, len(cur.key)+len(child.key))
	key = append(append(key, cur.key...), child.key...)
	child.key = key
	child.parent = cur.parent
	child.parentKey = key[0]
	i, _ := cur.parent.findChild(cur.parentKey)
	cur.parent.children[i] = child
	cur.parent = nil
	cur.children = nil
}

// Empty reports whether no words are stored.
func (t *Trie) Empty() bool {
	return t.size == 0
}

// Size returns the number of stored words.
func (t *Trie) Size() int {
	return t.size
}

// Clear discards every stored word.
func (t *Trie) Clear() {
	t.root = &node{}
	t.size = 0
}
