package rules

import (
	"sort"
	"strings"

	trie "github.com/derekparker/trie/v3"
)

// CompoundTable indexes first parts of split compounds. A first part is a
// word that must not stand alone before one of its permitted
// continuations ("all góður" should be "allgóður"). The prefix structure
// of the trie also serves the reverse check: whether a single unknown
// token decomposes into a known first part plus a known continuation.
type CompoundTable struct {
	t    *trie.Trie[map[string]bool]
	size int
}

// NewCompoundTable returns an empty table.
func NewCompoundTable() *CompoundTable {
	return &CompoundTable{t: trie.New[map[string]bool]()}
}

// Add registers a first part and one permitted continuation. Both are
// expected in lower case.
func (c *CompoundTable) Add(first, continuation string) {
	if node, ok := c.t.Find(first); ok {
		node.Val()[continuation] = true
		return
	}
	c.t.Add(first, map[string]bool{continuation: true})
	c.size++
}

// Len returns the number of distinct first parts.
func (c *CompoundTable) Len() int { return c.size }

// Continuations returns the permitted continuations of a first part in
// sorted order, or nil if the word is not a known first part.
func (c *CompoundTable) Continuations(first string) []string {
	node, ok := c.t.Find(strings.ToLower(first))
	if !ok {
		return nil
	}
	set := node.Val()
	out := make([]string, 0, len(set))
	for w := range set {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// ShouldMerge reports whether first followed by second forms a split
// compound that must be merged.
func (c *CompoundTable) ShouldMerge(first, second string) bool {
	node, ok := c.t.Find(strings.ToLower(first))
	if !ok {
		return false
	}
	return node.Val()[strings.ToLower(second)]
}

// Decompose checks whether a single word splits into a known first part
// followed by a known continuation, using the longest first-part prefix.
// It returns the split point ("allgóður" -> "all", "góður") and true on a
// hit. Used to flag possible split compounds written together when the
// joined form is not otherwise known.
func (c *CompoundTable) Decompose(word string) (first, rest string, ok bool) {
	w := strings.ToLower(word)
	// Walk candidate first parts from longest to shortest.
	for cut := len(w) - 1; cut > 0; cut-- {
		head := w[:cut]
		node, found := c.t.Find(head)
		if !found {
			continue
		}
		if node.Val()[w[cut:]] {
			return head, w[cut:], true
		}
	}
	return "", "", false
}
