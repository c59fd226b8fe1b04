// Package buffer implements the mutable token sequence the rule engine
// operates on. Tokens carry stable internal identifiers so that annotations
// anchored to them can be resolved to current positions after any sequence
// of replace, merge, split and delete operations. A position index is
// rebuilt after every mutation; callers receive an index delta from each
// mutating operation to keep their iteration cursors valid.
package buffer

import (
	"fmt"

	"github.com/ormsson/ritlint/pkg/token"
)

// ID is a stable identifier of a token within one buffer. IDs survive
// position shifts; a token removed by merge forwards its ID to the token
// that absorbed it, a deleted token's ID resolves to nothing.
type ID int

// None is the forwarding target of a deleted token.
const None ID = -1

type entry struct {
	id  ID
	tok token.Token
}

// Buffer owns the token sequence for one sentence (or batch) of processing.
// It only mutates tokens and reports deltas; emitting annotations for
// mutations is the caller's responsibility.
type Buffer struct {
	entries []entry
	nextID  ID
	// forward maps removed IDs to the ID that absorbed them (merge),
	// or to None (delete).
	forward map[ID]ID
	// pos maps live IDs to current positions; rebuilt after every mutation.
	pos map[ID]int
}

// New creates a buffer over the given tokens.
func New(tokens []token.Token) *Buffer {
	b := &Buffer{
		entries: make([]entry, len(tokens)),
		forward: make(map[ID]ID),
		pos:     make(map[ID]int, len(tokens)),
	}
	for i, t := range tokens {
		b.entries[i] = entry{id: ID(i), tok: t}
	}
	b.nextID = ID(len(tokens))
	b.reindex()
	return b
}

func (b *Buffer) reindex() {
	clear(b.pos)
	for i, e := range b.entries {
		b.pos[e.id] = i
	}
}

// Len returns the current number of tokens.
func (b *Buffer) Len() int { return len(b.entries) }

// At returns the token at position i. It panics on out-of-range access,
// like a slice; mutating operations return errors instead.
func (b *Buffer) At(i int) token.Token { return b.entries[i].tok }

// IDAt returns the stable identifier of the token at position i.
func (b *Buffer) IDAt(i int) ID { return b.entries[i].id }

// Position resolves an ID to its current position, following merge
// forwarding. The second result is false if the token was deleted.
func (b *Buffer) Position(id ID) (int, bool) {
	for {
		if p, ok := b.pos[id]; ok {
			return p, true
		}
		next, ok := b.forward[id]
		if !ok || next == None {
			return 0, false
		}
		id = next
	}
}

// Absorbed reports whether the given ID was removed by a merge (as opposed
// to deleted or still live).
func (b *Buffer) Absorbed(id ID) bool {
	if _, ok := b.pos[id]; ok {
		return false
	}
	next, ok := b.forward[id]
	return ok && next != None
}

// Window returns up to maxLen tokens starting at position i, without
// mutating state. The returned slice is a copy.
func (b *Buffer) Window(i, maxLen int) []token.Token {
	if i < 0 || i >= len(b.entries) {
		return nil
	}
	end := i + maxLen
	if end > len(b.entries) {
		end = len(b.entries)
	}
	out := make([]token.Token, end-i)
	for k := i; k < end; k++ {
		out[k-i] = b.entries[k].tok
	}
	return out
}

// Tokens returns a copy of the current token sequence.
func (b *Buffer) Tokens() []token.Token {
	out := make([]token.Token, len(b.entries))
	for i, e := range b.entries {
		out[i] = e.tok
	}
	return out
}

// Replace rewrites the text of the token at position i in place. The
// token's span and original text are preserved.
func (b *Buffer) Replace(i int, newText string) error {
	if i < 0 || i >= len(b.entries) {
		return fmt.Errorf("buffer: replace at %d out of range [0,%d)", i, len(b.entries))
	}
	b.entries[i].tok.Text = newText
	return nil
}

// Merge collapses tokens [i, j] (inclusive) into a single word token with
// the given text. The merged token keeps the first token's ID; the span is
// the union of the merged originals, including any gap between them. The
// returned delta is the change in buffer length (always negative).
func (b *Buffer) Merge(i, j int, newText string) (delta int, err error) {
	if i < 0 || j >= len(b.entries) || i > j {
		return 0, fmt.Errorf("buffer: merge [%d,%d] out of range [0,%d)", i, j, len(b.entries))
	}
	if i == j {
		return 0, b.Replace(i, newText)
	}
	first := &b.entries[i]
	span := first.tok.Span
	original := first.tok.Original
	for k := i + 1; k <= j; k++ {
		e := b.entries[k]
		span = span.Union(e.tok.Span)
		if e.tok.Original != "" {
			if original != "" {
				original += " "
			}
			original += e.tok.Original
		}
		b.forward[e.id] = first.id
	}
	first.tok = token.Token{
		Kind:     token.Word,
		Text:     newText,
		Original: original,
		Span:     span,
	}
	b.entries = append(b.entries[:i+1], b.entries[j+1:]...)
	b.reindex()
	return i - j, nil
}

// Split expands the token at position i into len(parts) tokens. The
// original span is apportioned by the cumulative rune length of the parts;
// parts beyond the original text get zero-width spans at the span end.
// The first part keeps the token's ID. The returned delta is the change in
// buffer length.
func (b *Buffer) Split(i int, parts []string) (delta int, err error) {
	if i < 0 || i >= len(b.entries) {
		return 0, fmt.Errorf("buffer: split at %d out of range [0,%d)", i, len(b.entries))
	}
	if len(parts) == 0 {
		return 0, fmt.Errorf("buffer: split at %d with no parts", i)
	}
	if len(parts) == 1 {
		return 0, b.Replace(i, parts[0])
	}
	old := b.entries[i]
	origRunes := []rune(old.tok.Original)
	totalRunes := 0
	for _, p := range parts {
		totalRunes += len([]rune(p))
	}

	newEntries := make([]entry, len(parts))
	runeCursor := 0
	byteCursor := old.tok.Span.Start
	for k, p := range parts {
		partRunes := len([]rune(p))
		// Apportion original runes proportionally to the part's share
		// of the new surface text, clamped to what remains.
		var take int
		if totalRunes > 0 {
			take = (partRunes * len(origRunes)) / totalRunes
		}
		if k == len(parts)-1 {
			take = len(origRunes) - runeCursor
		}
		if runeCursor+take > len(origRunes) {
			take = len(origRunes) - runeCursor
		}
		sub := string(origRunes[runeCursor : runeCursor+take])
		start := byteCursor
		end := start + len(sub)
		if end > old.tok.Span.End {
			end = old.tok.Span.End
		}
		id := old.id
		if k > 0 {
			id = b.nextID
			b.nextID++
		}
		newEntries[k] = entry{
			id: id,
			tok: token.Token{
				Kind:     token.Word,
				Text:     p,
				Original: sub,
				Span:     token.Span{Start: start, End: end},
			},
		}
		runeCursor += take
		byteCursor = end
	}
	// Conservation: the last part absorbs any rounding remainder so the
	// parts exactly cover the original span.
	newEntries[len(parts)-1].tok.Span.End = old.tok.Span.End

	b.entries = append(b.entries[:i], append(newEntries, b.entries[i+1:]...)...)
	b.reindex()
	return len(parts) - 1, nil
}

// Delete removes the token at position i. Its ID resolves to nothing
// afterwards. The returned delta is always -1 on success.
func (b *Buffer) Delete(i int) (delta int, err error) {
	if i < 0 || i >= len(b.entries) {
		return 0, fmt.Errorf("buffer: delete at %d out of range [0,%d)", i, len(b.entries))
	}
	b.forward[b.entries[i].id] = None
	b.entries = append(b.entries[:i], b.entries[i+1:]...)
	b.reindex()
	return -1, nil
}
