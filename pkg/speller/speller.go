// Package speller defines the boundary to the spelling-suggestion and
// word-frequency service consumed by the correction engine, plus a
// lexicon-backed reference implementation that generates edit-distance-1
// candidates ranked by corpus frequency.
package speller

import (
	"sort"
	"strings"

	"github.com/orsinium-labs/stopwords"
)

// Candidate is one ranked correction candidate.
type Candidate struct {
	Word  string
	Score float64
}

// Suggester provides spelling candidates and word frequencies. The engine
// treats it as a black box; implementations must be safe for concurrent
// readers.
type Suggester interface {
	// Known reports whether the word form exists in the vocabulary.
	Known(word string) bool
	// Frequency returns a relative frequency score for the word form,
	// 0 for unknown words.
	Frequency(word string) float64
	// Suggest returns up to max ranked candidates for the word, best
	// first. An empty result means no plausible correction exists.
	Suggest(word string, max int) []Candidate
}

// Lexicon is a read-only word-frequency source backing the reference
// Suggester. internal/store provides a SQLite-backed implementation.
type Lexicon interface {
	Frequency(word string) (float64, bool)
}

// MapLexicon is an in-memory Lexicon.
type MapLexicon map[string]float64

// Frequency implements Lexicon.
func (m MapLexicon) Frequency(word string) (float64, bool) {
	f, ok := m[word]
	return f, ok
}

// Icelandic lower-case alphabet used for candidate generation.
const alphabet = "aábdðeéfghiíjklmnoóprstuúvxyýþæö"

// Letters that practically never occur in Icelandic words; a word
// containing one is assumed foreign and never auto-corrected.
const foreignLetters = "cwqøâãäçĉčêëîïñôõûüÿßĳ"

// Reference is the built-in Suggester: lexicon membership plus
// edit-distance-1 candidate generation (deletion, transposition,
// replacement, insertion), ranked by frequency.
type Reference struct {
	lex Lexicon
	// english recognizes English function words so that stray English
	// text is flagged as foreign rather than "corrected".
	english *stopwords.Stopwords
}

// NewReference returns a Suggester over the given lexicon.
func NewReference(lex Lexicon) *Reference {
	return &Reference{
		lex:     lex,
		english: stopwords.MustGet("en"),
	}
}

// Known implements Suggester.
func (r *Reference) Known(word string) bool {
	_, ok := r.lex.Frequency(strings.ToLower(word))
	return ok
}

// Frequency implements Suggester.
func (r *Reference) Frequency(word string) float64 {
	f, _ := r.lex.Frequency(strings.ToLower(word))
	return f
}

// Foreign reports whether the word looks like it belongs to another
// language: it contains non-Icelandic letters or is an English function
// word.
func (r *Reference) Foreign(word string) bool {
	lower := strings.ToLower(word)
	if strings.ContainsAny(lower, foreignLetters) {
		return true
	}
	return r.english != nil && r.english.Contains(lower)
}

// Suggest implements Suggester.
func (r *Reference) Suggest(word string, max int) []Candidate {
	if max <= 0 {
		return nil
	}
	lower := strings.ToLower(word)
	seen := map[string]bool{lower: true}
	var out []Candidate
	for _, cand := range edits1(lower) {
		if seen[cand] {
			continue
		}
		seen[cand] = true
		if f, ok := r.lex.Frequency(cand); ok {
			out = append(out, Candidate{Word: cand, Score: f})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Word < out[j].Word
	})
	if len(out) > max {
		out = out[:max]
	}
	return out
}

// edits1 returns all strings at edit distance 1 from w, in a fixed order
// so that suggestion ranking is deterministic.
func edits1(w string) []string {
	r := []rune(w)
	var out []string
	// Deletions.
	for i := range r {
		out = append(out, string(r[:i])+string(r[i+1:]))
	}
	// Adjacent transpositions.
	for i := 0; i+1 < len(r); i++ {
		sw := make([]rune, len(r))
		copy(sw, r)
		sw[i], sw[i+1] = sw[i+1], sw[i]
		out = append(out, string(sw))
	}
	// Replacements.
	for i := range r {
		for _, c := range alphabet {
			if r[i] == c {
				continue
			}
			out = append(out, string(r[:i])+string(c)+string(r[i+1:]))
		}
	}
	// Insertions.
	for i := 0; i <= len(r); i++ {
		for _, c := range alphabet {
			out = append(out, string(r[:i])+string(c)+string(r[i:]))
		}
	}
	return out
}
