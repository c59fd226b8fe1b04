package rules

import (
	"sort"
	"strings"

	"github.com/coregx/ahocorasick"
)

// PhraseSet matches multiword error phrases against token windows using a
// single Aho-Corasick automaton built over the normalized, space-joined
// phrase texts. Matching is done on a space-joined view of the window and
// mapped back to token indices, so only matches aligned on token
// boundaries count.
type PhraseSet struct {
	ac      *ahocorasick.Automaton
	phrases []Phrase
}

// PhraseMatch is one phrase hit over a token window. Start and End are
// inclusive token indices relative to the scanned window.
type PhraseMatch struct {
	Start  int
	End    int
	Phrase Phrase
}

func compilePhrases(phrases []Phrase) (*PhraseSet, int, error) {
	ps := &PhraseSet{phrases: phrases}
	maxLen := 0
	if len(phrases) == 0 {
		return ps, 0, nil
	}
	// Sort patterns so automaton construction is order-independent of
	// the table file layout.
	sort.Slice(ps.phrases, func(i, j int) bool {
		return strings.Join(ps.phrases[i].Words, " ") < strings.Join(ps.phrases[j].Words, " ")
	})
	patterns := make([]string, len(ps.phrases))
	for i, p := range ps.phrases {
		patterns[i] = strings.Join(p.Words, " ")
		if len(p.Words) > maxLen {
			maxLen = len(p.Words)
		}
	}
	ac, err := ahocorasick.NewBuilder().
		AddStrings(patterns).
		SetMatchKind(ahocorasick.LeftmostLongest).
		SetPrefilter(true).
		Build()
	if err != nil {
		return nil, 0, err
	}
	ps.ac = ac
	return ps, maxLen, nil
}

// Empty reports whether the set contains no phrases.
func (ps *PhraseSet) Empty() bool { return ps == nil || ps.ac == nil }

// Scan returns all boundary-aligned phrase matches over the given word
// sequence, reduced to a non-overlapping leftmost-longest selection.
func (ps *PhraseSet) Scan(words []string) []PhraseMatch {
	if ps.Empty() || len(words) == 0 {
		return nil
	}
	// Space-joined lowercase view with a map from byte offset to the
	// token index starting there.
	var sb strings.Builder
	starts := make(map[int]int, len(words))
	ends := make(map[int]int, len(words))
	for i, w := range words {
		if i > 0 {
			sb.WriteByte(' ')
		}
		starts[sb.Len()] = i
		sb.WriteString(strings.ToLower(w))
		ends[sb.Len()] = i
	}
	haystack := sb.String()

	raw := ps.ac.FindAllOverlapping([]byte(haystack))
	matches := make([]PhraseMatch, 0, len(raw))
	for _, m := range raw {
		from, okFrom := starts[m.Start]
		to, okTo := ends[m.End]
		if !okFrom || !okTo {
			// Not aligned on token boundaries ("leiti" inside
			// "útleiti" must not match).
			continue
		}
		matches = append(matches, PhraseMatch{Start: from, End: to, Phrase: ps.phrases[m.PatternID]})
	}

	// Greedy leftmost-longest, non-overlapping.
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Start != matches[j].Start {
			return matches[i].Start < matches[j].Start
		}
		return matches[i].End > matches[j].End
	})
	out := matches[:0]
	next := 0
	for _, m := range matches {
		if m.Start < next {
			continue
		}
		out = append(out, m)
		next = m.End + 1
	}
	return out
}
