// Package annotate defines annotations, structured descriptions of
// corrections applied or issues flagged on a token span, and the
// aggregator that resolves them to final, ordered per-sentence lists
// after the buffer has stopped mutating.
package annotate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ormsson/ritlint/pkg/buffer"
)

// WarningSuffix marks warning-only annotation codes.
const WarningSuffix = "/w"

// Annotation describes one correction or flagged issue over a token span.
// Start/End are inclusive token positions valid for the buffer state at
// finalization time; CharStart/CharEnd are byte offsets into the original
// input and stay valid forever.
type Annotation struct {
	Start     int    `json:"start"`
	End       int    `json:"end"`
	CharStart int    `json:"start_char"`
	CharEnd   int    `json:"end_char"`
	Code      string `json:"code"`
	Text      string `json:"text"`
	Detail    string `json:"detail,omitempty"`
	// Suggest is a proposed replacement for the span, empty when the
	// correction has already been applied to the buffer.
	Suggest string `json:"suggest,omitempty"`
}

// IsWarning reports whether the annotation is warning-only.
func (a Annotation) IsWarning() bool { return strings.HasSuffix(a.Code, WarningSuffix) }

func (a Annotation) String() string {
	s := fmt.Sprintf("%03d-%03d: %-6s %s", a.Start, a.End, a.Code, a.Text)
	if a.Suggest != "" {
		s += " / [" + a.Suggest + "]"
	}
	return s
}

// specificity orders codes within one span: a longer code segment is the
// more specific one ("P_LEYTI" beats "S001", "C002" beats "C00").
func specificity(code string) int {
	return len(strings.TrimSuffix(code, WarningSuffix))
}

// pending is an annotation anchored to buffer IDs instead of positions,
// so it survives later merges, splits and deletions.
type pending struct {
	startID buffer.ID
	endID   buffer.ID
	ann     Annotation
	seq     int
}

// Aggregator collects annotations during rule application and resolves
// them against the final buffer state. It never mutates tokens.
type Aggregator struct {
	pending []pending
	seq     int
}

// NewAggregator returns an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Add records an annotation anchored to the given start and end token IDs.
// The Start/End/CharStart/CharEnd fields of ann are recomputed at
// finalization and may be left zero.
func (g *Aggregator) Add(startID, endID buffer.ID, ann Annotation) {
	g.pending = append(g.pending, pending{startID: startID, endID: endID, ann: ann, seq: g.seq})
	g.seq++
}

// Len returns the number of annotations recorded so far.
func (g *Aggregator) Len() int { return len(g.pending) }

// Finalize resolves all recorded annotations against the buffer's final
// state and returns them sorted by span start, then span end ascending.
// Annotations whose anchors were merged away are re-attributed to the
// absorbing token. Annotations whose anchors were deleted are dropped.
// When two annotations end up with identical spans, the one with the more
// specific code is kept; a dropped annotation that carried a user-visible
// suggestion is replaced by a generic merge note so the suggestion is not
// silently lost.
func (g *Aggregator) Finalize(buf *buffer.Buffer) []Annotation {
	resolved := make([]pending, 0, len(g.pending))
	for _, p := range g.pending {
		start, okS := buf.Position(p.startID)
		end, okE := buf.Position(p.endID)
		if !okS && !okE {
			continue
		}
		if !okS {
			start = end
		}
		if !okE {
			end = start
		}
		if end < start {
			start, end = end, start
		}
		p.ann.Start = start
		p.ann.End = end
		p.ann.CharStart = buf.At(start).Span.Start
		p.ann.CharEnd = buf.At(end).Span.End
		resolved = append(resolved, p)
	}

	// Identical spans after merging: keep the most specific code.
	bySpan := make(map[[2]int]int, len(resolved))
	out := make([]pending, 0, len(resolved))
	for _, p := range resolved {
		key := [2]int{p.ann.Start, p.ann.End}
		prior, dup := bySpan[key]
		if !dup {
			bySpan[key] = len(out)
			out = append(out, p)
			continue
		}
		kept, dropped := out[prior], p
		if specificity(p.ann.Code) > specificity(kept.ann.Code) {
			kept, dropped = p, out[prior]
			out[prior] = kept
			bySpan[key] = prior
		}
		if dropped.ann.Suggest != "" {
			// The dropped annotation had a user-visible suggestion:
			// emit a generic note instead of losing it.
			note := dropped.ann
			note.Code = "M001" + WarningSuffix
			note.Text = "Ábending féll brott við sameiningu tóka"
			out = append(out, pending{ann: note, seq: dropped.seq})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].ann, out[j].ann
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if a.End != b.End {
			return a.End < b.End
		}
		return out[i].seq < out[j].seq
	})

	final := make([]Annotation, len(out))
	for i, p := range out {
		final[i] = p.ann
	}
	return final
}

// Merge combines token-level annotations with externally produced
// sentence-level annotations (already position-based) under the same sort
// rule: span start ascending, span end ascending.
func Merge(tokenLevel, sentenceLevel []Annotation) []Annotation {
	out := make([]Annotation, 0, len(tokenLevel)+len(sentenceLevel))
	out = append(out, tokenLevel...)
	out = append(out, sentenceLevel...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		return out[i].End < out[j].End
	})
	return out
}
