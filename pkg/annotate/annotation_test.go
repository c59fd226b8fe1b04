package annotate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ormsson/ritlint/pkg/buffer"
	"github.com/ormsson/ritlint/pkg/token"
)

func newBuf(texts ...string) *buffer.Buffer {
	toks := make([]token.Token, len(texts))
	off := 0
	for i, s := range texts {
		toks[i] = token.New(token.Word, s, token.Span{Start: off, End: off + len(s)})
		off += len(s) + 1
	}
	return buffer.New(toks)
}

func TestWarningCode(t *testing.T) {
	assert.False(t, Annotation{Code: "S001"}.IsWarning())
	assert.True(t, Annotation{Code: "T001/w"}.IsWarning())
}

func TestFinalizeResolvesPositions(t *testing.T) {
	buf := newBuf("a", "b", "c")
	agg := NewAggregator()
	agg.Add(buf.IDAt(1), buf.IDAt(2), Annotation{Code: "X001"})

	// A deletion before the span shifts it left.
	_, err := buf.Delete(0)
	require.NoError(t, err)

	anns := agg.Finalize(buf)
	require.Len(t, anns, 1)
	assert.Equal(t, 0, anns[0].Start)
	assert.Equal(t, 1, anns[0].End)
}

func TestFinalizeComputesCharSpans(t *testing.T) {
	buf := newBuf("foo", "barbar")
	agg := NewAggregator()
	agg.Add(buf.IDAt(1), buf.IDAt(1), Annotation{Code: "X001"})

	anns := agg.Finalize(buf)
	require.Len(t, anns, 1)
	assert.Equal(t, 4, anns[0].CharStart)
	assert.Equal(t, 10, anns[0].CharEnd)
}

func TestFinalizeDropsFullyDeletedAnchors(t *testing.T) {
	buf := newBuf("a", "b")
	agg := NewAggregator()
	agg.Add(buf.IDAt(1), buf.IDAt(1), Annotation{Code: "X001"})

	_, err := buf.Delete(1)
	require.NoError(t, err)
	assert.Empty(t, agg.Finalize(buf))
}

func TestFinalizeReanchorsMergedTokens(t *testing.T) {
	buf := newBuf("annað", "hvort")
	agg := NewAggregator()
	agg.Add(buf.IDAt(1), buf.IDAt(1), Annotation{Code: "X001"})

	_, err := buf.Merge(0, 1, "annaðhvort")
	require.NoError(t, err)

	anns := agg.Finalize(buf)
	require.Len(t, anns, 1)
	assert.Equal(t, 0, anns[0].Start)
	assert.Equal(t, 0, anns[0].End)
}

func TestIdenticalSpansKeepMoreSpecificCode(t *testing.T) {
	buf := newBuf("orð")
	agg := NewAggregator()
	agg.Add(buf.IDAt(0), buf.IDAt(0), Annotation{Code: "U001"})
	agg.Add(buf.IDAt(0), buf.IDAt(0), Annotation{Code: "U001234"})

	anns := agg.Finalize(buf)
	require.Len(t, anns, 1)
	assert.Equal(t, "U001234", anns[0].Code)
}

func TestDroppedSuggestionBecomesMergeNote(t *testing.T) {
	buf := newBuf("orð")
	agg := NewAggregator()
	agg.Add(buf.IDAt(0), buf.IDAt(0), Annotation{Code: "W00123", Text: "keep me"})
	agg.Add(buf.IDAt(0), buf.IDAt(0), Annotation{Code: "T001", Suggest: "betra"})

	anns := agg.Finalize(buf)
	require.Len(t, anns, 2)
	assert.Equal(t, "W00123", anns[0].Code)
	assert.Equal(t, "M001/w", anns[1].Code)
	assert.Equal(t, "betra", anns[1].Suggest)
}

func TestFinalizeSortsBySpan(t *testing.T) {
	buf := newBuf("a", "b", "c")
	agg := NewAggregator()
	agg.Add(buf.IDAt(2), buf.IDAt(2), Annotation{Code: "C"})
	agg.Add(buf.IDAt(0), buf.IDAt(1), Annotation{Code: "A"})
	agg.Add(buf.IDAt(0), buf.IDAt(0), Annotation{Code: "B"})

	anns := agg.Finalize(buf)
	require.Len(t, anns, 3)
	assert.Equal(t, "B", anns[0].Code)
	assert.Equal(t, "A", anns[1].Code)
	assert.Equal(t, "C", anns[2].Code)
}

func TestMergeCombinesSorted(t *testing.T) {
	tok := []Annotation{{Start: 0, End: 0, Code: "A"}, {Start: 2, End: 2, Code: "C"}}
	sent := []Annotation{{Start: 1, End: 1, Code: "B"}}
	out := Merge(tok, sent)
	require.Len(t, out, 3)
	assert.Equal(t, []string{"A", "B", "C"}, []string{out[0].Code, out[1].Code, out[2].Code})
}
