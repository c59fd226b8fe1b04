package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ormsson/ritlint/pkg/token"
)

func newBuf(texts ...string) *Buffer {
	toks := make([]token.Token, len(texts))
	off := 0
	for i, s := range texts {
		toks[i] = token.New(token.Word, s, token.Span{Start: off, End: off + len(s)})
		off += len(s) + 1
	}
	return New(toks)
}

func TestReplacePreservesSpanAndOriginal(t *testing.T) {
	b := newBuf("hestin", "minn")
	require.NoError(t, b.Replace(0, "hestinn"))

	tok := b.At(0)
	assert.Equal(t, "hestinn", tok.Text)
	assert.Equal(t, "hestin", tok.Original)
	assert.Equal(t, token.Span{Start: 0, End: 6}, tok.Span)
	assert.True(t, tok.Corrected())
}

func TestMergeKeepsFirstIDAndUnionsSpans(t *testing.T) {
	b := newBuf("annað", "hvort", "kom")
	firstID := b.IDAt(0)
	secondID := b.IDAt(1)

	delta, err := b.Merge(0, 1, "annaðhvort")
	require.NoError(t, err)
	assert.Equal(t, -1, delta)
	assert.Equal(t, 2, b.Len())

	merged := b.At(0)
	assert.Equal(t, "annaðhvort", merged.Text)
	assert.Equal(t, "annað hvort", merged.Original)
	// Union includes the gap between the merged tokens.
	assert.Equal(t, 0, merged.Span.Start)
	assert.Equal(t, len("annað hvort"), merged.Span.End)

	// The removed ID forwards to the absorbing token.
	pos, ok := b.Position(secondID)
	assert.True(t, ok)
	assert.Equal(t, 0, pos)
	assert.True(t, b.Absorbed(secondID))
	assert.Equal(t, firstID, b.IDAt(0))
}

func TestSplitApportionsSpans(t *testing.T) {
	b := newBuf("afþví", "kom")
	id := b.IDAt(0)
	end := b.At(0).Span.End

	delta, err := b.Split(0, []string{"af", "því"})
	require.NoError(t, err)
	assert.Equal(t, 1, delta)
	assert.Equal(t, 3, b.Len())

	first, second := b.At(0), b.At(1)
	assert.Equal(t, "af", first.Text)
	assert.Equal(t, "því", second.Text)
	assert.Equal(t, id, b.IDAt(0))
	assert.NotEqual(t, id, b.IDAt(1))

	// Conservation: parts tile the original span exactly.
	assert.Equal(t, 0, first.Span.Start)
	assert.Equal(t, first.Span.End, second.Span.Start)
	assert.Equal(t, end, second.Span.End)
}

func TestSplitMoreTextThanOriginal(t *testing.T) {
	b := newBuf("x")

	_, err := b.Split(0, []string{"fyrir", "fram"})
	require.NoError(t, err)
	// The last part absorbs the remainder; no part escapes the span.
	assert.Equal(t, 0, b.At(0).Span.Start)
	assert.Equal(t, 1, b.At(1).Span.End)
	assert.LessOrEqual(t, b.At(0).Span.End, 1)
}

func TestDeleteForwardsToNothing(t *testing.T) {
	b := newBuf("fékk", "fékk")
	dupID := b.IDAt(1)

	delta, err := b.Delete(1)
	require.NoError(t, err)
	assert.Equal(t, -1, delta)
	assert.Equal(t, 1, b.Len())

	_, ok := b.Position(dupID)
	assert.False(t, ok)
	assert.False(t, b.Absorbed(dupID))
}

func TestPositionSurvivesShifts(t *testing.T) {
	b := newBuf("a", "b", "c", "d")
	idC := b.IDAt(2)

	_, err := b.Delete(0)
	require.NoError(t, err)
	pos, ok := b.Position(idC)
	require.True(t, ok)
	assert.Equal(t, 1, pos)

	_, err = b.Split(0, []string{"b1", "b2"})
	require.NoError(t, err)
	pos, ok = b.Position(idC)
	require.True(t, ok)
	assert.Equal(t, 2, pos)
}

func TestChainedMergeForwarding(t *testing.T) {
	b := newBuf("a", "b", "c")
	idB, idC := b.IDAt(1), b.IDAt(2)

	_, err := b.Merge(1, 2, "bc")
	require.NoError(t, err)
	_, err = b.Merge(0, 1, "abc")
	require.NoError(t, err)

	require.Equal(t, 1, b.Len())
	// Both removed IDs resolve through the forwarding chain.
	for _, id := range []ID{idB, idC} {
		pos, ok := b.Position(id)
		require.True(t, ok)
		assert.Equal(t, 0, pos)
	}
}

func TestMutationErrors(t *testing.T) {
	b := newBuf("a")
	assert.Error(t, b.Replace(5, "x"))
	_, err := b.Merge(0, 3, "x")
	assert.Error(t, err)
	_, err = b.Split(2, []string{"x"})
	assert.Error(t, err)
	_, err = b.Split(0, nil)
	assert.Error(t, err)
	_, err = b.Delete(-1)
	assert.Error(t, err)
}

func TestWindowCopies(t *testing.T) {
	b := newBuf("a", "b", "c")
	win := b.Window(1, 5)
	require.Len(t, win, 2)
	win[0].Text = "mutated"
	assert.Equal(t, "b", b.At(1).Text)
	assert.Nil(t, b.Window(3, 1))
}
