package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ormsson/ritlint/pkg/annotate"
	"github.com/ormsson/ritlint/pkg/buffer"
	"github.com/ormsson/ritlint/pkg/rules"
	"github.com/ormsson/ritlint/pkg/speller"
	"github.com/ormsson/ritlint/pkg/token"
)

// words builds a buffer of word tokens with realistic byte spans, as if
// the words were separated by single spaces.
func words(ws ...string) *buffer.Buffer {
	toks := make([]token.Token, len(ws))
	off := 0
	for i, w := range ws {
		toks[i] = token.New(token.Word, w, token.Span{Start: off, End: off + len(w)})
		off += len(w) + 1
	}
	return buffer.New(toks)
}

func run(t *testing.T, e *Engine, buf *buffer.Buffer) []annotate.Annotation {
	t.Helper()
	agg := annotate.NewAggregator()
	require.NoError(t, e.Run(buf, agg))
	return agg.Finalize(buf)
}

func defaultEngine(cfg Config) *Engine {
	return New(rules.Default(), nil, cfg)
}

func TestUniqueErrorCorrection(t *testing.T) {
	e := defaultEngine(Config{})
	buf := words("Barnið", "vil", "grænann", "lit")
	anns := run(t, e, buf)

	assert.Equal(t, []string{"Barnið", "vil", "grænan", "lit"}, token.Texts(buf.Tokens()))
	require.Len(t, anns, 1)
	assert.Equal(t, "S001", anns[0].Code)
	assert.Equal(t, 2, anns[0].Start)
	assert.Equal(t, 2, anns[0].End)
}

func TestMultipleUniqueErrorsInOneSentence(t *testing.T) {
	e := defaultEngine(Config{})
	buf := words("Pakkin", "er", "fyrir", "hestin")
	anns := run(t, e, buf)

	assert.Equal(t, []string{"Pakkinn", "er", "fyrir", "hestinn"}, token.Texts(buf.Tokens()))
	require.Len(t, anns, 2)
	assert.Equal(t, 0, anns[0].Start)
	assert.Equal(t, 3, anns[1].Start)
	for _, a := range anns {
		assert.Equal(t, "S001", a.Code)
		assert.False(t, a.IsWarning())
	}
}

func TestDuplicateWordRemoved(t *testing.T) {
	e := defaultEngine(Config{})
	buf := words("Ég", "fékk", "fékk", "splunkunýjan", "bíl")
	anns := run(t, e, buf)

	assert.Equal(t, []string{"Ég", "fékk", "splunkunýjan", "bíl"}, token.Texts(buf.Tokens()))
	require.Len(t, anns, 1)
	assert.Equal(t, "C001", anns[0].Code)
	assert.Equal(t, 1, anns[0].Start)
}

func TestTripleDuplicateCollapsesToOne(t *testing.T) {
	e := defaultEngine(Config{})
	buf := words("fékk", "fékk", "fékk")
	run(t, e, buf)
	assert.Equal(t, []string{"Fékk"}, token.Texts(buf.Tokens()))
}

func TestAllowedMultipleOnlyFlagged(t *testing.T) {
	e := defaultEngine(Config{})
	buf := words("þetta", "er", "mjög", "mjög", "gott")
	anns := run(t, e, buf)

	assert.Equal(t, []string{"Þetta", "er", "mjög", "mjög", "gott"}, token.Texts(buf.Tokens()))
	var c004 []annotate.Annotation
	for _, a := range anns {
		if strings.HasPrefix(a.Code, "C004") {
			c004 = append(c004, a)
		}
	}
	require.Len(t, c004, 1)
	assert.True(t, c004[0].IsWarning())
	assert.Equal(t, 2, c004[0].Start)
	assert.Equal(t, 3, c004[0].End)
}

func TestTabooWordFlaggedNotChanged(t *testing.T) {
	e := defaultEngine(Config{})
	buf := words("hann", "er", "fábjáni")
	anns := run(t, e, buf)

	assert.Equal(t, "fábjáni", buf.At(2).Text)
	var taboo *annotate.Annotation
	for i, a := range anns {
		if strings.HasPrefix(a.Code, "T001") {
			taboo = &anns[i]
		}
	}
	require.NotNil(t, taboo)
	assert.True(t, taboo.IsWarning())
	assert.NotEmpty(t, taboo.Suggest)
	assert.NotEmpty(t, taboo.Detail)
	assert.Equal(t, 2, taboo.Start)
}

func TestToneOfVoiceFlagged(t *testing.T) {
	e := defaultEngine(Config{})
	buf := words("Á", "fundinn", "mætti", "undirritaður")
	anns := run(t, e, buf)

	require.NotEmpty(t, anns)
	assert.Equal(t, "Y001"+annotate.WarningSuffix, anns[0].Code)
	assert.Equal(t, "ég", anns[0].Suggest)
}

func TestPhraseCorrectionSameLength(t *testing.T) {
	e := defaultEngine(Config{})
	buf := words("þetta", "er", "að", "mestu", "leiti", "búið")
	anns := run(t, e, buf)

	assert.Equal(t, []string{"Þetta", "er", "að", "mestu", "leyti", "búið"}, token.Texts(buf.Tokens()))
	var p *annotate.Annotation
	for i, a := range anns {
		if strings.HasPrefix(a.Code, "P_") {
			p = &anns[i]
		}
	}
	require.NotNil(t, p)
	assert.Equal(t, "P_LEYTI", p.Code)
	assert.Equal(t, 2, p.Start)
	assert.Equal(t, 4, p.End)
}

func TestPhraseCorrectionMergesTokens(t *testing.T) {
	e := defaultEngine(Config{})
	buf := words("annað", "hvort", "er", "þetta", "gott")
	anns := run(t, e, buf)

	assert.Equal(t, []string{"Annaðhvort", "er", "þetta", "gott"}, token.Texts(buf.Tokens()))
	var p *annotate.Annotation
	for i, a := range anns {
		if a.Code == "P_ANNADHVORT" {
			p = &anns[i]
		}
	}
	require.NotNil(t, p)
	assert.Equal(t, 0, p.Start)
	assert.Equal(t, 1, p.End)
	// Conservation: the rewritten tokens exactly cover the original
	// byte range of the matched phrase.
	assert.Equal(t, 0, buf.At(0).Span.Start)
	assert.Equal(t, buf.At(0).Span.End, buf.At(1).Span.Start)
	assert.Equal(t, len("annað hvort er"), buf.At(1).Span.End)
}

func TestPhraseBeatsSingleTokenRule(t *testing.T) {
	b := rules.NewBuilder()
	b.AddUniqueError("leiti", "leyti")
	b.AddPhrase("að mestu leiti", "LEYTI", "að mestu leyti")
	tables, err := b.Build()
	require.NoError(t, err)

	e := New(tables, nil, Config{})
	buf := words("Þetta", "er", "að", "mestu", "leiti")
	anns := run(t, e, buf)

	require.Len(t, anns, 1)
	assert.Equal(t, "P_LEYTI", anns[0].Code)
	assert.Equal(t, []string{"Þetta", "er", "að", "mestu", "leyti"}, token.Texts(buf.Tokens()))
}

func TestWrongCompoundSplit(t *testing.T) {
	e := defaultEngine(Config{})
	buf := words("Afþví", "fór", "hann")
	anns := run(t, e, buf)

	assert.Equal(t, []string{"Af", "því", "fór", "hann"}, token.Texts(buf.Tokens()))
	require.NotEmpty(t, anns)
	assert.Equal(t, "C002", anns[0].Code)
	assert.Equal(t, 0, anns[0].Start)
	assert.Equal(t, 1, anns[0].End)
	// Conservation: the split parts exactly cover the original span.
	assert.Equal(t, 0, buf.At(0).Span.Start)
	assert.Equal(t, buf.At(0).Span.End, buf.At(1).Span.Start)
	assert.Equal(t, len("Afþví"), buf.At(1).Span.End)
}

func TestSplitCompoundMerged(t *testing.T) {
	e := defaultEngine(Config{})
	buf := words("hann", "er", "all", "góður")
	anns := run(t, e, buf)

	assert.Equal(t, []string{"Hann", "er", "allgóður"}, token.Texts(buf.Tokens()))
	var c *annotate.Annotation
	for i, a := range anns {
		if a.Code == "C003" {
			c = &anns[i]
		}
	}
	require.NotNil(t, c)
	assert.Equal(t, 2, c.Start)
	assert.Equal(t, 2, c.End)
}

func TestCapitalizationOfListedWord(t *testing.T) {
	e := defaultEngine(Config{})
	buf := words("Hann", "er", "íslendingur")
	anns := run(t, e, buf)

	assert.Equal(t, "Íslendingur", buf.At(2).Text)
	require.NotEmpty(t, anns)
	assert.Equal(t, "Z002", anns[0].Code)
}

func TestMonthLowercasedMidSentence(t *testing.T) {
	e := defaultEngine(Config{})
	buf := words("Hann", "kom", "í", "Janúar")
	anns := run(t, e, buf)

	assert.Equal(t, "janúar", buf.At(3).Text)
	require.NotEmpty(t, anns)
	assert.Equal(t, "Z003", anns[0].Code)
}

func TestMonthKeptAtSentenceStart(t *testing.T) {
	e := defaultEngine(Config{})
	buf := words("Janúar", "var", "kaldur")
	anns := run(t, e, buf)

	assert.Equal(t, "Janúar", buf.At(0).Text)
	assert.Empty(t, anns)
}

func TestAcronymUppercased(t *testing.T) {
	e := defaultEngine(Config{})
	buf := words("Fréttir", "frá", "rúv")
	anns := run(t, e, buf)

	assert.Equal(t, "RÚV", buf.At(2).Text)
	require.NotEmpty(t, anns)
	assert.Equal(t, "Z007", anns[0].Code)
}

func TestSentenceStartCapitalized(t *testing.T) {
	e := defaultEngine(Config{})
	buf := words("barnið", "er", "glatt")
	anns := run(t, e, buf)

	assert.Equal(t, "Barnið", buf.At(0).Text)
	require.NotEmpty(t, anns)
	assert.Equal(t, "Z002", anns[0].Code)
}

func TestSingleLetterCorrection(t *testing.T) {
	e := defaultEngine(Config{})
	buf := words("Hann", "fór", "i", "bæinn")
	anns := run(t, e, buf)

	assert.Equal(t, "í", buf.At(2).Text)
	require.NotEmpty(t, anns)
	assert.Equal(t, "S004", anns[0].Code)
}

func TestSpellingSuggestionNotApplied(t *testing.T) {
	lex := speller.MapLexicon{"halló": 10, "heimur": 5}
	e := New(rules.Default(), speller.NewReference(lex), Config{})
	buf := words("Halló", "heinur")
	anns := run(t, e, buf)

	// The token keeps its text; the annotation proposes the fix.
	assert.Equal(t, "heinur", buf.At(1).Text)
	require.NotEmpty(t, anns)
	a := anns[len(anns)-1]
	assert.True(t, strings.HasPrefix(a.Code, "W00"))
	assert.True(t, a.IsWarning())
	assert.Equal(t, "heimur", a.Suggest)
}

func TestSpellingSuggestionApplied(t *testing.T) {
	lex := speller.MapLexicon{"halló": 10, "heimur": 5}
	e := New(rules.Default(), speller.NewReference(lex), Config{ApplySuggestions: true})
	buf := words("Halló", "heinur")
	anns := run(t, e, buf)

	assert.Equal(t, "heimur", buf.At(1).Text)
	require.NotEmpty(t, anns)
	a := anns[len(anns)-1]
	assert.Equal(t, "S004", a.Code)
	assert.Empty(t, a.Suggest)
}

func TestUnknownWordWithoutCandidates(t *testing.T) {
	lex := speller.MapLexicon{"halló": 10}
	e := New(rules.Default(), speller.NewReference(lex), Config{})
	buf := words("Halló", "xyzzyplugh")
	anns := run(t, e, buf)

	require.NotEmpty(t, anns)
	a := anns[len(anns)-1]
	assert.True(t, strings.HasPrefix(a.Code, "U001"))
	assert.Empty(t, a.Suggest)
}

func TestForeignWordFlaggedAsWarning(t *testing.T) {
	lex := speller.MapLexicon{}
	e := New(rules.Default(), speller.NewReference(lex), Config{})
	buf := words("Orðið", "software", "er", "enska")
	anns := run(t, e, buf)

	assert.Equal(t, "software", buf.At(1).Text)
	var u *annotate.Annotation
	for i, a := range anns {
		if a.Start == 1 {
			u = &anns[i]
		}
	}
	require.NotNil(t, u)
	assert.True(t, u.IsWarning())
}

func TestAllUpperImmuneToSpelling(t *testing.T) {
	lex := speller.MapLexicon{}
	e := New(rules.Default(), speller.NewReference(lex), Config{})
	buf := words("Stofnunin", "ABCDE", "var", "lögð", "niður")
	anns := run(t, e, buf)
	for _, a := range anns {
		assert.NotEqual(t, 1, a.Start, "all-upper token must not be flagged: %v", a)
	}
}

func TestPunctuationInformalMarkRewritten(t *testing.T) {
	e := defaultEngine(Config{})
	toks := []token.Token{
		token.New(token.Word, "Hvað", token.Span{Start: 0, End: 6}),
		{Kind: token.Punctuation, Text: "?!", Original: "?!", Span: token.Span{Start: 6, End: 8}, Value: token.Value{Norm: "?"}},
	}
	buf := buffer.New(toks)
	anns := run(t, e, buf)

	assert.Equal(t, "?", buf.At(1).Text)
	require.NotEmpty(t, anns)
	assert.Equal(t, "N003", anns[0].Code)
}

func TestPatternHandlerRewrite(t *testing.T) {
	e := defaultEngine(Config{})
	e.RegisterPattern(PatternFunc(func(w []token.Token) (PatternMatch, bool) {
		if len(w) >= 2 && w[0].Text == "síðast" && w[1].Text == "liðinn" {
			return PatternMatch{
				Length:      2,
				Replacement: []string{"síðastliðinn"},
				Code:        "P_SL",
				Text:        "Rita á 'síðastliðinn' í einu orði",
			}, true
		}
		return PatternMatch{}, false
	}))
	buf := words("Hann", "kom", "síðast", "liðinn", "mánudag")
	anns := run(t, e, buf)

	assert.Equal(t, []string{"Hann", "kom", "síðastliðinn", "mánudag"}, token.Texts(buf.Tokens()))
	require.NotEmpty(t, anns)
	assert.Equal(t, "P_SL", anns[0].Code)
}

func TestIdempotentOnCorrectedOutput(t *testing.T) {
	e := defaultEngine(Config{})
	buf := words("Pakkin", "er", "afþví", "fyrir", "hestin", "hestin")
	run(t, e, buf)
	first := token.Texts(buf.Tokens())

	buf2 := buffer.New(buf.Tokens())
	anns := run(t, e, buf2)
	assert.Equal(t, first, token.Texts(buf2.Tokens()))
	for _, a := range anns {
		assert.True(t, a.IsWarning(), "second pass must only emit flag-only annotations: %v", a)
	}
}

func TestAnnotationsSortedAndSpansValid(t *testing.T) {
	e := defaultEngine(Config{})
	buf := words("pakkin", "fékk", "fékk", "afþví", "grænann", "lit", "í", "Janúar")
	anns := run(t, e, buf)

	require.NotEmpty(t, anns)
	n := buf.Len()
	for i, a := range anns {
		assert.LessOrEqual(t, a.Start, a.End)
		assert.GreaterOrEqual(t, a.Start, 0)
		assert.Less(t, a.End, n)
		assert.LessOrEqual(t, a.CharStart, a.CharEnd)
		if i > 0 {
			prev := anns[i-1]
			ok := prev.Start < a.Start || (prev.Start == a.Start && prev.End <= a.End)
			assert.True(t, ok, "annotations out of order: %v before %v", prev, a)
		}
	}
}

func TestDeterministicOutput(t *testing.T) {
	e := defaultEngine(Config{})
	input := []string{"pakkin", "fékk", "fékk", "afþví", "grænann", "lit"}
	var baseline []annotate.Annotation
	var texts []string
	for trial := 0; trial < 5; trial++ {
		buf := words(input...)
		anns := run(t, e, buf)
		if trial == 0 {
			baseline = anns
			texts = token.Texts(buf.Tokens())
			continue
		}
		assert.Equal(t, baseline, anns)
		assert.Equal(t, texts, token.Texts(buf.Tokens()))
	}
}

func TestFamilyOrderConfigurable(t *testing.T) {
	// With spelling disabled entirely, the unique error goes uncorrected.
	e := defaultEngine(Config{Families: []Family{Duplicates, Capitalization}})
	buf := words("Barnið", "vil", "grænann", "lit")
	run(t, e, buf)
	assert.Equal(t, "grænann", buf.At(2).Text)
}

func TestPhraseAndCompoundOrderResolution(t *testing.T) {
	b := rules.NewBuilder()
	b.AddSplitCompound("all", "góður")
	b.AddPhrase("all góður", "ALLGODUR", "mjög góður")
	tables, err := b.Build()
	require.NoError(t, err)

	// The default order scans phrases before compound merging, so the
	// phrase rewrite wins and claims the pair.
	e := New(tables, nil, Config{})
	buf := words("Hann", "er", "all", "góður", "maður")
	anns := run(t, e, buf)
	assert.Equal(t, []string{"Hann", "er", "mjög", "góður", "maður"}, token.Texts(buf.Tokens()))
	require.Len(t, anns, 1)
	assert.Equal(t, "P_ALLGODUR", anns[0].Code)

	// Compounds first: the pair is merged before the phrase scan and no
	// two-token window remains to match.
	e = New(tables, nil, Config{Families: []Family{Compounds, Phrases}})
	buf = words("Hann", "er", "all", "góður", "maður")
	anns = run(t, e, buf)
	assert.Equal(t, []string{"Hann", "er", "allgóður", "maður"}, token.Texts(buf.Tokens()))
	require.Len(t, anns, 1)
	assert.Equal(t, "C003", anns[0].Code)
}

func TestTwoPeriodRunFlagged(t *testing.T) {
	e := defaultEngine(Config{})
	toks := []token.Token{
		token.New(token.Word, "Jæja", token.Span{Start: 0, End: 5}),
		{Kind: token.Punctuation, Text: "..", Original: "..", Span: token.Span{Start: 5, End: 7}, Value: token.Value{Norm: "…"}},
	}
	buf := buffer.New(toks)
	anns := run(t, e, buf)

	assert.Equal(t, "..", buf.At(1).Text)
	require.Len(t, anns, 1)
	assert.Equal(t, "N002"+annotate.WarningSuffix, anns[0].Code)
	assert.Equal(t, ".", anns[0].Suggest)
}
