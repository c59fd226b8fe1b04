// Package engine implements the ordered rule families that correct and
// annotate a token buffer: duplicate-word removal, abbreviation expansion,
// taboo and tone-of-voice flagging, multiword phrase correction, compound
// split/merge, capitalization, punctuation normalization and spelling
// suggestions. Families are applied in a configurable fixed order, each as
// one left-to-right pass; the engine keeps its cursor valid by applying
// the index deltas reported by the buffer after every mutation.
package engine

import (
	"fmt"

	"github.com/ormsson/ritlint/pkg/annotate"
	"github.com/ormsson/ritlint/pkg/buffer"
	"github.com/ormsson/ritlint/pkg/pool"
	"github.com/ormsson/ritlint/pkg/rules"
	"github.com/ormsson/ritlint/pkg/speller"
)

// Family identifies one rule family.
type Family int

const (
	// Punctuation normalizes quotes, ellipses and informal marks (N codes).
	Punctuation Family = iota
	// Duplicates removes or flags repeated words (C001/C004).
	Duplicates
	// Abbreviations expands wrong abbreviation forms (A001).
	Abbreviations
	// Taboo flags taboo and tone-of-voice words (T001/Y001).
	Taboo
	// Phrases corrects multiword error phrases (P codes).
	Phrases
	// Patterns runs registered pattern handlers.
	Patterns
	// Compounds splits wrongly merged and merges wrongly split compounds
	// (C002/C003/C005).
	Compounds
	// Capitalization fixes casing of words, months, acronyms and
	// numbers (Z codes).
	Capitalization
	// Spelling applies unique-error corrections and spelling
	// suggestions (S/U/W codes).
	Spelling
)

// DefaultOrder is the documented family application order. Later families
// see the effects of earlier ones; multiword phrase correction runs before
// compound handling (see DESIGN.md for the order-sensitivity discussion).
var DefaultOrder = []Family{
	Punctuation,
	Duplicates,
	Abbreviations,
	Taboo,
	Phrases,
	Patterns,
	Compounds,
	Capitalization,
	Spelling,
}

// Config controls engine behavior.
type Config struct {
	// Families is the application order; nil means DefaultOrder.
	Families []Family
	// ApplySuggestions applies the top spelling candidate as a
	// correction instead of emitting a suggestion annotation.
	ApplySuggestions bool
	// MaxSuggestions caps the ranked candidate list; 0 means 5.
	MaxSuggestions int
}

func (c Config) maxSuggestions() int {
	if c.MaxSuggestions <= 0 {
		return 5
	}
	return c.MaxSuggestions
}

// Engine applies rule families to token buffers. An Engine is immutable
// after construction and safe for concurrent use, provided each goroutine
// uses its own buffer and aggregator.
type Engine struct {
	tables   *rules.Tables
	suggest  speller.Suggester
	cfg      Config
	patterns []PatternHandler
}

// New returns an engine over the given tables. The suggester may be nil,
// in which case unknown-word detection and spelling suggestions are
// skipped (table-driven corrections still apply).
func New(tables *rules.Tables, suggest speller.Suggester, cfg Config) *Engine {
	return &Engine{tables: tables, suggest: suggest, cfg: cfg}
}

// RegisterPattern adds a pattern handler, run by the Patterns family in
// registration order. Handlers must be registered before the first Run.
func (e *Engine) RegisterPattern(h PatternHandler) {
	e.patterns = append(e.patterns, h)
}

// run-scoped state: tokens already claimed by a rule in this run are not
// re-examined by later single-token families.
type runState struct {
	buf     *buffer.Buffer
	agg     *annotate.Aggregator
	handled map[buffer.ID]bool
}

func (s *runState) claim(i int) {
	s.handled[s.buf.IDAt(i)] = true
}

func (s *runState) claimed(i int) bool {
	return s.handled[s.buf.IDAt(i)]
}

// annotateSpan records an annotation over tokens [i, j].
func (s *runState) annotateSpan(i, j int, ann annotate.Annotation) {
	s.agg.Add(s.buf.IDAt(i), s.buf.IDAt(j), ann)
}

// Run applies all configured families to the buffer, recording one
// annotation per change or flagged issue. The buffer should hold one
// sentence without boundary markers.
func (e *Engine) Run(buf *buffer.Buffer, agg *annotate.Aggregator) error {
	st := &runState{buf: buf, agg: agg, handled: make(map[buffer.ID]bool)}
	order := e.cfg.Families
	if order == nil {
		order = DefaultOrder
	}
	for _, fam := range order {
		var err error
		switch fam {
		case Punctuation:
			err = e.runPunctuation(st)
		case Duplicates:
			err = e.runDuplicates(st)
		case Abbreviations:
			err = e.runAbbreviations(st)
		case Taboo:
			e.runTaboo(st)
		case Phrases:
			err = e.runPhrases(st)
		case Patterns:
			err = e.runPatterns(st)
		case Compounds:
			err = e.runCompounds(st)
		case Capitalization:
			err = e.runCapitalization(st)
		case Spelling:
			err = e.runSpelling(st)
		default:
			err = fmt.Errorf("engine: unknown rule family %d", fam)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// phraseHeadAt reports whether a multiword phrase match starts at position
// i. Single-token families consult it so that a longer multiword match
// always wins over a single-token rule on its head word.
func (e *Engine) phraseHeadAt(st *runState, i int) bool {
	if e.tables.Phrases.Empty() {
		return false
	}
	texts := pool.GetStrings()
	defer pool.PutStrings(texts)
	for _, t := range st.buf.Window(i, e.tables.MaxPhraseLen) {
		*texts = append(*texts, t.Text)
	}
	for _, m := range e.tables.Phrases.Scan(*texts) {
		if m.Start == 0 {
			return true
		}
	}
	return false
}
