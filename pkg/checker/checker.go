// Package checker wires tokenization, the rule engine and an optional
// sentence parser into the full correction pipeline. Sentences are
// produced lazily through a pull-based scanner so that large documents
// never need to be fully materialized; document statistics are folded up
// from the sentences the caller actually consumed.
package checker

import (
	"context"
	"strings"
	"time"

	"github.com/ormsson/ritlint/internal/tokenize"
	"github.com/ormsson/ritlint/pkg/annotate"
	"github.com/ormsson/ritlint/pkg/buffer"
	"github.com/ormsson/ritlint/pkg/engine"
	"github.com/ormsson/ritlint/pkg/rules"
	"github.com/ormsson/ritlint/pkg/speller"
	"github.com/ormsson/ritlint/pkg/token"
)

// ParseResult is what a sentence parser reports back. Annotations are
// position-based over the corrected token sequence the parser was given.
type ParseResult struct {
	// Failed marks a sentence the parser could not analyze.
	Failed bool
	// Ambiguity is the parse-tree ambiguity factor (1.0 = unambiguous).
	Ambiguity float64
	// Annotations are sentence-level findings (grammar rather than
	// token-level errors).
	Annotations []annotate.Annotation
}

// Parser analyzes one corrected sentence. Implementations wrap external
// parsing services; the zero pipeline runs without one.
type Parser interface {
	Parse(ctx context.Context, tokens []token.Token) (ParseResult, error)
}

// Options configures a Checker. The zero value gives the built-in rule
// tables, no suggester and no parser.
type Options struct {
	Tables    *rules.Tables
	Suggester speller.Suggester
	Parser    Parser
	Engine    engine.Config
}

// Checker is the assembled correction pipeline. It is immutable after
// construction and safe for concurrent use.
type Checker struct {
	eng    *engine.Engine
	parser Parser
}

// New assembles a pipeline from the given options.
func New(opts Options) *Checker {
	tables := opts.Tables
	if tables == nil {
		tables = rules.Default()
	}
	return &Checker{
		eng:    engine.New(tables, opts.Suggester, opts.Engine),
		parser: opts.Parser,
	}
}

// Engine exposes the underlying rule engine for pattern registration.
func (c *Checker) Engine() *engine.Engine { return c.eng }

// Sentence is one fully processed sentence.
type Sentence struct {
	// Tokens is the corrected token sequence, boundary markers excluded.
	Tokens []token.Token
	// Annotations is the combined, sorted annotation list.
	Annotations []annotate.Annotation
	// Paragraph is the zero-based index of the containing paragraph.
	Paragraph int
	// ParseFailed is set when the configured parser rejected the
	// sentence.
	ParseFailed bool
	// Ambiguity is the parser's ambiguity factor, 0 without a parser.
	Ambiguity float64
}

// Text renders the corrected sentence. Punctuation attaches to the
// preceding token; with spaced set every token is space-separated.
func (s Sentence) Text(spaced bool) string {
	var sb strings.Builder
	for i, t := range s.Tokens {
		if i > 0 && (spaced || t.Kind != token.Punctuation) {
			sb.WriteByte(' ')
		}
		sb.WriteString(t.Text)
	}
	return sb.String()
}

// CorrectedCount returns the number of tokens whose text differs from
// the original input.
func (s Sentence) CorrectedCount() int {
	n := 0
	for _, t := range s.Tokens {
		if t.Corrected() {
			n++
		}
	}
	return n
}

// TokenSource produces one token per call. The second return value is
// false once the stream is exhausted. Sources may be infinite; the
// scanner pulls one sentence's worth of tokens at a time.
type TokenSource func() (token.Token, bool)

// SliceSource adapts an in-memory token slice into a TokenSource.
func SliceSource(toks []token.Token) TokenSource {
	i := 0
	return func() (token.Token, bool) {
		if i >= len(toks) {
			return token.Token{}, false
		}
		t := toks[i]
		i++
		return t, true
	}
}

// Scanner produces sentences one at a time, in input order. It follows
// the bufio.Scanner access pattern: Scan, then Sentence, then Err after
// the loop.
type Scanner struct {
	ctx  context.Context
	c    *Checker
	next TokenSource
	para int
	cur  Sentence
	err  error
}

// Check tokenizes the text with the reference tokenizer and returns a
// lazy sentence scanner. No rule or parser work happens before the
// first Scan call.
func (c *Checker) Check(ctx context.Context, text string) *Scanner {
	return c.CheckTokens(ctx, SliceSource(tokenize.Tokenize(text)))
}

// CheckTokens returns a lazy sentence scanner over an external token
// source. Only the tokens of the sentence being scanned are held in
// memory, so arbitrarily long or unbounded streams can be checked.
func (c *Checker) CheckTokens(ctx context.Context, src TokenSource) *Scanner {
	return &Scanner{ctx: ctx, c: c, next: src, para: -1}
}

// Scan advances to the next sentence. It returns false at end of input
// or on error; Err distinguishes the two.
func (s *Scanner) Scan() bool {
	if s.err != nil {
		return false
	}
	for {
		if err := s.ctx.Err(); err != nil {
			s.err = err
			return false
		}
		t, ok := s.next()
		if !ok {
			return false
		}
		switch t.Kind {
		case token.ParagraphBegin:
			s.para++
		case token.SentenceBegin:
			sent, err := s.process(s.collect())
			if err != nil {
				s.err = err
				return false
			}
			s.cur = sent
			return true
		}
	}
}

// collect consumes tokens up to the sentence end marker.
func (s *Scanner) collect() []token.Token {
	var toks []token.Token
	for {
		t, ok := s.next()
		if !ok || t.Kind == token.SentenceEnd {
			break
		}
		toks = append(toks, t)
	}
	return toks
}

func (s *Scanner) process(toks []token.Token) (Sentence, error) {
	buf := buffer.New(toks)
	agg := annotate.NewAggregator()
	if err := s.c.eng.Run(buf, agg); err != nil {
		return Sentence{}, err
	}
	sent := Sentence{
		Tokens:      buf.Tokens(),
		Annotations: agg.Finalize(buf),
		Paragraph:   s.para,
	}
	if s.c.parser == nil {
		return sent, nil
	}

	res, err := s.c.parser.Parse(s.ctx, sent.Tokens)
	if err != nil {
		return Sentence{}, err
	}
	sent.Ambiguity = res.Ambiguity
	if res.Failed {
		sent.ParseFailed = true
		sent.Annotations = annotate.Merge(sent.Annotations, []annotate.Annotation{{
			Start: 0,
			End:   max(len(sent.Tokens)-1, 0),
			Code:  "E001",
			Text:  "Málsgreinin fellur ekki að mállíkaninu",
		}})
		return sent, nil
	}
	sent.Annotations = annotate.Merge(sent.Annotations, res.Annotations)
	return sent, nil
}

// Sentence returns the sentence produced by the last successful Scan.
func (s *Scanner) Sentence() Sentence { return s.cur }

// Err returns the first error the scanner hit, if any.
func (s *Scanner) Err() error { return s.err }

// Stats is a running fold over processed sentences.
type Stats struct {
	Paragraphs   int           `json:"paragraphs"`
	Sentences    int           `json:"sentences"`
	Tokens       int           `json:"tokens"`
	Corrected    int           `json:"corrected"`
	Annotations  int           `json:"annotations"`
	ParseFailed  int           `json:"parse_failed"`
	AmbiguitySum float64       `json:"-"`
	Elapsed      time.Duration `json:"elapsed_ns"`
}

// Add folds one sentence into the stats.
func (st *Stats) Add(s Sentence) {
	if s.Paragraph+1 > st.Paragraphs {
		st.Paragraphs = s.Paragraph + 1
	}
	st.Sentences++
	st.Tokens += len(s.Tokens)
	st.Corrected += s.CorrectedCount()
	st.Annotations += len(s.Annotations)
	if s.ParseFailed {
		st.ParseFailed++
	}
	st.AmbiguitySum += s.Ambiguity
}

// ParseRate returns the fraction of sentences the parser accepted.
func (st Stats) ParseRate() float64 {
	if st.Sentences == 0 {
		return 0
	}
	return float64(st.Sentences-st.ParseFailed) / float64(st.Sentences)
}

// AvgAmbiguity returns the mean ambiguity over parsed sentences.
func (st Stats) AvgAmbiguity() float64 {
	parsed := st.Sentences - st.ParseFailed
	if parsed == 0 {
		return 0
	}
	return st.AmbiguitySum / float64(parsed)
}

// CheckAll runs the whole pipeline eagerly and returns all sentences
// plus document statistics.
func (c *Checker) CheckAll(ctx context.Context, text string) ([]Sentence, Stats, error) {
	began := time.Now()
	var out []Sentence
	var stats Stats
	sc := c.Check(ctx, text)
	for sc.Scan() {
		s := sc.Sentence()
		out = append(out, s)
		stats.Add(s)
	}
	stats.Elapsed = time.Since(began)
	return out, stats, sc.Err()
}
