package engine

import "github.com/ormsson/ritlint/pkg/token"

// PatternMatch is the result of a pattern handler examining a token
// window. Length counts matched tokens from the window start. A match
// with a Replacement rewrites the matched span; one without only emits a
// warning annotation carrying Suggest.
type PatternMatch struct {
	Length      int
	Replacement []string
	Code        string
	Text        string
	Suggest     string
}

// PatternHandler is the extension point for custom multi-token rules.
// MatchWindow receives the tokens from the current engine position to the
// end of the buffer and reports whether a match starts at window[0].
// Handlers must not retain the window slice.
//
// Handlers are registered explicitly via Engine.RegisterPattern; there is
// no implicit discovery. A handler must be deterministic: the same window
// always yields the same match, or engine output stops being reproducible.
type PatternHandler interface {
	MatchWindow(window []token.Token) (PatternMatch, bool)
}

// PatternFunc adapts a function to the PatternHandler interface.
type PatternFunc func(window []token.Token) (PatternMatch, bool)

// MatchWindow implements PatternHandler.
func (f PatternFunc) MatchWindow(window []token.Token) (PatternMatch, bool) {
	return f(window)
}
