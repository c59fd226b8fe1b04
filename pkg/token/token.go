// Package token defines the token data model shared by the correction
// pipeline: token kinds, surface text with original-text provenance, and
// character spans anchored to the original input.
package token

import (
	"fmt"
	"strings"
	"unicode"
)

// Kind enumerates all token categories. Every rule family switches on the
// kind tag; payloads in Value are only meaningful for the kind they belong to.
type Kind int

const (
	// Word is a regular word token.
	Word Kind = iota
	// Number is a numeric token (digits or spelled out).
	Number
	// Ordinal is an ordinal number token ("3.").
	Ordinal
	// Punctuation is a punctuation token.
	Punctuation
	// SentenceBegin marks the start of a sentence.
	SentenceBegin
	// SentenceEnd marks the end of a sentence.
	SentenceEnd
	// ParagraphBegin marks the start of a paragraph.
	ParagraphBegin
	// ParagraphEnd marks the end of a paragraph (blank line in the input).
	ParagraphEnd
	// Unknown is an unclassifiable token.
	Unknown
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	names := []string{
		"WORD", "NUMBER", "ORDINAL", "PUNCTUATION",
		"S_BEGIN", "S_END", "P_BEGIN", "P_END", "UNKNOWN",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return "UNKNOWN"
}

// IsBoundary reports whether the kind is a sentence or paragraph marker.
func (k Kind) IsBoundary() bool {
	switch k {
	case SentenceBegin, SentenceEnd, ParagraphBegin, ParagraphEnd:
		return true
	}
	return false
}

// Span is a half-open [Start, End) byte range into the original input text.
// Spans always refer to the original input; correcting a token's text never
// moves its span.
type Span struct {
	Start int
	End   int
}

// Len returns the byte length of the span.
func (s Span) Len() int { return s.End - s.Start }

// Union returns the smallest span covering both s and other, including any
// gap between them (inter-token whitespace in the original text).
func (s Span) Union(other Span) Span {
	u := s
	if other.Start < u.Start {
		u.Start = other.Start
	}
	if other.End > u.End {
		u.End = other.End
	}
	return u
}

// Value is the kind-specific payload of a token. Only the field matching the
// token's kind carries meaning.
type Value struct {
	// Number is the numeric value for Number and Ordinal tokens.
	Number float64
	// Norm is the normalized form for Punctuation tokens ("?!!" -> "?!",
	// straight quote -> Icelandic quote). Empty when the surface form is
	// already normal.
	Norm string
}

// Token is the atomic unit of the corrected stream.
type Token struct {
	Kind Kind
	// Text is the current surface string; rule families rewrite it.
	Text string
	// Original is the surface string as produced by the tokenizer. It is
	// preserved across corrections for diffing and output.
	Original string
	// Span locates the token in the original input.
	Span Span
	// Value is the kind-specific payload.
	Value Value
}

// New returns a word token covering the given span.
func New(kind Kind, text string, span Span) Token {
	return Token{Kind: kind, Text: text, Original: text, Span: span}
}

// Boundary returns a zero-width boundary marker token at the given offset.
func Boundary(kind Kind, offset int) Token {
	return Token{Kind: kind, Span: Span{Start: offset, End: offset}}
}

// IsWord reports whether the token is a regular word.
func (t Token) IsWord() bool { return t.Kind == Word }

// Corrected reports whether the token's text differs from its original form.
func (t Token) Corrected() bool { return t.Text != t.Original }

func (t Token) String() string {
	return fmt.Sprintf("<%s %q [%d:%d]>", t.Kind, t.Text, t.Span.Start, t.Span.End)
}

// IsUpper reports whether s is entirely upper case.
func IsUpper(s string) bool {
	return s != "" && s == strings.ToUpper(s) && s != strings.ToLower(s)
}

// IsTitle reports whether s starts with an upper-case letter followed by
// lower case only.
func IsTitle(s string) bool {
	r := []rune(s)
	if len(r) == 0 || !unicode.IsUpper(r[0]) {
		return false
	}
	rest := string(r[1:])
	return rest == strings.ToLower(rest)
}

// Title upper-cases the first rune of s and lower-cases the rest.
func Title(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	return string(unicode.ToUpper(r[0])) + strings.ToLower(string(r[1:]))
}

// Capitalize upper-cases the first rune of s, leaving the rest unchanged.
func Capitalize(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	return string(unicode.ToUpper(r[0])) + string(r[1:])
}

// EmulateCase returns s with the casing of template applied: all-caps
// template yields all-caps, capitalized template yields a capitalized word,
// anything else returns s unchanged.
func EmulateCase(s, template string) string {
	if IsUpper(template) {
		return strings.ToUpper(s)
	}
	r := []rune(template)
	if len(r) > 0 && unicode.IsUpper(r[0]) {
		return Capitalize(s)
	}
	return s
}

// Texts returns the current surface texts of the given tokens, skipping
// boundary markers.
func Texts(tokens []Token) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t.Kind.IsBoundary() {
			continue
		}
		out = append(out, t.Text)
	}
	return out
}
