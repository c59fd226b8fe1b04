// Package tokenize turns raw text into the token stream the correction
// pipeline consumes. It scans runes with byte-offset bookkeeping, emits
// paragraph and sentence boundary markers, classifies words, numbers,
// ordinals and punctuation, and records canonical forms for punctuation
// that has one (quotes, ellipses, informal end marks).
package tokenize

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ormsson/ritlint/pkg/token"
)

// sentence-ending punctuation.
func endsSentence(s string) bool {
	switch s {
	case ".", "!", "?", "…":
		return true
	}
	return strings.HasSuffix(s, ".") || strings.HasSuffix(s, "!") || strings.HasSuffix(s, "?")
}

// Tokenize scans the full text and returns a token stream with paragraph
// and sentence boundary markers. Paragraphs are separated by blank lines.
func Tokenize(text string) []token.Token {
	var out []token.Token
	for _, para := range splitParagraphs(text) {
		if strings.TrimSpace(para.text) == "" {
			continue
		}
		out = append(out, token.Boundary(token.ParagraphBegin, para.start))
		out = append(out, tokenizeParagraph(para.text, para.start)...)
		out = append(out, token.Boundary(token.ParagraphEnd, para.end))
	}
	return out
}

type paragraph struct {
	text       string
	start, end int
}

func splitParagraphs(text string) []paragraph {
	var out []paragraph
	start := 0
	for start < len(text) {
		idx := strings.Index(text[start:], "\n\n")
		if idx < 0 {
			out = append(out, paragraph{text: text[start:], start: start, end: len(text)})
			break
		}
		end := start + idx
		out = append(out, paragraph{text: text[start:end], start: start, end: end})
		// Skip the blank-line run.
		start = end
		for start < len(text) && (text[start] == '\n' || text[start] == '\r') {
			start++
		}
	}
	return out
}

func tokenizeParagraph(text string, base int) []token.Token {
	var out []token.Token
	var sentence []token.Token
	sentenceStart := -1

	flush := func(endOff int) {
		if len(sentence) == 0 {
			return
		}
		out = append(out, token.Boundary(token.SentenceBegin, sentenceStart))
		out = append(out, sentence...)
		out = append(out, token.Boundary(token.SentenceEnd, endOff))
		sentence = nil
		sentenceStart = -1
	}

	i := 0
	for i < len(text) {
		r, w := utf8.DecodeRuneInString(text[i:])
		if unicode.IsSpace(r) {
			i += w
			continue
		}
		var tok token.Token
		switch {
		case unicode.IsDigit(r):
			tok, i = scanNumber(text, i)
		case unicode.IsLetter(r):
			tok, i = scanWord(text, i)
		default:
			tok, i = scanPunct(text, i)
		}
		tok.Span.Start += base
		tok.Span.End += base
		if sentenceStart < 0 {
			sentenceStart = tok.Span.Start
		}
		sentence = append(sentence, tok)
		if tok.Kind == token.Punctuation && endsSentence(tok.Text) {
			flush(tok.Span.End)
		}
	}
	end := base + len(text)
	flush(end)
	return out
}

// scanWord consumes a letter run, keeping internal periods of
// abbreviations ("a.m.k.") inside the token. A trailing period is kept
// when it cannot end the sentence: the word already contains an internal
// period, or the following word starts in lower case.
func scanWord(text string, i int) (token.Token, int) {
	start := i
	hasInternalDot := false
	for i < len(text) {
		r, w := utf8.DecodeRuneInString(text[i:])
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' {
			i += w
			continue
		}
		if r == '.' && i+w < len(text) {
			nr, _ := utf8.DecodeRuneInString(text[i+w:])
			if unicode.IsLetter(nr) {
				hasInternalDot = true
				i += w
				continue
			}
		}
		break
	}
	end := i
	if i < len(text) && text[i] == '.' {
		if hasInternalDot || lowercaseFollows(text, i+1) {
			end = i + 1
			i = end
		}
	}
	t := token.New(token.Word, text[start:end], token.Span{Start: start, End: end})
	return t, i
}

// lowercaseFollows reports whether the next word after offset i starts
// with a lower-case letter. A period before such a word belongs to an
// abbreviation, not to the sentence end.
func lowercaseFollows(text string, i int) bool {
	for i < len(text) {
		r, w := utf8.DecodeRuneInString(text[i:])
		if unicode.IsSpace(r) {
			i += w
			continue
		}
		return unicode.IsLower(r)
	}
	return false
}

// scanNumber consumes a digit run with decimal separators and thousands
// dots. A number directly followed by a period and a lower-case word is
// an ordinal ("4. sæti").
func scanNumber(text string, i int) (token.Token, int) {
	start := i
	for i < len(text) {
		r, w := utf8.DecodeRuneInString(text[i:])
		if unicode.IsDigit(r) {
			i += w
			continue
		}
		if (r == ',' || r == '.') && i+w < len(text) {
			nr, _ := utf8.DecodeRuneInString(text[i+w:])
			if unicode.IsDigit(nr) {
				i += w
				continue
			}
		}
		break
	}
	kind := token.Number
	end := i
	if i < len(text) && text[i] == '.' && lowercaseFollows(text, i+1) {
		kind = token.Ordinal
		end = i + 1
		i = end
	}
	t := token.New(kind, text[start:end], token.Span{Start: start, End: end})
	t.Value.Number = parseNumber(t.Text)
	return t, i
}

func parseNumber(s string) float64 {
	s = strings.TrimSuffix(s, ".")
	// Icelandic decimal comma; thousands dots are stripped.
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return n
}

// scanPunct consumes one punctuation run and records its canonical form
// when the surface differs from it.
func scanPunct(text string, i int) (token.Token, int) {
	start := i
	r, w := utf8.DecodeRuneInString(text[i:])
	i += w
	// Runs of the same class: dots, and mixed ?/! sequences.
	if r == '.' || r == '?' || r == '!' {
		for i < len(text) {
			nr, nw := utf8.DecodeRuneInString(text[i:])
			if nr != '.' && nr != '?' && nr != '!' {
				break
			}
			i += nw
		}
	}
	surface := text[start:i]
	t := token.New(token.Punctuation, surface, token.Span{Start: start, End: i})
	t.Value.Norm = normalizePunct(surface, text, start)
	return t, i
}

// normalizePunct returns the canonical form of a punctuation surface, or
// the empty string when the surface is already canonical.
func normalizePunct(surface, text string, start int) string {
	switch {
	case surface == "?!" || surface == "!?" || surface == "!!" || surface == "??":
		return string(surface[len(surface)-1])
	case len(surface) >= 2 && strings.Trim(surface, ".") == "":
		return "…"
	case surface == `"`:
		if openingQuote(text, start) {
			return "„"
		}
		return "“"
	case surface == "'" || surface == "´":
		return "‘"
	}
	return ""
}

// openingQuote reports whether a straight quote at the given offset opens
// a quotation (preceded by start of text or whitespace).
func openingQuote(text string, start int) bool {
	if start == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:start])
	return unicode.IsSpace(r)
}

// Words is a convenience for tests and simple callers: it tokenizes one
// sentence worth of text and returns only the content tokens.
func Words(text string) []token.Token {
	var out []token.Token
	for _, t := range Tokenize(text) {
		if !t.Kind.IsBoundary() {
			out = append(out, t)
		}
	}
	return out
}
