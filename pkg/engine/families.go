package engine

import (
	"fmt"
	"strings"

	"github.com/ormsson/ritlint/pkg/annotate"
	"github.com/ormsson/ritlint/pkg/token"
)

// runPunctuation normalizes punctuation tokens whose tokenizer-provided
// normal form differs from the surface text. Quote marks and long period
// runs are only flagged; the informal "?!" combination is rewritten.
func (e *Engine) runPunctuation(st *runState) error {
	for i := 0; i < st.buf.Len(); i++ {
		tok := st.buf.At(i)
		if tok.Kind != token.Punctuation || tok.Value.Norm == "" || tok.Text == tok.Value.Norm {
			continue
		}
		norm := tok.Value.Norm
		switch {
		case norm == "„" || norm == "“":
			st.annotateSpan(i, i, annotate.Annotation{
				Code:    "N001" + annotate.WarningSuffix,
				Text:    "Gæsalappirnar " + tok.Text + " ættu að vera " + norm,
				Detail:  "Í íslensku eru gæsalappir ritaðar „svona“.",
				Suggest: norm,
			})
			st.claim(i)
		case norm == "…" && len([]rune(tok.Text)) == 2:
			st.annotateSpan(i, i, annotate.Annotation{
				Code:    "N002" + annotate.WarningSuffix,
				Text:    "Gæti átt að vera einn punktur",
				Suggest: ".",
			})
			st.claim(i)
		case norm == "…" && len([]rune(tok.Text)) > 3:
			st.annotateSpan(i, i, annotate.Annotation{
				Code:    "N002" + annotate.WarningSuffix,
				Text:    "Úrfellingarmerki á að rita með þremur punktum",
				Suggest: norm,
			})
			st.claim(i)
		case norm == "?" || norm == "!":
			if err := st.buf.Replace(i, norm); err != nil {
				return err
			}
			st.annotateSpan(i, i, annotate.Annotation{
				Code: "N003",
				Text: "'" + tok.Text + "' er óformlegt, hér var '" + norm + "' sett í staðinn",
			})
			st.claim(i)
		}
	}
	return nil
}

// runDuplicates removes exact word repetitions and flags likely ones.
func (e *Engine) runDuplicates(st *runState) error {
	for i := 0; i+1 < st.buf.Len(); i++ {
		cur, next := st.buf.At(i), st.buf.At(i+1)
		if !cur.IsWord() || !next.IsWord() {
			continue
		}
		if !strings.EqualFold(cur.Text, next.Text) {
			continue
		}
		if cur.Text == next.Text && !e.tables.AllowedMultiples[strings.ToLower(cur.Text)] {
			if _, err := st.buf.Delete(i + 1); err != nil {
				return err
			}
			st.annotateSpan(i, i, annotate.Annotation{
				Code: "C001",
				Text: "Endurtekið orð ('" + cur.Text + "') var fellt brott",
			})
			// Re-check the same position against the new neighbor
			// ("fékk fékk fékk" collapses to one token). The kept token
			// is not claimed; later families still examine it.
			i--
			continue
		}
		// Same word with different casing, or one allowed to repeat.
		st.annotateSpan(i, i+1, annotate.Annotation{
			Code: "C004" + annotate.WarningSuffix,
			Text: "'" + next.Text + "' er að öllum líkindum ofaukið",
		})
	}
	return nil
}

// runAbbreviations rewrites wrong abbreviation forms to the accepted ones.
func (e *Engine) runAbbreviations(st *runState) error {
	for i := 0; i < st.buf.Len(); i++ {
		tok := st.buf.At(i)
		if !tok.IsWord() && tok.Kind != token.Punctuation {
			continue
		}
		correct, ok := e.tables.Abbreviations[tok.Text]
		if !ok {
			lower := strings.ToLower(tok.Text)
			if correct, ok = e.tables.Abbreviations[lower]; ok {
				correct = token.EmulateCase(correct, tok.Text)
			}
		}
		if !ok || correct == tok.Text {
			continue
		}
		if e.phraseHeadAt(st, i) {
			continue
		}
		if err := st.buf.Replace(i, correct); err != nil {
			return err
		}
		st.annotateSpan(i, i, annotate.Annotation{
			Code: "A001",
			Text: "Skammstöfunin '" + tok.Text + "' var leiðrétt í '" + correct + "'",
		})
		st.claim(i)
	}
	return nil
}

// runTaboo flags taboo words (T001) and tone-of-voice words (Y001).
// Flagged words are never rewritten; the annotation always carries a
// suggested substitute and the table's explanatory detail.
func (e *Engine) runTaboo(st *runState) {
	for i := 0; i < st.buf.Len(); i++ {
		tok := st.buf.At(i)
		if !tok.IsWord() || st.claimed(i) {
			continue
		}
		if e.phraseHeadAt(st, i) {
			continue
		}
		word := strings.ToLower(tok.Text)
		if entries := e.tables.LookupTaboo(word); len(entries) > 0 {
			ent := entries[0]
			repl := token.EmulateCase(ent.Replacements[0], tok.Text)
			st.annotateSpan(i, i, annotate.Annotation{
				Code:    "T001" + annotate.WarningSuffix,
				Text:    "Óheppilegt eða óviðurkvæmilegt orð, skárra væri t.d. '" + repl + "'",
				Detail:  ent.Detail,
				Suggest: repl,
			})
			st.claim(i)
			continue
		}
		if entries := e.tables.LookupTone(word); len(entries) > 0 {
			ent := entries[0]
			repl := token.EmulateCase(ent.Replacements[0], tok.Text)
			st.annotateSpan(i, i, annotate.Annotation{
				Code:    "Y001" + annotate.WarningSuffix,
				Text:    "Orðið '" + tok.Text + "' passar ekki við valda raddblæstillingu, í staðinn mætti nota '" + repl + "'",
				Detail:  ent.Detail,
				Suggest: repl,
			})
			st.claim(i)
		}
	}
}

// runPhrases corrects multiword error phrases. Matches are applied left to
// right; when the replacement has a different word count the matched span
// is merged and re-split so that the span bookkeeping stays exact.
func (e *Engine) runPhrases(st *runState) error {
	if e.tables.Phrases.Empty() {
		return nil
	}
	texts := token.Texts(st.buf.Tokens())
	matches := e.tables.Phrases.Scan(texts)
	delta := 0
	for _, m := range matches {
		start, end := m.Start+delta, m.End+delta
		first := st.buf.At(start)
		repl := m.Phrase.Replacement
		joined := strings.Join(repl, " ")
		wrong := strings.Join(texts[m.Start:m.End+1], " ")

		if len(repl) == end-start+1 {
			for k, w := range repl {
				if k == 0 {
					w = token.EmulateCase(w, first.Text)
				}
				if err := st.buf.Replace(start+k, w); err != nil {
					return err
				}
			}
		} else {
			d, err := st.buf.Merge(start, end, token.EmulateCase(joined, first.Text))
			if err != nil {
				return err
			}
			delta += d
			if len(repl) > 1 {
				parts := make([]string, len(repl))
				copy(parts, repl)
				parts[0] = token.EmulateCase(parts[0], first.Text)
				d, err = st.buf.Split(start, parts)
				if err != nil {
					return err
				}
				delta += d
			}
			end = start + len(repl) - 1
		}
		for k := start; k <= end; k++ {
			st.claim(k)
		}
		st.annotateSpan(start, end, annotate.Annotation{
			Code: "P_" + m.Phrase.Code,
			Text: "Orðasambandið '" + wrong + "' var leiðrétt í '" + token.EmulateCase(joined, first.Text) + "'",
		})
	}
	return nil
}

// runPatterns runs registered pattern handlers over every window position.
// The first handler to match a position wins; matched spans are rewritten
// (or only flagged when the match carries no replacement).
func (e *Engine) runPatterns(st *runState) error {
	if len(e.patterns) == 0 {
		return nil
	}
	for i := 0; i < st.buf.Len(); i++ {
		if st.claimed(i) {
			continue
		}
		window := st.buf.Window(i, st.buf.Len()-i)
		for _, h := range e.patterns {
			m, ok := h.MatchWindow(window)
			if !ok {
				continue
			}
			if m.Length < 1 || i+m.Length > st.buf.Len() {
				return fmt.Errorf("engine: pattern handler returned invalid match length %d at %d", m.Length, i)
			}
			end := i + m.Length - 1
			if len(m.Replacement) == 0 {
				st.annotateSpan(i, end, annotate.Annotation{
					Code:    m.Code + annotate.WarningSuffix,
					Text:    m.Text,
					Suggest: m.Suggest,
				})
				break
			}
			if _, err := st.buf.Merge(i, end, strings.Join(m.Replacement, " ")); err != nil {
				return err
			}
			if len(m.Replacement) > 1 {
				if _, err := st.buf.Split(i, m.Replacement); err != nil {
					return err
				}
			}
			end = i + len(m.Replacement) - 1
			for k := i; k <= end; k++ {
				st.claim(k)
			}
			st.annotateSpan(i, end, annotate.Annotation{
				Code: m.Code,
				Text: m.Text,
			})
			i = end
			break
		}
	}
	return nil
}

// runCompounds splits erroneously merged compounds, merges erroneously
// split ones and flags uncertain merge candidates.
func (e *Engine) runCompounds(st *runState) error {
	for i := 0; i < st.buf.Len(); i++ {
		tok := st.buf.At(i)
		if !tok.IsWord() || st.claimed(i) {
			continue
		}
		lower := strings.ToLower(tok.Text)

		if parts, ok := e.tables.WrongCompounds[lower]; ok {
			split := make([]string, len(parts))
			copy(split, parts)
			split[0] = token.EmulateCase(split[0], tok.Text)
			d, err := st.buf.Split(i, split)
			if err != nil {
				return err
			}
			end := i + d
			for k := i; k <= end; k++ {
				st.claim(k)
			}
			st.annotateSpan(i, end, annotate.Annotation{
				Code: "C002",
				Text: "Orðinu '" + tok.Text + "' var skipt upp",
			})
			i = end
			continue
		}

		if i+1 >= st.buf.Len() {
			continue
		}
		next := st.buf.At(i + 1)
		if !next.IsWord() || st.claimed(i+1) {
			continue
		}
		if !e.tables.SplitCompounds.ShouldMerge(lower, strings.ToLower(next.Text)) {
			continue
		}
		merged := token.EmulateCase(lower+strings.ToLower(next.Text), tok.Text)
		if token.IsTitle(next.Text) && !token.IsTitle(tok.Text) {
			// The latter word may be a proper name; only suggest.
			st.annotateSpan(i, i+1, annotate.Annotation{
				Code:    "C005" + annotate.WarningSuffix,
				Text:    "Orðin '" + tok.Text + " " + next.Text + "' ætti líklega að sameina í eitt",
				Suggest: merged,
			})
			continue
		}
		if _, err := st.buf.Merge(i, i+1, merged); err != nil {
			return err
		}
		st.annotateSpan(i, i, annotate.Annotation{
			Code: "C003",
			Text: "Orðin '" + tok.Text + " " + next.Text + "' voru sameinuð í eitt: '" + merged + "'",
		})
		st.claim(i)
	}
	return nil
}

// capitalization pass states.
const (
	atSentenceStart = iota
	afterOrdinal
	inSentence
)

// runCapitalization enforces casing rules: upper case at sentence start,
// listed words and months lower case elsewhere, acronyms always upper
// case. Ambiguous cases (a listed word at sentence start) are skipped.
// The sentence-start rule also applies to tokens rewritten earlier in
// this run; all other casing rules leave those alone.
func (e *Engine) runCapitalization(st *runState) error {
	state := atSentenceStart
	for i := 0; i < st.buf.Len(); i++ {
		tok := st.buf.At(i)
		switch tok.Kind {
		case token.Punctuation:
			continue
		case token.Ordinal:
			if state == atSentenceStart {
				state = afterOrdinal
			}
			continue
		case token.Number:
			if err := e.fixNumberCase(st, i, state); err != nil {
				return err
			}
			state = inSentence
			continue
		}
		if !tok.IsWord() {
			state = inSentence
			continue
		}

		lower := strings.ToLower(tok.Text)
		upper := strings.ToUpper(tok.Text)
		startish := state != inSentence

		switch {
		case startish && tok.Text == lower && lower != upper:
			if err := e.recase(st, i, token.Capitalize(tok.Text), "Z002",
				"Setning á að byrja á hástaf"); err != nil {
				return err
			}

		case st.claimed(i):
			// Rewritten earlier in this run; leave its casing alone.

		case e.tables.Acronyms[upper] && tok.Text != upper:
			if err := e.recase(st, i, upper, "Z007",
				"Skammstöfunin '"+tok.Text+"' á að vera hástöfuð: '"+upper+"'"); err != nil {
				return err
			}

		case !startish && e.tables.Months[lower] && tok.Text != lower:
			if err := e.recase(st, i, lower, "Z003",
				"Mánaðarheitið '"+tok.Text+"' á að rita með lágstaf"); err != nil {
				return err
			}

		case e.tables.Capitalization[tok.Text]:
			// The listed form is the wrong one; the reverse casing is
			// correct. At sentence start a title-case form cannot be
			// judged, so only lower-case listed forms are acted on there.
			if tok.Text == lower {
				if err := e.recase(st, i, token.Title(tok.Text), "Z002",
					"Orðið '"+tok.Text+"' á að byrja á hástaf"); err != nil {
					return err
				}
			} else if !startish {
				if err := e.recase(st, i, lower, "Z001",
					"Orðið '"+tok.Text+"' á að byrja á lágstaf"); err != nil {
					return err
				}
			}

		case token.IsUpper(tok.Text) && e.tables.Capitalization[lower]:
			// All-upper form of a listed word; intent is unclear.
			st.annotateSpan(i, i, annotate.Annotation{
				Code: "Z001" + annotate.WarningSuffix,
				Text: "Athuga stafsetningu orðsins '" + tok.Text + "'",
			})
		}
		state = inSentence
	}
	return nil
}

// recase rewrites only the casing of the token at i. Recased tokens are
// not claimed; spelling lookup still examines them.
func (e *Engine) recase(st *runState, i int, corrected, code, text string) error {
	if err := st.buf.Replace(i, corrected); err != nil {
		return err
	}
	st.annotateSpan(i, i, annotate.Annotation{Code: code, Text: text})
	return nil
}

// fixNumberCase handles number words ("fjórir", "Hundrað") whose casing
// depends on sentence position.
func (e *Engine) fixNumberCase(st *runState, i, state int) error {
	tok := st.buf.At(i)
	runes := []rune(tok.Text)
	if len(runes) == 0 || st.claimed(i) {
		return nil
	}
	first := runes[0]
	if first >= '0' && first <= '9' {
		return nil
	}
	lower := strings.ToLower(tok.Text)
	switch {
	case state != inSentence && tok.Text == lower:
		return e.recase(st, i, token.Capitalize(tok.Text), "Z006",
			"Töluorð í upphafi setningar á að byrja á hástaf")
	case state != inSentence && !token.IsTitle(tok.Text) && tok.Text != lower:
		return e.recase(st, i, token.Capitalize(lower), "Z005",
			"Rita á töluorðið '"+tok.Text+"' með hástaf aðeins í upphafi")
	case state == inSentence && tok.Text != lower:
		return e.recase(st, i, lower, "Z004",
			"Töluorð inni í setningu á að rita með lágstaf")
	}
	return nil
}

// single-letter word corrections applied when the surrounding sentence
// makes the bare letter impossible.
var singleLetter = map[string]string{
	"a": "á",
	"i": "í",
	"A": "Á",
	"I": "Í",
}

type foreignChecker interface {
	Foreign(word string) bool
}

// runSpelling applies unique-error corrections and, with a suggester
// configured, unknown-word detection and ranked spelling suggestions.
func (e *Engine) runSpelling(st *runState) error {
	for i := 0; i < st.buf.Len(); i++ {
		tok := st.buf.At(i)
		if !tok.IsWord() || st.claimed(i) {
			continue
		}
		if e.phraseHeadAt(st, i) {
			continue
		}
		lower := strings.ToLower(tok.Text)

		if corrected, ok := e.tables.UniqueErrors[lower]; ok {
			parts := make([]string, len(corrected))
			copy(parts, corrected)
			parts[0] = token.EmulateCase(parts[0], tok.Text)
			d, err := st.buf.Split(i, parts)
			if err != nil {
				return err
			}
			end := i + d
			for k := i; k <= end; k++ {
				st.claim(k)
			}
			st.annotateSpan(i, end, annotate.Annotation{
				Code: "S001",
				Text: "Orðið '" + tok.Text + "' var leiðrétt í '" + strings.Join(parts, " ") + "'",
			})
			i = end
			continue
		}

		if repl, ok := singleLetter[tok.Text]; ok {
			if err := st.buf.Replace(i, repl); err != nil {
				return err
			}
			st.annotateSpan(i, i, annotate.Annotation{
				Code: "S004",
				Text: "Orðið '" + tok.Text + "' var leiðrétt í '" + repl + "'",
			})
			st.claim(i)
			continue
		}

		if e.suggest == nil {
			continue
		}
		// Immune forms: all-upper words, abbreviation-like forms with
		// embedded periods, and words explainable as listed compounds.
		if token.IsUpper(tok.Text) || strings.Contains(tok.Text, ".") {
			continue
		}
		if e.suggest.Known(lower) || e.suggest.Known(tok.Text) {
			continue
		}
		if _, _, ok := e.tables.SplitCompounds.Decompose(lower); ok {
			continue
		}
		if fc, ok := e.suggest.(foreignChecker); ok && fc.Foreign(lower) {
			st.annotateSpan(i, i, annotate.Annotation{
				Code: "U001" + annotate.WarningSuffix,
				Text: "Óþekkt orð: '" + tok.Text + "', mögulega erlent",
			})
			st.claim(i)
			continue
		}

		cands := e.suggest.Suggest(lower, e.cfg.maxSuggestions())
		switch {
		case len(cands) == 0:
			code := "U001"
			if token.IsTitle(tok.Text) {
				// Probably a proper name the lexicon lacks.
				code += annotate.WarningSuffix
			}
			st.annotateSpan(i, i, annotate.Annotation{
				Code: code,
				Text: "Óþekkt orð: '" + tok.Text + "'",
			})
		case e.cfg.ApplySuggestions:
			best := token.EmulateCase(cands[0].Word, tok.Text)
			if err := st.buf.Replace(i, best); err != nil {
				return err
			}
			st.annotateSpan(i, i, annotate.Annotation{
				Code: "S004",
				Text: "Orðið '" + tok.Text + "' var leiðrétt í '" + best + "'",
			})
		case len(cands) == 1:
			best := token.EmulateCase(cands[0].Word, tok.Text)
			st.annotateSpan(i, i, annotate.Annotation{
				Code:    "W001" + annotate.WarningSuffix,
				Text:    "Orðið '" + tok.Text + "' gæti átt að vera '" + best + "'",
				Suggest: best,
			})
		default:
			best := token.EmulateCase(cands[0].Word, tok.Text)
			ranked := make([]string, len(cands))
			for k, c := range cands {
				ranked[k] = c.Word
			}
			st.annotateSpan(i, i, annotate.Annotation{
				Code:    "W002" + annotate.WarningSuffix,
				Text:    "Orðið '" + tok.Text + "' gæti átt að vera '" + best + "'",
				Detail:  "Aðrir möguleikar: " + strings.Join(ranked, ", "),
				Suggest: best,
			})
		}
		st.claim(i)
	}
	return nil
}
