// Package rules holds the immutable rule tables driving the correction
// engine: single-word replacements, compounding tables, multiword error
// phrases, abbreviations, capitalization word sets and taboo/tone-of-voice
// entries. Tables are built once, validated strictly at load time, and
// shared read-only across all documents; concurrent use needs no locking.
package rules

import (
	"fmt"
	"sort"
	"strings"
)

// TabooEntry is a flagged word with one or more preferred replacements.
// Keys are category-qualified ("word_kk") so that homographs in different
// word categories can carry different advice.
type TabooEntry struct {
	Word     string
	Category string
	// Replacements is ordered; the first entry is the preferred one.
	Replacements []string
	// Detail is the table's explanatory comment, surfaced verbatim in
	// the annotation detail field.
	Detail string
}

// Qualified returns the category-qualified key of the entry.
func (e TabooEntry) Qualified() string {
	if e.Category == "" {
		return e.Word
	}
	return e.Word + "_" + e.Category
}

// Phrase is one multiword error phrase and its replacement.
type Phrase struct {
	// Words is the erroneous phrase, normalized to lower case.
	Words []string
	// Code is the phrase-specific code segment; the emitted annotation
	// code is "P_" + Code.
	Code string
	// Replacement is the corrected word sequence.
	Replacement []string
}

// Tables is the complete, immutable rule-table set. Build via Builder or
// Load; the zero value is valid and matches nothing.
type Tables struct {
	// UniqueErrors maps a wrong word form (lower case) to its correct
	// word sequence (usually one word, possibly several).
	UniqueErrors map[string][]string
	// AllowedMultiples lists word forms allowed to repeat ("mjög mjög").
	AllowedMultiples map[string]bool
	// WrongCompounds maps an erroneously merged form to its split parts.
	WrongCompounds map[string][]string
	// SplitCompounds indexes first parts of compounds that must not
	// stand alone, with their permitted continuations.
	SplitCompounds *CompoundTable
	// Phrases is the compiled multiword error-phrase matcher.
	Phrases *PhraseSet
	// Abbreviations maps wrong abbreviation forms to corrected ones.
	Abbreviations map[string]string
	// Capitalization holds word forms that are wrongly capitalized as
	// listed, i.e. the reverse casing is the correct one.
	Capitalization map[string]bool
	// Acronyms must always be written in upper case ("RÚV").
	Acronyms map[string]bool
	// Months must be lower case except at sentence start.
	Months map[string]bool
	// Taboo maps a bare word form to its entries, ordered by category.
	Taboo map[string][]TabooEntry
	// ToneOfVoice is structured like Taboo but carries style preferences
	// rather than vulgarity warnings.
	ToneOfVoice map[string][]TabooEntry
	// MaxPhraseLen is the longest phrase word count, the window size
	// needed by the engine.
	MaxPhraseLen int
}

// Builder accumulates table entries and validates them. All Add methods
// report duplicate definitions as errors; a table with any error is never
// used partially.
type Builder struct {
	t       Tables
	phrases []Phrase
	errs    []error
}

// NewBuilder returns an empty table builder.
func NewBuilder() *Builder {
	return &Builder{
		t: Tables{
			UniqueErrors:     map[string][]string{},
			AllowedMultiples: map[string]bool{},
			WrongCompounds:   map[string][]string{},
			SplitCompounds:   NewCompoundTable(),
			Abbreviations:    map[string]string{},
			Capitalization:   map[string]bool{},
			Acronyms:         map[string]bool{},
			Months:           map[string]bool{},
			Taboo:            map[string][]TabooEntry{},
			ToneOfVoice:      map[string][]TabooEntry{},
		},
	}
}

func (b *Builder) dup(section, key string) {
	b.errs = append(b.errs, fmt.Errorf("rules: multiple definition of %q in %s", key, section))
}

// AddUniqueError registers wrong -> corrected word sequence.
func (b *Builder) AddUniqueError(wrong string, corrected ...string) {
	key := strings.ToLower(wrong)
	if _, ok := b.t.UniqueErrors[key]; ok {
		b.dup("unique_errors", key)
		return
	}
	if len(corrected) == 0 {
		b.errs = append(b.errs, fmt.Errorf("rules: empty correction for %q in unique_errors", wrong))
		return
	}
	b.t.UniqueErrors[key] = corrected
}

// AddAllowedMultiple permits the word to appear twice in a row.
func (b *Builder) AddAllowedMultiple(word string) {
	b.t.AllowedMultiples[strings.ToLower(word)] = true
}

// AddWrongCompound registers an erroneously merged form and its parts.
func (b *Builder) AddWrongCompound(merged string, parts ...string) {
	key := strings.ToLower(merged)
	if _, ok := b.t.WrongCompounds[key]; ok {
		b.dup("wrong_compounds", merged)
		return
	}
	if len(parts) < 2 {
		b.errs = append(b.errs, fmt.Errorf("rules: wrong_compounds entry %q needs at least two parts", merged))
		return
	}
	b.t.WrongCompounds[key] = parts
}

// AddSplitCompound registers a compound first part and one permitted
// continuation.
func (b *Builder) AddSplitCompound(first, continuation string) {
	b.t.SplitCompounds.Add(strings.ToLower(first), strings.ToLower(continuation))
}

// AddPhrase registers a multiword error phrase.
func (b *Builder) AddPhrase(phrase string, code string, replacement string) {
	words := strings.Fields(strings.ToLower(phrase))
	repl := strings.Fields(replacement)
	if len(words) < 2 {
		b.errs = append(b.errs, fmt.Errorf("rules: multiword_errors phrase %q needs at least two words", phrase))
		return
	}
	if code == "" || len(repl) == 0 {
		b.errs = append(b.errs, fmt.Errorf("rules: multiword_errors phrase %q needs a code and a replacement", phrase))
		return
	}
	for _, p := range b.phrases {
		if strings.Join(p.Words, " ") == strings.Join(words, " ") {
			b.dup("multiword_errors", phrase)
			return
		}
	}
	b.phrases = append(b.phrases, Phrase{Words: words, Code: code, Replacement: repl})
}

// AddAbbreviation registers a wrong abbreviation form and its correction.
func (b *Builder) AddAbbreviation(wrong, corrected string) {
	if _, ok := b.t.Abbreviations[wrong]; ok {
		b.dup("abbreviations", wrong)
		return
	}
	b.t.Abbreviations[wrong] = corrected
}

// AddCapitalizationError registers a wrongly capitalized word form, as it
// (wrongly) appears in text.
func (b *Builder) AddCapitalizationError(word string) {
	if b.t.Capitalization[word] {
		b.dup("capitalization_errors", word)
		return
	}
	b.t.Capitalization[word] = true
}

// AddAcronym registers an always-uppercase acronym.
func (b *Builder) AddAcronym(acronym string) {
	b.t.Acronyms[strings.ToUpper(acronym)] = true
}

// AddMonth registers a month name (stored lower case).
func (b *Builder) AddMonth(name string) {
	b.t.Months[strings.ToLower(name)] = true
}

// AddTaboo registers a taboo entry.
func (b *Builder) AddTaboo(e TabooEntry) {
	b.addQualified(b.t.Taboo, "taboo_words", e)
}

// AddToneOfVoice registers a tone-of-voice entry.
func (b *Builder) AddToneOfVoice(e TabooEntry) {
	b.addQualified(b.t.ToneOfVoice, "tone_of_voice", e)
}

// PutTaboo registers a taboo entry, replacing any existing entry with the
// same qualified key. Used when merging extension tables on top of
// defaults.
func (b *Builder) PutTaboo(e TabooEntry) {
	b.removeQualified(b.t.Taboo, e)
	b.addQualified(b.t.Taboo, "taboo_words", e)
}

// PutToneOfVoice registers a tone-of-voice entry, replacing any existing
// entry with the same qualified key.
func (b *Builder) PutToneOfVoice(e TabooEntry) {
	b.removeQualified(b.t.ToneOfVoice, e)
	b.addQualified(b.t.ToneOfVoice, "tone_of_voice", e)
}

func (b *Builder) removeQualified(m map[string][]TabooEntry, e TabooEntry) {
	word := strings.ToLower(e.Word)
	entries := m[word]
	for i, prior := range entries {
		if prior.Category == e.Category {
			m[word] = append(entries[:i], entries[i+1:]...)
			return
		}
	}
}

func (b *Builder) addQualified(m map[string][]TabooEntry, section string, e TabooEntry) {
	e.Word = strings.ToLower(e.Word)
	if len(e.Replacements) == 0 {
		b.errs = append(b.errs, fmt.Errorf("rules: %s entry %q needs a replacement", section, e.Word))
		return
	}
	for _, prior := range m[e.Word] {
		if prior.Category == e.Category {
			b.dup(section, e.Qualified())
			return
		}
	}
	m[e.Word] = append(m[e.Word], e)
	// Deterministic lookup order regardless of insertion order.
	sort.Slice(m[e.Word], func(i, j int) bool {
		return m[e.Word][i].Category < m[e.Word][j].Category
	})
}

// Build validates and freezes the tables. Any accumulated error makes the
// whole build fail; no partial table is returned.
func (b *Builder) Build() (*Tables, error) {
	if len(b.errs) > 0 {
		return nil, b.errs[0]
	}
	ps, maxLen, err := compilePhrases(b.phrases)
	if err != nil {
		return nil, fmt.Errorf("rules: compiling phrases: %w", err)
	}
	t := b.t
	t.Phrases = ps
	t.MaxPhraseLen = maxLen
	return &t, nil
}

// LookupTaboo returns the taboo entries for a word form, most specific
// category first, or nil.
func (t *Tables) LookupTaboo(word string) []TabooEntry {
	return t.Taboo[strings.ToLower(word)]
}

// LookupTone returns the tone-of-voice entries for a word form, or nil.
func (t *Tables) LookupTone(word string) []TabooEntry {
	return t.ToneOfVoice[strings.ToLower(word)]
}
