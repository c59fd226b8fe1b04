package rules

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// tableFile is the YAML schema of a rule-table file. Every section is
// optional; files loaded later extend (and for taboo/tone entries,
// override) those loaded earlier.
type tableFile struct {
	UniqueErrors         map[string]string   `yaml:"unique_errors"`
	AllowedMultiples     []string            `yaml:"allowed_multiples"`
	WrongCompounds       map[string]string   `yaml:"wrong_compounds"`
	SplitCompounds       map[string][]string `yaml:"split_compounds"`
	MultiwordErrors      []phraseEntry       `yaml:"multiword_errors"`
	Abbreviations        map[string]string   `yaml:"abbreviations"`
	CapitalizationErrors []string            `yaml:"capitalization_errors"`
	Acronyms             []string            `yaml:"acronyms"`
	Months               []string            `yaml:"months"`
	TabooWords           []qualifiedEntry    `yaml:"taboo_words"`
	ToneOfVoice          []qualifiedEntry    `yaml:"tone_of_voice"`
}

type phraseEntry struct {
	Phrase      string `yaml:"phrase"`
	Code        string `yaml:"code"`
	Replacement string `yaml:"replacement"`
}

type qualifiedEntry struct {
	Word         string   `yaml:"word"`
	Category     string   `yaml:"category"`
	Replacement  string   `yaml:"replacement"`
	Replacements []string `yaml:"replacements"`
	Detail       string   `yaml:"detail"`
}

func (q qualifiedEntry) entry() TabooEntry {
	repl := q.Replacements
	if len(repl) == 0 && q.Replacement != "" {
		repl = []string{q.Replacement}
	}
	return TabooEntry{
		Word:         q.Word,
		Category:     q.Category,
		Replacements: repl,
		Detail:       q.Detail,
	}
}

// Load builds tables from the given YAML files, applied in order. Any
// unreadable file or malformed entry is a fatal error; no partial table
// set is returned.
func Load(paths ...string) (*Tables, error) {
	b := NewBuilder()
	for i, path := range paths {
		if err := loadFile(b, path, i > 0); err != nil {
			return nil, err
		}
	}
	return b.Build()
}

// DefaultWith returns the built-in tables with the given extension files
// merged on top.
func DefaultWith(extensions ...string) (*Tables, error) {
	b := NewBuilder()
	populate(b)
	for _, path := range extensions {
		if err := loadFile(b, path, true); err != nil {
			return nil, err
		}
	}
	return b.Build()
}

// DefaultWithContent returns the built-in tables with one in-memory YAML
// extension merged on top. Used where there is no file system.
func DefaultWithContent(content []byte) (*Tables, error) {
	b := NewBuilder()
	populate(b)
	if err := loadContent(b, content, "inline", true); err != nil {
		return nil, err
	}
	return b.Build()
}

func loadFile(b *Builder, path string, extension bool) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("rules: reading table file: %w", err)
	}
	return loadContent(b, raw, path, extension)
}

func loadContent(b *Builder, raw []byte, name string, extension bool) error {
	var f tableFile
	dec := yaml.NewDecoder(strings.NewReader(string(raw)))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return fmt.Errorf("rules: parsing %s: %w", name, err)
	}

	for wrong, right := range f.UniqueErrors {
		b.AddUniqueError(wrong, strings.Fields(right)...)
	}
	for _, w := range f.AllowedMultiples {
		b.AddAllowedMultiple(w)
	}
	for merged, split := range f.WrongCompounds {
		b.AddWrongCompound(merged, strings.Fields(split)...)
	}
	for first, continuations := range f.SplitCompounds {
		for _, c := range continuations {
			b.AddSplitCompound(first, c)
		}
	}
	for _, p := range f.MultiwordErrors {
		b.AddPhrase(p.Phrase, p.Code, p.Replacement)
	}
	for wrong, right := range f.Abbreviations {
		b.AddAbbreviation(wrong, right)
	}
	for _, w := range f.CapitalizationErrors {
		b.AddCapitalizationError(w)
	}
	for _, a := range f.Acronyms {
		b.AddAcronym(a)
	}
	for _, m := range f.Months {
		b.AddMonth(m)
	}
	for _, q := range f.TabooWords {
		if extension {
			b.PutTaboo(q.entry())
		} else {
			b.AddTaboo(q.entry())
		}
	}
	for _, q := range f.ToneOfVoice {
		if extension {
			b.PutToneOfVoice(q.entry())
		} else {
			b.AddToneOfVoice(q.entry())
		}
	}
	return nil
}
