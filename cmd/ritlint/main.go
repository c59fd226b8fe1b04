// Package main provides the ritlint command line tool: it reads Icelandic
// text, applies the correction pipeline and writes the corrected text or
// its annotations in text, CSV or JSON form.
package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/ormsson/ritlint/internal/logging"
	"github.com/ormsson/ritlint/internal/store"
	"github.com/ormsson/ritlint/pkg/checker"
	"github.com/ormsson/ritlint/pkg/engine"
	"github.com/ormsson/ritlint/pkg/rules"
	"github.com/ormsson/ritlint/pkg/speller"
)

const version = "0.3.0"

// CLI defines the command-line interface using Kong.
var CLI struct {
	LogLevel  string `name:"log-level" default:"info" help:"Log level (debug, info, warn, error)"`
	LogFormat string `name:"log-format" default:"text" help:"Log format (text, json)"`

	Check   CheckCmd   `cmd:"" default:"withargs" help:"Correct and annotate text"`
	Import  ImportCmd  `cmd:"" help:"Import a text corpus into the lexicon database"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// CheckCmd corrects text from a file or stdin.
type CheckCmd struct {
	Input            string   `arg:"" optional:"" help:"Input file (default: stdin)" type:"path"`
	Format           string   `name:"format" short:"f" default:"text" enum:"text,csv,json" help:"Output format"`
	Spaced           bool     `name:"spaced" help:"Space-separate all tokens in text output"`
	Annotate         bool     `name:"annotate" short:"a" help:"Print annotations under each sentence (text format)"`
	ApplySuggestions bool     `name:"apply-suggestions" help:"Apply top spelling suggestions instead of flagging them"`
	Stats            bool     `name:"stats" help:"Print document statistics to stderr"`
	MaxSuggestions   int      `name:"max-suggestions" default:"5" help:"Ranked spelling candidates per word"`
	Tables           []string `name:"tables" short:"t" help:"Extension rule-table files (YAML)" type:"path"`
	Lexicon          string   `name:"lexicon" help:"Lexicon database (SQLite) for spelling suggestions" type:"path"`
}

func (c *CheckCmd) Run() error {
	log := logging.Component("check")

	tables := rules.Default()
	if len(c.Tables) > 0 {
		var err error
		tables, err = rules.DefaultWith(c.Tables...)
		if err != nil {
			return err
		}
	}

	var suggester speller.Suggester
	if c.Lexicon != "" {
		lex, err := store.NewLexiconWithDSN(c.Lexicon)
		if err != nil {
			return err
		}
		defer lex.Close()
		suggester = speller.NewReference(lex)
	}

	chk := checker.New(checker.Options{
		Tables:    tables,
		Suggester: suggester,
		Engine: engine.Config{
			ApplySuggestions: c.ApplySuggestions,
			MaxSuggestions:   c.MaxSuggestions,
		},
	})

	text, err := readInput(c.Input)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var w sentenceWriter
	switch c.Format {
	case "csv":
		w = newCSVWriter(os.Stdout)
	case "json":
		w = newJSONWriter(os.Stdout)
	default:
		w = &textWriter{out: os.Stdout, spaced: c.Spaced, annotate: c.Annotate}
	}

	var stats checker.Stats
	sc := chk.Check(ctx, text)
	for sc.Scan() {
		s := sc.Sentence()
		stats.Add(s)
		if err := w.write(s); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}
	if err := w.flush(); err != nil {
		return err
	}

	if c.Stats {
		log.Info("document checked",
			"paragraphs", stats.Paragraphs,
			"sentences", stats.Sentences,
			"tokens", stats.Tokens,
			"corrected", stats.Corrected,
			"annotations", stats.Annotations,
		)
		fmt.Fprintf(os.Stderr, "%d sentences, %d tokens, %d corrected, %d annotations\n",
			stats.Sentences, stats.Tokens, stats.Corrected, stats.Annotations)
	}
	return nil
}

func readInput(path string) (string, error) {
	if path == "" || path == "-" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(b), nil
}

// sentenceWriter renders processed sentences in one output format.
type sentenceWriter interface {
	write(s checker.Sentence) error
	flush() error
}

type textWriter struct {
	out      io.Writer
	spaced   bool
	annotate bool
}

func (w *textWriter) write(s checker.Sentence) error {
	if _, err := fmt.Fprintln(w.out, s.Text(w.spaced)); err != nil {
		return err
	}
	if !w.annotate {
		return nil
	}
	for _, a := range s.Annotations {
		if _, err := fmt.Fprintf(w.out, "  %s\n", a.String()); err != nil {
			return err
		}
	}
	return nil
}

func (w *textWriter) flush() error { return nil }

type csvWriter struct {
	cw *csv.Writer
}

func newCSVWriter(out io.Writer) *csvWriter {
	cw := csv.NewWriter(out)
	cw.Write([]string{"code", "char_start", "char_end", "text", "suggest"})
	return &csvWriter{cw: cw}
}

func (w *csvWriter) write(s checker.Sentence) error {
	for _, a := range s.Annotations {
		if err := w.cw.Write([]string{
			a.Code,
			strconv.Itoa(a.CharStart),
			strconv.Itoa(a.CharEnd),
			a.Text,
			a.Suggest,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (w *csvWriter) flush() error {
	w.cw.Flush()
	return w.cw.Error()
}

type jsonSentence struct {
	Corrected   string      `json:"corrected"`
	Tokens      []string    `json:"tokens"`
	Annotations interface{} `json:"annotations"`
	Paragraph   int         `json:"paragraph"`
}

type jsonWriter struct {
	enc *json.Encoder
}

func newJSONWriter(out io.Writer) *jsonWriter {
	return &jsonWriter{enc: json.NewEncoder(out)}
}

func (w *jsonWriter) write(s checker.Sentence) error {
	texts := make([]string, len(s.Tokens))
	for i, t := range s.Tokens {
		texts[i] = t.Text
	}
	return w.enc.Encode(jsonSentence{
		Corrected:   s.Text(false),
		Tokens:      texts,
		Annotations: s.Annotations,
		Paragraph:   s.Paragraph,
	})
}

func (w *jsonWriter) flush() error { return nil }

// ImportCmd builds or extends a lexicon database from a plain-text corpus.
type ImportCmd struct {
	Corpus  string `arg:"" help:"Corpus text file" type:"path"`
	Lexicon string `name:"lexicon" required:"" help:"Lexicon database (SQLite) to create or extend" type:"path"`
}

func (c *ImportCmd) Run() error {
	log := logging.Component("import")
	lex, err := store.NewLexiconWithDSN(c.Lexicon)
	if err != nil {
		return err
	}
	defer lex.Close()

	f, err := os.Open(c.Corpus)
	if err != nil {
		return fmt.Errorf("failed to open corpus: %w", err)
	}
	defer f.Close()

	forms, err := lex.ImportText(f)
	if err != nil {
		return err
	}
	total, err := lex.Count()
	if err != nil {
		return err
	}
	log.Info("corpus imported", "new_forms", forms, "total_forms", total)
	fmt.Printf("imported %d word forms (%d total)\n", forms, total)
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (v *VersionCmd) Run() error {
	fmt.Printf("ritlint %s\n", version)
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("ritlint"),
		kong.Description("Rule-driven corrector and annotator for Icelandic text."),
		kong.UsageOnError(),
	)
	if err := logging.Init(CLI.LogLevel, CLI.LogFormat); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	ctx.FatalIfErrorf(ctx.Run())
}
