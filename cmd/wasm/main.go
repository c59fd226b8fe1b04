//go:build js && wasm

// Package main exposes the correction pipeline to JavaScript for
// in-browser checking. Functions are registered on the global Ritlint
// object and return JSON strings.
package main

import (
	"context"
	"encoding/json"
	"strings"
	"syscall/js"

	"github.com/ormsson/ritlint/pkg/annotate"
	"github.com/ormsson/ritlint/pkg/checker"
	"github.com/ormsson/ritlint/pkg/engine"
	"github.com/ormsson/ritlint/pkg/rules"
	"github.com/ormsson/ritlint/pkg/speller"
)

const Version = "0.3.0"

var (
	tables  = rules.Default()
	lexicon = speller.MapLexicon{}
)

func main() {
	js.Global().Set("Ritlint", js.ValueOf(map[string]interface{}{
		"version":    js.FuncOf(getVersion),
		"check":      js.FuncOf(check),
		"addWords":   js.FuncOf(addWords),
		"loadTables": js.FuncOf(loadTables),
	}))

	// Keep the runtime alive for JS callbacks.
	select {}
}

func getVersion(this js.Value, args []js.Value) interface{} {
	return Version
}

type checkResult struct {
	Sentences []sentenceResult `json:"sentences"`
	Stats     checker.Stats    `json:"stats"`
}

type sentenceResult struct {
	Corrected   string                `json:"corrected"`
	Tokens      []string              `json:"tokens"`
	Annotations []annotate.Annotation `json:"annotations"`
	Paragraph   int                   `json:"paragraph"`
}

// check runs the pipeline over args[0]; args[1] (optional, bool) applies
// top spelling suggestions instead of flagging them.
func check(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || args[0].Type() != js.TypeString {
		return errorResult("check: expected text argument")
	}
	apply := len(args) > 1 && args[1].Truthy()

	var suggester speller.Suggester
	if len(lexicon) > 0 {
		suggester = speller.NewReference(lexicon)
	}
	chk := checker.New(checker.Options{
		Tables:    tables,
		Suggester: suggester,
		Engine:    engine.Config{ApplySuggestions: apply},
	})

	sents, stats, err := chk.CheckAll(context.Background(), args[0].String())
	if err != nil {
		return errorResult(err.Error())
	}

	res := checkResult{Sentences: make([]sentenceResult, len(sents)), Stats: stats}
	for i, s := range sents {
		texts := make([]string, len(s.Tokens))
		for k, t := range s.Tokens {
			texts[k] = t.Text
		}
		anns := s.Annotations
		if anns == nil {
			anns = []annotate.Annotation{}
		}
		res.Sentences[i] = sentenceResult{
			Corrected:   s.Text(false),
			Tokens:      texts,
			Annotations: anns,
			Paragraph:   s.Paragraph,
		}
	}
	return jsonResult(res)
}

// addWords merges args[0], a JSON object of word -> frequency, into the
// in-memory lexicon used for spelling suggestions.
func addWords(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || args[0].Type() != js.TypeString {
		return errorResult("addWords: expected JSON argument")
	}
	var freqs map[string]float64
	if err := json.Unmarshal([]byte(args[0].String()), &freqs); err != nil {
		return errorResult("addWords: " + err.Error())
	}
	for word, f := range freqs {
		lexicon[strings.ToLower(word)] += f
	}
	return successResult("ok")
}

// loadTables replaces the rule tables with the built-ins plus the given
// YAML extension content (args[0]).
func loadTables(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || args[0].Type() != js.TypeString {
		return errorResult("loadTables: expected YAML argument")
	}
	t, err := rules.DefaultWithContent([]byte(args[0].String()))
	if err != nil {
		return errorResult(err.Error())
	}
	tables = t
	return successResult("ok")
}

func jsonResult(v interface{}) interface{} {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return errorResult(err.Error())
	}
	return string(jsonBytes)
}

func errorResult(msg string) interface{} {
	result := map[string]interface{}{"error": msg}
	jsonBytes, _ := json.Marshal(result)
	return string(jsonBytes)
}

func successResult(msg string) interface{} {
	result := map[string]interface{}{"success": msg}
	jsonBytes, _ := json.Marshal(result)
	return string(jsonBytes)
}
