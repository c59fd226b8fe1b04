// Package main runs the ritlint HTTP service: a JSON correction endpoint
// plus management of the Redis-backed custom dictionary.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/redis/go-redis/v9"

	"github.com/ormsson/ritlint/internal/customdict"
	"github.com/ormsson/ritlint/internal/logging"
	"github.com/ormsson/ritlint/internal/store"
	"github.com/ormsson/ritlint/pkg/annotate"
	"github.com/ormsson/ritlint/pkg/checker"
	"github.com/ormsson/ritlint/pkg/engine"
	"github.com/ormsson/ritlint/pkg/rules"
	"github.com/ormsson/ritlint/pkg/speller"
)

// CLI defines the server flags using Kong.
var CLI struct {
	Addr          string   `name:"addr" default:":8080" env:"HTTP_ADDR" help:"Listen address"`
	RedisAddr     string   `name:"redis-addr" env:"REDIS_ADDR" help:"Redis address for the custom dictionary (empty disables it)"`
	RedisPassword string   `name:"redis-password" env:"REDIS_PASSWORD" help:"Redis password"`
	RedisDB       int      `name:"redis-db" env:"REDIS_DB" help:"Redis database number"`
	Lexicon       string   `name:"lexicon" env:"LEXICON_DB" help:"Lexicon database (SQLite) for spelling suggestions" type:"path"`
	Tables        []string `name:"tables" short:"t" help:"Extension rule-table files (YAML)" type:"path"`
	LogLevel      string   `name:"log-level" default:"info" help:"Log level (debug, info, warn, error)"`
	LogFormat     string   `name:"log-format" default:"json" help:"Log format (text, json)"`
}

type server struct {
	tables    *rules.Tables
	suggester speller.Suggester
	dict      *customdict.CustomDict
}

// checker builds a pipeline for one request's options. Tables and the
// suggester are shared; the engine itself is cheap to assemble.
func (s *server) checker(applySuggestions bool) *checker.Checker {
	return checker.New(checker.Options{
		Tables:    s.tables,
		Suggester: s.suggester,
		Engine:    engine.Config{ApplySuggestions: applySuggestions},
	})
}

type correctRequest struct {
	Text             string `json:"text"`
	ApplySuggestions bool   `json:"apply_suggestions"`
	Spaced           bool   `json:"spaced"`
}

type correctedSentence struct {
	Corrected   string                `json:"corrected"`
	Tokens      []string              `json:"tokens"`
	Annotations []annotate.Annotation `json:"annotations"`
	Paragraph   int                   `json:"paragraph"`
}

type correctResponse struct {
	Sentences []correctedSentence `json:"sentences"`
	Stats     checker.Stats       `json:"stats"`
}

func (s *server) handleCorrect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req correctRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	sents, stats, err := s.checker(req.ApplySuggestions).CheckAll(r.Context(), req.Text)
	if err != nil {
		logging.FromContext(r.Context()).Error("check failed", "error", err)
		writeError(w, http.StatusInternalServerError, "check failed")
		return
	}

	resp := correctResponse{Sentences: make([]correctedSentence, len(sents)), Stats: stats}
	for i, sent := range sents {
		texts := make([]string, len(sent.Tokens))
		for k, t := range sent.Tokens {
			texts[k] = t.Text
		}
		anns := sent.Annotations
		if anns == nil {
			anns = []annotate.Annotation{}
		}
		resp.Sentences[i] = correctedSentence{
			Corrected:   sent.Text(req.Spaced),
			Tokens:      texts,
			Annotations: anns,
			Paragraph:   sent.Paragraph,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *server) handleCustomWords(w http.ResponseWriter, r *http.Request) {
	if s.dict == nil {
		writeError(w, http.StatusServiceUnavailable, "custom dictionary not configured")
		return
	}
	switch r.Method {
	case http.MethodGet:
		words, err := s.dict.All(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if words == nil {
			words = []string{}
		}
		writeJSON(w, http.StatusOK, map[string][]string{"words": words})
	case http.MethodPost:
		var req struct {
			Word string `json:"word"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Word == "" {
			writeError(w, http.StatusBadRequest, "invalid request")
			return
		}
		if err := s.dict.Add(r.Context(), req.Word); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"status": "ok"})
	default:
		http.NotFound(w, r)
	}
}

func (s *server) handleCustomWord(w http.ResponseWriter, r *http.Request) {
	if s.dict == nil {
		writeError(w, http.StatusServiceUnavailable, "custom dictionary not configured")
		return
	}
	if r.Method != http.MethodDelete {
		http.NotFound(w, r)
		return
	}
	word := strings.TrimPrefix(r.URL.Path, "/api/v1/custom-word/")
	if word == "" {
		writeError(w, http.StatusBadRequest, "word is required")
		return
	}
	if err := s.dict.Remove(r.Context(), word); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func run() error {
	log := logging.Component("server")

	tables := rules.Default()
	if len(CLI.Tables) > 0 {
		var err error
		tables, err = rules.DefaultWith(CLI.Tables...)
		if err != nil {
			return err
		}
	}

	var suggester speller.Suggester
	if CLI.Lexicon != "" {
		lex, err := store.NewLexiconWithDSN(CLI.Lexicon)
		if err != nil {
			return err
		}
		defer lex.Close()
		suggester = speller.NewReference(lex)
	}

	srv := &server{tables: tables, suggester: suggester}
	if CLI.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     CLI.RedisAddr,
			Password: CLI.RedisPassword,
			DB:       CLI.RedisDB,
		})
		srv.dict = customdict.New(client)
		if suggester != nil {
			srv.suggester = &customdict.Suggester{Base: suggester, Dict: srv.dict}
		}
		log.Info("custom dictionary enabled", "redis", CLI.RedisAddr)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/correct", srv.handleCorrect)
	mux.HandleFunc("/api/v1/custom-word", srv.handleCustomWords)
	mux.HandleFunc("/api/v1/custom-word/", srv.handleCustomWord)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	httpServer := &http.Server{
		Addr:              CLI.Addr,
		Handler:           logging.Middleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", CLI.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}
	return nil
}

func main() {
	kong.Parse(&CLI,
		kong.Name("ritlint-server"),
		kong.Description("HTTP API for the ritlint Icelandic text corrector."),
		kong.UsageOnError(),
	)
	if err := logging.Init(CLI.LogLevel, CLI.LogFormat); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := run(); err != nil {
		logging.Component("server").Error("fatal", "error", err)
		os.Exit(1)
	}
}
