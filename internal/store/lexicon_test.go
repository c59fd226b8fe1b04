package store

import (
	"strings"
	"testing"
)

func TestWordCRUD(t *testing.T) {
	s, err := NewLexicon()
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer s.Close()

	if err := s.AddWord("hestur", 42); err != nil {
		t.Fatalf("Failed to add word: %v", err)
	}
	freq, ok := s.Frequency("hestur")
	if !ok || freq != 42 {
		t.Errorf("Frequency(hestur) = %v, %v; want 42, true", freq, ok)
	}
	// Lookup is case-insensitive.
	if !s.Known("Hestur") {
		t.Error("Known(Hestur) = false; want true")
	}

	// Upsert overwrites.
	if err := s.AddWord("hestur", 100); err != nil {
		t.Fatalf("Failed to update word: %v", err)
	}
	if freq, _ := s.Frequency("hestur"); freq != 100 {
		t.Errorf("Frequency after update = %v; want 100", freq)
	}

	if err := s.DeleteWord("hestur"); err != nil {
		t.Fatalf("Failed to delete word: %v", err)
	}
	if s.Known("hestur") {
		t.Error("Known after delete = true; want false")
	}
}

func TestBulkInsertAndRanking(t *testing.T) {
	s, err := NewLexicon()
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer s.Close()

	if err := s.AddWords(map[string]float64{
		"og":     900,
		"að":     800,
		"hestur": 10,
	}); err != nil {
		t.Fatalf("Failed to bulk insert: %v", err)
	}

	n, err := s.Count()
	if err != nil {
		t.Fatalf("Failed to count: %v", err)
	}
	if n != 3 {
		t.Errorf("Count = %d; want 3", n)
	}

	top, err := s.TopWords(2)
	if err != nil {
		t.Fatalf("Failed to list top words: %v", err)
	}
	if len(top) != 2 || top[0] != "og" || top[1] != "að" {
		t.Errorf("TopWords = %v; want [og að]", top)
	}
}

func TestImportText(t *testing.T) {
	s, err := NewLexicon()
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer s.Close()

	corpus := "Hesturinn hljóp. Hesturinn stökk, og hesturinn stoppaði."
	forms, err := s.ImportText(strings.NewReader(corpus))
	if err != nil {
		t.Fatalf("Failed to import corpus: %v", err)
	}
	if forms != 5 {
		t.Errorf("Imported forms = %d; want 5", forms)
	}
	freq, ok := s.Frequency("hesturinn")
	if !ok || freq != 3 {
		t.Errorf("Frequency(hesturinn) = %v, %v; want 3, true", freq, ok)
	}
}
