// Package customdict stores user-supplied dictionary words in Redis.
// Words added here are treated as known by the spelling family, on top of
// the lexicon, so deployments can whitelist domain vocabulary without
// rebuilding the word database.
package customdict

import (
	"context"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/ormsson/ritlint/pkg/speller"
)

const defaultKey = "ritlint:customdict"

// CustomDict wraps a Redis client holding the custom word set.
type CustomDict struct {
	client *redis.Client
	key    string
}

// New creates a CustomDict over the provided Redis client.
func New(client *redis.Client) *CustomDict {
	return &CustomDict{client: client, key: defaultKey}
}

// Add inserts a word into the custom dictionary.
func (cd *CustomDict) Add(ctx context.Context, word string) error {
	return cd.client.SAdd(ctx, cd.key, strings.ToLower(word)).Err()
}

// Remove deletes a word from the custom dictionary.
func (cd *CustomDict) Remove(ctx context.Context, word string) error {
	return cd.client.SRem(ctx, cd.key, strings.ToLower(word)).Err()
}

// Contains reports whether the word is in the custom dictionary.
func (cd *CustomDict) Contains(ctx context.Context, word string) (bool, error) {
	return cd.client.SIsMember(ctx, cd.key, strings.ToLower(word)).Result()
}

// All returns all words stored in the custom dictionary.
func (cd *CustomDict) All(ctx context.Context) ([]string, error) {
	return cd.client.SMembers(ctx, cd.key).Result()
}

// Suggester layers the custom dictionary over a base suggester: custom
// words are known and never flagged or "corrected". Lookup failures fall
// back to the base suggester; a missing Redis must not break checking.
type Suggester struct {
	Base speller.Suggester
	Dict *CustomDict
}

// Known reports whether the word is in the custom dictionary or known to
// the base suggester.
func (s *Suggester) Known(word string) bool {
	if ok, err := s.Dict.Contains(context.Background(), word); err == nil && ok {
		return true
	}
	return s.Base.Known(word)
}

// Frequency returns the base frequency; custom words get a nominal one.
func (s *Suggester) Frequency(word string) float64 {
	if f := s.Base.Frequency(word); f > 0 {
		return f
	}
	if ok, err := s.Dict.Contains(context.Background(), word); err == nil && ok {
		return 1
	}
	return 0
}

// Suggest delegates to the base suggester.
func (s *Suggester) Suggest(word string, max int) []speller.Candidate {
	return s.Base.Suggest(word, max)
}

// Foreign passes through the base suggester's foreign-word detection.
func (s *Suggester) Foreign(word string) bool {
	if fc, ok := s.Base.(interface{ Foreign(string) bool }); ok {
		return fc.Foreign(word)
	}
	return false
}
