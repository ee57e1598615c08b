// internal/relation/lexicon.go
//
// Lexicon answers "is this a word?" and "what does the dictionary say about
// it?" in front of a provider.Dictionary, using two caches:
//   - existence (word → bool), negative results included
//   - entries   (word → *DictionaryEntry)
// Provider failures are never cached. Concurrent lookups of the same word
// share a single provider call.

package relation

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/robalobadob/linkdle/internal/cache"
	"github.com/robalobadob/linkdle/internal/provider"
)

// Lexicon is a cached dictionary front.
type Lexicon struct {
	dict    provider.Dictionary
	exists  *cache.Cache[bool]
	entries *cache.Cache[*provider.DictionaryEntry]
	timeout time.Duration
	group   singleflight.Group
	log     zerolog.Logger
}

// NewLexicon wires dict to its caches. A nil dict accepts every word and has
// no definitions (offline play).
func NewLexicon(dict provider.Dictionary, exists *cache.Cache[bool], entries *cache.Cache[*provider.DictionaryEntry], timeout time.Duration, log zerolog.Logger) *Lexicon {
	return &Lexicon{
		dict:    dict,
		exists:  exists,
		entries: entries,
		timeout: timeout,
		log:     log.With().Str("component", "lexicon").Logger(),
	}
}

// Exists reports whether word is a dictionary headword. The error is non-nil
// only when the provider failed.
func (l *Lexicon) Exists(ctx context.Context, word string) (bool, error) {
	if l.dict == nil {
		return true, nil
	}
	if ok, hit := l.exists.Get(word); hit {
		return ok, nil
	}
	e, err := l.Entry(ctx, word)
	if err != nil {
		return false, err
	}
	return e != nil, nil
}

// Entry returns word's dictionary entry, or nil when the word does not exist.
func (l *Lexicon) Entry(ctx context.Context, word string) (*provider.DictionaryEntry, error) {
	if l.dict == nil {
		return nil, nil
	}
	if e, hit := l.entries.Get(word); hit {
		return e, nil
	}
	if ok, hit := l.exists.Get(word); hit && !ok {
		return nil, nil
	}

	v, err := share(ctx, &l.group, word, l.timeout, func(cctx context.Context) (any, error) {
		e, err := l.dict.Lookup(cctx, word)
		switch {
		case errors.Is(err, provider.ErrNotFound):
			l.exists.Set(word, false)
			return (*provider.DictionaryEntry)(nil), nil
		case err != nil:
			l.log.Warn().Err(err).Str("word", word).Msg("dictionary lookup failed")
			return nil, err
		}
		l.exists.Set(word, true)
		l.entries.Set(word, e)
		return e, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*provider.DictionaryEntry), nil
}
