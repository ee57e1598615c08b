package relation

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/robalobadob/linkdle/internal/cache"
	"github.com/robalobadob/linkdle/internal/provider"
)

type fakeDict struct {
	entries map[string]*provider.DictionaryEntry
	fail    map[string]bool
	calls   atomic.Int32
}

func (d *fakeDict) Lookup(_ context.Context, word string) (*provider.DictionaryEntry, error) {
	d.calls.Add(1)
	if d.fail[word] {
		return nil, &provider.Error{Provider: "dictionary", Op: "lookup", Err: errors.New("timeout")}
	}
	e, ok := d.entries[word]
	if !ok {
		return nil, &provider.Error{Provider: "dictionary", Op: "lookup", Err: provider.ErrNotFound}
	}
	return e, nil
}

func entry(word string, defs ...provider.Definition) *provider.DictionaryEntry {
	return &provider.DictionaryEntry{
		Word:     word,
		Meanings: []provider.Meaning{{PartOfSpeech: "noun", Definitions: defs}},
	}
}

type fakeEmbedder struct {
	vecs  map[string][]float32
	err   error
	block bool
	calls atomic.Int32
}

func (e *fakeEmbedder) Embed(ctx context.Context, word string) ([]float32, error) {
	e.calls.Add(1)
	if e.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if e.err != nil {
		return nil, e.err
	}
	if v, ok := e.vecs[word]; ok {
		return v, nil
	}
	// Unknown words get a one-hot vector on their first letter.
	v := make([]float32, 26)
	v[word[0]-'a'] = 1
	return v, nil
}

type fakeGraph struct {
	score  float64
	labels []string
	err    error
	calls  atomic.Int32
}

func (g *fakeGraph) Relatedness(context.Context, string, string) (float64, error) {
	g.calls.Add(1)
	return g.score, g.err
}

func (g *fakeGraph) Edges(context.Context, string, string) ([]string, error) {
	return g.labels, nil
}

type fakeGen struct {
	mu         sync.Mutex
	judgement  *provider.Judgement
	sets       map[string]*provider.RelationshipSet
	delay      time.Duration
	judgeCalls atomic.Int32
	setCalls   atomic.Int32
}

func (g *fakeGen) Judge(context.Context, string, string) (*provider.Judgement, error) {
	g.judgeCalls.Add(1)
	time.Sleep(g.delay)
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.judgement == nil {
		return &provider.Judgement{}, nil
	}
	j := *g.judgement
	return &j, nil
}

func (g *fakeGen) Relationships(_ context.Context, word string) (*provider.RelationshipSet, error) {
	g.setCalls.Add(1)
	time.Sleep(g.delay)
	if s, ok := g.sets[word]; ok {
		return s, nil
	}
	return &provider.RelationshipSet{}, nil
}

func newLexicon(d provider.Dictionary) *Lexicon {
	return NewLexicon(d,
		cache.New[bool]("words", 100, time.Hour),
		cache.New[*provider.DictionaryEntry]("definitions", 100, time.Hour),
		time.Second, zerolog.Nop())
}
