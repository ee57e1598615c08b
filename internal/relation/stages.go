package relation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/robalobadob/linkdle/internal/provider"
	"github.com/robalobadob/linkdle/internal/words"
)

// Creativity weights for fixed-kind links.
const (
	creativitySynonym     = 5
	creativityAntonym     = 7
	creativityContextual  = 10
	creativityFigurative  = 15
	creativityAssociation = 20

	similarityThreshold  = 0.6
	relatednessThreshold = 0.5
	conceptualScale      = 15
)

func (r *Resolver) dictionaryStage(ctx context.Context, from, to string) (*Edge, error) {
	fromEntry, errFrom := r.lex.Entry(ctx, from)
	toEntry, errTo := r.lex.Entry(ctx, to)
	if fromEntry == nil && toEntry == nil {
		return nil, errors.Join(errFrom, errTo)
	}

	if listed(fromEntry, (*provider.DictionaryEntry).Synonyms, to) || listed(toEntry, (*provider.DictionaryEntry).Synonyms, from) {
		return &Edge{Kind: KindSynonym, Label: "Synonym", Creativity: creativitySynonym}, nil
	}
	if listed(fromEntry, (*provider.DictionaryEntry).Antonyms, to) || listed(toEntry, (*provider.DictionaryEntry).Antonyms, from) {
		return &Edge{Kind: KindAntonym, Label: "Antonym", Creativity: creativityAntonym}, nil
	}
	if mentioned(fromEntry, to) || mentioned(toEntry, from) {
		return &Edge{Kind: KindContextual, Label: "Contextual", Creativity: creativityContextual}, nil
	}
	return nil, nil
}

func listed(e *provider.DictionaryEntry, list func(*provider.DictionaryEntry) []string, word string) bool {
	if e == nil {
		return false
	}
	for _, s := range list(e) {
		if strings.EqualFold(strings.TrimSpace(s), word) {
			return true
		}
	}
	return false
}

func mentioned(e *provider.DictionaryEntry, word string) bool {
	if e == nil {
		return false
	}
	for _, d := range e.DefinitionTexts() {
		if words.ContainsToken(d, word) {
			return true
		}
	}
	return false
}

func (r *Resolver) embeddingStage(ctx context.Context, from, to string) (*Edge, error) {
	if r.limiter != nil && !r.limiter.Allow() {
		r.log.Debug().Msg("embedding rate limit reached")
		return nil, nil
	}

	var a, b []float32
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		a, err = r.vector(gctx, from)
		return err
	})
	g.Go(func() (err error) {
		b, err = r.vector(gctx, to)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sim, err := cosine(a, b)
	if err != nil {
		return nil, err
	}
	if sim < similarityThreshold {
		return nil, nil
	}

	label := "Contextual"
	switch {
	case sim > 0.8:
		label = "Strong semantic"
	case sim > 0.7:
		label = "Metaphorical"
	}
	return &Edge{Kind: KindSemantic, Label: label, Creativity: math.Floor(sim * r.scale)}, nil
}

// vector returns word's embedding from cache or the embedder.
func (r *Resolver) vector(ctx context.Context, word string) ([]float32, error) {
	if v, ok := r.vectors.Get(word); ok {
		return v, nil
	}
	v, err := share(ctx, &r.group, "vec:"+word, r.timeout, func(ctx context.Context) (any, error) {
		vec, err := r.embedder.Embed(ctx, word)
		if err != nil {
			return nil, err
		}
		r.vectors.Set(word, vec)
		return vec, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]float32), nil
}

func cosine(a, b []float32) (float64, error) {
	if len(a) == 0 || len(a) != len(b) {
		return 0, fmt.Errorf("embedding dimensions differ: %d vs %d", len(a), len(b))
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb)), nil
}

func (r *Resolver) conceptualStage(ctx context.Context, from, to string) (*Edge, error) {
	score, err := r.graph.Relatedness(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if score < relatednessThreshold {
		return nil, nil
	}

	label := "Conceptual"
	labels, err := r.graph.Edges(ctx, from, to)
	if err != nil {
		r.log.Debug().Err(err).Msg("concept edges unavailable")
	} else if len(labels) > 0 {
		label = labels[0]
	}
	return &Edge{Kind: KindConceptual, Label: label, Creativity: math.Floor(score * conceptualScale)}, nil
}

func (r *Resolver) generativeStage(ctx context.Context, from, to string) (*Edge, error) {
	set, err := r.relationshipSet(ctx, from)
	if err != nil {
		r.log.Warn().Err(err).Str("word", from).Msg("relationship set unavailable")
	} else if e := matchSet(set, to); e != nil {
		return e, nil
	}

	j, err := r.gen.Judge(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if j == nil || !j.IsValid {
		return nil, nil
	}
	kind, ok := ParseKind(j.RelationshipType)
	if !ok {
		kind = KindCreative
	}
	label := strings.TrimSpace(j.RelationshipType)
	if label == "" {
		label = "Creative"
	}
	return &Edge{Kind: kind, Label: label, Creativity: j.Creativity}, nil
}

// relationshipSet returns word's generated relationship set from cache or the
// generator.
func (r *Resolver) relationshipSet(ctx context.Context, word string) (*provider.RelationshipSet, error) {
	if s, ok := r.relSets.Get(word); ok {
		return s, nil
	}
	v, err := share(ctx, &r.group, "rel:"+word, r.timeout, func(ctx context.Context) (any, error) {
		s, err := r.gen.Relationships(ctx, word)
		if err != nil {
			return nil, err
		}
		if !s.Empty() {
			r.relSets.Set(word, s)
		}
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*provider.RelationshipSet), nil
}

func matchSet(s *provider.RelationshipSet, word string) *Edge {
	if s == nil {
		return nil
	}
	groups := []struct {
		list       []string
		kind       Kind
		label      string
		creativity float64
	}{
		{s.Strict.Synonyms, KindSynonym, "Synonym", creativitySynonym},
		{s.Strict.Antonyms, KindAntonym, "Antonym", creativityAntonym},
		{s.Strict.Contextual, KindContextual, "Contextual", creativityContextual},
		{s.Creative.Figurative, KindFigurative, "Figurative", creativityFigurative},
		{s.Creative.Associations, KindAssociation, "Association", creativityAssociation},
	}
	for _, g := range groups {
		for _, w := range g.list {
			if strings.EqualFold(strings.TrimSpace(w), word) {
				return &Edge{Kind: g.kind, Label: g.label, Creativity: g.creativity}
			}
		}
	}
	return nil
}

func (r *Resolver) letterOverlapStage(_ context.Context, from, to string) (*Edge, error) {
	n := words.SharedLetters(from, to)
	if n < words.MinSharedLetters {
		return nil, nil
	}
	creativity := 5.0
	if n > words.MinSharedLetters {
		creativity = 10
	}
	return &Edge{Kind: KindLetterOverlap, Label: fmt.Sprintf("%d shared letters", n), Creativity: creativity}, nil
}
