// internal/relation/resolver.go
//
// Resolver decides whether two words are related by walking a fixed cascade
// of stages and returning the first accepting stage's Edge:
//
//   1. dictionary      synonym 5, antonym 7, definition mention 10
//   2. embedding       cosine >= 0.6, creativity floor(sim × scale)
//   3. conceptual      ConceptNet relatedness >= 0.5, floor(score × 15)
//   4. generative      relationship-set lookup, then a model verdict
//   5. letter-overlap  >= 4 shared letters, 10 if > 4 else 5
//
// Stages whose provider is not configured are left out of the cascade.
// A stage error (network, timeout, parse) is logged, counted and treated as
// a decline; it never aborts resolution.

package relation

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/robalobadob/linkdle/internal/cache"
	"github.com/robalobadob/linkdle/internal/metrics"
	"github.com/robalobadob/linkdle/internal/provider"
)

// Defaults for resolver tuning.
const (
	DefaultSimilarityScale = 20
	DefaultStageTimeout    = 5 * time.Second
)

// stage is one tagged step of the cascade. evaluate returns (nil, nil) to
// decline.
type stage struct {
	kind     StageKind
	evaluate func(ctx context.Context, from, to string) (*Edge, error)
}

// Resolver runs the relationship cascade.
type Resolver struct {
	lex *Lexicon

	embedder provider.Embedder
	vectors  *cache.Cache[[]float32]
	limiter  *rate.Limiter
	scale    float64

	graph provider.ConceptGraph

	gen     provider.Generator
	relSets *cache.Cache[*provider.RelationshipSet]

	timeout time.Duration
	group   singleflight.Group
	log     zerolog.Logger

	stages []stage
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithEmbedder enables the embedding stage; vectors caches per-word vectors.
func WithEmbedder(e provider.Embedder, vectors *cache.Cache[[]float32]) Option {
	return func(r *Resolver) { r.embedder, r.vectors = e, vectors }
}

// WithRateLimiter bounds embedding-stage evaluations. When the limiter has no
// token available the stage declines.
func WithRateLimiter(l *rate.Limiter) Option {
	return func(r *Resolver) { r.limiter = l }
}

// WithSimilarityScale sets the multiplier turning cosine similarity into
// creativity (15..20).
func WithSimilarityScale(s float64) Option {
	return func(r *Resolver) { r.scale = s }
}

// WithConceptGraph enables the conceptual stage.
func WithConceptGraph(g provider.ConceptGraph) Option {
	return func(r *Resolver) { r.graph = g }
}

// WithGenerator enables the generative stage; relSets caches per-word
// relationship sets.
func WithGenerator(g provider.Generator, relSets *cache.Cache[*provider.RelationshipSet]) Option {
	return func(r *Resolver) { r.gen, r.relSets = g, relSets }
}

// WithStageTimeout bounds each stage evaluation.
func WithStageTimeout(d time.Duration) Option {
	return func(r *Resolver) { r.timeout = d }
}

// WithLogger sets the resolver logger.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Resolver) { r.log = l }
}

// NewResolver builds the cascade. The dictionary and letter-overlap stages are
// always present.
func NewResolver(lex *Lexicon, opts ...Option) *Resolver {
	r := &Resolver{
		lex:     lex,
		scale:   DefaultSimilarityScale,
		timeout: DefaultStageTimeout,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.With().Str("component", "resolver").Logger()
	if r.vectors == nil {
		r.vectors = cache.New[[]float32]("vectors", 1000, 0)
	}
	if r.relSets == nil {
		r.relSets = cache.New[*provider.RelationshipSet]("relationships", 500, 24*time.Hour)
	}

	r.stages = append(r.stages, stage{StageDictionary, r.dictionaryStage})
	if r.embedder != nil {
		r.stages = append(r.stages, stage{StageEmbedding, r.embeddingStage})
	}
	if r.graph != nil {
		r.stages = append(r.stages, stage{StageConceptual, r.conceptualStage})
	}
	if r.gen != nil {
		r.stages = append(r.stages, stage{StageGenerative, r.generativeStage})
	}
	r.stages = append(r.stages, stage{StageLetterOverlap, r.letterOverlapStage})
	return r
}

// Stages lists the active cascade in evaluation order.
func (r *Resolver) Stages() []StageKind {
	out := make([]StageKind, len(r.stages))
	for i, s := range r.stages {
		out[i] = s.kind
	}
	return out
}

// Resolve returns the first accepting stage's edge from → to. When no stage
// accepts, the error is a *NoMatchError (matching ErrNoRelationship). A
// cancelled ctx is returned as-is.
func (r *Resolver) Resolve(ctx context.Context, from, to string) (*Edge, error) {
	var failed []StageKind
	for _, s := range r.stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		edge, err := r.run(ctx, s, from, to)
		if err != nil {
			metrics.StageResults.WithLabelValues(string(s.kind), "error").Inc()
			r.log.Warn().Err(err).
				Str("stage", string(s.kind)).
				Str("from", from).
				Str("to", to).
				Msg("relationship stage failed")
			failed = append(failed, s.kind)
			continue
		}
		if edge == nil {
			metrics.StageResults.WithLabelValues(string(s.kind), "decline").Inc()
			continue
		}

		metrics.StageResults.WithLabelValues(string(s.kind), "accept").Inc()
		edge.From, edge.To, edge.Stage = from, to, s.kind
		edge.Creativity = clampCreativity(edge.Creativity)
		r.log.Debug().
			Str("stage", string(s.kind)).
			Str("kind", string(edge.Kind)).
			Float64("creativity", edge.Creativity).
			Msg("relationship found")
		return edge, nil
	}
	return nil, &NoMatchError{Failed: failed}
}

func (r *Resolver) run(ctx context.Context, s stage, from, to string) (*Edge, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	return s.evaluate(ctx, from, to)
}

// share runs fn once for concurrent callers of key. fn is detached from the
// cancellation of whichever caller started it and bounded by timeout when
// set; each caller stops waiting when its own ctx ends.
func share(ctx context.Context, g *singleflight.Group, key string, timeout time.Duration, fn func(context.Context) (any, error)) (any, error) {
	ch := g.DoChan(key, func() (any, error) {
		fctx := context.WithoutCancel(ctx)
		if timeout > 0 {
			var cancel context.CancelFunc
			fctx, cancel = context.WithTimeout(fctx, timeout)
			defer cancel()
		}
		return fn(fctx)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.Val, res.Err
	}
}
