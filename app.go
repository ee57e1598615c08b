// app.go
//
// Construction of the service graph from configuration:
//   caches → snapshot storage → providers → lexicon → resolver → pipeline.
// Providers whose backend is "none" or whose key is missing are left out,
// which removes their cascade stage.

package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/robalobadob/linkdle/internal/cache"
	"github.com/robalobadob/linkdle/internal/config"
	"github.com/robalobadob/linkdle/internal/provider"
	"github.com/robalobadob/linkdle/internal/provider/conceptnet"
	"github.com/robalobadob/linkdle/internal/provider/dictionary"
	"github.com/robalobadob/linkdle/internal/provider/ollama"
	openaiprov "github.com/robalobadob/linkdle/internal/provider/openai"
	"github.com/robalobadob/linkdle/internal/relation"
	"github.com/robalobadob/linkdle/internal/store"
	"github.com/robalobadob/linkdle/internal/validation"
)

// caches are the service-owned caches handed to the lexicon, resolver and
// pipeline.
type caches struct {
	words         *cache.Cache[bool]
	definitions   *cache.Cache[*provider.DictionaryEntry]
	relationships *cache.Cache[*provider.RelationshipSet]
	vectors       *cache.Cache[[]float32]
	outcomes      *cache.Cache[validation.Outcome]
}

func newCaches(cfg config.CacheConfig, st cache.Storage, logger zerolog.Logger) *caches {
	opts := []cache.Option{cache.WithLogger(logger)}
	if st != nil {
		opts = append(opts, cache.WithStorage(st))
	}
	return &caches{
		words:         cache.New[bool]("words", cfg.Words.Capacity, cfg.Words.TTL, opts...),
		definitions:   cache.New[*provider.DictionaryEntry]("definitions", cfg.Definitions.Capacity, cfg.Definitions.TTL, opts...),
		relationships: cache.New[*provider.RelationshipSet]("relationships", cfg.Relationships.Capacity, cfg.Relationships.TTL, opts...),
		vectors:       cache.New[[]float32]("vectors", cfg.Vectors.Capacity, cfg.Vectors.TTL, opts...),
		outcomes:      cache.New[validation.Outcome]("outcomes", cfg.Outcomes.Capacity, cfg.Outcomes.TTL, opts...),
	}
}

func (c *caches) all() []cache.Persister {
	return []cache.Persister{c.words, c.definitions, c.relationships, c.vectors, c.outcomes}
}

// openSnapshots returns the configured snapshot storage and its closer. The
// storage is nil when persistence is off.
func openSnapshots(cfg config.CacheConfig, db *sql.DB) (cache.Storage, func() error, error) {
	switch cfg.Persist {
	case config.BackendSQLite:
		return store.NewSQLiteSnapshots(db), func() error { return nil }, nil
	case config.BackendBadger:
		bdb, err := store.OpenBadger(cfg.BadgerPath)
		if err != nil {
			return nil, nil, err
		}
		return store.NewBadgerSnapshots(bdb), bdb.Close, nil
	default:
		return nil, func() error { return nil }, nil
	}
}

// newPipeline builds the validation pipeline and its relationship cascade.
func newPipeline(cfg config.ProvidersConfig, c *caches, logger zerolog.Logger) (*validation.Pipeline, error) {
	var dict provider.Dictionary
	if cfg.Dictionary.Enabled {
		dict = dictionary.New(cfg.Dictionary.URL, cfg.Dictionary.Timeout)
	} else {
		log.Warn().Msg("dictionary disabled; every word is accepted")
	}
	lex := relation.NewLexicon(dict, c.words, c.definitions, cfg.StageTimeout, logger)

	opts := []relation.Option{
		relation.WithStageTimeout(cfg.StageTimeout),
		relation.WithSimilarityScale(cfg.Embedding.SimilarityScale),
		relation.WithLogger(logger),
	}

	var oa *openaiprov.Client
	if cfg.Embedding.Backend == config.BackendOpenAI || cfg.Generative.Backend == config.BackendOpenAI {
		params := openaiprov.Params{
			Dimensions: cfg.Embedding.Dimensions,
			MaxRetries: 2,
			Logger:     logger,
		}
		if cfg.Embedding.Backend == config.BackendOpenAI {
			params.EmbeddingModel = cfg.Embedding.Model
			params.EmbeddingURL = cfg.Embedding.URL
			params.EmbeddingKey = cfg.Embedding.APIKey
		}
		if cfg.Generative.Backend == config.BackendOpenAI {
			params.ChatModel = cfg.Generative.Model
			params.ChatURL = cfg.Generative.URL
			params.ChatKey = cfg.Generative.APIKey
		}
		oa = openaiprov.New(params)
	}

	var embedder provider.Embedder
	switch cfg.Embedding.Backend {
	case config.BackendOpenAI:
		if oa.CanEmbed() {
			embedder = oa
		} else {
			log.Warn().Msg("embedding api key missing; embedding stage disabled")
		}
	case config.BackendOllama:
		ol, err := ollama.New(ollama.Params{
			BaseURL:               cfg.Embedding.URL,
			Model:                 cfg.Embedding.Model,
			MaxConcurrentRequests: cfg.Embedding.MaxConcurrent,
		})
		if err != nil {
			return nil, fmt.Errorf("ollama embedder: %w", err)
		}
		embedder = ol
	}
	if embedder != nil {
		opts = append(opts, relation.WithEmbedder(embedder, c.vectors))
		if n := cfg.Embedding.RatePerMinute; n > 0 {
			opts = append(opts, relation.WithRateLimiter(rate.NewLimiter(rate.Limit(float64(n)/60), max(1, n/60))))
		}
	}

	if cfg.ConceptNet.Enabled {
		opts = append(opts, relation.WithConceptGraph(conceptnet.New(cfg.ConceptNet.URL, cfg.ConceptNet.Timeout)))
	}

	if cfg.Generative.Backend == config.BackendOpenAI {
		if oa.CanChat() {
			opts = append(opts, relation.WithGenerator(oa, c.relationships))
		} else {
			log.Warn().Msg("generative api key missing; generative stage disabled")
		}
	}

	resolver := relation.NewResolver(lex, opts...)
	log.Info().Strs("stages", stageNames(resolver.Stages())).Msg("relationship cascade ready")

	return validation.NewPipeline(lex, resolver, c.outcomes, validation.WithLogger(logger)), nil
}

func stageNames(kinds []relation.StageKind) []string {
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = string(k)
	}
	return out
}

// saveCaches writes every cache snapshot, logging failures.
func saveCaches(ctx context.Context, c *caches) {
	if err := cache.SaveAll(ctx, c.all()...); err != nil {
		log.Warn().Err(err).Msg("save cache snapshots")
		return
	}
	log.Debug().Msg("cache snapshots saved")
}
