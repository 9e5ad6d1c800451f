// Package app is the composition root: it owns every client and wires the services.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/partsupport/internal/config"
	"github.com/kailas-cloud/partsupport/internal/db"
	dbRedis "github.com/kailas-cloud/partsupport/internal/db/redis"
	"github.com/kailas-cloud/partsupport/internal/domain"
	"github.com/kailas-cloud/partsupport/internal/domain/part"
	"github.com/kailas-cloud/partsupport/internal/domain/repair"
	"github.com/kailas-cloud/partsupport/internal/metrics"
	"github.com/kailas-cloud/partsupport/internal/repository/embcache"
	retrievalrepo "github.com/kailas-cloud/partsupport/internal/repository/retrieval"
	chiTransport "github.com/kailas-cloud/partsupport/internal/transport/chi"
	openaiTransport "github.com/kailas-cloud/partsupport/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/partsupport/internal/usecase/embedding"
	"github.com/kailas-cloud/partsupport/internal/usecase/generate"
	healthuc "github.com/kailas-cloud/partsupport/internal/usecase/health"
	queryuc "github.com/kailas-cloud/partsupport/internal/usecase/query"
	"github.com/kailas-cloud/partsupport/internal/usecase/render"
	retrievaluc "github.com/kailas-cloud/partsupport/internal/usecase/retrieval"
)

// App holds the shared clients and the services built on them.
type App struct {
	Config config.Config
	Logger *zap.Logger

	Store   db.Store
	Parts   *retrievalrepo.Repo[part.Record]
	Repairs *retrievalrepo.Repo[repair.Record]

	// DocumentEmbedder embeds catalog text for ingestion. It bypasses the query cache.
	DocumentEmbedder *embeddinguc.InstrumentedEmbedder
	QueryEmbedder    *embeddinguc.InstrumentedEmbedder

	Query   *queryuc.Service
	Health  *healthuc.Service
	Handler http.Handler
}

// Init connects to the store, builds the embedding and generation clients and wires the
// query pipeline. It fails fast when the store is unreachable or, with
// index.require_on_start, when either index is missing.
func Init(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterQueryMetrics()

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("create store: %w", err)
	}

	a := &App{Config: cfg, Logger: logger, Store: store}
	if err := a.init(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) init(ctx context.Context) error {
	cfg := a.Config

	if err := a.Store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		return fmt.Errorf("database not ready: %w", err)
	}
	a.Logger.Info("Connected to database", zap.Strings("addrs", cfg.Database.Addrs))

	if err := a.buildRepos(); err != nil {
		return err
	}
	if *cfg.Index.RequireOnStart {
		if err := a.requireIndexes(ctx); err != nil {
			return err
		}
	}

	base := openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   cfg.Embedding.Provider,
		Logger:     a.Logger,
	})
	a.DocumentEmbedder = embeddinguc.NewInstrumentedEmbedder(
		base, cfg.Embedding.Provider, cfg.Embedding.Model, 0, a.Logger)
	a.QueryEmbedder = embeddinguc.NewInstrumentedEmbedder(
		a.cachedEmbedder(base), cfg.Embedding.Provider, cfg.Embedding.Model, 0, a.Logger)

	completer := openaiTransport.NewCompleter(&openaiTransport.CompleterConfig{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
		Logger:  a.Logger,
	})
	generator := generate.New(completer, generate.Config{
		Sampling: domain.SamplingParams{
			Temperature: cfg.LLM.Temperature,
			TopP:        cfg.LLM.TopP,
			MaxTokens:   cfg.LLM.MaxTokens,
		},
		Timeout: time.Duration(cfg.GenerationBudgetSec()) * time.Second,
	}, a.Logger)

	a.Query = queryuc.New(
		a.QueryEmbedder,
		queryuc.Pipeline[part.Record]{
			Retriever: retrievaluc.New[part.Record](a.Parts, cfg.Retrieval.PartsTopK, retrievaluc.PartsFilter, a.Logger),
			Render:    render.Parts,
		},
		queryuc.Pipeline[repair.Record]{
			Retriever: retrievaluc.New[repair.Record](a.Repairs, cfg.Retrieval.RepairsTopK, nil, a.Logger),
			Render:    render.Repairs(repair.InferAppliance),
		},
		generator,
		a.Logger,
	)

	a.Health = healthuc.New(a.Store, a.QueryEmbedder, completer, a.Parts, a.Repairs)

	server := chiTransport.NewServer(a.Query, a.Health, a.Logger)
	a.Handler = chiTransport.NewRouter(server, chiTransport.RouterConfig{
		APIKeys:          cfg.Auth.APIKeys,
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowCredentials: cfg.CORS.AllowCredentials,
	}, a.Logger)

	return nil
}

// Layout derives the key and index layout from the configuration.
func Layout(cfg config.Config) retrievalrepo.Layout {
	return retrievalrepo.Layout{
		KeyPrefix:    cfg.Storage.KeyPrefix,
		PartsIndex:   cfg.Index.Parts,
		RepairsIndex: cfg.Index.Repairs,
		VectorDim:    cfg.Embedding.Dimensions,
		HNSW: retrievalrepo.HNSWConfig{
			M:           cfg.Index.HNSWM,
			EFConstruct: cfg.Index.HNSWEFConstruct,
		},
	}
}

func (a *App) buildRepos() error {
	layout := Layout(a.Config)

	partsCol, err := retrievalrepo.Parts(layout)
	if err != nil {
		return err
	}
	repairsCol, err := retrievalrepo.Repairs(layout)
	if err != nil {
		return err
	}

	a.Parts = retrievalrepo.New(a.Store, partsCol)
	a.Repairs = retrievalrepo.New(a.Store, repairsCol)
	return nil
}

func (a *App) requireIndexes(ctx context.Context) error {
	for _, idx := range []healthuc.IndexChecker{a.Parts, a.Repairs} {
		ok, err := idx.IndexExists(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%s index is missing; run partsupport-loader indexes: %w", idx.Name(), db.ErrIndexNotFound)
		}
	}
	return nil
}

// cachedEmbedder puts the query cache in front of base unless embedding.cache_ttl_sec is -1.
func (a *App) cachedEmbedder(base domain.Embedder) domain.Embedder {
	ttl := a.Config.Embedding.CacheTTLSec
	if ttl < 0 {
		return base
	}
	return embcache.New(base, a.Store, embcache.Options{
		KeyPrefix: a.Config.Storage.KeyPrefix + "emb_cache:",
		Model:     a.Config.Embedding.Model,
		TTL:       time.Duration(ttl) * time.Second,
	}, metrics.EmbeddingCacheTotal, a.Logger)
}

// Close releases the store connection.
func (a *App) Close() {
	if a.Store != nil {
		a.Store.Close()
	}
}
