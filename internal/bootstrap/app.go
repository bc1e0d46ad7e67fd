package bootstrap

import (
	"fmt"
	"time"

	"askpa/internal/ai"
	"askpa/internal/config"
	"askpa/internal/registry"
	"askpa/internal/vectorstore"
)

type App struct {
	Config   *config.Config
	Registry *registry.Registry
	LLM      *ai.Client
	Index    *vectorstore.PineconeClient

	StartedAt time.Time
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	reg := registry.New(cfg.Registry.File)
	if err := reg.Load(); err != nil {
		return nil, fmt.Errorf("load user registry failed: %w", err)
	}

	llm := ai.NewClient(ai.Config{
		BaseURL:             cfg.LLM.BaseURL,
		APIKey:              cfg.LLM.APIKey,
		Model:               cfg.LLM.Model,
		EmbeddingModel:      cfg.LLM.EmbeddingModel,
		EmbeddingDimensions: cfg.LLM.EmbeddingDimensions,
	})

	index := vectorstore.NewPineconeClient(vectorstore.Config{
		APIKey:    cfg.Pinecone.APIKey,
		IndexHost: cfg.Pinecone.IndexHost,
		Namespace: cfg.Pinecone.Namespace,
	})

	return &App{
		Config:    cfg,
		Registry:  reg,
		LLM:       llm,
		Index:     index,
		StartedAt: time.Now(),
	}, nil
}
