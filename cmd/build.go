package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spigell/resume-scorer/internal/ai"
	"github.com/spigell/resume-scorer/internal/ai/gemini"
	"github.com/spigell/resume-scorer/internal/analysis/rules"
	"github.com/spigell/resume-scorer/internal/depth"
	"github.com/spigell/resume-scorer/internal/knowledge"
	"github.com/spigell/resume-scorer/internal/metrics"
	"github.com/spigell/resume-scorer/internal/pipeline"
	"github.com/spigell/resume-scorer/internal/secrets"

	"go.uber.org/zap"
)

// newPipeline wires the analyzers selected by config.
func newPipeline(ctx context.Context, config *Config, kb *knowledge.Knowledgebase, rec *metrics.Recorder, logger *zap.Logger) (*pipeline.Pipeline, error) {
	primary, err := newPrimary(ctx, config.AI, logger)
	if err != nil {
		return nil, fmt.Errorf("building ai analyzer: %w", err)
	}

	enricher := depth.New(depth.Config{
		Enabled: config.Depth.Enabled,
		BaseURL: config.Depth.BaseURL,
		Timeout: config.Depth.Timeout,
	}, logger.With(zap.String("component", "depth")))

	opts := pipeline.Options{
		Fallback:       rules.New(kb),
		Enricher:       enricher,
		PrimaryTimeout: config.AI.Timeout,
		EnrichTimeout:  config.Depth.Timeout,
		Metrics:        rec,
		Logger:         logger,
	}
	if primary != nil {
		opts.Primary = primary
	}

	p, err := pipeline.New(opts)
	if err != nil {
		return nil, err
	}

	logger.Info("analysis pipeline ready",
		zap.Bool("ai", p.HasPrimary()),
		zap.Bool("depth", p.EnrichmentEnabled()),
	)

	return p, nil
}

// newPrimary returns nil when the model analyzer is disabled or has no
// credential.
func newPrimary(ctx context.Context, cfg *AIConfig, logger *zap.Logger) (*ai.Analyzer, error) {
	if cfg == nil || !cfg.Enabled {
		logger.Info("ai analysis disabled", zap.String("reason", "ai.enabled is false"))
		return nil, nil
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != gemini.Provider {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	gcfg := cfg.Gemini
	if gcfg == nil {
		gcfg = &GeminiConfig{}
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: gcfg.APIKey,
		File:  gcfg.APIKeyFile,
		Env:   "GEMINI_API_KEY",
	})
	if errors.Is(err, secrets.ErrNotConfigured) {
		logger.Info("ai analysis disabled",
			zap.String("reason", "no gemini api key"),
			zap.String("hint", "set ai.gemini.api-key-file, GEMINI_API_KEY_FILE or GEMINI_API_KEY"),
		)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, gcfg.Model, gemini.Options{
		BaseURL:     gcfg.BaseURL,
		Temperature: gcfg.Temperature,
	})
	if err != nil {
		return nil, err
	}

	return ai.NewAnalyzer(generator, gemini.Provider, cfg.MaxPromptTokens, gcfg.MaxLogLength, logger), nil
}
