// Package depth implements the optional depth enrichment capability: skill
// proficiency and soft-skill inference delegated to an external HTTP service.
package depth

import (
	"context"
	"time"

	"github.com/spigell/resume-scorer/internal/analysis"
	"go.uber.org/zap"
)

// Enricher infers skill depth for a resume. Implementations never fail: any
// problem is reported through the returned Depth.
type Enricher interface {
	Enabled() bool
	Enrich(ctx context.Context, resumeText string, skills []string) *analysis.Depth
}

// Noop is the enricher used when depth analysis is switched off.
type Noop struct{}

func (Noop) Enabled() bool { return false }

func (Noop) Enrich(context.Context, string, []string) *analysis.Depth {
	return analysis.DepthSkipped(analysis.DepthDisabledWarning)
}

// Config selects and tunes the enricher.
type Config struct {
	Enabled bool
	BaseURL string
	Timeout time.Duration
}

// New returns the HTTP client when enabled, otherwise Noop.
func New(cfg Config, logger *zap.Logger) Enricher {
	if !cfg.Enabled {
		return Noop{}
	}
	return NewClient(cfg.BaseURL, cfg.Timeout, logger)
}
