// Package pipeline sequences the analyzers of a single resume analysis:
// the model-backed primary analyzer, the rule-based fallback, depth
// enrichment and normalization into the canonical report.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spigell/resume-scorer/internal/ai"
	"github.com/spigell/resume-scorer/internal/ai/decode"
	"github.com/spigell/resume-scorer/internal/analysis"
	"github.com/spigell/resume-scorer/internal/analysis/rules"
	"github.com/spigell/resume-scorer/internal/depth"
	"github.com/spigell/resume-scorer/internal/logger"
	"github.com/spigell/resume-scorer/internal/metrics"
	"github.com/spigell/resume-scorer/internal/normalize"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/spigell/resume-scorer/internal/pipeline"

// Primary produces a loosely shaped analysis object, typically from a model.
type Primary interface {
	Analyze(ctx context.Context, req analysis.Request) (map[string]any, error)
}

// Fallback is the deterministic analyzer.
type Fallback interface {
	Analyze(req analysis.Request) *analysis.Report
}

// Options configure a Pipeline. Fallback is required; a nil Primary skips
// the primary stage and a nil Enricher disables enrichment.
type Options struct {
	Primary        Primary
	Fallback       Fallback
	Enricher       depth.Enricher
	PrimaryTimeout time.Duration
	EnrichTimeout  time.Duration
	Metrics        *metrics.Recorder
	Logger         *zap.Logger
}

// Pipeline runs analyses. It holds no per-request state and is safe for
// concurrent use.
type Pipeline struct {
	primary        Primary
	fallback       Fallback
	enricher       depth.Enricher
	primaryTimeout time.Duration
	enrichTimeout  time.Duration
	metrics        *metrics.Recorder
	logger         *zap.Logger
	tracer         trace.Tracer
}

// New validates the options and builds a Pipeline.
func New(opts Options) (*Pipeline, error) {
	if opts.Fallback == nil {
		return nil, errors.New("fallback analyzer is required")
	}

	enricher := opts.Enricher
	if enricher == nil {
		enricher = depth.Noop{}
	}

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Pipeline{
		primary:        opts.Primary,
		fallback:       opts.Fallback,
		enricher:       enricher,
		primaryTimeout: opts.PrimaryTimeout,
		enrichTimeout:  opts.EnrichTimeout,
		metrics:        opts.Metrics,
		logger:         log,
		tracer:         otel.Tracer(tracerName),
	}, nil
}

// HasPrimary reports whether the primary stage is configured.
func (p *Pipeline) HasPrimary() bool { return p.primary != nil }

// EnrichmentEnabled reports whether depth enrichment can run.
func (p *Pipeline) EnrichmentEnabled() bool { return p.enricher.Enabled() }

// Run analyzes req. The returned report is complete on success. The only
// error is analysis.ErrAllMethodsFailed, wrapping the reason.
func (p *Pipeline) Run(ctx context.Context, req analysis.Request) (*analysis.Report, error) {
	res := p.execute(ctx, req)
	return res.report, res.err
}

type result struct {
	report *analysis.Report
	err    error
	method analysis.Method
	trail  []State
}

func (p *Pipeline) execute(ctx context.Context, req analysis.Request) result {
	ctx, span := p.tracer.Start(ctx, "resume.analyze",
		trace.WithAttributes(
			attribute.Bool("resume.has_role", req.JobRole != ""),
			attribute.Bool("resume.has_description", req.JobDescription != ""),
			attribute.Int("resume.length", len(req.ResumeText)),
		),
	)
	defer span.End()

	log := logger.FromContext(ctx, p.logger)

	var (
		res      result
		base     outcome
		depthRes *analysis.Depth
		state    = NotStarted
	)

	for {
		res.trail = append(res.trail, state)
		log.Info("pipeline step", zap.String(logger.FieldStage, state.String()))

		switch state {
		case NotStarted:
			if req.Blank() {
				res.err = fmt.Errorf("%w: %w", analysis.ErrAllMethodsFailed, analysis.ErrEmptyResume)
				state = Failed
				continue
			}
			if p.primary != nil {
				state = TryPrimary
				continue
			}
			p.metrics.Fallback("not_configured")
			state = TryFallback

		case TryPrimary:
			base = p.tryPrimary(ctx, log, req)
			if base.succeeded() {
				res.method = analysis.MethodAI
				state, depthRes = p.afterBase(req, base.report)
				continue
			}
			reason := fallbackReason(base.err)
			p.metrics.Fallback(reason)
			log.Warn("primary analysis failed, falling back",
				zap.String("reason", reason),
				zap.Error(base.err),
			)
			state = TryFallback

		case TryFallback:
			base = p.tryFallback(ctx, log, req)
			if base.succeeded() {
				res.method = analysis.MethodRuleBased
				state, depthRes = p.afterBase(req, base.report)
				continue
			}
			res.err = fmt.Errorf("%w: %w", analysis.ErrAllMethodsFailed, base.err)
			state = Failed

		case Enrich:
			depthRes = p.enrich(ctx, log, req, base.report.CandidateSkills())
			state = Done

		case Done:
			res.report = normalize.Complete(base.report, res.method, depthRes)
			p.metrics.Analysis(string(res.method), res.report.Score)
			span.SetAttributes(
				attribute.String("resume.analysis_method", string(res.method)),
				attribute.Int("resume.score", res.report.Score),
			)
			log.Info("analysis completed",
				zap.String(logger.FieldMethod, string(res.method)),
				zap.Int("score", res.report.Score),
			)
			return res

		case Failed:
			res.method = analysis.MethodFailedBeforeAttempt
			p.metrics.Failure(string(res.method))
			span.RecordError(res.err)
			span.SetStatus(codes.Error, res.err.Error())
			log.Warn("analysis failed", zap.String(logger.FieldMethod, string(res.method)), zap.Error(res.err))
			return res
		}
	}
}

// afterBase decides whether enrichment runs for a base report. When it does
// not, the returned skip marker becomes the depth sub-result.
func (p *Pipeline) afterBase(req analysis.Request, report *analysis.Report) (State, *analysis.Depth) {
	if !p.enricher.Enabled() {
		p.metrics.Depth("disabled")
		return Done, analysis.DepthSkipped(analysis.DepthDisabledWarning)
	}
	if req.Blank() || len(report.CandidateSkills()) == 0 {
		p.metrics.Depth("skipped")
		return Done, analysis.DepthSkipped(analysis.DepthInsufficientWarning)
	}
	return Enrich, nil
}

func (p *Pipeline) tryPrimary(ctx context.Context, log *zap.Logger, req analysis.Request) (out outcome) {
	ctx, span := p.tracer.Start(ctx, "resume.analyze.primary")
	start := time.Now()
	defer func() {
		p.metrics.Stage(TryPrimary.String(), time.Since(start))
		if out.err != nil {
			span.RecordError(out.err)
			span.SetStatus(codes.Error, out.err.Error())
		}
		span.End()
	}()

	defer func() {
		if r := recover(); r != nil {
			log.Error("primary analyzer panicked", zap.Any("panic", r))
			out = fail(fmt.Errorf("primary analyzer panicked: %v", r))
		}
	}()

	if p.primaryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.primaryTimeout)
		defer cancel()
	}

	doc, err := p.primary.Analyze(ctx, req)
	if err != nil {
		return fail(err)
	}

	report, err := normalize.FromMap(doc)
	if err != nil {
		return fail(err)
	}

	return ok(report)
}

func (p *Pipeline) tryFallback(ctx context.Context, log *zap.Logger, req analysis.Request) (out outcome) {
	_, span := p.tracer.Start(ctx, "resume.analyze.fallback")
	start := time.Now()
	defer func() {
		p.metrics.Stage(TryFallback.String(), time.Since(start))
		span.End()
	}()

	if req.Blank() {
		return fail(analysis.ErrEmptyResume)
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error("rule-based analyzer panicked, using baseline report", zap.Any("panic", r))
			span.SetAttributes(attribute.Bool("resume.baseline", true))
			out = ok(rules.Baseline())
		}
	}()

	report := p.fallback.Analyze(req)
	if report == nil {
		return ok(rules.Baseline())
	}
	return ok(report)
}

// enrich calls the enricher under the enrichment timeout. It never fails.
func (p *Pipeline) enrich(ctx context.Context, log *zap.Logger, req analysis.Request, skills []string) (d *analysis.Depth) {
	ctx, span := p.tracer.Start(ctx, "resume.analyze.enrich", trace.WithAttributes(attribute.Int("resume.skills", len(skills))))
	start := time.Now()
	defer func() {
		p.metrics.Stage(Enrich.String(), time.Since(start))
		outcome := "succeeded"
		if d.Error != "" {
			outcome = "failed"
			span.SetStatus(codes.Error, d.Error)
		}
		p.metrics.Depth(outcome)
		span.End()
	}()

	defer func() {
		if r := recover(); r != nil {
			log.Error("depth enricher panicked", zap.Any("panic", r))
			d = analysis.DepthFailed(fmt.Sprintf("depth analysis panicked: %v", r))
		}
	}()

	if p.enrichTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.enrichTimeout)
		defer cancel()
	}

	d = p.enricher.Enrich(ctx, req.ResumeText, skills)
	if d == nil {
		d = analysis.DepthFailed("depth analysis returned no result")
	}
	return d
}

func fallbackReason(err error) string {
	var (
		parse      *decode.ParseFailure
		validation *decode.ValidationFailure
	)

	switch {
	case errors.As(err, &parse):
		return "parse_failure"
	case errors.As(err, &validation):
		return "validation_failure"
	case errors.Is(err, ai.ErrNotConfigured):
		return "not_configured"
	case errors.Is(err, analysis.ErrEmptyResume):
		return "empty_resume"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "upstream_error"
	}
}
