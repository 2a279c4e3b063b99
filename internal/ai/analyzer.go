// Package ai implements the generative-model resume analyzer. It is provider
// agnostic: a Generator turns a prompt into raw text, and the Analyzer turns
// that text into a validated analysis object.
package ai

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/spigell/resume-scorer/internal/ai/decode"
	"github.com/spigell/resume-scorer/internal/analysis"
	"github.com/spigell/resume-scorer/internal/logger"
	"github.com/spigell/resume-scorer/internal/utils"
	"go.uber.org/zap"
)

// ErrNotConfigured is returned when no generator is available.
var ErrNotConfigured = errors.New("ai analyzer is not configured")

// Generator sends a prompt to a generative text service.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Model() string
}

//go:embed prompt.md
var promptTemplate string

const (
	defaultMaxLogLength = 200
	notProvided         = "Not provided"
)

// Analyzer evaluates resumes with a generative model.
type Analyzer struct {
	generator Generator
	provider  string
	maxTokens int
	maxLogLen int
	logger    *zap.Logger
}

// NewAnalyzer creates an Analyzer. maxPromptTokens bounds the resume text
// embedded into the prompt; maxLogLength bounds prompt and response previews
// in debug logs.
func NewAnalyzer(generator Generator, provider string, maxPromptTokens, maxLogLength int, log *zap.Logger) *Analyzer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	model := ""
	if generator != nil {
		model = generator.Model()
	}

	return &Analyzer{
		generator: generator,
		provider:  provider,
		maxTokens: maxPromptTokens,
		maxLogLen: maxLogLength,
		logger:    logger.WithCommonFields(log, provider, model),
	}
}

// Analyze runs the model and returns the decoded analysis object. Failures
// are *decode.ParseFailure, *decode.ValidationFailure, ErrNotConfigured,
// analysis.ErrEmptyResume or the generator error.
func (a *Analyzer) Analyze(ctx context.Context, req analysis.Request) (map[string]any, error) {
	if a == nil || a.generator == nil {
		return nil, ErrNotConfigured
	}

	if req.Blank() {
		return nil, analysis.ErrEmptyResume
	}

	resume, truncated := truncateTokens(strings.TrimSpace(req.ResumeText), a.maxTokens)
	if truncated {
		a.logger.Info("resume text truncated to fit the prompt budget", zap.Int("max_tokens", a.maxTokens))
	}

	prompt := buildPrompt(resume, req.JobRole, req.JobDescription)

	a.logger.Debug("generate content request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, a.maxLogLen)),
	)

	raw, err := a.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%s generate content: %w", a.provider, err)
	}

	a.logger.Debug("generate content response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, a.maxLogLen)),
	)

	doc, err := decode.Decode(raw)
	if err != nil {
		return nil, err
	}

	if err := decode.Validate(doc); err != nil {
		return nil, err
	}

	return doc, nil
}

func buildPrompt(resume, role, description string) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Job role:\n{{JOB_ROLE}}\n\nJob description:\n{{JOB_DESCRIPTION}}\n\nResume:\n{{RESUME_TEXT}}\n\nJSON Response:"
	}

	replacer := strings.NewReplacer(
		"{{JOB_ROLE}}", orNotProvided(role),
		"{{JOB_DESCRIPTION}}", orNotProvided(description),
		"{{RESUME_TEXT}}", resume,
	)
	return replacer.Replace(template)
}

func orNotProvided(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return notProvided
	}
	return s
}
