package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spigell/resume-scorer/internal/ai/decode"
	"github.com/spigell/resume-scorer/internal/analysis"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type stubGenerator struct {
	response   string
	err        error
	lastPrompt string
	calls      int
}

func (s *stubGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	s.calls++
	s.lastPrompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func (s *stubGenerator) Model() string {
	return "stub-model"
}

const validResponse = "```json\n{\"score\": 82, \"skillsScore\": 70, \"keywordAnalysis\": {\"matchedKeywords\": [\"go\"], \"missingKeywords\": []}}\n```"

func TestAnalyzerAnalyze(t *testing.T) {
	stub := &stubGenerator{response: validResponse}
	analyzer := NewAnalyzer(stub, "gemini", 0, 0, zap.NewNop())

	doc, err := analyzer.Analyze(context.Background(), analysis.Request{
		ResumeText:     "Go developer with 5 years of experience",
		JobRole:        "backend developer",
		JobDescription: "fintech",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if doc["score"] != float64(82) {
		t.Fatalf("unexpected score: %v", doc["score"])
	}

	for _, fragment := range []string{"Go developer with 5 years of experience", "backend developer", "fintech"} {
		if !strings.Contains(stub.lastPrompt, fragment) {
			t.Fatalf("expected prompt to contain %q", fragment)
		}
	}
	if strings.Contains(stub.lastPrompt, "{{") {
		t.Fatalf("expected all placeholders to be replaced")
	}
}

func TestAnalyzerMissingJobContext(t *testing.T) {
	stub := &stubGenerator{response: validResponse}
	analyzer := NewAnalyzer(stub, "gemini", 0, 0, nil)

	if _, err := analyzer.Analyze(context.Background(), analysis.Request{ResumeText: "resume"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !strings.Contains(stub.lastPrompt, notProvided) {
		t.Fatalf("expected prompt to mark missing job context")
	}
}

func TestAnalyzerErrors(t *testing.T) {
	upstream := errors.New("deadline exceeded")

	tests := []struct {
		name      string
		generator Generator
		request   analysis.Request
		check     func(t *testing.T, err error)
		wantCalls int
	}{
		{
			name:    "not configured",
			request: analysis.Request{ResumeText: "resume"},
			check: func(t *testing.T, err error) {
				if !errors.Is(err, ErrNotConfigured) {
					t.Fatalf("expected ErrNotConfigured, got %v", err)
				}
			},
		},
		{
			name:      "blank resume skips the call",
			generator: &stubGenerator{response: validResponse},
			request:   analysis.Request{ResumeText: "  \n "},
			check: func(t *testing.T, err error) {
				if !errors.Is(err, analysis.ErrEmptyResume) {
					t.Fatalf("expected ErrEmptyResume, got %v", err)
				}
			},
		},
		{
			name:      "generator error",
			generator: &stubGenerator{err: upstream},
			request:   analysis.Request{ResumeText: "resume"},
			check: func(t *testing.T, err error) {
				if !errors.Is(err, upstream) {
					t.Fatalf("expected upstream error, got %v", err)
				}
			},
			wantCalls: 1,
		},
		{
			name:      "unparseable response",
			generator: &stubGenerator{response: "Sorry, I can't help with that."},
			request:   analysis.Request{ResumeText: "resume"},
			check: func(t *testing.T, err error) {
				var pf *decode.ParseFailure
				if !errors.As(err, &pf) {
					t.Fatalf("expected ParseFailure, got %v", err)
				}
			},
			wantCalls: 1,
		},
		{
			name:      "invalid shape",
			generator: &stubGenerator{response: `{"score": 90}`},
			request:   analysis.Request{ResumeText: "resume"},
			check: func(t *testing.T, err error) {
				var vf *decode.ValidationFailure
				if !errors.As(err, &vf) {
					t.Fatalf("expected ValidationFailure, got %v", err)
				}
			},
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analyzer := NewAnalyzer(tt.generator, "gemini", 0, 0, zap.NewNop())
			_, err := analyzer.Analyze(context.Background(), tt.request)
			tt.check(t, err)

			if stub, ok := tt.generator.(*stubGenerator); ok && stub.calls != tt.wantCalls {
				t.Fatalf("expected %d generator calls, got %d", tt.wantCalls, stub.calls)
			}
		})
	}
}

func TestAnalyzerLogsPreviews(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)
	stub := &stubGenerator{response: validResponse}
	analyzer := NewAnalyzer(stub, "gemini", 0, 10, zap.New(core))

	if _, err := analyzer.Analyze(context.Background(), analysis.Request{ResumeText: "resume text"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	entries := observed.FilterMessage("generate content request").All()
	if len(entries) != 1 {
		t.Fatalf("expected request log entry, got %d", len(entries))
	}

	ctx := entries[0].ContextMap()
	preview, _ := ctx["prompt_preview"].(string)
	if len([]rune(preview)) > 13 {
		t.Fatalf("expected truncated preview, got %q", preview)
	}
	if ctx["ai_model"] != "stub-model" || ctx["ai_provider"] != "gemini" {
		t.Fatalf("expected common ai fields, got %v", ctx)
	}
}

func TestTruncateTokens(t *testing.T) {
	text := strings.Repeat("experienced engineer ", 500)

	if got, cut := truncateTokens(text, 0); cut || got != text {
		t.Fatalf("expected no truncation when limit disabled")
	}

	got, cut := truncateTokens(text, 50)
	if !cut {
		t.Fatalf("expected text to be truncated")
	}
	if len(got) >= len(text) || !strings.HasPrefix(text, got) {
		t.Fatalf("expected a prefix of the original text, got %d bytes", len(got))
	}
}
