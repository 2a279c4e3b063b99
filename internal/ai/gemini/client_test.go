package gemini

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

type fakeAPI struct {
	mu     sync.Mutex
	paths  []string
	bodies []string
	status int
	reply  string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.paths = append(f.paths, r.URL.Path)
	f.bodies = append(f.bodies, string(body))
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if f.status != 0 {
		w.WriteHeader(f.status)
	}
	_, _ = io.WriteString(w, f.reply)
}

func newTestGenerator(t *testing.T, api *fakeAPI) *Generator {
	t.Helper()
	server := httptest.NewServer(api)
	t.Cleanup(server.Close)

	g, err := NewGenerator(context.Background(), "test-key", "gemini-test", Options{BaseURL: server.URL + "/"})
	if err != nil {
		t.Fatalf("creating generator: %v", err)
	}
	return g
}

func TestGeneratorJoinsCandidateParts(t *testing.T) {
	api := &fakeAPI{reply: `{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"score\": 80,"},{"text":" \"keywordAnalysis\": {}}"}]}}]}`}
	g := newTestGenerator(t, api)

	output, err := g.GenerateContent(context.Background(), "analyze this")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if output != "{\"score\": 80,\n\"keywordAnalysis\": {}}" {
		t.Fatalf("unexpected output: %q", output)
	}

	if len(api.paths) != 1 || !strings.Contains(api.paths[0], "gemini-test:generateContent") {
		t.Fatalf("unexpected request paths: %v", api.paths)
	}
	if !strings.Contains(api.bodies[0], "analyze this") {
		t.Fatalf("expected prompt in request body, got %s", api.bodies[0])
	}
}

func TestGeneratorEmptyResponse(t *testing.T) {
	api := &fakeAPI{reply: `{"candidates":[{"content":{"role":"model","parts":[{"text":"   "}]}}]}`}
	g := newTestGenerator(t, api)

	if _, err := g.GenerateContent(context.Background(), "prompt"); err == nil {
		t.Fatal("expected error for empty response")
	}
}

func TestGeneratorAPIError(t *testing.T) {
	api := &fakeAPI{
		status: http.StatusInternalServerError,
		reply:  `{"error":{"code":500,"message":"internal","status":"INTERNAL"}}`,
	}
	g := newTestGenerator(t, api)

	if _, err := g.GenerateContent(context.Background(), "prompt"); err == nil {
		t.Fatal("expected error for failed request")
	}
}

func TestGeneratorValidation(t *testing.T) {
	if _, err := NewGenerator(context.Background(), "  ", "", Options{}); err == nil {
		t.Fatal("expected error for missing api key")
	}

	var nilGenerator *Generator
	if _, err := nilGenerator.GenerateContent(context.Background(), "prompt"); err == nil {
		t.Fatal("expected error for nil generator")
	}
	if nilGenerator.Model() != "" {
		t.Fatal("expected empty model for nil generator")
	}

	api := &fakeAPI{reply: `{}`}
	g := newTestGenerator(t, api)
	if _, err := g.GenerateContent(context.Background(), "   "); err == nil {
		t.Fatal("expected error for blank prompt")
	}
	if len(api.paths) != 0 {
		t.Fatalf("expected no request for blank prompt, got %d", len(api.paths))
	}
}

func TestGeneratorDefaultModel(t *testing.T) {
	g, err := NewGenerator(context.Background(), "key", " ", Options{BaseURL: "http://127.0.0.1:1/"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if g.Model() != defaultModel {
		t.Fatalf("expected default model %q, got %q", defaultModel, g.Model())
	}
}
