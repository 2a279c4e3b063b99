package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spigell/resume-scorer/internal/analysis"
	"github.com/spigell/resume-scorer/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAnalyzer struct {
	last  analysis.Request
	calls int
	err   error
	panic bool
}

func (f *fakeAnalyzer) Run(_ context.Context, req analysis.Request) (*analysis.Report, error) {
	f.calls++
	f.last = req
	if f.panic {
		panic("boom")
	}
	if f.err != nil {
		return nil, f.err
	}
	return &analysis.Report{Score: 77, AnalysisMethod: analysis.MethodRuleBased}, nil
}

type fakeCatalog struct{}

func (fakeCatalog) Roles() []string      { return []string{"data analyst", "software engineer"} }
func (fakeCatalog) Industries() []string { return []string{"finance"} }

func newTestServer(t *testing.T, cfg Config, analyzer Analyzer) http.Handler {
	t.Helper()
	reg := prometheus.NewRegistry()
	s, err := New(cfg, Deps{
		Analyzer:       analyzer,
		Catalog:        fakeCatalog{},
		Metrics:        metrics.New(reg),
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})
	require.NoError(t, err)
	return s.Router()
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) apiError {
	t.Helper()
	var env errorEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return env.Error
}

func TestNewRequiresDeps(t *testing.T) {
	_, err := New(Config{}, Deps{Catalog: fakeCatalog{}})
	require.Error(t, err)

	_, err = New(Config{}, Deps{Analyzer: &fakeAnalyzer{}})
	require.Error(t, err)
}

func TestAnalyzeSuccess(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	h := newTestServer(t, Config{}, analyzer)

	body := `{"resumeText":"Experience\n- Built things","jobRole":"  software engineer ","jobDescription":"fintech"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/analyze", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
	assert.Equal(t, "software engineer", analyzer.last.JobRole)
	assert.Equal(t, "fintech", analyzer.last.JobDescription)

	var report map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&report))
	assert.EqualValues(t, 77, report["score"])
	assert.Equal(t, "rule-based", report["analysisMethod"])
}

func TestAnalyzeKeepsRequestID(t *testing.T) {
	h := newTestServer(t, Config{}, &fakeAnalyzer{})

	req := httptest.NewRequest(http.MethodPost, "/v1/analyze", strings.NewReader(`{"resumeText":"text"}`))
	req.Header.Set(requestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get(requestIDHeader))
}

func TestAnalyzeValidation(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	h := newTestServer(t, Config{}, analyzer)

	tests := []struct {
		name    string
		body    string
		details bool
	}{
		{name: "invalid json", body: `{"resumeText":`},
		{name: "missing resume", body: `{"jobRole":"nurse"}`, details: true},
		{name: "role too long", body: fmt.Sprintf(`{"resumeText":"x","jobRole":%q}`, strings.Repeat("a", 201)), details: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/analyze", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			apiErr := decodeError(t, rec)
			assert.Equal(t, codeInvalidArgument, apiErr.Code)
			if tt.details {
				assert.NotNil(t, apiErr.Details)
			}
		})
	}

	assert.Zero(t, analyzer.calls)
}

func TestAnalyzeValidationDetails(t *testing.T) {
	h := newTestServer(t, Config{}, &fakeAnalyzer{})

	req := httptest.NewRequest(http.MethodPost, "/v1/analyze", strings.NewReader(`{"jobRole":"nurse"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	details, ok := decodeError(t, rec).Details.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "required", details["resumeText"])
}

func TestAnalyzeTerminalError(t *testing.T) {
	analyzer := &fakeAnalyzer{err: fmt.Errorf("%w: %w", analysis.ErrAllMethodsFailed, analysis.ErrEmptyResume)}
	h := newTestServer(t, Config{}, analyzer)

	req := httptest.NewRequest(http.MethodPost, "/v1/analyze", strings.NewReader(`{"resumeText":"   "}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	apiErr := decodeError(t, rec)
	assert.Equal(t, codeAnalysisFailed, apiErr.Code)
	assert.Contains(t, apiErr.Message, "all analysis methods failed")
}

func TestAnalyzePanicRecovered(t *testing.T) {
	h := newTestServer(t, Config{}, &fakeAnalyzer{panic: true})

	req := httptest.NewRequest(http.MethodPost, "/v1/analyze", strings.NewReader(`{"resumeText":"text"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, codeInternal, decodeError(t, rec).Code)
}

func multipartBody(t *testing.T, filename string, content []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if filename != "" {
		part, err := mw.CreateFormFile(uploadField, filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUploadPlainText(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	h := newTestServer(t, Config{}, analyzer)

	body, contentType := multipartBody(t, "resume.txt", []byte("Jane Doe\nSkills\nPython"), map[string]string{roleField: "data analyst"})
	req := httptest.NewRequest(http.MethodPost, "/v1/analyze/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Jane Doe\nSkills\nPython", analyzer.last.ResumeText)
	assert.Equal(t, "data analyst", analyzer.last.JobRole)
}

func TestUploadErrors(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

	tests := []struct {
		name     string
		filename string
		content  []byte
		status   int
		code     string
	}{
		{name: "missing file", status: http.StatusBadRequest, code: codeInvalidArgument},
		{name: "unsupported type", filename: "photo.png", content: png, status: http.StatusUnsupportedMediaType, code: codeUnsupportedMedia},
		{name: "empty text", filename: "resume.txt", content: []byte("   "), status: http.StatusBadRequest, code: codeInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analyzer := &fakeAnalyzer{}
			h := newTestServer(t, Config{}, analyzer)

			body, contentType := multipartBody(t, tt.filename, tt.content, nil)
			req := httptest.NewRequest(http.MethodPost, "/v1/analyze/upload", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			require.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, decodeError(t, rec).Code)
			assert.Zero(t, analyzer.calls)
		})
	}
}

func TestRateLimit(t *testing.T) {
	h := newTestServer(t, Config{RateLimitPerMin: 1}, &fakeAnalyzer{})

	statuses := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/v1/analyze", strings.NewReader(`{"resumeText":"text"}`))
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		statuses = append(statuses, rec.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, statuses)
}

func TestRolesHealthAndMetrics(t *testing.T) {
	h := newTestServer(t, Config{}, &fakeAnalyzer{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/roles", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var roles map[string][]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&roles))
	assert.Equal(t, []string{"data analyst", "software engineer"}, roles["roles"])
	assert.Equal(t, []string{"finance"}, roles["industries"])

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestCORSPreflight(t *testing.T) {
	h := newTestServer(t, Config{CORSOrigins: []string{"https://app.example.com"}}, &fakeAnalyzer{})

	req := httptest.NewRequest(http.MethodOptions, "/v1/analyze", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestParseOrigins(t *testing.T) {
	assert.Equal(t, []string{"*"}, parseOrigins(nil))
	assert.Equal(t, []string{"a.com", "b.com", "c.com"}, parseOrigins([]string{" a.com, b.com", "", "c.com "}))
}
