package depth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spigell/resume-scorer/internal/analysis"
	"github.com/spigell/resume-scorer/internal/utils"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const (
	// DefaultBaseURL is used when no base URL is configured.
	DefaultBaseURL = "http://localhost:8001"

	defaultTimeout = 30 * time.Second
	analyzePath    = "/analyze"
	contentType    = "application/json"
	maxBodySnippet = 512
)

type analyzeRequest struct {
	ResumeText string   `json:"resume_text"`
	SkillsList []string `json:"skills_list"`
}

type analyzeResponse struct {
	Success            bool                                  `json:"success"`
	SkillProficiency   map[string]analysis.SkillLevel        `json:"skill_proficiency"`
	InferredSoftSkills map[string]analysis.SoftSkillEvidence `json:"inferred_soft_skills"`
	Error              string                                `json:"error"`
}

// Client calls the depth analysis service.
type Client struct {
	endpoint string
	http     *http.Client
	logger   *zap.Logger
}

// NewClient creates a client for the service at baseURL. Each call is bounded
// by timeout.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	baseURL = strings.TrimRight(utils.FirstNonEmpty(baseURL, DefaultBaseURL), "/")
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	transport := otelhttp.NewTransport(http.DefaultTransport,
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return "depth " + r.Method + " " + r.URL.Path
		}),
	)

	return &Client{
		endpoint: baseURL + analyzePath,
		http:     &http.Client{Timeout: timeout, Transport: transport},
		logger:   logger.With(zap.String("endpoint", baseURL+analyzePath)),
	}
}

func (c *Client) Enabled() bool { return true }

// Enrich posts the resume text and skill list to the service. Insufficient
// input yields the skip marker; every failure yields the error marker.
func (c *Client) Enrich(ctx context.Context, resumeText string, skills []string) *analysis.Depth {
	resumeText = strings.TrimSpace(resumeText)
	if resumeText == "" || len(skills) == 0 {
		return analysis.DepthSkipped(analysis.DepthInsufficientWarning)
	}

	result, err := c.analyze(ctx, resumeText, skills)
	if err != nil {
		c.logger.Warn("depth analysis failed", zap.Error(err))
		return analysis.DepthFailed(err.Error())
	}

	c.logger.Debug("depth analysis completed",
		zap.Int("skills", len(result.SkillProficiency)),
		zap.Int("soft_skills", len(result.InferredSoftSkills)),
	)
	return result
}

func (c *Client) analyze(ctx context.Context, resumeText string, skills []string) (*analysis.Depth, error) {
	payload, err := json.Marshal(analyzeRequest{ResumeText: resumeText, SkillsList: skills})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", contentType)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("depth analysis request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading depth analysis response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("depth analysis service returned %s: %s", resp.Status, utils.TruncateForLog(string(body), maxBodySnippet))
	}

	var decoded analyzeResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("decoding depth analysis response: %w", err)
	}

	if !decoded.Success {
		msg := utils.FirstNonEmpty(decoded.Error, "depth analysis service reported failure")
		return nil, errors.New(msg)
	}

	result := &analysis.Depth{
		SkillProficiency:   decoded.SkillProficiency,
		InferredSoftSkills: decoded.InferredSoftSkills,
	}
	if result.SkillProficiency == nil {
		result.SkillProficiency = map[string]analysis.SkillLevel{}
	}
	if result.InferredSoftSkills == nil {
		result.InferredSoftSkills = map[string]analysis.SoftSkillEvidence{}
	}
	for skill, level := range result.SkillProficiency {
		if level.Evidence == nil {
			level.Evidence = []string{}
			result.SkillProficiency[skill] = level
		}
	}
	for skill, soft := range result.InferredSoftSkills {
		if soft.Evidence == nil {
			soft.Evidence = []string{}
			result.InferredSoftSkills[skill] = soft
		}
	}

	return result, nil
}
