package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/spigell/resume-scorer/internal/analysis"
	"github.com/spigell/resume-scorer/internal/extract"
	"github.com/spigell/resume-scorer/internal/logger"
	"go.uber.org/zap"
)

const (
	maxJSONBody   = 2 << 20
	uploadField   = "file"
	roleField     = "jobRole"
	descField     = "jobDescription"
	megabyteBytes = 1 << 20
)

var (
	vldOnce sync.Once
	vld     *validator.Validate
)

func getValidator() *validator.Validate {
	vldOnce.Do(func() { vld = validator.New(validator.WithRequiredStructEnabled()) })
	return vld
}

type analyzeRequest struct {
	ResumeText     string `json:"resumeText" validate:"required,max=200000"`
	JobRole        string `json:"jobRole" validate:"max=200"`
	JobDescription string `json:"jobDescription" validate:"max=20000"`
}

func (req analyzeRequest) toAnalysis() analysis.Request {
	return analysis.Request{
		ResumeText:     req.ResumeText,
		JobRole:        strings.TrimSpace(req.JobRole),
		JobDescription: strings.TrimSpace(req.JobDescription),
	}
}

func (s *Server) analyzeHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, fmt.Errorf("%w: request body exceeds %d bytes", errPayloadTooLarge, tooLarge.Limit), nil)
			return
		}
		writeError(w, fmt.Errorf("%w: invalid json", errInvalidArgument), nil)
		return
	}

	if details, err := validate(req); err != nil {
		writeError(w, err, details)
		return
	}

	s.analyze(w, r, req.toAnalysis())
}

func (s *Server) uploadHandler(w http.ResponseWriter, r *http.Request) {
	maxBytes := s.cfg.MaxUploadMB * megabyteBytes
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			writeError(w, fmt.Errorf("%w: upload exceeds %d MB", errPayloadTooLarge, s.cfg.MaxUploadMB), map[string]int64{"max_mb": s.cfg.MaxUploadMB})
			return
		}
		writeError(w, fmt.Errorf("%w: %v", errInvalidArgument, err), nil)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		writeError(w, fmt.Errorf("%w: missing %q file", errInvalidArgument, uploadField), nil)
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, fmt.Errorf("%w: reading upload: %v", errInvalidArgument, err), nil)
		return
	}

	text, err := extract.Text(data, header.Filename)
	if err != nil {
		if !errors.Is(err, extract.ErrUnsupportedType) {
			err = fmt.Errorf("%w: %v", errInvalidArgument, err)
		}
		writeError(w, err, map[string]string{"filename": header.Filename})
		return
	}

	req := analyzeRequest{
		ResumeText:     text,
		JobRole:        r.FormValue(roleField),
		JobDescription: r.FormValue(descField),
	}
	if details, err := validate(req); err != nil {
		writeError(w, err, details)
		return
	}

	logger.FromContext(r.Context(), s.logger).Debug("extracted resume text",
		zap.String("filename", header.Filename),
		zap.Int("length", len(text)),
	)

	s.analyze(w, r, req.toAnalysis())
}

func (s *Server) analyze(w http.ResponseWriter, r *http.Request, req analysis.Request) {
	report, err := s.analyzer.Run(r.Context(), req)
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) rolesHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{
		"roles":      s.catalog.Roles(),
		"industries": s.catalog.Industries(),
	})
}

// validate returns the failing field tags keyed by json field name.
func validate(req analyzeRequest) (map[string]string, error) {
	err := getValidator().Struct(req)
	if err == nil {
		return nil, nil
	}

	details := map[string]string{}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			details[jsonName(fe.Field())] = fe.Tag()
		}
	}
	return details, fmt.Errorf("%w: validation failed", errInvalidArgument)
}

func jsonName(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}
