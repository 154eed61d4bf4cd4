package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"resume-screener/internal/models"
	"resume-screener/internal/services"
)

type stubExtractor struct {
	text string
	err  error
}

func (s *stubExtractor) ExtractText(_ []byte, _ string) (string, error) {
	return s.text, s.err
}

type stubScreener struct {
	batch      *models.BatchResult
	err        error
	gotJD      string
	gotTone    string
	gotResumes []models.ResumeFile
}

func (s *stubScreener) ScreenBatch(_ context.Context, jdText string, resumes []models.ResumeFile, _ models.ScoringWeights, tone string) (*models.BatchResult, error) {
	s.gotJD = jdText
	s.gotTone = tone
	s.gotResumes = resumes
	return s.batch, s.err
}

type stubAuditRepo struct {
	entries []models.AuditLog
}

func (s *stubAuditRepo) Create(entry *models.AuditLog) error {
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *stubAuditRepo) FindRecent(_, _ int) ([]models.AuditLog, error) {
	return s.entries, nil
}

func emptyBatch() *models.BatchResult {
	return &models.BatchResult{
		Accepted: []models.EvaluationResult{},
		Rejected: []models.EvaluationResult{{Filename: "r1.pdf", Name: "N/A", Remark: "Reviewed"}},
	}
}

func newTestApp(extractor services.ExtractorService, screener services.ScreenerService, audit *stubAuditRepo) *fiber.App {
	h := NewEvaluateHandler(extractor, screener, audit, 1024*1024, 10, zap.NewNop())
	app := fiber.New()
	app.Post("/api/v1/evaluate", h.HandleEvaluate)
	return app
}

type multipartRequest struct {
	jd          string
	jdFilename  string
	resumes     map[string]string
	weights     string
	remarkStyle string
}

func buildRequest(t *testing.T, r multipartRequest) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	if r.jd != "" {
		fw, err := w.CreateFormFile("jd", r.jdFilename)
		require.NoError(t, err)
		_, err = fw.Write([]byte(r.jd))
		require.NoError(t, err)
	}
	for filename, content := range r.resumes {
		fw, err := w.CreateFormFile("resumes", filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	if r.weights != "" {
		require.NoError(t, w.WriteField("weights", r.weights))
	}
	if r.remarkStyle != "" {
		require.NoError(t, w.WriteField("remark_style", r.remarkStyle))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/evaluate", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func decodeEnvelope(t *testing.T, resp *http.Response) models.EvaluationResponse {
	t.Helper()
	var envelope models.EvaluationResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	return envelope
}

const validWeights = `{"experience":40,"skills":20,"education":10,"industry":20,"policy":10}`

func validRequest() multipartRequest {
	return multipartRequest{
		jd:          strings.Repeat("senior sales role description ", 3),
		jdFilename:  "jd.pdf",
		resumes:     map[string]string{"r1.pdf": "resume one bytes"},
		weights:     validWeights,
		remarkStyle: "Critical",
	}
}

func TestHandleEvaluateSuccess(t *testing.T) {
	screener := &stubScreener{batch: emptyBatch()}
	audit := &stubAuditRepo{}
	app := newTestApp(&stubExtractor{text: "extracted jd text"}, screener, audit)

	req := buildRequest(t, validRequest())
	req.Header.Set("X-Actor", "hr-admin")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	envelope := decodeEnvelope(t, resp)
	assert.True(t, envelope.Success)
	require.NotNil(t, envelope.Data)
	assert.Len(t, envelope.Data.Rejected, 1)

	assert.Equal(t, "extracted jd text", screener.gotJD)
	assert.Equal(t, "Critical", screener.gotTone)
	require.Len(t, screener.gotResumes, 1)
	assert.Equal(t, "r1.pdf", screener.gotResumes[0].Filename)
	assert.Equal(t, []byte("resume one bytes"), screener.gotResumes[0].Content)

	require.Len(t, audit.entries, 1)
	entry := audit.entries[0]
	assert.Equal(t, "evaluate", entry.Action)
	assert.Equal(t, "hr-admin", entry.Username)
	assert.True(t, entry.Success)

	var meta map[string]any
	require.NoError(t, json.Unmarshal(entry.Meta, &meta))
	assert.Equal(t, float64(1), meta["resume_count"])
	assert.Equal(t, "jd.pdf", meta["jd_filename"])
	assert.Equal(t, float64(100), meta["weights_sum"])
}

func TestHandleEvaluateWeightSumMismatch(t *testing.T) {
	audit := &stubAuditRepo{}
	app := newTestApp(&stubExtractor{text: "extracted jd text"}, &stubScreener{batch: emptyBatch()}, audit)

	r := validRequest()
	r.weights = `{"experience":40,"skills":20,"education":10,"industry":20}`

	resp, err := app.Test(buildRequest(t, r), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	envelope := decodeEnvelope(t, resp)
	assert.False(t, envelope.Success)
	assert.Contains(t, envelope.Error, "sum of weights")

	require.Len(t, audit.entries, 1)
	assert.False(t, audit.entries[0].Success)
}

func TestHandleEvaluateInvalidWeights(t *testing.T) {
	app := newTestApp(&stubExtractor{text: "extracted jd text"}, &stubScreener{batch: emptyBatch()}, &stubAuditRepo{})

	tests := []struct {
		name    string
		weights string
	}{
		{"malformed json", `{"experience":40,`},
		{"missing dimension", `{"experience":60,"skills":20,"education":20}`},
		{"negative weight", `{"experience":-40,"skills":90,"education":20,"industry":30}`},
		{"missing entirely", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRequest()
			r.weights = tt.weights

			resp, err := app.Test(buildRequest(t, r), -1)
			require.NoError(t, err)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			envelope := decodeEnvelope(t, resp)
			assert.False(t, envelope.Success)
			assert.NotEmpty(t, envelope.Error)
		})
	}
}

func TestHandleEvaluateMissingUploads(t *testing.T) {
	app := newTestApp(&stubExtractor{text: "extracted jd text"}, &stubScreener{batch: emptyBatch()}, &stubAuditRepo{})

	t.Run("no job description", func(t *testing.T) {
		r := validRequest()
		r.jd = ""

		resp, err := app.Test(buildRequest(t, r), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, decodeEnvelope(t, resp).Error, "no job description")
	})

	t.Run("no resumes", func(t *testing.T) {
		r := validRequest()
		r.resumes = nil

		resp, err := app.Test(buildRequest(t, r), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, decodeEnvelope(t, resp).Error, "no resumes")
	})

	t.Run("jd too small", func(t *testing.T) {
		r := validRequest()
		r.jd = "tiny"

		resp, err := app.Test(buildRequest(t, r), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, decodeEnvelope(t, resp).Error, "empty or too small")
	})
}

func TestHandleEvaluateUnprocessableJobDescription(t *testing.T) {
	app := newTestApp(&stubExtractor{err: services.ErrNoText}, &stubScreener{batch: emptyBatch()}, &stubAuditRepo{})

	resp, err := app.Test(buildRequest(t, validRequest()), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decodeEnvelope(t, resp).Error, "could not process job description")
}

func TestHandleEvaluateScreenerFailure(t *testing.T) {
	screener := &stubScreener{err: errors.New("no resumes uploaded")}
	audit := &stubAuditRepo{}
	app := newTestApp(&stubExtractor{text: "extracted jd text"}, screener, audit)

	resp, err := app.Test(buildRequest(t, validRequest()), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	envelope := decodeEnvelope(t, resp)
	assert.False(t, envelope.Success)
	assert.Equal(t, "no resumes uploaded", envelope.Error)
	require.Len(t, audit.entries, 1)
	assert.False(t, audit.entries[0].Success)
}

func TestHandleListLogs(t *testing.T) {
	audit := &stubAuditRepo{entries: []models.AuditLog{
		{Action: "evaluate", Success: true},
		{Action: "evaluate", Success: false},
	}}

	app := fiber.New()
	app.Get("/api/v1/logs", NewLogsHandler(audit).HandleListLogs)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/logs?limit=10", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		Items []models.AuditLog `json:"items"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Len(t, payload.Items, 2)
}
