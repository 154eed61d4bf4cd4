package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"resume-screener/internal/models"
	"resume-screener/internal/repositories"
	"resume-screener/internal/services"
)

// minJDBytes rejects trivially small job-description uploads before any
// extraction work happens.
const minJDBytes = 20

type EvaluateHandler struct {
	extractor   services.ExtractorService
	screener    services.ScreenerService
	auditRepo   repositories.AuditRepository
	validate    *validator.Validate
	maxFileSize int64
	minJDLength int
	logger      *zap.Logger
}

func NewEvaluateHandler(
	extractor services.ExtractorService,
	screener services.ScreenerService,
	auditRepo repositories.AuditRepository,
	maxFileSize int64,
	minJDLength int,
	logger *zap.Logger,
) *EvaluateHandler {
	return &EvaluateHandler{
		extractor:   extractor,
		screener:    screener,
		auditRepo:   auditRepo,
		validate:    validator.New(),
		maxFileSize: maxFileSize,
		minJDLength: minJDLength,
		logger:      logger,
	}
}

// HandleEvaluate handles POST /api/v1/evaluate. The request carries one job
// description file, one or more resume files, a weights JSON object and a
// remark-style selector. Malformed requests fail with a structured 400;
// model and document failures degrade per resume inside the batch.
func (h *EvaluateHandler) HandleEvaluate(c *fiber.Ctx) error {
	start := time.Now()
	ok := false

	form, err := c.MultipartForm()
	if err != nil {
		return requestError(c, "failed to parse multipart form")
	}

	jdFiles := form.File["jd"]
	resumeFiles := form.File["resumes"]
	remarkStyle := c.FormValue("remark_style", "Professional")
	weightsJSON := c.FormValue("weights")

	defer func() {
		h.logAudit(c, ok, start, jdFiles, resumeFiles, remarkStyle, weightsJSON)
	}()

	if len(jdFiles) == 0 {
		return requestError(c, "no job description uploaded")
	}
	if len(resumeFiles) == 0 {
		return requestError(c, "no resumes uploaded")
	}

	// JD file read and validation
	jdHeader := jdFiles[0]
	if jdHeader.Size > h.maxFileSize {
		return requestError(c, fmt.Sprintf("job description file too large, max size: %d bytes", h.maxFileSize))
	}

	jdBytes, err := readMultipartFile(jdHeader)
	if err != nil {
		return requestError(c, fmt.Sprintf("failed to read job description: %v", err))
	}
	if len(jdBytes) < minJDBytes {
		return requestError(c, "uploaded job description file is empty or too small")
	}

	jdText, err := h.extractor.ExtractText(jdBytes, jdHeader.Filename)
	if err != nil {
		return requestError(c, fmt.Sprintf("could not process job description file: %v", err))
	}
	if len(jdText) < h.minJDLength {
		return requestError(c, "job description text is too short")
	}

	weights, err := h.parseWeights(weightsJSON)
	if err != nil {
		return requestError(c, fmt.Sprintf("invalid weights data: %v", err))
	}

	resumes := make([]models.ResumeFile, 0, len(resumeFiles))
	for _, header := range resumeFiles {
		if header.Size > h.maxFileSize {
			return requestError(c, fmt.Sprintf("resume %q too large, max size: %d bytes", header.Filename, h.maxFileSize))
		}
		// A failed read still contributes a file; the pipeline degrades it
		// to a score-0 record instead of dropping the resume.
		content, err := readMultipartFile(header)
		if err != nil {
			h.logger.Warn("failed to read resume upload",
				zap.String("filename", header.Filename),
				zap.Error(err),
			)
		}
		resumes = append(resumes, models.ResumeFile{Filename: header.Filename, Content: content})
	}

	batch, err := h.screener.ScreenBatch(c.UserContext(), jdText, resumes, weights, remarkStyle)
	if err != nil {
		return requestError(c, err.Error())
	}

	ok = true
	return c.JSON(models.EvaluationResponse{Success: true, Data: batch})
}

// weightsPayload mirrors ScoringWeights with pointer fields so that a
// missing dimension and an explicit zero weight stay distinguishable.
type weightsPayload struct {
	Experience *float64 `json:"experience" validate:"required,gte=0"`
	Skills     *float64 `json:"skills" validate:"required,gte=0"`
	Education  *float64 `json:"education" validate:"required,gte=0"`
	Industry   *float64 `json:"industry" validate:"required,gte=0"`
	Policy     *float64 `json:"policy" validate:"omitempty,gte=0"`
}

func (h *EvaluateHandler) parseWeights(weightsJSON string) (models.ScoringWeights, error) {
	var weights models.ScoringWeights
	if weightsJSON == "" {
		return weights, fmt.Errorf("weights are required")
	}

	var payload weightsPayload
	if err := json.Unmarshal([]byte(weightsJSON), &payload); err != nil {
		return weights, err
	}
	if err := h.validate.Struct(payload); err != nil {
		return weights, err
	}

	weights = models.ScoringWeights{
		Experience: *payload.Experience,
		Skills:     *payload.Skills,
		Education:  *payload.Education,
		Industry:   *payload.Industry,
		Policy:     payload.Policy,
	}
	if err := weights.Validate(); err != nil {
		return weights, err
	}
	return weights, nil
}

// logAudit records the batch invocation best-effort; a failed write never
// affects the response.
func (h *EvaluateHandler) logAudit(c *fiber.Ctx, success bool, start time.Time, jdFiles, resumeFiles []*multipart.FileHeader, remarkStyle, weightsJSON string) {
	filenames := make([]string, 0, len(resumeFiles))
	for _, f := range resumeFiles {
		filenames = append(filenames, f.Filename)
	}

	jdFilename := ""
	if len(jdFiles) > 0 {
		jdFilename = jdFiles[0].Filename
	}

	var weightsSum *float64
	var weights models.ScoringWeights
	if json.Unmarshal([]byte(weightsJSON), &weights) == nil {
		sum := weights.Sum()
		weightsSum = &sum
	}

	meta, err := json.Marshal(fiber.Map{
		"client_ip":        c.IP(),
		"user_agent":       c.Get("User-Agent"),
		"jd_filename":      jdFilename,
		"resume_count":     len(resumeFiles),
		"resume_filenames": filenames,
		"remark_style":     remarkStyle,
		"weights_sum":      weightsSum,
	})
	if err != nil {
		h.logger.Warn("failed to marshal audit metadata", zap.Error(err))
		return
	}

	entry := &models.AuditLog{
		Username:   c.Get("X-Actor", "anonymous"),
		Role:       c.Get("X-Actor-Role"),
		Action:     "evaluate",
		Success:    success,
		DurationMS: time.Since(start).Milliseconds(),
		Meta:       datatypes.JSON(meta),
	}

	if err := h.auditRepo.Create(entry); err != nil {
		h.logger.Warn("failed to write audit log", zap.Error(err))
	}
}

func requestError(c *fiber.Ctx, reason string) error {
	return c.Status(fiber.StatusBadRequest).JSON(models.EvaluationResponse{
		Success: false,
		Error:   reason,
	})
}

func readMultipartFile(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
