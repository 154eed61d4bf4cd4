package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"resume-screener/internal/models"
)

const evaluationTemperature float32 = 0.3

// ErrNoResumes is returned when a batch carries no resume files at all.
var ErrNoResumes = errors.New("no resumes uploaded")

type ScreenerService interface {
	ScreenBatch(ctx context.Context, jdText string, resumes []models.ResumeFile, weights models.ScoringWeights, tone string) (*models.BatchResult, error)
}

type screenerService struct {
	extractor     ExtractorService
	promptBuilder *PromptBuilder
	geminiService GeminiService
	verifier      *PolicyVerifier
	threshold     float64
	logger        *zap.Logger
}

func NewScreenerService(
	extractor ExtractorService,
	geminiService GeminiService,
	verifier *PolicyVerifier,
	threshold float64,
	logger *zap.Logger,
) ScreenerService {
	return &screenerService{
		extractor:     extractor,
		promptBuilder: NewPromptBuilder(),
		geminiService: geminiService,
		verifier:      verifier,
		threshold:     threshold,
		logger:        logger,
	}
}

// ScreenBatch runs the evaluation pipeline once per resume, in upload
// order, and partitions the results by score threshold. Every input resume
// produces exactly one result; one resume's failure never aborts the batch.
func (s *screenerService) ScreenBatch(ctx context.Context, jdText string, resumes []models.ResumeFile, weights models.ScoringWeights, tone string) (*models.BatchResult, error) {
	if strings.TrimSpace(jdText) == "" {
		return nil, ErrEmptyJobDescription
	}
	if len(resumes) == 0 {
		return nil, ErrNoResumes
	}
	if err := weights.Validate(); err != nil {
		return nil, err
	}

	batch := &models.BatchResult{
		Accepted:  []models.EvaluationResult{},
		Rejected:  []models.EvaluationResult{},
		JDSummary: SummarizeJobDescription(jdText),
	}

	for _, file := range resumes {
		result := s.evaluateResume(ctx, jdText, file, weights, tone)

		if result.Score >= s.threshold {
			batch.Accepted = append(batch.Accepted, result)
		} else {
			batch.Rejected = append(batch.Rejected, result)
		}

		s.logger.Info("resume evaluated",
			zap.String("filename", result.Filename),
			zap.Float64("score", result.Score),
			zap.Bool("accepted", result.Score >= s.threshold),
		)
	}

	return batch, nil
}

// evaluateResume runs extract, prompt, model call, normalize and verify for
// one resume. Any stage failure, including a recovered panic, degrades to a
// score-0 record attributed to the filename.
func (s *screenerService) evaluateResume(ctx context.Context, jdText string, file models.ResumeFile, weights models.ScoringWeights, tone string) (result models.EvaluationResult) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("resume evaluation panicked",
				zap.String("filename", file.Filename),
				zap.Any("panic", r),
			)
			result = failureResult(file.Filename, fmt.Sprintf("Error evaluating resume: %v", r))
		}
	}()

	resumeText, err := s.extractor.ExtractText(file.Content, file.Filename)
	if err != nil {
		return failureResult(file.Filename, fmt.Sprintf("Error reading resume: %v", err))
	}
	resumeText = CleanText(resumeText)

	prompt, err := s.promptBuilder.BuildScreeningPrompt(jdText, resumeText, weights, tone)
	if err != nil {
		return failureResult(file.Filename, fmt.Sprintf("Error building prompt: %v", err))
	}

	reply, err := s.geminiService.GenerateText(ctx, prompt, evaluationTemperature)
	if err != nil {
		return failureResult(file.Filename, fmt.Sprintf("Error calling model: %v", err))
	}

	result = NormalizeEvaluation(reply, file.Filename)
	s.verifier.Verify(resumeText, &result)

	return result
}

func failureResult(filename, remark string) models.EvaluationResult {
	return models.EvaluationResult{
		Filename:          filename,
		Name:              "N/A",
		Score:             0,
		ExperienceSummary: "N/A",
		Education:         "N/A",
		SkillsMatched:     []string{},
		Remark:            remark,
	}
}
