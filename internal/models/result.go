package models

import (
	"fmt"
	"math"
)

// WeightSumTolerance is the allowed deviation of the weight sum from 100.
const WeightSumTolerance = 1.0

// ResumeFile is one uploaded document: original filename plus raw bytes.
// The bytes are owned by the request and discarded after text extraction.
type ResumeFile struct {
	Filename string
	Content  []byte
}

// ScoringWeights holds the named percentage weights supplied with a batch.
// Policy is the optional fifth dimension used by the standalone-tool flow.
type ScoringWeights struct {
	Experience float64  `json:"experience"`
	Skills     float64  `json:"skills"`
	Education  float64  `json:"education"`
	Industry   float64  `json:"industry"`
	Policy     *float64 `json:"policy,omitempty"`
}

// Sum returns the total of all supplied weights, including the optional policy weight.
func (w ScoringWeights) Sum() float64 {
	sum := w.Experience + w.Skills + w.Education + w.Industry
	if w.Policy != nil {
		sum += *w.Policy
	}
	return sum
}

// Validate checks the weight-sum invariant: all weights together must equal
// 100 within WeightSumTolerance.
func (w ScoringWeights) Validate() error {
	sum := w.Sum()
	if math.Abs(sum-100) > WeightSumTolerance {
		return fmt.Errorf("sum of weights must be 100, got %g", sum)
	}
	return nil
}

// ScoreBreakdown carries the per-dimension sub-scores reported by the model.
type ScoreBreakdown struct {
	Experience float64 `json:"experience"`
	Skills     float64 `json:"skills"`
	Education  float64 `json:"education"`
	Industry   float64 `json:"industry"`
}

// EvaluationResult is the canonical per-candidate record produced by the
// pipeline. It is created fresh per resume and never mutated afterwards,
// except for the one-time override annotation appended to Remark during
// policy verification.
type EvaluationResult struct {
	Filename          string         `json:"filename"`
	Name              string         `json:"name"`
	Score             float64        `json:"score"`
	ExperienceScore   float64        `json:"experience_score"`
	SkillScore        float64        `json:"skill_score"`
	EducationScore    float64        `json:"education_score"`
	IndustryScore     float64        `json:"industry_score"`
	ExperienceSummary string         `json:"experience_summary"`
	Education         string         `json:"education"`
	SkillsMatched     []string       `json:"skills_matched"`
	Remark            string         `json:"remark"`
	ScoreBreakdown    ScoreBreakdown `json:"scorebreakdown"`
}

// JDSummary is the per-batch summary derived once from the job description.
type JDSummary struct {
	ExpectedExperience string   `json:"expected_experience"`
	RequiredEducation  string   `json:"required_education"`
	KeySkills          []string `json:"key_skills"`
}

// BatchResult partitions every evaluated resume into exactly one of the two
// lists, by score threshold.
type BatchResult struct {
	Accepted  []EvaluationResult `json:"accepted"`
	Rejected  []EvaluationResult `json:"rejected"`
	JDSummary JDSummary          `json:"jd_summary"`
}

// EvaluationResponse is the envelope returned by the evaluate endpoint: a
// structured success payload covering every resume, or a structured failure
// with a human-readable reason.
type EvaluationResponse struct {
	Success bool         `json:"success"`
	Data    *BatchResult `json:"data"`
	Error   string       `json:"error,omitempty"`
}
