package services

import (
	"errors"
	"fmt"
	"strings"

	"resume-screener/internal/models"
)

// Prompt-input validation failures. A prompt must never be rendered with
// missing context.
var (
	ErrEmptyJobDescription = errors.New("job description text is empty")
	ErrEmptyResume         = errors.New("resume text is empty")
)

// toneInstructions maps the remark-tone selector to the phrasing
// instruction embedded in the prompt. Unknown labels fall back to the
// professional instruction.
var toneInstructions = map[string]string{
	"Professional": "Use a neutral and formal tone.",
	"Critical":     "Be sharply evaluative, pointing out weaknesses clearly.",
	"Blunt":        "Give a direct, no-nonsense assessment without sugarcoating.",
}

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildScreeningPrompt renders the deterministic evaluation instruction for
// one resume. The template fixes the output contract and the business rules
// the model must follow regardless of the supplied weights.
func (pb *PromptBuilder) BuildScreeningPrompt(jdText, resumeText string, weights models.ScoringWeights, tone string) (string, error) {
	if strings.TrimSpace(jdText) == "" {
		return "", ErrEmptyJobDescription
	}
	if strings.TrimSpace(resumeText) == "" {
		return "", ErrEmptyResume
	}

	toneInstruction, ok := toneInstructions[tone]
	if !ok {
		toneInstruction = "Use a professional tone."
	}

	var scoringLines strings.Builder
	fmt.Fprintf(&scoringLines, "1. Experience Match - %g%%\n", weights.Experience)
	fmt.Fprintf(&scoringLines, "2. Skill Match - %g%%\n", weights.Skills)
	fmt.Fprintf(&scoringLines, "3. Education Quality - %g%%\n", weights.Education)
	fmt.Fprintf(&scoringLines, "4. Industry relevance - %g%%", weights.Industry)
	if weights.Policy != nil {
		fmt.Fprintf(&scoringLines, "\n5. Policy Compliance - %g%%", *weights.Policy)
	}

	prompt := fmt.Sprintf(`You are acting as a professional HR Manager at JSW Paints.
Evaluate the following resume against the job description.

Scoring Logic:
%s

Other Rules:
- Deduct 10%% if experience < 2 years.
- Direct REJECTION if job-hopping <2 years occurred more than twice.
- Score 0 and mark as Rejected ONLY if the candidate's work history (company names in experience or education) directly and unambiguously mentions: JSW, Dulux, Akzo Nobel, or Birla Opus. Do NOT reject based on guesses, abbreviations, partial matches, or vague context.
- For evaluating colleges/universities use NIRF ranking.
- DO NOT reject candidates for working in Asian Paints.
- %s

IMPORTANT: When you reject, always quote the exact line/company/experience that triggers the rejection in your remark.
If you find NO such company in experience or education, do NOT reject for this rule.

Return ONLY JSON in this format:
{
  "name": "Candidates name from resume/cv",
  "score": Final score out of 100,
  "score_breakdown": {
      "experience": score_from_experience,
      "skills": score_from_skills,
      "education": score_from_education,
      "industry": score_from_industry
  },
  "experience": "Total Experience and Relevant years and role/company breakdown",
  "education": "Highest education achieved or degree",
  "skills_matched": ["skills1", "skills2"],
  "remark": "30-word summary with Accept/Reject verdict, and cite which experience/company caused rejection if rejected"
}

If any of these fields are missing, return "N/A", 0, or [] as appropriate.

Job Description:
"""
%s
"""

Candidate Resume:
"""
%s
"""
`, scoringLines.String(), toneInstruction, jdText, resumeText)

	return prompt, nil
}
