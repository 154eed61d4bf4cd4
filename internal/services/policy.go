package services

import (
	"fmt"
	"regexp"
	"strings"

	"resume-screener/internal/models"
)

// OverrideAnnotation is appended to a remark when the model claims a
// disqualifying employer the resume text does not actually contain.
const OverrideAnnotation = " [Override: model claimed a disqualifying employer but resume parsing found NO such company. Please review.]"

// PolicyVerifier cross-checks rejection claims against the configured
// deny list of disqualifying-employer patterns.
type PolicyVerifier struct {
	deny *regexp.Regexp
}

// NewPolicyVerifier compiles the deny-list patterns into a single
// case-insensitive matcher.
func NewPolicyVerifier(patterns []string) (*PolicyVerifier, error) {
	if len(patterns) == 0 {
		return nil, fmt.Errorf("at least one disqualifying-employer pattern is required")
	}

	deny, err := regexp.Compile("(?i)" + strings.Join(patterns, "|"))
	if err != nil {
		return nil, fmt.Errorf("invalid disqualifying-employer pattern: %w", err)
	}

	return &PolicyVerifier{deny: deny}, nil
}

// ContainsForbiddenCompany returns the first deny-list match in text, or ""
// when there is none.
func (p *PolicyVerifier) ContainsForbiddenCompany(text string) string {
	return p.deny.FindString(text)
}

// Verify checks whether a rejection claim in the result's remark is backed
// by the source material. When the remark rejects over a deny-listed
// employer that an independent search of the resume text plus the reported
// experience and education cannot find, the override annotation is appended
// to the remark. The numeric score is never changed.
func (p *PolicyVerifier) Verify(resumeText string, result *models.EvaluationResult) {
	lowerRemark := strings.ToLower(result.Remark)
	if !strings.Contains(lowerRemark, "reject") {
		return
	}
	if p.deny.FindString(result.Remark) == "" {
		return
	}

	source := resumeText + " " + result.ExperienceSummary + " " + result.Education
	if p.deny.FindString(source) != "" {
		return
	}

	result.Remark += OverrideAnnotation
}
