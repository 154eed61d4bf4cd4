package services

import (
	"regexp"
	"strings"

	"resume-screener/internal/models"
)

var (
	jdExperienceRe = regexp.MustCompile(`(?:[Ee]xpected\s+[Ee]xperience|[Ee]xperience\s+[Rr]equired)[:\-]?\s*([^\n\r.;]*)`)
	jdEducationRe  = regexp.MustCompile(`(?:[Rr]equired\s+[Ee]ducation|[Ee]ducation)[:\-]?\s*([^\n\r.;]*)`)
	jdSkillsRe     = regexp.MustCompile(`(?:[Kk]ey\s+[Ss]kills|[Ss]kills\s+[Rr]equired)[:\-]?\s*([^\n\r.]+)`)
	jdSkillSplit   = regexp.MustCompile(`,|•|·|-`)
)

// SummarizeJobDescription derives the batch-level summary from the raw job
// description: the expected-experience phrase, required-education phrase
// and the ordered key-skill list. Derived once per batch.
func SummarizeJobDescription(jdText string) models.JDSummary {
	summary := models.JDSummary{KeySkills: []string{}}

	if m := jdExperienceRe.FindStringSubmatch(jdText); m != nil {
		summary.ExpectedExperience = strings.TrimSpace(m[1])
	}
	if m := jdEducationRe.FindStringSubmatch(jdText); m != nil {
		summary.RequiredEducation = strings.TrimSpace(m[1])
	}
	if m := jdSkillsRe.FindStringSubmatch(jdText); m != nil {
		for _, skill := range jdSkillSplit.Split(m[1], -1) {
			if skill = strings.TrimSpace(skill); skill != "" {
				summary.KeySkills = append(summary.KeySkills, skill)
			}
		}
	}

	return summary
}
