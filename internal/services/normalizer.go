package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"resume-screener/internal/models"
)

// fencedBlock matches a ``` code fence with an optional language tag.
var fencedBlock = regexp.MustCompile("(?s)```[a-zA-Z]*\\s*(.*?)```")

// ExtractJSONObject locates a JSON object inside free-form model output.
// A fenced code block is preferred when present; otherwise the substring
// from the first '{' to the last '}' is taken.
func ExtractJSONObject(text string) (string, error) {
	candidate := text
	if m := fencedBlock.FindStringSubmatch(text); m != nil {
		candidate = m[1]
	}

	start := strings.Index(candidate, "{")
	end := strings.LastIndex(candidate, "}")
	if start == -1 || end == -1 || end < start {
		return "", errors.New("no JSON object found in model response")
	}

	return candidate[start : end+1], nil
}

// NormalizeEvaluation turns the gateway's raw reply into the canonical
// per-candidate record. It is pure and total: malformed output yields an
// all-default parse-error record, never an error.
func NormalizeEvaluation(raw, filename string) models.EvaluationResult {
	jsonStr, err := ExtractJSONObject(raw)
	if err != nil {
		return parseErrorResult(filename, err)
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(jsonStr), &payload); err != nil {
		return parseErrorResult(filename, err)
	}

	breakdown := normalizeBreakdown(resolveField(payload, "score_breakdown", "scorebreakdown"))

	return models.EvaluationResult{
		Filename:          filename,
		Name:              stringField(payload, "name"),
		Score:             clampScore(coerceFloat(resolveField(payload, "score"))),
		ExperienceScore:   breakdown.Experience,
		SkillScore:        breakdown.Skills,
		EducationScore:    breakdown.Education,
		IndustryScore:     breakdown.Industry,
		ExperienceSummary: stringField(payload, "experience"),
		Education:         stringField(payload, "education"),
		SkillsMatched:     normalizeSkills(resolveField(payload, "skills_matched", "skills")),
		Remark:            stringField(payload, "remark"),
		ScoreBreakdown:    breakdown,
	}
}

func parseErrorResult(filename string, reason error) models.EvaluationResult {
	return models.EvaluationResult{
		Filename:          filename,
		Name:              "N/A",
		Score:             0,
		ExperienceSummary: "N/A",
		Education:         "N/A",
		SkillsMatched:     []string{},
		Remark:            fmt.Sprintf("Error parsing model output: %v", reason),
	}
}

// resolveField is the single deserialization adapter for the model's loose
// field naming: keys are matched case-insensitively against a fixed alias
// list, and null, empty string, empty collection and the literal "N/A" all
// count as absent.
func resolveField(payload map[string]any, aliases ...string) any {
	for _, alias := range aliases {
		for key, value := range payload {
			if strings.EqualFold(key, alias) && !isAbsent(value) {
				return value
			}
		}
	}
	return nil
}

func isAbsent(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == "" || strings.EqualFold(t, "N/A")
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	}
	return false
}

func stringField(payload map[string]any, aliases ...string) string {
	v := resolveField(payload, aliases...)
	if v == nil {
		return "N/A"
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// coerceFloat converts a loosely typed score value to float64. Anything
// non-numeric silently becomes 0.
func coerceFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0
		}
		return f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func normalizeBreakdown(v any) models.ScoreBreakdown {
	m, ok := v.(map[string]any)
	if !ok {
		return models.ScoreBreakdown{}
	}
	return models.ScoreBreakdown{
		Experience: coerceFloat(resolveField(m, "experience")),
		Skills:     coerceFloat(resolveField(m, "skills")),
		Education:  coerceFloat(resolveField(m, "education")),
		Industry:   coerceFloat(resolveField(m, "industry")),
	}
}

// normalizeSkills accepts either a list or a comma-separated string and
// returns an ordered list of trimmed, non-empty skills.
func normalizeSkills(v any) []string {
	skills := []string{}

	switch t := v.(type) {
	case []any:
		for _, item := range t {
			if s := strings.TrimSpace(fmt.Sprintf("%v", item)); s != "" {
				skills = append(skills, s)
			}
		}
	case string:
		for _, part := range strings.Split(t, ",") {
			if s := strings.TrimSpace(part); s != "" {
				skills = append(skills, s)
			}
		}
	}

	return skills
}
