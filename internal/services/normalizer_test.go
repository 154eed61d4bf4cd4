package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleReply = `{
	"name": "Priya Sharma",
	"score": 78,
	"score_breakdown": {"experience": 30, "skills": 18, "education": 12, "industry": 18},
	"experience": "6 years in decorative coatings",
	"education": "B.Tech Chemical Engineering",
	"skills_matched": ["sales", "channel management"],
	"remark": "Accept. Strong coatings background."
}`

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "bare object",
			input: `{"score": 10}`,
			want:  `{"score": 10}`,
		},
		{
			name:  "fenced json block",
			input: "```json\n{\"score\": 10}\n```",
			want:  `{"score": 10}`,
		},
		{
			name:  "fenced block without language tag",
			input: "```\n{\"score\": 10}\n```",
			want:  `{"score": 10}`,
		},
		{
			name:  "leading commentary",
			input: "Sure, here is the evaluation you asked for:\n{\"score\": 10}\nLet me know if you need anything else.",
			want:  `{"score": 10}`,
		},
		{
			name:    "no braces at all",
			input:   "I could not evaluate this resume.",
			wantErr: true,
		},
		{
			name:    "empty input",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSONObject(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeEvaluationHappyPath(t *testing.T) {
	result := NormalizeEvaluation(sampleReply, "priya.pdf")

	assert.Equal(t, "priya.pdf", result.Filename)
	assert.Equal(t, "Priya Sharma", result.Name)
	assert.Equal(t, 78.0, result.Score)
	assert.Equal(t, 30.0, result.ExperienceScore)
	assert.Equal(t, 18.0, result.SkillScore)
	assert.Equal(t, 12.0, result.EducationScore)
	assert.Equal(t, 18.0, result.IndustryScore)
	assert.Equal(t, "6 years in decorative coatings", result.ExperienceSummary)
	assert.Equal(t, "B.Tech Chemical Engineering", result.Education)
	assert.Equal(t, []string{"sales", "channel management"}, result.SkillsMatched)
	assert.Equal(t, "Accept. Strong coatings background.", result.Remark)
	assert.Equal(t, 30.0, result.ScoreBreakdown.Experience)
}

func TestNormalizeEvaluationFencedAndUnfencedAgree(t *testing.T) {
	fenced := "```json\n" + sampleReply + "\n```"

	assert.Equal(t,
		NormalizeEvaluation(sampleReply, "a.pdf"),
		NormalizeEvaluation(fenced, "a.pdf"),
	)
}

func TestNormalizeEvaluationIsIdempotent(t *testing.T) {
	first := NormalizeEvaluation(sampleReply, "a.pdf")
	second := NormalizeEvaluation(sampleReply, "a.pdf")

	assert.Equal(t, first, second)
}

func TestNormalizeEvaluationFieldAliases(t *testing.T) {
	raw := `{
		"Name": "Ravi",
		"Score": "85",
		"Score_breakdown": {"Experience": "40", "skills": 20},
		"Skills_matched": "go, sql, , excel",
		"Remark": "Accept"
	}`

	result := NormalizeEvaluation(raw, "ravi.docx")

	assert.Equal(t, "Ravi", result.Name)
	assert.Equal(t, 85.0, result.Score)
	assert.Equal(t, 40.0, result.ExperienceScore)
	assert.Equal(t, 20.0, result.SkillScore)
	assert.Equal(t, []string{"go", "sql", "excel"}, result.SkillsMatched)
}

func TestNormalizeEvaluationDefaultsForAbsentValues(t *testing.T) {
	raw := `{
		"name": null,
		"score": "not a number",
		"experience": "",
		"education": "N/A",
		"skills_matched": [],
		"remark": "Reviewed"
	}`

	result := NormalizeEvaluation(raw, "blank.pdf")

	assert.Equal(t, "N/A", result.Name)
	assert.Equal(t, 0.0, result.Score)
	assert.Equal(t, "N/A", result.ExperienceSummary)
	assert.Equal(t, "N/A", result.Education)
	assert.Empty(t, result.SkillsMatched)
	assert.Equal(t, 0.0, result.ScoreBreakdown.Experience)
}

func TestNormalizeEvaluationClampsScore(t *testing.T) {
	tests := []struct {
		name  string
		score string
		want  float64
	}{
		{"above range", "120", 100},
		{"below range", "-5", 0},
		{"in range", "55.5", 55.5},
		{"non-numeric", `"excellent"`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NormalizeEvaluation(`{"score": `+tt.score+`, "remark": "x"}`, "a.pdf")
			assert.Equal(t, tt.want, result.Score)
			assert.GreaterOrEqual(t, result.Score, 0.0)
			assert.LessOrEqual(t, result.Score, 100.0)
		})
	}
}

func TestNormalizeEvaluationParseFailureRecord(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"no json", "the model refused to answer"},
		{"malformed json", `{"score": 80,,}`},
		{"empty reply", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NormalizeEvaluation(tt.raw, "broken.pdf")

			assert.Equal(t, "broken.pdf", result.Filename)
			assert.Equal(t, "N/A", result.Name)
			assert.Equal(t, 0.0, result.Score)
			assert.Empty(t, result.SkillsMatched)
			assert.Contains(t, result.Remark, "Error parsing model output")
		})
	}
}
