package ats

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abdullah-Asgher/JobMatchAI/internal/config"
	"github.com/Abdullah-Asgher/JobMatchAI/internal/types"
)

func newTestEngine() *Engine {
	cfg := config.DefaultConfig()
	return NewEngine(cfg.Scoring.ATS)
}

// strongResumeText 构造一份各维度都表现良好的简历文本
func strongResumeText() string {
	lines := []string{
		"Jane Doe",
		"jane.doe@example.com | +44 7700 900123 | linkedin.com/in/janedoe",
		"",
		"Professional Summary",
		"Engineering leader with python, java, javascript, sql, aws and azure experience.",
		"Skilled in machine learning, data analysis, project management, leadership,",
		"communication and problem solving.",
		"",
		"Experience",
		"Increased revenue by 40% and reduced costs by 25% across 3 teams.",
		"Saved $120,000 annually. Grew the platform to 2 million users.",
		"Delivered 15% faster releases and improved uptime by 10%.",
		"Increased adoption by 30% and reduced incidents by 50%.",
	}
	// 再补一些行，保证行数与词数落在理想区间
	for i := 0; i < 15; i++ {
		lines = append(lines, "Led cross functional initiatives and delivered measurable outcomes for stakeholders across the organisation year after year consistently.")
	}
	return strings.Join(lines, "\n")
}

func profileFromText(text string) *types.ResumeProfile {
	return &types.ResumeProfile{
		RawText:       text,
		WordCount:     len(strings.Fields(text)),
		HasContact:    true,
		HasExperience: true,
		HasEducation:  true,
		HasSkills:     true,
	}
}

// TestAnalyzeStrongResume 验证高质量简历得到高分与Excellent等级
func TestAnalyzeStrongResume(t *testing.T) {
	e := newTestEngine()
	result := e.Analyze(profileFromText(strongResumeText()))

	require.NotNil(t, result)
	assert.GreaterOrEqual(t, result.TotalScore, 85)
	assert.LessOrEqual(t, result.TotalScore, 100)
	assert.Equal(t, GradeExcellent, result.Grade)
	assert.NotEmpty(t, result.Strengths)
}

// TestAnalyzeScoreRanges 验证所有子分与总分都落在合法区间
func TestAnalyzeScoreRanges(t *testing.T) {
	e := newTestEngine()

	texts := []string{
		strongResumeText(),
		"short note",
		"worked | at | a | table | company",
		strings.Repeat("word ", 2000),
	}

	for _, text := range texts {
		result := e.Analyze(&types.ResumeProfile{RawText: text, WordCount: len(strings.Fields(text))})
		assert.GreaterOrEqual(t, result.TotalScore, 0)
		assert.LessOrEqual(t, result.TotalScore, 100)
		require.Len(t, result.Breakdown, 6)
		for category, sub := range result.Breakdown {
			assert.GreaterOrEqual(t, sub, 0.0, "类别 %s 子分不应为负", category)
			assert.LessOrEqual(t, sub, 100.0, "类别 %s 子分不应超过100", category)
		}
	}
}

// TestAnalyzeTotalIsWeightedSum 验证总分等于子分按权重的加权和
func TestAnalyzeTotalIsWeightedSum(t *testing.T) {
	cfg := config.DefaultConfig()
	e := NewEngine(cfg.Scoring.ATS)

	result := e.Analyze(profileFromText(strongResumeText()))

	w := cfg.Scoring.ATS
	expected := w.Keywords*result.Breakdown[CategoryKeywords]/100 +
		w.Formatting*result.Breakdown[CategoryFormatting]/100 +
		w.Structure*result.Breakdown[CategoryStructure]/100 +
		w.Achievements*result.Breakdown[CategoryAchievements]/100 +
		w.Length*result.Breakdown[CategoryLength]/100 +
		w.Contact*result.Breakdown[CategoryContact]/100

	assert.Equal(t, int(math.Round(expected)), result.TotalScore)
}

// TestAnalyzeEmptyProfile 验证空画像返回全零与单条提示
func TestAnalyzeEmptyProfile(t *testing.T) {
	e := newTestEngine()

	result := e.Analyze(&types.ResumeProfile{})

	assert.Zero(t, result.TotalScore)
	assert.Equal(t, GradePoor, result.Grade)
	for category, sub := range result.Breakdown {
		assert.Zero(t, sub, "空画像类别 %s 应为0", category)
	}
	assert.Empty(t, result.Strengths)
	assert.Equal(t, []string{"Resume has insufficient content to analyze"}, result.Improvements)
}

// TestFeedbackRuleOrderStable 验证反馈条目顺序对同一输入稳定
func TestFeedbackRuleOrderStable(t *testing.T) {
	e := newTestEngine()
	p := profileFromText(strongResumeText())

	r1 := e.Analyze(p)
	r2 := e.Analyze(p)
	assert.Equal(t, r1.Strengths, r2.Strengths)
	assert.Equal(t, r1.Improvements, r2.Improvements)
}

// TestFeedbackCapped 验证改进建议最多5条
func TestFeedbackCapped(t *testing.T) {
	e := newTestEngine()

	// 各维度都差的画像：短文本、无章节、无联系方式
	result := e.Analyze(&types.ResumeProfile{RawText: "hello world", WordCount: 2})

	assert.LessOrEqual(t, len(result.Improvements), 5)
	assert.LessOrEqual(t, len(result.Strengths), 5)
}

// TestGradeBands 验证等级分段边界
func TestGradeBands(t *testing.T) {
	assert.Equal(t, GradeExcellent, gradeFor(85))
	assert.Equal(t, GradeGood, gradeFor(84))
	assert.Equal(t, GradeGood, gradeFor(70))
	assert.Equal(t, GradeNeedsImprovement, gradeFor(69))
	assert.Equal(t, GradeNeedsImprovement, gradeFor(50))
	assert.Equal(t, GradePoor, gradeFor(49))
	assert.Equal(t, GradePoor, gradeFor(0))
}
