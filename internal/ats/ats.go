package ats

import (
	"math"
	"regexp"
	"strings"

	"github.com/Abdullah-Asgher/JobMatchAI/internal/config"
	"github.com/Abdullah-Asgher/JobMatchAI/internal/types"
)

// 类别名常量，breakdown的键
const (
	CategoryKeywords     = "keywords"
	CategoryFormatting   = "formatting"
	CategoryStructure    = "structure"
	CategoryAchievements = "achievements"
	CategoryLength       = "length"
	CategoryContact      = "contact"
)

// 等级标签
const (
	GradeExcellent        = "Excellent"
	GradeGood             = "Good"
	GradeNeedsImprovement = "Needs Improvement"
	GradePoor             = "Poor"
)

// Engine ATS兼容性分析引擎。无状态，按次生成结果。
type Engine struct {
	weights config.ATSWeights
}

// NewEngine 创建ATS分析引擎
func NewEngine(weights config.ATSWeights) *Engine {
	return &Engine{weights: weights}
}

// defaultKeywords 无目标职位时使用的通用高价值关键词
var defaultKeywords = []string{
	"python", "java", "javascript", "sql", "aws", "azure",
	"machine learning", "data analysis", "project management",
	"leadership", "communication", "problem solving",
}

var (
	emailRe    = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	phoneRe    = regexp.MustCompile(`(\+?\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)
	linkedinRe = regexp.MustCompile(`(?i)linkedin\.com/in/[\w-]+`)

	// 表格绘制字符，ATS解析器的常见障碍
	tableCharsRe = regexp.MustCompile(`[\|╣═║]`)

	// 可量化成果的写法
	achievementPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\d+%`),
		regexp.MustCompile(`[$£€][\d,]+`),
		regexp.MustCompile(`\d+\s*(million|thousand|billion)`),
		regexp.MustCompile(`increased.*?\d+`),
		regexp.MustCompile(`reduced.*?\d+`),
		regexp.MustCompile(`saved.*?\d+`),
		regexp.MustCompile(`grew.*?\d+`),
	}
)

// Analyze 分析简历画像的ATS兼容性。
// 总分是各类别0-100子分按配置权重的加权和，四舍五入为整数。
func (e *Engine) Analyze(profile *types.ResumeProfile) *types.AtsResult {
	// 空画像：全零 + 单条提示，不套用规则表
	if profile.IsEmpty() {
		return &types.AtsResult{
			TotalScore: 0,
			Grade:      GradePoor,
			Breakdown: map[string]float64{
				CategoryKeywords:     0,
				CategoryFormatting:   0,
				CategoryStructure:    0,
				CategoryAchievements: 0,
				CategoryLength:       0,
				CategoryContact:      0,
			},
			Strengths:    []string{},
			Improvements: []string{"Resume has insufficient content to analyze"},
		}
	}

	breakdown := map[string]float64{
		CategoryKeywords:     scoreKeywords(profile.RawText),
		CategoryFormatting:   scoreFormatting(profile.RawText),
		CategoryStructure:    scoreStructure(profile),
		CategoryAchievements: scoreAchievements(profile.RawText),
		CategoryLength:       scoreLength(profile.WordCount),
		CategoryContact:      scoreContact(profile.RawText),
	}

	total := 0.0
	total += e.weights.Keywords * breakdown[CategoryKeywords] / 100
	total += e.weights.Formatting * breakdown[CategoryFormatting] / 100
	total += e.weights.Structure * breakdown[CategoryStructure] / 100
	total += e.weights.Achievements * breakdown[CategoryAchievements] / 100
	total += e.weights.Length * breakdown[CategoryLength] / 100
	total += e.weights.Contact * breakdown[CategoryContact] / 100

	totalScore := int(math.Round(total))
	strengths, improvements := applyFeedbackRules(breakdown)

	return &types.AtsResult{
		TotalScore:   totalScore,
		Grade:        gradeFor(totalScore),
		Breakdown:    breakdown,
		Strengths:    strengths,
		Improvements: improvements,
	}
}

// gradeFor 由固定分数段派生等级标签
func gradeFor(score int) string {
	switch {
	case score >= 85:
		return GradeExcellent
	case score >= 70:
		return GradeGood
	case score >= 50:
		return GradeNeedsImprovement
	default:
		return GradePoor
	}
}

// scoreKeywords 通用关键词覆盖率，0-100
func scoreKeywords(text string) float64 {
	lower := strings.ToLower(text)
	found := 0
	for _, kw := range defaultKeywords {
		if strings.Contains(lower, kw) {
			found++
		}
	}
	return float64(found) / float64(len(defaultKeywords)) * 100
}

// scoreFormatting ATS友好排版评分，0-100。
// 从满分扣减：文本过短（疑似复杂排版导致提取失败）、表格字符、行数过少。
func scoreFormatting(text string) float64 {
	score := 100.0

	if len(text) < 500 {
		score -= 25
	}
	if tableCharsRe.MatchString(text) {
		score -= 40
	}
	if len(strings.Split(text, "\n")) < 20 {
		score -= 20
	}

	if score < 0 {
		return 0
	}
	return score
}

// scoreStructure 标准章节完整度评分，0-100
func scoreStructure(profile *types.ResumeProfile) float64 {
	score := 0.0
	if profile.HasContact {
		score += 20
	}
	if profile.HasExperience {
		score += 30
	}
	if profile.HasEducation {
		score += 25
	}
	if profile.HasSkills {
		score += 25
	}
	return score
}

// scoreAchievements 可量化成果评分，0-100，按命中数量分档
func scoreAchievements(text string) float64 {
	lower := strings.ToLower(text)
	count := 0
	for _, re := range achievementPatterns {
		count += len(re.FindAllString(lower, -1))
	}

	switch {
	case count >= 8:
		return 100
	case count >= 5:
		return 80
	case count >= 3:
		return 60
	case count >= 1:
		return 40
	default:
		return 15
	}
}

// scoreLength 篇幅评分，0-100。300-800词为理想区间。
func scoreLength(wordCount int) float64 {
	switch {
	case wordCount >= 300 && wordCount <= 800:
		return 100
	case (wordCount >= 150 && wordCount < 300) || (wordCount > 800 && wordCount <= 1200):
		return 70
	case (wordCount >= 50 && wordCount < 150) || wordCount > 1200:
		return 40
	default:
		return 10
	}
}

// scoreContact 联系方式完整度评分，0-100。邮箱40、电话30、LinkedIn 30。
func scoreContact(text string) float64 {
	score := 0.0
	if emailRe.MatchString(text) {
		score += 40
	}
	if phoneRe.MatchString(text) {
		score += 30
	}
	if linkedinRe.MatchString(text) {
		score += 30
	}
	return score
}
