package profile

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Abdullah-Asgher/JobMatchAI/internal/config"
	"github.com/Abdullah-Asgher/JobMatchAI/internal/types"
)

// Builder 从简历纯文本构建只读画像。
// 构建是确定性的：同一文本总是得到同一画像。
type Builder struct {
	matchers []skillMatcher
}

// skillMatcher 单个技能词的预编译匹配器。
// 纯字母的技能词按词边界匹配，避免 "go" 命中 "google"；
// 带符号的技能词（c++、node.js）re为nil，退化为子串匹配。
type skillMatcher struct {
	name string
	re   *regexp.Regexp
}

func (m skillMatcher) matches(lowerText string) bool {
	if m.re != nil {
		return m.re.MatchString(lowerText)
	}
	return strings.Contains(lowerText, m.name)
}

// DefaultSkillVocabulary 内置技能词表，配置未提供时使用
var DefaultSkillVocabulary = []string{
	"python", "java", "javascript", "c++", "sql", "nosql", "mongodb",
	"react", "angular", "vue", "node.js", "django", "flask",
	"aws", "azure", "gcp", "docker", "kubernetes", "git",
	"machine learning", "data analysis", "ai", "deep learning",
	"agile", "scrum", "jira", "excel", "powerpoint", "communication",
	"leadership", "problem solving", "project management",
	"go", "golang", "rust", "typescript", "terraform", "ci/cd",
}

// NewBuilder 创建画像构建器
func NewBuilder(cfg config.ProfileConfig) *Builder {
	vocab := cfg.SkillVocabulary
	if len(vocab) == 0 {
		vocab = DefaultSkillVocabulary
	}

	matchers := make([]skillMatcher, 0, len(vocab))
	for _, v := range vocab {
		skill := strings.ToLower(strings.TrimSpace(v))
		if skill == "" {
			continue
		}
		m := skillMatcher{name: skill}
		if isPlainWord(skill) {
			m.re = regexp.MustCompile(`\b` + regexp.QuoteMeta(skill) + `\b`)
		}
		matchers = append(matchers, m)
	}
	return &Builder{matchers: matchers}
}

var (
	emailRe    = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	phoneRe    = regexp.MustCompile(`(\+?\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)
	linkedinRe = regexp.MustCompile(`(?i)linkedin\.com/in/[\w-]+`)

	// "5 years experience" / "5+ years of exp" 等写法
	yearsPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\d+)\+?\s*years?\s*(?:of\s*)?(?:experience|exp)`),
		regexp.MustCompile(`(?:experience|exp).*?(\d+)\+?\s*years?`),
	}

	// "2019 - 2023" / "2021 – present" 形式的任职区间
	dateRangeRe = regexp.MustCompile(`(\d{4})\s*[-–]\s*(\d{4}|present|current)`)
)

// 各章节的识别关键词
var (
	experienceKeywords = []string{"experience", "work history", "employment", "professional experience"}
	educationKeywords  = []string{"education", "academic", "qualifications"}
	skillsKeywords     = []string{"skills", "technical skills", "core competencies", "expertise"}
)

// Build 从简历文本构建画像。空文本得到零值画像。
func (b *Builder) Build(rawText string) *types.ResumeProfile {
	p := &types.ResumeProfile{
		RawText:   rawText,
		Skills:    []string{},
		WordCount: len(strings.Fields(rawText)),
	}
	if p.WordCount == 0 {
		return p
	}

	lower := strings.ToLower(rawText)

	// 1. 技能词表命中
	for _, m := range b.matchers {
		if m.matches(lower) && !p.HasSkill(m.name) {
			p.Skills = append(p.Skills, m.name)
		}
	}

	// 2. 工作年限估计
	p.ExperienceYears = ExtractExperienceYears(rawText)

	// 3. 联系方式与章节标志
	p.HasContact = emailRe.MatchString(rawText) || phoneRe.MatchString(rawText) || linkedinRe.MatchString(rawText)
	p.HasExperience = hasSection(lower, experienceKeywords)
	p.HasEducation = hasSection(lower, educationKeywords)
	p.HasSkills = hasSection(lower, skillsKeywords)

	return p
}

// ExtractExperienceYears 从文本估计工作年限。
// 优先使用显式的"N years experience"写法取最大值，
// 否则累加任职年份区间，两者都没有时返回0。
func ExtractExperienceYears(text string) int {
	lower := strings.ToLower(text)

	maxYears := 0
	found := false
	for _, re := range yearsPatterns {
		for _, m := range re.FindAllStringSubmatch(lower, -1) {
			if y, err := strconv.Atoi(m[1]); err == nil {
				found = true
				if y > maxYears {
					maxYears = y
				}
			}
		}
	}
	if found {
		return capYears(maxYears)
	}

	// 回退：按任职区间累加
	ranges := dateRangeRe.FindAllStringSubmatch(lower, -1)
	if len(ranges) == 0 {
		return 0
	}

	currentYear := time.Now().Year()
	total := 0
	for _, m := range ranges {
		start, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		end := currentYear
		if m[2] != "present" && m[2] != "current" {
			if e, err := strconv.Atoi(m[2]); err == nil {
				end = e
			}
		}
		if end > start {
			total += end - start
		}
	}
	if total < 1 {
		total = 1
	}
	return capYears(total)
}

// capYears 年限上限保护，过滤 "100 years experience" 之类的噪声
func capYears(y int) int {
	if y > 60 {
		return 60
	}
	if y < 0 {
		return 0
	}
	return y
}

// isPlainWord 判断技能词是否只含字母、数字和空格
func isPlainWord(s string) bool {
	for _, r := range s {
		if !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9') && r != ' ' {
			return false
		}
	}
	return true
}

// hasSection 判断文本行中是否出现某组章节关键词
func hasSection(lowerText string, keywords []string) bool {
	for _, line := range strings.Split(lowerText, "\n") {
		line = strings.TrimSpace(line)
		for _, kw := range keywords {
			if strings.Contains(line, kw) {
				return true
			}
		}
	}
	return false
}
