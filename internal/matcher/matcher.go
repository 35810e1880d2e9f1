package matcher

import (
	"context"
	"math"
	"strings"

	"github.com/Abdullah-Asgher/JobMatchAI/internal/config"
	"github.com/Abdullah-Asgher/JobMatchAI/internal/logger"
	"github.com/Abdullah-Asgher/JobMatchAI/internal/types"
)

// 维度名常量，breakdown的键
const (
	DimensionSkills     = "skills"
	DimensionExperience = "experience"
)

// 资历档位。1=初级，2=中级，3=高级，0=无信号。
const (
	bucketNone   = 0
	bucketJunior = 1
	bucketMid    = 2
	bucketSenior = 3
)

// Matcher 计算简历与职位列表的匹配评分。无状态且并发安全。
type Matcher struct {
	weights config.MatchWeights
}

// NewMatcher 创建匹配器
func NewMatcher(weights config.MatchWeights) *Matcher {
	return &Matcher{weights: weights}
}

// 职位侧资历关键词
var (
	seniorKeywords = []string{"senior", "lead", "principal", "staff", "head of"}
	midKeywords    = []string{"mid-level", "mid level", "intermediate"}
	juniorKeywords = []string{"junior", "entry", "graduate", "intern", "trainee"}
)

// Match 对职位列表计算匹配评分，输出顺序与输入一致。
// 简历与全部职位共享同一TF-IDF语料库，分数在批内可比。
func (m *Matcher) Match(ctx context.Context, profile *types.ResumeProfile, postings []types.CanonicalPosting) []types.MatchResult {
	if len(postings) == 0 {
		return []types.MatchResult{}
	}

	// 语料库：各职位文本在前，简历文本排最后
	docs := make([]string, 0, len(postings)+1)
	for _, p := range postings {
		docs = append(docs, jobText(p))
	}
	docs = append(docs, resumeText(profile))

	corpus := buildCorpus(docs)
	resumeVec := corpus.vectors[len(postings)]
	resumeBucket := bucketFromYears(profile.ExperienceYears)

	results := make([]types.MatchResult, 0, len(postings))
	for i, p := range postings {
		// 描述缺失的职位没有可比较的文本，技能子分记0
		skills := 0.0
		if hasDescription(p) {
			skills = round1(cosine(resumeVec, corpus.vectors[i]) * 100)
		}
		experience := round1(experienceScore(resumeBucket, jobBucket(p)))
		score := round1(m.weights.Skills*skills + m.weights.Experience*experience)

		results = append(results, types.MatchResult{
			Posting: p,
			Score:   score,
			Breakdown: map[string]float64{
				DimensionSkills:     skills,
				DimensionExperience: experience,
			},
		})
	}

	logger.Ctx(ctx).Debug().
		Int("postings", len(postings)).
		Int("resume_years", profile.ExperienceYears).
		Msg("匹配评分完成")

	return results
}

// jobText 职位侧比较文本：标题加权两次 + 描述 + 公司
func jobText(p types.CanonicalPosting) string {
	parts := []string{p.Title, p.Title, p.Description, p.Company}
	return strings.Join(parts, " ")
}

// hasDescription 职位是否带有真实描述文本
func hasDescription(p types.CanonicalPosting) bool {
	return p.Description != "" && p.Description != types.UnknownSentinel
}

// resumeText 简历侧比较文本：全文 + 技能词加权两次
func resumeText(profile *types.ResumeProfile) string {
	skills := strings.Join(profile.Skills, " ")
	return profile.RawText + " " + skills + " " + skills
}

// bucketFromYears 简历年限到资历档位的映射
func bucketFromYears(years int) int {
	switch {
	case years < 2:
		return bucketJunior
	case years < 5:
		return bucketMid
	default:
		return bucketSenior
	}
}

// jobBucket 职位侧资历档位。先看标题关键词，再看描述，都没有则无信号。
func jobBucket(p types.CanonicalPosting) int {
	if b := bucketFromKeywords(p.TitleNorm); b != bucketNone {
		return b
	}
	return bucketFromKeywords(strings.ToLower(p.Description))
}

// bucketFromKeywords 在文本中按 高级 > 中级 > 初级 的顺序找资历关键词
func bucketFromKeywords(text string) int {
	for _, kw := range seniorKeywords {
		if strings.Contains(text, kw) {
			return bucketSenior
		}
	}
	for _, kw := range midKeywords {
		if strings.Contains(text, kw) {
			return bucketMid
		}
	}
	for _, kw := range juniorKeywords {
		if strings.Contains(text, kw) {
			return bucketJunior
		}
	}
	return bucketNone
}

// experienceScore 资历匹配子分。
// 职位无信号=70（中性），档位相同=100，差1档=60，差2档=30。
func experienceScore(resumeBucket, jobBucket int) float64 {
	if jobBucket == bucketNone {
		return 70
	}

	gap := resumeBucket - jobBucket
	if gap < 0 {
		gap = -gap
	}

	switch gap {
	case 0:
		return 100
	case 1:
		return 60
	default:
		return 30
	}
}

// round1 四舍五入到1位小数
func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
