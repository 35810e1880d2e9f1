package dedup

import (
	"context"
	"strings"

	"github.com/Abdullah-Asgher/JobMatchAI/internal/config"
	"github.com/Abdullah-Asgher/JobMatchAI/internal/logger"
	"github.com/Abdullah-Asgher/JobMatchAI/internal/types"
)

// Deduplicator 识别跨来源的重复职位并为每组选出一条代表记录。
// 无状态且并发安全。
type Deduplicator struct {
	// 标题词集Jaccard相似度阈值
	titleThreshold float64
}

// NewDeduplicator 创建去重器
func NewDeduplicator(cfg config.DedupConfig) *Deduplicator {
	threshold := cfg.TitleSimilarityThreshold
	if threshold <= 0 || threshold > 1 {
		threshold = 0.60
	}
	return &Deduplicator{titleThreshold: threshold}
}

// legalSuffixes 公司名比较前剥离的法律后缀
var legalSuffixes = []string{
	"ltd", "limited", "llc", "inc", "plc", "gmbh", "co", "corp", "group",
}

// cluster 一组被判定为同一职位的记录，anchor是最先出现的成员
type cluster struct {
	anchor  types.CanonicalPosting
	members []types.CanonicalPosting
}

// Deduplicate 对规范职位列表做贪心聚类去重。
// 每条记录与已有簇的首成员比较，命中即并入，否则开新簇；
// 输出按簇的创建顺序排列，结果对同一输入是确定的。
func (d *Deduplicator) Deduplicate(ctx context.Context, postings []types.CanonicalPosting) []types.CanonicalPosting {
	if len(postings) <= 1 {
		return postings
	}

	clusters := make([]*cluster, 0, len(postings))

	for _, p := range postings {
		matched := false
		for _, c := range clusters {
			if d.isDuplicate(c.anchor, p) {
				c.members = append(c.members, p)
				matched = true
				break
			}
		}
		if !matched {
			clusters = append(clusters, &cluster{anchor: p, members: []types.CanonicalPosting{p}})
		}
	}

	result := make([]types.CanonicalPosting, 0, len(clusters))
	for _, c := range clusters {
		result = append(result, pickRepresentative(c.members))
	}

	if removed := len(postings) - len(result); removed > 0 {
		logger.Ctx(ctx).Debug().
			Int("input", len(postings)).
			Int("output", len(result)).
			Msg("去重合并了重复职位")
	}

	return result
}

// isDuplicate 判断两条记录是否为同一职位。
// 三个条件必须同时满足：标题相似、公司同源、地点不冲突。
func (d *Deduplicator) isDuplicate(a, b types.CanonicalPosting) bool {
	if TitleSimilarity(a.TitleNorm, b.TitleNorm) < d.titleThreshold {
		return false
	}
	if !companiesMatch(a.CompanyNorm, b.CompanyNorm) {
		return false
	}
	return locationsCompatible(a.LocationNorm, b.LocationNorm)
}

// TitleSimilarity 计算两个标题的词集Jaccard相似度
func TitleSimilarity(a, b string) float64 {
	setA := wordSet(a)
	setB := wordSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for w := range setA {
		if setB[w] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

// companiesMatch 判断两个规范化公司名是否指向同一雇主。
// 剥离法律后缀后，相等或一方为另一方的子串即视为匹配
// （处理 "acme" 与 "acme ltd"、"acme" 与 "acme recruitment" 的情况）。
func companiesMatch(a, b string) bool {
	a = stripLegalSuffixes(a)
	b = stripLegalSuffixes(b)
	if a == "" || b == "" {
		return false
	}
	if a == b {
		return true
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// locationsCompatible 地点相等或双方都未知时视为不冲突
func locationsCompatible(a, b string) bool {
	if a == types.UnknownSentinel && b == types.UnknownSentinel {
		return true
	}
	return a == b
}

// stripLegalSuffixes 去掉公司名尾部的法律后缀词
func stripLegalSuffixes(name string) string {
	words := strings.Fields(name)
	for len(words) > 0 {
		last := strings.Trim(words[len(words)-1], ".,")
		isSuffix := false
		for _, s := range legalSuffixes {
			if last == s {
				isSuffix = true
				break
			}
		}
		if !isSuffix {
			break
		}
		words = words[:len(words)-1]
	}
	return strings.Join(words, " ")
}

// pickRepresentative 从一组重复记录中选出信息最完整的一条。
// 规则依次为：薪资字段更多 > 发布时间更新 > 先到先得。
func pickRepresentative(members []types.CanonicalPosting) types.CanonicalPosting {
	best := members[0]
	for _, m := range members[1:] {
		if better(m, best) {
			best = m
		}
	}
	return best
}

// better 判断a的信息完整度是否严格优于b
func better(a, b types.CanonicalPosting) bool {
	if a.SalaryFieldCount() != b.SalaryFieldCount() {
		return a.SalaryFieldCount() > b.SalaryFieldCount()
	}
	if a.PostedAt != nil && b.PostedAt != nil && !a.PostedAt.Equal(*b.PostedAt) {
		return a.PostedAt.After(*b.PostedAt)
	}
	if (a.PostedAt != nil) != (b.PostedAt != nil) {
		return a.PostedAt != nil
	}
	return false
}

// wordSet 将规范化标题拆分为词集
func wordSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(s) {
		set[w] = true
	}
	return set
}
