package dedup

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abdullah-Asgher/JobMatchAI/internal/config"
	"github.com/Abdullah-Asgher/JobMatchAI/internal/types"
)

func newTestDeduplicator() *Deduplicator {
	cfg := config.DefaultConfig()
	return NewDeduplicator(cfg.Scoring.Dedup)
}

func makePosting(id, title, company, location string) types.CanonicalPosting {
	return types.CanonicalPosting{
		ID:           id,
		Title:        title,
		Company:      company,
		Location:     location,
		TitleNorm:    toNorm(title),
		CompanyNorm:  toNorm(company),
		LocationNorm: toNorm(location),
	}
}

func toNorm(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			r += 'a' - 'A'
		}
		out = append(out, r)
	}
	return string(out)
}

// TestDeduplicateMergesCrossSourceDuplicates 验证跨来源重复职位被合并
func TestDeduplicateMergesCrossSourceDuplicates(t *testing.T) {
	d := newTestDeduplicator()

	postings := []types.CanonicalPosting{
		makePosting("1", "Senior Go Developer", "Acme Ltd", "London"),
		makePosting("2", "Senior Go Developer", "Acme", "London"), // 同职位，公司名少了后缀
		makePosting("3", "Data Scientist", "Beta Inc", "Leeds"),
	}

	result := d.Deduplicate(context.Background(), postings)

	require.Len(t, result, 2, "两条Acme记录应合并为一条")
	assert.Equal(t, "1", result[0].ID, "代表记录应为先出现的一条")
	assert.Equal(t, "3", result[1].ID)
}

// TestDeduplicateOutputCount 验证 10+8 条输入中有3对重复时输出 15 条
func TestDeduplicateOutputCount(t *testing.T) {
	d := newTestDeduplicator()

	var postings []types.CanonicalPosting
	// 来源A的10条各不相同的职位
	titles := []string{
		"Backend Engineer", "Frontend Engineer", "Platform Engineer",
		"Data Engineer", "Site Reliability Engineer", "Security Analyst",
		"Product Manager", "QA Tester", "Mobile Developer", "DevOps Specialist",
	}
	for i, title := range titles {
		postings = append(postings, makePosting("a"+string(rune('0'+i)), title, "Company"+string(rune('A'+i)), "London"))
	}
	// 来源B的8条，其中3条与来源A重复
	postings = append(postings,
		makePosting("b1", "Backend Engineer", "CompanyA", "London"),           // 与a0重复
		makePosting("b2", "Frontend Engineer", "CompanyB Ltd", "London"),      // 与a1重复
		makePosting("b3", "Platform Engineer", "CompanyC", "London"),          // 与a2重复
		makePosting("b4", "Machine Learning Engineer", "CompanyX", "London"),
		makePosting("b5", "Engineering Manager", "CompanyY", "London"),
		makePosting("b6", "Solutions Architect", "CompanyZ", "London"),
		makePosting("b7", "Technical Writer", "CompanyW", "London"),
		makePosting("b8", "Scrum Master", "CompanyV", "London"),
	)

	result := d.Deduplicate(context.Background(), postings)
	assert.Len(t, result, 15, "18条输入中3对重复，应输出15条")
}

// TestDeduplicateIdempotent 验证对已去重的结果再次去重不改变输出
func TestDeduplicateIdempotent(t *testing.T) {
	d := newTestDeduplicator()

	postings := []types.CanonicalPosting{
		makePosting("1", "Go Developer", "Acme Ltd", "London"),
		makePosting("2", "Go Developer", "Acme", "London"),
		makePosting("3", "Rust Developer", "Beta", "Leeds"),
	}

	once := d.Deduplicate(context.Background(), postings)
	twice := d.Deduplicate(context.Background(), once)
	assert.Equal(t, once, twice, "去重应是幂等操作")
}

// TestRepresentativePrefersSalaryCompleteness 验证代表记录优先选薪资信息更全的
func TestRepresentativePrefersSalaryCompleteness(t *testing.T) {
	d := newTestDeduplicator()
	salMin, salMax := 50000.0, 70000.0

	noSalary := makePosting("1", "Go Developer", "Acme", "London")
	withSalary := makePosting("2", "Go Developer", "Acme Ltd", "London")
	withSalary.SalaryMin = &salMin
	withSalary.SalaryMax = &salMax

	result := d.Deduplicate(context.Background(), []types.CanonicalPosting{noSalary, withSalary})
	require.Len(t, result, 1)
	assert.Equal(t, "2", result[0].ID, "携带薪资的记录应成为代表")
}

// TestRepresentativeTieBreakByPostedAt 验证薪资完整度相同时按发布时间取新
func TestRepresentativeTieBreakByPostedAt(t *testing.T) {
	d := newTestDeduplicator()

	older := makePosting("1", "Go Developer", "Acme", "London")
	newer := makePosting("2", "Go Developer", "Acme", "London")
	t1 := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	t2 := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	older.PostedAt = &t1
	newer.PostedAt = &t2

	result := d.Deduplicate(context.Background(), []types.CanonicalPosting{older, newer})
	require.Len(t, result, 1)
	assert.Equal(t, "2", result[0].ID, "发布时间更新的记录应成为代表")
}

// TestDifferentLocationsNotMerged 验证地点不同的同名职位不被合并
func TestDifferentLocationsNotMerged(t *testing.T) {
	d := newTestDeduplicator()

	postings := []types.CanonicalPosting{
		makePosting("1", "Go Developer", "Acme", "London"),
		makePosting("2", "Go Developer", "Acme", "Manchester"),
	}

	result := d.Deduplicate(context.Background(), postings)
	assert.Len(t, result, 2, "不同地点的职位不应合并")
}

// TestTitleSimilarity 验证标题相似度计算
func TestTitleSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, TitleSimilarity("go developer", "go developer"))
	// {senior, go, developer} vs {go, developer}: 交2并3
	assert.InDelta(t, 2.0/3.0, TitleSimilarity("senior go developer", "go developer"), 1e-9)
	assert.Equal(t, 0.0, TitleSimilarity("go developer", ""))
	assert.Equal(t, 0.0, TitleSimilarity("accountant", "go developer"))
}
