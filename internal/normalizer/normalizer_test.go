package normalizer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abdullah-Asgher/JobMatchAI/internal/config"
	"github.com/Abdullah-Asgher/JobMatchAI/internal/source"
	"github.com/Abdullah-Asgher/JobMatchAI/internal/types"
)

func newTestNormalizer() *Normalizer {
	cfg := config.DefaultConfig()
	return NewNormalizer(cfg.Aggregator)
}

// TestNormalizeDropsRecordsMissingRequiredFields 验证缺失标题或公司的记录被丢弃并计数
func TestNormalizeDropsRecordsMissingRequiredFields(t *testing.T) {
	n := newTestNormalizer()

	raws := []source.RawPosting{
		{Source: types.SourceAdzuna, ExternalID: "1", Title: "Go Developer", Company: "Acme Ltd"},
		{Source: types.SourceAdzuna, ExternalID: "2", Title: "", Company: "Acme Ltd"},        // 缺失标题
		{Source: types.SourceReed, ExternalID: "3", Title: "Backend Engineer", Company: ""},  // 缺失公司
		{Source: types.SourceReed, ExternalID: "4", Title: "   ", Company: "Beta Inc"},       // 标题仅空白
		{Source: types.SourceJSearch, ExternalID: "5", Title: "SRE", Company: "Gamma Corp"},
	}

	postings, dropped := n.Normalize(context.Background(), raws)

	assert.Len(t, postings, 2, "应保留2条合法记录")
	assert.Equal(t, 3, dropped, "应丢弃3条缺失必填字段的记录")
}

// TestNormalizeFillsSentinels 验证缺失的非关键字段填充显式占位值
func TestNormalizeFillsSentinels(t *testing.T) {
	n := newTestNormalizer()

	raws := []source.RawPosting{
		{Source: types.SourceAdzuna, ExternalID: "1", Title: "Go Developer", Company: "Acme"},
	}

	postings, dropped := n.Normalize(context.Background(), raws)
	require.Len(t, postings, 1)
	assert.Zero(t, dropped)

	p := postings[0]
	assert.Equal(t, types.UnknownSentinel, p.Description, "缺失描述应填充占位值")
	assert.Equal(t, types.UnknownSentinel, p.Location, "缺失地点应填充占位值")
	assert.Equal(t, types.ContractUnspecified, p.ContractType)
	assert.Equal(t, types.WorkModeUnspecified, p.WorkMode)
	assert.Nil(t, p.PostedAt)
	assert.Nil(t, p.SalaryMin)
	assert.Nil(t, p.SalaryMax)
}

// TestStripHTML 验证HTML标签与实体被去除且空白被压缩
func TestStripHTML(t *testing.T) {
	in := "<p>We are <b>hiring</b>!</p>\n\n<ul><li>Go &amp; SQL</li></ul>"
	out := StripHTML(in)
	assert.Equal(t, "We are hiring ! Go & SQL", out)
}

// TestDeriveIDStability 验证ID派生的确定性与区分度
func TestDeriveIDStability(t *testing.T) {
	// 1. 有外部ID时，同一 (来源, 外部ID) 总是得到同一ID
	id1 := DeriveID(types.SourceAdzuna, "ext-123", "a", "b", "c")
	id2 := DeriveID(types.SourceAdzuna, "ext-123", "x", "y", "z")
	assert.Equal(t, id1, id2, "外部ID相同时指纹字段不应影响结果")
	assert.Len(t, id1, 16)

	// 2. 不同来源的同一外部ID不冲突
	id3 := DeriveID(types.SourceReed, "ext-123", "a", "b", "c")
	assert.NotEqual(t, id1, id3)

	// 3. 无外部ID时回退到内容指纹
	fp1 := DeriveID(types.SourceJSearch, "", "go developer", "acme", "london")
	fp2 := DeriveID(types.SourceJSearch, "", "go developer", "acme", "london")
	fp3 := DeriveID(types.SourceJSearch, "", "go developer", "acme", "leeds")
	assert.Equal(t, fp1, fp2)
	assert.NotEqual(t, fp1, fp3)
}

// TestCurrencyConversion 验证薪资统一换算到GBP
func TestCurrencyConversion(t *testing.T) {
	n := newTestNormalizer()
	usd := 100000.0

	raws := []source.RawPosting{
		{
			Source: types.SourceJSearch, ExternalID: "1",
			Title: "Platform Engineer", Company: "Acme",
			SalaryMin: &usd, Currency: "USD",
		},
	}

	postings, _ := n.Normalize(context.Background(), raws)
	require.Len(t, postings, 1)
	require.NotNil(t, postings[0].SalaryMin)
	// 默认配置中 USD -> GBP 系数为 0.79
	assert.InDelta(t, 79000.0, *postings[0].SalaryMin, 0.01)
}

// TestSalaryRangeSwapped 验证倒置的薪资区间被交换
func TestSalaryRangeSwapped(t *testing.T) {
	n := newTestNormalizer()
	lo, hi := 60000.0, 40000.0

	raws := []source.RawPosting{
		{
			Source: types.SourceReed, ExternalID: "1",
			Title: "Data Engineer", Company: "Acme",
			SalaryMin: &lo, SalaryMax: &hi, Currency: "GBP",
		},
	}

	postings, _ := n.Normalize(context.Background(), raws)
	require.Len(t, postings, 1)
	assert.Equal(t, 40000.0, *postings[0].SalaryMin)
	assert.Equal(t, 60000.0, *postings[0].SalaryMax)
}

// TestMapContractType 验证各平台合同类型文本的映射
func TestMapContractType(t *testing.T) {
	cases := map[string]types.ContractType{
		"permanent":       types.ContractFullTime,
		"FULLTIME":        types.ContractFullTime,
		"full_time":       types.ContractFullTime,
		"part_time":       types.ContractPartTime,
		"PARTTIME":        types.ContractPartTime,
		"contract":        types.ContractContract,
		"CONTRACTOR":      types.ContractContract,
		"temporary":       types.ContractContract,
		"INTERN":          types.ContractInternship,
		"FULLTIME remote": types.ContractFullTime, // 带附加词
		"":                types.ContractUnspecified,
		"whatever":        types.ContractUnspecified,
	}

	for raw, want := range cases {
		assert.Equal(t, want, mapContractType(raw), "输入: %q", raw)
	}
}

// TestInferWorkMode 验证工作模式推断及hybrid优先级
func TestInferWorkMode(t *testing.T) {
	assert.Equal(t, types.WorkModeRemote, inferWorkMode("", "Remote Go Developer", "..."))
	assert.Equal(t, types.WorkModeHybrid, inferWorkMode("", "Go Developer", "hybrid working, 2 days remote"))
	assert.Equal(t, types.WorkModeOnSite, inferWorkMode("", "Go Developer", "this role is office based"))
	assert.Equal(t, types.WorkModeUnspecified, inferWorkMode("", "Go Developer", "great team"))
}

// TestParsePostedAt 验证多种日期格式的解析
func TestParsePostedAt(t *testing.T) {
	// RFC3339（Adzuna/JSearch）
	ts := parsePostedAt("2025-06-01T10:30:00Z")
	require.NotNil(t, ts)
	assert.Equal(t, 2025, ts.Year())

	// 英式日期（Reed）
	ts = parsePostedAt("15/06/2025")
	require.NotNil(t, ts)
	assert.Equal(t, 15, ts.Day())
	assert.Equal(t, 6, int(ts.Month()))

	// 无法解析时返回nil而非报错
	assert.Nil(t, parsePostedAt("yesterday"))
	assert.Nil(t, parsePostedAt(""))
}
