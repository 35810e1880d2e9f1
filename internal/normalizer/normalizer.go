package normalizer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/Abdullah-Asgher/JobMatchAI/internal/config"
	"github.com/Abdullah-Asgher/JobMatchAI/internal/logger"
	"github.com/Abdullah-Asgher/JobMatchAI/internal/source"
	"github.com/Abdullah-Asgher/JobMatchAI/internal/types"
)

// Normalizer 将来源客户端的原始记录清洗为规范职位记录。
// 无状态且并发安全，同一个实例可被多个请求共用。
type Normalizer struct {
	// 货币代码 -> 换算到GBP的系数
	currencyRates map[string]float64
}

// NewNormalizer 创建规范化器
func NewNormalizer(cfg config.AggregatorConfig) *Normalizer {
	rates := cfg.CurrencyRates
	if len(rates) == 0 {
		rates = map[string]float64{"GBP": 1.0}
	}
	return &Normalizer{currencyRates: rates}
}

var (
	htmlTagRe    = regexp.MustCompile(`<[^>]*>`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// contractTypeLookup 各平台合同类型文本到规范枚举的映射表。
// 匹配前文本会被小写化并去掉下划线和连字符。
var contractTypeLookup = map[string]types.ContractType{
	"fulltime":   types.ContractFullTime,
	"permanent":  types.ContractFullTime,
	"parttime":   types.ContractPartTime,
	"contract":   types.ContractContract,
	"contractor": types.ContractContract,
	"temporary":  types.ContractContract,
	"temp":       types.ContractContract,
	"internship": types.ContractInternship,
	"intern":     types.ContractInternship,
}

// postedAtLayouts 各平台发布时间的已知格式，按出现频率排列
var postedAtLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"02/01/2006", // Reed使用英式日期
	"2006-01-02",
}

// Normalize 批量规范化原始记录。
// 缺失Title或Company的记录被丢弃并计数，其余缺失字段填充显式占位值。
func (n *Normalizer) Normalize(ctx context.Context, raws []source.RawPosting) ([]types.CanonicalPosting, int) {
	postings := make([]types.CanonicalPosting, 0, len(raws))
	dropped := 0

	for _, raw := range raws {
		posting, ok := n.normalizeOne(raw)
		if !ok {
			dropped++
			continue
		}
		postings = append(postings, posting)
	}

	if dropped > 0 {
		logger.Ctx(ctx).Debug().
			Int("dropped", dropped).
			Int("kept", len(postings)).
			Msg("规范化丢弃了缺失必填字段的记录")
	}

	return postings, dropped
}

// normalizeOne 规范化单条记录，返回false表示记录应被丢弃
func (n *Normalizer) normalizeOne(raw source.RawPosting) (types.CanonicalPosting, bool) {
	title := collapseWhitespace(raw.Title)
	company := collapseWhitespace(raw.Company)

	// Title和Company是匹配与去重的根基，缺失即丢弃
	if title == "" || company == "" {
		return types.CanonicalPosting{}, false
	}

	description := StripHTML(raw.Description)
	if description == "" {
		description = types.UnknownSentinel
	}

	location := collapseWhitespace(raw.Location)
	if location == "" {
		location = types.UnknownSentinel
	}

	posting := types.CanonicalPosting{
		Source:        raw.Source,
		Title:         title,
		Company:       company,
		TitleNorm:     strings.ToLower(title),
		CompanyNorm:   strings.ToLower(company),
		Location:      location,
		LocationNorm:  strings.ToLower(location),
		DistanceMiles: raw.DistanceMiles,
		Description:   description,
		SalaryMin:     n.convertSalary(raw.SalaryMin, raw.Currency),
		SalaryMax:     n.convertSalary(raw.SalaryMax, raw.Currency),
		ContractType:  mapContractType(raw.ContractTypeRaw),
		WorkMode:      inferWorkMode(raw.ContractTypeRaw, title, description),
		PostedAt:      parsePostedAt(raw.CreatedRaw),
		ApplyURL:      strings.TrimSpace(raw.ApplyURL),
	}

	// 薪资区间倒置时交换
	if posting.SalaryMin != nil && posting.SalaryMax != nil && *posting.SalaryMin > *posting.SalaryMax {
		posting.SalaryMin, posting.SalaryMax = posting.SalaryMax, posting.SalaryMin
	}

	posting.ID = DeriveID(raw.Source, raw.ExternalID, posting.TitleNorm, posting.CompanyNorm, posting.LocationNorm)
	return posting, true
}

// convertSalary 将薪资换算为GBP。未知货币按原值保留。
func (n *Normalizer) convertSalary(value *float64, currency string) *float64 {
	if value == nil || *value <= 0 {
		return nil
	}

	rate, ok := n.currencyRates[strings.ToUpper(currency)]
	if !ok {
		rate = 1.0
	}

	converted := *value * rate
	return &converted
}

// DeriveID 派生确定性职位ID。
// 有外部ID时基于 (来源, 外部ID)，否则基于规范化后的 (标题, 公司, 地点) 指纹。
// 同一记录无论何时被抓取，得到的ID都相同。
func DeriveID(src types.SourceTag, externalID, titleNorm, companyNorm, locationNorm string) string {
	var key string
	if externalID != "" {
		key = fmt.Sprintf("%s|ext:%s", src, externalID)
	} else {
		key = fmt.Sprintf("%s|fp:%s|%s|%s", src, titleNorm, companyNorm, locationNorm)
	}

	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])[:16]
}

// StripHTML 去除描述中的HTML标签与实体，并压缩空白
func StripHTML(s string) string {
	s = htmlTagRe.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	return collapseWhitespace(s)
}

// mapContractType 将平台原始合同类型文本映射到规范枚举
func mapContractType(raw string) types.ContractType {
	cleaned := strings.ToLower(strings.TrimSpace(raw))
	cleaned = strings.ReplaceAll(cleaned, "_", "")
	cleaned = strings.ReplaceAll(cleaned, "-", "")
	cleaned = strings.ReplaceAll(cleaned, " ", "")

	// 原始文本可能携带附加词（如 "FULLTIME remote"），按已知关键词前缀匹配
	for key, ct := range contractTypeLookup {
		if strings.HasPrefix(cleaned, key) {
			return ct
		}
	}
	return types.ContractUnspecified
}

// inferWorkMode 从合同类型文本、标题与描述中推断工作模式。
// hybrid优先于remote（混合职位通常同时提到两者）。
func inferWorkMode(contractRaw, title, description string) types.WorkMode {
	text := strings.ToLower(contractRaw + " " + title + " " + description)

	switch {
	case strings.Contains(text, "hybrid"):
		return types.WorkModeHybrid
	case strings.Contains(text, "remote"):
		return types.WorkModeRemote
	case strings.Contains(text, "on-site"), strings.Contains(text, "onsite"), strings.Contains(text, "office based"), strings.Contains(text, "office-based"):
		return types.WorkModeOnSite
	default:
		return types.WorkModeUnspecified
	}
}

// parsePostedAt 按已知格式解析发布时间，全部失败时返回nil
func parsePostedAt(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	for _, layout := range postedAtLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			utc := t.UTC()
			return &utc
		}
	}
	return nil
}

// collapseWhitespace 压缩连续空白并去除首尾空白
func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}
