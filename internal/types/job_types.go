package types

import "time"

// SourceTag 标识职位记录的来源招聘平台
type SourceTag string

const (
	// SourceAdzuna Adzuna 平台
	SourceAdzuna SourceTag = "adzuna"
	// SourceReed Reed 平台
	SourceReed SourceTag = "reed"
	// SourceJSearch JSearch (RapidAPI) 平台
	SourceJSearch SourceTag = "jsearch"
)

// ContractType 合同类型枚举
type ContractType string

const (
	ContractFullTime    ContractType = "full_time"
	ContractPartTime    ContractType = "part_time"
	ContractContract    ContractType = "contract"
	ContractInternship  ContractType = "internship"
	ContractUnspecified ContractType = "unspecified"
)

// WorkMode 工作模式枚举
type WorkMode string

const (
	WorkModeRemote      WorkMode = "remote"
	WorkModeHybrid      WorkMode = "hybrid"
	WorkModeOnSite      WorkMode = "on_site"
	WorkModeUnspecified WorkMode = "unspecified"
)

// UnknownSentinel 规范化后缺失的非关键字段使用的显式占位值。
// 评分逻辑只会遇到这个占位值，不会遇到空字符串或空指针。
const UnknownSentinel = "unknown"

// CanonicalPosting 是所有来源统一映射到的规范职位记录。
// 不变式：Title、Company、Description 在规范化之后永远非空
// （缺失 Description 时填充 UnknownSentinel，缺失 Title/Company 的记录直接丢弃）。
type CanonicalPosting struct {
	// ID 是确定性派生的稳定标识符，见 normalizer.DeriveID
	ID     string    `json:"id"`
	Source SourceTag `json:"source"`

	// 展示用原始大小写字段
	Title   string `json:"title"`
	Company string `json:"company"`

	// 匹配用小写去空白副本
	TitleNorm   string `json:"-"`
	CompanyNorm string `json:"-"`

	Location      string   `json:"location"`
	LocationNorm  string   `json:"-"`
	DistanceMiles *float64 `json:"distance_miles,omitempty"`

	Description string `json:"description"`

	// 货币统一换算后的年薪范围，缺失时为 nil
	SalaryMin *float64 `json:"salary_min,omitempty"`
	SalaryMax *float64 `json:"salary_max,omitempty"`

	ContractType ContractType `json:"contract_type"`
	WorkMode     WorkMode     `json:"work_mode"`

	PostedAt *time.Time `json:"posted_at,omitempty"`
	ApplyURL string     `json:"apply_url"`
}

// HasSalary 判断是否携带任何薪资信息
func (p *CanonicalPosting) HasSalary() bool {
	return p.SalaryMin != nil || p.SalaryMax != nil
}

// SalaryFieldCount 返回已填充的薪资字段数量，用于去重时的完整度比较
func (p *CanonicalPosting) SalaryFieldCount() int {
	n := 0
	if p.SalaryMin != nil {
		n++
	}
	if p.SalaryMax != nil {
		n++
	}
	return n
}

// MatchResult 携带一条职位记录与针对当前简历的匹配评分。
// 不变式：Score 永远等于 Breakdown 按配置权重的加权和（显示时四舍五入）。
type MatchResult struct {
	Posting CanonicalPosting `json:"posting"`

	// 0-100 综合匹配分
	Score float64 `json:"match_score"`

	// 维度名 -> 0-100 子分，目前固定为 "skills" 与 "experience"
	Breakdown map[string]float64 `json:"match_breakdown"`
}

// ResumeProfile 是从上传简历文本构建的只读画像。
// 同一次上传内不可变，重新上传时整体重建。
type ResumeProfile struct {
	RawText string `json:"raw_text"`

	// 命中技能词表后的小写技能集合
	Skills []string `json:"skills"`

	// 工作年限估计值（尽力而为，非负）
	ExperienceYears int `json:"experience_years"`

	// 标准章节存在标志
	HasContact    bool `json:"has_contact"`
	HasEducation  bool `json:"has_education"`
	HasExperience bool `json:"has_experience"`
	HasSkills     bool `json:"has_skills"`

	WordCount int `json:"word_count"`
}

// IsEmpty 判断画像是否没有任何可分析内容
func (p *ResumeProfile) IsEmpty() bool {
	return p == nil || p.WordCount == 0
}

// HasSkill 判断画像中是否包含某个小写技能词
func (p *ResumeProfile) HasSkill(skill string) bool {
	for _, s := range p.Skills {
		if s == skill {
			return true
		}
	}
	return false
}

// AtsResult ATS 兼容性分析结果，按次生成、无状态
type AtsResult struct {
	// 0-100 整数总分
	TotalScore int `json:"total_score"`

	// 由固定分数段派生的等级标签
	Grade string `json:"grade"`

	// 类别名 -> 0-100 子分
	Breakdown map[string]float64 `json:"score_breakdown"`

	// 按规则表顺序生成的优势与改进建议
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
}

// DateBucket 发布时间过滤档位
type DateBucket string

const (
	DateAny    DateBucket = "any"
	DateLast1d DateBucket = "24h"
	DateLast3d DateBucket = "3d"
	DateLast7d DateBucket = "7d"
	DateLast30 DateBucket = "30d"
)

// SortKey 排序键
type SortKey string

const (
	SortByMatchScore SortKey = "match_score"
	SortByPostedDate SortKey = "posted_date"
	SortBySalary     SortKey = "salary"
)

// SearchQuery 聚合器输入：一次外部职位搜索的参数
type SearchQuery struct {
	JobTitle    string `json:"job_title"`
	Location    string `json:"location"`
	RadiusMiles int    `json:"radius_miles"`
	MaxResults  int    `json:"max_results"`
}

// AggregateResult 聚合器输出：规范化去重后的职位集合与诊断信息
type AggregateResult struct {
	Postings []CanonicalPosting `json:"postings"`

	// 因缺失必填字段被丢弃的原始记录数（诊断用，不是错误）
	Dropped int `json:"dropped_records"`

	// 任一来源超时或失败时置位
	Partial       bool        `json:"partial_results"`
	FailedSources []SourceTag `json:"failed_sources,omitempty"`
}
