package ranker

import (
	"fmt"
	"sort"
	"time"

	"github.com/Abdullah-Asgher/JobMatchAI/internal/types"
)

// Criteria 一次过滤排序请求的全部条件。
// 所有过滤条件都是可选的：零值或空集合表示该条件不生效。
type Criteria struct {
	// 合同类型白名单，为空则不过滤
	ContractTypes []types.ContractType `json:"contract_types,omitempty"`
	// 工作模式白名单，为空则不过滤
	WorkModes []types.WorkMode `json:"work_modes,omitempty"`
	// 来源白名单，为空则不过滤
	Sources []types.SourceTag `json:"sources,omitempty"`

	// 发布时间档位，空值等同于 any
	DatePosted types.DateBucket `json:"date_posted,omitempty"`

	// 年薪过滤区间（GBP），与职位薪资区间做重叠判断
	SalaryMin *float64 `json:"salary_min,omitempty"`
	SalaryMax *float64 `json:"salary_max,omitempty"`

	// 最低匹配分
	MinMatchScore *float64 `json:"min_match_score,omitempty"`

	// 最大距离（英里）
	MaxDistanceMiles *float64 `json:"max_distance_miles,omitempty"`

	// 排序键，空值默认按匹配分降序
	SortBy types.SortKey `json:"sort_by,omitempty"`
}

// Validate 校验条件中的枚举值与数值区间，边界处拒绝非法输入
func (c *Criteria) Validate() error {
	for _, ct := range c.ContractTypes {
		switch ct {
		case types.ContractFullTime, types.ContractPartTime, types.ContractContract, types.ContractInternship, types.ContractUnspecified:
		default:
			return fmt.Errorf("非法的合同类型: %q", ct)
		}
	}

	for _, wm := range c.WorkModes {
		switch wm {
		case types.WorkModeRemote, types.WorkModeHybrid, types.WorkModeOnSite, types.WorkModeUnspecified:
		default:
			return fmt.Errorf("非法的工作模式: %q", wm)
		}
	}

	for _, s := range c.Sources {
		switch s {
		case types.SourceAdzuna, types.SourceReed, types.SourceJSearch:
		default:
			return fmt.Errorf("非法的来源: %q", s)
		}
	}

	switch c.DatePosted {
	case "", types.DateAny, types.DateLast1d, types.DateLast3d, types.DateLast7d, types.DateLast30:
	default:
		return fmt.Errorf("非法的发布时间档位: %q", c.DatePosted)
	}

	switch c.SortBy {
	case "", types.SortByMatchScore, types.SortByPostedDate, types.SortBySalary:
	default:
		return fmt.Errorf("非法的排序键: %q", c.SortBy)
	}

	if c.MinMatchScore != nil && (*c.MinMatchScore < 0 || *c.MinMatchScore > 100) {
		return fmt.Errorf("最低匹配分必须在0-100之间: %.1f", *c.MinMatchScore)
	}
	if c.SalaryMin != nil && c.SalaryMax != nil && *c.SalaryMin > *c.SalaryMax {
		return fmt.Errorf("薪资过滤区间倒置: %.0f > %.0f", *c.SalaryMin, *c.SalaryMax)
	}
	if c.MaxDistanceMiles != nil && *c.MaxDistanceMiles < 0 {
		return fmt.Errorf("最大距离不能为负: %.1f", *c.MaxDistanceMiles)
	}

	return nil
}

// Ranker 对匹配结果做条件过滤与排序。无状态且并发安全。
type Ranker struct {
	// 可注入的当前时间，测试用
	now func() time.Time
}

// NewRanker 创建过滤排序器
func NewRanker() *Ranker {
	return &Ranker{now: time.Now}
}

// Rank 按条件过滤并排序匹配结果。
// 过滤条件之间是与关系；某条件生效时，对应字段未知的职位会被排除
// （用户显式要求某属性时，无法证明满足的记录不应出现）。
// 排序使用稳定排序，同分记录保持输入相对顺序。
func (r *Ranker) Rank(results []types.MatchResult, c Criteria) ([]types.MatchResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	filtered := make([]types.MatchResult, 0, len(results))
	for _, res := range results {
		if r.passes(res, c) {
			filtered = append(filtered, res)
		}
	}

	sortResults(filtered, c.SortBy)
	return filtered, nil
}

// passes 判断单条结果是否满足全部生效条件
func (r *Ranker) passes(res types.MatchResult, c Criteria) bool {
	p := res.Posting

	// 未知值在生效过滤下一律排除，除非白名单显式包含Unspecified
	if len(c.ContractTypes) > 0 && !containsContract(c.ContractTypes, p.ContractType) {
		return false
	}

	if len(c.WorkModes) > 0 && !containsWorkMode(c.WorkModes, p.WorkMode) {
		return false
	}

	if len(c.Sources) > 0 && !containsSource(c.Sources, p.Source) {
		return false
	}

	if cutoffDays, active := dateCutoffDays(c.DatePosted); active {
		if p.PostedAt == nil {
			return false
		}
		cutoff := r.now().AddDate(0, 0, -cutoffDays)
		if p.PostedAt.Before(cutoff) {
			return false
		}
	}

	if c.SalaryMin != nil || c.SalaryMax != nil {
		if !p.HasSalary() {
			return false
		}
		// 区间重叠判断
		if c.SalaryMin != nil && p.SalaryMax != nil && *p.SalaryMax < *c.SalaryMin {
			return false
		}
		if c.SalaryMax != nil && p.SalaryMin != nil && *p.SalaryMin > *c.SalaryMax {
			return false
		}
	}

	if c.MinMatchScore != nil && res.Score < *c.MinMatchScore {
		return false
	}

	if c.MaxDistanceMiles != nil {
		if p.DistanceMiles == nil {
			return false
		}
		if *p.DistanceMiles > *c.MaxDistanceMiles {
			return false
		}
	}

	return true
}

// dateCutoffDays 发布时间档位到天数的映射，返回false表示不过滤
func dateCutoffDays(bucket types.DateBucket) (int, bool) {
	switch bucket {
	case types.DateLast1d:
		return 1, true
	case types.DateLast3d:
		return 3, true
	case types.DateLast7d:
		return 7, true
	case types.DateLast30:
		return 30, true
	default:
		return 0, false
	}
}

// sortResults 按排序键稳定排序，缺失排序字段的记录排在末尾
func sortResults(results []types.MatchResult, key types.SortKey) {
	switch key {
	case types.SortByPostedDate:
		sort.SliceStable(results, func(i, j int) bool {
			a, b := results[i].Posting.PostedAt, results[j].Posting.PostedAt
			if a == nil {
				return false
			}
			if b == nil {
				return true
			}
			return a.After(*b)
		})
	case types.SortBySalary:
		sort.SliceStable(results, func(i, j int) bool {
			a, b := salarySortKey(results[i].Posting), salarySortKey(results[j].Posting)
			if a == nil {
				return false
			}
			if b == nil {
				return true
			}
			return *a > *b
		})
	default:
		// 默认按匹配分降序
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].Score > results[j].Score
		})
	}
}

// salarySortKey 薪资排序键：优先上限，缺失时用下限
func salarySortKey(p types.CanonicalPosting) *float64 {
	if p.SalaryMax != nil {
		return p.SalaryMax
	}
	return p.SalaryMin
}

func containsContract(list []types.ContractType, v types.ContractType) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func containsWorkMode(list []types.WorkMode, v types.WorkMode) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func containsSource(list []types.SourceTag, v types.SourceTag) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
