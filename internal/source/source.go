package source

import (
	"context"
	"net/http"
	"time"

	"github.com/Abdullah-Asgher/JobMatchAI/internal/types"
)

// RawPosting 是来源客户端抓取后、规范化之前的中间记录。
// 字段保持各平台的原始语义，映射与清洗由 normalizer 统一完成。
type RawPosting struct {
	Source     types.SourceTag
	ExternalID string

	Title       string
	Company     string
	Location    string
	Description string

	SalaryMin *float64
	SalaryMax *float64
	// 薪资货币代码，由客户端按平台约定填写
	Currency string

	// 平台原始合同类型文本，如 "permanent"、"FULLTIME"
	ContractTypeRaw string

	// 平台原始发布时间文本，格式因平台而异
	CreatedRaw string

	ApplyURL      string
	DistanceMiles *float64
}

// Client 是单个外部职位平台的抓取客户端
type Client interface {
	// Name 返回来源标签
	Name() types.SourceTag

	// Fetch 按查询抓取原始职位列表。凭证缺失时返回空列表而非错误。
	Fetch(ctx context.Context, query types.SearchQuery) ([]RawPosting, error)
}

// newHTTPClient 创建带超时的HTTP客户端，所有来源客户端共用此设置
func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{Timeout: timeout}
}
