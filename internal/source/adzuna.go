package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Abdullah-Asgher/JobMatchAI/internal/config"
	"github.com/Abdullah-Asgher/JobMatchAI/internal/logger"
	"github.com/Abdullah-Asgher/JobMatchAI/internal/types"
)

// AdzunaClient Adzuna平台抓取客户端
type AdzunaClient struct {
	appID      string
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewAdzunaClient 创建Adzuna客户端
func NewAdzunaClient(cfg config.SourceConfig, timeout time.Duration) *AdzunaClient {
	return &AdzunaClient{
		appID:      cfg.AppID,
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		httpClient: newHTTPClient(timeout),
	}
}

// adzunaResponse Adzuna搜索响应结构
type adzunaResponse struct {
	Results []adzunaJob `json:"results"`
}

// adzunaJob Adzuna单条职位结构
type adzunaJob struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Company struct {
		DisplayName string `json:"display_name"`
	} `json:"company"`
	Location struct {
		DisplayName string `json:"display_name"`
	} `json:"location"`
	Description  string   `json:"description"`
	SalaryMin    *float64 `json:"salary_min"`
	SalaryMax    *float64 `json:"salary_max"`
	ContractType string   `json:"contract_type"`
	Created      string   `json:"created"`
	RedirectURL  string   `json:"redirect_url"`
}

// Name 返回来源标签
func (c *AdzunaClient) Name() types.SourceTag {
	return types.SourceAdzuna
}

// Fetch 从Adzuna抓取职位。凭证缺失时返回空列表。
func (c *AdzunaClient) Fetch(ctx context.Context, query types.SearchQuery) ([]RawPosting, error) {
	if c.appID == "" || c.apiKey == "" {
		logger.Ctx(ctx).Warn().Msg("Adzuna凭证未配置，跳过该来源")
		return nil, nil
	}

	// 每页最多50条
	perPage := query.MaxResults
	if perPage > 50 || perPage <= 0 {
		perPage = 50
	}

	params := url.Values{}
	params.Set("app_id", c.appID)
	params.Set("app_key", c.apiKey)
	params.Set("what", query.JobTitle)
	params.Set("where", query.Location)
	params.Set("distance", strconv.Itoa(query.RadiusMiles))
	params.Set("results_per_page", strconv.Itoa(perPage))
	params.Set("content-type", "application/json")

	// Adzuna搜索端点为 {base}/1?... （第1页）
	reqURL := fmt.Sprintf("%s/1?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("创建Adzuna请求失败: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("调用Adzuna API失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取Adzuna响应失败: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Adzuna API调用失败, 状态码: %d, 响应: %s", resp.StatusCode, string(body))
	}

	var parsed adzunaResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("解析Adzuna响应JSON失败: %w", err)
	}

	postings := make([]RawPosting, 0, len(parsed.Results))
	for _, job := range parsed.Results {
		location := job.Location.DisplayName
		if location == "" {
			location = query.Location
		}
		postings = append(postings, RawPosting{
			Source:          types.SourceAdzuna,
			ExternalID:      job.ID,
			Title:           job.Title,
			Company:         job.Company.DisplayName,
			Location:        location,
			Description:     job.Description,
			SalaryMin:       job.SalaryMin,
			SalaryMax:       job.SalaryMax,
			Currency:        "GBP",
			ContractTypeRaw: job.ContractType,
			CreatedRaw:      job.Created,
			ApplyURL:        job.RedirectURL,
			// Adzuna不返回距离
			DistanceMiles: nil,
		})
	}

	logger.Ctx(ctx).Debug().Int("count", len(postings)).Msg("Adzuna抓取完成")
	return postings, nil
}
