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

// ReedClient Reed平台抓取客户端
type ReedClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewReedClient 创建Reed客户端
func NewReedClient(cfg config.SourceConfig, timeout time.Duration) *ReedClient {
	return &ReedClient{
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		httpClient: newHTTPClient(timeout),
	}
}

// reedResponse Reed搜索响应结构
type reedResponse struct {
	Results []reedJob `json:"results"`
}

// reedJob Reed单条职位结构
type reedJob struct {
	JobID          json.Number `json:"jobId"`
	JobTitle       string      `json:"jobTitle"`
	EmployerName   string      `json:"employerName"`
	LocationName   string      `json:"locationName"`
	JobDescription string      `json:"jobDescription"`
	MinimumSalary  *float64    `json:"minimumSalary"`
	MaximumSalary  *float64    `json:"maximumSalary"`
	ContractType   string      `json:"contractType"`
	Date           string      `json:"date"`
	JobURL         string      `json:"jobUrl"`
	Distance       *float64    `json:"distance"`
}

// Name 返回来源标签
func (c *ReedClient) Name() types.SourceTag {
	return types.SourceReed
}

// Fetch 从Reed抓取职位。凭证缺失时返回空列表。
func (c *ReedClient) Fetch(ctx context.Context, query types.SearchQuery) ([]RawPosting, error) {
	if c.apiKey == "" {
		logger.Ctx(ctx).Warn().Msg("Reed凭证未配置，跳过该来源")
		return nil, nil
	}

	// 单次最多100条
	take := query.MaxResults
	if take > 100 || take <= 0 {
		take = 100
	}

	params := url.Values{}
	params.Set("keywords", query.JobTitle)
	params.Set("location", query.Location)
	params.Set("distancefromlocation", strconv.Itoa(query.RadiusMiles))
	params.Set("resultsToTake", strconv.Itoa(take))

	reqURL := fmt.Sprintf("%s?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("创建Reed请求失败: %w", err)
	}
	// Reed使用API Key作为Basic凭证
	req.Header.Set("Authorization", "Basic "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("调用Reed API失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取Reed响应失败: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Reed API调用失败, 状态码: %d, 响应: %s", resp.StatusCode, string(body))
	}

	var parsed reedResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("解析Reed响应JSON失败: %w", err)
	}

	postings := make([]RawPosting, 0, len(parsed.Results))
	for _, job := range parsed.Results {
		location := job.LocationName
		if location == "" {
			location = query.Location
		}
		postings = append(postings, RawPosting{
			Source:          types.SourceReed,
			ExternalID:      job.JobID.String(),
			Title:           job.JobTitle,
			Company:         job.EmployerName,
			Location:        location,
			Description:     job.JobDescription,
			SalaryMin:       job.MinimumSalary,
			SalaryMax:       job.MaximumSalary,
			Currency:        "GBP",
			ContractTypeRaw: job.ContractType,
			CreatedRaw:      job.Date,
			ApplyURL:        job.JobURL,
			DistanceMiles:   job.Distance,
		})
	}

	logger.Ctx(ctx).Debug().Int("count", len(postings)).Msg("Reed抓取完成")
	return postings, nil
}
