package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/Abdullah-Asgher/JobMatchAI/internal/config"
	"github.com/Abdullah-Asgher/JobMatchAI/internal/logger"
	"github.com/Abdullah-Asgher/JobMatchAI/internal/types"
)

// JSearchClient JSearch (RapidAPI) 平台抓取客户端
type JSearchClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewJSearchClient 创建JSearch客户端
func NewJSearchClient(cfg config.SourceConfig, timeout time.Duration) *JSearchClient {
	return &JSearchClient{
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		httpClient: newHTTPClient(timeout),
	}
}

// jsearchResponse JSearch搜索响应结构
type jsearchResponse struct {
	Data []jsearchJob `json:"data"`
}

// jsearchJob JSearch单条职位结构
type jsearchJob struct {
	JobID        string `json:"job_id"`
	JobTitle     string `json:"job_title"`
	EmployerName string `json:"employer_name"`
	JobCity      string `json:"job_city"`
	JobDesc      string `json:"job_description"`
	JobSalary    *struct {
		MinSalary *float64 `json:"min_salary"`
		MaxSalary *float64 `json:"max_salary"`
	} `json:"job_salary"`
	JobEmploymentType string `json:"job_employment_type"`
	JobPostedAtUTC    string `json:"job_posted_at_datetime_utc"`
	JobApplyLink      string `json:"job_apply_link"`
	JobIsRemote       bool   `json:"job_is_remote"`
	JobSalaryCurrency string `json:"job_salary_currency"`
}

// Name 返回来源标签
func (c *JSearchClient) Name() types.SourceTag {
	return types.SourceJSearch
}

// Fetch 从JSearch抓取职位。凭证缺失时返回空列表。
// JSearch不支持半径参数，位置直接拼接进查询文本。
func (c *JSearchClient) Fetch(ctx context.Context, query types.SearchQuery) ([]RawPosting, error) {
	if c.apiKey == "" {
		logger.Ctx(ctx).Warn().Msg("JSearch凭证未配置，跳过该来源")
		return nil, nil
	}

	params := url.Values{}
	params.Set("query", fmt.Sprintf("%s in %s", query.JobTitle, query.Location))
	params.Set("page", "1")
	params.Set("num_pages", "1")
	params.Set("date_posted", "all")

	reqURL := fmt.Sprintf("%s?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("创建JSearch请求失败: %w", err)
	}
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", "jsearch.p.rapidapi.com")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("调用JSearch API失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取JSearch响应失败: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("JSearch API调用失败, 状态码: %d, 响应: %s", resp.StatusCode, string(body))
	}

	var parsed jsearchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("解析JSearch响应JSON失败: %w", err)
	}

	jobs := parsed.Data
	if query.MaxResults > 0 && len(jobs) > query.MaxResults {
		jobs = jobs[:query.MaxResults]
	}

	postings := make([]RawPosting, 0, len(jobs))
	for _, job := range jobs {
		location := job.JobCity
		if location == "" {
			location = query.Location
		}

		var salaryMin, salaryMax *float64
		if job.JobSalary != nil {
			salaryMin = job.JobSalary.MinSalary
			salaryMax = job.JobSalary.MaxSalary
		}

		// JSearch覆盖全球职位，未标注货币时按USD处理
		currency := job.JobSalaryCurrency
		if currency == "" {
			currency = "USD"
		}

		contractType := job.JobEmploymentType
		if job.JobIsRemote {
			// 远程标志拼入合同类型文本，供规范化阶段推断工作模式
			contractType += " remote"
		}

		postings = append(postings, RawPosting{
			Source:          types.SourceJSearch,
			ExternalID:      job.JobID,
			Title:           job.JobTitle,
			Company:         job.EmployerName,
			Location:        location,
			Description:     job.JobDesc,
			SalaryMin:       salaryMin,
			SalaryMax:       salaryMax,
			Currency:        currency,
			ContractTypeRaw: contractType,
			CreatedRaw:      job.JobPostedAtUTC,
			ApplyURL:        job.JobApplyLink,
			DistanceMiles:   nil,
		})
	}

	logger.Ctx(ctx).Debug().Int("count", len(postings)).Msg("JSearch抓取完成")
	return postings, nil
}
