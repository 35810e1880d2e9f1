package handler

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/Abdullah-Asgher/JobMatchAI/internal/aggregator"
	"github.com/Abdullah-Asgher/JobMatchAI/internal/config"
	"github.com/Abdullah-Asgher/JobMatchAI/internal/constants"
	"github.com/Abdullah-Asgher/JobMatchAI/internal/logger"
	"github.com/Abdullah-Asgher/JobMatchAI/internal/matcher"
	"github.com/Abdullah-Asgher/JobMatchAI/internal/ranker"
	"github.com/Abdullah-Asgher/JobMatchAI/internal/storage"
	"github.com/Abdullah-Asgher/JobMatchAI/internal/types"
)

// JobSearchHandler 负责聚合职位搜索请求
type JobSearchHandler struct {
	cfg        *config.Config
	storage    *storage.Storage
	aggregator *aggregator.Aggregator
	matcher    *matcher.Matcher
	ranker     *ranker.Ranker
	resumes    *ResumeHandler
}

// NewJobSearchHandler 创建一个新的 JobSearchHandler 实例
func NewJobSearchHandler(cfg *config.Config, storage *storage.Storage, agg *aggregator.Aggregator, resumes *ResumeHandler) *JobSearchHandler {
	return &JobSearchHandler{
		cfg:        cfg,
		storage:    storage,
		aggregator: agg,
		matcher:    matcher.NewMatcher(cfg.Scoring.Match),
		ranker:     ranker.NewRanker(),
		resumes:    resumes,
	}
}

// SearchRequest 聚合搜索请求体
type SearchRequest struct {
	JobTitle    string          `json:"job_title"`
	Location    string          `json:"location"`
	RadiusMiles int             `json:"radius_miles,omitempty"`
	MaxResults  int             `json:"max_results,omitempty"`
	ResumeID    string          `json:"resume_id,omitempty"`
	Criteria    ranker.Criteria `json:"criteria,omitempty"`
}

// HandleJobSearch 处理聚合职位搜索请求。
// POST /api/v1/jobs/search
// 聚合结果按查询参数缓存；匹配与过滤排序在缓存之外每次执行，
// 同一份聚合快照可以用不同简历和条件反复筛选。
func (h *JobSearchHandler) HandleJobSearch(ctx context.Context, c *app.RequestContext) {
	var req SearchRequest
	if err := json.Unmarshal(c.Request.Body(), &req); err != nil {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "请求体解析失败"})
		return
	}
	if req.JobTitle == "" {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "job_title 不能为空"})
		return
	}
	if req.RadiusMiles <= 0 {
		req.RadiusMiles = 20
	}
	if req.MaxResults <= 0 || req.MaxResults > h.cfg.Aggregator.MaxResultsPerSource {
		req.MaxResults = h.cfg.Aggregator.MaxResultsPerSource
	}

	query := types.SearchQuery{
		JobTitle:    req.JobTitle,
		Location:    req.Location,
		RadiusMiles: req.RadiusMiles,
		MaxResults:  req.MaxResults,
	}

	result, fromCache, err := h.aggregateWithCache(ctx, query)
	if err != nil {
		c.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
		return
	}
	if result == nil {
		// 其他请求正在执行相同搜索
		c.JSON(consts.StatusAccepted, utils.H{
			"message":     "搜索请求正在处理中，请稍后重试",
			"status":      "processing",
			"retry_after": 2,
		})
		return
	}

	// 简历画像：未提供简历时用空画像，技能分为0
	var p *types.ResumeProfile
	if req.ResumeID != "" {
		p, err = h.resumes.loadProfile(ctx, req.ResumeID)
		if err != nil {
			c.JSON(consts.StatusNotFound, utils.H{"error": "简历不存在或已过期"})
			return
		}
	} else {
		p = &types.ResumeProfile{}
	}

	matches := h.matcher.Match(ctx, p, result.Postings)
	ranked, err := h.ranker.Rank(matches, req.Criteria)
	if err != nil {
		c.JSON(consts.StatusBadRequest, utils.H{"error": err.Error()})
		return
	}

	c.JSON(consts.StatusOK, utils.H{
		"message":        "搜索成功",
		"data":           ranked,
		"total_count":    len(ranked),
		"dropped":        result.Dropped,
		"partial":        result.Partial,
		"failed_sources": result.FailedSources,
		"cached":         fromCache,
	})
}

// aggregateWithCache 带缓存与分布式锁的聚合搜索。
// 返回 (nil, false, nil) 表示锁被占用，调用方应返回处理中。
func (h *JobSearchHandler) aggregateWithCache(ctx context.Context, query types.SearchQuery) (*types.AggregateResult, bool, error) {
	queryHash := hashQuery(query)

	if h.storage.Redis != nil {
		cached, err := h.storage.Redis.GetCachedSearchResults(ctx, queryHash)
		if err == nil {
			logger.Ctx(ctx).Info().Str("query_hash", queryHash).Msg("聚合搜索缓存命中")
			return cached, true, nil
		}
		if err != storage.ErrNotFound {
			logger.Ctx(ctx).Warn().Err(err).Msg("读取搜索缓存失败")
		}

		// 分布式锁避免并发执行相同的外部聚合
		lockKey := fmt.Sprintf(constants.KeySearchLock, queryHash)
		lockValue, err := h.storage.Redis.AcquireLock(ctx, lockKey, constants.SearchLockDuration)
		if err != nil {
			logger.Ctx(ctx).Warn().Err(err).Msg("获取搜索锁失败，继续执行可能导致重复抓取")
		} else if lockValue == "" {
			return nil, false, nil
		} else {
			defer func() {
				if released, err := h.storage.Redis.ReleaseLock(ctx, lockKey, lockValue); err != nil || !released {
					logger.Ctx(ctx).Warn().Err(err).Bool("released", released).Msg("释放搜索锁失败")
				}
			}()
		}
	}

	result, err := h.aggregator.Aggregate(ctx, query)
	if err != nil {
		return nil, false, err
	}

	if h.storage.Redis != nil {
		if err := h.storage.Redis.CacheSearchResults(ctx, queryHash, result); err != nil {
			// 只记录日志，不阻塞主流程
			logger.Ctx(ctx).Warn().Err(err).Msg("写入搜索缓存失败")
		}
	}
	return result, false, nil
}

// hashQuery 由查询参数生成确定的缓存键
func hashQuery(query types.SearchQuery) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%d|%d",
		query.JobTitle, query.Location, query.RadiusMiles, query.MaxResults)))
	return hex.EncodeToString(sum[:])[:16]
}
