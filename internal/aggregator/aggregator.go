package aggregator

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Abdullah-Asgher/JobMatchAI/internal/dedup"
	"github.com/Abdullah-Asgher/JobMatchAI/internal/logger"
	"github.com/Abdullah-Asgher/JobMatchAI/internal/normalizer"
	"github.com/Abdullah-Asgher/JobMatchAI/internal/source"
	"github.com/Abdullah-Asgher/JobMatchAI/internal/tracing"
	"github.com/Abdullah-Asgher/JobMatchAI/internal/types"
)

// Aggregator 并发抓取全部来源，规范化并去重为统一的职位集合。
// 客户端列表的顺序决定结果的拼接顺序，同一输入的输出是确定的。
type Aggregator struct {
	clients      []source.Client
	normalizer   *normalizer.Normalizer
	deduplicator *dedup.Deduplicator
	fetchTimeout time.Duration
}

// New 创建聚合器。clients的顺序即结果的来源拼接顺序。
func New(clients []source.Client, n *normalizer.Normalizer, d *dedup.Deduplicator, fetchTimeout time.Duration) *Aggregator {
	if fetchTimeout <= 0 {
		fetchTimeout = 10 * time.Second
	}
	return &Aggregator{
		clients:      clients,
		normalizer:   n,
		deduplicator: d,
		fetchTimeout: fetchTimeout,
	}
}

// fetchOutcome 单来源抓取结果
type fetchOutcome struct {
	raws []source.RawPosting
	err  error
}

// Aggregate 执行一次聚合搜索。
// 每个来源在独立goroutine中抓取，单来源失败或超时不影响其他来源，
// 只置位Partial并记录失败来源。
func (a *Aggregator) Aggregate(ctx context.Context, query types.SearchQuery) (*types.AggregateResult, error) {
	tracer := otel.Tracer("aggregator")
	ctx, span := tracer.Start(ctx, "Aggregator.Aggregate", trace.WithAttributes(
		attribute.String("search.job_title", tracing.SafeSearchQuery(query.JobTitle)),
		attribute.String("search.location", tracing.SafeSearchQuery(query.Location)),
	))
	defer span.End()

	// 1. 并发抓取，按客户端下标写入固定位置
	outcomes := make([]fetchOutcome, len(a.clients))
	var wg sync.WaitGroup
	for i, client := range a.clients {
		wg.Add(1)
		go func(idx int, c source.Client) {
			defer wg.Done()

			fetchCtx, cancel := context.WithTimeout(ctx, a.fetchTimeout)
			defer cancel()

			raws, err := c.Fetch(fetchCtx, query)
			outcomes[idx] = fetchOutcome{raws: raws, err: err}
		}(i, client)
	}
	wg.Wait()

	// 2. 按客户端顺序拼接，保证结果顺序与并发调度无关
	var allRaws []source.RawPosting
	var failedSources []types.SourceTag
	for i, outcome := range outcomes {
		if outcome.err != nil {
			tag := a.clients[i].Name()
			failedSources = append(failedSources, tag)
			tracing.RecordError(span, outcome.err, tracing.ErrorTypeJobSource)
			logger.Ctx(ctx).Warn().
				Err(outcome.err).
				Str("source", string(tag)).
				Msg("来源抓取失败，继续处理其余来源")
			continue
		}
		allRaws = append(allRaws, outcome.raws...)
	}

	// 3. 规范化
	postings, dropped := a.normalizer.Normalize(ctx, allRaws)

	// 4. 去重
	postings = a.deduplicator.Deduplicate(ctx, postings)

	result := &types.AggregateResult{
		Postings:      postings,
		Dropped:       dropped,
		Partial:       len(failedSources) > 0,
		FailedSources: failedSources,
	}

	span.SetAttributes(
		attribute.Int("search.postings", len(postings)),
		attribute.Int("search.dropped", dropped),
		attribute.Bool("search.partial", result.Partial),
	)
	logger.Ctx(ctx).Info().
		Int("postings", len(postings)).
		Int("dropped", dropped).
		Bool("partial", result.Partial).
		Msg("聚合搜索完成")

	return result, nil
}
