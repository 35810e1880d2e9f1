package aggregator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abdullah-Asgher/JobMatchAI/internal/config"
	"github.com/Abdullah-Asgher/JobMatchAI/internal/dedup"
	"github.com/Abdullah-Asgher/JobMatchAI/internal/normalizer"
	"github.com/Abdullah-Asgher/JobMatchAI/internal/source"
	"github.com/Abdullah-Asgher/JobMatchAI/internal/types"
)

// fakeClient 测试用来源客户端桩
type fakeClient struct {
	name  types.SourceTag
	raws  []source.RawPosting
	err   error
	delay time.Duration
}

func (f *fakeClient) Name() types.SourceTag { return f.name }

func (f *fakeClient) Fetch(ctx context.Context, query types.SearchQuery) ([]source.RawPosting, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.raws, f.err
}

func raw(src types.SourceTag, id, title, company string) source.RawPosting {
	return source.RawPosting{Source: src, ExternalID: id, Title: title, Company: company}
}

func newAggregator(clients []source.Client, timeout time.Duration) *Aggregator {
	cfg := config.DefaultConfig()
	return New(
		clients,
		normalizer.NewNormalizer(cfg.Aggregator),
		dedup.NewDeduplicator(cfg.Scoring.Dedup),
		timeout,
	)
}

var testQuery = types.SearchQuery{JobTitle: "go developer", Location: "London", RadiusMiles: 20, MaxResults: 50}

// TestAggregateOrderIsDeterministic 验证结果按客户端顺序拼接，与并发调度无关
func TestAggregateOrderIsDeterministic(t *testing.T) {
	clients := []source.Client{
		// 第一个来源人为延迟，仍应排在前面
		&fakeClient{name: types.SourceAdzuna, delay: 50 * time.Millisecond, raws: []source.RawPosting{
			raw(types.SourceAdzuna, "a1", "Go Developer", "Acme"),
		}},
		&fakeClient{name: types.SourceReed, raws: []source.RawPosting{
			raw(types.SourceReed, "r1", "Rust Developer", "Beta"),
		}},
	}

	agg := newAggregator(clients, 5*time.Second)
	result, err := agg.Aggregate(context.Background(), testQuery)
	require.NoError(t, err)

	require.Len(t, result.Postings, 2)
	assert.Equal(t, types.SourceAdzuna, result.Postings[0].Source)
	assert.Equal(t, types.SourceReed, result.Postings[1].Source)
	assert.False(t, result.Partial)
	assert.Empty(t, result.FailedSources)
}

// TestAggregatePartialOnSourceFailure 验证单来源失败置位Partial且不影响其他来源
func TestAggregatePartialOnSourceFailure(t *testing.T) {
	clients := []source.Client{
		&fakeClient{name: types.SourceAdzuna, err: errors.New("boom")},
		&fakeClient{name: types.SourceReed, raws: []source.RawPosting{
			raw(types.SourceReed, "r1", "Go Developer", "Acme"),
		}},
	}

	agg := newAggregator(clients, 5*time.Second)
	result, err := agg.Aggregate(context.Background(), testQuery)
	require.NoError(t, err, "单来源失败不应让整次聚合报错")

	assert.True(t, result.Partial)
	assert.Equal(t, []types.SourceTag{types.SourceAdzuna}, result.FailedSources)
	assert.Len(t, result.Postings, 1)
}

// TestAggregateTimeoutMarksSourceFailed 验证慢来源被超时截断并记为失败
func TestAggregateTimeoutMarksSourceFailed(t *testing.T) {
	clients := []source.Client{
		&fakeClient{name: types.SourceAdzuna, delay: 2 * time.Second, raws: []source.RawPosting{
			raw(types.SourceAdzuna, "a1", "Go Developer", "Acme"),
		}},
		&fakeClient{name: types.SourceReed, raws: []source.RawPosting{
			raw(types.SourceReed, "r1", "Rust Developer", "Beta"),
		}},
	}

	agg := newAggregator(clients, 50*time.Millisecond)

	start := time.Now()
	result, err := agg.Aggregate(context.Background(), testQuery)
	require.NoError(t, err)

	assert.Less(t, time.Since(start), time.Second, "慢来源不应阻塞整次聚合")
	assert.True(t, result.Partial)
	assert.Equal(t, []types.SourceTag{types.SourceAdzuna}, result.FailedSources)
	require.Len(t, result.Postings, 1)
	assert.Equal(t, types.SourceReed, result.Postings[0].Source)
}

// TestAggregateNormalizesAndDeduplicates 验证聚合流水线串联了规范化与去重
func TestAggregateNormalizesAndDeduplicates(t *testing.T) {
	clients := []source.Client{
		&fakeClient{name: types.SourceAdzuna, raws: []source.RawPosting{
			raw(types.SourceAdzuna, "a1", "Go Developer", "Acme Ltd"),
			raw(types.SourceAdzuna, "a2", "", "Acme"), // 缺失标题，应被丢弃
		}},
		&fakeClient{name: types.SourceReed, raws: []source.RawPosting{
			raw(types.SourceReed, "r1", "Go Developer", "Acme"), // 跨来源重复
		}},
	}

	agg := newAggregator(clients, 5*time.Second)
	result, err := agg.Aggregate(context.Background(), testQuery)
	require.NoError(t, err)

	assert.Len(t, result.Postings, 1, "重复职位应被合并")
	assert.Equal(t, 1, result.Dropped, "缺失必填字段的记录应被计数")
}

// TestAggregateAllSourcesFail 验证全部来源失败时返回空集而非错误
func TestAggregateAllSourcesFail(t *testing.T) {
	clients := []source.Client{
		&fakeClient{name: types.SourceAdzuna, err: errors.New("down")},
		&fakeClient{name: types.SourceReed, err: errors.New("down too")},
	}

	agg := newAggregator(clients, time.Second)
	result, err := agg.Aggregate(context.Background(), testQuery)
	require.NoError(t, err)

	assert.Empty(t, result.Postings)
	assert.True(t, result.Partial)
	assert.Len(t, result.FailedSources, 2)
}
