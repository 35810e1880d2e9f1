package tracker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abdullah-Asgher/JobMatchAI/internal/constants"
	"github.com/Abdullah-Asgher/JobMatchAI/internal/storage/models"
)

var statsNow = time.Date(2025, 6, 20, 12, 0, 0, 0, time.UTC)

func app(company, source, status string, score *float64, appliedDaysAgo int) models.ApplicationRecord {
	return models.ApplicationRecord{
		PostingID:  company + "-" + source,
		JobTitle:   "Engineer",
		Company:    company,
		Source:     source,
		Status:     status,
		MatchScore: score,
		AppliedAt:  statsNow.AddDate(0, 0, -appliedDaysAgo),
	}
}

func score(f float64) *float64 { return &f }

// TestComputeStatsEmpty 验证空记录集的统计汇总
func TestComputeStatsEmpty(t *testing.T) {
	stats := ComputeStats(nil, statsNow)

	assert.Equal(t, 0, stats.TotalApplications)
	assert.Equal(t, 0.0, stats.AvgMatchScore)
	assert.Nil(t, stats.LastApplied)
	assert.Empty(t, stats.ApplicationsOverTime)
	assert.Empty(t, stats.MatchScoreDistribution)
	assert.Empty(t, stats.TopCompanies)
}

// TestComputeStatsAggregation 验证总数、均分、来源与状态分布
func TestComputeStatsAggregation(t *testing.T) {
	records := []models.ApplicationRecord{
		app("Acme", "adzuna", constants.StatusApplied, score(92), 1),
		app("Beta", "reed", constants.StatusInterviewP1, score(81), 2),
		app("Acme", "jsearch", constants.StatusRejected, score(75), 3),
		app("Gamma", "adzuna", constants.StatusApplied, nil, 4), // 无匹配分，不计入均分
	}

	stats := ComputeStats(records, statsNow)

	assert.Equal(t, 4, stats.TotalApplications)
	// (92+81+75)/3 = 82.666... -> 82.7
	assert.Equal(t, 82.7, stats.AvgMatchScore)
	assert.Equal(t, 2, stats.BySource["adzuna"])
	assert.Equal(t, 1, stats.BySource["reed"])
	assert.Equal(t, 2, stats.ByStatus[constants.StatusApplied])
	require.NotNil(t, stats.LastApplied)
	assert.Equal(t, statsNow.AddDate(0, 0, -1), *stats.LastApplied)
}

// TestComputeStatsScoreDistribution 验证匹配分档位划分，空档位不输出
func TestComputeStatsScoreDistribution(t *testing.T) {
	records := []models.ApplicationRecord{
		app("A", "adzuna", constants.StatusApplied, score(95), 1),
		app("B", "adzuna", constants.StatusApplied, score(90), 1),
		app("C", "adzuna", constants.StatusApplied, score(72), 1),
		app("D", "adzuna", constants.StatusApplied, score(40), 1),
	}

	stats := ComputeStats(records, statsNow)

	require.Len(t, stats.MatchScoreDistribution, 3, "80-89%档位为空，不应出现")
	assert.Equal(t, RangeCount{Range: "90-100%", Count: 2}, stats.MatchScoreDistribution[0])
	assert.Equal(t, RangeCount{Range: "70-79%", Count: 1}, stats.MatchScoreDistribution[1])
	assert.Equal(t, RangeCount{Range: "Below 70%", Count: 1}, stats.MatchScoreDistribution[2])
}

// TestComputeStatsOverTime 验证只统计最近7天且按日期升序
func TestComputeStatsOverTime(t *testing.T) {
	records := []models.ApplicationRecord{
		app("A", "adzuna", constants.StatusApplied, nil, 1),
		app("B", "adzuna", constants.StatusApplied, nil, 1),
		app("C", "adzuna", constants.StatusApplied, nil, 3),
		app("D", "adzuna", constants.StatusApplied, nil, 10), // 超过7天，不计入
	}

	stats := ComputeStats(records, statsNow)

	require.Len(t, stats.ApplicationsOverTime, 2)
	assert.Equal(t, DateCount{Date: "2025-06-17", Count: 1}, stats.ApplicationsOverTime[0])
	assert.Equal(t, DateCount{Date: "2025-06-19", Count: 2}, stats.ApplicationsOverTime[1])
}

// TestComputeStatsTopCompanies 验证公司榜最多5家，数量相同时按名称排序
func TestComputeStatsTopCompanies(t *testing.T) {
	var records []models.ApplicationRecord
	for i, company := range []string{"A", "B", "C", "D", "E", "F"} {
		records = append(records, app(company, "adzuna", constants.StatusApplied, nil, i+1))
	}
	// A再追加两条，B追加一条
	records = append(records,
		app("A", "reed", constants.StatusApplied, nil, 1),
		app("A", "jsearch", constants.StatusApplied, nil, 1),
		app("B", "reed", constants.StatusApplied, nil, 1),
	)

	stats := ComputeStats(records, statsNow)

	require.Len(t, stats.TopCompanies, 5)
	assert.Equal(t, CompanyCount{Company: "A", Count: 3}, stats.TopCompanies[0])
	assert.Equal(t, CompanyCount{Company: "B", Count: 2}, stats.TopCompanies[1])
	// C/D/E/F各1条，按名称排序取前三
	assert.Equal(t, "C", stats.TopCompanies[2].Company)
	assert.Equal(t, "D", stats.TopCompanies[3].Company)
	assert.Equal(t, "E", stats.TopCompanies[4].Company)
}

// TestApplicationRecordHistory 验证状态历史的编码与追加
func TestApplicationRecordHistory(t *testing.T) {
	record := models.ApplicationRecord{PostingID: "p1"}
	assert.Empty(t, record.History())

	t1 := statsNow
	t2 := statsNow.Add(time.Hour)
	require.NoError(t, record.AppendHistory(constants.StatusApplied, t1))
	require.NoError(t, record.AppendHistory(constants.StatusInterviewP1, t2))

	history := record.History()
	require.Len(t, history, 2)
	assert.Equal(t, constants.StatusApplied, history[0].Status)
	assert.Equal(t, constants.StatusInterviewP1, history[1].Status)
	assert.True(t, history[1].ChangedAt.Equal(t2))
}

// TestStatusValidation 验证状态枚举校验
func TestStatusValidation(t *testing.T) {
	for _, s := range constants.ValidStatuses {
		assert.True(t, constants.IsValidStatus(s), s)
	}
	assert.False(t, constants.IsValidStatus("Ghosted"))
	assert.False(t, constants.IsValidStatus(""))
	assert.False(t, constants.IsValidStatus("applied"), "状态区分大小写")
}
