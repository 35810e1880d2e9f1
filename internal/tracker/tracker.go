package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/Abdullah-Asgher/JobMatchAI/internal/config"
	"github.com/Abdullah-Asgher/JobMatchAI/internal/constants"
	"github.com/Abdullah-Asgher/JobMatchAI/internal/logger"
	"github.com/Abdullah-Asgher/JobMatchAI/internal/storage"
	"github.com/Abdullah-Asgher/JobMatchAI/internal/storage/models"
	"github.com/Abdullah-Asgher/JobMatchAI/internal/types"
)

var trackerTracer = otel.Tracer("jobmatchai/tracker")

// Service 申请跟踪服务。
// 登记与状态变更的业务写入和事件落库在同一事务中完成，
// 事件由outbox中继异步投递。
type Service struct {
	mysql *storage.MySQL
	mqCfg *config.RabbitMQConfig
	now   func() time.Time
}

// NewService 创建申请跟踪服务
func NewService(mysql *storage.MySQL, mqCfg *config.RabbitMQConfig) *Service {
	return &Service{
		mysql: mysql,
		mqCfg: mqCfg,
		now:   time.Now,
	}
}

// Track 登记一次职位申请。以职位规范ID幂等：
// 重复登记返回已有记录且不覆盖任何字段、不发布事件。
// 返回记录与是否为首次登记。
func (s *Service) Track(ctx context.Context, posting types.CanonicalPosting, matchScore *float64, notes string) (*models.ApplicationRecord, bool, error) {
	ctx, span := trackerTracer.Start(ctx, "Tracker.Track", trace.WithAttributes(
		attribute.String("application.posting_id", posting.ID),
	))
	defer span.End()

	if posting.ID == "" {
		return nil, false, fmt.Errorf("职位ID不能为空")
	}

	now := s.now()
	record := &models.ApplicationRecord{
		PostingID:  posting.ID,
		JobTitle:   posting.Title,
		Company:    posting.Company,
		Location:   posting.Location,
		Source:     string(posting.Source),
		ApplyURL:   posting.ApplyURL,
		MatchScore: matchScore,
		SalaryMin:  posting.SalaryMin,
		SalaryMax:  posting.SalaryMax,
		Status:     constants.StatusApplied,
		AppliedAt:  now,
		PostedAt:   posting.PostedAt,
		Notes:      notes,
	}
	if err := record.AppendHistory(constants.StatusApplied, now); err != nil {
		return nil, false, fmt.Errorf("编码状态历史失败: %w", err)
	}

	var inserted bool
	err := s.mysql.DB().Transaction(func(tx *gorm.DB) error {
		var txErr error
		inserted, txErr = s.mysql.InsertApplicationIdempotent(ctx, tx, record)
		if txErr != nil {
			return txErr
		}
		if !inserted {
			return nil
		}
		// 首次登记才发布事件
		return s.enqueueEvent(ctx, tx, posting.ID, s.mqCfg.TrackedRoutingKey, storage.ApplicationTrackedMessage{
			PostingID:  posting.ID,
			JobTitle:   posting.Title,
			Company:    posting.Company,
			Source:     string(posting.Source),
			MatchScore: matchScore,
			AppliedAt:  now,
		})
	})
	if err != nil {
		return nil, false, fmt.Errorf("登记申请失败: %w", err)
	}

	if !inserted {
		// 重复登记只刷新时间戳，返回已有记录
		existing, err := s.mysql.GetApplicationByID(ctx, nil, posting.ID)
		if err != nil {
			return nil, false, fmt.Errorf("查询已有申请记录失败: %w", err)
		}
		span.SetAttributes(attribute.Bool("application.duplicate", true))
		return existing, false, nil
	}

	logger.Ctx(ctx).Info().
		Str("posting_id", posting.ID).
		Str("company", posting.Company).
		Msg("已登记职位申请")
	return record, true, nil
}

// UpdateStatus 更新申请状态并追加历史。
// 状态间允许任意迁移，仅校验枚举值合法。
func (s *Service) UpdateStatus(ctx context.Context, postingID, status, notes string) (*models.ApplicationRecord, error) {
	ctx, span := trackerTracer.Start(ctx, "Tracker.UpdateStatus", trace.WithAttributes(
		attribute.String("application.posting_id", postingID),
		attribute.String("application.status", status),
	))
	defer span.End()

	if !constants.IsValidStatus(status) {
		return nil, fmt.Errorf("非法的申请状态: %q", status)
	}

	var record *models.ApplicationRecord
	now := s.now()
	err := s.mysql.DB().Transaction(func(tx *gorm.DB) error {
		var txErr error
		record, txErr = s.mysql.GetApplicationByID(ctx, tx, postingID)
		if txErr != nil {
			return txErr
		}

		fromStatus := record.Status
		record.Status = status
		if notes != "" {
			record.Notes = notes
		}
		if txErr := record.AppendHistory(status, now); txErr != nil {
			return fmt.Errorf("编码状态历史失败: %w", txErr)
		}
		if txErr := s.mysql.UpdateApplicationStatus(ctx, tx, record); txErr != nil {
			return txErr
		}

		return s.enqueueEvent(ctx, tx, postingID, s.mqCfg.StatusRoutingKey, storage.ApplicationStatusChangedMessage{
			PostingID:  postingID,
			FromStatus: fromStatus,
			ToStatus:   status,
			ChangedAt:  now,
			Notes:      notes,
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Ctx(ctx).Info().
		Str("posting_id", postingID).
		Str("status", status).
		Msg("已更新申请状态")
	return record, nil
}

// enqueueEvent 在事务中落库一条outbox事件
func (s *Service) enqueueEvent(ctx context.Context, tx *gorm.DB, aggregateID, routingKey string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("序列化事件失败: %w", err)
	}
	return s.mysql.CreateOutboxMessage(ctx, tx, &models.OutboxMessage{
		AggregateID:      aggregateID,
		EventType:        routingKey,
		Payload:          string(data),
		TargetExchange:   s.mqCfg.ApplicationEventsExchange,
		TargetRoutingKey: routingKey,
	})
}

// CheckApplied 检查某职位是否已登记申请
func (s *Service) CheckApplied(ctx context.Context, postingID string) (bool, error) {
	return s.mysql.ApplicationExists(ctx, postingID)
}

// Get 获取单条申请记录
func (s *Service) Get(ctx context.Context, postingID string) (*models.ApplicationRecord, error) {
	return s.mysql.GetApplicationByID(ctx, nil, postingID)
}

// List 按登记时间倒序列出申请记录
func (s *Service) List(ctx context.Context, status string, limit, offset int) ([]models.ApplicationRecord, int64, error) {
	if status != "" && !constants.IsValidStatus(status) {
		return nil, 0, fmt.Errorf("非法的申请状态: %q", status)
	}
	return s.mysql.ListApplications(ctx, status, limit, offset)
}

// Stats 生成申请统计汇总
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	records, err := s.mysql.ListAllApplications(ctx)
	if err != nil {
		return nil, err
	}
	return ComputeStats(records, s.now()), nil
}

// DateCount 某一天的申请数
type DateCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// RangeCount 某一匹配分档位的申请数
type RangeCount struct {
	Range string `json:"range"`
	Count int    `json:"count"`
}

// CompanyCount 某公司的申请数
type CompanyCount struct {
	Company string `json:"company"`
	Count   int    `json:"count"`
}

// Stats 申请统计汇总
type Stats struct {
	TotalApplications      int            `json:"total_applications"`
	AvgMatchScore          float64        `json:"avg_match_score"`
	LastApplied            *time.Time     `json:"last_applied,omitempty"`
	ByStatus               map[string]int `json:"by_status"`
	BySource               map[string]int `json:"by_source"`
	ApplicationsOverTime   []DateCount    `json:"applications_over_time"`
	MatchScoreDistribution []RangeCount   `json:"match_score_distribution"`
	TopCompanies           []CompanyCount `json:"top_companies"`
}

// 匹配分档位，按展示顺序
var scoreRanges = []struct {
	label string
	min   float64
}{
	{"90-100%", 90},
	{"80-89%", 80},
	{"70-79%", 70},
	{"Below 70%", -1},
}

// ComputeStats 从申请记录计算统计汇总。纯函数，不访问数据库。
func ComputeStats(records []models.ApplicationRecord, now time.Time) *Stats {
	stats := &Stats{
		TotalApplications: len(records),
		ByStatus:          make(map[string]int),
		BySource:          make(map[string]int),
	}

	var scoreSum float64
	var scoreCount int
	var lastApplied time.Time
	dayCounts := make(map[string]int)
	rangeCounts := make(map[string]int)
	companyCounts := make(map[string]int)
	weekCutoff := now.AddDate(0, 0, -7)

	for _, r := range records {
		stats.ByStatus[r.Status]++
		stats.BySource[r.Source]++
		companyCounts[r.Company]++

		if r.MatchScore != nil {
			scoreSum += *r.MatchScore
			scoreCount++
			for _, sr := range scoreRanges {
				if *r.MatchScore >= sr.min {
					rangeCounts[sr.label]++
					break
				}
			}
		}

		if r.AppliedAt.After(lastApplied) {
			lastApplied = r.AppliedAt
		}
		if !r.AppliedAt.Before(weekCutoff) {
			dayCounts[r.AppliedAt.Format("2006-01-02")]++
		}
	}

	if scoreCount > 0 {
		// 保留一位小数
		stats.AvgMatchScore = math.Round(scoreSum/float64(scoreCount)*10) / 10
	}
	if !lastApplied.IsZero() {
		stats.LastApplied = &lastApplied
	}

	// 最近7天的每日申请数，按日期升序
	days := make([]string, 0, len(dayCounts))
	for day := range dayCounts {
		days = append(days, day)
	}
	sort.Strings(days)
	for _, day := range days {
		stats.ApplicationsOverTime = append(stats.ApplicationsOverTime, DateCount{Date: day, Count: dayCounts[day]})
	}

	// 匹配分分布，只输出非空档位
	for _, sr := range scoreRanges {
		if count := rangeCounts[sr.label]; count > 0 {
			stats.MatchScoreDistribution = append(stats.MatchScoreDistribution, RangeCount{Range: sr.label, Count: count})
		}
	}

	// 申请最多的前5家公司，数量相同时按公司名排序保证稳定
	companies := make([]CompanyCount, 0, len(companyCounts))
	for company, count := range companyCounts {
		companies = append(companies, CompanyCount{Company: company, Count: count})
	}
	sort.Slice(companies, func(i, j int) bool {
		if companies[i].Count != companies[j].Count {
			return companies[i].Count > companies[j].Count
		}
		return companies[i].Company < companies[j].Company
	})
	if len(companies) > 5 {
		companies = companies[:5]
	}
	stats.TopCompanies = companies

	return stats
}
