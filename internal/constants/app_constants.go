package constants

import "time"

const (
	// 应用级常量
	AppName    = "jobmatchai"
	AppVersion = "1.0.0"

	// 简历画像会话缓存时长（重新上传会整体重建）
	ResumeProfileCacheDuration = 24 * time.Hour
	// 聚合搜索结果缓存时长
	SearchCacheDuration = 10 * time.Minute
	// 聚合搜索分布式锁时长
	SearchLockDuration = 2 * time.Minute
)

// 申请状态机。状态间允许任意迁移（用户录入数据，不强制协议），
// Rejected/Withdrawn 仅按惯例视为终态。
const (
	StatusApplied        = "Applied"
	StatusInterviewP1    = "Interview-Phase1"
	StatusInterviewP2    = "Interview-Phase2"
	StatusInterviewFinal = "Interview-Final"
	StatusOfferReceived  = "Offer-Received"
	StatusRejected       = "Rejected"
	StatusWithdrawn      = "Withdrawn"
)

// ValidStatuses 按展示顺序列出全部合法状态
var ValidStatuses = []string{
	StatusApplied,
	StatusInterviewP1,
	StatusInterviewP2,
	StatusInterviewFinal,
	StatusOfferReceived,
	StatusRejected,
	StatusWithdrawn,
}

// IsValidStatus 校验状态枚举值
func IsValidStatus(status string) bool {
	for _, s := range ValidStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// RabbitMQ 申请事件相关常量
const (
	ApplicationEventsExchange = "application.events.exchange"
	ApplicationTrackedKey     = "application.tracked"
	ApplicationStatusKey      = "application.status_changed"
)
