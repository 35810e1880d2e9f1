package storage

import "time"

// ApplicationTrackedMessage 首次登记申请时发布的事件
type ApplicationTrackedMessage struct {
	PostingID  string    `json:"posting_id"`
	JobTitle   string    `json:"job_title"`
	Company    string    `json:"company"`
	Source     string    `json:"source,omitempty"`
	MatchScore *float64  `json:"match_score,omitempty"`
	AppliedAt  time.Time `json:"applied_at"`
}

// ApplicationStatusChangedMessage 申请状态变更时发布的事件
type ApplicationStatusChangedMessage struct {
	PostingID  string    `json:"posting_id"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	ChangedAt  time.Time `json:"changed_at"`
	Notes      string    `json:"notes,omitempty"`
}
