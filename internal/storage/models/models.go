package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// ApplicationRecord 申请跟踪主表。
// 以职位的规范ID为主键，同一职位重复登记时幂等更新。
type ApplicationRecord struct {
	PostingID  string     `gorm:"type:char(16);primaryKey"`
	JobTitle   string     `gorm:"type:varchar(255);not null"`
	Company    string     `gorm:"type:varchar(255);not null"`
	Location   string     `gorm:"type:varchar(255)"`
	Source     string     `gorm:"type:varchar(50);index:idx_applications_source"`
	ApplyURL   string     `gorm:"type:varchar(1024)"`
	MatchScore *float64   `gorm:"type:float"`
	SalaryMin  *float64   `gorm:"type:float"`
	SalaryMax  *float64   `gorm:"type:float"`
	Status     string     `gorm:"type:varchar(50);default:'Applied';index:idx_applications_status"`
	AppliedAt  time.Time  `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);index:idx_applications_applied_at"`
	PostedAt   *time.Time `gorm:"type:datetime(6)"`
	// 状态变更历史，JSON数组 [{status, changed_at}]
	StatusHistoryJSON datatypes.JSON `gorm:"type:json"`
	Notes             string         `gorm:"type:text"`
	CreatedAt         time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
	UpdatedAt         time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime"`
}

func (ApplicationRecord) TableName() string {
	return "application_records"
}

// StatusChange 状态历史中的单条记录
type StatusChange struct {
	Status    string    `json:"status"`
	ChangedAt time.Time `json:"changed_at"`
}

// History 解码状态历史，解码失败时返回空切片
func (a *ApplicationRecord) History() []StatusChange {
	if len(a.StatusHistoryJSON) == 0 {
		return nil
	}
	var history []StatusChange
	if err := json.Unmarshal(a.StatusHistoryJSON, &history); err != nil {
		return nil
	}
	return history
}

// AppendHistory 追加一条状态变更并重新编码
func (a *ApplicationRecord) AppendHistory(status string, at time.Time) error {
	history := append(a.History(), StatusChange{Status: status, ChangedAt: at})
	data, err := json.Marshal(history)
	if err != nil {
		return err
	}
	a.StatusHistoryJSON = data
	return nil
}

// ResumeUpload 简历上传登记表。
// 原始文本存MinIO，这里只保留元数据与派生画像的摘要。
type ResumeUpload struct {
	ResumeID         string    `gorm:"type:char(36);primaryKey"`
	OriginalFilename string    `gorm:"type:varchar(255)"`
	TextObjectKey    string    `gorm:"type:varchar(1024)"`
	WordCount        int       `gorm:"not null"`
	SkillCount       int       `gorm:"not null"`
	ExperienceYears  int       `gorm:"not null"`
	AtsScore         *float64  `gorm:"type:float"`
	CreatedAt        time.Time `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);index:idx_resume_uploads_created_at"`
	UpdatedAt        time.Time `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime"`
}

func (ResumeUpload) TableName() string {
	return "resume_uploads"
}
