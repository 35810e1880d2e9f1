package storage

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Abdullah-Asgher/JobMatchAI/internal/config"
	"github.com/Abdullah-Asgher/JobMatchAI/internal/constants"
	"github.com/Abdullah-Asgher/JobMatchAI/internal/storage/models"
)

func newMockMySQL(t *testing.T) (*MySQL, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gdb, err := gorm.Open(gormmysql.New(gormmysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)

	cfg := config.DefaultConfig().MySQL
	return &MySQL{db: gdb, cfg: &cfg}, mock
}

const upsertPattern = "INSERT INTO `application_records` .*ON DUPLICATE KEY UPDATE `updated_at`=VALUES\\(`updated_at`\\)"

// TestInsertApplicationIdempotent 验证幂等插入的两条路径：
// 首次插入影响1行；主键冲突时只刷新updated_at，影响2行，视为重复登记
func TestInsertApplicationIdempotent(t *testing.T) {
	m, mock := newMockMySQL(t)

	record := &models.ApplicationRecord{
		PostingID: "a1b2c3d4e5f60718",
		JobTitle:  "Backend Engineer",
		Company:   "Acme",
		Source:    "adzuna",
		Status:    constants.StatusApplied,
	}

	// 首次插入
	mock.ExpectBegin()
	mock.ExpectExec(upsertPattern).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	inserted, err := m.InsertApplicationIdempotent(context.Background(), m.db, record)
	require.NoError(t, err)
	assert.True(t, inserted, "影响1行应判定为首次插入")

	// 重复登记：ON DUPLICATE KEY UPDATE 刷新时间戳，MySQL报告2行
	mock.ExpectBegin()
	mock.ExpectExec(upsertPattern).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	inserted, err = m.InsertApplicationIdempotent(context.Background(), m.db, record)
	require.NoError(t, err)
	assert.False(t, inserted, "影响2行应判定为重复登记")

	assert.NoError(t, mock.ExpectationsWereMet())
}
