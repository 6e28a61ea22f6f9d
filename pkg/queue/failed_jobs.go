package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/tiffinbox/tiffin/pkg/logger"
	"gorm.io/gorm"
)

// FailedJobRecord is a job that exhausted its retries.
type FailedJobRecord struct {
	ID       uint64    `gorm:"primaryKey;autoIncrement"`
	JobType  string    `gorm:"size:255;not null;index"`
	Payload  string    `gorm:"type:text;not null"`
	Error    string    `gorm:"type:text"`
	Attempts int       `gorm:"not null;default:0"`
	FailedAt time.Time `gorm:"autoCreateTime"`
}

func (FailedJobRecord) TableName() string { return "tiffin_failed_jobs" }

var failedJobDB *gorm.DB

// UseDB persists failed jobs to db. The table comes from the
// create_failed_jobs migration.
func UseDB(db *gorm.DB) {
	failedJobDB = db
}

func (m *Manager) persistFailed(job Job, typeName string, lastErr error, attempts int) {
	m.mu.Lock()
	m.failed = append(m.failed, FailedJob{
		Type: typeName, Job: job, Err: lastErr, FailedAt: time.Now(), Attempts: attempts,
	})
	m.mu.Unlock()

	if failedJobDB == nil {
		return
	}

	payload, err := json.Marshal(job)
	if err != nil {
		payload = []byte(fmt.Sprintf(`{"error": "could not marshal: %v"}`, err))
	}

	errText := ""
	if lastErr != nil {
		errText = lastErr.Error()
	}

	record := FailedJobRecord{
		JobType:  typeName,
		Payload:  string(payload),
		Error:    errText,
		Attempts: attempts,
		FailedAt: time.Now(),
	}

	if err := failedJobDB.Create(&record).Error; err != nil {
		logger.Error("queue: persist failed job", "type", typeName, "error", err)
	}
}
