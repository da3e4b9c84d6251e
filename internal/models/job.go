package models

import (
	"time"

	"github.com/joshu-sajeev/queuectl/internal/config"
	"gorm.io/datatypes"
)

type Job struct {
	ID         string           `gorm:"primaryKey;type:varchar(255)"`
	Command    string           `gorm:"type:text;not null"`
	State      config.JobStatus `gorm:"type:varchar(20);not null;default:'pending'"`
	Attempts   int              `gorm:"not null;default:0"`
	MaxRetries int              `gorm:"not null"`
	BaseTime   int              `gorm:"not null"`
	LastError  string           `gorm:"type:text;not null;default:''"`
	Result     datatypes.JSON   `gorm:"type:text"`
	CreatedAt  time.Time        `gorm:"autoCreateTime"`
	UpdatedAt  time.Time        `gorm:"autoUpdateTime"`
}

func (Job) TableName() string {
	return "jobs"
}

// DlqEntry is a job that exhausted its retries. CreatedAt is the original
// submission time of the job, not the time it failed.
type DlqEntry struct {
	ID        string    `gorm:"primaryKey;type:varchar(255)"`
	Command   string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime:false"`
}

func (DlqEntry) TableName() string {
	return "dlq"
}

type Setting struct {
	Name  string `gorm:"primaryKey;type:varchar(64)"`
	Value int    `gorm:"not null"`
}

func (Setting) TableName() string {
	return "settings"
}
