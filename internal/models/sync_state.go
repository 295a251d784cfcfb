package models

import (
	"time"

	"gorm.io/datatypes"
)

type SyncState struct {
	Scope         string         `gorm:"primaryKey;type:varchar(64);comment:sync scope"`
	LastDrawNo    int            `gorm:"not null;default:0;comment:highest stored draw after the run"`
	LastRunID     string         `gorm:"type:varchar(36)"`
	LastAttemptAt *time.Time     `gorm:"comment:last attempt time"`
	LastSuccessAt *time.Time     `gorm:"comment:last successful run time"`
	LastError     *string        `gorm:"type:text;comment:last error message"`
	StatsJSON     datatypes.JSON `gorm:"comment:per-run stats"`
}

func (SyncState) TableName() string {
	return "sync_state"
}
