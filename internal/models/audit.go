package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AuditLog records one batch invocation: who ran it, whether it succeeded,
// how long it took, and request metadata (resume count, filenames, weight
// sum). Written best-effort after every evaluate call.
type AuditLog struct {
	ID         uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Ts         time.Time      `gorm:"type:timestamptz;not null;default:now()" json:"ts"`
	Username   string         `gorm:"type:text" json:"username"`
	Role       string         `gorm:"type:text" json:"role"`
	Action     string         `gorm:"type:text" json:"action"`
	Success    bool           `gorm:"not null" json:"success"`
	DurationMS int64          `gorm:"column:duration_ms" json:"duration_ms"`
	Meta       datatypes.JSON `gorm:"type:jsonb" json:"meta"`
}

func (AuditLog) TableName() string {
	return "logs"
}
