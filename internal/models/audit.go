package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditLog represents an audit log entry
type AuditLog struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID       uuid.UUID  `gorm:"type:uuid;index" json:"user_id"`
	ClinicID     *uuid.UUID `gorm:"type:uuid;index" json:"clinic_id,omitempty"`
	Action       string     `gorm:"type:varchar(100);not null;index" json:"action"`
	ResourceType string     `gorm:"type:varchar(50);index" json:"resource_type"`
	ResourceID   string     `gorm:"type:varchar(255);index" json:"resource_id"`
	IPAddress    string     `gorm:"type:varchar(45)" json:"ip_address"`
	Status       string     `gorm:"type:varchar(20);index" json:"status"` // success, denied, failure
	DenyReason   string     `gorm:"type:varchar(50)" json:"deny_reason,omitempty"`
	CreatedAt    time.Time  `gorm:"index" json:"timestamp"`
}

// TableName overrides the table name
func (AuditLog) TableName() string {
	return "audit_logs"
}

// BeforeCreate hook
func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
