// internal/models/audit.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type AuditLog struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	AccountID    *uuid.UUID `json:"accountId" gorm:"type:uuid;index"`
	Action       string     `json:"action" gorm:"size:100;not null"`
	ResourceType string     `json:"resourceType" gorm:"size:50"`
	ResourceID   *uuid.UUID `json:"resourceId" gorm:"type:uuid"`
	Status       int        `json:"status"`
	IPAddress    string     `json:"ipAddress" gorm:"size:45"`
	UserAgent    string     `json:"userAgent" gorm:"type:text"`
	NewValues    JSONB      `json:"newValues" gorm:"type:jsonb"`
	CreatedAt    time.Time  `json:"createdAt" gorm:"index"`
}
