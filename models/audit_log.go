package models

import (
	"time"

	"gorm.io/datatypes"
)

// AuditAction is the kind of operation recorded in the audit log
type AuditAction string

const (
	ActionCreate AuditAction = "CREATE"
	ActionRead   AuditAction = "READ"
	ActionUpdate AuditAction = "UPDATE"
	ActionDelete AuditAction = "DELETE"
)

// Audited entity names
const (
	EntityAccount   = "Account"
	EntityProfile   = "UserProfile"
	EntityAudioFile = "AudioFile"
)

// AuditLogEntry is an append-only record of an action against an account or audio file.
// AccountID becomes nil once the acting account has been deleted.
type AuditLogEntry struct {
	ID        int64          `json:"id" gorm:"primaryKey"`
	AccountID *int64         `json:"accountId"`
	Action    AuditAction    `json:"action"`
	Entity    string         `json:"entity"`
	EntityID  *int64         `json:"entityId"`
	Details   datatypes.JSON `json:"details"`
	CreatedAt time.Time      `json:"createdAt"`
}

func (AuditLogEntry) TableName() string { return "audit_log" }
