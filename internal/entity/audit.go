package entity

import (
	"time"

	"github.com/fitstakes/backend/pkg/enum"
)

type AuditKind string

var (
	AuditPointsEarned     = enum.New(AuditKind("points_earned"))
	AuditPointsSpent      = enum.New(AuditKind("points_spent"))
	AuditPointsAdjusted   = enum.New(AuditKind("points_adjusted"))
	AuditTicketsPurchased = enum.New(AuditKind("tickets_purchased"))
	AuditSalesClosed      = enum.New(AuditKind("sales_closed"))
	AuditDrawingExecuted  = enum.New(AuditKind("drawing_executed"))
	AuditDrawingCancelled = enum.New(AuditKind("drawing_cancelled"))
)

// AuditEntry is the append-only trail behind every balance mutation and
// drawing transition of record. It is written in the same database
// transaction as the change it describes; the repository exposes no update
// or delete.
type AuditEntry struct {
	SnowFlakeBase

	CreatedAt time.Time

	Kind      AuditKind `gorm:"index"`
	AccountID string    `gorm:"index"`
	DrawingID string    `gorm:"index"`

	// Actor is the account or system component that triggered the change.
	Actor string

	Data Map
}
