package entity

import "github.com/fitstakes/backend/pkg/enum"

type TransactionKind string

var (
	TransactionEarn   = enum.New(TransactionKind("earn"))
	TransactionSpend  = enum.New(TransactionKind("spend"))
	TransactionAdjust = enum.New(TransactionKind("adjust"))
)

// PointTransaction is the append-only record behind every balance change.
// An account balance must equal the sum of its transaction amounts at all
// times; Balance snapshots the result for statements and reconciliation.
type PointTransaction struct {
	Base

	AccountID string  `gorm:"index"`
	Account   Account `gorm:"foreignKey:AccountID"`

	Kind    TransactionKind `gorm:"uniqueIndex:idx_point_transactions_kind_reference"`
	Amount  int64
	Balance uint64

	// Reference is the external activity id for earns, the purchase id for
	// spends, and a generated id for adjusts. The unique index is the
	// schema-level idempotency backstop.
	Reference string `gorm:"uniqueIndex:idx_point_transactions_kind_reference"`
	Note      string

	// DayValue is the calendar day in the platform reference timezone,
	// denormalized for daily-cap and leaderboard queries.
	DayValue string `gorm:"index"`
}
