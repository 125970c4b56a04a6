package entity

import (
	"database/sql"
	"time"

	"github.com/fitstakes/backend/pkg/enum"
)

type DrawingType string

var (
	DrawingDaily   = enum.New(DrawingType("daily"))
	DrawingWeekly  = enum.New(DrawingType("weekly"))
	DrawingMonthly = enum.New(DrawingType("monthly"))
	DrawingAnnual  = enum.New(DrawingType("annual"))
)

type DrawingStatus string

var (
	DrawingDraft     = enum.New(DrawingStatus("draft"))
	DrawingScheduled = enum.New(DrawingStatus("scheduled"))
	DrawingOpen      = enum.New(DrawingStatus("open"))
	DrawingClosed    = enum.New(DrawingStatus("closed"))
	DrawingCompleted = enum.New(DrawingStatus("completed"))
	DrawingCancelled = enum.New(DrawingStatus("cancelled"))
)

type Prize struct {
	ID   string `json:"id"`
	Rank int    `json:"rank"`
	Name string `json:"name"`
}

// Drawing is one sweepstakes event. Status only moves through the
// conditional updates in the repository, never unconditional writes:
// draft -> scheduled -> open -> closed -> completed, with cancelled
// reachable from every non-terminal status.
type Drawing struct {
	Base

	Name   string
	Type   DrawingType
	Status DrawingStatus `gorm:"index"`

	TicketCost uint64

	// MaxTickets caps sales when positive; zero means unlimited.
	MaxTickets  int
	SoldTickets int

	// TotalTickets is fixed once sales close; numbers run 1..TotalTickets.
	TotalTickets int

	SalesOpenAt  time.Time
	SalesCloseAt time.Time
	DrawAt       time.Time

	Prizes Array[Prize]

	// Seed and Algorithm are recorded at execution so the winning numbers
	// can be reproduced by anyone later. Snapshot holds the compressed
	// ticket list the draw ran against.
	Seed         string
	Algorithm    string
	Snapshot     []byte `gorm:"type:mediumblob"`
	SnapshotHash string

	CompletedAt sql.NullTime
}
