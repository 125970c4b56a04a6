package domain

import "github.com/fitstakes/backend/internal/entity"

// Typed payloads for AuditEntry.Data, one per audit kind. The structs tags
// pin the stored key names; trails are read back over the API, so renaming
// a field must not change what older entries were written with.

type pointsEarnedData struct {
	TransactionID string `structs:"transaction_id"`
	ExternalID    string `structs:"external_id"`
	ActivityType  string `structs:"activity_type"`
	Amount        int64  `structs:"amount"`
	Balance       uint64 `structs:"balance"`
}

type pointsSpentData struct {
	TransactionID string `structs:"transaction_id"`
	Amount        uint64 `structs:"amount"`
	Reason        string `structs:"reason"`
	Balance       uint64 `structs:"balance"`
}

type pointsAdjustedData struct {
	TransactionID string `structs:"transaction_id"`
	Amount        int64  `structs:"amount"`
	Reason        string `structs:"reason"`
	Balance       uint64 `structs:"balance"`
}

type ticketsPurchasedData struct {
	PurchaseID    string `structs:"purchase_id"`
	TransactionID string `structs:"transaction_id"`
	Quantity      int    `structs:"quantity"`
	Cost          uint64 `structs:"cost"`
	Balance       uint64 `structs:"balance"`
}

type salesClosedData struct {
	TotalTickets int `structs:"total_tickets"`
}

type drawingCancelledData struct {
	FromStatus  string `structs:"from_status"`
	Force       bool   `structs:"force"`
	SoldTickets int    `structs:"sold_tickets"`
}

// drawingVoidedData is the cancelled payload for the automatic path, a
// drawing that reached its draw time with nothing sold.
type drawingVoidedData struct {
	Reason string `structs:"reason"`
}

type drawingExecutedData struct {
	Seed         string       `structs:"seed"`
	Algorithm    string       `structs:"algorithm"`
	SnapshotHash string       `structs:"snapshot_hash"`
	TotalTickets int          `structs:"total_tickets"`
	Winners      []entity.Map `structs:"winners"`
}

type drawnWinnerData struct {
	Number    int    `structs:"number"`
	PrizeID   string `structs:"prize_id"`
	PrizeRank int    `structs:"prize_rank"`
}
