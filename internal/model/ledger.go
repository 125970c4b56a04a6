package model

import "time"

// Activity is the unit of ingestion. Wearable syncs and the HTTP earn
// endpoint both produce this shape.
type Activity struct {
	AccountID       string    `json:"account_id"`
	Type            string    `json:"type"`
	Steps           int64     `json:"steps"`
	DurationMinutes int64     `json:"duration_minutes"`
	Intensity       string    `json:"intensity"`
	OccurredAt      time.Time `json:"occurred_at"`
	ExternalID      string    `json:"external_id"`
}

type PointTransaction struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id"`
	Kind      string    `json:"kind"`
	Amount    int64     `json:"amount"`
	Balance   uint64    `json:"balance"`
	Reference string    `json:"reference"`
	Note      string    `json:"note"`
	DayValue  string    `json:"day_value"`
	CreatedAt time.Time `json:"created_at"`
}

type EarnPointsRequest struct {
	AccountID       string    `json:"account_id"`
	Type            string    `json:"type"`
	Steps           int64     `json:"steps"`
	DurationMinutes int64     `json:"duration_minutes"`
	Intensity       string    `json:"intensity"`
	OccurredAt      time.Time `json:"occurred_at"`
	ExternalID      string    `json:"external_id"`
}

type EarnPointsResponse struct {
	TransactionID string `json:"transaction_id,omitempty"`
	Credited      int64  `json:"credited"`
	Balance       uint64 `json:"balance"`
	Duplicate     bool   `json:"duplicate,omitempty"`
}

type SpendPointsRequest struct {
	Amount uint64 `json:"amount"`
	Reason string `json:"reason"`
}

type SpendPointsResponse struct {
	TransactionID string `json:"transaction_id"`
	Balance       uint64 `json:"balance"`
}

type AdjustPointsRequest struct {
	AccountID string `json:"account_id"`
	Amount    int64  `json:"amount"`
	Reason    string `json:"reason"`
}

type AdjustPointsResponse struct {
	TransactionID string `json:"transaction_id"`
	Balance       uint64 `json:"balance"`
}

type GetBalanceRequest struct {
	AccountID string `json:"account_id"`
}

type GetBalanceResponse struct {
	Balance     uint64 `json:"balance"`
	EarnedToday int64  `json:"earned_today"`
}

type GetTransactionsRequest struct {
	AccountID string `json:"account_id"`
	Offset    int    `json:"offset"`
	Limit     int    `json:"limit"`
}

type GetTransactionsResponse struct {
	Transactions []PointTransaction `json:"transactions"`
}

type ReconcileBalanceRequest struct {
	AccountID string `json:"account_id"`
}

type ReconcileBalanceResponse struct {
	Balance        uint64 `json:"balance"`
	TransactionSum int64  `json:"transaction_sum"`
	Consistent     bool   `json:"consistent"`
}
