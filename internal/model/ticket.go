package model

import "time"

type Ticket struct {
	ID         int64     `json:"id"`
	DrawingID  string    `json:"drawing_id"`
	AccountID  string    `json:"account_id"`
	PurchaseID string    `json:"purchase_id"`
	Number     int64     `json:"number,omitempty"`
	IsWinner   bool      `json:"is_winner,omitempty"`
	PrizeID    string    `json:"prize_id,omitempty"`
	PrizeRank  int       `json:"prize_rank,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type BuyTicketsRequest struct {
	DrawingID string `json:"drawing_id"`
	Quantity  int    `json:"quantity"`
}

type BuyTicketsResponse struct {
	PurchaseID string  `json:"purchase_id"`
	Tickets    []int64 `json:"tickets"`
	Cost       uint64  `json:"cost"`
	Balance    uint64  `json:"balance"`
}

type GetMyTicketsRequest struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

type GetMyTicketsResponse struct {
	Tickets []Ticket `json:"tickets"`
}

type GetDrawingTicketsRequest struct {
	DrawingID string `json:"drawing_id"`
	Offset    int    `json:"offset"`
	Limit     int    `json:"limit"`
}

type GetDrawingTicketsResponse struct {
	Tickets []Ticket `json:"tickets"`
}
