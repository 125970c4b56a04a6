package model

import "time"

type Prize struct {
	ID   string `json:"id"`
	Rank int    `json:"rank"`
	Name string `json:"name"`
}

type Drawing struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Type         string    `json:"type"`
	Status       string    `json:"status"`
	TicketCost   uint64    `json:"ticket_cost"`
	MaxTickets   int64     `json:"max_tickets"`
	SoldTickets  int64     `json:"sold_tickets"`
	TotalTickets int64     `json:"total_tickets"`
	SalesOpenAt  time.Time `json:"sales_open_at"`
	SalesCloseAt time.Time `json:"sales_close_at"`
	DrawAt       time.Time `json:"draw_at"`
	Prizes       []Prize   `json:"prizes"`
	Seed         string    `json:"seed,omitempty"`
	Algorithm    string    `json:"algorithm,omitempty"`
	SnapshotHash string    `json:"snapshot_hash,omitempty"`
	CompletedAt  time.Time `json:"completed_at,omitempty"`
}

type Winner struct {
	TicketID  int64  `json:"ticket_id"`
	Number    int64  `json:"number"`
	AccountID string `json:"account_id"`
	PrizeID   string `json:"prize_id"`
	PrizeRank int    `json:"prize_rank"`
	PrizeName string `json:"prize_name"`
}

// WinnerHandoff is the payload published to the fulfillment topic once a
// drawing completes. Prize delivery happens outside this service.
type WinnerHandoff struct {
	DrawingID   string    `json:"drawing_id"`
	DrawingName string    `json:"drawing_name"`
	TicketID    int64     `json:"ticket_id"`
	Number      int64     `json:"number"`
	AccountID   string    `json:"account_id"`
	PrizeID     string    `json:"prize_id"`
	PrizeRank   int       `json:"prize_rank"`
	PrizeName   string    `json:"prize_name"`
	CompletedAt time.Time `json:"completed_at"`
}

type CreateDrawingRequest struct {
	Name         string    `json:"name"`
	Type         string    `json:"type"`
	TicketCost   uint64    `json:"ticket_cost"`
	MaxTickets   int64     `json:"max_tickets"`
	SalesOpenAt  time.Time `json:"sales_open_at"`
	SalesCloseAt time.Time `json:"sales_close_at"`
	DrawAt       time.Time `json:"draw_at"`
	Prizes       []struct {
		Rank int    `json:"rank"`
		Name string `json:"name"`
	} `json:"prizes"`
}

type CreateDrawingResponse struct {
	ID string `json:"id"`
}

type UpdateDrawingRequest struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	TicketCost   uint64    `json:"ticket_cost"`
	MaxTickets   int64     `json:"max_tickets"`
	SalesOpenAt  time.Time `json:"sales_open_at"`
	SalesCloseAt time.Time `json:"sales_close_at"`
	DrawAt       time.Time `json:"draw_at"`
	Prizes       []struct {
		Rank int    `json:"rank"`
		Name string `json:"name"`
	} `json:"prizes"`
}

type UpdateDrawingResponse struct{}

type ScheduleDrawingRequest struct {
	ID string `json:"id"`
}

type ScheduleDrawingResponse struct{}

type CancelDrawingRequest struct {
	ID    string `json:"id"`
	Force bool   `json:"force"`
}

type CancelDrawingResponse struct{}

type GetDrawingRequest struct {
	ID string `json:"id"`
}

type GetDrawingResponse struct {
	Drawing Drawing `json:"drawing"`
}

type GetDrawingsRequest struct {
	Type   string `json:"type"`
	Status string `json:"status"`
	Offset int    `json:"offset"`
	Limit  int    `json:"limit"`
}

type GetDrawingsResponse struct {
	Drawings []Drawing `json:"drawings"`
}

type ExecuteDrawingRequest struct {
	ID string `json:"id"`
}

type ExecuteDrawingResponse struct {
	Drawing Drawing  `json:"drawing"`
	Winners []Winner `json:"winners"`
}

type VerifyDrawingRequest struct {
	ID string `json:"id"`
}

type VerifyDrawingResponse struct {
	Valid     bool     `json:"valid"`
	Reason    string   `json:"reason,omitempty"`
	Seed      string   `json:"seed"`
	Algorithm string   `json:"algorithm"`
	Winners   []Winner `json:"winners"`
}

type GetWinnersRequest struct {
	DrawingID string `json:"drawing_id"`
}

type GetWinnersResponse struct {
	Winners []Winner `json:"winners"`
}
