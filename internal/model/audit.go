package model

import "time"

type AuditEntry struct {
	ID        int64                  `json:"id"`
	Kind      string                 `json:"kind"`
	AccountID string                 `json:"account_id,omitempty"`
	DrawingID string                 `json:"drawing_id,omitempty"`
	Actor     string                 `json:"actor"`
	Data      map[string]interface{} `json:"data"`
	CreatedAt time.Time              `json:"created_at"`
}

type GetAccountAuditTrailRequest struct {
	AccountID string `json:"account_id"`
	Offset    int    `json:"offset"`
	Limit     int    `json:"limit"`
}

type GetAccountAuditTrailResponse struct {
	Entries []AuditEntry `json:"entries"`
}

type GetDrawingAuditTrailRequest struct {
	DrawingID string `json:"drawing_id"`
	Offset    int    `json:"offset"`
	Limit     int    `json:"limit"`
}

type GetDrawingAuditTrailResponse struct {
	Entries []AuditEntry `json:"entries"`
}
