package entity

import "database/sql"

// Ticket is one sweepstakes entry. Tickets are created unnumbered; numbers
// are assigned in purchase order only when sales close, so no number is
// knowable while sales run. The snowflake id captures the purchase order.
type Ticket struct {
	SnowFlakeBase

	DrawingID string  `gorm:"index;uniqueIndex:idx_tickets_drawing_number,priority:1"`
	Drawing   Drawing `gorm:"foreignKey:DrawingID"`

	AccountID string  `gorm:"index"`
	Account   Account `gorm:"foreignKey:AccountID"`

	// PurchaseID groups the tickets bought in one request; TransactionID is
	// the spend that funded them.
	PurchaseID    string `gorm:"index"`
	TransactionID string

	// The unique index makes duplicate numbering impossible even when two
	// close-sales runs race; databases keep NULLs out of unique indexes.
	Number sql.NullInt64 `gorm:"uniqueIndex:idx_tickets_drawing_number,priority:2"`

	IsWinner  bool
	PrizeID   string
	PrizeRank int
}
