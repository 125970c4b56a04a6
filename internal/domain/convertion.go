package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/fitstakes/backend/internal/entity"
	"github.com/fitstakes/backend/internal/model"
)

func convertAccount(account *entity.Account, tiers []string) model.Account {
	if account == nil {
		return model.Account{}
	}

	tierCode := ""
	if len(tiers) > 0 {
		tierCode = tiers[0]
	}

	return model.Account{
		ID:           account.ID,
		DisplayName:  account.DisplayName,
		Sex:          string(account.Sex),
		BirthDate:    account.BirthDate,
		FitnessLevel: string(account.FitnessLevel),
		Balance:      account.Balance,
		Tier:         tierCode,
		Tiers:        tiers,
		Disabled:     account.DisabledAt.Valid,
		CreatedAt:    account.CreatedAt,
	}
}

func convertTransaction(transaction *entity.PointTransaction) model.PointTransaction {
	if transaction == nil {
		return model.PointTransaction{}
	}

	return model.PointTransaction{
		ID:        transaction.ID,
		AccountID: transaction.AccountID,
		Kind:      string(transaction.Kind),
		Amount:    transaction.Amount,
		Balance:   transaction.Balance,
		Reference: transaction.Reference,
		Note:      transaction.Note,
		DayValue:  transaction.DayValue,
		CreatedAt: transaction.CreatedAt,
	}
}

func convertTicket(ticket *entity.Ticket) model.Ticket {
	if ticket == nil {
		return model.Ticket{}
	}

	return model.Ticket{
		ID:         ticket.ID,
		DrawingID:  ticket.DrawingID,
		AccountID:  ticket.AccountID,
		PurchaseID: ticket.PurchaseID,
		Number:     ticket.Number.Int64,
		IsWinner:   ticket.IsWinner,
		PrizeID:    ticket.PrizeID,
		PrizeRank:  ticket.PrizeRank,
		// The snowflake id carries the creation timestamp.
		CreatedAt: time.UnixMilli(snowflake.ID(ticket.ID).Time()),
	}
}

func convertPrizes(entityPrizes []entity.Prize) []model.Prize {
	modelPrizes := []model.Prize{}
	for _, p := range entityPrizes {
		modelPrizes = append(modelPrizes, model.Prize{ID: p.ID, Rank: p.Rank, Name: p.Name})
	}
	return modelPrizes
}

func convertDrawing(drawing *entity.Drawing) model.Drawing {
	if drawing == nil {
		return model.Drawing{}
	}

	completedAt := time.Time{}
	if drawing.CompletedAt.Valid {
		completedAt = drawing.CompletedAt.Time
	}

	return model.Drawing{
		ID:           drawing.ID,
		Name:         drawing.Name,
		Type:         string(drawing.Type),
		Status:       string(drawing.Status),
		TicketCost:   drawing.TicketCost,
		MaxTickets:   int64(drawing.MaxTickets),
		SoldTickets:  int64(drawing.SoldTickets),
		TotalTickets: int64(drawing.TotalTickets),
		SalesOpenAt:  drawing.SalesOpenAt,
		SalesCloseAt: drawing.SalesCloseAt,
		DrawAt:       drawing.DrawAt,
		Prizes:       convertPrizes(drawing.Prizes),
		Seed:         drawing.Seed,
		Algorithm:    drawing.Algorithm,
		SnapshotHash: drawing.SnapshotHash,
		CompletedAt:  completedAt,
	}
}

func convertWinner(ticket *entity.Ticket, prizeName string) model.Winner {
	if ticket == nil {
		return model.Winner{}
	}

	return model.Winner{
		TicketID:  ticket.ID,
		Number:    ticket.Number.Int64,
		AccountID: ticket.AccountID,
		PrizeID:   ticket.PrizeID,
		PrizeRank: ticket.PrizeRank,
		PrizeName: prizeName,
	}
}

func convertAuditEntry(entry *entity.AuditEntry) model.AuditEntry {
	if entry == nil {
		return model.AuditEntry{}
	}

	return model.AuditEntry{
		ID:        entry.ID,
		Kind:      string(entry.Kind),
		AccountID: entry.AccountID,
		DrawingID: entry.DrawingID,
		Actor:     entry.Actor,
		Data:      entry.Data,
		CreatedAt: entry.CreatedAt,
	}
}
