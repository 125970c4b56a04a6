package common

import (
	"context"
	"errors"

	"github.com/fitstakes/backend/internal/repository"
)

const maxNumberingAttempts = 5

// NumberTickets assigns sequential numbers 1..N to a drawing's tickets in
// purchase order. Already numbered tickets keep their numbers, so resuming
// after a crash never renumbers anything. An assignment conflict means
// another runner works on the same drawing; the loop re-reads and continues
// from the database's view.
func NumberTickets(
	ctx context.Context, ticketRepo repository.TicketRepository, drawingID string,
) (int, error) {
	for attempt := 0; attempt < maxNumberingAttempts; attempt++ {
		maxAssigned, err := ticketRepo.MaxAssignedNumber(ctx, drawingID)
		if err != nil {
			return 0, err
		}

		unnumbered, err := ticketRepo.GetUnnumbered(ctx, drawingID)
		if err != nil {
			return 0, err
		}

		if len(unnumbered) == 0 {
			return int(maxAssigned), nil
		}

		number := maxAssigned
		for _, ticket := range unnumbered {
			number++
			if err := ticketRepo.AssignNumber(ctx, ticket.ID, number); err != nil {
				break
			}
		}
	}

	return 0, errors.New("cannot finish numbering the tickets")
}
