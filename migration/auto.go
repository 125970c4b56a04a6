package migration

import (
	"context"

	"github.com/fitstakes/backend/internal/entity"
	"github.com/fitstakes/backend/pkg/xcontext"
)

// AutoMigrate builds the full schema from the entity definitions. When this
// migrator is called, no need to call other migrators.
func AutoMigrate(ctx context.Context) error {
	return xcontext.DB(ctx).AutoMigrate(
		&entity.Account{},
		&entity.PointTransaction{},
		&entity.EarnAggregate{},
		&entity.Drawing{},
		&entity.Ticket{},
		&entity.AuditEntry{},
	)
}
