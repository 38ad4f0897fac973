package migrations

import (
	"context"

	"github.com/uptrace/bun"
	"github.com/vaulth/vaulth/pkg/db/models"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		// Create the vaulth table from the model. The unique provider
		// columns carry the at-most-one-local-user-per-provider-identity
		// invariant; registration relies on them.
		_, err := db.NewCreateTable().
			Model((*models.User)(nil)).
			IfNotExists().
			Exec(ctx)
		return err
	}, func(ctx context.Context, db *bun.DB) error {
		_, err := db.NewDropTable().
			Model((*models.User)(nil)).
			IfExists().
			Exec(ctx)
		return err
	})
}
