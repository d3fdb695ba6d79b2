package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ukydev/fleet-dashboard/internal/config"
	"github.com/ukydev/fleet-dashboard/internal/fixtures"
)

func (a *app) seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Replace the MongoDB records with the fixture data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if source := a.v.GetString("source"); source != config.SourceMongo {
				return fmt.Errorf("seed requires --source mongo, got %q", source)
			}
			store, closeFn, err := a.mongoStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()
			snap := fixtures.Snapshot(a.now())
			if err := store.Seed(cmd.Context(), snap); err != nil {
				return err
			}
			a.logger.WithField("vehicles", len(snap.Vehicles)).WithField("agreements", len(snap.Agreements)).Info("Seeded MongoDB")
			return nil
		},
	}
}
