package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ukydev/fleet-dashboard/internal/fleet"
)

func (a *app) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <vehicle>",
		Short: "Resolve the rental status of a vehicle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.snapshot(cmd.Context())
			if err != nil {
				return err
			}
			v, ok := snap.VehicleByID(args[0])
			if !ok {
				return fmt.Errorf("vehicle %q not found", args[0])
			}
			res := fleet.NewStatusResolver(snap.Agreements, a.logger).Resolve(v.ID, a.now())
			agreement := "-"
			if res.Agreement != nil {
				agreement = res.Agreement.AgreementID
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\n", v.ID, v.Registration, res.Status, agreement)
			return nil
		},
	}
}

func (a *app) vehiclesCmd() *cobra.Command {
	var f fleet.VehicleFilter
	cmd := &cobra.Command{
		Use:   "vehicles",
		Short: "List vehicles with their rental status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.snapshot(cmd.Context())
			if err != nil {
				return err
			}
			now := a.now()
			rows := fleet.FilterVehicles(snap.Vehicles, fleet.NewStatusResolver(snap.Agreements, a.logger), f, now)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tREGISTRATION\tMODEL\tSTATUS\tRENTAL\tPROGRESS")
			for _, r := range rows {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", r.ID, r.Registration, r.Model, r.AvailabilityStatus, r.RentalStatus, r.Progress)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVarP(&f.Query, "query", "q", "", "Free-text search")
	cmd.Flags().StringVar(&f.Status, "status", "", "Availability status")
	cmd.Flags().StringVar(&f.RentalStatus, "rental", "", "Rental status: available, on-hire, reserved")
	cmd.Flags().StringVar(&f.Location, "location", "", "Location")
	cmd.Flags().StringVar(&f.Partner, "partner", "", "Rental partner")
	cmd.Flags().StringVar(&f.Risk, "risk", "", "Risk level")
	cmd.Flags().StringVar(&f.SortField, "sort", "", "Sort field: registration, model, location, health, battery, mot")
	cmd.Flags().BoolVar(&f.Descending, "desc", false, "Sort descending")
	return cmd
}

func (a *app) searchCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search vehicles, agreements and pages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.snapshot(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, r := range fleet.Search(snap, args[0], limit) {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Kind, r.ID, r.Title, r.Subtitle)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 5, "Maximum results per kind")
	return cmd
}
