package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ukydev/fleet-dashboard/internal/notify"
)

func (a *app) notificationsCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "Derive the current notifications using the saved preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			prefs, err := a.preferences(cmd.Context())
			if err != nil {
				return err
			}
			snap, err := a.snapshot(cmd.Context())
			if err != nil {
				return err
			}
			ns := notify.RulesFrom(prefs).Derive(snap, a.now())
			a.logger.WithField("count", len(ns)).Debug("Derived notifications")

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(ns)
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTYPE\tTITLE\tMESSAGE")
			for _, n := range ns {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", n.ID, n.Type, n.Title, n.Message)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}
