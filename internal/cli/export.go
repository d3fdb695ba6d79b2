package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ukydev/fleet-dashboard/internal/export"
)

func (a *app) exportCmd() *cobra.Command {
	var formatName, output string
	cmd := &cobra.Command{
		Use:   "export <report> | export agreement <id>",
		Short: "Export a report as CSV or PDF",
		Long: `Export a whole-dataset report (fleet, vor, agreements, financial,
purchase-orders, suppliers, buybacks) or a single agreement.
The file is named after the report and today's date unless --output is set.
Use --output - to write to stdout.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			prefs, err := a.preferences(cmd.Context())
			if err != nil {
				return err
			}
			if formatName == "" {
				formatName = prefs.DefaultExportFormat
			}
			f, err := export.ParseFormat(formatName)
			if err != nil {
				return err
			}
			snap, err := a.snapshot(cmd.Context())
			if err != nil {
				return err
			}

			now := a.now()
			var table export.Table
			var filename string
			if args[0] == "agreement" {
				if len(args) != 2 {
					return fmt.Errorf("export agreement requires an agreement id")
				}
				ag, ok := snap.AgreementByID(args[1])
				if !ok {
					return fmt.Errorf("agreement %q not found", args[1])
				}
				table = export.AgreementRows(ag, snap)
				filename = export.AgreementFilename(ag.AgreementID, f, now)
			} else {
				if len(args) != 1 {
					return fmt.Errorf("unexpected argument %q", args[1])
				}
				rt, err := export.ParseReportType(args[0])
				if err != nil {
					return err
				}
				if table, err = export.ToRows(rt, snap, now); err != nil {
					return err
				}
				filename = export.Filename(rt, f, now)
			}

			var buf bytes.Buffer
			opts := export.PDFOptions{GeneratedAt: now, IncludeDetails: prefs.IncludeVORDetails}
			if err := export.Write(&buf, table, f, opts); err != nil {
				return err
			}
			if output == "-" {
				_, err := cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}
			if output == "" {
				output = filename
			}
			if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			a.logger.WithField("rows", len(table.Rows)).WithField("file", output).Info("Exported report")
			fmt.Fprintln(cmd.OutOrStdout(), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&formatName, "format", "f", "", "csv or pdf (default from settings)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path")
	return cmd
}
