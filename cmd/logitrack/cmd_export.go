package main

import (
	"fmt"
	"os"
	"time"

	"logitrack-api/models"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func (a *app) exportCmd() *cobra.Command {
	var o shipmentsOptions
	var all bool
	var outPath string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download shipments as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			if all {
				if _, err := a.client.Session().Require(models.RoleAdmin); err != nil {
					return err
				}
			} else if _, err := a.client.Session().Require(); err != nil {
				return err
			}
			r, err := o.dateRange(time.Now())
			if err != nil {
				return err
			}
			data, archive, err := a.client.ExportCSV(cmd.Context(), all, r)
			if err != nil {
				return err
			}

			if outPath == "" || outPath == "-" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(outPath, data, 0o644); err != nil {
				return err
			}
			msg := fmt.Sprintf("%s Wrote %s (%s)", styles.ok.Render("✓"), outPath, humanize.Bytes(uint64(len(data))))
			if archive != "" {
				msg += ", archived at " + archive
			}
			fmt.Fprintln(cmd.ErrOrStderr(), msg)
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "export every column of every booking (admins)")
	cmd.Flags().StringVar(&outPath, "out", "shipments.csv", "output file, - for stdout")
	cmd.Flags().StringVar(&o.preset, "preset", "", "date range preset")
	cmd.Flags().StringVar(&o.from, "from", "", "booked on or after, YYYY-MM-DD")
	cmd.Flags().StringVar(&o.to, "to", "", "booked on or before, YYYY-MM-DD")
	return cmd
}
