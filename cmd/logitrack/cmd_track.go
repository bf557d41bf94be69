package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"logitrack-api/client"
	"logitrack-api/events"
	"logitrack-api/models"

	"github.com/spf13/cobra"
)

func printTracking(w io.Writer, res models.TrackingResult) {
	printf(w, "%s %s  %s\n", styles.title.Render("Shipment"), res.TrackingNumber, statusBadge(res.Status))
	printf(w, "%s → %s  via %s, %s\n", res.Origin, res.Destination, res.Service, res.Weight)
	if res.EstimatedDelivery != "" {
		printf(w, "Estimated delivery: %s\n", res.EstimatedDelivery)
	}
	for i, u := range res.Updates {
		marker := "●"
		if i == len(res.Updates)-1 {
			marker = styles.ok.Render("●")
		}
		printf(w, " %s %-18s %-14s %s  %s\n", marker, u.Status, u.Location, styles.muted.Render(ago(u.Timestamp)), u.Description)
	}
}

func (a *app) trackCmd() *cobra.Command {
	var follow bool
	cmd := &cobra.Command{
		Use:   "track <lr-number>",
		Short: "Show a shipment's tracking timeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if follow {
				return a.follow(cmd.Context(), out, args[0])
			}
			res, err := client.NewTracker(a.client).Track(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.render(out, res, func(w io.Writer) { printTracking(w, res) })
		},
	}
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "keep streaming status changes until interrupted")
	return cmd
}

func (a *app) follow(ctx context.Context, out io.Writer, lrNo string) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return a.client.Follow(ctx, lrNo,
		func(res models.TrackingResult) {
			_ = a.render(out, res, func(w io.Writer) {
				printTracking(w, res)
				fmt.Fprintln(w, styles.muted.Render("Waiting for updates (Ctrl+C to stop)…"))
			})
		},
		func(ev events.ShipmentEvent) {
			_ = a.render(out, ev, func(w io.Writer) {
				line := fmt.Sprintf("%s  %s → %s", ev.At.Local().Format("15:04:05"), ev.PreviousStatus.Label(), ev.Status.Label())
				if ev.Location != "" {
					line += "  @ " + ev.Location
				}
				fmt.Fprintln(w, line)
			})
		})
}
