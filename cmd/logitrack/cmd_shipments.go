package main

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"logitrack-api/client"
	"logitrack-api/listing"
	"logitrack-api/models"
	"logitrack-api/rates"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type shipmentsOptions struct {
	search   string
	status   string
	sortBy   string
	desc     bool
	page     int
	pageSize int
	preset   string
	from, to string
	summary  bool
}

// dateRange resolves --preset or --from/--to into a filter
func (o shipmentsOptions) dateRange(now time.Time) (*listing.Range, error) {
	if o.preset != "" {
		r, err := listing.PresetRange(listing.Preset(o.preset), now)
		if err != nil {
			return nil, err
		}
		return &r, nil
	}
	if o.from == "" && o.to == "" {
		return nil, nil
	}
	r, err := listing.ParseRange(o.from, o.to)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (a *app) shipmentsCmd() *cobra.Command {
	var o shipmentsOptions
	cmd := &cobra.Command{
		Use:     "shipments",
		Aliases: []string{"dashboard"},
		Short:   "List shipments with search, filters, sorting and pages",
		Long: `List the shipments visible to you. Clients see their own bookings,
agents and admins see every shipment.

Search matches the LR number, status, origin, destination and service.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.client.Session().Require()
			if err != nil {
				return err
			}
			if !slices.Contains(listing.Columns, o.sortBy) {
				return fmt.Errorf("unknown sort column %q (one of %v)", o.sortBy, listing.Columns)
			}
			r, err := o.dateRange(time.Now())
			if err != nil {
				return err
			}
			params := client.ListParams{}
			if r != nil {
				params = params.WithRange(*r)
			}
			sorter := listing.Sorter{Column: o.sortBy, Desc: o.desc}

			if o.summary {
				params.Search, params.Status = o.search, o.status
				sum, err := a.client.ShipmentSummary(cmd.Context(), params)
				if err != nil {
					return err
				}
				return a.render(cmd.OutOrStdout(), sum, func(w io.Writer) { printSummary(w, sum) })
			}

			if user.Role.Staff() {
				params.Page, params.PageSize = o.page, o.pageSize
				params.Ordering = client.Ordering(sorter)
				d := a.client.Dashboard(params)
				if err := d.Load(cmd.Context()); err != nil {
					return err
				}
				return a.renderDashboard(cmd.OutOrStdout(), d, o.search, o.status, sorter)
			}

			all, err := a.client.ListShipments(cmd.Context(), params)
			if err != nil {
				return err
			}
			sorted := listing.Sort(listing.Filter(all, o.search, o.status), sorter)
			pages := listing.TotalPages(len(sorted), o.pageSize)
			page := listing.ClampPage(o.page, pages)
			rows := listing.Paginate(sorted, page, o.pageSize)

			return a.render(cmd.OutOrStdout(), rows, func(w io.Writer) {
				printShipments(w, rows)
				printf(w, "%s\n", styles.muted.Render(fmt.Sprintf("Page %d of %d, %d shipments", page, pages, len(sorted))))
			})
		},
	}
	fs := cmd.Flags()
	fs.StringVarP(&o.search, "search", "s", "", "search text")
	fs.StringVar(&o.status, "status", listing.StatusAll, "status filter: all, pending, in-transit, out-for-delivery, delivered, delayed")
	fs.StringVar(&o.sortBy, "sort", listing.ColumnCreatedAt, "sort column")
	fs.BoolVar(&o.desc, "desc", false, "sort descending")
	fs.IntVar(&o.page, "page", 1, "page number")
	fs.IntVar(&o.pageSize, "page-size", 10, "rows per page")
	fs.StringVar(&o.preset, "preset", "", "date range preset: today, yesterday, this-week, last-week, this-month, last-month, this-year, last-year")
	fs.StringVar(&o.from, "from", "", "booked on or after, YYYY-MM-DD")
	fs.StringVar(&o.to, "to", "", "booked on or before, YYYY-MM-DD")
	fs.BoolVar(&o.summary, "summary", false, "show status counts instead of rows")

	cmd.AddCommand(a.receiptCmd())
	return cmd
}

func (a *app) receiptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "receipt <lr-number>",
		Short: "Print the booking receipt of a shipment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.client.Session().Require(); err != nil {
				return err
			}
			s, err := a.client.Shipment(cmd.Context(), strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}
			return a.render(cmd.OutOrStdout(), s, func(w io.Writer) { printReceipt(w, s) })
		},
	}
}

var receiptBox = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("8")).
	Padding(0, 2)

func printReceipt(w io.Writer, s models.ShipmentView) {
	orDash := func(v string) string {
		if v == "" {
			return "-"
		}
		return v
	}
	service := s.Service
	if svc, ok := rates.LookupService(s.Service); ok {
		service = svc.Name
	}
	rows := [][2]string{
		{"LR No", s.ID},
		{"Status", statusBadge(s.Status)},
		{"Origin", s.Origin},
		{"Destination", s.Destination},
		{"Booking Date", date(&s.CreatedAt)},
		{"Estimated Delivery", date(s.EstimatedDelivery)},
		{"Service", service},
		{"Branch From Phone", orDash(s.BranchFromPhone)},
		{"Branch To Phone", orDash(s.BranchToPhone)},
	}
	lines := []string{styles.title.Render("Booking Receipt"), ""}
	for _, r := range rows {
		lines = append(lines, styles.muted.Render(fmt.Sprintf("%-19s", r[0]+":"))+" "+r[1])
	}
	fmt.Fprintln(w, receiptBox.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)))
}

// renderDashboard prints the loaded server page after the local search and sort
func (a *app) renderDashboard(w io.Writer, d *client.Dashboard, search, status string, s listing.Sorter) error {
	rows := d.Rows(search, status, s)
	return a.render(w, rows, func(w io.Writer) {
		printShipments(w, rows)
		printf(w, "%s\n", styles.muted.Render(fmt.Sprintf("Page %d of %d, %d shipments",
			d.Params().Page, d.TotalPages(), d.Page().Count)))
	})
}

func printShipments(w io.Writer, rows []models.ShipmentView) {
	t := newTable("LR No", "Status", "Origin", "Destination", "Service", "Weight", "Booked", "ETA")
	for _, s := range rows {
		t.Row(s.ID, statusBadge(s.Status), s.Origin, s.Destination, s.Service, weight(s.Weight), ago(s.CreatedAt), date(s.EstimatedDelivery))
	}
	fmt.Fprintln(w, t.Render())
}

func printSummary(w io.Writer, sum listing.Summary) {
	printf(w, "%s %d shipments\n", styles.title.Render("Overview:"), sum.Total)
	t := newTable("Status", "Count", "Share")
	for _, c := range sum.ByStatus {
		t.Row(statusBadge(c.Status), strconv.Itoa(c.Count), strconv.Itoa(c.Percent)+"%")
	}
	fmt.Fprintln(w, t.Render())
}

func (a *app) updateStatusCmd() *cobra.Command {
	var (
		location, note string
		page, pageSize int
	)
	cmd := &cobra.Command{
		Use:   "update-status <lr-number> <status>",
		Short: "Move a shipment to a new status (agents and admins)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireStaff(); err != nil {
				return err
			}
			status := models.ShipmentStatus(args[1])
			if !status.Valid() {
				return fmt.Errorf("unknown status %q", args[1])
			}
			d := a.client.Dashboard(client.ListParams{Page: page, PageSize: pageSize})
			changed, err := d.UpdateStatus(cmd.Context(), args[0], status, location, note)
			if err != nil && changed.LRNo == "" {
				return err
			}
			if err != nil {
				a.log.Warn("dashboard reload failed", zap.Error(err))
			}
			return a.render(cmd.OutOrStdout(), changed, func(w io.Writer) {
				printf(w, "%s %s: %s → %s\n", styles.ok.Render("✓"), changed.LRNo,
					changed.PreviousStatus.Label(), statusBadge(changed.Status))
				if err == nil {
					printShipments(w, d.Page().Results)
					printf(w, "%s\n", styles.muted.Render(fmt.Sprintf("Page %d of %d, %d shipments",
						d.Params().Page, d.TotalPages(), d.Page().Count)))
				}
			})
		},
	}
	cmd.Flags().StringVar(&location, "location", "", "where the shipment is now")
	cmd.Flags().StringVar(&note, "note", "", "note shown on the tracking timeline")
	cmd.Flags().IntVar(&page, "page", 1, "dashboard page to show after the update")
	cmd.Flags().IntVar(&pageSize, "page-size", client.DefaultPageSize, "rows per page")
	return cmd
}
