package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"logitrack-api/models"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"
)

var styles = struct {
	title, muted, ok, warn, err lipgloss.Style
}{
	title: lipgloss.NewStyle().Bold(true),
	muted: lipgloss.NewStyle().Faint(true),
	ok:    lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	warn:  lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	err:   lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
}

var statusColors = map[models.ShipmentStatus]lipgloss.Color{
	models.StatusPending:        "8",
	models.StatusInTransit:      "4",
	models.StatusOutForDelivery: "6",
	models.StatusDelivered:      "2",
	models.StatusDelayed:        "1",
}

func statusBadge(s models.ShipmentStatus) string {
	return lipgloss.NewStyle().Foreground(statusColors[s]).Render(s.Label())
}

// render writes v as yaml or json, or calls table for the default format
func (a *app) render(w io.Writer, v any, tableFn func(io.Writer)) error {
	switch a.output {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	tableFn(w)
	return nil
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(styles.muted).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.title.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers(headers...)
}

func money(v float64) string {
	return "$" + humanize.FormatFloat("#,###.##", v)
}

func weight(kg float64) string {
	return humanize.Ftoa(kg) + " kg"
}

func date(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("Jan 2, 2006")
}

// ago renders a timestamp relative to now for dashboards
func ago(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.Time(t)
}

func printf(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format, args...)
}
