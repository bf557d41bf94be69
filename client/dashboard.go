package client

import (
	"context"
	"fmt"

	"logitrack-api/listing"
	"logitrack-api/models"
)

// page sizes the server applies
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// orderings maps sortable columns onto the server's ordering values
var orderings = map[string]string{
	listing.ColumnID:                "lr_no",
	listing.ColumnStatus:            "status",
	listing.ColumnOrigin:            "from_location",
	listing.ColumnDestination:       "to_location",
	listing.ColumnService:           "service_type",
	listing.ColumnWeight:            "weight",
	listing.ColumnCreatedAt:         "booking_date",
	listing.ColumnEstimatedDelivery: "estimated_delivery",
}

// Ordering converts a column sort into the ordering query value
func Ordering(s listing.Sorter) string {
	o, ok := orderings[s.Column]
	if !ok {
		return ""
	}
	if s.Desc {
		return "-" + o
	}
	return o
}

// Dashboard is the staff view over one server-side page of shipments.
// Search and sort apply to the loaded page; status updates reload it.
type Dashboard struct {
	c      *Client
	params ListParams
	page   models.ShipmentPage
}

// Dashboard starts a dashboard on the page p names; nothing is fetched yet
func (c *Client) Dashboard(p ListParams) *Dashboard {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	p.PageSize = min(p.PageSize, MaxPageSize)
	return &Dashboard{c: c, params: p}
}

func (d *Dashboard) Params() ListParams        { return d.params }
func (d *Dashboard) Page() models.ShipmentPage { return d.page }

// TotalPages is the page count of the last load, at least 1
func (d *Dashboard) TotalPages() int {
	return listing.TotalPages(int(d.page.Count), d.params.PageSize)
}

// Load fetches the current page. A page past the end is clamped to the last one.
func (d *Dashboard) Load(ctx context.Context) error {
	page, err := d.c.CustomerShipments(ctx, d.params)
	if err != nil {
		return err
	}
	d.page = page
	if last := d.TotalPages(); d.params.Page > last {
		d.params.Page = last
		return d.Load(ctx)
	}
	return nil
}

// GoTo moves to page n and loads it
func (d *Dashboard) GoTo(ctx context.Context, n int) error {
	d.params.Page = max(n, 1)
	return d.Load(ctx)
}

func (d *Dashboard) Next(ctx context.Context) error {
	if d.page.Next == nil {
		return nil
	}
	return d.GoTo(ctx, d.params.Page+1)
}

func (d *Dashboard) Previous(ctx context.Context) error {
	if d.page.Previous == nil {
		return nil
	}
	return d.GoTo(ctx, d.params.Page-1)
}

// Filter changes the server-side filters and goes back to the first page
func (d *Dashboard) Filter(ctx context.Context, p ListParams) error {
	p.Page = 1
	if p.PageSize <= 0 {
		p.PageSize = d.params.PageSize
	}
	p.PageSize = min(p.PageSize, MaxPageSize)
	d.params = p
	return d.Load(ctx)
}

// Rows applies the search, status filter and column sort to the loaded page
func (d *Dashboard) Rows(search, status string, s listing.Sorter) []models.ShipmentView {
	return listing.Sort(listing.Filter(d.page.Results, search, status), s)
}

// UpdateStatus changes a shipment's status and then refetches the current
// page, so rows always show what the server last returned.
func (d *Dashboard) UpdateStatus(ctx context.Context, lrNo string, status models.ShipmentStatus, location, note string) (StatusChanged, error) {
	changed, err := d.c.UpdateStatus(ctx, lrNo, status, location, note)
	if err != nil {
		return StatusChanged{}, err
	}
	if err := d.Load(ctx); err != nil {
		return changed, fmt.Errorf("reload page %d: %w", d.params.Page, err)
	}
	return changed, nil
}
