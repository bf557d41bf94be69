package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"logitrack-api/listing"
	"logitrack-api/models"
)

const (
	UpdateForbiddenMessage = "You are forbidden to update the shipment status."
	UpdateFailedMessage    = "Failed to update status."
)

// StatusUpdateError carries the message shown for a failed status update
type StatusUpdateError struct {
	Message string
	Err     error
}

func (e *StatusUpdateError) Error() string { return e.Message }
func (e *StatusUpdateError) Unwrap() error { return e.Err }

// ListParams are the dashboard query parameters
type ListParams struct {
	Page      int
	PageSize  int
	Search    string
	Status    string
	Ordering  string
	StartDate string
	EndDate   string
}

func (p ListParams) values() url.Values {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(p.PageSize))
	}
	for k, v := range map[string]string{
		"search":     p.Search,
		"status":     p.Status,
		"ordering":   p.Ordering,
		"start_date": p.StartDate,
		"end_date":   p.EndDate,
	} {
		if v != "" {
			q.Set(k, v)
		}
	}
	return q
}

// WithRange fills the date filter from a range
func (p ListParams) WithRange(r listing.Range) ListParams {
	p.StartDate, p.EndDate = r.StartParam(), r.EndParam()
	return p
}

// ListShipments returns every shipment visible to the session
func (c *Client) ListShipments(ctx context.Context, p ListParams) ([]models.ShipmentView, error) {
	var out []models.ShipmentView
	err := c.do(ctx, http.MethodGet, "/api/shipments/", p.values(), nil, &out)
	return out, err
}

// CustomerShipments returns one server-side page
func (c *Client) CustomerShipments(ctx context.Context, p ListParams) (models.ShipmentPage, error) {
	var out models.ShipmentPage
	err := c.do(ctx, http.MethodGet, "/api/customer-shipments/", p.values(), nil, &out)
	return out, err
}

// ErrNoSuchShipment means no shipment visible to the session has the LR number
var ErrNoSuchShipment = errors.New("shipment not found")

// Shipment finds one visible shipment by its exact LR number
func (c *Client) Shipment(ctx context.Context, lrNo string) (models.ShipmentView, error) {
	page, err := c.CustomerShipments(ctx, ListParams{Search: lrNo, PageSize: MaxPageSize, Ordering: "lr_no"})
	if err != nil {
		return models.ShipmentView{}, err
	}
	for _, s := range page.Results {
		if s.ID == lrNo {
			return s, nil
		}
	}
	return models.ShipmentView{}, fmt.Errorf("%w: %s", ErrNoSuchShipment, lrNo)
}

func (c *Client) ShipmentSummary(ctx context.Context, p ListParams) (listing.Summary, error) {
	var out listing.Summary
	err := c.do(ctx, http.MethodGet, "/api/shipments/summary", p.values(), nil, &out)
	return out, err
}

func (c *Client) UserBookings(ctx context.Context) ([]models.Booking, error) {
	var out []models.Booking
	err := c.do(ctx, http.MethodGet, "/api/user-bookings/", nil, nil, &out)
	return out, err
}

// StatusChanged is the server's answer to a status update
type StatusChanged struct {
	Success        bool                  `json:"success" yaml:"success"`
	LRNo           string                `json:"lr_no" yaml:"lr_no"`
	Status         models.ShipmentStatus `json:"status" yaml:"status"`
	PreviousStatus models.ShipmentStatus `json:"previous_status" yaml:"previous_status"`
}

// UpdateStatus asks the server to move a shipment. Failures come back as
// *StatusUpdateError: a 403 gets the permission message, anything else the
// generic one.
func (c *Client) UpdateStatus(ctx context.Context, lrNo string, status models.ShipmentStatus, location, note string) (StatusChanged, error) {
	body := map[string]string{
		"lr_no":    lrNo,
		"status":   string(status),
		"location": location,
		"note":     note,
	}
	var out StatusChanged
	err := c.do(ctx, http.MethodPost, "/api/update-shipment-status/", nil, body, &out)
	if err != nil {
		return StatusChanged{}, statusUpdateError(err)
	}
	return out, nil
}

func statusUpdateError(err error) error {
	if IsStatus(err, http.StatusForbidden) {
		return &StatusUpdateError{Message: UpdateForbiddenMessage, Err: err}
	}
	return &StatusUpdateError{Message: UpdateFailedMessage, Err: err}
}

// ExportCSV downloads the shipment export. all selects the admin dump, which
// ignores the date range. archiveURL is set when the server kept a copy.
func (c *Client) ExportCSV(ctx context.Context, all bool, r *listing.Range) (data []byte, archiveURL string, err error) {
	path := "/api/export-customer-shipments-csv/"
	if all {
		path = "/api/export-all-customer-shipments-csv/"
	}
	q := url.Values{}
	if r != nil && !all {
		q.Set("start_date", r.StartParam())
		q.Set("end_date", r.EndParam())
	}
	resp, err := c.send(ctx, http.MethodGet, path, q, nil)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	data, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read export: %w", err)
	}
	return data, resp.Header.Get("X-Export-Archive"), nil
}
