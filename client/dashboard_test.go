package client

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logitrack-api/listing"
	"logitrack-api/models"
)

// countingTransport records the paths of requests it forwards
type countingTransport struct {
	mu    sync.Mutex
	paths []string
}

func (t *countingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	t.mu.Lock()
	t.paths = append(t.paths, r.URL.Path)
	t.mu.Unlock()
	return http.DefaultTransport.RoundTrip(r)
}

func (t *countingTransport) count(path string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, p := range t.paths {
		if p == path {
			n++
		}
	}
	return n
}

func TestDashboard_RefetchesAfterUpdate(t *testing.T) {
	srv, _ := newServer(t)
	ctx := context.Background()
	customer := login(t, srv.URL, "client@x.io")
	for range 5 {
		_, err := customer.SubmitBooking(ctx, bookingRequest())
		require.NoError(t, err)
	}

	rt := &countingTransport{}
	agent := New(srv.URL, NewSession(""), WithTransport(rt))
	_, err := agent.Login(ctx, "agent@x.io", "secret1")
	require.NoError(t, err)

	d := agent.Dashboard(ListParams{Page: 2, PageSize: 2, Ordering: "lr_no"})
	require.NoError(t, d.Load(ctx))
	require.Len(t, d.Page().Results, 2)
	assert.Equal(t, "3", d.Page().Results[0].ID)
	assert.Equal(t, models.StatusInTransit, d.Page().Results[0].Status)
	assert.Equal(t, 3, d.TotalPages())
	assert.Equal(t, 1, rt.count("/api/customer-shipments/"))

	changed, err := d.UpdateStatus(ctx, "3", models.StatusDelayed, "Memphis", "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusInTransit, changed.PreviousStatus)

	assert.Equal(t, 2, rt.count("/api/customer-shipments/"), "page is fetched again after the update")
	assert.Equal(t, 2, d.Params().Page, "the same page is reloaded")
	assert.Equal(t, models.StatusDelayed, d.Page().Results[0].Status)

	_, err = d.UpdateStatus(ctx, "3", models.StatusDelivered, "", "")
	var sErr *StatusUpdateError
	require.ErrorAs(t, err, &sErr)
	assert.Equal(t, UpdateFailedMessage, sErr.Message)
	assert.Equal(t, 2, rt.count("/api/customer-shipments/"), "a failed update does not refetch")
}

func TestDashboard_Paging(t *testing.T) {
	srv, _ := newServer(t)
	ctx := context.Background()
	customer := login(t, srv.URL, "client@x.io")
	for range 3 {
		_, err := customer.SubmitBooking(ctx, bookingRequest())
		require.NoError(t, err)
	}
	agent := login(t, srv.URL, "agent@x.io")

	d := agent.Dashboard(ListParams{Page: 9, PageSize: 2, Ordering: Ordering(listing.Sorter{Column: listing.ColumnID, Desc: true})})
	require.NoError(t, d.Load(ctx))
	assert.Equal(t, 2, d.Params().Page, "page past the end is clamped")
	require.Len(t, d.Page().Results, 1)
	assert.Equal(t, "1", d.Page().Results[0].ID)

	require.NoError(t, d.Previous(ctx))
	assert.Equal(t, 1, d.Params().Page)
	assert.Equal(t, []string{"3", "2"}, ids(d.Page().Results))

	require.NoError(t, d.Previous(ctx))
	assert.Equal(t, 1, d.Params().Page, "no page before the first")

	require.NoError(t, d.Next(ctx))
	assert.Equal(t, 2, d.Params().Page)

	rows := d.Rows("", listing.StatusAll, listing.Sorter{Column: listing.ColumnID})
	assert.Equal(t, []string{"1"}, ids(rows))

	require.NoError(t, d.Filter(ctx, ListParams{Search: "2"}))
	assert.Equal(t, 1, d.Params().Page)
	assert.Equal(t, []string{"2"}, ids(d.Page().Results))
}

func TestShipment_ExactMatch(t *testing.T) {
	srv, _ := newServer(t)
	ctx := context.Background()
	customer := login(t, srv.URL, "client@x.io")
	for range 12 {
		_, err := customer.SubmitBooking(ctx, bookingRequest())
		require.NoError(t, err)
	}

	s, err := customer.Shipment(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "1", s.ID, "not 10, 11 or 12")
	assert.Equal(t, "Chicago", s.Origin)

	_, err = customer.Shipment(ctx, "99")
	assert.ErrorIs(t, err, ErrNoSuchShipment)

	_, err = login(t, srv.URL, "agent@x.io").Shipment(ctx, "12")
	assert.NoError(t, err)
}

func TestOrdering(t *testing.T) {
	assert.Equal(t, "lr_no", Ordering(listing.Sorter{Column: listing.ColumnID}))
	assert.Equal(t, "-booking_date", Ordering(listing.Sorter{Column: listing.ColumnCreatedAt, Desc: true}))
	assert.Empty(t, Ordering(listing.Sorter{Column: "colour"}))
}

func ids(rows []models.ShipmentView) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}
