package listing

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logitrack-api/models"
)

func day0(s string) time.Time {
	t, _ := time.Parse(time.DateOnly, s)
	return t
}

func sample() []models.ShipmentView {
	eta := day0("2026-03-10")
	return []models.ShipmentView{
		{ID: "10003", Status: models.StatusDelivered, Origin: "Chicago", Destination: "Houston", Service: "road", Weight: 12, CreatedAt: day0("2026-03-01")},
		{ID: "10001", Status: models.StatusInTransit, Origin: "New York", Destination: "Toronto", Service: "air", Weight: 2.5, CreatedAt: day0("2026-02-01"), EstimatedDelivery: &eta},
		{ID: "10002", Status: models.StatusPending, Origin: "London", Destination: "Paris", Service: "express", Weight: 40, CreatedAt: day0("2026-02-15")},
		{ID: "10004", Status: models.StatusInTransit, Origin: "tokyo", Destination: "Los Angeles", Service: "ocean", Weight: 900, CreatedAt: day0("2026-01-20")},
	}
}

func ids(items []models.ShipmentView) []string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = s.ID
	}
	return out
}

func TestFilter(t *testing.T) {
	items := sample()
	tests := []struct {
		name   string
		search string
		status string
		want   []string
	}{
		{"no filter", "", StatusAll, []string{"10003", "10001", "10002", "10004"}},
		{"case-insensitive origin", "TOKYO", "", []string{"10004"}},
		{"by service", "expr", "all", []string{"10002"}},
		{"by id", "1000", "", []string{"10003", "10001", "10002", "10004"}},
		{"status only", "", "in-transit", []string{"10001", "10004"}},
		{"search and status", "york", "in-transit", []string{"10001"}},
		{"no match", "berlin", "", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Filter(items, tt.search, tt.status)))
		})
	}
}

func TestSort(t *testing.T) {
	items := sample()

	var s Sorter
	s = s.Toggle(ColumnWeight)
	assert.Equal(t, []string{"10001", "10003", "10002", "10004"}, ids(Sort(items, s)))

	s = s.Toggle(ColumnWeight)
	assert.True(t, s.Desc)
	assert.Equal(t, []string{"10004", "10002", "10003", "10001"}, ids(Sort(items, s)))

	s = s.Toggle(ColumnOrigin)
	assert.False(t, s.Desc, "new column starts ascending")
	assert.Equal(t, []string{"10003", "10002", "10001", "10004"}, ids(Sort(items, s)))

	assert.Equal(t, []string{"10004", "10001", "10002", "10003"}, ids(Sort(items, Sorter{Column: ColumnCreatedAt})))
	assert.Equal(t, "10001", Sort(items, Sorter{Column: ColumnEstimatedDelivery, Desc: true})[0].ID)

	if diff := cmp.Diff(sample(), items); diff != "" {
		t.Errorf("Sort modified its input (-want +got):\n%s", diff)
	}
}

func TestPaginate(t *testing.T) {
	items := sample()
	assert.Equal(t, 2, TotalPages(len(items), 3))
	assert.Equal(t, 1, TotalPages(0, 10))

	assert.Equal(t, []string{"10003", "10001", "10002"}, ids(Paginate(items, 1, 3)))
	assert.Equal(t, []string{"10004"}, ids(Paginate(items, 2, 3)))
	assert.Equal(t, []string{"10004"}, ids(Paginate(items, 9, 3)), "page is clamped")
	assert.Equal(t, []string{"10003", "10001", "10002"}, ids(Paginate(items, -1, 3)))
	assert.Empty(t, Paginate(nil, 1, 3))

	assert.Equal(t, 1, ClampPage(0, 5))
	assert.Equal(t, 5, ClampPage(7, 5))
}

func TestSummarize(t *testing.T) {
	sum := Summarize(sample())
	assert.Equal(t, 4, sum.Total)
	assert.Equal(t, 2, sum.Count(models.StatusInTransit))
	assert.Equal(t, 0, sum.Count(models.StatusDelayed))
	require.Len(t, sum.ByStatus, len(models.AllStatuses))
	for _, c := range sum.ByStatus {
		if c.Status == models.StatusInTransit {
			assert.Equal(t, 50, c.Percent)
		}
		if c.Status == models.StatusPending {
			assert.Equal(t, 25, c.Percent)
		}
	}

	thirds := Summarize([]models.ShipmentView{
		{Status: models.StatusPending}, {Status: models.StatusPending}, {Status: models.StatusDelayed},
	})
	assert.Equal(t, 67, thirds.ByStatus[0].Percent)
	assert.Equal(t, 0, Summarize(nil).ByStatus[0].Percent)
}

func TestPresetRange(t *testing.T) {
	// a Wednesday
	now := time.Date(2026, time.March, 4, 15, 30, 0, 0, time.UTC)
	tests := []struct {
		preset     Preset
		start, end string
	}{
		{Today, "2026-03-04", "2026-03-04"},
		{Yesterday, "2026-03-03", "2026-03-03"},
		{ThisWeek, "2026-03-02", "2026-03-08"},
		{LastWeek, "2026-02-23", "2026-03-01"},
		{ThisMonth, "2026-03-01", "2026-03-31"},
		{LastMonth, "2026-02-01", "2026-02-28"},
		{ThisYear, "2026-01-01", "2026-12-31"},
		{LastYear, "2025-01-01", "2025-12-31"},
	}
	for _, tt := range tests {
		t.Run(string(tt.preset), func(t *testing.T) {
			r, err := PresetRange(tt.preset, now)
			require.NoError(t, err)
			assert.Equal(t, tt.start, r.StartParam())
			assert.Equal(t, tt.end, r.EndParam())
		})
	}

	sunday := time.Date(2026, time.March, 8, 9, 0, 0, 0, time.UTC)
	r, err := PresetRange(ThisWeek, sunday)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-02", r.StartParam(), "sunday belongs to the week that started monday")

	january := time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)
	r, err = PresetRange(LastMonth, january)
	require.NoError(t, err)
	assert.Equal(t, "2025-12-01", r.StartParam())

	_, err = PresetRange("fortnight", now)
	assert.Error(t, err)
}

func TestParseRange(t *testing.T) {
	r, err := ParseRange("2026-03-01", "2026-03-31")
	require.NoError(t, err)
	assert.True(t, r.Contains(time.Date(2026, time.March, 31, 23, 59, 0, 0, time.UTC)))
	assert.False(t, r.Contains(time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)))

	_, err = ParseRange("2026-03-31", "2026-03-01")
	assert.Error(t, err)
	_, err = ParseRange("03/01/2026", "2026-03-31")
	assert.Error(t, err)
}
