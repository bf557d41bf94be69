// Package listing holds the dashboard operations that run over an already
// fetched page of shipments: search, status filter, column sort, manual
// pagination and the overview summary.
package listing

import (
	"cmp"
	"math"
	"slices"
	"strings"
	"time"

	"logitrack-api/models"
)

// StatusAll disables the status filter
const StatusAll = "all"

// Filter keeps shipments whose id, status, origin, destination or service
// contains search (case-insensitive) and whose status matches status.
func Filter(items []models.ShipmentView, search, status string) []models.ShipmentView {
	needle := strings.ToLower(strings.TrimSpace(search))
	out := make([]models.ShipmentView, 0, len(items))
	for _, s := range items {
		if status != "" && status != StatusAll && string(s.Status) != status {
			continue
		}
		if needle != "" && !matches(s, needle) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func matches(s models.ShipmentView, needle string) bool {
	for _, field := range []string{s.ID, string(s.Status), s.Origin, s.Destination, s.Service} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// Columns that can be sorted on
const (
	ColumnID                = "id"
	ColumnStatus            = "status"
	ColumnOrigin            = "origin"
	ColumnDestination       = "destination"
	ColumnService           = "service"
	ColumnWeight            = "weight"
	ColumnCreatedAt         = "createdAt"
	ColumnEstimatedDelivery = "estimatedDelivery"
)

// Columns lists sortable columns in display order
var Columns = []string{
	ColumnID, ColumnStatus, ColumnOrigin, ColumnDestination,
	ColumnService, ColumnWeight, ColumnCreatedAt, ColumnEstimatedDelivery,
}

// Sorter is the current sort column and direction
type Sorter struct {
	Column string
	Desc   bool
}

// Toggle flips the direction when the same column is picked again and
// resets to ascending for a new column.
func (s Sorter) Toggle(column string) Sorter {
	if s.Column == column {
		return Sorter{Column: column, Desc: !s.Desc}
	}
	return Sorter{Column: column}
}

func (s Sorter) compare(a, b models.ShipmentView) int {
	var c int
	switch s.Column {
	case ColumnStatus:
		c = compareText(string(a.Status), string(b.Status))
	case ColumnOrigin:
		c = compareText(a.Origin, b.Origin)
	case ColumnDestination:
		c = compareText(a.Destination, b.Destination)
	case ColumnService:
		c = compareText(a.Service, b.Service)
	case ColumnWeight:
		c = cmp.Compare(a.Weight, b.Weight)
	case ColumnCreatedAt:
		c = a.CreatedAt.Compare(b.CreatedAt)
	case ColumnEstimatedDelivery:
		c = compareTimes(a.EstimatedDelivery, b.EstimatedDelivery)
	default:
		c = compareText(a.ID, b.ID)
	}
	if s.Desc {
		return -c
	}
	return c
}

func compareText(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

// missing dates sort first
func compareTimes(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return a.Compare(*b)
}

// Sort returns a sorted copy; equal rows keep their order
func Sort(items []models.ShipmentView, s Sorter) []models.ShipmentView {
	out := slices.Clone(items)
	slices.SortStableFunc(out, s.compare)
	return out
}

// TotalPages is at least 1 so an empty list still has a page to show
func TotalPages(n, size int) int {
	if size <= 0 || n <= 0 {
		return 1
	}
	return (n + size - 1) / size
}

// ClampPage keeps page within [1, total]
func ClampPage(page, total int) int {
	return max(1, min(page, total))
}

// Paginate returns the 1-based page of items
func Paginate(items []models.ShipmentView, page, size int) []models.ShipmentView {
	if size <= 0 {
		return items
	}
	page = ClampPage(page, TotalPages(len(items), size))
	start := (page - 1) * size
	if start >= len(items) {
		return nil
	}
	end := min(start+size, len(items))
	return items[start:end]
}

// StatusCount is one row of the overview summary
type StatusCount struct {
	Status  models.ShipmentStatus `json:"status" yaml:"status"`
	Count   int                   `json:"count" yaml:"count"`
	Percent int                   `json:"percent" yaml:"percent"`
}

type Summary struct {
	Total    int           `json:"total" yaml:"total"`
	ByStatus []StatusCount `json:"by_status" yaml:"by_status"`
}

// Summarize counts shipments per status with rounded percentages
func Summarize(items []models.ShipmentView) Summary {
	counts := make(map[models.ShipmentStatus]int)
	for _, s := range items {
		counts[s.Status]++
	}
	sum := Summary{Total: len(items)}
	for _, status := range models.AllStatuses {
		sum.ByStatus = append(sum.ByStatus, StatusCount{
			Status:  status,
			Count:   counts[status],
			Percent: percent(counts[status], len(items)),
		})
	}
	return sum
}

// Count returns the number of shipments with status
func (s Summary) Count(status models.ShipmentStatus) int {
	for _, c := range s.ByStatus {
		if c.Status == status {
			return c.Count
		}
	}
	return 0
}

func percent(n, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(n) * 100 / float64(total)))
}
