package shipments

import (
	"context"
	"errors"
	"strings"

	"logitrack-api/listing"
	"logitrack-api/models"

	"gorm.io/gorm"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

var ErrInvalidDate = errors.New("invalid date format, use YYYY-MM-DD")

// orderingColumns whitelists the ordering query values
var orderingColumns = map[string]string{
	"booking_date":       "booking_date",
	"status":             "status",
	"lr_no":              "CAST(lr_no AS INTEGER)",
	"from_location":      "from_location",
	"to_location":        "to_location",
	"service_type":       "service_type",
	"weight":             "weight",
	"estimated_delivery": "estimated_delivery",
}

// Query selects bookings for dashboards and exports
type Query struct {
	Page      int
	PageSize  int
	Search    string
	Status    string
	Ordering  string
	StartDate string
	EndDate   string
	// OwnerID limits results to one user's bookings when set
	OwnerID *uint
}

// Normalize applies the pagination defaults and the page size cap
func (q Query) Normalize() Query {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = DefaultPageSize
	}
	q.PageSize = min(q.PageSize, MaxPageSize)
	return q
}

func (q Query) scope(db *gorm.DB) (*gorm.DB, error) {
	if q.OwnerID != nil {
		db = db.Where("user_id = ?", *q.OwnerID)
	}
	if q.StartDate != "" || q.EndDate != "" {
		if q.StartDate == "" || q.EndDate == "" {
			// both bounds are needed to filter; a lone bound is still checked
			for _, d := range []string{q.StartDate, q.EndDate} {
				if d != "" {
					if _, err := listing.ParseRange(d, d); err != nil {
						return nil, ErrInvalidDate
					}
				}
			}
		} else {
			r, err := listing.ParseRange(q.StartDate, q.EndDate)
			if err != nil {
				return nil, ErrInvalidDate
			}
			db = db.Where("booking_date >= ? AND booking_date < ?", r.Start, r.End.AddDate(0, 0, 1))
		}
	}
	if s := strings.TrimSpace(q.Search); s != "" {
		like := "%" + s + "%"
		db = db.Where("lr_no LIKE ? OR from_location LIKE ? OR to_location LIKE ? OR status LIKE ? OR service_type LIKE ?",
			like, like, like, like, like)
	}
	if q.Status != "" && q.Status != listing.StatusAll {
		db = db.Where("status = ?", q.Status)
	}
	return db, nil
}

func (q Query) order() string {
	field := strings.TrimPrefix(q.Ordering, "-")
	col, ok := orderingColumns[field]
	if !ok {
		return "booking_date desc, id desc"
	}
	if strings.HasPrefix(q.Ordering, "-") {
		return col + " desc, id desc"
	}
	return col + " asc, id asc"
}

// Page is one page of bookings plus the total match count
type Page struct {
	Count    int64
	Page     int
	PageSize int
	Bookings []models.Booking
}

// HasNext reports whether another page follows
func (p Page) HasNext() bool {
	return int64(p.Page*p.PageSize) < p.Count
}

// List runs a paginated query
func (s *Service) List(ctx context.Context, q Query) (Page, error) {
	q = q.Normalize()
	countDB, err := q.scope(s.DB.WithContext(ctx).Model(&models.Booking{}))
	if err != nil {
		return Page{}, err
	}

	page := Page{Page: q.Page, PageSize: q.PageSize}
	if err := countDB.Count(&page.Count).Error; err != nil {
		return Page{}, err
	}
	findDB, _ := q.scope(s.DB.WithContext(ctx))
	err = findDB.Order(q.order()).
		Offset((q.Page - 1) * q.PageSize).
		Limit(q.PageSize).
		Find(&page.Bookings).Error
	return page, err
}

// All runs an unpaginated query, used by exports and summaries
func (s *Service) All(ctx context.Context, q Query) ([]models.Booking, error) {
	db, err := q.scope(s.DB.WithContext(ctx).Model(&models.Booking{}))
	if err != nil {
		return nil, err
	}
	var out []models.Booking
	err = db.Order(q.order()).Find(&out).Error
	return out, err
}

// Views projects bookings to their dashboard shape
func Views(bookings []models.Booking) []models.ShipmentView {
	out := make([]models.ShipmentView, len(bookings))
	for i, b := range bookings {
		out[i] = b.View()
	}
	return out
}

// Summary counts bookings per status within q
func (s *Service) Summary(ctx context.Context, q Query) (listing.Summary, error) {
	bookings, err := s.All(ctx, q)
	if err != nil {
		return listing.Summary{}, err
	}
	return listing.Summarize(Views(bookings)), nil
}
