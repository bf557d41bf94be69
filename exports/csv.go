// Package exports renders shipment CSV files and archives them to S3.
package exports

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"logitrack-api/models"
)

// CustomerHeader is the column row of the customer shipment export
var CustomerHeader = []string{
	"LR No", "Booking Date", "From Location", "To Location",
	"Branch From Phone", "Branch To Phone", "Status", "Estimated Delivery", "Service",
}

// FullHeader is the column row of the complete booking dump
var FullHeader = []string{
	"id", "lr_no", "booking_date", "from_location", "to_location",
	"branch_from_phone", "branch_to_phone", "actual_weight", "chargeable_weight",
	"freight", "dod", "delivery_address", "pickup_address", "description",
	"dimensions", "package_type", "payment_method", "pickup_date",
	"pickup_time_window", "service_type", "weight", "status", "phone",
}

func date(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteCustomerCSV writes the dashboard export
func WriteCustomerCSV(w io.Writer, bookings []models.Booking) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CustomerHeader); err != nil {
		return err
	}
	for _, b := range bookings {
		err := cw.Write([]string{
			b.LRNo,
			date(&b.BookingDate),
			b.FromLocation,
			b.ToLocation,
			b.BranchFromPhone,
			b.BranchToPhone,
			string(b.Status),
			date(b.EstimatedDelivery),
			b.ServiceType,
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFullCSV writes every stored column of every booking
func WriteFullCSV(w io.Writer, bookings []models.Booking) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(FullHeader); err != nil {
		return err
	}
	for _, b := range bookings {
		err := cw.Write([]string{
			strconv.FormatUint(uint64(b.ID), 10),
			b.LRNo,
			date(&b.BookingDate),
			b.FromLocation,
			b.ToLocation,
			b.BranchFromPhone,
			b.BranchToPhone,
			num(b.ActualWeight),
			num(b.ChargeableWeight),
			num(b.Freight),
			date(b.EstimatedDelivery),
			b.DeliveryAddress.String(),
			b.PickupAddress.String(),
			b.Description,
			b.Dimensions,
			b.PackageType,
			b.PaymentMethod,
			date(b.PickupDate),
			b.PickupTimeWindow,
			b.ServiceType,
			num(b.Weight),
			string(b.Status),
			b.Phone,
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
