package shipments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"logitrack-api/models"
	"logitrack-api/rates"
)

const (
	TrackingRequiredMessage = "Tracking number is required."
	TrackingNotFoundMessage = "No shipment found with this tracking number. Please check and try again."
)

var statusDescriptions = map[models.ShipmentStatus]string{
	models.StatusPending:        "Shipment is awaiting pickup.",
	models.StatusInTransit:      "Package is in transit to the next facility.",
	models.StatusOutForDelivery: "Package is out for delivery.",
	models.StatusDelivered:      "Package has been delivered.",
	models.StatusDelayed:        "Shipment is delayed. We are working to resolve this.",
}

// Track builds the public tracking view of a booking. An unknown number is
// not an error: the result carries Success=false and a message.
func (s *Service) Track(ctx context.Context, lrNo string) (models.TrackingResult, error) {
	b, err := s.FindByLRNo(ctx, lrNo)
	if errors.Is(err, ErrNotFound) {
		return models.TrackingResult{Success: false, Message: TrackingNotFoundMessage}, nil
	}
	if err != nil {
		return models.TrackingResult{}, err
	}
	return TrackingFor(b), nil
}

// TrackingFor renders the timeline: order placement first, then every
// recorded status change in order.
func TrackingFor(b models.Booking) models.TrackingResult {
	res := models.TrackingResult{
		Success:        true,
		TrackingNumber: b.LRNo,
		Status:         b.Status,
		Origin:         b.FromLocation,
		Destination:    b.ToLocation,
		Service:        serviceName(b.ServiceType),
		Weight:         "Unknown",
	}
	if b.EstimatedDelivery != nil {
		res.EstimatedDelivery = b.EstimatedDelivery.Format(time.DateOnly)
	}
	if b.ActualWeight > 0 {
		res.Weight = fmt.Sprintf("%g kg", b.ActualWeight)
	}

	res.Updates = append(res.Updates, models.TrackingUpdate{
		Status:      "Order Placed",
		Location:    b.FromLocation,
		Timestamp:   b.BookingDate,
		Description: "Order has been placed and confirmed.",
	})
	for _, u := range b.Updates {
		loc := u.Location
		if loc == "" {
			loc = b.FromLocation
			if u.ToStatus == models.StatusDelivered || u.ToStatus == models.StatusOutForDelivery {
				loc = b.ToLocation
			}
		}
		desc := u.Note
		if desc == "" {
			desc = statusDescriptions[u.ToStatus]
		}
		res.Updates = append(res.Updates, models.TrackingUpdate{
			Status:      u.ToStatus.Label(),
			Location:    loc,
			Timestamp:   u.CreatedAt,
			Description: desc,
		})
	}
	return res
}

func serviceName(id string) string {
	if s, ok := rates.LookupService(id); ok {
		return s.Name
	}
	if id == "" {
		return "Standard Delivery"
	}
	return id
}
