package shipments

import (
	"context"

	"logitrack-api/models"
	"logitrack-api/statemachine"
)

type submitter struct {
	svc   *Service
	owner *uint
}

// Submitter lets a booking wizard create bookings directly on this service
func (s *Service) Submitter(owner *uint) statemachine.BookingSubmitter {
	return submitter{svc: s, owner: owner}
}

func (s submitter) SubmitBooking(ctx context.Context, req models.BookingRequest) (models.BookingResponse, error) {
	b, err := s.svc.CreateBooking(ctx, req, s.owner)
	if err != nil {
		return models.BookingResponse{}, err
	}
	return BookingResponse(b), nil
}

// BookingResponse is the reply to a successful booking
func BookingResponse(b models.Booking) models.BookingResponse {
	return models.BookingResponse{
		Message:   "Booking created successfully",
		BookingID: b.ID,
		LRNo:      b.LRNo,
		Freight:   b.Freight,
	}
}
