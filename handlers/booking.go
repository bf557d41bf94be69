package handlers

import (
	"errors"
	"net/http"

	"logitrack-api/middleware"
	"logitrack-api/models"
	"logitrack-api/shipments"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type BookingHandler struct {
	Shipments *shipments.Service
	Log       *zap.Logger
}

// callerID is nil for guests
func callerID(c *gin.Context) *uint {
	if id := middleware.GetUserID(c); id != 0 {
		return &id
	}
	return nil
}

// CreateBooking stores a booking for the caller, or as a guest booking
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req models.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	booking, err := h.Shipments.CreateBooking(c.Request.Context(), req, callerID(c))
	var vErr *shipments.ValidationError
	if errors.As(err, &vErr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Error(), "details": vErr.Problems})
		return
	}
	if err != nil {
		h.Log.Error("booking failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create booking"})
		return
	}
	c.JSON(http.StatusCreated, shipments.BookingResponse(booking))
}

// UserBookings returns the caller's bookings, newest first
func (h *BookingHandler) UserBookings(c *gin.Context) {
	owner := middleware.GetUserID(c)
	bookings, err := h.Shipments.All(c.Request.Context(), shipments.Query{OwnerID: &owner, Ordering: "-booking_date"})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load bookings"})
		return
	}
	c.JSON(http.StatusOK, bookings)
}
