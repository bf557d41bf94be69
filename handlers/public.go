package handlers

import (
	"errors"
	"net/http"

	"logitrack-api/models"
	"logitrack-api/rates"
	"logitrack-api/statemachine"

	"github.com/gin-gonic/gin"
)

// ListServices returns the shipping service catalogue (public)
func ListServices(c *gin.Context) {
	services := rates.Services()
	c.JSON(http.StatusOK, gin.H{"count": len(services), "services": services})
}

// ListCities returns the selectable origin and destination cities (public)
func ListCities(c *gin.Context) {
	cities := rates.Cities()
	c.JSON(http.StatusOK, gin.H{"count": len(cities), "cities": cities})
}

// CalculateRates quotes every service for a package (public)
func CalculateRates(c *gin.Context) {
	var req rates.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Origin, destination, weight and dimensions are required."})
		return
	}
	quote, err := rates.Calculate(req)
	if errors.Is(err, rates.ErrMissingLocation) || errors.Is(err, rates.ErrInvalidPackage) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to calculate rates"})
		return
	}
	c.JSON(http.StatusOK, quote)
}

// GetStateMachineInfo returns the shipment status lifecycle for informational purposes
func GetStateMachineInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"state_machine":   statemachine.GetAllTransitions(),
		"statuses":        models.AllStatuses,
		"terminal_states": []models.ShipmentStatus{models.StatusDelivered},
		"admin_override":  true,
		"description":     "Shipment Status Lifecycle State Machine",
	})
}
