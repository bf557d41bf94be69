package handlers

import (
	"net/http"
	"strings"

	"logitrack-api/shipments"

	"github.com/gin-gonic/gin"
)

type TrackRequest struct {
	LRNo string `json:"lr_no"`
}

type TrackingHandler struct {
	Shipments *shipments.Service
}

// TrackShipment looks up a shipment by LR number (public)
func (h *TrackingHandler) TrackShipment(c *gin.Context) {
	var req TrackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid JSON format."})
		return
	}
	if strings.TrimSpace(req.LRNo) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": shipments.TrackingRequiredMessage})
		return
	}

	res, err := h.Shipments.Track(c.Request.Context(), req.LRNo)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to look up shipment."})
		return
	}
	c.JSON(http.StatusOK, res)
}
