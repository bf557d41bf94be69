package handlers

import (
	"errors"
	"net/http"

	"logitrack-api/inquiries"
	"logitrack-api/models"

	"github.com/gin-gonic/gin"
)

type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

type ContactHandler struct {
	Inquiries *inquiries.Service
}

// Contact stores a contact form submission (public)
func (h *ContactHandler) Contact(c *gin.Context) {
	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": inquiries.MissingFieldsMessage})
		return
	}

	_, err := h.Inquiries.Submit(c.Request.Context(), models.Inquiry{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Subject: req.Subject,
		Message: req.Message,
	})
	if errors.Is(err, inquiries.ErrMissingFields) {
		c.JSON(http.StatusBadRequest, gin.H{"error": inquiries.MissingFieldsMessage})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send your message. Please try again."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Your query has been sent successfully."})
}
