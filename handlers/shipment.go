package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"logitrack-api/exports"
	"logitrack-api/middleware"
	"logitrack-api/models"
	"logitrack-api/shipments"
	"logitrack-api/statemachine"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ExportArchiveHeader carries the archived copy's URL of an export
const ExportArchiveHeader = "X-Export-Archive"

type ShipmentHandler struct {
	Shipments *shipments.Service
	// Archiver is nil when exports are not archived
	Archiver exports.Archiver
	Log      *zap.Logger
}

// scopedQuery reads the list parameters; clients only ever see their own bookings
func scopedQuery(c *gin.Context) shipments.Query {
	page, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("page_size"))
	q := shipments.Query{
		Page:      page,
		PageSize:  size,
		Search:    c.Query("search"),
		Status:    c.Query("status"),
		Ordering:  c.Query("ordering"),
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
	}
	if !middleware.IsStaff(c) {
		owner := middleware.GetUserID(c)
		q.OwnerID = &owner
	}
	return q
}

// pageURL rebuilds the request URL pointing at another page
func pageURL(c *gin.Context, page int) *string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if p := c.GetHeader("X-Forwarded-Proto"); p != "" {
		scheme = p
	}
	values := c.Request.URL.Query()
	if page <= 1 {
		values.Del("page")
	} else {
		values.Set("page", strconv.Itoa(page))
	}
	u := url.URL{Scheme: scheme, Host: c.Request.Host, Path: c.Request.URL.Path, RawQuery: values.Encode()}
	s := u.String()
	return &s
}

func (h *ShipmentHandler) queryError(c *gin.Context, err error) {
	if errors.Is(err, shipments.ErrInvalidDate) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format. Use 'YYYY-MM-DD'."})
		return
	}
	h.Log.Error("shipment query failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load shipments"})
}

// CustomerShipments is the paginated dashboard listing
func (h *ShipmentHandler) CustomerShipments(c *gin.Context) {
	page, err := h.Shipments.List(c.Request.Context(), scopedQuery(c))
	if err != nil {
		h.queryError(c, err)
		return
	}
	resp := models.ShipmentPage{
		Count:   page.Count,
		Results: shipments.Views(page.Bookings),
	}
	if page.HasNext() {
		resp.Next = pageURL(c, page.Page+1)
	}
	if page.Page > 1 {
		resp.Previous = pageURL(c, page.Page-1)
	}
	c.JSON(http.StatusOK, resp)
}

// ListShipments returns every shipment visible to the caller, unpaginated
func (h *ShipmentHandler) ListShipments(c *gin.Context) {
	bookings, err := h.Shipments.All(c.Request.Context(), scopedQuery(c))
	if err != nil {
		h.queryError(c, err)
		return
	}
	c.JSON(http.StatusOK, shipments.Views(bookings))
}

// Summary returns per-status counts for the caller's visible shipments
func (h *ShipmentHandler) Summary(c *gin.Context) {
	sum, err := h.Shipments.Summary(c.Request.Context(), scopedQuery(c))
	if err != nil {
		h.queryError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

type UpdateStatusRequest struct {
	LRNo     string                `json:"lr_no" binding:"required"`
	Status   models.ShipmentStatus `json:"status" binding:"required"`
	Location string                `json:"location"`
	Note     string                `json:"note"`
}

// UpdateStatus moves a shipment along its lifecycle; agents and admins only
func (h *ShipmentHandler) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "LR No and status are required."})
		return
	}

	booking, prev, err := h.Shipments.UpdateStatus(c.Request.Context(), shipments.StatusChange{
		LRNo:     req.LRNo,
		To:       req.Status,
		Actor:    middleware.GetRole(c),
		ActorID:  middleware.GetUserID(c),
		Location: req.Location,
		Note:     req.Note,
	})
	var tErr *shipments.TransitionError
	switch {
	case errors.Is(err, shipments.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found."})
		return
	case errors.Is(err, statemachine.ErrUnknownStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, shipments.ErrStatusChanged):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case errors.As(err, &tErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":             tErr.Error(),
			"current_status":    tErr.From,
			"valid_next_states": tErr.Valid,
		})
		return
	case err != nil:
		h.Log.Error("status update failed", zap.String("lr_no", req.LRNo), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update status."})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"lr_no":           booking.LRNo,
		"status":          booking.Status,
		"previous_status": prev,
	})
}

// ExportCustomerCSV downloads the caller's visible shipments in a date range
func (h *ShipmentHandler) ExportCustomerCSV(c *gin.Context) {
	q := scopedQuery(c)
	q.Ordering = "lr_no"
	bookings, err := h.Shipments.All(c.Request.Context(), q)
	if err != nil {
		h.queryError(c, err)
		return
	}
	var buf bytes.Buffer
	if err := exports.WriteCustomerCSV(&buf, bookings); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export shipments"})
		return
	}
	h.sendCSV(c, "shipments.csv", buf.Bytes())
}

// ExportAllCSV downloads every column of every booking (admin only)
func (h *ShipmentHandler) ExportAllCSV(c *gin.Context) {
	bookings, err := h.Shipments.All(c.Request.Context(), shipments.Query{Ordering: "lr_no"})
	if err != nil {
		h.queryError(c, err)
		return
	}
	var buf bytes.Buffer
	if err := exports.WriteFullCSV(&buf, bookings); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export shipments"})
		return
	}
	h.sendCSV(c, "all_shipments.csv", buf.Bytes())
}

func (h *ShipmentHandler) sendCSV(c *gin.Context, filename string, body []byte) {
	if h.Archiver != nil {
		name := fmt.Sprintf("%s-%d-%s", time.Now().UTC().Format("20060102T150405"), middleware.GetUserID(c), filename)
		if u, err := h.Archiver.Archive(c.Request.Context(), name, body); err != nil {
			h.Log.Warn("export archive failed", zap.String("file", name), zap.Error(err))
		} else {
			c.Header(ExportArchiveHeader, u)
		}
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", body)
}
