package handlers

import (
	"errors"
	"net/http"

	"logitrack-api/drafts"
	"logitrack-api/middleware"
	"logitrack-api/rates"
	"logitrack-api/shipments"
	"logitrack-api/statemachine"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DraftView is what the booking wizard endpoints return
type DraftView struct {
	ID        string             `json:"id"`
	Step      statemachine.Step  `json:"step"`
	StepName  string             `json:"step_name"`
	Draft     statemachine.Draft `json:"draft"`
	Estimate  rates.Estimate     `json:"estimate"`
	Reference string             `json:"reference,omitempty"`
}

func viewOf(rec drafts.Record) DraftView {
	return DraftView{
		ID:        rec.ID,
		Step:      rec.Wizard.Step,
		StepName:  rec.Wizard.Step.String(),
		Draft:     rec.Wizard.Draft.Redacted(),
		Estimate:  rec.Wizard.Estimate(),
		Reference: rec.Wizard.Reference,
	}
}

type SelectServiceRequest struct {
	ServiceType string `json:"service_type" binding:"required"`
}

type DraftHandler struct {
	Drafts    *drafts.Store
	Shipments *shipments.Service
	Log       *zap.Logger
}

// load fetches the draft in the URL and checks the caller may touch it
func (h *DraftHandler) load(c *gin.Context) (drafts.Record, bool) {
	rec, err := h.Drafts.Get(c.Param("id"))
	if errors.Is(err, drafts.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Booking draft not found"})
		return drafts.Record{}, false
	}
	if err != nil {
		h.Log.Error("draft load failed", zap.String("draft_id", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load booking draft"})
		return drafts.Record{}, false
	}
	if rec.OwnerID != 0 && rec.OwnerID != middleware.GetUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "This booking draft belongs to another user"})
		return drafts.Record{}, false
	}
	return rec, true
}

// wizardError maps wizard failures onto responses
func wizardError(c *gin.Context, err error) {
	var stepErr *statemachine.StepError
	switch {
	case errors.As(err, &stepErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":    stepErr.Error(),
			"step":     stepErr.Step.String(),
			"problems": stepErr.Problems,
		})
	case errors.Is(err, statemachine.ErrWizardComplete), errors.Is(err, statemachine.ErrWrongStep):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, statemachine.ErrUnknownService):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, statemachine.ErrSubmitFailed):
		c.JSON(http.StatusBadRequest, gin.H{"error": statemachine.SubmitFailedMessage})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// step runs one wizard action and saves the result
func (h *DraftHandler) step(c *gin.Context, action func(*statemachine.Wizard) error) {
	defer h.Drafts.Lock(c.Param("id"))()
	rec, ok := h.load(c)
	if !ok {
		return
	}
	if err := action(&rec.Wizard); err != nil {
		wizardError(c, err)
		return
	}
	if err := h.Drafts.Save(&rec); err != nil {
		h.Log.Error("draft save failed", zap.String("draft_id", rec.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save booking draft"})
		return
	}
	c.JSON(http.StatusOK, viewOf(rec))
}

// Create starts a new booking wizard at the service step
func (h *DraftHandler) Create(c *gin.Context) {
	rec, err := h.Drafts.Create(middleware.GetUserID(c))
	if err != nil {
		h.Log.Error("draft create failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start booking"})
		return
	}
	c.JSON(http.StatusCreated, viewOf(rec))
}

func (h *DraftHandler) Get(c *gin.Context) {
	if rec, ok := h.load(c); ok {
		c.JSON(http.StatusOK, viewOf(rec))
	}
}

// Update patches form fields without changing the step
func (h *DraftHandler) Update(c *gin.Context) {
	var req statemachine.DraftUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.step(c, func(w *statemachine.Wizard) error { return w.Update(req) })
}

func (h *DraftHandler) SelectService(c *gin.Context) {
	var req SelectServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please select a shipping service."})
		return
	}
	h.step(c, func(w *statemachine.Wizard) error { return w.SelectService(req.ServiceType) })
}

func (h *DraftHandler) Next(c *gin.Context) {
	h.step(c, (*statemachine.Wizard).Next)
}

func (h *DraftHandler) Back(c *gin.Context) {
	h.step(c, (*statemachine.Wizard).Back)
}

// Submit books the shipment. The draft is removed once the booking exists;
// submitting it again answers 409 with the LR number already issued.
func (h *DraftHandler) Submit(c *gin.Context) {
	id := c.Param("id")
	defer h.Drafts.Lock(id)()

	if lrNo, err := h.Drafts.SubmittedAs(id); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Booking draft already submitted", "lr_no": lrNo})
		return
	}
	rec, ok := h.load(c)
	if !ok {
		return
	}

	var owner *uint
	if rec.OwnerID != 0 {
		owner = &rec.OwnerID
	}
	lrNo, err := rec.Wizard.Submit(c.Request.Context(), h.Shipments.Submitter(owner))
	if err != nil {
		if errors.Is(err, statemachine.ErrSubmitFailed) {
			h.Log.Warn("draft submit failed", zap.String("draft_id", rec.ID), zap.Error(err))
		}
		wizardError(c, err)
		return
	}

	if err := h.Drafts.Complete(rec.ID, lrNo); err != nil {
		h.Log.Warn("draft cleanup failed", zap.String("draft_id", rec.ID), zap.Error(err))
	}
	h.Log.Info("booking submitted from draft", zap.String("draft_id", rec.ID), zap.String("lr_no", lrNo))
	c.JSON(http.StatusCreated, viewOf(rec))
}
