// Package shipments owns booking records: creation with LR number
// allocation, listing, status transitions and the tracking view.
package shipments

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"logitrack-api/events"
	"logitrack-api/models"
	"logitrack-api/rates"
	"logitrack-api/statemachine"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("booking not found")

// ErrStatusChanged means another update landed between reading and writing the status
var ErrStatusChanged = errors.New("shipment status was changed by someone else, reload and try again")

// ValidationError lists what is wrong with a booking request
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Problems, " ")
}

// TransitionError is returned when a status change is not allowed
type TransitionError struct {
	From  models.ShipmentStatus
	To    models.ShipmentStatus
	Valid []models.ShipmentStatus
	Err   error
}

func (e *TransitionError) Error() string { return e.Err.Error() }
func (e *TransitionError) Unwrap() error { return e.Err }

type Service struct {
	DB     *gorm.DB
	Events events.Publisher
	Log    *zap.Logger
	Now    func() time.Time
}

func NewService(db *gorm.DB, pub events.Publisher, log *zap.Logger) *Service {
	return &Service{DB: db, Events: pub, Log: log, Now: time.Now}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *Service) publish(ctx context.Context, ev events.ShipmentEvent) {
	if s.Events == nil {
		return
	}
	if err := s.Events.PublishShipmentEvent(ctx, ev); err != nil {
		s.Log.Warn("shipment event not delivered", zap.String("lr_no", ev.LRNo), zap.String("type", ev.Type), zap.Error(err))
	}
}

func validateRequest(req models.BookingRequest) (pickupDate time.Time, length, width, height float64, err error) {
	var problems []string
	if _, ok := rates.LookupService(req.ServiceType); !ok {
		problems = append(problems, fmt.Sprintf("Unknown service type %q.", req.ServiceType))
	}
	if req.Weight <= 0 {
		problems = append(problems, "Weight must be positive.")
	}
	length, width, height, dimErr := statemachine.ParseDimensions(req.Dimensions)
	if dimErr != nil {
		problems = append(problems, "Dimensions must be given as LxWxH.")
	}
	for _, f := range req.PickupAddress.MissingFields() {
		problems = append(problems, "Pickup address must include "+f+".")
	}
	for _, f := range req.DeliveryAddress.MissingFields() {
		problems = append(problems, "Delivery address must include "+f+".")
	}
	if !statemachine.ValidEmail(req.PickupAddress.Email) || !statemachine.ValidEmail(req.DeliveryAddress.Email) {
		problems = append(problems, "Enter a valid email address.")
	}
	pickupDate, dateErr := time.Parse(time.DateOnly, req.PickupDate)
	if dateErr != nil {
		problems = append(problems, "Pickup date must be in YYYY-MM-DD format.")
	}
	switch req.PaymentMethod {
	case models.PaymentCredit, models.PaymentCashOnDelivery:
	default:
		problems = append(problems, fmt.Sprintf("Unknown payment method %q.", req.PaymentMethod))
	}
	if req.Status != "" && !req.Status.Valid() {
		problems = append(problems, fmt.Sprintf("Unknown status %q.", req.Status))
	}
	if len(problems) > 0 {
		return time.Time{}, 0, 0, 0, &ValidationError{Problems: problems}
	}
	return pickupDate, length, width, height, nil
}

// NextLRNo returns the number after the highest numeric LR number in use
func NextLRNo(tx *gorm.DB) (string, error) {
	var last int64
	err := tx.Model(&models.Booking{}).
		Select("COALESCE(MAX(CAST(lr_no AS INTEGER)), 0)").
		Scan(&last).Error
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(last+1, 10), nil
}

// CreateBooking validates req, prices it and stores it under a fresh LR
// number. userID is nil for guest bookings.
func (s *Service) CreateBooking(ctx context.Context, req models.BookingRequest, userID *uint) (models.Booking, error) {
	pickupDate, length, width, height, err := validateRequest(req)
	if err != nil {
		return models.Booking{}, err
	}

	svc, _ := rates.LookupService(req.ServiceType)
	eta := pickupDate.AddDate(0, 0, svc.TransitDays)
	status := req.Status
	if status == "" {
		status = models.StatusInTransit
	}

	booking := models.Booking{
		BookingDate:       s.now(),
		EstimatedDelivery: &eta,
		FromLocation:      firstNonEmpty(req.FromLocation, req.PickupAddress.City),
		ToLocation:        firstNonEmpty(req.ToLocation, req.DeliveryAddress.City),
		BranchFromPhone:   req.BranchFromPhone,
		BranchToPhone:     req.BranchToPhone,
		ServiceType:       req.ServiceType,
		PackageType:       req.PackageType,
		Weight:            req.Weight,
		Dimensions:        statemachine.FormatDimensions(length, width, height),
		ActualWeight:      req.Weight,
		ChargeableWeight:  rates.Round2(rates.ChargeableWeight(req.Weight, length, width, height)),
		Freight:           rates.EstimateBooking(req.ServiceType, req.Weight).Total,
		Description:       req.Description,
		PickupAddress:     req.PickupAddress,
		DeliveryAddress:   req.DeliveryAddress,
		PickupDate:        &pickupDate,
		PickupTimeWindow:  req.PickupTimeWindow,
		PaymentMethod:     req.PaymentMethod,
		Status:            status,
		Phone:             firstNonEmpty(req.Phone, req.PickupAddress.Phone),
		DeliveryEmail:     req.DeliveryAddress.Email,
		UserID:            userID,
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lr, err := NextLRNo(tx)
		if err != nil {
			return err
		}
		booking.LRNo = lr
		return tx.Create(&booking).Error
	})
	if err != nil {
		return models.Booking{}, fmt.Errorf("create booking: %w", err)
	}

	s.Log.Info("booking created",
		zap.String("lr_no", booking.LRNo),
		zap.String("from", booking.FromLocation),
		zap.String("to", booking.ToLocation),
		zap.Float64("freight", booking.Freight),
	)
	s.publish(ctx, events.ShipmentEvent{
		Type:   events.TypeShipmentCreated,
		LRNo:   booking.LRNo,
		Status: booking.Status,
		At:     booking.BookingDate,
	})
	return booking, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// FindByLRNo looks a booking up ignoring case
func (s *Service) FindByLRNo(ctx context.Context, lrNo string) (models.Booking, error) {
	var b models.Booking
	err := s.DB.WithContext(ctx).
		Preload("Updates", func(db *gorm.DB) *gorm.DB { return db.Order("created_at asc, id asc") }).
		Where("UPPER(lr_no) = UPPER(?)", strings.TrimSpace(lrNo)).
		First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Booking{}, ErrNotFound
	}
	return b, err
}

// StatusChange is one request to move a shipment to a new status
type StatusChange struct {
	LRNo     string
	To       models.ShipmentStatus
	Actor    models.UserRole
	ActorID  uint
	Location string
	Note     string
}

// UpdateStatus applies a status change if the actor may make it and records
// it in the booking's history.
func (s *Service) UpdateStatus(ctx context.Context, ch StatusChange) (models.Booking, models.ShipmentStatus, error) {
	booking, err := s.FindByLRNo(ctx, ch.LRNo)
	if err != nil {
		return models.Booking{}, "", err
	}
	prev := booking.Status

	if err := statemachine.CanTransition(prev, ch.To, ch.Actor); err != nil {
		return booking, prev, &TransitionError{
			From:  prev,
			To:    ch.To,
			Valid: statemachine.ValidTransitionsFrom(prev),
			Err:   err,
		}
	}

	note := ch.Note
	if ch.Actor == models.RoleAdmin && !agentMay(prev, ch.To) {
		note = strings.TrimSpace("[ADMIN OVERRIDE] " + note)
	}
	actorID := ch.ActorID
	update := models.StatusUpdate{
		BookingID:  booking.ID,
		FromStatus: prev,
		ToStatus:   ch.To,
		ChangedBy:  &actorID,
		Location:   ch.Location,
		Note:       note,
		CreatedAt:  s.now(),
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Booking{}).
			Where("id = ? AND status = ?", booking.ID, prev).
			Update("status", ch.To)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStatusChanged
		}
		return tx.Create(&update).Error
	})
	if errors.Is(err, ErrStatusChanged) {
		return booking, prev, err
	}
	if err != nil {
		return booking, prev, fmt.Errorf("update status: %w", err)
	}
	booking.Status = ch.To
	booking.Updates = append(booking.Updates, update)

	s.Log.Info("status updated",
		zap.String("lr_no", booking.LRNo),
		zap.String("from", string(prev)),
		zap.String("to", string(ch.To)),
		zap.Uint("changed_by", ch.ActorID),
	)
	s.publish(ctx, events.ShipmentEvent{
		Type:           events.TypeStatusChanged,
		LRNo:           booking.LRNo,
		Status:         ch.To,
		PreviousStatus: prev,
		ChangedBy:      ch.ActorID,
		Location:       ch.Location,
		At:             update.CreatedAt,
	})
	return booking, prev, nil
}

func agentMay(from, to models.ShipmentStatus) bool {
	return statemachine.CanTransition(from, to, models.RoleAgent) == nil
}
