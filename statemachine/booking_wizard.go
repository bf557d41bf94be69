package statemachine

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"logitrack-api/models"
	"logitrack-api/rates"
)

// Step is a position in the booking wizard
type Step int

const (
	StepService Step = iota + 1
	StepPackage
	StepAddresses
	StepSchedule
	StepPayment
	StepSuccess
)

func (s Step) String() string {
	switch s {
	case StepService:
		return "service"
	case StepPackage:
		return "package"
	case StepAddresses:
		return "addresses"
	case StepSchedule:
		return "schedule"
	case StepPayment:
		return "payment"
	case StepSuccess:
		return "success"
	}
	return "step(" + strconv.Itoa(int(s)) + ")"
}

// SubmitFailedMessage is shown when the booking request is rejected
const SubmitFailedMessage = "There was an error submitting your booking. Please try again."

var (
	ErrUnknownService = errors.New("unknown shipping service")
	ErrWrongStep      = errors.New("action not available at this step")
	ErrWizardComplete = errors.New("booking already submitted")
	ErrSubmitFailed   = errors.New(SubmitFailedMessage)
)

// StepError reports why the current step cannot be left
type StepError struct {
	Step     Step
	Problems []string
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s step incomplete: %s", e.Step, strings.Join(e.Problems, "; "))
}

var PackageTypes = []string{"box", "envelope", "pallet", "tube"}

// TimeWindows maps pickup window ids to their display labels
var TimeWindows = map[string]string{
	"morning":   "Morning (9:00 AM - 12:00 PM)",
	"afternoon": "Afternoon (12:00 PM - 3:00 PM)",
	"evening":   "Evening (3:00 PM - 6:00 PM)",
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail accepts an empty address or a plausible one
func ValidEmail(email string) bool {
	return email == "" || emailPattern.MatchString(email)
}

// Card holds payment details; they are never part of the booking request
type Card struct {
	Number string `json:"number"`
	Name   string `json:"name"`
	Expiry string `json:"expiry"`
	CVV    string `json:"cvv"`
}

// Draft is the transient form state of a booking
type Draft struct {
	ServiceType      string         `json:"service_type"`
	PackageType      string         `json:"package_type"`
	Weight           float64        `json:"weight"`
	Length           float64        `json:"length"`
	Width            float64        `json:"width"`
	Height           float64        `json:"height"`
	Description      string         `json:"description"`
	Pickup           models.Address `json:"pickup"`
	Delivery         models.Address `json:"delivery"`
	PickupDate       string         `json:"pickup_date"`
	PickupTimeWindow string         `json:"pickup_time_window"`
	PaymentMethod    string         `json:"payment_method"`
	Card             Card           `json:"card"`
}

// NewDraft returns a draft with the form defaults filled in
func NewDraft() Draft {
	return Draft{
		PackageType:   "box",
		Weight:        5,
		Length:        20,
		Width:         20,
		Height:        20,
		PaymentMethod: models.PaymentCredit,
	}
}

// DraftUpdate carries the fields to change; nil fields are left as they are
type DraftUpdate struct {
	PackageType      *string         `json:"package_type"`
	Weight           *float64        `json:"weight"`
	Length           *float64        `json:"length"`
	Width            *float64        `json:"width"`
	Height           *float64        `json:"height"`
	Description      *string         `json:"description"`
	Pickup           *models.Address `json:"pickup"`
	Delivery         *models.Address `json:"delivery"`
	PickupDate       *string         `json:"pickup_date"`
	PickupTimeWindow *string         `json:"pickup_time_window"`
	PaymentMethod    *string         `json:"payment_method"`
	Card             *Card           `json:"card"`
}

func (d *Draft) Apply(u DraftUpdate) {
	if u.PackageType != nil {
		d.PackageType = *u.PackageType
	}
	if u.Weight != nil {
		d.Weight = *u.Weight
	}
	if u.Length != nil {
		d.Length = *u.Length
	}
	if u.Width != nil {
		d.Width = *u.Width
	}
	if u.Height != nil {
		d.Height = *u.Height
	}
	if u.Description != nil {
		d.Description = *u.Description
	}
	if u.Pickup != nil {
		d.Pickup = *u.Pickup
	}
	if u.Delivery != nil {
		d.Delivery = *u.Delivery
	}
	if u.PickupDate != nil {
		d.PickupDate = *u.PickupDate
	}
	if u.PickupTimeWindow != nil {
		d.PickupTimeWindow = *u.PickupTimeWindow
	}
	if u.PaymentMethod != nil {
		d.PaymentMethod = *u.PaymentMethod
	}
	if u.Card != nil {
		d.Card = *u.Card
	}
}

// Validate returns the inline messages for a step; none means the step is complete
func (d Draft) Validate(step Step) []string {
	var problems []string
	switch step {
	case StepService:
		if d.ServiceType == "" {
			problems = append(problems, "Please select a shipping service.")
		} else if _, ok := rates.LookupService(d.ServiceType); !ok {
			problems = append(problems, "Unknown shipping service "+strconv.Quote(d.ServiceType)+".")
		}

	case StepPackage:
		if !slices.Contains(PackageTypes, d.PackageType) {
			problems = append(problems, "Package type is required.")
		}
		for _, f := range []struct {
			name  string
			value float64
		}{
			{"Weight", d.Weight},
			{"Length", d.Length},
			{"Width", d.Width},
			{"Height", d.Height},
		} {
			if f.value <= 0 {
				problems = append(problems, f.name+" is required.")
			}
		}

	case StepAddresses:
		problems = append(problems, addressProblems("Pickup", d.Pickup)...)
		problems = append(problems, addressProblems("Delivery", d.Delivery)...)

	case StepSchedule:
		if d.PickupDate == "" {
			problems = append(problems, "Pickup date is required.")
		} else if _, err := time.Parse(time.DateOnly, d.PickupDate); err != nil {
			problems = append(problems, "Pickup date must be in YYYY-MM-DD format.")
		}
		if _, ok := TimeWindows[d.PickupTimeWindow]; !ok {
			problems = append(problems, "Preferred time window is required.")
		}

	case StepPayment:
		switch d.PaymentMethod {
		case models.PaymentCredit:
			if d.Card.Number == "" || d.Card.Name == "" || d.Card.Expiry == "" || d.Card.CVV == "" {
				problems = append(problems, "Card number, name, expiry and CVV are required.")
			}
		case models.PaymentCashOnDelivery:
		default:
			problems = append(problems, "Payment method is required.")
		}
	}
	return problems
}

func addressProblems(label string, a models.Address) []string {
	var problems []string
	for _, field := range a.MissingFields() {
		problems = append(problems, label+" address must include "+field+".")
	}
	if !ValidEmail(a.Email) {
		problems = append(problems, label+" email is invalid.")
	}
	return problems
}

// StepValid is the pure gate for leaving a step forward
func (d Draft) StepValid(step Step) bool {
	return len(d.Validate(step)) == 0
}

// Request maps the draft to the booking payload; card details are dropped
func (d Draft) Request() models.BookingRequest {
	req := models.BookingRequest{
		ServiceType:      d.ServiceType,
		PackageType:      d.PackageType,
		Weight:           d.Weight,
		Dimensions:       FormatDimensions(d.Length, d.Width, d.Height),
		Description:      d.Description,
		PickupAddress:    d.Pickup,
		DeliveryAddress:  d.Delivery,
		PickupDate:       d.PickupDate,
		PickupTimeWindow: d.PickupTimeWindow,
		PaymentMethod:    d.PaymentMethod,
	}
	if d.PaymentMethod == models.PaymentCashOnDelivery {
		req.Status = models.StatusPending
	}
	return req
}

// Redacted hides card details for display
func (d Draft) Redacted() Draft {
	if n := len(d.Card.Number); n > 4 {
		d.Card.Number = strings.Repeat("*", n-4) + d.Card.Number[n-4:]
	}
	if d.Card.CVV != "" {
		d.Card.CVV = "***"
	}
	return d
}

// FormatDimensions renders L×W×H the way bookings store them
func FormatDimensions(length, width, height float64) string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return f(length) + "x" + f(width) + "x" + f(height)
}

// ParseDimensions is the inverse of FormatDimensions
func ParseDimensions(s string) (length, width, height float64, err error) {
	parts := strings.Split(strings.ToLower(s), "x")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("dimensions %q: want LxWxH", s)
	}
	vals := make([]float64, 3)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil || v <= 0 {
			return 0, 0, 0, fmt.Errorf("dimensions %q: %q is not a positive number", s, p)
		}
		vals[i] = v
	}
	return vals[0], vals[1], vals[2], nil
}

// BookingSubmitter sends a finished booking to the backend
type BookingSubmitter interface {
	SubmitBooking(ctx context.Context, req models.BookingRequest) (models.BookingResponse, error)
}

// Wizard is the service → package → addresses → schedule → payment flow
type Wizard struct {
	Step      Step   `json:"step"`
	Draft     Draft  `json:"draft"`
	Reference string `json:"reference,omitempty"`
}

func NewWizard() *Wizard {
	return &Wizard{Step: StepService, Draft: NewDraft()}
}

// SelectService picks the service and moves straight to the package step
func (w *Wizard) SelectService(id string) error {
	if w.Step == StepSuccess {
		return ErrWizardComplete
	}
	if w.Step != StepService {
		return ErrWrongStep
	}
	if _, ok := rates.LookupService(id); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownService, id)
	}
	w.Draft.ServiceType = id
	w.Step = StepPackage
	return nil
}

// Update edits the draft without moving between steps
func (w *Wizard) Update(u DraftUpdate) error {
	if w.Step == StepSuccess {
		return ErrWizardComplete
	}
	w.Draft.Apply(u)
	return nil
}

// Next advances one step if the current step validates
func (w *Wizard) Next() error {
	switch w.Step {
	case StepSuccess:
		return ErrWizardComplete
	case StepPayment:
		return ErrWrongStep
	}
	if problems := w.Draft.Validate(w.Step); len(problems) > 0 {
		return &StepError{Step: w.Step, Problems: problems}
	}
	w.Step++
	return nil
}

// Back goes one step back without validating; the service step is the floor
func (w *Wizard) Back() error {
	if w.Step == StepSuccess {
		return ErrWizardComplete
	}
	if w.Step > StepService {
		w.Step--
	}
	return nil
}

// Estimate is the cost preview for the current draft
func (w *Wizard) Estimate() rates.Estimate {
	return rates.EstimateBooking(w.Draft.ServiceType, w.Draft.Weight)
}

// Submit sends the booking. On success the wizard ends on StepSuccess holding
// the LR number; on failure it stays on the payment step.
func (w *Wizard) Submit(ctx context.Context, s BookingSubmitter) (string, error) {
	if w.Step == StepSuccess {
		return "", ErrWizardComplete
	}
	if w.Step != StepPayment {
		return "", ErrWrongStep
	}
	for step := StepService; step <= StepPayment; step++ {
		if problems := w.Draft.Validate(step); len(problems) > 0 {
			return "", &StepError{Step: step, Problems: problems}
		}
	}

	resp, err := s.SubmitBooking(ctx, w.Draft.Request())
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSubmitFailed, err)
	}
	if resp.LRNo == "" {
		return "", fmt.Errorf("%w: no reference returned", ErrSubmitFailed)
	}
	w.Step = StepSuccess
	w.Reference = resp.LRNo
	return resp.LRNo, nil
}
