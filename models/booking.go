package models

import (
	"fmt"
	"time"
)

// ShipmentStatus represents all possible states of a shipment
type ShipmentStatus string

const (
	StatusPending        ShipmentStatus = "pending"
	StatusInTransit      ShipmentStatus = "in-transit"
	StatusOutForDelivery ShipmentStatus = "out-for-delivery"
	StatusDelivered      ShipmentStatus = "delivered"
	StatusDelayed        ShipmentStatus = "delayed"
)

// AllStatuses lists statuses in lifecycle order
var AllStatuses = []ShipmentStatus{
	StatusPending,
	StatusInTransit,
	StatusOutForDelivery,
	StatusDelivered,
	StatusDelayed,
}

func (s ShipmentStatus) Valid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Label is the human readable form shown on tracking timelines
func (s ShipmentStatus) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusInTransit:
		return "In Transit"
	case StatusOutForDelivery:
		return "Out for Delivery"
	case StatusDelivered:
		return "Delivered"
	case StatusDelayed:
		return "Delayed"
	}
	return "Processing"
}

const (
	PaymentCredit         = "credit"
	PaymentCashOnDelivery = "cash_on_delivery"
)

// Address is a pickup or delivery contact, stored as JSON on the booking
type Address struct {
	Name       string `json:"name"`
	Address    string `json:"address"`
	City       string `json:"city"`
	Zip        string `json:"zip"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
	Email      string `json:"email,omitempty"`
	Particular string `json:"particular,omitempty"`
}

// MissingFields returns the names of required address fields left blank
func (a Address) MissingFields() []string {
	var missing []string
	for _, f := range []struct {
		name, value string
	}{
		{"name", a.Name},
		{"address", a.Address},
		{"city", a.City},
		{"zip", a.Zip},
		{"country", a.Country},
		{"phone", a.Phone},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

func (a Address) String() string {
	return fmt.Sprintf("%s, %s, %s, %s, %s, %s, %s", a.Name, a.Address, a.City, a.Zip, a.Country, a.Phone, a.Email)
}

// Booking is the server-owned shipment record, identified by its LR number
type Booking struct {
	ID                uint           `json:"id" gorm:"primaryKey"`
	LRNo              string         `json:"lr_no" gorm:"size:20;uniqueIndex;not null"`
	BookingDate       time.Time      `json:"booking_date" gorm:"index"`
	EstimatedDelivery *time.Time     `json:"dod"`
	FromLocation      string         `json:"from_location" gorm:"size:100"`
	ToLocation        string         `json:"to_location" gorm:"size:100"`
	BranchFromPhone   string         `json:"branch_from_phone" gorm:"size:15"`
	BranchToPhone     string         `json:"branch_to_phone" gorm:"size:15"`
	ServiceType       string         `json:"service_type" gorm:"size:50"`
	PackageType       string         `json:"package_type" gorm:"size:50"`
	Weight            float64        `json:"weight"`
	Dimensions        string         `json:"dimensions" gorm:"size:50"`
	ActualWeight      float64        `json:"actual_weight"`
	ChargeableWeight  float64        `json:"chargeable_weight"`
	Freight           float64        `json:"freight"`
	Description       string         `json:"description"`
	PickupAddress     Address        `json:"pickup_address" gorm:"serializer:json"`
	DeliveryAddress   Address        `json:"delivery_address" gorm:"serializer:json"`
	PickupDate        *time.Time     `json:"pickup_date"`
	PickupTimeWindow  string         `json:"pickup_time_window" gorm:"size:50"`
	PaymentMethod     string         `json:"payment_method" gorm:"size:50"`
	Status            ShipmentStatus `json:"status" gorm:"size:50;not null;default:'in-transit';index"`
	Phone             string         `json:"phone,omitempty" gorm:"size:15"`
	DeliveryEmail     string         `json:"delivery_email,omitempty"`
	UserID            *uint          `json:"user_id" gorm:"index"`
	User              *User          `json:"-" gorm:"foreignKey:UserID"`
	Updates           []StatusUpdate `json:"updates,omitempty" gorm:"foreignKey:BookingID"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// StatusUpdate tracks every status change of a booking
type StatusUpdate struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	BookingID  uint           `json:"booking_id" gorm:"not null;index"`
	FromStatus ShipmentStatus `json:"from_status"`
	ToStatus   ShipmentStatus `json:"to_status" gorm:"not null"`
	ChangedBy  *uint          `json:"changed_by"`
	Location   string         `json:"location"`
	Note       string         `json:"note"`
	CreatedAt  time.Time      `json:"created_at"`
}

// ShipmentView is the dashboard projection of a booking
type ShipmentView struct {
	ID                string         `json:"id" yaml:"id"`
	Status            ShipmentStatus `json:"status" yaml:"status"`
	Origin            string         `json:"origin" yaml:"origin"`
	Destination       string         `json:"destination" yaml:"destination"`
	Service           string         `json:"service" yaml:"service"`
	Weight            float64        `json:"weight" yaml:"weight"`
	CreatedAt         time.Time      `json:"createdAt" yaml:"createdAt"`
	EstimatedDelivery *time.Time     `json:"estimatedDelivery,omitempty" yaml:"estimatedDelivery,omitempty"`
	BranchFromPhone   string         `json:"branch_from_phone,omitempty" yaml:"branchFromPhone,omitempty"`
	BranchToPhone     string         `json:"branch_to_phone,omitempty" yaml:"branchToPhone,omitempty"`
}

func (b Booking) View() ShipmentView {
	return ShipmentView{
		ID:                b.LRNo,
		Status:            b.Status,
		Origin:            b.FromLocation,
		Destination:       b.ToLocation,
		Service:           b.ServiceType,
		Weight:            b.ActualWeight,
		CreatedAt:         b.BookingDate,
		EstimatedDelivery: b.EstimatedDelivery,
		BranchFromPhone:   b.BranchFromPhone,
		BranchToPhone:     b.BranchToPhone,
	}
}

// BookingRequest is the payload a client posts to create a booking
type BookingRequest struct {
	ServiceType      string         `json:"service_type" binding:"required"`
	PackageType      string         `json:"package_type" binding:"required"`
	Weight           float64        `json:"weight" binding:"required,gt=0"`
	Dimensions       string         `json:"dimensions" binding:"required"`
	Description      string         `json:"description"`
	PickupAddress    Address        `json:"pickup_address"`
	DeliveryAddress  Address        `json:"delivery_address"`
	PickupDate       string         `json:"pickup_date" binding:"required"`
	PickupTimeWindow string         `json:"pickup_time_window" binding:"required"`
	PaymentMethod    string         `json:"payment_method" binding:"required"`
	Status           ShipmentStatus `json:"status,omitempty"`
	FromLocation     string         `json:"from_location,omitempty"`
	ToLocation       string         `json:"to_location,omitempty"`
	BranchFromPhone  string         `json:"branch_from_phone,omitempty"`
	BranchToPhone    string         `json:"branch_to_phone,omitempty"`
	Phone            string         `json:"phone,omitempty"`
}

// BookingResponse is returned once a booking is stored
type BookingResponse struct {
	Message   string  `json:"message"`
	BookingID uint    `json:"booking_id"`
	LRNo      string  `json:"lr_no"`
	Freight   float64 `json:"freight"`
}

// ShipmentPage is one page of a paginated shipment listing
type ShipmentPage struct {
	Count    int64          `json:"count"`
	Next     *string        `json:"next"`
	Previous *string        `json:"previous"`
	Results  []ShipmentView `json:"results"`
}
