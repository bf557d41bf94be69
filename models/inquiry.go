package models

import "time"

// Inquiry is a contact form submission
type Inquiry struct {
	ID        uint      `json:"id" gorm:"primaryKey" bson:"-"`
	Name      string    `json:"name" gorm:"not null" bson:"name"`
	Email     string    `json:"email" gorm:"not null" bson:"email"`
	Phone     string    `json:"phone" bson:"phone"`
	Subject   string    `json:"subject" gorm:"not null" bson:"subject"`
	Message   string    `json:"message" gorm:"not null" bson:"message"`
	CreatedAt time.Time `json:"created_at" bson:"createdAt"`
}

// TrackingUpdate is one entry on a tracking timeline
type TrackingUpdate struct {
	Status      string    `json:"status"`
	Location    string    `json:"location"`
	Timestamp   time.Time `json:"timestamp"`
	Description string    `json:"description"`
}

// TrackingResult is the response of a tracking lookup
type TrackingResult struct {
	Success           bool             `json:"success"`
	Message           string           `json:"message,omitempty"`
	TrackingNumber    string           `json:"trackingNumber,omitempty"`
	Status            ShipmentStatus   `json:"status,omitempty"`
	EstimatedDelivery string           `json:"estimatedDelivery,omitempty"`
	Origin            string           `json:"origin,omitempty"`
	Destination       string           `json:"destination,omitempty"`
	Service           string           `json:"service,omitempty"`
	Weight            string           `json:"weight,omitempty"`
	Updates           []TrackingUpdate `json:"updates,omitempty"`
}
