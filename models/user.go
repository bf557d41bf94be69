package models

import (
	"time"
)

// UserRole defines allowed roles in the system
type UserRole string

const (
	RoleClient UserRole = "client"
	RoleAgent  UserRole = "agent"
	RoleAdmin  UserRole = "admin"
)

// Valid reports whether r is one of the known roles
func (r UserRole) Valid() bool {
	switch r {
	case RoleClient, RoleAgent, RoleAdmin:
		return true
	}
	return false
}

// Staff roles see and update every shipment
func (r UserRole) Staff() bool {
	return r == RoleAgent || r == RoleAdmin
}

type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Role         UserRole  `json:"user_type" gorm:"not null;default:'client'"`
	Phone        string    `json:"phone,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserInfo is the public shape of a user returned by login and stored by clients
type UserInfo struct {
	ID    uint     `json:"id" yaml:"id"`
	Name  string   `json:"name" yaml:"name"`
	Email string   `json:"email" yaml:"email"`
	Role  UserRole `json:"user_type" yaml:"user_type"`
}

func (u User) Info() UserInfo {
	return UserInfo{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}
