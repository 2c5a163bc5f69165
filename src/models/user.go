package models

import "tbs/src/types"

type User struct {
	ID    uint   `gorm:"primarykey" json:"id"`
	Email string `gorm:"uniqueIndex" json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	Role  string `gorm:"default:'customer'" json:"role,omitempty"`

	Bookings []Booking `json:"bookings,omitempty"`

	types.Timestamps
}
