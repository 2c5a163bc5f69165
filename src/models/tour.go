package models

import (
	"tbs/src/types"
	"time"
)

// Tour pricing is stored in whole rupees; paisa conversion happens in
// the payments package when amounts are compared against the provider.
type Tour struct {
	ID           uint   `gorm:"primarykey" json:"id"`
	Name         string `json:"name,omitempty"`
	Location     string `json:"location,omitempty"`
	Description  string `json:"description,omitempty"`
	PricePerHead int64  `json:"price_per_head"`
	ChildRate    int64  `json:"child_rate"`
	GSTPercent   uint   `json:"gst_percent"`
	Occupancy    uint   `json:"occupancy"`
	// RemainingOccupancy is only ever decremented through a conditional
	// update guarded by remaining_occupancy >= seats.
	RemainingOccupancy uint       `json:"remaining_occupancy"`
	StartDate          *time.Time `json:"start_date,omitempty"`
	Status             string     `gorm:"default:'open'" json:"status,omitempty"`

	Bookings []Booking `json:"bookings,omitempty"`

	types.Timestamps
}
