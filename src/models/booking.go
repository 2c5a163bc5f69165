package models

import "tbs/src/types"

type Booking struct {
	ID        uint   `gorm:"primarykey" json:"id"`
	BookingID string `gorm:"uniqueIndex" json:"booking_id,omitempty"`
	TourID    uint   `json:"tour_id,omitempty"`
	UserID    uint   `json:"user_id,omitempty"`
	AgentID   *uint  `json:"agent_id,omitempty"`
	Adults    uint   `json:"adults,omitempty"`
	Children  uint   `json:"children"`

	// Monetary fields are paisa. TotalAmount is immutable once the
	// booking is paid and equals the captured amount at the provider.
	BaseAmount  int64  `json:"base_amount,omitempty"`
	GSTAmount   int64  `json:"gst_amount"`
	TotalAmount int64  `json:"total_amount,omitempty"`
	Currency    string `gorm:"default:'INR'" json:"currency,omitempty"`

	PaymentStatus  string  `gorm:"default:'pending'" json:"payment_status,omitempty"`
	OrderID        *string `json:"order_id,omitempty"`
	PaymentID      *string `json:"payment_id,omitempty"`
	CapturedAmount *int64  `json:"captured_amount,omitempty"`

	Tour  *Tour  `gorm:"foreignKey:tour_id" json:"tour,omitempty"`
	User  *User  `gorm:"foreignKey:user_id" json:"user,omitempty"`
	Agent *Agent `gorm:"foreignKey:agent_id" json:"agent,omitempty"`

	types.Timestamps
}
