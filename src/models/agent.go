package models

import "tbs/src/types"

type Agent struct {
	ID     uint `gorm:"primarykey" json:"id"`
	UserID uint `json:"user_id,omitempty"`
	// CommissionPercent overrides the configured default when set.
	CommissionPercent *uint `json:"commission_percent,omitempty"`
	// WalletBalance is paisa, mutated only through an atomic increment.
	WalletBalance int64 `json:"wallet_balance"`

	User        *User        `gorm:"foreignKey:user_id" json:"user,omitempty"`
	Commissions []Commission `json:"commissions,omitempty"`

	types.Timestamps
}

type Commission struct {
	ID        uint `gorm:"primarykey" json:"id"`
	AgentID   uint `json:"agent_id,omitempty"`
	BookingID uint `json:"booking_id,omitempty"`
	// PaymentID carries the provider payment id; the unique index makes
	// the credit at-most-once per payment event.
	PaymentID string `gorm:"uniqueIndex" json:"payment_id,omitempty"`
	Amount    int64  `json:"amount,omitempty"`

	Agent   *Agent   `gorm:"foreignKey:agent_id" json:"-"`
	Booking *Booking `gorm:"foreignKey:booking_id" json:"booking,omitempty"`

	types.Timestamps
}
