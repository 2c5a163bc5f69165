package models

import (
	"tbs/src/types"
	"time"

	"github.com/google/uuid"
)

// PaymentEvent records every applied webhook delivery. PaymentID is the
// provider transaction id and doubles as the idempotency key; the
// unique index turns duplicate deliveries into detectable no-ops.
type PaymentEvent struct {
	ID uuid.UUID `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`

	PaymentID   string `gorm:"uniqueIndex"`
	OrderID     string
	BookingID   string
	Amount      int64
	Currency    string
	Method      string
	Email       string
	Contact     string
	Payload     types.JSONB
	ProcessedAt time.Time

	types.Timestamps
}
