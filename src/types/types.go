package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type JSONB map[string]any

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONB) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

type Environment string

const (
	Local      Environment = "local"
	Test       Environment = "test"
	Production Environment = "production"
)

type TourStatus string

const (
	TOUR_DRAFT    TourStatus = "draft"
	TOUR_OPEN     TourStatus = "open"
	TOUR_CLOSED   TourStatus = "closed"
	TOUR_ARCHIVED TourStatus = "archived"
)

// PaymentStatus is the booking payment lifecycle. paid and failed are
// terminal; only the webhook reconciler writes them.
type PaymentStatus string

const (
	PAYMENT_PENDING  PaymentStatus = "pending"
	PAYMENT_PAID     PaymentStatus = "paid"
	PAYMENT_FAILED   PaymentStatus = "failed"
	PAYMENT_CANCELED PaymentStatus = "canceled"
)

type UserRole string

const (
	ROLE_CUSTOMER UserRole = "customer"
	ROLE_AGENT    UserRole = "agent"
	ROLE_ADMIN    UserRole = "admin"
)

type CreateTourRequestBody struct {
	Name         string `json:"name" binding:"required"`
	Location     string `json:"location" binding:"required"`
	Description  string `json:"description,omitempty"`
	PricePerHead int64  `json:"price_per_head" binding:"required,gt=0"`
	ChildRate    int64  `json:"child_rate,omitempty" binding:"omitempty,gte=0"`
	GSTPercent   uint   `json:"gst_percent" binding:"gte=0,lte=100"`
	Occupancy    uint   `json:"occupancy" binding:"required,gt=0"`
	StartDate    string `json:"start_date" binding:"required,tourdate"`
}

type CreateBookingRequestBody struct {
	TourID   uint  `json:"tour" binding:"required"`
	Adults   uint  `json:"adults" binding:"required,gt=0"`
	Children uint  `json:"children,omitempty" binding:"omitempty,gte=0"`
	AgentID  *uint `json:"agent,omitempty"`
}

type RegisterUserRequestBody struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name" binding:"required"`
	Role  string `json:"role,omitempty" binding:"omitempty,oneof=customer agent admin"`
}

type LoginRequestBody struct {
	Email string `json:"email" binding:"required,email"`
}

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type TourQueryFilters struct {
	Location    string `form:"location,omitempty"`
	StartsAfter string `form:"starts_after,omitempty"`
	Status      string `form:"status,omitempty"`
}

type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

type APIResponseTour struct {
	ID                 uint       `json:"id,omitempty"`
	Name               string     `json:"name,omitempty"`
	Location           string     `json:"location,omitempty"`
	PricePerHead       int64      `json:"price_per_head,omitempty"`
	ChildRate          int64      `json:"child_rate,omitempty"`
	GSTPercent         uint       `json:"gst_percent,omitempty"`
	Occupancy          uint       `json:"occupancy,omitempty"`
	RemainingOccupancy uint       `json:"remaining_occupancy"`
	StartDate          *time.Time `json:"start_date,omitempty"`
	Status             string     `json:"status,omitempty"`
}

type APIResponseBooking struct {
	ID            uint   `json:"id,omitempty"`
	BookingID     string `json:"booking_id,omitempty"`
	TourID        uint   `json:"tour_id,omitempty"`
	Adults        uint   `json:"adults,omitempty"`
	Children      uint   `json:"children,omitempty"`
	BaseAmount    int64  `json:"base_amount,omitempty"`
	GSTAmount     int64  `json:"gst_amount,omitempty"`
	TotalAmount   int64  `json:"total_amount,omitempty"`
	Currency      string `json:"currency,omitempty"`
	PaymentStatus string `json:"payment_status,omitempty"`
	OrderID       string `json:"order_id,omitempty"`

	Tour *APIResponseTour `json:"tour,omitempty"`

	Timestamps
}
