package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"tbs/src/config"
	"tbs/src/lib"
	"tbs/src/models"
	"tbs/src/types"
	"time"

	"gorm.io/gorm"
)

type OutcomeStatus string

const (
	// OutcomeApplied means this delivery performed the paid transition.
	OutcomeApplied OutcomeStatus = "applied"
	// OutcomeReplayed means the payment id was already processed and
	// the delivery was a no-op.
	OutcomeReplayed OutcomeStatus = "replayed"
	// OutcomeIgnored means the event type is not one this service
	// consumes. Acknowledged so the provider stops retrying.
	OutcomeIgnored OutcomeStatus = "ignored"
)

type Outcome struct {
	Status     OutcomeStatus
	EventType  string
	BookingID  string
	PaymentID  string
	Amount     int64
	AgentID    *uint
	Commission int64
}

// Reconciler consumes signed provider webhook deliveries and applies a
// single idempotent state transition per payment id: booking goes
// paid, tour seats are decremented once, agent commission is credited
// once. Stateless; safe to run on any number of replicas because every
// guard lives in the datastore.
type Reconciler struct {
	db                *gorm.DB
	secret            string
	commissionPercent uint
}

// errDuplicateDelivery rolls the transaction back when the payment id
// already has a recorded event; the caller reports a replay, not a
// failure.
var errDuplicateDelivery = errors.New("payment event already recorded")

func NewReconciler(db *gorm.DB) *Reconciler {
	return &Reconciler{
		db:                db,
		secret:            config.WebhookSecret(),
		commissionPercent: config.CommissionPercent(),
	}
}

func (r *Reconciler) Reconcile(ctx context.Context, rawBody []byte, signature string) (*Outcome, error) {
	if !VerifySignature(rawBody, signature, r.secret) {
		return nil, ErrAuthentication
	}
	event, err := ParseEvent(rawBody)
	if err != nil {
		return nil, err
	}
	if event.Event != EventPaymentCaptured {
		return &Outcome{Status: OutcomeIgnored, EventType: event.Event}, nil
	}
	entity := event.Payload.Payment.Entity
	if entity.ID == "" {
		return nil, fmt.Errorf("%w: missing payment id", ErrBadPayload)
	}
	notes, err := ParseNotes(entity.Notes)
	if err != nil {
		return nil, err
	}

	outcome := &Outcome{
		Status:    OutcomeApplied,
		EventType: event.Event,
		BookingID: notes.BookingID,
		PaymentID: entity.ID,
		Amount:    entity.Amount,
	}

	if lib.PaymentSeen(ctx, entity.ID) {
		outcome.Status = OutcomeReplayed
		return outcome, nil
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var booking models.Booking
		if err := tx.
			Model(&models.Booking{}).
			Where("booking_id = ?", notes.BookingID).
			First(&booking).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: booking %s", ErrNotFound, notes.BookingID)
			}
			return err
		}

		switch types.PaymentStatus(booking.PaymentStatus) {
		case types.PAYMENT_PAID:
			if booking.PaymentID != nil && *booking.PaymentID == entity.ID {
				outcome.Status = OutcomeReplayed
				return nil
			}
			return ErrAlreadyPaid
		case types.PAYMENT_FAILED:
			return ErrOverbooked
		case types.PAYMENT_CANCELED:
			return fmt.Errorf("%w: booking %s", ErrNotPayable, booking.BookingID)
		}

		if notes.TourID != booking.TourID {
			return fmt.Errorf("%w: tour mismatch for booking %s", ErrBadPayload, booking.BookingID)
		}

		var tour models.Tour
		if err := tx.
			Model(&models.Tour{}).
			Where("id = ?", booking.TourID).
			First(&tour).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: tour %d", ErrNotFound, booking.TourID)
			}
			return err
		}

		base := BaseAmount(tour.PricePerHead, tour.ChildRate, booking.Adults, booking.Children)
		expected := base + GSTAmount(base, tour.GSTPercent)
		if entity.Amount != expected {
			log.Printf("[reconcile] Amount mismatch for booking %s payment %s: captured=%d expected=%d\n",
				booking.BookingID, entity.ID, entity.Amount, expected)
			return ErrAmountMismatch
		}

		var payload types.JSONB
		if err := json.Unmarshal(rawBody, &payload); err != nil {
			return fmt.Errorf("%w: %s", ErrBadPayload, err.Error())
		}
		// The unique index on payment_id is the authoritative replay
		// guard; a duplicate delivery surfaces here as a duplicated key
		// and never reaches the booking or seat updates.
		if err := tx.Create(&models.PaymentEvent{
			PaymentID:   entity.ID,
			OrderID:     entity.OrderID,
			BookingID:   booking.BookingID,
			Amount:      entity.Amount,
			Currency:    entity.Currency,
			Method:      entity.Method,
			Email:       entity.Email,
			Contact:     entity.Contact,
			Payload:     payload,
			ProcessedAt: time.Now(),
		}).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errDuplicateDelivery
			}
			return err
		}

		res := tx.
			Model(&models.Booking{}).
			Where("id = ? AND payment_status = ?", booking.ID, types.PAYMENT_PENDING).
			Updates(map[string]any{
				"payment_status":  types.PAYMENT_PAID,
				"payment_id":      entity.ID,
				"captured_amount": entity.Amount,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			outcome.Status = OutcomeReplayed
			return nil
		}

		seats := booking.Adults + booking.Children
		res = tx.
			Model(&models.Tour{}).
			Where("id = ? AND remaining_occupancy >= ?", tour.ID, seats).
			UpdateColumn("remaining_occupancy", gorm.Expr("remaining_occupancy - ?", seats))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrOverbooked
		}

		if booking.AgentID != nil {
			commission, err := r.creditCommission(tx, &booking, entity.ID, base)
			if err != nil {
				return err
			}
			outcome.AgentID = booking.AgentID
			outcome.Commission = commission
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, errDuplicateDelivery) {
			outcome.Status = OutcomeReplayed
			return outcome, nil
		}
		if errors.Is(err, ErrOverbooked) {
			r.markFailed(ctx, notes.BookingID)
		}
		return nil, err
	}

	if outcome.Status == OutcomeApplied {
		lib.MarkPaymentSeen(ctx, entity.ID, 24*time.Hour)
	}
	return outcome, nil
}

// creditCommission credits a percentage of the pre-GST base to the
// agent wallet. The commissions table carries the payment id under a
// unique index so the credit is at-most-once per payment event.
func (r *Reconciler) creditCommission(tx *gorm.DB, booking *models.Booking, paymentId string, base int64) (int64, error) {
	var agent models.Agent
	if err := tx.
		Model(&models.Agent{}).
		Where("id = ?", *booking.AgentID).
		First(&agent).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("%w: agent %d", ErrNotFound, *booking.AgentID)
		}
		return 0, err
	}
	percent := r.commissionPercent
	if agent.CommissionPercent != nil {
		percent = *agent.CommissionPercent
	}
	commission := (base*int64(percent) + 50) / 100
	if err := tx.Create(&models.Commission{
		AgentID:   agent.ID,
		BookingID: booking.ID,
		PaymentID: paymentId,
		Amount:    commission,
	}).Error; err != nil {
		return 0, err
	}
	if err := tx.
		Model(&models.Agent{}).
		Where("id = ?", agent.ID).
		UpdateColumn("wallet_balance", gorm.Expr("wallet_balance + ?", commission)).
		Error; err != nil {
		return 0, err
	}
	return commission, nil
}

// markFailed records the terminal overbooked state outside the rolled
// back reconciliation transaction so seats and wallet stay untouched
// while the failure is still durable.
func (r *Reconciler) markFailed(ctx context.Context, bookingId string) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.
			Model(&models.Booking{}).
			Where("booking_id = ? AND payment_status = ?", bookingId, types.PAYMENT_PENDING).
			Update("payment_status", types.PAYMENT_FAILED).
			Error
	})
	if err != nil {
		log.Printf("[reconcile] Could not mark booking %s failed: %s\n", bookingId, err.Error())
	}
}
