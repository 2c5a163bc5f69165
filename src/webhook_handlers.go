package main

import (
	"errors"
	"io"
	"log"
	"net/http"
	"tbs/src/db"
	"tbs/src/lib"
	"tbs/src/lib/mailer"
	"tbs/src/payments"
	"tbs/src/types"
	"tbs/src/utils"

	"github.com/gin-gonic/gin"
)

func razorpayWebhookRoute(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	apiv1.POST("/webhook/razorpay", func(ctx *gin.Context) {
		// The raw bytes must be captured before any JSON handling;
		// re-serialization would break signature verification.
		payload, err := io.ReadAll(ctx.Request.Body)
		if err != nil {
			log.Printf("Error reading request body: %s\n", err.Error())
			ctx.Status(http.StatusServiceUnavailable)
			return
		}
		signature := ctx.GetHeader("x-razorpay-signature")

		reconciler := payments.NewReconciler(db.GetDb())
		outcome, err := reconciler.Reconcile(ctx.Request.Context(), payload, signature)
		if err != nil {
			status, message := webhookErrorResponse(err)
			if incidentWorthy(err) {
				go notifyReconciliationIncident(payload, err)
			}
			if errors.Is(err, payments.ErrOverbooked) {
				cause := err
				go func() {
					if event, perr := payments.ParseEvent(payload); perr == nil {
						entity := event.Payload.Payment.Entity
						publishReconciliationOutcome(&payments.Outcome{
							Status:    "failed",
							BookingID: entity.Notes["bookingID"],
							PaymentID: entity.ID,
							Amount:    entity.Amount,
						}, cause)
					}
				}()
			}
			ctx.JSON(status, gin.H{"message": message})
			return
		}

		log.Printf("[RazorpayEvent] %s %s\n", outcome.EventType, outcome.Status)
		if outcome.Status == payments.OutcomeApplied {
			go publishReconciliationOutcome(outcome, nil)
		}
		ctx.JSON(http.StatusOK, gin.H{"message": string(outcome.Status)})
	})
	return apiv1
}

// incidentWorthy selects the failures where money may have moved
// against bad or missing records, so an operator has to look. Bad
// payloads count: the signature already verified, so inconsistent
// metadata on a captured payment is a data problem, not noise.
func incidentWorthy(err error) bool {
	return errors.Is(err, payments.ErrAmountMismatch) ||
		errors.Is(err, payments.ErrNotFound) ||
		errors.Is(err, payments.ErrAlreadyPaid) ||
		errors.Is(err, payments.ErrBadPayload)
}

func webhookErrorResponse(err error) (int, string) {
	switch {
	case errors.Is(err, payments.ErrAuthentication):
		return http.StatusBadRequest, "signature verification failed"
	case errors.Is(err, payments.ErrBadPayload):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, payments.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, payments.ErrAmountMismatch):
		return http.StatusConflict, "captured amount does not match expected amount"
	case errors.Is(err, payments.ErrOverbooked):
		return http.StatusConflict, "tour is fully booked"
	case errors.Is(err, payments.ErrAlreadyPaid), errors.Is(err, payments.ErrNotPayable):
		return http.StatusConflict, err.Error()
	default:
		// Transient storage problems come back 5xx so the provider
		// retries; the idempotency key makes a retry safe.
		return http.StatusServiceUnavailable, "temporary failure, retry"
	}
}

func publishReconciliationOutcome(outcome *payments.Outcome, cause error) {
	payload := &types.JSONB{
		"source":     "payment.captured",
		"status":     string(outcome.Status),
		"booking_id": outcome.BookingID,
		"payment_id": outcome.PaymentID,
		"amount":     outcome.Amount,
	}
	if cause != nil {
		(*payload)["error"] = cause.Error()
	}
	if err := lib.KafkaProduceMessage("bookingPayments", utils.WithSuffix("booking-payments"), payload); err != nil {
		log.Printf("Error publishing reconciliation outcome: %s\n", err.Error())
	}
}

func notifyReconciliationIncident(rawBody []byte, cause error) {
	event, err := payments.ParseEvent(rawBody)
	if err != nil {
		return
	}
	entity := event.Payload.Payment.Entity
	mailer.NotifyIncident("reconciliation", entity.ID, entity.Notes["bookingID"], cause.Error())
}
