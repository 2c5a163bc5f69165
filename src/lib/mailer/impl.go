package mailer

import (
	"fmt"
	"log"
	"os"
	"tbs/src/config"
	"tbs/src/lib"
	"time"
)

// NotifyIncident mails the operations inbox when a webhook delivery
// needs manual reconciliation (amount mismatch, missing booking).
// Failures are logged, never propagated; the webhook response does not
// depend on the notification sink.
func NotifyIncident(kind string, paymentId string, bookingId string, detail string) {
	opsEmail := os.Getenv("OPS_EMAIL")
	if opsEmail == "" {
		log.Printf("[mailer] OPS_EMAIL not set, skipping %s notification for %s\n", kind, paymentId)
		return
	}
	from := os.Getenv("SMTP_FROM")
	body := fmt.Sprintf(
		"Payment webhook requires manual review.\n\nIncident: %s\nPayment ID: %s\nBooking ID: %s\nDetail: %s\nAt: %s\n",
		kind, paymentId, bookingId, detail, time.Now().Format(config.TIME_PARSE_FORMAT),
	)
	input := &lib.SendMailInput{
		From:     from,
		FromName: "Bookings",
		To:       []string{opsEmail},
		Subject:  fmt.Sprintf("[payments] %s on booking %s", kind, bookingId),
		Body:     body,
	}
	if err := lib.SendMail(input); err != nil {
		log.Printf("[mailer] Could not send %s notification for %s: %s\n", kind, paymentId, err.Error())
	}
}
