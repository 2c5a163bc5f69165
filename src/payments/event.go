package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"tbs/src/config"
	"time"
)

const EventPaymentCaptured = "payment.captured"

// WebhookEvent mirrors the provider's delivery envelope. Notes values
// are strings on the wire and go through ParseNotes before use.
type WebhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity PaymentEntity `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

type PaymentEntity struct {
	ID        string            `json:"id"`
	Amount    int64             `json:"amount"`
	Currency  string            `json:"currency"`
	Status    string            `json:"status"`
	OrderID   string            `json:"order_id"`
	Method    string            `json:"method"`
	CreatedAt int64             `json:"created_at"`
	Email     string            `json:"email"`
	Contact   string            `json:"contact"`
	Notes     map[string]string `json:"notes"`
}

// OrderNotes is the typed form of the order metadata carried from
// checkout through to the webhook.
type OrderNotes struct {
	BookingID    string
	TourID       uint
	AgentID      *uint
	TourName     string
	PricePerHead int64
	Adults       uint
	Children     uint
	GSTPercent   uint
	StartDate    time.Time
	FinalAmount  int64
}

// VerifySignature recomputes the HMAC-SHA256 hex digest over the exact
// raw request bytes and compares in constant time. Fails closed on a
// missing header or an unset secret.
func VerifySignature(rawBody []byte, signature string, secret string) bool {
	if signature == "" || secret == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(rawBody)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// SignBody is the inverse of VerifySignature, used by tests and local
// tooling to produce a valid signature header.
func SignBody(rawBody []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(rawBody)
	return hex.EncodeToString(mac.Sum(nil))
}

func ParseEvent(rawBody []byte) (*WebhookEvent, error) {
	var event WebhookEvent
	if err := json.Unmarshal(rawBody, &event); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrBadPayload, err.Error())
	}
	if event.Event == "" {
		return nil, fmt.Errorf("%w: missing event type", ErrBadPayload)
	}
	return &event, nil
}

// ParseNotes coerces the string-typed metadata into domain types.
// Malformed input is rejected, not best-effort coerced.
func ParseNotes(notes map[string]string) (*OrderNotes, error) {
	if notes == nil {
		return nil, fmt.Errorf("%w: missing notes", ErrBadPayload)
	}
	bookingId := notes["bookingID"]
	if bookingId == "" {
		return nil, fmt.Errorf("%w: missing bookingID", ErrBadPayload)
	}
	tourId, err := parseUintNote(notes, "tourID")
	if err != nil {
		return nil, err
	}
	parsed := OrderNotes{
		BookingID: bookingId,
		TourID:    tourId,
		TourName:  notes["tourName"],
	}
	if raw := notes["agentID"]; raw != "" {
		agentId, err := parseUintNote(notes, "agentID")
		if err != nil {
			return nil, err
		}
		parsed.AgentID = &agentId
	}
	if parsed.PricePerHead, err = parseInt64Note(notes, "tourPricePerHead"); err != nil {
		return nil, err
	}
	if parsed.Adults, err = parseUintNote(notes, "tourActualOccupancy"); err != nil {
		return nil, err
	}
	if parsed.Children, err = parseUintNote(notes, "tourGivenOccupancy"); err != nil {
		return nil, err
	}
	if parsed.GSTPercent, err = parseUintNote(notes, "GST"); err != nil {
		return nil, err
	}
	if parsed.GSTPercent > 100 {
		return nil, fmt.Errorf("%w: GST out of range", ErrBadPayload)
	}
	if parsed.FinalAmount, err = parseInt64Note(notes, "finalAmount"); err != nil {
		return nil, err
	}
	startDate, err := time.Parse(config.DATE_PARSE_FORMAT, notes["tourStartDate"])
	if err != nil {
		return nil, fmt.Errorf("%w: invalid tourStartDate", ErrBadPayload)
	}
	parsed.StartDate = startDate
	return &parsed, nil
}

func parseInt64Note(notes map[string]string, key string) (int64, error) {
	v, err := strconv.ParseInt(notes[key], 10, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%w: invalid %s", ErrBadPayload, key)
	}
	return v, nil
}

func parseUintNote(notes map[string]string, key string) (uint, error) {
	v, err := strconv.ParseUint(notes[key], 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s", ErrBadPayload, key)
	}
	return uint(v), nil
}
