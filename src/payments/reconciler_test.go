package payments

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening a stub database connection", err)
	}
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening gorm database", err)
	}
	return gormDB, mock
}

func newTestReconciler(t *testing.T) (*Reconciler, sqlmock.Sqlmock) {
	t.Helper()
	os.Setenv("RAZORPAY_WEBHOOK_SECRET", testSecret)
	os.Unsetenv("AGENT_COMMISSION_PERCENT")
	gormDB, mock := newMockDB(t)
	return NewReconciler(gormDB), mock
}

func capturedEventBody(t *testing.T, paymentId string, amount int64, notes map[string]string) []byte {
	t.Helper()
	event := map[string]any{
		"event": "payment.captured",
		"payload": map[string]any{
			"payment": map[string]any{
				"entity": map[string]any{
					"id":         paymentId,
					"amount":     amount,
					"currency":   "INR",
					"status":     "captured",
					"order_id":   "order_P1x2y3",
					"method":     "upi",
					"created_at": 1764500000,
					"email":      "traveller@example.com",
					"contact":    "+911234567890",
					"notes":      notes,
				},
			},
		},
	}
	b, err := json.Marshal(event)
	assert.Nil(t, err)
	return b
}

func pendingBookingNotes() map[string]string {
	n := validNotes()
	n["agentID"] = ""
	n["tourActualOccupancy"] = "1"
	n["tourGivenOccupancy"] = "0"
	n["finalAmount"] = "220000"
	return n
}

func bookingColumns() []string {
	return []string{"id", "booking_id", "tour_id", "user_id", "adults", "children", "payment_status", "payment_id"}
}

func tourColumns() []string {
	return []string{"id", "name", "price_per_head", "child_rate", "gst_percent", "occupancy", "remaining_occupancy", "status"}
}

func TestReconcileRejectsBadSignature(t *testing.T) {
	r, mock := newTestReconciler(t)
	body := capturedEventBody(t, "pay_sig", 220000, pendingBookingNotes())

	_, err := r.Reconcile(context.Background(), body, "deadbeef")
	assert.ErrorIs(t, err, ErrAuthentication)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestReconcileIgnoresOtherEventTypes(t *testing.T) {
	r, mock := newTestReconciler(t)
	body := []byte(`{"event":"payment.authorized","payload":{"payment":{"entity":{"id":"pay_1"}}}}`)

	outcome, err := r.Reconcile(context.Background(), body, SignBody(body, testSecret))
	assert.Nil(t, err)
	assert.Equal(t, OutcomeIgnored, outcome.Status)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestReconcileBookingNotFound(t *testing.T) {
	r, mock := newTestReconciler(t)
	body := capturedEventBody(t, "pay_missing", 220000, pendingBookingNotes())

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows(bookingColumns()))
	mock.ExpectRollback()

	_, err := r.Reconcile(context.Background(), body, SignBody(body, testSecret))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestReconcileReplaySameTransactionId(t *testing.T) {
	r, mock := newTestReconciler(t)
	body := capturedEventBody(t, "pay_dup", 220000, pendingBookingNotes())

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows(bookingColumns()).
			AddRow(9, "TB-1A2B3C4D5E", 42, 3, 1, 0, "paid", "pay_dup"))
	mock.ExpectCommit()

	outcome, err := r.Reconcile(context.Background(), body, SignBody(body, testSecret))
	assert.Nil(t, err)
	assert.Equal(t, OutcomeReplayed, outcome.Status)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestReconcilePaidUnderDifferentTransactionId(t *testing.T) {
	r, mock := newTestReconciler(t)
	body := capturedEventBody(t, "pay_other", 220000, pendingBookingNotes())

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows(bookingColumns()).
			AddRow(9, "TB-1A2B3C4D5E", 42, 3, 1, 0, "paid", "pay_original"))
	mock.ExpectRollback()

	_, err := r.Reconcile(context.Background(), body, SignBody(body, testSecret))
	assert.ErrorIs(t, err, ErrAlreadyPaid)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestReconcileAmountMismatchLeavesBookingPending(t *testing.T) {
	r, mock := newTestReconciler(t)
	body := capturedEventBody(t, "pay_short", 219999, pendingBookingNotes())

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows(bookingColumns()).
			AddRow(9, "TB-1A2B3C4D5E", 42, 3, 1, 0, "pending", nil))
	mock.ExpectQuery(`SELECT (.+) FROM "tours"`).
		WillReturnRows(sqlmock.NewRows(tourColumns()).
			AddRow(42, "Backwaters Weekend", 2000, 0, 10, 20, 5, "open"))
	mock.ExpectRollback()

	_, err := r.Reconcile(context.Background(), body, SignBody(body, testSecret))
	assert.ErrorIs(t, err, ErrAmountMismatch)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestReconcileAppliedExactlyOnce(t *testing.T) {
	r, mock := newTestReconciler(t)
	body := capturedEventBody(t, "pay_fresh", 220000, pendingBookingNotes())

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows(bookingColumns()).
			AddRow(9, "TB-1A2B3C4D5E", 42, 3, 1, 0, "pending", nil))
	mock.ExpectQuery(`SELECT (.+) FROM "tours"`).
		WillReturnRows(sqlmock.NewRows(tourColumns()).
			AddRow(42, "Backwaters Weekend", 2000, 0, 10, 20, 5, "open"))
	mock.ExpectQuery(`INSERT INTO "payment_events"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("5a0b43a5-6c0f-4b96-9c28-8f6be4f62d5b"))
	mock.ExpectExec(`UPDATE "bookings" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "tours" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	outcome, err := r.Reconcile(context.Background(), body, SignBody(body, testSecret))
	assert.Nil(t, err)
	assert.Equal(t, OutcomeApplied, outcome.Status)
	assert.Equal(t, "pay_fresh", outcome.PaymentID)
	assert.Equal(t, int64(220000), outcome.Amount)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestReconcileDuplicateEventIsNoop(t *testing.T) {
	r, mock := newTestReconciler(t)
	body := capturedEventBody(t, "pay_seen", 220000, pendingBookingNotes())

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows(bookingColumns()).
			AddRow(9, "TB-1A2B3C4D5E", 42, 3, 1, 0, "pending", nil))
	mock.ExpectQuery(`SELECT (.+) FROM "tours"`).
		WillReturnRows(sqlmock.NewRows(tourColumns()).
			AddRow(42, "Backwaters Weekend", 2000, 0, 10, 20, 5, "open"))
	mock.ExpectQuery(`INSERT INTO "payment_events"`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "idx_payment_events_payment_id"})
	mock.ExpectRollback()

	outcome, err := r.Reconcile(context.Background(), body, SignBody(body, testSecret))
	assert.Nil(t, err)
	assert.Equal(t, OutcomeReplayed, outcome.Status)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestReconcileCreditsCommissionOnce(t *testing.T) {
	r, mock := newTestReconciler(t)
	notes := pendingBookingNotes()
	notes["agentID"] = "7"
	body := capturedEventBody(t, "pay_agent", 220000, notes)

	columns := append(bookingColumns(), "agent_id")

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(9, "TB-1A2B3C4D5E", 42, 3, 1, 0, "pending", nil, 7))
	mock.ExpectQuery(`SELECT (.+) FROM "tours"`).
		WillReturnRows(sqlmock.NewRows(tourColumns()).
			AddRow(42, "Backwaters Weekend", 2000, 0, 10, 20, 5, "open"))
	mock.ExpectQuery(`INSERT INTO "payment_events"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("9c1f55be-2a6e-4f05-8f0e-3f2a7dd0c2e1"))
	mock.ExpectExec(`UPDATE "bookings" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "tours" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// Commission credit happens inside the same transaction as the
	// booking transition.
	mock.ExpectQuery(`SELECT (.+) FROM "agents"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "commission_percent", "wallet_balance"}).
			AddRow(7, 11, nil, 0))
	mock.ExpectQuery(`INSERT INTO "commissions"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectExec(`UPDATE "agents" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	outcome, err := r.Reconcile(context.Background(), body, SignBody(body, testSecret))
	assert.Nil(t, err)
	assert.Equal(t, OutcomeApplied, outcome.Status)
	assert.NotNil(t, outcome.AgentID)
	assert.Equal(t, uint(7), *outcome.AgentID)
	assert.Equal(t, int64(20000), outcome.Commission)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestReconcileOverbookedMarksBookingFailed(t *testing.T) {
	r, mock := newTestReconciler(t)
	body := capturedEventBody(t, "pay_last_seat", 220000, pendingBookingNotes())

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows(bookingColumns()).
			AddRow(9, "TB-1A2B3C4D5E", 42, 3, 1, 0, "pending", nil))
	mock.ExpectQuery(`SELECT (.+) FROM "tours"`).
		WillReturnRows(sqlmock.NewRows(tourColumns()).
			AddRow(42, "Backwaters Weekend", 2000, 0, 10, 20, 0, "open"))
	mock.ExpectQuery(`INSERT INTO "payment_events"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("0d4207cf-20c9-4b09-a0b1-6c7dd1fca6a5"))
	mock.ExpectExec(`UPDATE "bookings" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "tours" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	// The terminal failed state commits outside the rolled back
	// reconciliation transaction.
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "bookings" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	_, err := r.Reconcile(context.Background(), body, SignBody(body, testSecret))
	assert.ErrorIs(t, err, ErrOverbooked)
	assert.Nil(t, mock.ExpectationsWereMet())
}
