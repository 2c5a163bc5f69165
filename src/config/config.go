package config

import (
	"fmt"
	"os"
	"strconv"
)

var API_ENV = os.Getenv("API_ENV")

func GetDSN() string {
	DATABASE_HOST := os.Getenv("DATABASE_HOST")
	DATABASE_PORT := os.Getenv("DATABASE_PORT")
	DATABASE_SSLMODE := os.Getenv("DATABASE_SSLMODE")
	DATABASE_TIMEZONE := os.Getenv("DATABASE_TIMEZONE")
	DATABASE_USER := os.Getenv("DATABASE_USER")
	DATABASE_PASSWORD := os.Getenv("DATABASE_PASSWORD")
	DATABASE_NAME := os.Getenv("DATABASE_NAME")
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s", DATABASE_HOST, DATABASE_USER, DATABASE_PASSWORD, DATABASE_NAME, DATABASE_PORT, DATABASE_SSLMODE, DATABASE_TIMEZONE)
	return dsn
}

// WebhookSecret is shared with the payment provider for HMAC
// verification. Never log it.
func WebhookSecret() string {
	return os.Getenv("RAZORPAY_WEBHOOK_SECRET")
}

const DefaultCommissionPercent = 10

func CommissionPercent() uint {
	v := os.Getenv("AGENT_COMMISSION_PERCENT")
	atoi, err := strconv.Atoi(v)
	if err != nil || atoi < 0 || atoi > 100 {
		return DefaultCommissionPercent
	}
	return uint(atoi)
}

const TIME_PARSE_FORMAT = "2006-01-02 15:04:05 -07:00"
const DATE_PARSE_FORMAT = "2006-01-02"
