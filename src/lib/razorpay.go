package lib

import (
	"errors"
	"log"
	"os"

	razorpay "github.com/razorpay/razorpay-go"
)

var razorpayClient *razorpay.Client

func GetRazorpayClient() *razorpay.Client {
	if razorpayClient != nil {
		return razorpayClient
	}
	keyId := os.Getenv("RAZORPAY_KEY_ID")
	keySecret := os.Getenv("RAZORPAY_KEY_SECRET")
	client := razorpay.NewClient(keyId, keySecret)
	razorpayClient = client
	return client
}

// NewRazorpayClient Replace provider client with custom implementation
func NewRazorpayClient(c *razorpay.Client) {
	razorpayClient = c
}

// CreateTourOrder creates the provider order at checkout time. amount
// is paisa; notes travel with the order and come back verbatim on the
// payment.captured webhook.
func CreateTourOrder(amount int64, currency string, receipt string, notes map[string]any) (string, error) {
	client := GetRazorpayClient()
	data := map[string]any{
		"amount":   amount,
		"currency": currency,
		"receipt":  receipt,
		"notes":    notes,
	}
	body, err := client.Order.Create(data, nil)
	if err != nil {
		log.Printf("[Razorpay] Error creating order for %s: %s\n", receipt, err.Error())
		return "", err
	}
	orderId, ok := body["id"].(string)
	if !ok {
		return "", errors.New("provider response missing order id")
	}
	return orderId, nil
}
