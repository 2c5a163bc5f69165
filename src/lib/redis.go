package lib

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

func GetRedisClient() *redis.Client {
	if redisClient != nil {
		return redisClient
	}
	redisHost := os.Getenv("REDIS_HOST")
	opt, err := redis.ParseURL(redisHost)
	if err != nil {
		log.Printf("[redis] Error parsing connection string: %s\n", err.Error())
		return nil
	}
	rdb := redis.NewClient(opt)
	redisClient = rdb
	return rdb
}

// NewRedisClient Replace redis instance with custom client implementation
func NewRedisClient(c *redis.Client) *redis.Client {
	redisClient = c
	return redisClient
}

func paymentSeenKey(paymentId string) string {
	return fmt.Sprintf("payments:%s:applied", paymentId)
}

// PaymentSeen is a fast-path replay check only. The unique index on
// payment_events remains the authoritative guard.
func PaymentSeen(ctx context.Context, paymentId string) bool {
	rd := GetRedisClient()
	if rd == nil {
		return false
	}
	n, err := rd.Exists(ctx, paymentSeenKey(paymentId)).Result()
	if err != nil {
		log.Printf("[redis] Error checking payment %s: %s\n", paymentId, err.Error())
		return false
	}
	return n > 0
}

func MarkPaymentSeen(ctx context.Context, paymentId string, ttl time.Duration) {
	rd := GetRedisClient()
	if rd == nil {
		return
	}
	if err := rd.SetNX(ctx, paymentSeenKey(paymentId), time.Now().Unix(), ttl).Err(); err != nil {
		log.Printf("[redis] Error marking payment %s: %s\n", paymentId, err.Error())
	}
}
