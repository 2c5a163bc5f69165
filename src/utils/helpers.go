package utils

import (
	"fmt"
	"os"
	"strings"
	"tbs/src/config"
	"tbs/src/types"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

var jwtKey = []byte(os.Getenv("JWT_SECRET"))

func IsProd() bool {
	return config.API_ENV == string(types.Production)
}

// WithSuffix appends the environment to a topic/queue name so test and
// production traffic never share a channel.
func WithSuffix(name string) string {
	env := config.API_ENV
	if env == "" || env == string(types.Production) {
		return name
	}
	return fmt.Sprintf("%s-%s", name, env)
}

// NewBookingRef generates the human-readable booking reference carried
// through provider order notes and webhooks.
func NewBookingRef() string {
	id := uuid.New().String()
	short := strings.ToUpper(strings.ReplaceAll(id, "-", ""))[:10]
	return fmt.Sprintf("TB-%s", short)
}

func GenerateJWT(email string, id uint, role string) (string, error) {
	now := time.Now()
	claims := types.Claims{
		Username: email,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(id),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(24 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtKey)
}
