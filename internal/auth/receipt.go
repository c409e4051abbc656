package auth

import (
	"fmt"
	"time"

	"nuoitoi/config"
	"nuoitoi/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

// ReceiptClaims bind a browser session to the order it created.
type ReceiptClaims struct {
	OrderCode int64 `json:"order_code"`
	Amount    int64 `json:"amount"`
	jwt.RegisteredClaims
}

func GenerateReceiptToken(cfg *config.ReceiptConfig, orderCode, amount int64) (string, error) {
	now := time.Now()
	claims := ReceiptClaims{
		OrderCode: orderCode,
		Amount:    amount,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.Expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    cfg.Issuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.Secret))
}

func ParseReceiptToken(cfg *config.ReceiptConfig, tokenString string) (*ReceiptClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &ReceiptClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(cfg.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(cfg.Issuer))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrReceiptInvalid, err)
	}
	claims, ok := token.Claims.(*ReceiptClaims)
	if !ok || !token.Valid {
		return nil, domain.ErrReceiptInvalid
	}
	return claims, nil
}
