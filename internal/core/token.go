package core

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// UnitTokenClaims is the signed attribute snapshot carried by every produced
// unit. Amounts are serialized as strings to keep the payload exact.
type UnitTokenClaims struct {
	ProductID       int64          `json:"id"`
	Name            string         `json:"name"`
	ProductType     string         `json:"product_type"`
	ProductSubtype  string         `json:"product_subtype"`
	Characteristics map[string]any `json:"characteristics"`
	Price           string         `json:"price"`
	ProductionCost  string         `json:"production_cost"`
	SerialNumber    string         `json:"serial_number"`
	jwt.RegisteredClaims
}

// UnitTokenSigner mints and verifies produced-unit tokens with an HS256
// shared secret.
type UnitTokenSigner struct {
	secret []byte
}

func NewUnitTokenSigner(secret string) *UnitTokenSigner {
	return &UnitTokenSigner{secret: []byte(secret)}
}

// Ready reports whether a signing key is configured.
func (s *UnitTokenSigner) Ready() bool { return len(s.secret) > 0 }

// Sign mints the snapshot token for one unit of p with the given serial
// number. A missing signing key is a deployment defect and returns a
// ConfigurationError.
func (s *UnitTokenSigner) Sign(p *Product, serialNumber string, mintedAt time.Time) (string, error) {
	if !s.Ready() {
		return "", newConfigurationError("jwt secret key is not configured")
	}
	claims := UnitTokenClaims{
		ProductID:       p.ID,
		Name:            p.Name,
		ProductType:     p.Type,
		ProductSubtype:  p.Subtype,
		Characteristics: p.Characteristics,
		Price:           p.Price.String(),
		ProductionCost:  p.ProductionCost.String(),
		SerialNumber:    serialNumber,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(mintedAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign unit token: %w", err)
	}
	return signed, nil
}

// Parse verifies a minted token and returns its claims.
func (s *UnitTokenSigner) Parse(tokenString string) (*UnitTokenClaims, error) {
	if !s.Ready() {
		return nil, newConfigurationError("jwt secret key is not configured")
	}
	var claims UnitTokenClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse unit token: %w", err)
	}
	return &claims, nil
}
