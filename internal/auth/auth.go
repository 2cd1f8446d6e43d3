// internal/auth/auth.go
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SeatClaims ties a session token to one seat at one table. A
// disconnecting player presents this token on rejoin to reclaim the
// seat.
type SeatClaims struct {
	GameID   uuid.UUID `json:"gameId"`
	PlayerID uuid.UUID `json:"playerId"`
	Seat     uint8     `json:"seat"`
	jwt.RegisteredClaims
}

// TokenLifetime bounds how long an abandoned seat stays reclaimable.
const TokenLifetime = 24 * time.Hour

// CreateSeatToken signs a reclaim token for the player's seat.
func CreateSeatToken(secret []byte, gameID, playerID uuid.UUID, seat uint8) (string, error) {
	claims := SeatClaims{
		GameID:   gameID,
		PlayerID: playerID,
		Seat:     seat,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   playerID.String(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(TokenLifetime)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign seat token: %w", err)
	}
	return signed, nil
}

// ParseSeatToken verifies the signature and expiry and returns the
// embedded claims.
func ParseSeatToken(secret []byte, tokenString string) (*SeatClaims, error) {
	claims := &SeatClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse seat token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid seat token")
	}
	return claims, nil
}
