// Package auth issues the seat tokens handed out on join and hashes room
// passphrases. Tokens prove seat ownership across reconnects; keys are
// generated fresh at startup, so a server restart invalidates all seats
// along with the in-memory rooms they referenced.
package auth

import (
	"crypto/ed25519"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var (
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey
)

// ErrInvalidToken covers every verification failure a client can cause.
var ErrInvalidToken = errors.New("invalid seat token")

// Init generates the runtime ed25519 signing key pair.
func Init() error {
	var err error
	publicKey, privateKey, err = ed25519.GenerateKey(nil)
	if err != nil {
		return fmt.Errorf("auth: generate key pair: %w", err)
	}
	return nil
}

// CreateSeatToken signs a token binding a player id to a room id. Seat
// tokens deliberately carry no expiry: they die with the in-memory room.
func CreateSeatToken(roomID, playerID string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, jwt.MapClaims{
		"sub":  playerID,
		"room": roomID,
	})
	return token.SignedString(privateKey)
}

// VerifySeatToken checks the signature and the room binding and returns the
// seat's player id.
func VerifySeatToken(tokenString, roomID string) (string, error) {
	t, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return publicKey, nil
	})
	if err != nil || !t.Valid {
		return "", ErrInvalidToken
	}
	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	playerID, ok := claims["sub"].(string)
	if !ok || playerID == "" {
		return "", ErrInvalidToken
	}
	if room, ok := claims["room"].(string); !ok || room != roomID {
		return "", ErrInvalidToken
	}
	return playerID, nil
}
