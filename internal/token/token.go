// Package token mints and verifies the signed, time-bound pass tokens that
// bind a registration to an event and attendee. Tokens are what door staff
// scan as QR codes at check-in.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid or expired pass token")

type Claims struct {
	RegistrationID uuid.UUID
	EventID        int64
	AttendeeID     uuid.UUID
	IssuedAt       time.Time
	ExpiresAt      time.Time
}

type Codec struct {
	secret []byte
	ttl    time.Duration
}

func NewCodec(secret string, ttl time.Duration) *Codec {
	if ttl == 0 {
		ttl = 72 * time.Hour
	}

	return &Codec{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Mint signs an HS256 pass token for (registration, event, attendee).
func (c *Codec) Mint(registrationID uuid.UUID, eventID int64, attendeeID uuid.UUID) (string, error) {
	const op = "token.Codec.Mint"

	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"reg": registrationID.String(),
		"evt": eventID,
		"att": attendeeID.String(),
		"iat": now.Unix(),
		"exp": now.Add(c.ttl).Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("%s:%w", op, err)
	}

	return signed, nil
}

// Verify parses and validates a pass token. Any signature, shape or expiry
// failure is reported as ErrInvalidToken.
func (c *Codec) Verify(raw string) (*Claims, error) {
	const op = "token.Codec.Verify"

	parsed, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return c.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%s:%w", op, ErrInvalidToken)
	}

	mc, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("%s:%w", op, ErrInvalidToken)
	}

	regStr, _ := mc["reg"].(string)
	attStr, _ := mc["att"].(string)

	regID, err := uuid.Parse(regStr)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, ErrInvalidToken)
	}

	attID, err := uuid.Parse(attStr)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, ErrInvalidToken)
	}

	evt, ok := mc["evt"].(float64)
	if !ok || evt <= 0 {
		return nil, fmt.Errorf("%s:%w", op, ErrInvalidToken)
	}

	claims := &Claims{
		RegistrationID: regID,
		EventID:        int64(evt),
		AttendeeID:     attID,
	}

	if iat, ok := mc["iat"].(float64); ok {
		claims.IssuedAt = time.Unix(int64(iat), 0).UTC()
	}
	if exp, ok := mc["exp"].(float64); ok {
		claims.ExpiresAt = time.Unix(int64(exp), 0).UTC()
	}

	return claims, nil
}
