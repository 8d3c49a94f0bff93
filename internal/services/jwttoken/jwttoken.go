package jwttoken

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var ErrInvalidToken = errors.New("token is not valid")

type Claims struct {
	jwt.RegisteredClaims
	UserID       string `json:"uid"`
	Role         string `json:"role"`
	DriverID     string `json:"did,omitempty"`
	RestaurantID string `json:"rid,omitempty"`
}

type Manager struct {
	secretKey []byte
	tokenExp  time.Duration
	now       func() time.Time
}

func NewManager(secretKey string, tokenExp time.Duration) *Manager {
	return &Manager{
		secretKey: []byte(secretKey),
		tokenExp:  tokenExp,
		now:       time.Now,
	}
}

func (m *Manager) Parse(accessToken string) (Claims, error) {
	claims := Claims{}

	token, err := jwt.ParseWithClaims(
		accessToken,
		&claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return m.secretKey, nil
		},
	)

	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid || claims.UserID == "" || claims.Role == "" {
		return Claims{}, ErrInvalidToken
	}

	return claims, nil
}

func (m *Manager) Generate(claims Claims) (string, error) {
	issuedAt := m.now()

	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   claims.UserID,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(m.tokenExp)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	accessToken, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", err
	}

	return accessToken, nil
}
