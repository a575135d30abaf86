package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// AttemptClaims bind one candidate to one attempt. The surrounding
// platform hands the token to the test-runner UI at attempt creation;
// every attempt route requires it.
type AttemptClaims struct {
	CandidateID uuid.UUID `json:"candidate_id"`
	AttemptID   uuid.UUID `json:"attempt_id"`
	TestType    string    `json:"test_type"`
	jwt.RegisteredClaims
}

// TokenConfig holds JWT signing configuration.
type TokenConfig struct {
	Secret []byte
	TTL    time.Duration // default: 3 hours
	Issuer string
}

// Manager issues and validates attempt tokens.
type Manager struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

// NewManager creates a token manager.
func NewManager(cfg TokenConfig) *Manager {
	if cfg.TTL == 0 {
		cfg.TTL = 3 * time.Hour
	}
	if cfg.Issuer == "" {
		cfg.Issuer = "assessment-engine"
	}
	return &Manager{
		secret: cfg.Secret,
		ttl:    cfg.TTL,
		issuer: cfg.Issuer,
	}
}

// GenerateAttemptToken creates a token scoped to a single attempt.
func (m *Manager) GenerateAttemptToken(candidateID, attemptID uuid.UUID, testType string) (string, error) {
	now := time.Now()
	claims := AttemptClaims{
		CandidateID: candidateID,
		AttemptID:   attemptID,
		TestType:    testType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   candidateID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ValidateToken parses and verifies an attempt token.
func (m *Manager) ValidateToken(tokenString string) (*AttemptClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AttemptClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*AttemptClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
