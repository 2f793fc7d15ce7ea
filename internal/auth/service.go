package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dkotl/macrolog/internal/config"
)

var ErrInvalidToken = errors.New("invalid token")

// Service issues and verifies access tokens. Identities are anonymous:
// signing in mints a fresh opaque user ID, no credentials exist anywhere.
type Service struct {
	config *config.Config
}

func NewService(cfg *config.Config) *Service {
	return &Service{config: cfg}
}

// SignInAnonymous creates a new user identity and returns a token for it.
// Each call produces a distinct user; clients keep the token to keep the
// identity.
func (s *Service) SignInAnonymous() (*AnonymousAuthResponse, error) {
	userID := uuid.New().String()
	ttl := time.Duration(s.config.JWTTTLMinutes) * time.Minute

	accessToken, err := s.generateJWTWithTTL(userID, ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to generate JWT: %w", err)
	}

	return &AnonymousAuthResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(ttl.Seconds()),
		UserID:      userID,
	}, nil
}

func (s *Service) generateJWTWithTTL(userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	exp := now.Add(ttl)

	claims := jwt.MapClaims{
		"sub": userID,
		"iss": s.config.JWTIssuer,
		"exp": exp.Unix(),
		"iat": now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

// VerifyJWT validates the token and returns its subject.
func (s *Service) VerifyJWT(tokenString string) (string, error) {
	userID, _, err := s.verifyJWT(tokenString)
	return userID, err
}

// SessionInfo validates the token and returns the subject with its expiry.
func (s *Service) SessionInfo(tokenString string) (*SessionResponse, error) {
	userID, expiresAt, err := s.verifyJWT(tokenString)
	if err != nil {
		return nil, err
	}
	return &SessionResponse{UserID: userID, ExpiresAt: expiresAt}, nil
}

func (s *Service) verifyJWT(tokenString string) (string, int64, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.JWTSecret), nil
	})

	if err != nil {
		return "", 0, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", 0, ErrInvalidToken
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", 0, ErrInvalidToken
	}

	var expiresAt int64
	if exp, ok := claims["exp"].(float64); ok {
		expiresAt = int64(exp)
	}

	return sub, expiresAt, nil
}
