package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"couch-potato/internal/domain"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// JWTService emite y valida tokens JWT de acceso y refresh.
// Cada tipo se firma con un secreto propio, rotable de forma independiente.
type JWTService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	issuer        string
}

type Claims struct {
	UserID    string `json:"uid"`
	Email     string `json:"email"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

var (
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenExpired = errors.New("token expired")
)

func NewJWTService(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *JWTService {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &JWTService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		issuer:        "couch-potato",
	}
}

// AccessTTL expone la ventana de validez del access token.
func (s *JWTService) AccessTTL() time.Duration {
	return s.accessTTL
}

// RefreshTTL expone la ventana de validez del refresh token.
func (s *JWTService) RefreshTTL() time.Duration {
	return s.refreshTTL
}

// IssueAccess firma un access token de vida corta para el usuario.
func (s *JWTService) IssueAccess(user domain.User) (string, error) {
	if len(s.accessSecret) == 0 {
		return "", ErrTokenInvalid
	}
	return s.signToken(user, s.accessSecret, s.accessTTL, tokenTypeAccess)
}

// IssueRefresh firma un refresh token de vida larga para el usuario.
func (s *JWTService) IssueRefresh(user domain.User) (string, error) {
	if len(s.refreshSecret) == 0 {
		return "", ErrTokenInvalid
	}
	return s.signToken(user, s.refreshSecret, s.refreshTTL, tokenTypeRefresh)
}

// VerifyAccess valida un access token y devuelve sus claims.
func (s *JWTService) VerifyAccess(token string) (Claims, error) {
	return s.verify(token, s.accessSecret, tokenTypeAccess)
}

// VerifyRefresh valida un refresh token y devuelve sus claims.
// Un access token presentado aquí falla aunque el emisor sea el mismo:
// el claim typ discrimina los dos tipos además del secreto.
func (s *JWTService) VerifyRefresh(token string) (Claims, error) {
	return s.verify(token, s.refreshSecret, tokenTypeRefresh)
}

func (s *JWTService) verify(token string, secret []byte, tokenType string) (Claims, error) {
	if len(secret) == 0 {
		return Claims{}, ErrTokenInvalid
	}
	if strings.TrimSpace(token) == "" {
		return Claims{}, ErrTokenInvalid
	}
	claims, err := s.parseToken(token, secret)
	if err != nil {
		return Claims{}, err
	}
	if claims.TokenType != tokenType {
		return Claims{}, ErrTokenInvalid
	}
	if !s.isValidClaims(claims) {
		return Claims{}, ErrTokenInvalid
	}
	return claims, nil
}

func (s *JWTService) signToken(user domain.User, secret []byte, ttl time.Duration, tokenType string) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		UserID:    user.ID,
		Email:     user.Email,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func (s *JWTService) parseToken(tokenString string, secret []byte) (Claims, error) {
	var claims Claims
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	_, err := parser.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (any, error) {
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, ErrTokenInvalid
	}
	return claims, nil
}

func (s *JWTService) isValidClaims(claims Claims) bool {
	if strings.TrimSpace(claims.UserID) == "" {
		return false
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return false
	}
	if claims.Subject != claims.UserID {
		return false
	}
	return strings.TrimSpace(claims.Issuer) == s.issuer
}
