package jwt

import (
	"errors"
	"sync"
	"time"

	"sikseb/pkg/config"

	"github.com/golang-jwt/jwt/v5"
)

// Claims issued by the stub backend.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

type JWTManager struct {
	secretKey     string
	tokenDuration time.Duration
}

func NewJWTManager(secretKey string, tokenDuration time.Duration) *JWTManager {
	return &JWTManager{
		secretKey:     secretKey,
		tokenDuration: tokenDuration,
	}
}

// GenerateToken signs an HS256 token for the user.
func (manager *JWTManager) GenerateToken(userID, email string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(manager.tokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "SIKSEB",
			Subject:   email,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(manager.secretKey))
}

func (manager *JWTManager) VerifyToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(manager.secretKey), nil
		},
	)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, errors.New("cannot parse token claims")
	}
	return claims, nil
}

func (manager *JWTManager) GetTokenDuration() time.Duration {
	return manager.tokenDuration
}

// PeekClaims decodes a token without verifying its signature. The client
// only uses it for display (subject, expiry); it is not an auth decision.
func PeekClaims(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, _, err := jwt.NewParser().ParseUnverified(tokenString, claims)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

var (
	defaultManager *JWTManager
	once           sync.Once
)

// GetJWTManager returns the manager configured from the environment.
func GetJWTManager() *JWTManager {
	once.Do(func() {
		cfg := config.GetConfig()
		tokenDuration, err := time.ParseDuration(cfg.JWT.TokenDuration)
		if err != nil {
			tokenDuration = 24 * time.Hour
		}
		defaultManager = NewJWTManager(cfg.JWT.SecretKey, tokenDuration)
	})
	return defaultManager
}
