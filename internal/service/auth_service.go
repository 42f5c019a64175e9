package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"cecilia/internal/cache"
	"cecilia/internal/middleware"
	"cecilia/internal/models"
	"cecilia/internal/repository"
	"cecilia/internal/validation"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

const (
	TokenIssuer   = "cecilia-api"
	TokenAudience = "cecilia-admin"
)

var (
	ErrInvalidCredentials = models.NewUnauthorizedError("Invalid credentials")
	ErrInvalidSession     = models.NewUnauthorizedError("Invalid or expired session")
	ErrRevokedSession     = models.NewUnauthorizedError("Session has been revoked")
)

// Session is an issued admin session token.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
}

type AuthService struct {
	userRepo repository.UserRepository
	redis    *redis.Client
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
}

// NewAuthService builds the session issuer. redis may be nil, in which case
// logout cannot revoke tokens before they expire.
func NewAuthService(userRepo repository.UserRepository, rdb *redis.Client, secret string, ttl time.Duration) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		redis:    rdb,
		secret:   []byte(secret),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.userRepo.GetByEmail(ctx, validation.NormalizeEmail(email))
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.Issue(user)
}

// Issue signs a new session token for user.
func (s *AuthService) Issue(user *models.User) (*Session, error) {
	if len(s.secret) == 0 {
		return nil, models.NewInternalError(errors.New("JWT secret not configured"))
	}

	now := s.now()
	expires := now.Add(s.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(user.ID), 10),
		Issuer:    TokenIssuer,
		Audience:  jwt.ClaimStrings{TokenAudience},
		ExpiresAt: jwt.NewNumericDate(expires),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ID:        uuid.NewString(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, models.NewInternalError(fmt.Errorf("sign session: %w", err))
	}
	return &Session{Token: token, ExpiresAt: expires, User: user}, nil
}

// Authenticate validates a session token and loads its user. Tokens of
// deleted accounts are rejected.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, *jwt.RegisteredClaims, error) {
	claims, err := s.parse(token)
	if err != nil {
		return nil, nil, ErrInvalidSession
	}

	if s.redis != nil {
		n, err := s.redis.Exists(ctx, cache.RevokedSessionKey(claims.ID)).Result()
		if err == nil && n > 0 {
			return nil, nil, ErrRevokedSession
		}
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 32)
	if err != nil {
		return nil, nil, ErrInvalidSession
	}
	user, err := s.userRepo.GetByID(ctx, uint(userID))
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return nil, nil, ErrInvalidSession
		}
		return nil, nil, err
	}
	return user, claims, nil
}

// Revoke blacklists the token id until the token would have expired anyway.
func (s *AuthService) Revoke(ctx context.Context, claims *jwt.RegisteredClaims) error {
	if s.redis == nil || claims == nil || claims.ID == "" {
		middleware.Logger.WarnContext(ctx, "session revocation unavailable")
		return nil
	}
	ttl := time.Minute
	if claims.ExpiresAt != nil {
		if remaining := claims.ExpiresAt.Sub(s.now()); remaining > 0 {
			ttl = remaining
		}
	}
	if err := s.redis.Set(ctx, cache.RevokedSessionKey(claims.ID), "1", ttl).Err(); err != nil {
		return models.NewInternalError(fmt.Errorf("revoke session: %w", err))
	}
	return nil
}

func (s *AuthService) parse(token string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(TokenIssuer),
		jwt.WithAudience(TokenAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, err
	}
	if claims.ID == "" || claims.Subject == "" {
		return nil, errors.New("session token lacks id or subject")
	}
	return claims, nil
}
