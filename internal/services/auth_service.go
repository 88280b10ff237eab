// Package services – AuthService
//
// This file implements dashboard authentication: account registration with
// bcrypt password hashes, login restricted to an optional email allowlist,
// and HS256 JWT issuance/verification. Tokens carry the user id as the
// subject; verification also checks the user still exists.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/tbourn/go-lead-backend/internal/config"
	"github.com/tbourn/go-lead-backend/internal/domain"
	"github.com/tbourn/go-lead-backend/internal/repo"
)

// UserRepo defines the repository contract required by AuthService.
type UserRepo interface {
	CreateUser(ctx context.Context, db *gorm.DB, name, email, passwordHash string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.User, error)
	GetUserByID(ctx context.Context, db *gorm.DB, id string) (*domain.User, error)
}

// AuthService registers and authenticates dashboard users.
type AuthService struct {
	DB   *gorm.DB
	Repo UserRepo

	Secret  []byte
	TTL     time.Duration
	Allowed map[string]struct{} // empty allows every email
	Cost    int                 // bcrypt cost
	Now     func() time.Time
}

// NewAuthService builds an AuthService from configuration.
func NewAuthService(db *gorm.DB, r UserRepo, cfg config.AuthConfig) *AuthService {
	allowed := make(map[string]struct{}, len(cfg.AllowedEmails))
	for _, e := range cfg.AllowedEmails {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			allowed[e] = struct{}{}
		}
	}
	return &AuthService{
		DB:      db,
		Repo:    r,
		Secret:  []byte(cfg.JWTSecret),
		TTL:     cfg.TokenTTL,
		Allowed: allowed,
		Cost:    bcrypt.DefaultCost,
		Now:     time.Now,
	}
}

// Enabled reports whether a signing secret is configured.
func (s *AuthService) Enabled() bool { return len(s.Secret) > 0 }

// Register creates a user and returns it with a fresh token.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*domain.User, string, error) {
	ctx, span := otel.Tracer("services/AuthService").Start(ctx, "Register")
	defer span.End()

	if !s.Enabled() {
		return nil, "", ErrAuthDisabled
	}
	name, email = strings.TrimSpace(name), strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || password == "" {
		return nil, "", ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost())
	if err != nil {
		return nil, "", err
	}
	u, err := s.Repo.CreateUser(ctx, s.DB, name, email, string(hash))
	if errors.Is(err, repo.ErrDuplicate) {
		return nil, "", ErrEmailTaken
	}
	if err != nil {
		return nil, "", err
	}
	tok, err := s.issue(u.ID)
	if err != nil {
		return nil, "", err
	}
	return u, tok, nil
}

// Login checks the allowlist and password and returns a token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	ctx, span := otel.Tracer("services/AuthService").Start(ctx, "Login")
	defer span.End()

	if !s.Enabled() {
		return nil, "", ErrAuthDisabled
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, "", ErrInvalidCredentials
	}
	if len(s.Allowed) > 0 {
		if _, ok := s.Allowed[email]; !ok {
			return nil, "", ErrEmailNotAllowed
		}
	}

	u, err := s.Repo.GetUserByEmail(ctx, s.DB, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}
	tok, err := s.issue(u.ID)
	if err != nil {
		return nil, "", err
	}
	return u, tok, nil
}

// Me returns the user with the given id.
func (s *AuthService) Me(ctx context.Context, userID string) (*domain.User, error) {
	u, err := s.Repo.GetUserByID(ctx, s.DB, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// VerifyToken validates a bearer token and returns the user id it names.
func (s *AuthService) VerifyToken(ctx context.Context, token string) (string, error) {
	ctx, span := otel.Tracer("services/AuthService").Start(ctx, "VerifyToken",
		trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	if !s.Enabled() {
		return "", ErrAuthDisabled
	}
	claims := jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.Secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}

	if _, err := s.Repo.GetUserByID(ctx, s.DB, claims.Subject); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrInvalidToken
		}
		return "", err
	}
	return claims.Subject, nil
}

func (s *AuthService) issue(userID string) (string, error) {
	now := s.now()
	ttl := s.TTL
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *AuthService) cost() int {
	if s.Cost < bcrypt.MinCost {
		return bcrypt.DefaultCost
	}
	return s.Cost
}
