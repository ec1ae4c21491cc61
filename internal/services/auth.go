package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/soochol/medsum/internal/medsum"
	"github.com/soochol/medsum/internal/repository"
)

const (
	DefaultJWTSecret   = "ai-test-task"
	DefaultTokenExpiry = 24 * time.Hour

	apiKeyBytes = 32
	claimUserID = "id"

	msgEmailInUse     = "Email already in use"
	msgMissingLogin   = "Please provide email and password"
	msgBadCredentials = "Incorrect email or password"
	msgInvalidToken   = "Invalid or expired token"
	msgInvalidAPIKey  = "Invalid API key"
)

// AuthService manages accounts, JWTs and API keys.
type AuthService struct {
	users  repository.UserRepository
	secret []byte
	expiry time.Duration
	logger *slog.Logger
	now    func() time.Time
}

func NewAuthService(users repository.UserRepository, secret string, expiry time.Duration, logger *slog.Logger) *AuthService {
	if secret == "" {
		secret = DefaultJWTSecret
	}
	if expiry <= 0 {
		expiry = DefaultTokenExpiry
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{users: users, secret: []byte(secret), expiry: expiry, logger: logger, now: time.Now}
}

// Signup creates an account with a fresh API key and returns it with a token.
func (s *AuthService) Signup(ctx context.Context, name, email, password string) (*medsum.User, string, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, "", medsum.NewBadRequest(msgMissingLogin)
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, "", medsum.NewBadRequest(msgEmailInUse)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, "", fmt.Errorf("lookup user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}
	key, err := newAPIKey()
	if err != nil {
		return nil, "", err
	}

	user := &medsum.User{
		ID:           medsum.GenerateID(),
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: string(hash),
		APIKey:       key,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, "", medsum.NewBadRequest(msgEmailInUse)
		}
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.IssueToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	s.logger.Info("auth.signup", "user_id", user.ID)
	return user, token, nil
}

// Login checks the password and returns the account with a new token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*medsum.User, string, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, "", medsum.NewBadRequest(msgMissingLogin)
	}
	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, "", medsum.NewUnauthorized(msgBadCredentials)
	}
	if err != nil {
		return nil, "", fmt.Errorf("lookup user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", medsum.NewUnauthorized(msgBadCredentials)
	}

	token, err := s.IssueToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// IssueToken signs an HS256 JWT carrying the user ID.
func (s *AuthService) IssueToken(userID string) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		claimUserID: userID,
		"iat":       now.Unix(),
		"exp":       now.Add(s.expiry).Unix(),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken validates a JWT and resolves its user.
func (s *AuthService) VerifyToken(ctx context.Context, raw string) (medsum.Principal, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return medsum.Principal{}, medsum.NewUnauthorized(msgInvalidToken)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return medsum.Principal{}, medsum.NewUnauthorized(msgInvalidToken)
	}
	id, _ := claims[claimUserID].(string)
	if id == "" {
		return medsum.Principal{}, medsum.NewUnauthorized(msgInvalidToken)
	}

	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return medsum.Principal{}, medsum.NewUnauthorized(msgInvalidToken)
	}
	if err != nil {
		return medsum.Principal{}, fmt.Errorf("lookup user: %w", err)
	}
	return user.Principal(), nil
}

// ResolveAPIKey looks up the account owning key.
func (s *AuthService) ResolveAPIKey(ctx context.Context, key string) (medsum.Principal, error) {
	user, err := s.users.GetByAPIKey(ctx, key)
	if errors.Is(err, repository.ErrNotFound) {
		return medsum.Principal{}, medsum.NewUnauthorized(msgInvalidAPIKey)
	}
	if err != nil {
		return medsum.Principal{}, fmt.Errorf("lookup api key: %w", err)
	}
	return user.Principal(), nil
}

func newAPIKey() (string, error) {
	b := make([]byte, apiKeyBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate api key: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
