package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"photo-gallery-backend/internal/apperr"
	"photo-gallery-backend/internal/models"
	"photo-gallery-backend/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles registration, login and JWT issuance/validation.
type AuthService struct {
	users     UserStore
	jwtSecret string
	jwtTTL    time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(users UserStore, jwtSecret string, jwtTTL time.Duration) *AuthService {
	return &AuthService{
		users:     users,
		jwtSecret: jwtSecret,
		jwtTTL:    jwtTTL,
	}
}

// Identity is the authenticated caller decoded from a bearer token.
type Identity struct {
	UserID string
	Login  string
}

// Register creates a new account with a bcrypt-hashed password.
func (s *AuthService) Register(ctx context.Context, login, password string) (*models.User, error) {
	if login == "" || password == "" {
		return nil, apperr.Validation("login and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("failed to hash password: %w", err))
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Login:        login,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateLogin) {
			return nil, apperr.Conflict("login already taken")
		}
		return nil, apperr.Internal(err)
	}
	return user, nil
}

// Login verifies credentials and returns a signed token. Unknown login and
// wrong password produce the same error so logins cannot be enumerated.
func (s *AuthService) Login(ctx context.Context, login, password string) (string, *models.User, error) {
	if login == "" || password == "" {
		return "", nil, apperr.Validation("login and password are required")
	}

	user, err := s.users.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, apperr.Unauthorized("invalid credentials")
		}
		return "", nil, apperr.Internal(err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, apperr.Unauthorized("invalid credentials")
	}

	token, err := s.GenerateJWT(user.ID, user.Login)
	if err != nil {
		return "", nil, apperr.Internal(err)
	}
	return token, user, nil
}

// GenerateJWT generates a signed token carrying the user id and login
func (s *AuthService) GenerateJWT(userID, login string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"login":   login,
		"exp":     now.Add(s.jwtTTL).Unix(),
		"iat":     now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// ValidateJWT validates a token and returns the identity it carries
func (s *AuthService) ValidateJWT(tokenString string) (Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return Identity{}, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return Identity{}, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, fmt.Errorf("invalid token claims")
	}
	userID, ok := claims["user_id"].(string)
	if !ok {
		return Identity{}, fmt.Errorf("user_id not found in token")
	}
	login, ok := claims["login"].(string)
	if !ok {
		return Identity{}, fmt.Errorf("login not found in token")
	}

	return Identity{UserID: userID, Login: login}, nil
}
