package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"cardapio/internal/apperror"
	"cardapio/internal/models"
	"cardapio/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

// Password length bounds. bcrypt only hashes the first 72 bytes.
const (
	MinPasswordLength = 6
	MaxPasswordLength = 72
)

// CheckPassword rejects passwords outside the accepted length bounds.
func CheckPassword(password string) error {
	if len(password) < MinPasswordLength {
		return apperror.Validation("password must have at least %d characters", MinPasswordLength)
	}
	if len(password) > MaxPasswordLength {
		return apperror.Validation("password must have at most %d bytes", MaxPasswordLength)
	}
	return nil
}

// Claims are the identity fields carried by a token.
type Claims struct {
	UserID string
	Email  string
	Role   models.Role
}

// Actor returns the caller identity for service calls.
func (c Claims) Actor() Actor {
	return Actor{UserID: c.UserID, Role: c.Role}
}

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo   repositories.UserRepository
	jwtSecret  []byte
	tokenDurat time.Duration // Duration for which JWT is valid
}

// NewAuthService creates a new AuthService. A non-positive ttl defaults to 24h.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AuthService{
		userRepo:   userRepo,
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: ttl,
	}
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Register creates a CLIENT account, hashing password into the user.
func (s *AuthService) Register(ctx context.Context, user *models.User, password string) error {
	if err := CheckPassword(password); err != nil {
		return err
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if existingUser, err := s.userRepo.GetByEmail(ctx, user.Email); err == nil && existingUser != nil {
		return apperror.Conflict("email '%s' already registered", user.Email)
	} else if err != nil && !errors.Is(err, apperror.ErrNotFound) {
		return fmt.Errorf("failed to check email: %w", err)
	}

	hashed, err := HashPassword(password)
	if err != nil {
		return err
	}
	user.PasswordHash = hashed
	user.Role = models.RoleClient

	if err := s.userRepo.Create(ctx, user); err != nil {
		return fmt.Errorf("failed to register user: %w", err)
	}
	return nil
}

// Login authenticates by email and returns a signed JWT with the user.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return "", nil, apperror.Unauthenticated("invalid credentials")
		}
		return "", nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, apperror.Unauthenticated("invalid credentials")
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// IssueToken signs a token for user.
func (s *AuthService) IssueToken(user *models.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    string(user.Role),
		"exp":     now.Add(s.tokenDurat).Unix(),
		"iat":     now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		log.Printf("Token validation error: %v", err)
		return nil, apperror.Wrap(apperror.KindUnauthenticated, err, "invalid or expired token")
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, apperror.Unauthenticated("invalid token")
	}

	userID, _ := mapClaims["user_id"].(string)
	email, _ := mapClaims["email"].(string)
	roleStr, _ := mapClaims["role"].(string)
	role, err := models.ParseRole(roleStr)
	if userID == "" || err != nil {
		return nil, apperror.Unauthenticated("invalid token claims")
	}
	return &Claims{UserID: userID, Email: email, Role: role}, nil
}
