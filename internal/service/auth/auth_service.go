// Package auth handles accounts and sessions. New registrations wait in
// PENDIENTE until an admin approves them; only ACTIVO users can log in and
// receive a signed token.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/RandySimanca/avicola/internal/domain/models"
	"github.com/RandySimanca/avicola/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotApproved    = errors.New("account not approved")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidToken       = errors.New("invalid token")
)

const tokenTTL = 24 * time.Hour

// Service implements registration, login and user administration.
type Service struct {
	store  repository.Store
	secret []byte
	logger *zap.Logger
}

// NewService wires an auth service instance.
func NewService(store repository.Store, secret string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, secret: []byte(secret), logger: logger}
}

// RegisterInput carries a registration request.
type RegisterInput struct {
	Name     string          `json:"name"`
	Email    string          `json:"email"`
	Password string          `json:"password"`
	Role     models.UserRole `json:"role"`
}

// Register creates a pending account. It stays unusable until approved.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	switch {
	case in.Name == "":
		return nil, fmt.Errorf("name must not be empty")
	case in.Email == "":
		return nil, fmt.Errorf("email must not be empty")
	case len(in.Password) < 6:
		return nil, fmt.Errorf("password must have at least 6 characters")
	}
	if in.Role == "" {
		in.Role = models.RoleGalponero
	}

	var existing []models.User
	if err := s.store.List(ctx, repository.Users, repository.Filter{"email": in.Email}, "", &existing); err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if len(existing) > 0 {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         in.Role,
		Status:       models.UserPending,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.Put(ctx, repository.Users, user.ID, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user registered pending approval", zap.String("id", user.ID), zap.String("email", user.Email))
	return &user, nil
}

// LoginResult is the successful login payload.
type LoginResult struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Login verifies credentials and issues a signed token for approved users.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var users []models.User
	if err := s.store.List(ctx, repository.Users, repository.Filter{"email": email}, "", &users); err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if len(users) == 0 {
		return nil, ErrInvalidCredentials
	}
	user := users[0]

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if user.Status != models.UserActive {
		return nil, fmt.Errorf("user %s in status %s: %w", user.ID, user.Status, ErrUserNotApproved)
	}

	claims := sessionClaims{
		Name: user.Name,
		Role: string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &LoginResult{Token: token, User: user}, nil
}

// SessionFromToken validates a bearer token and materializes the session
// object that operations receive.
func (s *Service) SessionFromToken(tokenString string) (models.Session, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return models.Session{}, ErrInvalidToken
	}
	return models.Session{
		UserID: claims.Subject,
		Name:   claims.Name,
		Role:   models.UserRole(claims.Role),
	}, nil
}

type sessionClaims struct {
	Name string `json:"name"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// ListUsers returns all accounts for the admin screen.
func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.store.List(ctx, repository.Users, nil, "-created_at", &users); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// ApproveUser moves a pending account into ACTIVO.
func (s *Service) ApproveUser(ctx context.Context, id string) (*models.User, error) {
	return s.setStatus(ctx, id, models.UserActive)
}

// RejectUser marks a pending account as RECHAZADO.
func (s *Service) RejectUser(ctx context.Context, id string) (*models.User, error) {
	return s.setStatus(ctx, id, models.UserRejected)
}

// ToggleUserStatus flips an account between ACTIVO and INACTIVO.
func (s *Service) ToggleUserStatus(ctx context.Context, id string) (*models.User, error) {
	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Status == models.UserActive {
		user.Status = models.UserInactive
	} else {
		user.Status = models.UserActive
	}
	if err := s.store.Put(ctx, repository.Users, user.ID, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// UpdateUserRole changes an account's role.
func (s *Service) UpdateUserRole(ctx context.Context, id string, role models.UserRole) (*models.User, error) {
	if role != models.RoleAdmin && role != models.RoleGalponero {
		return nil, fmt.Errorf("unknown role %q", role)
	}
	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Role = role
	if err := s.store.Put(ctx, repository.Users, user.ID, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// DeleteUser removes an account.
func (s *Service) DeleteUser(ctx context.Context, id string) error {
	return s.store.Delete(ctx, repository.Users, id)
}

func (s *Service) setStatus(ctx context.Context, id string, status models.UserStatus) (*models.User, error) {
	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Status = status
	if err := s.store.Put(ctx, repository.Users, user.ID, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

func (s *Service) getUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.store.Get(ctx, repository.Users, id, &user); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("user %s: %w", id, ErrUserNotFound)
		}
		return nil, err
	}
	return &user, nil
}
