package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"finsmart/internal/core"
	applog "finsmart/internal/log"
	"finsmart/internal/ports"
)

var (
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// RegisterRequest carries the sign-up form.
type RegisterRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email,omitempty"`
}

type Service struct {
	users  ports.UserStore
	logger *applog.Logger
}

func NewService(users ports.UserStore, logger *applog.Logger) *Service {
	return &Service{users: users, logger: logger.WithComponent(applog.ComponentAuth)}
}

// Register validates the request, hashes the password and stores the user.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (core.User, error) {
	u := core.User{
		Username:  strings.TrimSpace(req.Username),
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     strings.TrimSpace(req.Email),
		CreatedAt: time.Now().UTC(),
	}
	if err := u.Validate(); err != nil {
		return core.User{}, err
	}
	if err := core.ValidatePassword(req.Password); err != nil {
		return core.User{}, err
	}

	if _, err := s.users.GetUserByUsername(ctx, u.Username); err == nil {
		return core.User{}, ErrUsernameTaken
	} else if !errors.Is(err, ports.ErrNotFound) {
		return core.User{}, fmt.Errorf("lookup username: %w", err)
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return core.User{}, err
	}
	u.PasswordHash = hash

	created, err := s.users.CreateUser(ctx, u)
	if errors.Is(err, ports.ErrConflict) {
		return core.User{}, ErrUsernameTaken
	}
	if err != nil {
		return core.User{}, fmt.Errorf("create user: %w", err)
	}
	s.logger.InfoContext(ctx, "User registered", applog.FieldUserID, created.ID)
	return created, nil
}

// Authenticate checks username and password. Unknown users and wrong
// passwords both yield ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) (core.User, error) {
	u, err := s.users.GetUserByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, ports.ErrNotFound) {
		return core.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return core.User{}, fmt.Errorf("lookup username: %w", err)
	}

	ok, err := ComparePassword(password, u.PasswordHash)
	if err != nil {
		s.logger.WarnContext(ctx, "Stored password hash unreadable",
			applog.FieldUserID, u.ID, applog.FieldError, err.Error())
		return core.User{}, ErrInvalidCredentials
	}
	if !ok {
		return core.User{}, ErrInvalidCredentials
	}
	return u, nil
}
