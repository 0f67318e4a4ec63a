package profile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mtoivane/valmento/internal/sqlite"
)

// Service handles the business logic for user accounts and profiles.
type Service struct {
	repo   *sqliteRepository
	users  *userRepository
	logger *slog.Logger
}

// NewService creates a new profile service.
func NewService(db *sqlite.Database, logger *slog.Logger) *Service {
	return &Service{
		repo:   newSQLiteRepository(db, logger),
		users:  newUserRepository(db, logger),
		logger: logger,
	}
}

// CreateUser creates a new user account and returns its id.
func (s *Service) CreateUser(ctx context.Context, displayName string) (int, error) {
	id, err := s.users.Create(ctx, displayName)
	if err != nil {
		return 0, fmt.Errorf("create user: %w", err)
	}
	return id, nil
}

// UserExists reports whether a user account exists.
func (s *Service) UserExists(ctx context.Context, userID int) (bool, error) {
	exists, err := s.users.Exists(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("user exists: %w", err)
	}
	return exists, nil
}

// Get retrieves the profile for the authenticated user.
func (s *Service) Get(ctx context.Context) (Profile, error) {
	p, err := s.repo.Get(ctx)
	if err != nil {
		return Profile{}, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

// Set validates and saves the profile for the authenticated user.
func (s *Service) Set(ctx context.Context, p Profile) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("validate profile: %w", err)
	}
	if err := s.repo.Set(ctx, p); err != nil {
		return fmt.Errorf("set profile: %w", err)
	}
	return nil
}
