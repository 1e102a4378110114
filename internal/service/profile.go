package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/validity/backend/internal/domain"
	"github.com/pkordes/validity/backend/internal/repo"
)

// ProfileService implements business logic for user profiles and roles.
type ProfileService struct {
	profiles repo.ProfileRepo
	logger   *slog.Logger
}

// NewProfileService constructs a ProfileService backed by the provided ProfileRepo.
func NewProfileService(profiles repo.ProfileRepo, logger *slog.Logger) *ProfileService {
	return &ProfileService{profiles: profiles, logger: logger}
}

// RoleOf returns the stored role of a user. A user without a profile row is
// a plain user.
func (s *ProfileService) RoleOf(ctx context.Context, userID uuid.UUID) (domain.Role, error) {
	p, err := s.profiles.GetByID(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.RoleUser, nil
	}
	if err != nil {
		return "", fmt.Errorf("service.ProfileService.RoleOf: %w", err)
	}
	return p.Role, nil
}

// GetByID returns a public profile.
// Returns domain.ErrNotFound if the user has no profile.
func (s *ProfileService) GetByID(ctx context.Context, id uuid.UUID) (domain.Profile, error) {
	p, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("service.ProfileService.GetByID: %w", err)
	}
	return p, nil
}

// ListDevelopers returns one page of developer profiles ordered by username.
func (s *ProfileService) ListDevelopers(ctx context.Context, p domain.PaginationParams) (domain.Page[domain.Profile], error) {
	profiles, total, err := s.profiles.ListByRolePaged(ctx, domain.RoleDeveloper, p)
	if err != nil {
		return domain.Page[domain.Profile]{}, fmt.Errorf("service.ProfileService.ListDevelopers: %w", err)
	}
	if profiles == nil {
		profiles = []domain.Profile{}
	}
	return domain.Page[domain.Profile]{Items: profiles, Total: total, PaginationParams: p}, nil
}

// Me returns the session user's own profile. A signed-in user who has not
// saved a profile yet gets an empty one carrying their id and session role.
func (s *ProfileService) Me(ctx context.Context, sess domain.Session) (domain.Profile, error) {
	if !sess.IsAuthenticated {
		return domain.Profile{}, domain.ErrUnauthorized
	}
	p, err := s.profiles.GetByID(ctx, sess.User.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Profile{ID: sess.User.ID, Role: sess.Role}, nil
	}
	if err != nil {
		return domain.Profile{}, fmt.Errorf("service.ProfileService.Me: %w", err)
	}
	return p, nil
}

// UpdateMe creates or updates the session user's profile.
// Returns domain.ErrConflict if the username belongs to someone else.
func (s *ProfileService) UpdateMe(ctx context.Context, sess domain.Session, in domain.ProfileInput) (domain.Profile, error) {
	if !sess.IsAuthenticated {
		return domain.Profile{}, domain.ErrUnauthorized
	}
	username := strings.ToLower(strings.TrimSpace(in.Username))
	if username == "" {
		return domain.Profile{}, fmt.Errorf("%w: username is required", domain.ErrValidation)
	}
	if err := validateOptionalURL("avatar_url", in.AvatarURL); err != nil {
		return domain.Profile{}, err
	}
	if err := validateOptionalURL("website_url", in.WebsiteURL); err != nil {
		return domain.Profile{}, err
	}

	saved, err := s.profiles.Save(ctx, domain.Profile{
		ID:          sess.User.ID,
		Username:    username,
		DisplayName: strings.TrimSpace(in.DisplayName),
		Bio:         strings.TrimSpace(in.Bio),
		AvatarURL:   strings.TrimSpace(in.AvatarURL),
		WebsiteURL:  strings.TrimSpace(in.WebsiteURL),
	})
	if err != nil {
		return domain.Profile{}, fmt.Errorf("service.ProfileService.UpdateMe: %w", err)
	}

	s.logger.InfoContext(ctx, "profile saved", "user_id", saved.ID, "username", saved.Username)
	return saved, nil
}

// SetRole changes the role of another user. Admin only; an admin may not
// change their own role.
func (s *ProfileService) SetRole(ctx context.Context, sess domain.Session, id uuid.UUID, role domain.Role) (domain.Profile, error) {
	if !sess.IsAuthenticated {
		return domain.Profile{}, domain.ErrUnauthorized
	}
	if !sess.IsAdmin() {
		return domain.Profile{}, fmt.Errorf("%w: admin role required", domain.ErrForbidden)
	}
	if id == sess.User.ID {
		return domain.Profile{}, fmt.Errorf("%w: admins cannot change their own role", domain.ErrForbidden)
	}
	if !role.Assignable() {
		return domain.Profile{}, fmt.Errorf("%w: role must be one of user, developer, admin", domain.ErrValidation)
	}

	updated, err := s.profiles.UpdateRole(ctx, id, role)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("service.ProfileService.SetRole: %w", err)
	}

	s.logger.InfoContext(ctx, "role changed", "user_id", id, "role", role, "by", sess.User.ID)
	return updated, nil
}
