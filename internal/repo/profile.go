package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/validity/backend/internal/domain"
)

// ProfileRepo defines the persistence operations for user profiles.
type ProfileRepo interface {
	// GetByID retrieves a profile by the user's auth subject id.
	// Returns domain.ErrNotFound if the user has no profile row.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Profile, error)

	// ListByIDs returns the profiles for ids keyed by id. Unknown ids are absent.
	ListByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.Profile, error)

	// ListByRolePaged returns one page of profiles with the given role ordered
	// by username, and the total number of such profiles.
	ListByRolePaged(ctx context.Context, role domain.Role, p domain.PaginationParams) ([]domain.Profile, int64, error)

	// Save inserts or updates the public fields of a profile.
	// The role of an existing profile is never changed by Save.
	// Returns domain.ErrConflict if the username is taken by another user.
	Save(ctx context.Context, profile domain.Profile) (domain.Profile, error)

	// UpdateRole sets the role of an existing profile.
	// Returns domain.ErrNotFound if the profile does not exist.
	UpdateRole(ctx context.Context, id uuid.UUID, role domain.Role) (domain.Profile, error)
}

// pgProfileRepo is the Postgres implementation of ProfileRepo.
type pgProfileRepo struct {
	db db
}

// NewProfileRepo constructs a ProfileRepo backed by the provided db connection.
func NewProfileRepo(db db) ProfileRepo {
	return &pgProfileRepo{db: db}
}

const profileColumns = `
	id, username, display_name, bio, avatar_url, website_url, role, created_at, updated_at`

func (r *pgProfileRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Profile, error) {
	q := `SELECT ` + profileColumns + ` FROM profiles WHERE id = @id`

	result, err := scanProfile(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Profile{}, fmt.Errorf("repo.ProfileRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgProfileRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.Profile, error) {
	out := make(map[uuid.UUID]domain.Profile, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	q := `SELECT ` + profileColumns + ` FROM profiles WHERE id = ANY(@ids::uuid[])`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"ids": ids})
	if err != nil {
		return nil, fmt.Errorf("repo.ProfileRepo.ListByIDs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.ProfileRepo.ListByIDs: scan: %w", err)
		}
		out[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.ProfileRepo.ListByIDs: rows: %w", err)
	}
	return out, nil
}

func (r *pgProfileRepo) ListByRolePaged(ctx context.Context, role domain.Role, p domain.PaginationParams) ([]domain.Profile, int64, error) {
	const countQ = `SELECT count(*) FROM profiles WHERE role = @role`

	var total int64
	if err := r.db.QueryRow(ctx, countQ, pgx.NamedArgs{"role": string(role)}).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.ProfileRepo.ListByRolePaged: count: %w", err)
	}

	q := `
		SELECT ` + profileColumns + `
		FROM profiles
		WHERE role = @role
		ORDER BY username
		LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"role": string(role), "limit": p.Limit, "offset": p.Offset()})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.ProfileRepo.ListByRolePaged: %w", err)
	}
	defer rows.Close()

	profiles := []domain.Profile{}
	for rows.Next() {
		prof, err := scanProfile(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.ProfileRepo.ListByRolePaged: scan: %w", err)
		}
		profiles = append(profiles, prof)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.ProfileRepo.ListByRolePaged: rows: %w", err)
	}
	return profiles, total, nil
}

func (r *pgProfileRepo) Save(ctx context.Context, profile domain.Profile) (domain.Profile, error) {
	q := `
		INSERT INTO profiles (id, username, display_name, bio, avatar_url, website_url)
		VALUES (@id, @username, @display_name, @bio, @avatar_url, @website_url)
		ON CONFLICT (id) DO UPDATE
		SET username     = EXCLUDED.username,
		    display_name = EXCLUDED.display_name,
		    bio          = EXCLUDED.bio,
		    avatar_url   = EXCLUDED.avatar_url,
		    website_url  = EXCLUDED.website_url,
		    updated_at   = now()
		RETURNING ` + profileColumns

	args := pgx.NamedArgs{
		"id":           profile.ID,
		"username":     profile.Username,
		"display_name": profile.DisplayName,
		"bio":          profile.Bio,
		"avatar_url":   profile.AvatarURL,
		"website_url":  profile.WebsiteURL,
	}

	result, err := scanProfile(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Profile{}, fmt.Errorf("repo.ProfileRepo.Save: %w", mapWriteError(err))
	}
	return result, nil
}

func (r *pgProfileRepo) UpdateRole(ctx context.Context, id uuid.UUID, role domain.Role) (domain.Profile, error) {
	q := `
		UPDATE profiles
		SET role = @role, updated_at = now()
		WHERE id = @id
		RETURNING ` + profileColumns

	result, err := scanProfile(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "role": string(role)}))
	if err != nil {
		return domain.Profile{}, fmt.Errorf("repo.ProfileRepo.UpdateRole: %w", err)
	}
	return result, nil
}

// scanProfile maps a row selected with profileColumns into a domain.Profile.
func scanProfile(s scanner) (domain.Profile, error) {
	var (
		p    domain.Profile
		id   pgtype.UUID
		role string
	)
	err := s.Scan(&id, &p.Username, &p.DisplayName, &p.Bio, &p.AvatarURL, &p.WebsiteURL, &role, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Profile{}, domain.ErrNotFound
		}
		return domain.Profile{}, err
	}
	p.ID = uuid.UUID(id.Bytes)
	p.Role = domain.Role(role)
	return p, nil
}
