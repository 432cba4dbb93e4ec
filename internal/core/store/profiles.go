package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/handlevet/handlevet/internal/core"
	apperrors "github.com/handlevet/handlevet/internal/errors"
)

const profileColumns = "id, nickname, canonical_nickname, display_name, created_at, updated_at"

var errNotInitialized = errors.New("store is not initialized")

// FindByNickname returns the profile holding the given nickname. The
// lookup is case-insensitive; absence surfaces as a not-found error so
// callers can distinguish "free" from "lookup failed".
func (s *Store) FindByNickname(ctx context.Context, nickname string) (*core.Profile, error) {
	if s == nil || s.DB == nil {
		return nil, errNotInitialized
	}
	if ctx == nil {
		ctx = context.Background()
	}

	canonical := core.Normalize(strings.TrimSpace(nickname))
	if canonical == "" {
		return nil, apperrors.New(apperrors.KindValidation, "nickname is required")
	}

	row := s.DB.QueryRowContext(ctx, `
		SELECT `+profileColumns+`
		FROM profiles
		WHERE canonical_nickname = ?
	`, canonical)

	profile, err := scanProfile(row)
	if err != nil {
		return nil, wrapDB("find profile by nickname", err)
	}
	return profile, nil
}

// GetProfile returns a profile by its id.
func (s *Store) GetProfile(ctx context.Context, id string) (*core.Profile, error) {
	if s == nil || s.DB == nil {
		return nil, errNotInitialized
	}
	if ctx == nil {
		ctx = context.Background()
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.New(apperrors.KindValidation, "profile id is required")
	}

	row := s.DB.QueryRowContext(ctx, `
		SELECT `+profileColumns+`
		FROM profiles
		WHERE id = ?
	`, id)

	profile, err := scanProfile(row)
	if err != nil {
		return nil, wrapDB("fetch profile", err)
	}
	return profile, nil
}

// CreateProfile inserts a new profile. The nickname is stored twice, as
// typed and in canonical form; a clash on the canonical form surfaces as
// a duplicate error.
func (s *Store) CreateProfile(ctx context.Context, nickname, displayName string) (*core.Profile, error) {
	if s == nil || s.DB == nil {
		return nil, errNotInitialized
	}
	if ctx == nil {
		ctx = context.Background()
	}

	trimmed := strings.TrimSpace(nickname)
	if trimmed == "" {
		return nil, apperrors.New(apperrors.KindValidation, "nickname is required")
	}

	now := time.Now().UTC()
	profile := &core.Profile{
		ID:          uuid.New().String(),
		Nickname:    trimmed,
		Canonical:   core.Normalize(trimmed),
		DisplayName: strings.TrimSpace(displayName),
		CreatedAt:   now.Truncate(time.Second),
		UpdatedAt:   now.Truncate(time.Second),
	}

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO profiles (`+profileColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)
	`, profile.ID, profile.Nickname, profile.Canonical, profile.DisplayName,
		profile.CreatedAt.Unix(), profile.UpdatedAt.Unix())
	if err != nil {
		return nil, wrapDB("create profile", err)
	}

	return profile, nil
}

// UpdateNickname moves a profile to a new nickname. The UNIQUE constraint
// on the canonical form decides races between concurrent claims; the loser
// gets a duplicate error and must pick another name.
func (s *Store) UpdateNickname(ctx context.Context, profileID, nickname string) (*core.Profile, error) {
	if s == nil || s.DB == nil {
		return nil, errNotInitialized
	}
	if ctx == nil {
		ctx = context.Background()
	}

	profileID = strings.TrimSpace(profileID)
	if profileID == "" {
		return nil, apperrors.New(apperrors.KindValidation, "profile id is required")
	}
	trimmed := strings.TrimSpace(nickname)
	if trimmed == "" {
		return nil, apperrors.New(apperrors.KindValidation, "nickname is required")
	}

	result, err := s.DB.ExecContext(ctx, `
		UPDATE profiles
		SET nickname = ?, canonical_nickname = ?, updated_at = ?
		WHERE id = ?
	`, trimmed, core.Normalize(trimmed), time.Now().UTC().Unix(), profileID)
	if err != nil {
		return nil, wrapDB("update nickname", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, wrapDB("update nickname", err)
	}
	if affected == 0 {
		return nil, apperrors.New(apperrors.KindNotFound, "record not found")
	}

	return s.GetProfile(ctx, profileID)
}

// ListProfiles returns all profiles ordered by canonical nickname.
func (s *Store) ListProfiles(ctx context.Context) ([]core.Profile, error) {
	if s == nil || s.DB == nil {
		return nil, errNotInitialized
	}
	if ctx == nil {
		ctx = context.Background()
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT `+profileColumns+`
		FROM profiles
		ORDER BY canonical_nickname
	`)
	if err != nil {
		return nil, wrapDB("list profiles", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup on SQL rows

	var profiles []core.Profile
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, wrapDB("list profiles", err)
		}
		profiles = append(profiles, *profile)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDB("list profiles", err)
	}

	return profiles, nil
}

// DeleteProfile removes a profile by id.
func (s *Store) DeleteProfile(ctx context.Context, id string) error {
	if s == nil || s.DB == nil {
		return errNotInitialized
	}
	if ctx == nil {
		ctx = context.Background()
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return apperrors.New(apperrors.KindValidation, "profile id is required")
	}

	result, err := s.DB.ExecContext(ctx, `DELETE FROM profiles WHERE id = ?`, id)
	if err != nil {
		return wrapDB("delete profile", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return wrapDB("delete profile", err)
	}
	if affected == 0 {
		return apperrors.New(apperrors.KindNotFound, "record not found")
	}
	return nil
}

// CountProfiles returns the number of stored profiles.
func (s *Store) CountProfiles(ctx context.Context) (int, error) {
	if s == nil || s.DB == nil {
		return 0, errNotInitialized
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var count int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM profiles`).Scan(&count); err != nil {
		return 0, wrapDB("count profiles", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*core.Profile, error) {
	var (
		profile   core.Profile
		display   sql.NullString
		createdAt int64
		updatedAt int64
	)

	err := row.Scan(&profile.ID, &profile.Nickname, &profile.Canonical,
		&display, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	profile.DisplayName = display.String
	profile.CreatedAt = time.Unix(createdAt, 0).UTC()
	profile.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return &profile, nil
}

// wrapDB folds a driver error into the shared taxonomy. Absence and
// uniqueness keep their own kinds; every other driver failure is a
// database error, which callers may retry.
func wrapDB(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return apperrors.New(apperrors.KindNotFound, "record not found")
	case isUniqueViolation(err):
		return apperrors.Wrap(apperrors.KindDuplicate, "this nickname is already taken", err)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return apperrors.Classify(err)
	default:
		return apperrors.Wrap(apperrors.KindDatabase, "database request failed", fmt.Errorf("%s: %w", op, err))
	}
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
