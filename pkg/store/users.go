// Package store is the narrow persistence layer for Vaulth users. It
// exposes exactly the five operations the auth flow needs and nothing else;
// there are deliberately no multi-row queries.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/vaulth/vaulth/pkg/db/models"
)

// ErrNotFound is returned when no user matches the lookup.
var ErrNotFound = errors.New("store: user not found")

// ErrUnknownProvider is returned when a provider name is not in the fixed
// allow-list. Provider names come from compile-time configuration; seeing
// this error means a programming mistake, not bad user input.
var ErrUnknownProvider = errors.New("store: unknown provider")

// ErrIDTaken is returned by RegisterByProvider when the requested local id
// already exists.
var ErrIDTaken = errors.New("store: user id taken")

// ErrProviderTaken is returned by RegisterByProvider when the provider
// identity is already linked to some local user. Callers resolve it by
// retrying SelectByProvider.
var ErrProviderTaken = errors.New("store: provider identity already linked")

// providerColumns is the allow-list of provider column names. SQL column
// selection must go through this table, never through string formatting of
// untrusted input.
var providerColumns = map[string]string{
	"google":    "google_id",
	"microsoft": "microsoft_id",
	"facebook":  "facebook_id",
	"twitter":   "twitter_id",
	"github":    "github_id",
	"discord":   "discord_id",
}

type Store struct {
	db *bun.DB
}

func New(db *bun.DB) *Store {
	return &Store{db: db}
}

// Select fetches a user by local id.
func (s *Store) Select(ctx context.Context, id string) (*models.User, error) {
	user := new(models.User)
	err := s.db.NewSelect().
		Model(user).
		Where("id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select user: %w", err)
	}
	return user, nil
}

// Delete removes a user by local id and returns the deleted row.
func (s *Store) Delete(ctx context.Context, id string) (*models.User, error) {
	user := new(models.User)
	err := s.db.NewDelete().
		Model(user).
		Where("id = ?", id).
		Returning("*").
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to delete user: %w", err)
	}
	return user, nil
}

// SelectByProvider resolves a provider identity to a local user id.
func (s *Store) SelectByProvider(ctx context.Context, name, providerID string) (string, error) {
	column, ok := providerColumns[name]
	if !ok {
		return "", ErrUnknownProvider
	}

	var id string
	err := s.db.NewSelect().
		Model((*models.User)(nil)).
		Column("id").
		Where("? = ?", bun.Ident(column), providerID).
		Scan(ctx, &id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to select user by provider: %w", err)
	}
	return id, nil
}

// Login stamps login_at = now for the user.
func (s *Store) Login(ctx context.Context, id string) error {
	_, err := s.db.NewUpdate().
		Model((*models.User)(nil)).
		Set("login_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to stamp login: %w", err)
	}
	return nil
}

// RegisterByProvider inserts a new user linked to a single provider
// identity. The insert is one statement, so two registrations racing on the
// same provider identity resolve to exactly one success and one
// ErrProviderTaken/ErrIDTaken.
func (s *Store) RegisterByProvider(ctx context.Context, id, name, providerID string) (*models.User, error) {
	if _, ok := providerColumns[name]; !ok {
		return nil, ErrUnknownProvider
	}

	now := time.Now()
	user := &models.User{
		ID:         id,
		InsertedAt: now,
		UpdatedAt:  now,
		LoginAt:    &now,
	}
	setProviderID(user, name, providerID)

	_, err := s.db.NewInsert().
		Model(user).
		Exec(ctx)
	if err != nil {
		if constraint, ok := uniqueViolation(err); ok {
			if constraint == "vaulth_pkey" {
				return nil, ErrIDTaken
			}
			return nil, ErrProviderTaken
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	return user, nil
}

func setProviderID(user *models.User, name, providerID string) {
	switch name {
	case "google":
		user.GoogleID = &providerID
	case "microsoft":
		user.MicrosoftID = &providerID
	case "facebook":
		user.FacebookID = &providerID
	case "twitter":
		user.TwitterID = &providerID
	case "github":
		user.GithubID = &providerID
	case "discord":
		user.DiscordID = &providerID
	}
}

// uniqueViolation reports whether err is a Postgres unique violation
// (SQLSTATE 23505) and returns the violated constraint name.
func uniqueViolation(err error) (string, bool) {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) && pgErr.Field('C') == "23505" {
		return pgErr.Field('n'), true
	}
	return "", false
}
