package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/ritesshguptaa/recipy-app-api/internal/model"
)

// ErrTokenNotFound indicates no user holds the presented token.
var ErrTokenNotFound = errors.New("token not found")

// ReplaceToken stores digest as the user's only token.
// It returns the digest it replaced, or empty string if the user had none.
func (r *Repository) ReplaceToken(ctx context.Context, userID, digest string) (string, error) {
	var previous string

	err := r.WithTx(ctx, func(tx *Repository) error {
		err := tx.db.QueryRow(ctx,
			`SELECT key_digest FROM auth_tokens WHERE user_id = $1 FOR UPDATE`,
			userID,
		).Scan(&previous)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("failed to lock token: %w", err)
		}

		_, err = tx.db.Exec(ctx, `
			INSERT INTO auth_tokens (user_id, key_digest, created_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (user_id) DO UPDATE
			SET key_digest = EXCLUDED.key_digest, created_at = EXCLUDED.created_at
		`, userID, digest, time.Now().UTC())
		if err != nil {
			if isForeignKeyViolation(err) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to store token: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	return previous, nil
}

// GetUserByTokenDigest resolves a token digest to its user.
func (r *Repository) GetUserByTokenDigest(ctx context.Context, digest string) (*model.User, error) {
	query := `
		SELECT u.id, u.email, u.password_hash, u.name, u.is_active, u.is_staff, u.is_superuser, u.created_at, u.updated_at
		FROM auth_tokens t
		JOIN users u ON u.id = t.user_id
		WHERE t.key_digest = $1
	`

	user, err := scanUser(r.db.QueryRow(ctx, query, digest))
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrTokenNotFound
	}
	return user, err
}

// DeleteTokensByUser removes every token of a user and returns their digests.
func (r *Repository) DeleteTokensByUser(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`DELETE FROM auth_tokens WHERE user_id = $1 RETURNING key_digest`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to delete tokens: %w", err)
	}
	defer rows.Close()

	var digests []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan token digest: %w", err)
		}
		digests = append(digests, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tokens: %w", err)
	}

	return digests, nil
}
