package repository

import (
	"context"
	"fmt"
	"time"

	"course-platform/internal/data/entity"
	"course-platform/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type UserTokenRepository interface {
	// Create inserts the token row. Returns false without error when a row
	// with the same (user_id, token) already exists — two requests issued in
	// the same second produce byte-identical tokens, and the unique index
	// makes sure only one of them lands.
	Create(ctx context.Context, token *entity.UserToken) (bool, error)
	FindActive(ctx context.Context, userID int64, token string) (*entity.UserToken, error)
	FindSameSecond(ctx context.Context, userID int64, createdAt time.Time) (*entity.UserToken, error)
	RevokeExpired(ctx context.Context, userID int64, now time.Time) error
	Deactivate(ctx context.Context, id int64) error
	DeactivateToken(ctx context.Context, userID int64, token string) error
	CountActive(ctx context.Context, userID int64) (int, error)
	DeactivateOldest(ctx context.Context, userID int64, exceptID int64) error
}

type userTokenRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewUserTokenRepository(db database.PgxIface, log *zap.Logger) UserTokenRepository {
	return &userTokenRepository{
		db:  db,
		log: log.With(zap.String("repository", "user_token")),
	}
}

func (r *userTokenRepository) Create(ctx context.Context, token *entity.UserToken) (bool, error) {
	query := `
		INSERT INTO user_tokens (user_id, token, valid_till, active, ip, created_at, updated_at)
		VALUES ($1, $2, $3, true, $4, $5, $6)
		ON CONFLICT (user_id, token) DO NOTHING
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query,
		token.UserID,
		token.Token,
		token.ValidTill,
		token.IP,
		token.CreatedAt,
		token.UpdatedAt,
	).Scan(&token.ID)

	if err == pgx.ErrNoRows {
		// Conflict: the concurrent twin already inserted this exact token
		return false, nil
	}
	if err != nil {
		r.log.Error("Failed to create user token",
			zap.Error(err),
			zap.Int64("user_id", token.UserID),
		)
		return false, fmt.Errorf("create token for user %d: %w", token.UserID, err)
	}

	return true, nil
}

func (r *userTokenRepository) FindActive(ctx context.Context, userID int64, token string) (*entity.UserToken, error) {
	query := `
		SELECT id, user_id, token, valid_till, active, ip, created_at, updated_at
		FROM user_tokens
		WHERE user_id = $1 AND token = $2 AND active = true
	`

	var row entity.UserToken
	err := r.db.QueryRow(ctx, query, userID, token).Scan(
		&row.ID,
		&row.UserID,
		&row.Token,
		&row.ValidTill,
		&row.Active,
		&row.IP,
		&row.CreatedAt,
		&row.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find active token",
			zap.Error(err),
			zap.Int64("user_id", userID),
		)
		return nil, fmt.Errorf("find active token for user %d: %w", userID, err)
	}

	return &row, nil
}

func (r *userTokenRepository) FindSameSecond(ctx context.Context, userID int64, createdAt time.Time) (*entity.UserToken, error) {
	// created_at is stored truncated to the second, so equality is exact
	query := `
		SELECT id, user_id, token, valid_till, active, ip, created_at, updated_at
		FROM user_tokens
		WHERE user_id = $1 AND created_at = $2 AND active = true
	`

	var row entity.UserToken
	err := r.db.QueryRow(ctx, query, userID, createdAt).Scan(
		&row.ID,
		&row.UserID,
		&row.Token,
		&row.ValidTill,
		&row.Active,
		&row.IP,
		&row.CreatedAt,
		&row.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find same-second token",
			zap.Error(err),
			zap.Int64("user_id", userID),
		)
		return nil, fmt.Errorf("find same-second token for user %d: %w", userID, err)
	}

	return &row, nil
}

func (r *userTokenRepository) RevokeExpired(ctx context.Context, userID int64, now time.Time) error {
	query := `
		UPDATE user_tokens
		SET active = false, updated_at = $2
		WHERE user_id = $1 AND active = true AND valid_till < $2
	`

	_, err := r.db.Exec(ctx, query, userID, now)
	if err != nil {
		r.log.Error("Failed to revoke expired tokens",
			zap.Error(err),
			zap.Int64("user_id", userID),
		)
		return fmt.Errorf("revoke expired tokens for user %d: %w", userID, err)
	}

	return nil
}

func (r *userTokenRepository) Deactivate(ctx context.Context, id int64) error {
	query := `
		UPDATE user_tokens
		SET active = false, updated_at = NOW()
		WHERE id = $1 AND active = true
	`

	_, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to deactivate token",
			zap.Error(err),
			zap.Int64("token_id", id),
		)
		return fmt.Errorf("deactivate token %d: %w", id, err)
	}

	return nil
}

func (r *userTokenRepository) DeactivateToken(ctx context.Context, userID int64, token string) error {
	// Idempotent: deactivating an inactive or unknown token affects no rows
	// and that is fine
	query := `
		UPDATE user_tokens
		SET active = false, updated_at = NOW()
		WHERE user_id = $1 AND token = $2 AND active = true
	`

	_, err := r.db.Exec(ctx, query, userID, token)
	if err != nil {
		r.log.Error("Failed to deactivate token",
			zap.Error(err),
			zap.Int64("user_id", userID),
		)
		return fmt.Errorf("deactivate token for user %d: %w", userID, err)
	}

	return nil
}

func (r *userTokenRepository) CountActive(ctx context.Context, userID int64) (int, error) {
	query := `SELECT COUNT(*) FROM user_tokens WHERE user_id = $1 AND active = true`

	var count int
	if err := r.db.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		r.log.Error("Failed to count active tokens",
			zap.Error(err),
			zap.Int64("user_id", userID),
		)
		return 0, fmt.Errorf("count active tokens for user %d: %w", userID, err)
	}

	return count, nil
}

func (r *userTokenRepository) DeactivateOldest(ctx context.Context, userID int64, exceptID int64) error {
	// Least-recently-updated active row, ties broken by oldest created_at.
	// exceptID keeps the freshly issued token out of the candidates.
	query := `
		UPDATE user_tokens
		SET active = false, updated_at = NOW()
		WHERE id = (
			SELECT id FROM user_tokens
			WHERE user_id = $1 AND active = true AND id <> $2
			ORDER BY updated_at ASC, created_at ASC
			LIMIT 1
		)
	`

	_, err := r.db.Exec(ctx, query, userID, exceptID)
	if err != nil {
		r.log.Error("Failed to deactivate oldest token",
			zap.Error(err),
			zap.Int64("user_id", userID),
		)
		return fmt.Errorf("deactivate oldest token for user %d: %w", userID, err)
	}

	return nil
}
