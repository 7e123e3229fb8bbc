package repository

import (
	"context"
	"fmt"

	"course-platform/internal/data/entity"
	"course-platform/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id int64) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
}

type userRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewUserRepository(db database.PgxIface, log *zap.Logger) UserRepository {
	return &userRepository{
		db:  db,
		log: log.With(zap.String("repository", "user")),
	}
}

// Create inserts a new user record into the database
func (ur *userRepository) Create(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (username, email, password, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := ur.db.QueryRow(ctx, query,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Active,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID)

	if err != nil {
		ur.log.Error("Failed to create user",
			zap.Error(err),
			zap.String("email", user.Email),
			zap.String("username", user.Username),
		)
		return fmt.Errorf("create user %s: %w", user.Email, err)
	}

	return nil
}

func (ur *userRepository) FindByID(ctx context.Context, id int64) (*entity.User, error) {
	query := `
		SELECT id, username, email, password, active, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	return ur.scanOne(ctx, query, id)
}

func (ur *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	query := `
		SELECT id, username, email, password, active, created_at, updated_at
		FROM users
		WHERE email = $1
	`

	return ur.scanOne(ctx, query, email)
}

func (ur *userRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	query := `
		SELECT id, username, email, password, active, created_at, updated_at
		FROM users
		WHERE username = $1
	`

	return ur.scanOne(ctx, query, username)
}

func (ur *userRepository) Update(ctx context.Context, user *entity.User) error {
	query := `
		UPDATE users
		SET username = $2, email = $3, password = $4, active = $5, updated_at = $6
		WHERE id = $1
	`

	result, err := ur.db.Exec(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Active,
		user.UpdatedAt,
	)

	if err != nil {
		ur.log.Error("Failed to update user",
			zap.Error(err),
			zap.Int64("user_id", user.ID),
		)
		return fmt.Errorf("update user %d: %w", user.ID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %d not found", user.ID)
	}

	return nil
}

func (ur *userRepository) scanOne(ctx context.Context, query string, arg any) (*entity.User, error) {
	var user entity.User
	err := ur.db.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Active,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		ur.log.Error("Failed to find user", zap.Error(err))
		return nil, fmt.Errorf("find user: %w", err)
	}

	return &user, nil
}
