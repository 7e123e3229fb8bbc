package repository

import (
	"context"
	"fmt"

	"course-platform/internal/data/entity"
	"course-platform/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type CourseRepository interface {
	FindByID(ctx context.Context, id int64) (*entity.Course, error)
}

type courseRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewCourseRepository(db database.PgxIface, log *zap.Logger) CourseRepository {
	return &courseRepository{
		db:  db,
		log: log.With(zap.String("repository", "course")),
	}
}

func (r *courseRepository) FindByID(ctx context.Context, id int64) (*entity.Course, error) {
	query := `
		SELECT id, title, price, period, active, created_at, updated_at
		FROM courses
		WHERE id = $1
	`

	var course entity.Course
	err := r.db.QueryRow(ctx, query, id).Scan(
		&course.ID,
		&course.Title,
		&course.Price,
		&course.Period,
		&course.Active,
		&course.CreatedAt,
		&course.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find course by ID",
			zap.Error(err),
			zap.Int64("course_id", id),
		)
		return nil, fmt.Errorf("find course %d: %w", id, err)
	}

	return &course, nil
}
