package repository

import (
	"course-platform/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	User      UserRepository
	UserToken UserTokenRepository
	Course    CourseRepository
	Order     OrderRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		User:      NewUserRepository(db, log),
		UserToken: NewUserTokenRepository(db, log),
		Course:    NewCourseRepository(db, log),
		Order:     NewOrderRepository(db, log),
	}
}
