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

type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	FindByID(ctx context.Context, id int64) (*entity.Order, error)
	FindByUser(ctx context.Context, userID int64) ([]entity.Order, error)

	// MarkPaid transitions PENDING -> PAID. The status guard in the UPDATE
	// makes the transition at-most-once under concurrent duplicate gateway
	// notifications, and keeps cancelled and failed orders out of PAID;
	// false means the order was not pending anymore.
	MarkPaid(ctx context.Context, id int64, paidAt, paidTill time.Time) (bool, error)
}

type orderRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewOrderRepository(db database.PgxIface, log *zap.Logger) OrderRepository {
	return &orderRepository{
		db:  db,
		log: log.With(zap.String("repository", "order")),
	}
}

func (r *orderRepository) Create(ctx context.Context, order *entity.Order) error {
	query := `
		INSERT INTO orders (user_id, course_id, service, cost, status, period, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query,
		order.UserID,
		order.CourseID,
		order.Service,
		order.Cost,
		order.Status,
		order.Period,
		order.CreatedAt,
		order.UpdatedAt,
	).Scan(&order.ID)

	if err != nil {
		r.log.Error("Failed to create order",
			zap.Error(err),
			zap.String("service", order.Service),
		)
		return fmt.Errorf("create order: %w", err)
	}

	return nil
}

func (r *orderRepository) FindByID(ctx context.Context, id int64) (*entity.Order, error) {
	query := `
		SELECT id, user_id, course_id, service, cost, status, period,
		       paid_at, paid_till, created_at, updated_at
		FROM orders
		WHERE id = $1
	`

	var order entity.Order
	err := r.db.QueryRow(ctx, query, id).Scan(
		&order.ID,
		&order.UserID,
		&order.CourseID,
		&order.Service,
		&order.Cost,
		&order.Status,
		&order.Period,
		&order.PaidAt,
		&order.PaidTill,
		&order.CreatedAt,
		&order.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find order by ID",
			zap.Error(err),
			zap.Int64("order_id", id),
		)
		return nil, fmt.Errorf("find order %d: %w", id, err)
	}

	return &order, nil
}

func (r *orderRepository) FindByUser(ctx context.Context, userID int64) ([]entity.Order, error) {
	query := `
		SELECT id, user_id, course_id, service, cost, status, period,
		       paid_at, paid_till, created_at, updated_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.log.Error("Failed to find orders by user",
			zap.Error(err),
			zap.Int64("user_id", userID),
		)
		return nil, fmt.Errorf("find orders for user %d: %w", userID, err)
	}
	defer rows.Close()

	var orders []entity.Order
	for rows.Next() {
		var order entity.Order
		if err := rows.Scan(
			&order.ID,
			&order.UserID,
			&order.CourseID,
			&order.Service,
			&order.Cost,
			&order.Status,
			&order.Period,
			&order.PaidAt,
			&order.PaidTill,
			&order.CreatedAt,
			&order.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}

	return orders, nil
}

func (r *orderRepository) MarkPaid(ctx context.Context, id int64, paidAt, paidTill time.Time) (bool, error) {
	query := `
		UPDATE orders
		SET status = $2, paid_at = $3, paid_till = $4, updated_at = $3
		WHERE id = $1 AND status = $5
	`

	result, err := r.db.Exec(ctx, query, id, entity.OrderStatusPaid, paidAt, paidTill, entity.OrderStatusPending)
	if err != nil {
		r.log.Error("Failed to mark order paid",
			zap.Error(err),
			zap.Int64("order_id", id),
		)
		return false, fmt.Errorf("mark order %d paid: %w", id, err)
	}

	return result.RowsAffected() > 0, nil
}
