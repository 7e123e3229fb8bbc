package usecase

import (
	"context"
	"fmt"
	"time"

	"course-platform/internal/data/entity"
	"course-platform/internal/data/repository"
	"course-platform/internal/dto/request"
	"course-platform/internal/dto/response"

	"go.uber.org/zap"
)

const serviceCourse = "course"

type OrderService interface {
	Create(ctx context.Context, userID int64, req *request.CreateOrderRequest) (*response.OrderResponse, error)
	ListByUser(ctx context.Context, userID int64) ([]response.OrderResponse, error)
}

type orderService struct {
	repo    *repository.Repository
	gateway Gateway
	log     *zap.Logger
}

func NewOrderService(repo *repository.Repository, gateway Gateway, log *zap.Logger) OrderService {
	return &orderService{
		repo:    repo,
		gateway: gateway,
		log:     log,
	}
}

func (s *orderService) Create(ctx context.Context, userID int64, req *request.CreateOrderRequest) (*response.OrderResponse, error) {
	// 1. Load the course and snapshot its price and access period
	course, err := s.repo.Course.FindByID(ctx, req.CourseID)
	if err != nil {
		s.log.Error("Failed to find course", zap.Error(err), zap.Int64("course_id", req.CourseID))
		return nil, fmt.Errorf("failed to find course")
	}
	if course == nil || !course.Active {
		return nil, fmt.Errorf("course not found")
	}

	// 2. Create a pending order
	now := time.Now()
	order := &entity.Order{
		Base: entity.Base{
			CreatedAt: now,
			UpdatedAt: now,
		},
		UserID:   &userID,
		CourseID: &course.ID,
		Service:  serviceCourse,
		Cost:     course.Price,
		Status:   entity.OrderStatusPending,
		Period:   course.Period,
	}

	if err := s.repo.Order.Create(ctx, order); err != nil {
		s.log.Error("Failed to create order",
			zap.Error(err),
			zap.Int64("user_id", userID),
			zap.Int64("course_id", course.ID))
		return nil, fmt.Errorf("failed to create order")
	}

	s.log.Info("Order created",
		zap.Int64("order_id", order.ID),
		zap.Int64("user_id", userID),
		zap.Int64("course_id", course.ID),
		zap.Int64("cost", order.Cost))

	// 3. Hand the client a signed gateway link for this order
	resp := response.OrderToResponse(order)
	resp.PaymentURL = s.gateway.PaymentURL(order.ID, order.Cost)

	return &resp, nil
}

func (s *orderService) ListByUser(ctx context.Context, userID int64) ([]response.OrderResponse, error) {
	orders, err := s.repo.Order.FindByUser(ctx, userID)
	if err != nil {
		s.log.Error("Failed to list orders", zap.Error(err), zap.Int64("user_id", userID))
		return nil, fmt.Errorf("failed to list orders")
	}

	resp := make([]response.OrderResponse, 0, len(orders))
	for i := range orders {
		item := response.OrderToResponse(&orders[i])
		if orders[i].Status == entity.OrderStatusPending {
			item.PaymentURL = s.gateway.PaymentURL(orders[i].ID, orders[i].Cost)
		}
		resp = append(resp, item)
	}

	return resp, nil
}
