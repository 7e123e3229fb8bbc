package response

import (
	"time"

	"course-platform/internal/data/entity"
)

type OrderResponse struct {
	ID         int64      `json:"id"`
	CourseID   *int64     `json:"course_id,omitempty"`
	Service    string     `json:"service"`
	Cost       int64      `json:"cost"`
	Status     int16      `json:"status"`
	Period     int        `json:"period"`
	PaidAt     *time.Time `json:"paid_at,omitempty"`
	PaidTill   *time.Time `json:"paid_till,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	PaymentURL string     `json:"payment_url,omitempty"`
}

func OrderToResponse(order *entity.Order) OrderResponse {
	return OrderResponse{
		ID:        order.ID,
		CourseID:  order.CourseID,
		Service:   order.Service,
		Cost:      order.Cost,
		Status:    int16(order.Status),
		Period:    order.Period,
		PaidAt:    order.PaidAt,
		PaidTill:  order.PaidTill,
		CreatedAt: order.CreatedAt,
	}
}
