package request

type CreateOrderRequest struct {
	CourseID int64 `json:"course_id" validate:"required,gt=0"`
}
