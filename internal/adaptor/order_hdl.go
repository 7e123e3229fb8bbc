package adaptor

import (
	"encoding/json"
	"net/http"
	"strings"

	"course-platform/internal/dto/request"
	"course-platform/internal/usecase"
	"course-platform/pkg/utils"

	"go.uber.org/zap"
)

type OrderHandler struct {
	service usecase.OrderService
	log     *zap.Logger
}

func NewOrderHandler(service usecase.OrderService, log *zap.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		log:     log,
	}
}

// Create handles POST /api/orders
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authorization required")
		return
	}

	var req request.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	order, err := h.service.Create(r.Context(), userID, &req)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.ResponseNotFound(w, err.Error())
			return
		}
		h.log.Error("Failed to create order", zap.Error(err), zap.Int64("user_id", userID))
		utils.ResponseInternalError(w, "Internal server error")
		return
	}

	utils.ResponseCreated(w, "Order created", order)
}

// List handles GET /api/orders
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authorization required")
		return
	}

	orders, err := h.service.ListByUser(r.Context(), userID)
	if err != nil {
		h.log.Error("Failed to list orders", zap.Error(err), zap.Int64("user_id", userID))
		utils.ResponseInternalError(w, "Internal server error")
		return
	}

	utils.ResponseSuccess(w, "Orders retrieved successfully", orders)
}
