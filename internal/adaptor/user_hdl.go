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

type UserHandler struct {
	service usecase.UserService
	log     *zap.Logger
}

func NewUserHandler(service usecase.UserService, log *zap.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		log:     log,
	}
}

// GetProfile handles GET /api/profile
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	// Set by the auth middleware
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authorization required")
		return
	}

	profile, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.ResponseNotFound(w, err.Error())
			return
		}
		h.log.Error("Failed to get profile", zap.Error(err), zap.Int64("user_id", userID))
		utils.ResponseInternalError(w, "Internal server error")
		return
	}

	utils.ResponseSuccess(w, "Profile retrieved successfully", profile)
}

// ChangePassword handles PUT /api/profile/password
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authorization required")
		return
	}

	var req request.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	if err := h.service.ChangePassword(r.Context(), userID, &req); err != nil {
		errMsg := err.Error()
		switch {
		case strings.Contains(errMsg, "not found"):
			utils.ResponseNotFound(w, errMsg)
		case strings.Contains(errMsg, "invalid credentials"):
			utils.ResponseUnauthorized(w, errMsg)
		default:
			h.log.Error("Failed to change password", zap.Error(err), zap.Int64("user_id", userID))
			utils.ResponseInternalError(w, "Internal server error")
		}
		return
	}

	utils.ResponseSuccess(w, "Password changed successfully", nil)
}
