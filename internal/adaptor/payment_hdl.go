package adaptor

import (
	"fmt"
	"net/http"

	"course-platform/internal/usecase"
	"course-platform/pkg/utils"

	"go.uber.org/zap"
)

type PaymentHandler struct {
	service usecase.PaymentService
	log     *zap.Logger
}

func NewPaymentHandler(service usecase.PaymentService, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		log:     log,
	}
}

// Notify handles POST /api/web/payment, the gateway result callback.
// The gateway matches the literal "OK<InvId>" body, so the ack is plain text,
// not the JSON envelope. Anything else makes the gateway retry, and the
// response never says which check failed.
func (h *PaymentHandler) Notify(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		utils.ResponseText(w, http.StatusBadRequest, "Error")
		return
	}

	fields := make(map[string]string, len(r.Form))
	for key, values := range r.Form {
		if len(values) > 0 {
			fields[key] = values[0]
		}
	}

	orderID, err := h.service.HandleNotification(r.Context(), fields)
	if err != nil {
		// Internal detail stays in the service logs
		utils.ResponseText(w, http.StatusBadRequest, "Error")
		return
	}

	utils.ResponseText(w, http.StatusOK, fmt.Sprintf("OK%d", orderID))
}
