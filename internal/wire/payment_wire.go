package wire

import (
	"course-platform/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wirePayment(r chi.Router, paymentHandler *adaptor.PaymentHandler) {
	// Gateway callback, authenticated by its checksum rather than a session
	r.Post("/api/web/payment", paymentHandler.Notify)
}
