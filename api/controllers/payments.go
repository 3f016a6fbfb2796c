package controllers

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"

	"github.com/phamiz/ecommerce-backend/api/responses"
	"github.com/phamiz/ecommerce-backend/internal/orders"
	"github.com/phamiz/ecommerce-backend/pkg/config"
	"github.com/phamiz/ecommerce-backend/pkg/enums"
	pkgerrors "github.com/phamiz/ecommerce-backend/pkg/errors"
	"github.com/phamiz/ecommerce-backend/pkg/logger"
)

const paymentSignatureHeader = "X-Payment-Signature"

type paymentWebhookPayload struct {
	OrderID       string  `json:"order_id"`
	Status        string  `json:"status"`
	TransactionID *string `json:"transaction_id"`
}

// PaymentWebhook receives settlement callbacks from the payment
// collaborator. The body is authenticated with an HMAC-SHA256 signature
// over the raw bytes, so it is read before decoding.
func PaymentWebhook(svc orders.Service, cfg config.PaymentsConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unreadable body"))
			return
		}

		if !validSignature(cfg.WebhookSecret, r.Header.Get(paymentSignatureHeader), body) {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid webhook signature"))
			return
		}

		var payload paymentWebhookPayload
		dec := json.NewDecoder(bytes.NewReader(body))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&payload); err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "malformed webhook payload"))
			return
		}
		if payload.OrderID == "" {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "order_id is required"))
			return
		}

		status, err := enums.ParsePaymentStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "unknown payment status"))
			return
		}

		order, err := svc.UpdatePaymentStatus(r.Context(), payload.OrderID, orders.UpdatePaymentInput{
			Status:        status,
			TransactionID: payload.TransactionID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}

func validSignature(secret, provided string, body []byte) bool {
	if secret == "" || provided == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(provided))
}
