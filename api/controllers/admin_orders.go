package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/phamiz/ecommerce-backend/api/responses"
	"github.com/phamiz/ecommerce-backend/api/validators"
	"github.com/phamiz/ecommerce-backend/internal/orders"
	"github.com/phamiz/ecommerce-backend/pkg/enums"
	pkgerrors "github.com/phamiz/ecommerce-backend/pkg/errors"
	"github.com/phamiz/ecommerce-backend/pkg/logger"
)

// ListAllOrders serves the admin order ledger, optionally filtered by status.
func ListAllOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := listParamsFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var status *enums.OrderStatus
		if raw := r.URL.Query().Get("status"); raw != "" {
			parsed, err := enums.ParseOrderStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, "unknown order status"))
				return
			}
			status = &parsed
		}

		result, err := svc.ListAllOrders(r.Context(), actorFrom(r), status, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteList(w, result.Orders, result.NextCursor)
	}
}

type confirmPaymentRequest struct {
	TransactionID *string `json:"transaction_id"`
}

// ConfirmPayment settles an order's payment manually, for providers that
// cannot deliver a webhook. Settlement promotes the order to CONFIRMED.
func ConfirmPayment(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req confirmPaymentRequest
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(r, &req); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		order, err := svc.UpdatePaymentStatus(r.Context(), chi.URLParam(r, "orderID"), orders.UpdatePaymentInput{
			Status:        enums.PaymentStatusPaid,
			TransactionID: req.TransactionID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}

// UpdateOrderStatus advances an order to the target lifecycle status.
// Cancellation goes through the customer-facing cancel endpoint, which
// also restores stock.
func UpdateOrderStatus(svc orders.Service, target enums.OrderStatus, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		order, err := svc.UpdateStatus(r.Context(), actorFrom(r), chi.URLParam(r, "orderID"), target)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}
