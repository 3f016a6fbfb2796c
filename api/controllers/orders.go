package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/phamiz/ecommerce-backend/api/middleware"
	"github.com/phamiz/ecommerce-backend/api/responses"
	"github.com/phamiz/ecommerce-backend/api/validators"
	"github.com/phamiz/ecommerce-backend/internal/addresses"
	"github.com/phamiz/ecommerce-backend/internal/orders"
	"github.com/phamiz/ecommerce-backend/pkg/enums"
	pkgerrors "github.com/phamiz/ecommerce-backend/pkg/errors"
	"github.com/phamiz/ecommerce-backend/pkg/logger"
	"github.com/phamiz/ecommerce-backend/pkg/pagination"
)

type createOrderRequest struct {
	AddressID     *uuid.UUID            `json:"address_id"`
	Address       *inlineAddressRequest `json:"address"`
	PaymentMethod string                `json:"payment_method"`
}

type inlineAddressRequest struct {
	Street     string  `json:"street" validate:"required"`
	City       string  `json:"city" validate:"required"`
	State      string  `json:"state" validate:"required"`
	PostalCode string  `json:"postal_code" validate:"required"`
	Country    string  `json:"country" validate:"required"`
	Phone      *string `json:"phone"`
}

func actorFrom(r *http.Request) orders.Actor {
	return orders.Actor{
		UserID: middleware.UserIDFromContext(r.Context()),
		Role:   enums.UserRole(middleware.RoleFromContext(r.Context())),
	}
}

func CreateOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := orders.CreateOrderInput{AddressID: req.AddressID}
		if req.Address != nil {
			input.Address = &addresses.AddressInput{
				Street:     req.Address.Street,
				City:       req.Address.City,
				State:      req.Address.State,
				PostalCode: req.Address.PostalCode,
				Country:    req.Address.Country,
				Phone:      req.Address.Phone,
			}
		}
		if req.PaymentMethod != "" {
			method, err := enums.ParsePaymentMethod(req.PaymentMethod)
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method"))
				return
			}
			input.PaymentMethod = method
		}

		order, err := svc.CreateOrder(r.Context(), actorFrom(r), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

func GetOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		order, err := svc.GetOrder(r.Context(), actorFrom(r), chi.URLParam(r, "orderID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}

func ListOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := listParamsFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListOrders(r.Context(), actorFrom(r), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteList(w, result.Orders, result.NextCursor)
	}
}

func CancelOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		order, err := svc.CancelOrder(r.Context(), actorFrom(r), chi.URLParam(r, "orderID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}

func DeleteOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeleteOrder(r.Context(), actorFrom(r), chi.URLParam(r, "orderID")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func listParamsFrom(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", 0)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: r.URL.Query().Get("cursor"),
	}, nil
}
