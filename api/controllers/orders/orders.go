package orders

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vendorhub/vendorhub-backend/api/middleware"
	"github.com/vendorhub/vendorhub-backend/api/responses"
	"github.com/vendorhub/vendorhub-backend/api/validators"
	internalorders "github.com/vendorhub/vendorhub-backend/internal/orders"
	"github.com/vendorhub/vendorhub-backend/pkg/enums"
	pkgerrors "github.com/vendorhub/vendorhub-backend/pkg/errors"
	"github.com/vendorhub/vendorhub-backend/pkg/logger"
	"github.com/vendorhub/vendorhub-backend/pkg/pagination"
)

type itemPayload struct {
	Name     string `json:"name" validate:"required"`
	Quantity int    `json:"quantity"`
}

type createOrderRequest struct {
	VendorID      *uuid.UUID    `json:"vendor_id"`
	DeliveryDate  time.Time     `json:"delivery_date" validate:"required"`
	Items         []itemPayload `json:"items" validate:"required,min=1"`
	QualityRating *float64      `json:"quality_rating"`
}

type updateOrderRequest struct {
	VendorID      *uuid.UUID     `json:"vendor_id"`
	DeliveryDate  *time.Time     `json:"delivery_date"`
	Items         *[]itemPayload `json:"items"`
	Status        *string        `json:"status"`
	QualityRating *float64       `json:"quality_rating"`
}

func toItemInputs(payloads []itemPayload) []internalorders.ItemInput {
	items := make([]internalorders.ItemInput, 0, len(payloads))
	for _, item := range payloads {
		items = append(items, internalorders.ItemInput{Name: item.Name, Quantity: item.Quantity})
	}
	return items
}

// Create places a new purchase order for the authenticated buyer.
func Create(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		var body createOrderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Create(r.Context(), internalorders.CreateOrderInput{
			BuyerID:       middleware.UserIDFromContext(r.Context()),
			VendorID:      body.VendorID,
			DeliveryDate:  body.DeliveryDate,
			Items:         toItemInputs(body.Items),
			QualityRating: body.QualityRating,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// List returns the caller's orders, buyer- or vendor-scoped by role.
func List(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params := pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		filters, err := buildFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		principal := middleware.PrincipalFromContext(r.Context())
		list, err := svc.List(r.Context(), internalorders.Viewer{
			UserID:   principal.UserID,
			Role:     principal.Role,
			VendorID: principal.VendorID,
		}, params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// Detail returns a single order visible to the caller.
func Detail(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		principal := middleware.PrincipalFromContext(r.Context())
		order, err := svc.Detail(r.Context(), internalorders.Viewer{
			UserID:   principal.UserID,
			Role:     principal.Role,
			VendorID: principal.VendorID,
		}, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// Update applies buyer edits, including status transitions.
func Update(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateOrderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := internalorders.UpdateOrderInput{
			OrderID:       orderID,
			ActorUserID:   middleware.UserIDFromContext(r.Context()),
			VendorID:      body.VendorID,
			DeliveryDate:  body.DeliveryDate,
			QualityRating: body.QualityRating,
		}
		if body.Items != nil {
			items := toItemInputs(*body.Items)
			input.Items = &items
		}
		if body.Status != nil {
			status := enums.OrderStatus(strings.ToLower(strings.TrimSpace(*body.Status)))
			input.Status = &status
		}

		order, err := svc.Update(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// Acknowledge stamps vendor acknowledgment on a completed order.
func Acknowledge(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Acknowledge(r.Context(), internalorders.AcknowledgeInput{
			OrderID:     orderID,
			ActorUserID: middleware.UserIDFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// Delete removes a buyer's order together with its items.
func Delete(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), internalorders.DeleteInput{
			OrderID:     orderID,
			ActorUserID: middleware.UserIDFromContext(r.Context()),
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func parseOrderID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "orderId"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	orderID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id")
	}
	return orderID, nil
}

func buildFilters(r *http.Request) (internalorders.OrderFilters, error) {
	var filters internalorders.OrderFilters

	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status := enums.OrderStatus(strings.ToLower(raw))
		if !status.IsValid() {
			return filters, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter").WithDetails(map[string]any{"field": "status"})
		}
		filters.Status = &status
	}

	vendorID, err := validators.ParseQueryUUID(r, "vendor_id")
	if err != nil {
		return filters, err
	}
	filters.VendorID = vendorID

	if filters.OrderDateFrom, err = validators.ParseQueryTime(r, "order_date_from"); err != nil {
		return filters, err
	}
	if filters.OrderDateTo, err = validators.ParseQueryTime(r, "order_date_to"); err != nil {
		return filters, err
	}
	if filters.DeliveryDateFrom, err = validators.ParseQueryTime(r, "delivery_date_from"); err != nil {
		return filters, err
	}
	if filters.DeliveryDateTo, err = validators.ParseQueryTime(r, "delivery_date_to"); err != nil {
		return filters, err
	}
	return filters, nil
}
