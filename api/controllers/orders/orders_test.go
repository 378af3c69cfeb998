package orders

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vendorhub/vendorhub-backend/api/middleware"
	internalorders "github.com/vendorhub/vendorhub-backend/internal/orders"
	"github.com/vendorhub/vendorhub-backend/pkg/db/models"
	"github.com/vendorhub/vendorhub-backend/pkg/enums"
	pkgerrors "github.com/vendorhub/vendorhub-backend/pkg/errors"
	"github.com/vendorhub/vendorhub-backend/pkg/pagination"
)

type stubControllerOrdersService struct {
	create      func(ctx context.Context, input internalorders.CreateOrderInput) (*models.PurchaseOrder, error)
	update      func(ctx context.Context, input internalorders.UpdateOrderInput) (*models.PurchaseOrder, error)
	acknowledge func(ctx context.Context, input internalorders.AcknowledgeInput) (*models.PurchaseOrder, error)
	delete      func(ctx context.Context, input internalorders.DeleteInput) error
	list        func(ctx context.Context, viewer internalorders.Viewer, params pagination.Params, filters internalorders.OrderFilters) (*internalorders.OrderList, error)
	detail      func(ctx context.Context, viewer internalorders.Viewer, orderID uuid.UUID) (*models.PurchaseOrder, error)
}

func (s *stubControllerOrdersService) Create(ctx context.Context, input internalorders.CreateOrderInput) (*models.PurchaseOrder, error) {
	if s.create != nil {
		return s.create(ctx, input)
	}
	panic("not implemented")
}

func (s *stubControllerOrdersService) Update(ctx context.Context, input internalorders.UpdateOrderInput) (*models.PurchaseOrder, error) {
	if s.update != nil {
		return s.update(ctx, input)
	}
	panic("not implemented")
}

func (s *stubControllerOrdersService) Acknowledge(ctx context.Context, input internalorders.AcknowledgeInput) (*models.PurchaseOrder, error) {
	if s.acknowledge != nil {
		return s.acknowledge(ctx, input)
	}
	panic("not implemented")
}

func (s *stubControllerOrdersService) Delete(ctx context.Context, input internalorders.DeleteInput) error {
	if s.delete != nil {
		return s.delete(ctx, input)
	}
	panic("not implemented")
}

func (s *stubControllerOrdersService) List(ctx context.Context, viewer internalorders.Viewer, params pagination.Params, filters internalorders.OrderFilters) (*internalorders.OrderList, error) {
	if s.list != nil {
		return s.list(ctx, viewer, params, filters)
	}
	panic("not implemented")
}

func (s *stubControllerOrdersService) Detail(ctx context.Context, viewer internalorders.Viewer, orderID uuid.UUID) (*models.PurchaseOrder, error) {
	if s.detail != nil {
		return s.detail(ctx, viewer, orderID)
	}
	panic("not implemented")
}

func buyerContext(ctx context.Context, userID uuid.UUID) context.Context {
	return middleware.WithPrincipal(ctx, middleware.Principal{UserID: userID, Role: enums.ActorRoleBuyer})
}

func TestCreateDecodesBodyAndSeedsBuyer(t *testing.T) {
	buyerID := uuid.New()
	vendorID := uuid.New()
	svc := &stubControllerOrdersService{
		create: func(ctx context.Context, input internalorders.CreateOrderInput) (*models.PurchaseOrder, error) {
			if input.BuyerID != buyerID {
				t.Fatalf("unexpected buyer id %s", input.BuyerID)
			}
			if input.VendorID == nil || *input.VendorID != vendorID {
				t.Fatal("vendor id not forwarded")
			}
			if len(input.Items) != 1 || input.Items[0].Name != "Widget" || input.Items[0].Quantity != 2 {
				t.Fatalf("unexpected items %+v", input.Items)
			}
			return &models.PurchaseOrder{ID: uuid.New(), OrderNumber: "AB12CD34EF56", BuyerID: buyerID, Status: enums.OrderStatusPending}, nil
		},
	}

	body := `{"vendor_id":"` + vendorID.String() + `","delivery_date":"2026-04-01T00:00:00Z","items":[{"name":"Widget","quantity":2}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
	req = req.WithContext(buyerContext(req.Context(), buyerID))

	resp := httptest.NewRecorder()
	Create(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Data models.PurchaseOrder `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.OrderNumber != "AB12CD34EF56" {
		t.Fatalf("unexpected order number %s", envelope.Data.OrderNumber)
	}
}

func TestCreateRejectsMissingItems(t *testing.T) {
	svc := &stubControllerOrdersService{}

	body := `{"delivery_date":"2026-04-01T00:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
	req = req.WithContext(buyerContext(req.Context(), uuid.New()))

	resp := httptest.NewRecorder()
	Create(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestListForwardsFiltersAndViewer(t *testing.T) {
	buyerID := uuid.New()
	svc := &stubControllerOrdersService{
		list: func(ctx context.Context, viewer internalorders.Viewer, params pagination.Params, filters internalorders.OrderFilters) (*internalorders.OrderList, error) {
			if viewer.UserID != buyerID || viewer.Role != enums.ActorRoleBuyer {
				t.Fatalf("unexpected viewer %+v", viewer)
			}
			if params.Limit != 5 {
				t.Fatalf("unexpected limit %d", params.Limit)
			}
			if filters.Status == nil || *filters.Status != enums.OrderStatusCompleted {
				t.Fatal("status filter not parsed")
			}
			if filters.OrderDateFrom == nil || !filters.OrderDateFrom.Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)) {
				t.Fatal("order_date_from not parsed")
			}
			return &internalorders.OrderList{Orders: []internalorders.OrderSummary{{OrderNumber: "AB12CD34EF56"}}}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders?limit=5&status=completed&order_date_from=2026-01-01T00:00:00Z", nil)
	req = req.WithContext(buyerContext(req.Context(), buyerID))

	resp := httptest.NewRecorder()
	List(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestListRejectsBadStatusFilter(t *testing.T) {
	svc := &stubControllerOrdersService{}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders?status=shipped", nil)
	req = req.WithContext(buyerContext(req.Context(), uuid.New()))

	resp := httptest.NewRecorder()
	List(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAcknowledgeParsesOrderID(t *testing.T) {
	vendorUserID := uuid.New()
	orderID := uuid.New()
	svc := &stubControllerOrdersService{
		acknowledge: func(ctx context.Context, input internalorders.AcknowledgeInput) (*models.PurchaseOrder, error) {
			if input.OrderID != orderID {
				t.Fatalf("unexpected order id %s", input.OrderID)
			}
			if input.ActorUserID != vendorUserID {
				t.Fatalf("unexpected actor %s", input.ActorUserID)
			}
			now := time.Now().UTC()
			return &models.PurchaseOrder{ID: orderID, AcknowledgmentDate: &now}, nil
		},
	}

	router := chi.NewRouter()
	router.Post("/orders/{orderId}/acknowledge", Acknowledge(svc, nil))

	req := httptest.NewRequest(http.MethodPost, "/orders/"+orderID.String()+"/acknowledge", nil)
	req = req.WithContext(middleware.WithPrincipal(req.Context(), middleware.Principal{UserID: vendorUserID, Role: enums.ActorRoleVendor}))

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestAcknowledgeMapsStateConflict(t *testing.T) {
	svc := &stubControllerOrdersService{
		acknowledge: func(ctx context.Context, input internalorders.AcknowledgeInput) (*models.PurchaseOrder, error) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order already acknowledged")
		},
	}

	router := chi.NewRouter()
	router.Post("/orders/{orderId}/acknowledge", Acknowledge(svc, nil))

	req := httptest.NewRequest(http.MethodPost, "/orders/"+uuid.NewString()+"/acknowledge", nil)
	req = req.WithContext(middleware.WithPrincipal(req.Context(), middleware.Principal{UserID: uuid.New(), Role: enums.ActorRoleVendor}))

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
}

func TestUpdateForwardsStatusAndItems(t *testing.T) {
	buyerID := uuid.New()
	orderID := uuid.New()
	svc := &stubControllerOrdersService{
		update: func(ctx context.Context, input internalorders.UpdateOrderInput) (*models.PurchaseOrder, error) {
			if input.OrderID != orderID {
				t.Fatalf("unexpected order id %s", input.OrderID)
			}
			if input.Status == nil || *input.Status != enums.OrderStatusCompleted {
				t.Fatal("status not forwarded")
			}
			if input.Items == nil || len(*input.Items) != 1 || (*input.Items)[0].Name != "Bolts" {
				t.Fatal("items not forwarded")
			}
			return &models.PurchaseOrder{ID: orderID, Status: enums.OrderStatusCompleted}, nil
		},
	}

	router := chi.NewRouter()
	router.Put("/orders/{orderId}", Update(svc, nil))

	body := `{"status":"completed","items":[{"name":"Bolts","quantity":3}]}`
	req := httptest.NewRequest(http.MethodPut, "/orders/"+orderID.String(), strings.NewReader(body))
	req = req.WithContext(buyerContext(req.Context(), buyerID))

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestDeleteRejectsMalformedID(t *testing.T) {
	svc := &stubControllerOrdersService{}

	router := chi.NewRouter()
	router.Delete("/orders/{orderId}", Delete(svc, nil))

	req := httptest.NewRequest(http.MethodDelete, "/orders/not-a-uuid", nil)
	req = req.WithContext(buyerContext(req.Context(), uuid.New()))

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
