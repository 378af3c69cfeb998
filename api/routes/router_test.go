package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	pkgAuth "github.com/vendorhub/vendorhub-backend/pkg/auth"
	"github.com/vendorhub/vendorhub-backend/internal/orders"
	"github.com/vendorhub/vendorhub-backend/internal/performance"
	"github.com/vendorhub/vendorhub-backend/pkg/config"
	"github.com/vendorhub/vendorhub-backend/pkg/db/models"
	"github.com/vendorhub/vendorhub-backend/pkg/enums"
	"github.com/vendorhub/vendorhub-backend/pkg/pagination"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubRouterOrdersService struct{}

func (stubRouterOrdersService) Create(ctx context.Context, input orders.CreateOrderInput) (*models.PurchaseOrder, error) {
	return &models.PurchaseOrder{ID: uuid.New(), BuyerID: input.BuyerID}, nil
}

func (stubRouterOrdersService) Update(ctx context.Context, input orders.UpdateOrderInput) (*models.PurchaseOrder, error) {
	return &models.PurchaseOrder{ID: input.OrderID}, nil
}

func (stubRouterOrdersService) Acknowledge(ctx context.Context, input orders.AcknowledgeInput) (*models.PurchaseOrder, error) {
	return &models.PurchaseOrder{ID: input.OrderID}, nil
}

func (stubRouterOrdersService) Delete(ctx context.Context, input orders.DeleteInput) error {
	return nil
}

func (stubRouterOrdersService) List(ctx context.Context, viewer orders.Viewer, params pagination.Params, filters orders.OrderFilters) (*orders.OrderList, error) {
	return &orders.OrderList{}, nil
}

func (stubRouterOrdersService) Detail(ctx context.Context, viewer orders.Viewer, orderID uuid.UUID) (*models.PurchaseOrder, error) {
	return &models.PurchaseOrder{ID: orderID}, nil
}

type stubRouterPerformanceService struct{}

func (stubRouterPerformanceService) Compute(ctx context.Context, vendorID uuid.UUID) (*performance.Report, error) {
	return &performance.Report{VendorID: vendorID}, nil
}

func (stubRouterPerformanceService) Record(ctx context.Context, tx *gorm.DB, vendorID uuid.UUID, at time.Time) (*models.VendorPerformanceSnapshot, error) {
	return nil, nil
}

func (stubRouterPerformanceService) History(ctx context.Context, vendorID uuid.UUID, params pagination.Params) (*performance.SnapshotList, error) {
	return &performance.SnapshotList{}, nil
}

func newTestRouter(t *testing.T) (http.Handler, config.JWTConfig) {
	t.Helper()

	cfg := &config.Config{}
	cfg.App = config.AppConfig{Env: "test", Port: "0"}
	cfg.JWT = config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 60}

	handler := NewRouter(cfg, nil, stubPinger{}, stubPinger{}, stubRouterOrdersService{}, stubRouterPerformanceService{}, prometheus.NewRegistry())
	return handler, cfg.JWT
}

func mintToken(t *testing.T, cfg config.JWTConfig, role enums.ActorRole) string {
	t.Helper()

	token, err := pkgAuth.MintAccessToken(cfg, time.Now().UTC(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestRouterHealthEndpoints(t *testing.T) {
	handler, _ := newTestRouter(t)

	for _, path := range []string{"/health/live", "/health/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d", path, resp.Code)
		}
	}
}

func TestRouterMetricsEndpoint(t *testing.T) {
	handler, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestRouterRequiresAuth(t *testing.T) {
	handler, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestRouterEnforcesBuyerRoleOnCreate(t *testing.T) {
	handler, jwtCfg := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, jwtCfg, enums.ActorRoleVendor))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestRouterAllowsAuthenticatedList(t *testing.T) {
	handler, jwtCfg := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, jwtCfg, enums.ActorRoleBuyer))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}
