package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vendorhub/vendorhub-backend/pkg/db/models"
	"github.com/vendorhub/vendorhub-backend/pkg/pagination"
)

// Repository defines persistence operations for purchase orders and their items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.PurchaseOrder) (*models.PurchaseOrder, error)
	CreateItems(ctx context.Context, items []models.OrderItem) error
	DeleteItemsByOrder(ctx context.Context, orderID uuid.UUID) error
	FindOrder(ctx context.Context, orderID uuid.UUID) (*models.PurchaseOrder, error)
	OrderNumberExists(ctx context.Context, number string) (bool, error)
	UpdateOrder(ctx context.Context, orderID uuid.UUID, updates map[string]any) error
	DeleteOrder(ctx context.Context, orderID uuid.UUID) error
	ListOrders(ctx context.Context, scope ListScope, params pagination.Params, filters OrderFilters) (*OrderList, error)
}
