package performance

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vendorhub/vendorhub-backend/pkg/db/models"
	"github.com/vendorhub/vendorhub-backend/pkg/pagination"
)

// Repository defines persistence operations for the aggregator and the
// snapshot time series.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindVendorOrders(ctx context.Context, vendorID uuid.UUID) ([]models.PurchaseOrder, error)
	CreateSnapshot(ctx context.Context, snapshot *models.VendorPerformanceSnapshot) (*models.VendorPerformanceSnapshot, error)
	ListSnapshots(ctx context.Context, vendorID uuid.UUID, params pagination.Params) (*SnapshotList, error)
}
