package performance

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vendorhub/vendorhub-backend/pkg/db/models"
	"github.com/vendorhub/vendorhub-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a performance repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindVendorOrders(ctx context.Context, vendorID uuid.UUID) ([]models.PurchaseOrder, error) {
	var orders []models.PurchaseOrder
	err := r.db.WithContext(ctx).
		Where("vendor_id = ?", vendorID).
		Order("created_at ASC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) CreateSnapshot(ctx context.Context, snapshot *models.VendorPerformanceSnapshot) (*models.VendorPerformanceSnapshot, error) {
	if snapshot.ID == uuid.Nil {
		snapshot.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(snapshot).Error; err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (r *repository) ListSnapshots(ctx context.Context, vendorID uuid.UUID, params pagination.Params) (*SnapshotList, error) {
	normalizedLimit := pagination.NormalizeLimit(params.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(params.Limit)

	decodedCursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).
		Model(&models.VendorPerformanceSnapshot{}).
		Where("vendor_id = ?", vendorID)

	if decodedCursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", decodedCursor.CreatedAt, decodedCursor.CreatedAt, decodedCursor.ID)
	}

	var rows []models.VendorPerformanceSnapshot
	err = query.Order("created_at DESC").Order("id DESC").Limit(limitWithBuffer).Find(&rows).Error
	if err != nil {
		return nil, err
	}

	nextCursor := ""
	if len(rows) > normalizedLimit {
		rows = rows[:normalizedLimit]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}

	snapshots := make([]SnapshotSummary, 0, len(rows))
	for _, row := range rows {
		snapshots = append(snapshots, SnapshotSummary{
			ID:                  row.ID,
			Date:                row.Date,
			OnTimeDeliveryRate:  row.OnTimeDeliveryRate,
			QualityRatingAvg:    row.QualityRatingAvg,
			AverageResponseTime: row.AverageResponseTime,
			FulfillmentRate:     row.FulfillmentRate,
		})
	}

	return &SnapshotList{Snapshots: snapshots, NextCursor: nextCursor}, nil
}
