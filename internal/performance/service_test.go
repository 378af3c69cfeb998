package performance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/vendorhub/vendorhub-backend/internal/vendors"
	"github.com/vendorhub/vendorhub-backend/pkg/db/models"
	"github.com/vendorhub/vendorhub-backend/pkg/enums"
	pkgerrors "github.com/vendorhub/vendorhub-backend/pkg/errors"
	"github.com/vendorhub/vendorhub-backend/pkg/pagination"
)

func setupPerformanceTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	users := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  first_name TEXT NOT NULL DEFAULT '',
  last_name TEXT NOT NULL DEFAULT '',
  role TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	vendorProfiles := `
CREATE TABLE IF NOT EXISTS vendor_profiles (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL UNIQUE,
  vendor_code TEXT NOT NULL UNIQUE,
  business_name TEXT NOT NULL UNIQUE,
  created_at DATETIME,
  updated_at DATETIME
);`
	purchaseOrders := `
CREATE TABLE IF NOT EXISTS purchase_orders (
  id TEXT PRIMARY KEY,
  order_number TEXT NOT NULL UNIQUE,
  buyer_id TEXT NOT NULL,
  vendor_id TEXT,
  quantity INTEGER NOT NULL DEFAULT 0,
  status TEXT NOT NULL DEFAULT 'pending',
  quality_rating REAL NOT NULL DEFAULT 0,
  order_date DATETIME,
  delivery_date DATETIME NOT NULL,
  issue_date DATETIME,
  acknowledgment_date DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	snapshots := `
CREATE TABLE IF NOT EXISTS vendor_performance_snapshots (
  id TEXT PRIMARY KEY,
  vendor_id TEXT NOT NULL,
  date DATETIME NOT NULL,
  on_time_delivery_rate REAL NOT NULL,
  quality_rating_avg REAL NOT NULL,
  average_response_time REAL NOT NULL,
  fulfillment_rate REAL NOT NULL,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(users).Error)
	require.NoError(t, db.Exec(vendorProfiles).Error)
	require.NoError(t, db.Exec(purchaseOrders).Error)
	require.NoError(t, db.Exec(snapshots).Error)
	return db
}

func newVendor(t *testing.T, db *gorm.DB, code string) *models.VendorProfile {
	t.Helper()

	user := &models.User{
		ID:    uuid.New(),
		Email: code + "@vendor.test",
		Role:  enums.ActorRoleVendor,
	}
	require.NoError(t, db.Create(user).Error)

	vendor := &models.VendorProfile{
		ID:           uuid.New(),
		UserID:       user.ID,
		VendorCode:   code,
		BusinessName: code + " Supplies",
	}
	require.NoError(t, db.Create(vendor).Error)
	return vendor
}

func newOrder(t *testing.T, db *gorm.DB, vendorID uuid.UUID, status enums.OrderStatus, orderDate, deliveryDate time.Time, rating float64) *models.PurchaseOrder {
	t.Helper()

	order := &models.PurchaseOrder{
		ID:            uuid.New(),
		OrderNumber:   uuid.NewString()[:12],
		BuyerID:       uuid.New(),
		VendorID:      &vendorID,
		Status:        status,
		QualityRating: rating,
		OrderDate:     orderDate,
		DeliveryDate:  deliveryDate,
		CreatedAt:     orderDate,
		UpdatedAt:     orderDate,
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func newPerformanceService(t *testing.T, db *gorm.DB) Service {
	t.Helper()

	svc, err := NewService(NewRepository(db), vendors.NewRepository(db), 10)
	require.NoError(t, err)
	return svc
}

func TestComputeZeroHistory(t *testing.T) {
	db := setupPerformanceTestDB(t)
	svc := newPerformanceService(t, db)
	vendor := newVendor(t, db, "ACME")

	report, err := svc.Compute(context.Background(), vendor.ID)
	require.NoError(t, err)

	assert.Zero(t, report.OnTimeDeliveryRate)
	assert.Zero(t, report.QualityRatingAvg)
	assert.Zero(t, report.AverageResponseTime)
	assert.Zero(t, report.FulfillmentRate)
}

func TestComputeSingleCompletedOrder(t *testing.T) {
	db := setupPerformanceTestDB(t)
	svc := newPerformanceService(t, db)
	vendor := newVendor(t, db, "ACME")

	now := time.Now().UTC()
	newOrder(t, db, vendor.ID, enums.OrderStatusCompleted, now, now, 4.0)

	report, err := svc.Compute(context.Background(), vendor.ID)
	require.NoError(t, err)

	assert.Equal(t, 100.0, report.OnTimeDeliveryRate)
	assert.Equal(t, 4.0, report.QualityRatingAvg)
	assert.Equal(t, 100.0, report.FulfillmentRate)
	assert.Zero(t, report.AverageResponseTime)
	assert.Equal(t, vendor.ID, report.VendorID)
}

func TestComputeMixedHistory(t *testing.T) {
	db := setupPerformanceTestDB(t)
	svc := newPerformanceService(t, db)
	vendor := newVendor(t, db, "ACME")

	now := time.Now().UTC()
	// On time: delivered within ten days of placement.
	newOrder(t, db, vendor.ID, enums.OrderStatusCompleted, now.Add(-20*24*time.Hour), now.Add(-15*24*time.Hour), 5.0)
	// Late: delivery lands outside the window.
	newOrder(t, db, vendor.ID, enums.OrderStatusCompleted, now.Add(-30*24*time.Hour), now.Add(-15*24*time.Hour), 3.0)
	// Pending and cancelled orders only dilute the fulfillment denominator.
	newOrder(t, db, vendor.ID, enums.OrderStatusPending, now, now.Add(24*time.Hour), 0)
	newOrder(t, db, vendor.ID, enums.OrderStatusCancelled, now, now.Add(24*time.Hour), 0)

	report, err := svc.Compute(context.Background(), vendor.ID)
	require.NoError(t, err)

	assert.Equal(t, 50.0, report.OnTimeDeliveryRate)
	assert.Equal(t, 4.0, report.QualityRatingAvg)
	assert.Equal(t, 50.0, report.FulfillmentRate)
}

func TestComputeResponseTimeIsDayTruncated(t *testing.T) {
	db := setupPerformanceTestDB(t)
	svc := newPerformanceService(t, db)
	vendor := newVendor(t, db, "ACME")

	now := time.Now().UTC()
	order := newOrder(t, db, vendor.ID, enums.OrderStatusCompleted, now, now, 4.0)

	// 23:59 on day one to 00:01 two calendar days later counts as 2 days.
	issue := time.Date(2026, 1, 1, 23, 59, 0, 0, time.UTC)
	ack := time.Date(2026, 1, 3, 0, 1, 0, 0, time.UTC)
	require.NoError(t, db.Model(&models.PurchaseOrder{}).
		Where("id = ?", order.ID).
		Updates(map[string]any{"issue_date": issue, "acknowledgment_date": ack}).Error)

	report, err := svc.Compute(context.Background(), vendor.ID)
	require.NoError(t, err)
	assert.Equal(t, 2.0, report.AverageResponseTime)
}

func TestComputeUnknownVendor(t *testing.T) {
	db := setupPerformanceTestDB(t)
	svc := newPerformanceService(t, db)

	_, err := svc.Compute(context.Background(), uuid.New())
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
}

func TestRecordInsertsOneSnapshot(t *testing.T) {
	db := setupPerformanceTestDB(t)
	svc := newPerformanceService(t, db)
	vendor := newVendor(t, db, "ACME")

	now := time.Now().UTC()
	newOrder(t, db, vendor.ID, enums.OrderStatusCompleted, now, now, 4.0)

	var recorded *models.VendorPerformanceSnapshot
	err := db.Transaction(func(tx *gorm.DB) error {
		var recErr error
		recorded, recErr = svc.Record(context.Background(), tx, vendor.ID, now)
		return recErr
	})
	require.NoError(t, err)
	require.NotNil(t, recorded)
	assert.Equal(t, 100.0, recorded.OnTimeDeliveryRate)
	assert.Equal(t, 4.0, recorded.QualityRatingAvg)

	var count int64
	require.NoError(t, db.Model(&models.VendorPerformanceSnapshot{}).
		Where("vendor_id = ?", vendor.ID).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRecordAccumulatesSnapshotHistory(t *testing.T) {
	db := setupPerformanceTestDB(t)
	svc := newPerformanceService(t, db)
	vendor := newVendor(t, db, "ACME")

	base := time.Now().UTC().Add(-5 * time.Hour)
	for i := 0; i < 5; i++ {
		at := base.Add(time.Duration(i) * time.Hour)
		newOrder(t, db, vendor.ID, enums.OrderStatusCompleted, at, at, 4.0)

		err := db.Transaction(func(tx *gorm.DB) error {
			_, recErr := svc.Record(context.Background(), tx, vendor.ID, at)
			return recErr
		})
		require.NoError(t, err)
	}

	var snapshots []models.VendorPerformanceSnapshot
	require.NoError(t, db.
		Where("vendor_id = ?", vendor.ID).
		Order("date ASC").
		Find(&snapshots).Error)
	require.Len(t, snapshots, 5)
	for i := 1; i < len(snapshots); i++ {
		assert.False(t, snapshots[i].Date.Before(snapshots[i-1].Date))
	}
}

func TestRecordRollsBackWithTransaction(t *testing.T) {
	db := setupPerformanceTestDB(t)
	svc := newPerformanceService(t, db)
	vendor := newVendor(t, db, "ACME")

	now := time.Now().UTC()
	newOrder(t, db, vendor.ID, enums.OrderStatusCompleted, now, now, 4.0)

	err := db.Transaction(func(tx *gorm.DB) error {
		if _, recErr := svc.Record(context.Background(), tx, vendor.ID, now); recErr != nil {
			return recErr
		}
		return errors.New("boom")
	})
	require.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&models.VendorPerformanceSnapshot{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestHistoryNewestFirstWithCursor(t *testing.T) {
	db := setupPerformanceTestDB(t)
	svc := newPerformanceService(t, db)
	vendor := newVendor(t, db, "ACME")

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		snapshot := &models.VendorPerformanceSnapshot{
			ID:                 uuid.New(),
			VendorID:           vendor.ID,
			Date:               base.Add(time.Duration(i) * time.Minute),
			OnTimeDeliveryRate: float64(i),
			CreatedAt:          base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, db.Create(snapshot).Error)
	}

	first, err := svc.History(context.Background(), vendor.ID, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first.Snapshots, 2)
	assert.Equal(t, 2.0, first.Snapshots[0].OnTimeDeliveryRate)
	assert.Equal(t, 1.0, first.Snapshots[1].OnTimeDeliveryRate)
	require.NotEmpty(t, first.NextCursor)

	second, err := svc.History(context.Background(), vendor.ID, pagination.Params{Limit: 2, Cursor: first.NextCursor})
	require.NoError(t, err)
	require.Len(t, second.Snapshots, 1)
	assert.Equal(t, 0.0, second.Snapshots[0].OnTimeDeliveryRate)
	assert.Empty(t, second.NextCursor)
}
