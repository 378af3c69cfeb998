package performance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vendorhub/vendorhub-backend/internal/vendors"
	"github.com/vendorhub/vendorhub-backend/pkg/db/models"
	"github.com/vendorhub/vendorhub-backend/pkg/enums"
	pkgerrors "github.com/vendorhub/vendorhub-backend/pkg/errors"
	"github.com/vendorhub/vendorhub-backend/pkg/pagination"
)

// Service computes vendor metrics on demand and records write-once snapshots
// when orders complete.
type Service interface {
	Compute(ctx context.Context, vendorID uuid.UUID) (*Report, error)
	Record(ctx context.Context, tx *gorm.DB, vendorID uuid.UUID, at time.Time) (*models.VendorPerformanceSnapshot, error)
	History(ctx context.Context, vendorID uuid.UUID, params pagination.Params) (*SnapshotList, error)
}

type service struct {
	repo             Repository
	vendors          vendors.Repository
	onTimeWindowDays int
}

// NewService builds the performance service with the required dependencies.
func NewService(repo Repository, vendorRepo vendors.Repository, onTimeWindowDays int) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("performance repository required")
	}
	if vendorRepo == nil {
		return nil, fmt.Errorf("vendor repository required")
	}
	if onTimeWindowDays <= 0 {
		return nil, fmt.Errorf("on-time window must be positive")
	}
	return &service{
		repo:             repo,
		vendors:          vendorRepo,
		onTimeWindowDays: onTimeWindowDays,
	}, nil
}

func (s *service) Compute(ctx context.Context, vendorID uuid.UUID) (*Report, error) {
	if vendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor id required")
	}
	if _, err := s.vendors.FindByID(ctx, vendorID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vendor not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vendor")
	}

	orders, err := s.repo.FindVendorOrders(ctx, vendorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vendor orders")
	}

	report := computeMetrics(orders, s.onTimeWindowDays)
	report.VendorID = vendorID
	report.ComputedAt = time.Now().UTC()
	return &report, nil
}

// Record computes the metrics inside the caller's transaction and inserts one
// snapshot row stamped with at. The snapshot commits or rolls back with the
// order state change that triggered it.
func (s *service) Record(ctx context.Context, tx *gorm.DB, vendorID uuid.UUID, at time.Time) (*models.VendorPerformanceSnapshot, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction required")
	}
	if vendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor id required")
	}

	repo := s.repo.WithTx(tx)
	orders, err := repo.FindVendorOrders(ctx, vendorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vendor orders")
	}

	report := computeMetrics(orders, s.onTimeWindowDays)
	snapshot := &models.VendorPerformanceSnapshot{
		VendorID:            vendorID,
		Date:                at,
		OnTimeDeliveryRate:  report.OnTimeDeliveryRate,
		QualityRatingAvg:    report.QualityRatingAvg,
		AverageResponseTime: report.AverageResponseTime,
		FulfillmentRate:     report.FulfillmentRate,
	}
	created, err := repo.CreateSnapshot(ctx, snapshot)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert performance snapshot")
	}
	return created, nil
}

func (s *service) History(ctx context.Context, vendorID uuid.UUID, params pagination.Params) (*SnapshotList, error) {
	if vendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor id required")
	}
	if _, err := s.vendors.FindByID(ctx, vendorID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vendor not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vendor")
	}

	list, err := s.repo.ListSnapshots(ctx, vendorID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list snapshots")
	}
	return list, nil
}

// computeMetrics derives the four metrics from the vendor's full order set.
// Fulfillment keeps the documented completed/total formula even though it
// collapses to 100 once any completed order exists.
func computeMetrics(orders []models.PurchaseOrder, onTimeWindowDays int) Report {
	var report Report

	total := len(orders)
	if total == 0 {
		return report
	}

	window := time.Duration(onTimeWindowDays) * 24 * time.Hour

	completed := 0
	onTime := 0
	ratingSum := decimal.Zero
	responseDays := 0.0
	responseCount := 0

	for _, order := range orders {
		if order.Status != enums.OrderStatusCompleted {
			continue
		}
		completed++

		if !order.DeliveryDate.After(order.OrderDate.Add(window)) {
			onTime++
		}

		ratingSum = ratingSum.Add(decimal.NewFromFloat(order.QualityRating))

		if order.IssueDate != nil && order.AcknowledgmentDate != nil {
			days := truncateToDay(*order.AcknowledgmentDate).Sub(truncateToDay(*order.IssueDate)).Hours() / 24
			responseDays += days
			responseCount++
		}
	}

	if completed > 0 {
		completedDec := decimal.NewFromInt(int64(completed))
		report.OnTimeDeliveryRate = decimal.NewFromInt(int64(onTime * 100)).
			Div(completedDec).
			Round(2).
			InexactFloat64()
		report.QualityRatingAvg = ratingSum.Div(completedDec).Round(2).InexactFloat64()
		report.FulfillmentRate = decimal.NewFromInt(int64(completed * 100)).
			Div(decimal.NewFromInt(int64(total))).
			Round(2).
			InexactFloat64()
	}
	if responseCount > 0 {
		report.AverageResponseTime = responseDays / float64(responseCount)
	}

	return report
}

// truncateToDay drops the time-of-day component, leaving the UTC calendar day.
func truncateToDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
