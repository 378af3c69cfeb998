package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vendorhub/vendorhub-backend/internal/vendors"
	"github.com/vendorhub/vendorhub-backend/pkg/config"
	dbpkg "github.com/vendorhub/vendorhub-backend/pkg/db"
	"github.com/vendorhub/vendorhub-backend/pkg/db/models"
	"github.com/vendorhub/vendorhub-backend/pkg/enums"
	pkgerrors "github.com/vendorhub/vendorhub-backend/pkg/errors"
	"github.com/vendorhub/vendorhub-backend/pkg/locks"
	"github.com/vendorhub/vendorhub-backend/pkg/metrics"
	"github.com/vendorhub/vendorhub-backend/pkg/outbox"
	"github.com/vendorhub/vendorhub-backend/pkg/outbox/payloads"
	"github.com/vendorhub/vendorhub-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// SnapshotRecorder captures vendor metrics inside the completion transaction.
type SnapshotRecorder interface {
	Record(ctx context.Context, tx *gorm.DB, vendorID uuid.UUID, at time.Time) (*models.VendorPerformanceSnapshot, error)
}

// Service defines the purchase order lifecycle operations.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*models.PurchaseOrder, error)
	Update(ctx context.Context, input UpdateOrderInput) (*models.PurchaseOrder, error)
	Acknowledge(ctx context.Context, input AcknowledgeInput) (*models.PurchaseOrder, error)
	Delete(ctx context.Context, input DeleteInput) error
	List(ctx context.Context, viewer Viewer, params pagination.Params, filters OrderFilters) (*OrderList, error)
	Detail(ctx context.Context, viewer Viewer, orderID uuid.UUID) (*models.PurchaseOrder, error)
}

type service struct {
	repo     Repository
	vendors  vendors.Repository
	tx       txRunner
	outbox   outboxPublisher
	recorder SnapshotRecorder
	locker   locks.OrderLocker
	metrics  *metrics.OrderMetrics
	cfg      config.OrdersConfig
}

// NewService builds the order service with the required dependencies. Metrics
// may be nil; every recorder call goes through the nil-safe wrapper.
func NewService(
	repo Repository,
	vendorRepo vendors.Repository,
	tx txRunner,
	outboxSvc outboxPublisher,
	recorder SnapshotRecorder,
	locker locks.OrderLocker,
	orderMetrics *metrics.OrderMetrics,
	cfg config.OrdersConfig,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if vendorRepo == nil {
		return nil, fmt.Errorf("vendor repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("snapshot recorder required")
	}
	if locker == nil {
		return nil, fmt.Errorf("order locker required")
	}
	if cfg.NumberLength <= 0 || cfg.NumberMaxAttempts <= 0 {
		return nil, fmt.Errorf("order number settings must be positive")
	}
	return &service{
		repo:     repo,
		vendors:  vendorRepo,
		tx:       tx,
		outbox:   outboxSvc,
		recorder: recorder,
		locker:   locker,
		metrics:  orderMetrics,
		cfg:      cfg,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateOrderInput) (*models.PurchaseOrder, error) {
	if input.BuyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.DeliveryDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery_date is required")
	}
	items, totalQuantity, err := normalizeItems(input.Items)
	if err != nil {
		return nil, err
	}
	rating := 0.0
	if input.QualityRating != nil {
		if err := validateRating(*input.QualityRating); err != nil {
			return nil, err
		}
		rating = *input.QualityRating
	}

	var created *models.PurchaseOrder
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		var vendorID *uuid.UUID
		var issueDate *time.Time
		if input.VendorID != nil {
			vendor, err := s.vendors.WithTx(tx).FindByID(ctx, *input.VendorID)
			if err != nil {
				if err == gorm.ErrRecordNotFound {
					return pkgerrors.New(pkgerrors.CodeNotFound, "vendor not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve vendor")
			}
			id := vendor.ID
			now := time.Now().UTC()
			vendorID = &id
			issueDate = &now
		}

		number, err := allocateOrderNumber(ctx, repo, s.cfg.NumberLength, s.cfg.NumberMaxAttempts)
		if err != nil {
			return err
		}

		order := &models.PurchaseOrder{
			ID:            uuid.New(),
			OrderNumber:   number,
			BuyerID:       input.BuyerID,
			VendorID:      vendorID,
			Quantity:      totalQuantity,
			Status:        enums.OrderStatusPending,
			QualityRating: rating,
			DeliveryDate:  input.DeliveryDate,
			IssueDate:     issueDate,
		}
		if _, err := repo.CreateOrder(ctx, order); err != nil {
			if dbpkg.IsUniqueViolation(err, "ux_purchase_orders_order_number") {
				return pkgerrors.New(pkgerrors.CodeConflict, "order number collision")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert order")
		}

		if err := repo.CreateItems(ctx, buildItemRows(order.ID, items)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert order items")
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregatePurchaseOrder,
			AggregateID:   order.ID,
			Actor:         buildActor(input.BuyerID, nil, enums.ActorRoleBuyer),
			Data: payloads.OrderCreatedEvent{
				OrderID:     order.ID,
				OrderNumber: order.OrderNumber,
				BuyerID:     order.BuyerID,
				VendorID:    order.VendorID,
				Quantity:    order.Quantity,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return err
		}

		loaded, err := repo.FindOrder(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
		}
		created = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncTransition(enums.OrderStatusPending.String())
	return created, nil
}

func (s *service) Update(ctx context.Context, input UpdateOrderInput) (*models.PurchaseOrder, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.QualityRating != nil {
		if err := validateRating(*input.QualityRating); err != nil {
			return nil, err
		}
	}
	if input.Status != nil && !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid status %q", *input.Status))
	}

	var normalizedItems []ItemInput
	var totalQuantity int
	if input.Items != nil {
		var err error
		normalizedItems, totalQuantity, err = normalizeReplacementItems(*input.Items)
		if err != nil {
			return nil, err
		}
	}

	var updated *models.PurchaseOrder
	var completed, cancelled bool

	err := s.withOrderLock(ctx, "update", input.OrderID, func() error {
		return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)

			order, err := repo.FindOrder(ctx, input.OrderID)
			if err != nil {
				if err == gorm.ErrRecordNotFound {
					return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
			}
			if order.BuyerID != input.ActorUserID {
				return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to buyer")
			}

			updates := map[string]any{}

			if input.VendorID != nil {
				vendor, err := s.vendors.WithTx(tx).FindByID(ctx, *input.VendorID)
				if err != nil {
					if err == gorm.ErrRecordNotFound {
						return pkgerrors.New(pkgerrors.CodeNotFound, "vendor not found")
					}
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve vendor")
				}
				updates["vendor_id"] = vendor.ID
				updates["issue_date"] = time.Now().UTC()
			}
			if input.DeliveryDate != nil {
				if input.DeliveryDate.IsZero() {
					return pkgerrors.New(pkgerrors.CodeValidation, "delivery_date must be a valid timestamp")
				}
				updates["delivery_date"] = *input.DeliveryDate
			}
			if input.QualityRating != nil {
				updates["quality_rating"] = *input.QualityRating
			}

			if input.Items != nil {
				if err := repo.DeleteItemsByOrder(ctx, order.ID); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear order items")
				}
				if err := repo.CreateItems(ctx, buildItemRows(order.ID, normalizedItems)); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace order items")
				}
				updates["quantity"] = totalQuantity
			}

			previousStatus := order.Status
			targetStatus := previousStatus
			if input.Status != nil {
				targetStatus = *input.Status
				if targetStatus != previousStatus {
					if previousStatus == enums.OrderStatusCancelled {
						return pkgerrors.New(pkgerrors.CodeStateConflict, "cancelled orders cannot change status")
					}
					updates["status"] = targetStatus
				}
			}

			if len(updates) > 0 {
				if err := repo.UpdateOrder(ctx, order.ID, updates); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order")
				}
			}

			loaded, err := repo.FindOrder(ctx, order.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
			}

			now := time.Now().UTC()
			actor := buildActor(input.ActorUserID, nil, enums.ActorRoleBuyer)

			if targetStatus == enums.OrderStatusCompleted && previousStatus != enums.OrderStatusCompleted {
				completed = true
				if loaded.VendorID != nil {
					snapshot, err := s.recorder.Record(ctx, tx, *loaded.VendorID, now)
					if err != nil {
						return err
					}
					snapshotEvent := outbox.DomainEvent{
						EventType:     enums.EventSnapshotRecorded,
						AggregateType: enums.AggregateVendor,
						AggregateID:   *loaded.VendorID,
						Actor:         actor,
						Data: payloads.PerformanceSnapshotRecordedEvent{
							SnapshotID:          snapshot.ID,
							VendorID:            snapshot.VendorID,
							Date:                snapshot.Date,
							OnTimeDeliveryRate:  snapshot.OnTimeDeliveryRate,
							QualityRatingAvg:    snapshot.QualityRatingAvg,
							AverageResponseTime: snapshot.AverageResponseTime,
							FulfillmentRate:     snapshot.FulfillmentRate,
						},
					}
					if err := s.outbox.Emit(ctx, tx, snapshotEvent); err != nil {
						return err
					}
					s.metrics.IncSnapshot()
				}

				completedEvent := outbox.DomainEvent{
					EventType:     enums.EventOrderCompleted,
					AggregateType: enums.AggregatePurchaseOrder,
					AggregateID:   loaded.ID,
					Actor:         actor,
					Data: payloads.OrderCompletedEvent{
						OrderID:       loaded.ID,
						OrderNumber:   loaded.OrderNumber,
						VendorID:      loaded.VendorID,
						QualityRating: loaded.QualityRating,
						CompletedAt:   now,
					},
				}
				if err := s.outbox.Emit(ctx, tx, completedEvent); err != nil {
					return err
				}
			}

			if targetStatus == enums.OrderStatusCancelled && previousStatus != enums.OrderStatusCancelled {
				cancelled = true
				cancelledEvent := outbox.DomainEvent{
					EventType:     enums.EventOrderCancelled,
					AggregateType: enums.AggregatePurchaseOrder,
					AggregateID:   loaded.ID,
					Actor:         actor,
					Data: payloads.OrderCancelledEvent{
						OrderID:     loaded.ID,
						OrderNumber: loaded.OrderNumber,
						VendorID:    loaded.VendorID,
						CancelledAt: now,
					},
				}
				if err := s.outbox.Emit(ctx, tx, cancelledEvent); err != nil {
					return err
				}
			}

			updated = loaded
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	if completed {
		s.metrics.IncTransition(enums.OrderStatusCompleted.String())
	}
	if cancelled {
		s.metrics.IncTransition(enums.OrderStatusCancelled.String())
	}
	return updated, nil
}

func (s *service) Acknowledge(ctx context.Context, input AcknowledgeInput) (*models.PurchaseOrder, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	var acknowledged *models.PurchaseOrder
	err := s.withOrderLock(ctx, "acknowledge", input.OrderID, func() error {
		return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)

			order, err := repo.FindOrder(ctx, input.OrderID)
			if err != nil {
				if err == gorm.ErrRecordNotFound {
					return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
			}
			if order.Vendor == nil || order.Vendor.UserID != input.ActorUserID {
				return pkgerrors.New(pkgerrors.CodeForbidden, "order is not assigned to caller's vendor profile")
			}
			if order.Status != enums.OrderStatusCompleted {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "cannot acknowledge order with status other than completed")
			}
			if order.AcknowledgmentDate != nil {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "order already acknowledged")
			}

			now := time.Now().UTC()
			if err := repo.UpdateOrder(ctx, order.ID, map[string]any{"acknowledgment_date": now}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "stamp acknowledgment")
			}

			vendorID := order.Vendor.ID
			event := outbox.DomainEvent{
				EventType:     enums.EventOrderAcknowledged,
				AggregateType: enums.AggregatePurchaseOrder,
				AggregateID:   order.ID,
				Actor:         buildActor(input.ActorUserID, &vendorID, enums.ActorRoleVendor),
				Data: payloads.OrderAcknowledgedEvent{
					OrderID:        order.ID,
					OrderNumber:    order.OrderNumber,
					VendorID:       vendorID,
					AcknowledgedAt: now,
				},
			}
			if err := s.outbox.Emit(ctx, tx, event); err != nil {
				return err
			}

			loaded, err := repo.FindOrder(ctx, order.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
			}
			acknowledged = loaded
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return acknowledged, nil
}

func (s *service) Delete(ctx context.Context, input DeleteInput) error {
	if input.OrderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.ActorUserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	return s.withOrderLock(ctx, "delete", input.OrderID, func() error {
		return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)

			order, err := repo.FindOrder(ctx, input.OrderID)
			if err != nil {
				if err == gorm.ErrRecordNotFound {
					return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
			}
			if order.BuyerID != input.ActorUserID {
				return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to buyer")
			}

			if err := repo.DeleteOrder(ctx, order.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order")
			}
			return nil
		})
	})
}

func (s *service) List(ctx context.Context, viewer Viewer, params pagination.Params, filters OrderFilters) (*OrderList, error) {
	scope, err := scopeForViewer(viewer)
	if err != nil {
		return nil, err
	}
	list, err := s.repo.ListOrders(ctx, scope, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return list, nil
}

func (s *service) Detail(ctx context.Context, viewer Viewer, orderID uuid.UUID) (*models.PurchaseOrder, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if !viewerCanSee(viewer, order) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order is not visible to caller")
	}
	return order, nil
}

func (s *service) withOrderLock(ctx context.Context, operation string, orderID uuid.UUID, fn func() error) error {
	release, err := s.locker.AcquireOrder(ctx, orderID.String(), s.cfg.LockTTL)
	if err != nil {
		if errors.Is(err, locks.ErrNotAcquired) {
			return pkgerrors.New(pkgerrors.CodeConflict, "order is being modified by another request")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire order lock")
	}
	start := time.Now()
	defer func() {
		_ = release(ctx)
		s.metrics.ObserveLockHold(operation, time.Since(start))
	}()
	return fn()
}

func scopeForViewer(viewer Viewer) (ListScope, error) {
	switch viewer.Role {
	case enums.ActorRoleBuyer:
		if viewer.UserID == uuid.Nil {
			return ListScope{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
		}
		id := viewer.UserID
		return ListScope{BuyerID: &id}, nil
	case enums.ActorRoleVendor:
		if viewer.VendorID == nil {
			return ListScope{}, pkgerrors.New(pkgerrors.CodeForbidden, "vendor profile missing")
		}
		return ListScope{VendorID: viewer.VendorID}, nil
	default:
		return ListScope{}, pkgerrors.New(pkgerrors.CodeForbidden, "unknown role")
	}
}

func viewerCanSee(viewer Viewer, order *models.PurchaseOrder) bool {
	switch viewer.Role {
	case enums.ActorRoleBuyer:
		return order.BuyerID == viewer.UserID
	case enums.ActorRoleVendor:
		return viewer.VendorID != nil && order.VendorID != nil && *order.VendorID == *viewer.VendorID
	default:
		return false
	}
}

// normalizeItems validates the creation item set: at least one item, every
// quantity >= 1, duplicates merged by name with the last quantity winning.
func normalizeItems(items []ItemInput) ([]ItemInput, int, error) {
	if len(items) == 0 {
		return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "at least one item is required")
	}
	return normalizeReplacementItems(items)
}

// normalizeReplacementItems applies the same per-item rules but allows an
// empty set, which update uses to clear the items wholesale.
func normalizeReplacementItems(items []ItemInput) ([]ItemInput, int, error) {
	ordered := make([]string, 0, len(items))
	byName := make(map[string]int, len(items))

	for _, item := range items {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "item name is required")
		}
		if item.Quantity < 1 {
			return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %q must have a quantity of at least 1", name))
		}
		if _, seen := byName[name]; !seen {
			ordered = append(ordered, name)
		}
		byName[name] = item.Quantity
	}

	result := make([]ItemInput, 0, len(ordered))
	total := 0
	for _, name := range ordered {
		quantity := byName[name]
		total += quantity
		result = append(result, ItemInput{Name: name, Quantity: quantity})
	}
	return result, total, nil
}

// validateRating enforces the [0.0, 5.0] bounds and one decimal place.
func validateRating(rating float64) error {
	d := decimal.NewFromFloat(rating)
	if d.IsNegative() || d.GreaterThan(decimal.NewFromInt(5)) {
		return pkgerrors.New(pkgerrors.CodeValidation, "quality_rating must be between 0.0 and 5.0")
	}
	if !d.Equal(d.Round(1)) {
		return pkgerrors.New(pkgerrors.CodeValidation, "quality_rating supports one decimal place")
	}
	return nil
}

func buildItemRows(orderID uuid.UUID, items []ItemInput) []models.OrderItem {
	rows := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		rows = append(rows, models.OrderItem{
			ID:       uuid.New(),
			OrderID:  orderID,
			Name:     item.Name,
			Quantity: item.Quantity,
		})
	}
	return rows
}

func buildActor(userID uuid.UUID, vendorID *uuid.UUID, role enums.ActorRole) *outbox.ActorRef {
	return &outbox.ActorRef{
		UserID:   userID,
		VendorID: vendorID,
		Role:     role.String(),
	}
}
