package payloads

import (
	"time"

	"github.com/google/uuid"
)

// OrderCreatedEvent signals a newly placed purchase order.
type OrderCreatedEvent struct {
	OrderID     uuid.UUID  `json:"order_id"`
	OrderNumber string     `json:"order_number"`
	BuyerID     uuid.UUID  `json:"buyer_id"`
	VendorID    *uuid.UUID `json:"vendor_id,omitempty"`
	Quantity    int        `json:"quantity"`
}

// OrderCompletedEvent is emitted when an order transitions into completed.
type OrderCompletedEvent struct {
	OrderID       uuid.UUID  `json:"order_id"`
	OrderNumber   string     `json:"order_number"`
	VendorID      *uuid.UUID `json:"vendor_id,omitempty"`
	QualityRating float64    `json:"quality_rating"`
	CompletedAt   time.Time  `json:"completed_at"`
}

// OrderCancelledEvent is emitted when an order transitions into cancelled.
type OrderCancelledEvent struct {
	OrderID     uuid.UUID  `json:"order_id"`
	OrderNumber string     `json:"order_number"`
	VendorID    *uuid.UUID `json:"vendor_id,omitempty"`
	CancelledAt time.Time  `json:"cancelled_at"`
}

// OrderAcknowledgedEvent reports that a vendor acknowledged a completed order.
type OrderAcknowledgedEvent struct {
	OrderID        uuid.UUID `json:"order_id"`
	OrderNumber    string    `json:"order_number"`
	VendorID       uuid.UUID `json:"vendor_id"`
	AcknowledgedAt time.Time `json:"acknowledged_at"`
}

// PerformanceSnapshotRecordedEvent surfaces the metrics captured at completion time.
type PerformanceSnapshotRecordedEvent struct {
	SnapshotID          uuid.UUID `json:"snapshot_id"`
	VendorID            uuid.UUID `json:"vendor_id"`
	Date                time.Time `json:"date"`
	OnTimeDeliveryRate  float64   `json:"on_time_delivery_rate"`
	QualityRatingAvg    float64   `json:"quality_rating_avg"`
	AverageResponseTime float64   `json:"average_response_time"`
	FulfillmentRate     float64   `json:"fulfillment_rate"`
}
