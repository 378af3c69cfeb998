package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/vendorhub/vendorhub-backend/pkg/enums"
)

// ItemInput is one line of the order's item set as supplied by the caller.
type ItemInput struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// CreateOrderInput captures the data required to place an order.
type CreateOrderInput struct {
	BuyerID       uuid.UUID
	VendorID      *uuid.UUID
	DeliveryDate  time.Time
	Items         []ItemInput
	QualityRating *float64
}

// UpdateOrderInput carries the partial-update fields. Nil means "leave as is";
// a non-nil empty Items slice clears and replaces the item set.
type UpdateOrderInput struct {
	OrderID       uuid.UUID
	ActorUserID   uuid.UUID
	VendorID      *uuid.UUID
	DeliveryDate  *time.Time
	Items         *[]ItemInput
	Status        *enums.OrderStatus
	QualityRating *float64
}

// AcknowledgeInput identifies the order and the vendor user confirming receipt.
type AcknowledgeInput struct {
	OrderID     uuid.UUID
	ActorUserID uuid.UUID
}

// DeleteInput identifies the order and the buyer requesting removal.
type DeleteInput struct {
	OrderID     uuid.UUID
	ActorUserID uuid.UUID
}

// Viewer is the authenticated principal reading orders.
type Viewer struct {
	UserID   uuid.UUID
	Role     enums.ActorRole
	VendorID *uuid.UUID
}

// OrderFilters describe the inputs supported by the order list.
type OrderFilters struct {
	Status           *enums.OrderStatus
	VendorID         *uuid.UUID
	OrderDateFrom    *time.Time
	OrderDateTo      *time.Time
	DeliveryDateFrom *time.Time
	DeliveryDateTo   *time.Time
}

// OrderItemView is the item representation returned by reads.
type OrderItemView struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// OrderSummary exposes the aggregated fields returned in the list.
type OrderSummary struct {
	ID            uuid.UUID         `json:"id"`
	OrderNumber   string            `json:"order_number"`
	Status        enums.OrderStatus `json:"status"`
	VendorID      *uuid.UUID        `json:"vendor_id,omitempty"`
	Quantity      int               `json:"quantity"`
	QualityRating float64           `json:"quality_rating"`
	OrderDate     time.Time         `json:"order_date"`
	DeliveryDate  time.Time         `json:"delivery_date"`
}

// OrderList wraps the paginated orders plus the next page cursor.
type OrderList struct {
	Orders     []OrderSummary `json:"orders"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// ListScope restricts the list to the viewer's side of the order.
type ListScope struct {
	BuyerID  *uuid.UUID
	VendorID *uuid.UUID
}
