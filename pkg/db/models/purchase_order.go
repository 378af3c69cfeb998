package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/vendorhub/vendorhub-backend/pkg/enums"
)

// PurchaseOrder is the aggregate root of the order lifecycle.
//
// OrderDate is an immutable creation stamp; UpdatedAt tracks writes. The
// on-time delivery metric is measured against OrderDate, so the two are kept
// strictly separate.
type PurchaseOrder struct {
	ID                 uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderNumber        string            `gorm:"column:order_number;type:char(12);not null;uniqueIndex:ux_purchase_orders_order_number" json:"order_number"`
	BuyerID            uuid.UUID         `gorm:"column:buyer_id;type:uuid;not null;index" json:"buyer_id"`
	VendorID           *uuid.UUID        `gorm:"column:vendor_id;type:uuid;index" json:"vendor_id"`
	Quantity           int               `gorm:"column:quantity;not null;default:0" json:"quantity"`
	Status             enums.OrderStatus `gorm:"column:status;type:order_status;not null;default:'pending'" json:"status"`
	QualityRating      float64           `gorm:"column:quality_rating;not null;default:0" json:"quality_rating"`
	OrderDate          time.Time         `gorm:"column:order_date;autoCreateTime" json:"order_date"`
	DeliveryDate       time.Time         `gorm:"column:delivery_date;not null" json:"delivery_date"`
	IssueDate          *time.Time        `gorm:"column:issue_date" json:"issue_date"`
	AcknowledgmentDate *time.Time        `gorm:"column:acknowledgment_date" json:"acknowledgment_date"`
	Buyer              *User             `gorm:"foreignKey:BuyerID" json:"buyer,omitempty"`
	Vendor             *VendorProfile    `gorm:"foreignKey:VendorID" json:"vendor,omitempty"`
	Items              []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt          time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time         `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
