package models

import (
	"time"

	"github.com/google/uuid"
)

// VendorPerformanceSnapshot is an append-only record of a vendor's computed
// metrics at the moment an order completed. Rows are never updated or deleted.
type VendorPerformanceSnapshot struct {
	ID                  uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	VendorID            uuid.UUID `gorm:"column:vendor_id;type:uuid;not null;index:ix_vendor_performance_snapshots_vendor_date" json:"vendor_id"`
	Date                time.Time `gorm:"column:date;not null;index:ix_vendor_performance_snapshots_vendor_date" json:"date"`
	OnTimeDeliveryRate  float64   `gorm:"column:on_time_delivery_rate;not null" json:"on_time_delivery_rate"`
	QualityRatingAvg    float64   `gorm:"column:quality_rating_avg;not null" json:"quality_rating_avg"`
	AverageResponseTime float64   `gorm:"column:average_response_time;not null" json:"average_response_time"`
	FulfillmentRate     float64   `gorm:"column:fulfillment_rate;not null" json:"fulfillment_rate"`
	CreatedAt           time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	Vendor *VendorProfile `gorm:"foreignKey:VendorID" json:"vendor,omitempty"`
}
