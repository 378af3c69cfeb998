package performance

import (
	"time"

	"github.com/google/uuid"
)

// Report carries the four metrics computed on demand from a vendor's order
// history.
type Report struct {
	VendorID            uuid.UUID `json:"vendor_id"`
	OnTimeDeliveryRate  float64   `json:"on_time_delivery_rate"`
	QualityRatingAvg    float64   `json:"quality_rating_avg"`
	AverageResponseTime float64   `json:"average_response_time"`
	FulfillmentRate     float64   `json:"fulfillment_rate"`
	ComputedAt          time.Time `json:"computed_at"`
}

// SnapshotSummary is the list representation of one historical snapshot.
type SnapshotSummary struct {
	ID                  uuid.UUID `json:"id"`
	Date                time.Time `json:"date"`
	OnTimeDeliveryRate  float64   `json:"on_time_delivery_rate"`
	QualityRatingAvg    float64   `json:"quality_rating_avg"`
	AverageResponseTime float64   `json:"average_response_time"`
	FulfillmentRate     float64   `json:"fulfillment_rate"`
}

// SnapshotList wraps the paginated snapshots plus the next page cursor.
type SnapshotList struct {
	Snapshots  []SnapshotSummary `json:"snapshots"`
	NextCursor string            `json:"next_cursor,omitempty"`
}
