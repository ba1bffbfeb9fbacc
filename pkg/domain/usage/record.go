package usage

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// BreakdownMap persists a counter's per-sub-key breakdown as a JSONB
// column.
type BreakdownMap map[string]SubStat

func (b BreakdownMap) Value() (driver.Value, error) {
	if len(b) == 0 {
		return nil, nil
	}
	return json.Marshal(b)
}

func (b *BreakdownMap) Scan(value interface{}) error {
	if value == nil {
		*b = nil
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported breakdown column type %T", value)
	}
	return json.Unmarshal(raw, b)
}

// ArchivedUsageRecord is the durable copy of one identity's daily counter,
// written exactly once per (domain, identity, day) by the archival job.
type ArchivedUsageRecord struct {
	ID          uuid.UUID    `json:"id" gorm:"type:uuid;primaryKey"`
	Domain      string       `json:"domain" gorm:"uniqueIndex:idx_usage_archive_day"`
	Identity    string       `json:"identity" gorm:"uniqueIndex:idx_usage_archive_day"`
	UsageDate   string       `json:"usage_date" gorm:"type:date;uniqueIndex:idx_usage_archive_day"`
	TotalCount  int64        `json:"total_count"`
	TotalVolume int64        `json:"total_volume"`
	Breakdown   BreakdownMap `json:"breakdown,omitempty" gorm:"type:jsonb"`
	CreatedAt   time.Time    `json:"created_at"`
}

func (ArchivedUsageRecord) TableName() string {
	return "public.usage_archive"
}

// UsageTotal mirrors an identity's lifetime counter into the durable store.
// The sync job upserts it on a short cadence; rows are keyed on
// (domain, identity) so re-running with unchanged counters is a no-op.
type UsageTotal struct {
	Domain        string    `json:"domain" gorm:"primaryKey"`
	Identity      string    `json:"identity" gorm:"primaryKey"`
	TotalRequests int64     `json:"total_requests"`
	TotalVolume   int64     `json:"total_volume"`
	LastUsedAt    time.Time `json:"last_used_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (UsageTotal) TableName() string {
	return "public.usage_totals"
}

// HistoryReport is the answer to a usage-history query: the archived rows
// in range plus their aggregate sums.
type HistoryReport struct {
	Records     []ArchivedUsageRecord `json:"records"`
	TotalCount  int64                 `json:"total_count"`
	TotalVolume int64                 `json:"total_volume"`
}
