package usage

import (
	"strconv"
	"strings"
	"time"
)

// DateLayout is the UTC calendar-day format used in daily counter keys and
// archived records.
const DateLayout = "2006-01-02"

// ScopeLifetime is the scope segment of an identity's cumulative counter.
const ScopeLifetime = "total"

// Hash field names inside a counter key.
const (
	FieldCount      = "count"
	FieldVolume     = "volume"
	FieldLastUsedAt = "last_used_at"

	subFieldPrefix = "sub:"
	subFieldCount  = ":count"
	subFieldVolume = ":volume"
)

// Day returns t's UTC calendar day in DateLayout.
func Day(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// SubStat is a per-sub-key slice of a counter (per recipient wallet for
// airdrops, per route for API-key usage).
type SubStat struct {
	Count    int64 `json:"count"`
	Lamports int64 `json:"lamports"`
}

// Counter is one (identity, scope) aggregate decoded from a Fast Store
// hash. The zero value is a counter with no recorded usage.
type Counter struct {
	Count      int64              `json:"count"`
	Lamports   int64              `json:"lamports"`
	LastUsedAt time.Time          `json:"last_used_at"`
	Breakdown  map[string]SubStat `json:"breakdown,omitempty"`
}

// SubCountField returns the hash field holding subKey's request count.
func SubCountField(subKey string) string {
	return subFieldPrefix + subKey + subFieldCount
}

// SubVolumeField returns the hash field holding subKey's volume.
func SubVolumeField(subKey string) string {
	return subFieldPrefix + subKey + subFieldVolume
}

// CounterFromHash decodes a Fast Store hash into a Counter. Unparseable
// fields are skipped rather than failing the whole counter; sub-key fields
// are folded into the breakdown map.
func CounterFromHash(fields map[string]string) Counter {
	c := Counter{}
	for field, raw := range fields {
		switch field {
		case FieldCount:
			c.Count, _ = strconv.ParseInt(raw, 10, 64)
		case FieldVolume:
			c.Lamports, _ = strconv.ParseInt(raw, 10, 64)
		case FieldLastUsedAt:
			c.LastUsedAt, _ = time.Parse(time.RFC3339, raw)
		default:
			subKey, isCount, ok := parseSubField(field)
			if !ok {
				continue
			}
			v, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				continue
			}
			if c.Breakdown == nil {
				c.Breakdown = make(map[string]SubStat)
			}
			stat := c.Breakdown[subKey]
			if isCount {
				stat.Count = v
			} else {
				stat.Lamports = v
			}
			c.Breakdown[subKey] = stat
		}
	}
	return c
}

func parseSubField(field string) (subKey string, isCount bool, ok bool) {
	rest, found := strings.CutPrefix(field, subFieldPrefix)
	if !found {
		return "", false, false
	}
	if k, found := strings.CutSuffix(rest, subFieldCount); found {
		return k, true, true
	}
	if k, found := strings.CutSuffix(rest, subFieldVolume); found {
		return k, false, true
	}
	return "", false, false
}

// Stats is the composed usage view served to API consumers: today's and
// the lifetime counters from the Fast Store, plus the active policy.
type Stats struct {
	Today    Counter `json:"today"`
	Lifetime Counter `json:"lifetime"`
	Limits   Policy  `json:"limits"`
}
