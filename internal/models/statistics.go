package models

import (
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"
)

// OtherBucket aggregates locality/neighborhood values that are not a
// tenant-configured dimension value. Type/state groupings never get
// one: every type and state is itself enumerable.
const OtherBucket = "Otras"

// Bucket is one grouping dimension value with its share of the total.
// Percentage is the raw division, not rounded.
type Bucket struct {
	Label      string  `json:"label"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

// StatisticsFilter is the time/filter window of an aggregation.
type StatisticsFilter struct {
	From        *time.Time
	To          *time.Time
	AlertTypeID *uint
}

// AlertStatistics is the operator-facing aggregate over a tenant set.
type AlertStatistics struct {
	Total          int64    `json:"total"`
	ByType         []Bucket `json:"totalByType"`
	ByState        []Bucket `json:"totalByState"`
	ByLocality     []Bucket `json:"totalByLocality"`
	ByNeighborhood []Bucket `json:"totalByNeighborhood"`
}

// EventStatistics shares the bucket algorithm with the scheduling
// subsystem's events.
type EventStatistics struct {
	Total   int64    `json:"total"`
	ByType  []Bucket `json:"totalByType"`
	ByState []Bucket `json:"totalByState"`
}

// buildBuckets turns raw counts into sorted percentage buckets:
// descending count, label ascending on ties so output is stable.
func buildBuckets(counts map[string]int64, total int64) []Bucket {
	buckets := make([]Bucket, 0, len(counts))
	for label, count := range counts {
		buckets = append(buckets, Bucket{
			Label:      label,
			Count:      count,
			Percentage: float64(count) / float64(total) * 100,
		})
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Count != buckets[j].Count {
			return buckets[i].Count > buckets[j].Count
		}
		return buckets[i].Label < buckets[j].Label
	})
	return buckets
}

// matchNamed maps a resolved value onto the configured dimension names
// (case-insensitive); everything else lands in the "Otras" bucket.
func matchNamed(value string, named []string) string {
	for _, name := range named {
		if strings.EqualFold(value, name) {
			return name
		}
	}
	return OtherBucket
}

// ComputeAlertStatistics aggregates alerts of the given customers over
// the filter window. customerIDs must already be authorization-checked
// by the caller. Read-only; tolerates concurrent creation.
func ComputeAlertStatistics(db *gorm.DB, customerIDs []uint, filter StatisticsFilter) (*AlertStatistics, error) {
	stats := &AlertStatistics{
		ByType:         []Bucket{},
		ByState:        []Bucket{},
		ByLocality:     []Bucket{},
		ByNeighborhood: []Bucket{},
	}
	if len(customerIDs) == 0 {
		return stats, nil
	}

	query := db.Preload("AlertType").Preload("AlertState").
		Where("customer_id IN ?", customerIDs)
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at < ?", *filter.To)
	}
	if filter.AlertTypeID != nil {
		query = query.Where("alert_type_id = ?", *filter.AlertTypeID)
	}

	var alerts []Alert
	if err := query.Find(&alerts).Error; err != nil {
		return nil, err
	}
	stats.Total = int64(len(alerts))
	if stats.Total == 0 {
		return stats, nil
	}

	locations, err := LocationsOf(db, customerIDs)
	if err != nil {
		return nil, err
	}
	var localities, neighborhoods []string
	for _, loc := range locations {
		switch loc.Type {
		case LocationTypeLocality:
			localities = append(localities, loc.Name)
		case LocationTypeNeighborhood:
			neighborhoods = append(neighborhoods, loc.Name)
		}
	}

	byType := map[string]int64{}
	byState := map[string]int64{}
	byLocality := map[string]int64{}
	byNeighborhood := map[string]int64{}
	for _, alert := range alerts {
		if alert.AlertType != nil {
			byType[alert.AlertType.Type]++
		}
		if alert.AlertState != nil {
			byState[alert.AlertState.Name]++
		}
		byLocality[matchNamed(alert.City, localities)]++
		byNeighborhood[matchNamed(alert.District, neighborhoods)]++
	}

	stats.ByType = buildBuckets(byType, stats.Total)
	stats.ByState = buildBuckets(byState, stats.Total)
	stats.ByLocality = buildBuckets(byLocality, stats.Total)
	stats.ByNeighborhood = buildBuckets(byNeighborhood, stats.Total)
	return stats, nil
}

// ComputeEventStatistics runs the same grouping over scheduled events.
func ComputeEventStatistics(db *gorm.DB, customerIDs []uint, filter StatisticsFilter) (*EventStatistics, error) {
	stats := &EventStatistics{ByType: []Bucket{}, ByState: []Bucket{}}
	if len(customerIDs) == 0 {
		return stats, nil
	}

	query := db.Where("customer_id IN ?", customerIDs)
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at < ?", *filter.To)
	}

	var events []Event
	if err := query.Find(&events).Error; err != nil {
		return nil, err
	}
	stats.Total = int64(len(events))
	if stats.Total == 0 {
		return stats, nil
	}

	byType := map[string]int64{}
	byState := map[string]int64{}
	for _, ev := range events {
		byType[ev.Type]++
		byState[ev.State]++
	}
	stats.ByType = buildBuckets(byType, stats.Total)
	stats.ByState = buildBuckets(byState, stats.Total)
	return stats, nil
}
