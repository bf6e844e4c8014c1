package repository

import "time"

// ResourceClass partitions cached data by how fast it goes stale.
type ResourceClass string

const (
	ResourceQuote     ResourceClass = "quote"
	ResourceDaily     ResourceClass = "daily_data"
	ResourceIntraday  ResourceClass = "intraday_data"
	ResourceSentiment ResourceClass = "sentiment"
)

// ttl maps resource classes to their time-to-live. These are tuned policy
// values, not configuration.
var ttl = map[ResourceClass]time.Duration{
	ResourceQuote:     5 * time.Minute,
	ResourceDaily:     60 * time.Minute,
	ResourceIntraday:  15 * time.Minute,
	ResourceSentiment: 30 * time.Minute,
}

// TTLFor returns the time-to-live for a resource class. Unknown classes
// default to one hour.
func TTLFor(class ResourceClass) time.Duration {
	if d, ok := ttl[class]; ok {
		return d
	}
	return time.Hour
}

// IsFresh reports whether data fetched at fetchedAt is still usable at now.
// A zero fetchedAt is never fresh.
func IsFresh(now, fetchedAt time.Time, class ResourceClass) bool {
	if fetchedAt.IsZero() {
		return false
	}
	return now.Before(fetchedAt.Add(TTLFor(class)))
}

// SeriesClass picks the series resource class for an interval: anything at
// hourly granularity or below is intraday.
func SeriesClass(interval string) ResourceClass {
	switch interval {
	case "1m", "5m", "15m", "30m", "1h":
		return ResourceIntraday
	default:
		return ResourceDaily
	}
}

// MaxSeriesGenerations bounds how many generations per
// (index, period, interval) key survive a series write.
const MaxSeriesGenerations = 3
