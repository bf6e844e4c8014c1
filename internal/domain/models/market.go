package models

import "time"

// Index describes one supported market index from the registry.
type Index struct {
	ID      string `json:"id"`
	Symbol  string `json:"symbol"`
	Name    string `json:"name"`
	Country string `json:"country"`
}

// TimeSeriesPoint is one bar of a price series, daily or intraday
// depending on the requested interval.
type TimeSeriesPoint struct {
	Date          time.Time `json:"date"`
	Open          float64   `json:"open"`
	High          float64   `json:"high"`
	Low           float64   `json:"low"`
	Close         float64   `json:"close"`
	Volume        int64     `json:"volume"`
	ChangePercent float64   `json:"change_percent"`
}

// Quote is the latest snapshot for an index. Exactly one live row per
// index; a write replaces, never appends.
type Quote struct {
	IndexID          string    `json:"index_id"`
	Symbol           string    `json:"symbol"`
	Price            float64   `json:"price"`
	PreviousClose    float64   `json:"previous_close"`
	Change           float64   `json:"change"`
	ChangePercent    float64   `json:"change_percent"`
	Volume           int64     `json:"volume"`
	DayHigh          float64   `json:"day_high"`
	DayLow           float64   `json:"day_low"`
	FiftyTwoWeekHigh float64   `json:"fifty_two_week_high"`
	FiftyTwoWeekLow  float64   `json:"fifty_two_week_low"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// IndexSummary is the detailed single-index view: registry metadata,
// the live quote and moving averages derived from the daily series.
// The averages are zero when not enough daily history is cached.
type IndexSummary struct {
	Index
	CurrentPrice     float64   `json:"current_price"`
	PreviousClose    float64   `json:"previous_close"`
	Change           float64   `json:"change"`
	ChangePercent    float64   `json:"change_percent"`
	Volume           int64     `json:"volume"`
	DayHigh          float64   `json:"day_high"`
	DayLow           float64   `json:"day_low"`
	FiftyTwoWeekHigh float64   `json:"fifty_two_week_high"`
	FiftyTwoWeekLow  float64   `json:"fifty_two_week_low"`
	FiftyDayAvg      float64   `json:"fifty_day_average"`
	TwoHundredDayAvg float64   `json:"two_hundred_day_average"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Article is a raw news item from the news source.
type Article struct {
	Title       string    `json:"title"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
	URL         string    `json:"url"`
}
