package entities

// Derived aggregate objects. None of these are persisted: they are pure
// functions of the page_views set for an (entity, date range) pair and must
// be reproducible byte for byte from the same event data.

// DateBucket is one calendar day of the timeline. The bucket list is always
// date-range complete: days without views appear with Views = 0.
type DateBucket struct {
	Date          string `json:"date"`
	Views         int64  `json:"views"`
	FormattedDate string `json:"formatted_date"`
}

type CountryViews struct {
	Country string `json:"country"`
	Views   int64  `json:"views"`
}

type CityViews struct {
	City    string `json:"city"`
	Country string `json:"country"`
	Views   int64  `json:"views"`
}

type DeviceViews struct {
	DeviceType string `json:"device_type"`
	Views      int64  `json:"views"`
}

type BrowserViews struct {
	Browser string `json:"browser"`
	Views   int64  `json:"views"`
}

type PlatformViews struct {
	Platform string `json:"platform"`
	Views    int64  `json:"views"`
}

type ReferralSource struct {
	Referrer string `json:"referrer"`
	Visits   int64  `json:"visits"`
}

type UTMSourceViews struct {
	UtmSource   string `json:"utm_source"`
	UtmMedium   string `json:"utm_medium"`
	UtmCampaign string `json:"utm_campaign"`
	Visits      int64  `json:"visits"`
}

// PageStats is the full per-page stats bundle for one period.
type PageStats struct {
	TotalViews         int64            `json:"total_views"`
	UniqueVisitors     int64            `json:"unique_visitors"`
	ReturningVisitors  int64            `json:"returning_visitors"`
	BounceRate         float64          `json:"bounce_rate"`
	AvgSessionDuration float64          `json:"avg_session_duration"`
	ViewsByDate        []DateBucket     `json:"views_by_date"`
	ViewsByCountry     []CountryViews   `json:"views_by_country"`
	ViewsByDevice      []DeviceViews    `json:"views_by_device"`
	ViewsByBrowser     []BrowserViews   `json:"views_by_browser"`
	ReferralSources    []ReferralSource `json:"referral_sources"`
}

// TimelineStats summarizes a bucket list for the timeline endpoint.
type TimelineStats struct {
	TotalViews int64   `json:"total_views"`
	PeakViews  int64   `json:"peak_views"`
	AvgViews   float64 `json:"avg_views"`
}

type GeographicData struct {
	Countries      []CountryViews `json:"countries"`
	Cities         []CityViews    `json:"cities"`
	TotalLocations int            `json:"total_locations"`
}

type DeviceData struct {
	Devices   []DeviceViews   `json:"devices"`
	Browsers  []BrowserViews  `json:"browsers"`
	Platforms []PlatformViews `json:"platforms"`
}

// TopPage is one entry of the client-level page ranking. Pages with zero
// views in the period still appear (left join semantics).
type TopPage struct {
	ID    uint64 `json:"id"`
	Title string `json:"title"`
	Slug  string `json:"slug"`
	Views int64  `json:"views"`
}

type EngagementMetrics struct {
	AvgPagesPerSession float64 `json:"avg_pages_per_session"`
	AvgSessionDuration float64 `json:"avg_session_duration"`
	BounceRate         float64 `json:"bounce_rate"`
}

// ClientSummary is the client-wide rollup across all of the client's pages.
// ConversionRate is a declared stub: there is no conversion-goal source in
// scope yet, so it is always 0.0 rather than a fabricated figure.
type ClientSummary struct {
	TotalViews          int64             `json:"total_views"`
	TotalUniqueVisitors int64             `json:"total_unique_visitors"`
	TopPages            []TopPage         `json:"top_pages"`
	ConversionRate      float64           `json:"conversion_rate"`
	EngagementMetrics   EngagementMetrics `json:"engagement_metrics"`
}
