package usecases

import (
	"fmt"
	"math"
	"time"

	"github.com/pagecraft/analytics-api/internal/domain/entities"
	"github.com/pagecraft/analytics-api/internal/domain/repositories"
	"github.com/pagecraft/analytics-api/internal/utils"
)

// cacheTTL is how long memoized aggregates live. Entries go stale exactly at
// the TTL boundary, not at calendar-day boundaries, and new tracked views
// never bust them; up to one hour of staleness is the accepted trade-off.
const cacheTTL = time.Hour

// AggregateCache is the narrow cache surface the usecase needs. It is an
// injected handle, never a package global.
type AggregateCache interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{}, ttl time.Duration)
}

// AnalyticsUseCase serves every derived statistic. Aggregations are
// all-or-nothing: a call either returns a complete result or an error, never
// a partial bundle. Empty ranges yield zeros and empty lists, not errors.
type AnalyticsUseCase interface {
	GetPageStats(page *entities.Page, period string) (entities.PageStats, error)
	GetClientSummary(client *entities.Client, period string) (entities.ClientSummary, error)
	GetRealTimeData(page *entities.Page) entities.RealTimeData
	GetVisitorTimeline(page *entities.Page, period string) ([]entities.DateBucket, entities.TimelineStats, error)
	GetGeographicData(page *entities.Page, period string) (entities.GeographicData, error)
	GetDeviceData(page *entities.Page, period string) (entities.DeviceData, error)
	GetTrafficSources(page *entities.Page, period string) ([]entities.ReferralSource, []entities.UTMSourceViews, error)
	GetTopPages(client *entities.Client, period string, limit int) ([]entities.TopPage, error)
}

type analyticsUseCase struct {
	repo  repositories.AnalyticsRepository
	cache AggregateCache
	store RealtimeStore
	nowFn func() time.Time
}

func NewAnalyticsUseCase(repo repositories.AnalyticsRepository, cache AggregateCache, store RealtimeStore) *analyticsUseCase {
	return &analyticsUseCase{
		repo:  repo,
		cache: cache,
		store: store,
		nowFn: time.Now,
	}
}

// GetPageStats computes the full stats bundle for one page and period,
// memoized for an hour under the literal period token.
func (uc *analyticsUseCase) GetPageStats(page *entities.Page, period string) (entities.PageStats, error) {
	period = utils.ParsePeriod(period)
	cacheKey := fmt.Sprintf("page_stats:%d:%s", page.ID, period)

	if cached, ok := uc.cache.Get(cacheKey); ok {
		if stats, ok := cached.(entities.PageStats); ok {
			return stats, nil
		}
	}

	r := utils.PeriodRange(period, uc.nowFn())

	total, err := uc.repo.TotalViews(page.ID, r)
	if err != nil {
		return entities.PageStats{}, fmt.Errorf("total views: %w", err)
	}

	unique, err := uc.repo.UniqueVisitors(page.ID, r)
	if err != nil {
		return entities.PageStats{}, fmt.Errorf("unique visitors: %w", err)
	}

	returning, err := uc.repo.ReturningVisitors(page.ID, r)
	if err != nil {
		return entities.PageStats{}, fmt.Errorf("returning visitors: %w", err)
	}

	single, err := uc.repo.SingleViewVisitors(page.ID, r)
	if err != nil {
		return entities.PageStats{}, fmt.Errorf("single-view visitors: %w", err)
	}

	avgDuration, err := uc.repo.AvgSessionDuration(page.ID, r)
	if err != nil {
		return entities.PageStats{}, fmt.Errorf("avg session duration: %w", err)
	}

	rawDates, err := uc.repo.ViewsByDate(page.ID, r)
	if err != nil {
		return entities.PageStats{}, fmt.Errorf("views by date: %w", err)
	}

	countries, err := uc.repo.ViewsByCountry(page.ID, r)
	if err != nil {
		return entities.PageStats{}, fmt.Errorf("views by country: %w", err)
	}

	devices, err := uc.repo.ViewsByDevice(page.ID, r)
	if err != nil {
		return entities.PageStats{}, fmt.Errorf("views by device: %w", err)
	}

	browsers, err := uc.repo.ViewsByBrowser(page.ID, r)
	if err != nil {
		return entities.PageStats{}, fmt.Errorf("views by browser: %w", err)
	}

	referrers, err := uc.repo.ReferralSources(page.ID, r)
	if err != nil {
		return entities.PageStats{}, fmt.Errorf("referral sources: %w", err)
	}

	stats := entities.PageStats{
		TotalViews:         total,
		UniqueVisitors:     unique,
		ReturningVisitors:  returning,
		BounceRate:         bounceRate(single, unique),
		AvgSessionDuration: round2(avgDuration),
		ViewsByDate:        fillDateBuckets(rawDates, r),
		ViewsByCountry:     countries,
		ViewsByDevice:      devices,
		ViewsByBrowser:     browsers,
		ReferralSources:    referrers,
	}

	uc.cache.Set(cacheKey, stats, cacheTTL)
	return stats, nil
}

// GetClientSummary rolls the same derivations up over the union of a
// client's pages.
func (uc *analyticsUseCase) GetClientSummary(client *entities.Client, period string) (entities.ClientSummary, error) {
	period = utils.ParsePeriod(period)
	cacheKey := fmt.Sprintf("client_analytics:%d:%s", client.ID, period)

	if cached, ok := uc.cache.Get(cacheKey); ok {
		if summary, ok := cached.(entities.ClientSummary); ok {
			return summary, nil
		}
	}

	r := utils.PeriodRange(period, uc.nowFn())

	total, err := uc.repo.ClientTotalViews(client.ID, r)
	if err != nil {
		return entities.ClientSummary{}, fmt.Errorf("client total views: %w", err)
	}

	unique, err := uc.repo.ClientUniqueVisitors(client.ID, r)
	if err != nil {
		return entities.ClientSummary{}, fmt.Errorf("client unique visitors: %w", err)
	}

	single, err := uc.repo.ClientSingleViewVisitors(client.ID, r)
	if err != nil {
		return entities.ClientSummary{}, fmt.Errorf("client single-view visitors: %w", err)
	}

	topPages, err := uc.repo.ClientTopPages(client.ID, r, 10)
	if err != nil {
		return entities.ClientSummary{}, fmt.Errorf("client top pages: %w", err)
	}

	pagesPerSession, err := uc.repo.ClientAvgPagesPerSession(client.ID, r)
	if err != nil {
		return entities.ClientSummary{}, fmt.Errorf("client pages per session: %w", err)
	}

	sessionDuration, err := uc.repo.ClientAvgSessionDuration(client.ID, r)
	if err != nil {
		return entities.ClientSummary{}, fmt.Errorf("client session duration: %w", err)
	}

	summary := entities.ClientSummary{
		TotalViews:          total,
		TotalUniqueVisitors: unique,
		TopPages:            topPages,
		// Conversion goals are not tracked yet; a constant beats a
		// fabricated number.
		ConversionRate: 0.0,
		EngagementMetrics: entities.EngagementMetrics{
			AvgPagesPerSession: round2(pagesPerSession),
			AvgSessionDuration: round2(sessionDuration),
			BounceRate:         bounceRate(single, unique),
		},
	}

	uc.cache.Set(cacheKey, summary, cacheTTL)
	return summary, nil
}

// GetRealTimeData reads the page's pulse from the ephemeral store. Members
// older than the active-visitor window are filtered at read time; the data
// bypasses the aggregate cache entirely.
func (uc *analyticsUseCase) GetRealTimeData(page *entities.Page) entities.RealTimeData {
	now := uc.nowFn()
	cutoff := now.Add(-activeVisitorWindow).Unix()

	current := make([]entities.CurrentVisitor, 0)
	for _, e := range uc.store.ZRangeWithScores(activeVisitorsKey(page.ID)) {
		if e.Score < cutoff {
			continue
		}
		current = append(current, entities.CurrentVisitor{
			VisitorID:  e.Member,
			LastActive: utils.HumanizeSince(time.Unix(e.Score, 0), now),
		})
	}

	return entities.RealTimeData{
		ActiveVisitors:  int64(len(current)),
		ViewsLastHour:   uc.store.GetCounter(viewsLastHourKey(page.ID)),
		ViewsToday:      uc.store.GetCounter(viewsTodayKey(page.ID)),
		CurrentVisitors: current,
	}
}

func (uc *analyticsUseCase) GetVisitorTimeline(page *entities.Page, period string) ([]entities.DateBucket, entities.TimelineStats, error) {
	r := utils.PeriodRange(utils.ParsePeriod(period), uc.nowFn())

	rawDates, err := uc.repo.ViewsByDate(page.ID, r)
	if err != nil {
		return nil, entities.TimelineStats{}, fmt.Errorf("views by date: %w", err)
	}

	buckets := fillDateBuckets(rawDates, r)
	return buckets, timelineStats(buckets), nil
}

func (uc *analyticsUseCase) GetGeographicData(page *entities.Page, period string) (entities.GeographicData, error) {
	r := utils.PeriodRange(utils.ParsePeriod(period), uc.nowFn())

	countries, err := uc.repo.ViewsByCountry(page.ID, r)
	if err != nil {
		return entities.GeographicData{}, fmt.Errorf("views by country: %w", err)
	}

	cities, err := uc.repo.ViewsByCity(page.ID, r)
	if err != nil {
		return entities.GeographicData{}, fmt.Errorf("views by city: %w", err)
	}

	return entities.GeographicData{
		Countries:      countries,
		Cities:         cities,
		TotalLocations: len(countries) + len(cities),
	}, nil
}

func (uc *analyticsUseCase) GetDeviceData(page *entities.Page, period string) (entities.DeviceData, error) {
	r := utils.PeriodRange(utils.ParsePeriod(period), uc.nowFn())

	devices, err := uc.repo.ViewsByDevice(page.ID, r)
	if err != nil {
		return entities.DeviceData{}, fmt.Errorf("views by device: %w", err)
	}

	browsers, err := uc.repo.ViewsByBrowser(page.ID, r)
	if err != nil {
		return entities.DeviceData{}, fmt.Errorf("views by browser: %w", err)
	}

	platforms, err := uc.repo.ViewsByPlatform(page.ID, r)
	if err != nil {
		return entities.DeviceData{}, fmt.Errorf("views by platform: %w", err)
	}

	return entities.DeviceData{
		Devices:   devices,
		Browsers:  browsers,
		Platforms: platforms,
	}, nil
}

// GetTrafficSources splits acquisition into organic referrers and tagged
// campaign traffic.
func (uc *analyticsUseCase) GetTrafficSources(page *entities.Page, period string) ([]entities.ReferralSource, []entities.UTMSourceViews, error) {
	r := utils.PeriodRange(utils.ParsePeriod(period), uc.nowFn())

	referrers, err := uc.repo.ReferralSources(page.ID, r)
	if err != nil {
		return nil, nil, fmt.Errorf("referral sources: %w", err)
	}

	campaigns, err := uc.repo.UTMSources(page.ID, r)
	if err != nil {
		return nil, nil, fmt.Errorf("utm sources: %w", err)
	}

	return referrers, campaigns, nil
}

func (uc *analyticsUseCase) GetTopPages(client *entities.Client, period string, limit int) ([]entities.TopPage, error) {
	r := utils.PeriodRange(utils.ParsePeriod(period), uc.nowFn())

	topPages, err := uc.repo.ClientTopPages(client.ID, r, limit)
	if err != nil {
		return nil, fmt.Errorf("client top pages: %w", err)
	}

	return topPages, nil
}

// fillDateBuckets turns the sparse per-day rows into a date-range-complete
// bucket list: one bucket per calendar day of the span, zero views where the
// database had no row.
func fillDateBuckets(rows []repositories.DateViews, r utils.DateRange) []entities.DateBucket {
	byDate := make(map[string]int64, len(rows))
	for _, row := range rows {
		byDate[row.Date] = row.Views
	}

	days := utils.GenerateDateRange(r.From, r.To)
	buckets := make([]entities.DateBucket, len(days))
	for i, day := range days {
		buckets[i] = entities.DateBucket{
			Date:          day,
			Views:         byDate[day],
			FormattedDate: utils.FormatDateLabel(day),
		}
	}

	return buckets
}

func timelineStats(buckets []entities.DateBucket) entities.TimelineStats {
	var stats entities.TimelineStats
	for _, b := range buckets {
		stats.TotalViews += b.Views
		if b.Views > stats.PeakViews {
			stats.PeakViews = b.Views
		}
	}
	if len(buckets) > 0 {
		stats.AvgViews = math.Round(float64(stats.TotalViews)/float64(len(buckets))*10) / 10
	}
	return stats
}

// bounceRate is the share of visitors with exactly one event in range,
// rounded to two decimals. Zero unique visitors reads as 0.0, never a
// division by zero.
func bounceRate(single, unique int64) float64 {
	if unique == 0 {
		return 0.0
	}
	return round2(float64(single) / float64(unique) * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
