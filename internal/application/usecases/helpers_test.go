package usecases

import (
	"context"
	"time"

	"github.com/pagecraft/analytics-api/internal/domain/entities"
	"github.com/pagecraft/analytics-api/internal/domain/repositories"
	"github.com/pagecraft/analytics-api/internal/infrastructure/geoip"
	"github.com/pagecraft/analytics-api/internal/infrastructure/realtime"
	"github.com/pagecraft/analytics-api/internal/utils"
)

// fakeTrackingRepo records the writes the ingestion pipeline performs.
type fakeTrackingRepo struct {
	views     []*entities.PageView
	upserts   []upsertCall
	insertErr error
	upsertErr error
}

type upsertCall struct {
	visitorID string
	sessionID string
	seenAt    time.Time
}

func (f *fakeTrackingRepo) InsertPageView(view *entities.PageView) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.views = append(f.views, view)
	return nil
}

func (f *fakeTrackingRepo) UpsertVisitorSession(visitorID, sessionID string, seenAt time.Time) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserts = append(f.upserts, upsertCall{visitorID, sessionID, seenAt})
	return nil
}

// fakeRealtimeStore records counter and set operations.
type fakeRealtimeStore struct {
	counters map[string]int64
	zadds    []zaddCall
	zentries map[string][]realtime.MemberScore
}

type zaddCall struct {
	key    string
	member string
	score  int64
	ttl    time.Duration
}

func newFakeRealtimeStore() *fakeRealtimeStore {
	return &fakeRealtimeStore{
		counters: make(map[string]int64),
		zentries: make(map[string][]realtime.MemberScore),
	}
}

func (f *fakeRealtimeStore) Incr(key string, ttl time.Duration) int64 {
	f.counters[key]++
	return f.counters[key]
}

func (f *fakeRealtimeStore) GetCounter(key string) int64 {
	return f.counters[key]
}

func (f *fakeRealtimeStore) ZAdd(key, member string, score int64, ttl time.Duration) {
	f.zadds = append(f.zadds, zaddCall{key, member, score, ttl})
}

func (f *fakeRealtimeStore) ZRangeWithScores(key string) []realtime.MemberScore {
	return f.zentries[key]
}

// fakeGeoResolver returns a fixed location.
type fakeGeoResolver struct {
	loc geoip.Location
	ok  bool
}

func (f *fakeGeoResolver) Lookup(ctx context.Context, ip string) (geoip.Location, bool) {
	return f.loc, f.ok
}

// fakeAnalyticsRepo returns canned aggregation results and counts calls so
// memoization can be asserted.
type fakeAnalyticsRepo struct {
	totalViews        int64
	uniqueVisitors    int64
	returningVisitors int64
	singleVisitors    int64
	avgDuration       float64
	dateRows          []repositories.DateViews
	countries         []entities.CountryViews
	cities            []entities.CityViews
	devices           []entities.DeviceViews
	browsers          []entities.BrowserViews
	platforms         []entities.PlatformViews
	referrers         []entities.ReferralSource
	utm               []entities.UTMSourceViews
	topPages          []entities.TopPage
	pagesPerSession   float64
	exportRows        []repositories.ExportRow

	err        error
	totalCalls int
	lastRange  utils.DateRange
	lastLimit  int
}

func (f *fakeAnalyticsRepo) TotalViews(pageID uint64, r utils.DateRange) (int64, error) {
	f.totalCalls++
	f.lastRange = r
	return f.totalViews, f.err
}

func (f *fakeAnalyticsRepo) UniqueVisitors(pageID uint64, r utils.DateRange) (int64, error) {
	return f.uniqueVisitors, f.err
}

func (f *fakeAnalyticsRepo) ReturningVisitors(pageID uint64, r utils.DateRange) (int64, error) {
	return f.returningVisitors, f.err
}

func (f *fakeAnalyticsRepo) SingleViewVisitors(pageID uint64, r utils.DateRange) (int64, error) {
	return f.singleVisitors, f.err
}

func (f *fakeAnalyticsRepo) AvgSessionDuration(pageID uint64, r utils.DateRange) (float64, error) {
	return f.avgDuration, f.err
}

func (f *fakeAnalyticsRepo) ViewsByDate(pageID uint64, r utils.DateRange) ([]repositories.DateViews, error) {
	f.lastRange = r
	return f.dateRows, f.err
}

func (f *fakeAnalyticsRepo) ViewsByCountry(pageID uint64, r utils.DateRange) ([]entities.CountryViews, error) {
	return f.countries, f.err
}

func (f *fakeAnalyticsRepo) ViewsByCity(pageID uint64, r utils.DateRange) ([]entities.CityViews, error) {
	return f.cities, f.err
}

func (f *fakeAnalyticsRepo) ViewsByDevice(pageID uint64, r utils.DateRange) ([]entities.DeviceViews, error) {
	return f.devices, f.err
}

func (f *fakeAnalyticsRepo) ViewsByBrowser(pageID uint64, r utils.DateRange) ([]entities.BrowserViews, error) {
	return f.browsers, f.err
}

func (f *fakeAnalyticsRepo) ViewsByPlatform(pageID uint64, r utils.DateRange) ([]entities.PlatformViews, error) {
	return f.platforms, f.err
}

func (f *fakeAnalyticsRepo) ReferralSources(pageID uint64, r utils.DateRange) ([]entities.ReferralSource, error) {
	return f.referrers, f.err
}

func (f *fakeAnalyticsRepo) UTMSources(pageID uint64, r utils.DateRange) ([]entities.UTMSourceViews, error) {
	return f.utm, f.err
}

func (f *fakeAnalyticsRepo) ClientTotalViews(clientID uint64, r utils.DateRange) (int64, error) {
	f.totalCalls++
	return f.totalViews, f.err
}

func (f *fakeAnalyticsRepo) ClientUniqueVisitors(clientID uint64, r utils.DateRange) (int64, error) {
	return f.uniqueVisitors, f.err
}

func (f *fakeAnalyticsRepo) ClientSingleViewVisitors(clientID uint64, r utils.DateRange) (int64, error) {
	return f.singleVisitors, f.err
}

func (f *fakeAnalyticsRepo) ClientTopPages(clientID uint64, r utils.DateRange, limit int) ([]entities.TopPage, error) {
	f.lastLimit = limit
	return f.topPages, f.err
}

func (f *fakeAnalyticsRepo) ClientAvgPagesPerSession(clientID uint64, r utils.DateRange) (float64, error) {
	return f.pagesPerSession, f.err
}

func (f *fakeAnalyticsRepo) ClientAvgSessionDuration(clientID uint64, r utils.DateRange) (float64, error) {
	return f.avgDuration, f.err
}

func (f *fakeAnalyticsRepo) EventsForExport(pageID uint64, r utils.DateRange) ([]repositories.ExportRow, error) {
	f.lastRange = r
	return f.exportRows, f.err
}

// fakeCache is a TTL-less map; expiry behavior is covered by the cache
// package's own tests.
type fakeCache struct {
	entries map[string]interface{}
	sets    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]interface{})}
}

func (f *fakeCache) Get(key string) (interface{}, bool) {
	v, ok := f.entries[key]
	return v, ok
}

func (f *fakeCache) Set(key string, value interface{}, ttl time.Duration) {
	f.sets++
	f.entries[key] = value
}
