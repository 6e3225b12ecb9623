package usecases

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagecraft/analytics-api/internal/domain/entities"
	"github.com/pagecraft/analytics-api/internal/infrastructure/geoip"
	"github.com/pagecraft/analytics-api/internal/utils"
)

func newTrackingFixture() (*trackingUseCase, *fakeTrackingRepo, *fakeRealtimeStore, time.Time) {
	repo := &fakeTrackingRepo{}
	store := newFakeRealtimeStore()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	uc := NewTrackingUseCase(repo, store, nil, "test-secret")
	uc.nowFn = func() time.Time { return now }
	return uc, repo, store, now
}

func TestTrackPageViewRecordsView(t *testing.T) {
	uc, repo, _, now := newTrackingFixture()
	page := &entities.Page{ID: 42}

	tc := TrackingContext{
		IP:        "203.0.113.7",
		UserAgent: "Mozilla/5.0 (Windows NT 10.0) Chrome/120.0",
		Referrer:  "https://google.com/search?q=test",
		SessionID: "sess-1",
		UtmSource: "newsletter",
	}

	err := uc.TrackPageView(context.Background(), page, tc)
	require.NoError(t, err)
	require.Len(t, repo.views, 1)

	view := repo.views[0]
	assert.Equal(t, uint64(42), view.PageID)
	assert.Equal(t, utils.VisitorID(tc.IP, tc.UserAgent, "test-secret"), view.VisitorID)
	assert.Equal(t, "203.0.113.7", *view.IPAddress)
	assert.Equal(t, "google.com", *view.Referrer)
	assert.Equal(t, "sess-1", view.SessionID)
	assert.Equal(t, "desktop", view.DeviceType)
	assert.Equal(t, "chrome", view.Browser)
	assert.Equal(t, "windows", view.Platform)
	assert.Equal(t, "newsletter", *view.UtmSource)
	assert.Nil(t, view.UtmMedium)
	assert.Equal(t, now, view.CreatedAt)
}

func TestTrackPageViewDeterministicVisitorID(t *testing.T) {
	uc, repo, _, _ := newTrackingFixture()
	page := &entities.Page{ID: 1}
	tc := TrackingContext{IP: "10.0.0.1", UserAgent: "agent", SessionID: "s"}

	require.NoError(t, uc.TrackPageView(context.Background(), page, tc))
	require.NoError(t, uc.TrackPageView(context.Background(), page, tc))

	require.Len(t, repo.views, 2)
	assert.Equal(t, repo.views[0].VisitorID, repo.views[1].VisitorID)
	assert.Len(t, repo.views[0].VisitorID, 64)
}

func TestTrackPageViewUpdatesRealtimeStore(t *testing.T) {
	uc, _, store, now := newTrackingFixture()
	page := &entities.Page{ID: 7}

	err := uc.TrackPageView(context.Background(), page, TrackingContext{IP: "10.0.0.1", UserAgent: "agent", SessionID: "s"})
	require.NoError(t, err)

	assert.Equal(t, int64(1), store.counters["page:7:views_last_hour"])
	assert.Equal(t, int64(1), store.counters["page:7:views_today"])

	require.Len(t, store.zadds, 1)
	assert.Equal(t, "page:7:active_visitors", store.zadds[0].key)
	assert.Equal(t, now.Unix(), store.zadds[0].score)
	assert.Equal(t, 5*time.Minute, store.zadds[0].ttl)
}

func TestTrackPageViewGeoLookup(t *testing.T) {
	uc, repo, _, _ := newTrackingFixture()
	uc.geo = &fakeGeoResolver{loc: geoip.Location{Country: "Brazil", City: "Sao Paulo"}, ok: true}

	err := uc.TrackPageView(context.Background(), &entities.Page{ID: 1}, TrackingContext{IP: "10.0.0.1", UserAgent: "a", SessionID: "s"})
	require.NoError(t, err)

	require.Len(t, repo.views, 1)
	require.NotNil(t, repo.views[0].Country)
	assert.Equal(t, "Brazil", *repo.views[0].Country)
	require.NotNil(t, repo.views[0].City)
	assert.Equal(t, "Sao Paulo", *repo.views[0].City)
}

func TestTrackPageViewGeoMissLeavesLocationNil(t *testing.T) {
	uc, repo, _, _ := newTrackingFixture()
	uc.geo = &fakeGeoResolver{ok: false}

	err := uc.TrackPageView(context.Background(), &entities.Page{ID: 1}, TrackingContext{IP: "10.0.0.1", UserAgent: "a", SessionID: "s"})
	require.NoError(t, err)

	require.Len(t, repo.views, 1)
	assert.Nil(t, repo.views[0].Country)
	assert.Nil(t, repo.views[0].City)
}

func TestTrackPageViewInsertErrorPropagates(t *testing.T) {
	uc, repo, _, _ := newTrackingFixture()
	repo.insertErr = errors.New("connection refused")

	err := uc.TrackPageView(context.Background(), &entities.Page{ID: 1}, TrackingContext{IP: "10.0.0.1", UserAgent: "a", SessionID: "s"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to record page view")
}

func TestTrackPageViewUpsertErrorSwallowed(t *testing.T) {
	uc, repo, _, _ := newTrackingFixture()
	repo.upsertErr = errors.New("deadlock detected")

	err := uc.TrackPageView(context.Background(), &entities.Page{ID: 1}, TrackingContext{IP: "10.0.0.1", UserAgent: "a", SessionID: "s"})
	require.NoError(t, err)
	assert.Len(t, repo.views, 1)
}

func TestTrackPageViewEmptyReferrerIsNil(t *testing.T) {
	uc, repo, _, _ := newTrackingFixture()

	err := uc.TrackPageView(context.Background(), &entities.Page{ID: 1}, TrackingContext{IP: "10.0.0.1", UserAgent: "a", SessionID: "s"})
	require.NoError(t, err)

	require.Len(t, repo.views, 1)
	assert.Nil(t, repo.views[0].Referrer)
}
