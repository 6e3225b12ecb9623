package usecases

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/pagecraft/analytics-api/internal/domain/entities"
	"github.com/pagecraft/analytics-api/internal/domain/repositories"
	"github.com/pagecraft/analytics-api/internal/infrastructure/geoip"
	"github.com/pagecraft/analytics-api/internal/infrastructure/realtime"
	"github.com/pagecraft/analytics-api/internal/utils"
)

const (
	// activeVisitorWindow bounds both the active-visitor set TTL and the
	// read-time cutoff for the live visitor list.
	activeVisitorWindow = 5 * time.Minute
	hourCounterTTL      = time.Hour
	dayCounterTTL       = 24 * time.Hour
)

func activeVisitorsKey(pageID uint64) string {
	return fmt.Sprintf("page:%d:active_visitors", pageID)
}

func viewsLastHourKey(pageID uint64) string {
	return fmt.Sprintf("page:%d:views_last_hour", pageID)
}

func viewsTodayKey(pageID uint64) string {
	return fmt.Sprintf("page:%d:views_today", pageID)
}

// RealtimeStore is the narrow capability surface the usecases need from the
// ephemeral counter store: atomic increment-with-TTL and sorted-set
// insert/range.
type RealtimeStore interface {
	Incr(key string, ttl time.Duration) int64
	GetCounter(key string) int64
	ZAdd(key, member string, score int64, ttl time.Duration)
	ZRangeWithScores(key string) []realtime.MemberScore
}

// GeoResolver is the optional geo-IP collaborator. A failed lookup reads as
// (zero, false) and never blocks ingestion.
type GeoResolver interface {
	Lookup(ctx context.Context, ip string) (geoip.Location, bool)
}

// TrackingContext carries the request attributes the ingestion pipeline
// consumes. SessionID comes from the caller's session mechanism and is
// treated as opaque.
type TrackingContext struct {
	IP        string
	UserAgent string
	Referrer  string
	SessionID string

	UtmSource   string
	UtmMedium   string
	UtmCampaign string
	UtmTerm     string
	UtmContent  string
}

// TrackingUseCase records page views. Callers on the render path must treat
// a returned error as log-and-swallow: tracking never breaks page serving.
type TrackingUseCase interface {
	TrackPageView(ctx context.Context, page *entities.Page, tc TrackingContext) error
}

type trackingUseCase struct {
	repo   repositories.TrackingRepository
	store  RealtimeStore
	geo    GeoResolver
	secret string
	nowFn  func() time.Time
}

func NewTrackingUseCase(repo repositories.TrackingRepository, store RealtimeStore, geo GeoResolver, secret string) *trackingUseCase {
	return &trackingUseCase{
		repo:   repo,
		store:  store,
		geo:    geo,
		secret: secret,
		nowFn:  time.Now,
	}
}

// TrackPageView runs the full ingestion pipeline: visitor identity, user
// agent classification, referrer parsing, real-time counters, the immutable
// page view append and the visitor session upsert. Only a failed append is
// reported; the session rollup is best effort and self-heals on the next
// view.
func (uc *trackingUseCase) TrackPageView(ctx context.Context, page *entities.Page, tc TrackingContext) error {
	now := uc.nowFn()
	visitorID := utils.VisitorID(tc.IP, tc.UserAgent, uc.secret)

	uc.storeRealTimeData(page.ID, visitorID, now)

	var country, city *string
	if uc.geo != nil {
		if loc, ok := uc.geo.Lookup(ctx, tc.IP); ok {
			country = &loc.Country
			if loc.City != "" {
				city = &loc.City
			}
		}
	}

	view := &entities.PageView{
		PageID:      page.ID,
		VisitorID:   visitorID,
		IPAddress:   optional(tc.IP),
		UserAgent:   optional(tc.UserAgent),
		Referrer:    utils.ReferrerHost(tc.Referrer),
		SessionID:   tc.SessionID,
		Country:     country,
		City:        city,
		DeviceType:  utils.DeviceType(tc.UserAgent),
		Browser:     utils.Browser(tc.UserAgent),
		Platform:    utils.Platform(tc.UserAgent),
		UtmSource:   optional(tc.UtmSource),
		UtmMedium:   optional(tc.UtmMedium),
		UtmCampaign: optional(tc.UtmCampaign),
		UtmTerm:     optional(tc.UtmTerm),
		UtmContent:  optional(tc.UtmContent),
		CreatedAt:   now,
	}

	if err := uc.repo.InsertPageView(view); err != nil {
		return fmt.Errorf("failed to record page view: %w", err)
	}

	if err := uc.repo.UpsertVisitorSession(visitorID, tc.SessionID, now); err != nil {
		log.Printf("visitor session upsert failed for page %d: %v", page.ID, err)
	}

	return nil
}

func (uc *trackingUseCase) storeRealTimeData(pageID uint64, visitorID string, now time.Time) {
	uc.store.ZAdd(activeVisitorsKey(pageID), visitorID, now.Unix(), activeVisitorWindow)
	uc.store.Incr(viewsLastHourKey(pageID), hourCounterTTL)
	uc.store.Incr(viewsTodayKey(pageID), dayCounterTTL)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
