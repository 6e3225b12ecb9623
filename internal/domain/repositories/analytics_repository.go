package repositories

import (
	"time"

	"github.com/pagecraft/analytics-api/internal/domain/entities"
	"github.com/pagecraft/analytics-api/internal/utils"
	"gorm.io/gorm"
)

// Dashboard payload caps. They bound response size, not the data itself.
const (
	countryLimit  = 10
	browserLimit  = 8
	referrerLimit = 15
	cityLimit     = 15
	utmLimit      = 15
)

// DateViews is one raw day bucket as it comes out of the database. Only days
// with at least one view appear here; the usecase fills the gaps.
type DateViews struct {
	Date  string `json:"date"`
	Views int64  `json:"views"`
}

// ExportRow is one raw event joined to its owning page, before
// anonymization.
type ExportRow struct {
	CreatedAt  time.Time
	PageTitle  string
	VisitorID  string
	IPAddress  *string
	Country    *string
	City       *string
	DeviceType string
	Browser    string
	Platform   string
	Referrer   *string
	SessionID  string
}

// AnalyticsRepository derives statistics from the page_views log restricted
// to a half-open date range and an entity scope (one page or all pages of a
// client). Every method is a side-effect-free query; callers assume
// pre-validated input.
//
// Top-N orderings are count descending with ties broken by the smallest row
// id in the group, so repeated calls over an unchanged log return identical
// output.
type AnalyticsRepository interface {
	TotalViews(pageID uint64, r utils.DateRange) (int64, error)
	UniqueVisitors(pageID uint64, r utils.DateRange) (int64, error)
	ReturningVisitors(pageID uint64, r utils.DateRange) (int64, error)
	SingleViewVisitors(pageID uint64, r utils.DateRange) (int64, error)
	AvgSessionDuration(pageID uint64, r utils.DateRange) (float64, error)
	ViewsByDate(pageID uint64, r utils.DateRange) ([]DateViews, error)
	ViewsByCountry(pageID uint64, r utils.DateRange) ([]entities.CountryViews, error)
	ViewsByCity(pageID uint64, r utils.DateRange) ([]entities.CityViews, error)
	ViewsByDevice(pageID uint64, r utils.DateRange) ([]entities.DeviceViews, error)
	ViewsByBrowser(pageID uint64, r utils.DateRange) ([]entities.BrowserViews, error)
	ViewsByPlatform(pageID uint64, r utils.DateRange) ([]entities.PlatformViews, error)
	ReferralSources(pageID uint64, r utils.DateRange) ([]entities.ReferralSource, error)
	UTMSources(pageID uint64, r utils.DateRange) ([]entities.UTMSourceViews, error)

	ClientTotalViews(clientID uint64, r utils.DateRange) (int64, error)
	ClientUniqueVisitors(clientID uint64, r utils.DateRange) (int64, error)
	ClientSingleViewVisitors(clientID uint64, r utils.DateRange) (int64, error)
	ClientTopPages(clientID uint64, r utils.DateRange, limit int) ([]entities.TopPage, error)
	ClientAvgPagesPerSession(clientID uint64, r utils.DateRange) (float64, error)
	ClientAvgSessionDuration(clientID uint64, r utils.DateRange) (float64, error)

	EventsForExport(pageID uint64, r utils.DateRange) ([]ExportRow, error)
}

type analyticsRepository struct {
	db *gorm.DB
}

func NewAnalyticsRepository(db *gorm.DB) AnalyticsRepository {
	return &analyticsRepository{db}
}

func (repo *analyticsRepository) TotalViews(pageID uint64, r utils.DateRange) (int64, error) {
	var total int64
	err := repo.db.Model(&entities.PageView{}).
		Where("page_id = ? AND created_at >= ? AND created_at < ?", pageID, r.From, r.To).
		Count(&total).Error
	return total, err
}

func (repo *analyticsRepository) UniqueVisitors(pageID uint64, r utils.DateRange) (int64, error) {
	var unique int64
	err := repo.db.Model(&entities.PageView{}).
		Where("page_id = ? AND created_at >= ? AND created_at < ?", pageID, r.From, r.To).
		Distinct("visitor_id").
		Count(&unique).Error
	return unique, err
}

func (repo *analyticsRepository) ReturningVisitors(pageID uint64, r utils.DateRange) (int64, error) {
	return repo.countVisitorsHaving(pageID, r, "COUNT(*) > 1")
}

func (repo *analyticsRepository) SingleViewVisitors(pageID uint64, r utils.DateRange) (int64, error) {
	return repo.countVisitorsHaving(pageID, r, "COUNT(*) = 1")
}

func (repo *analyticsRepository) countVisitorsHaving(pageID uint64, r utils.DateRange, having string) (int64, error) {
	var count int64
	err := repo.db.Raw(`
		SELECT COUNT(*) FROM (
			SELECT visitor_id
			FROM page_views
			WHERE page_id = ? AND created_at >= ? AND created_at < ?
			GROUP BY visitor_id
			HAVING `+having+`
		) grouped`, pageID, r.From, r.To).Scan(&count).Error
	return count, err
}

// AvgSessionDuration averages the real per-session span in seconds:
// max(created_at) - min(created_at) for each session_id seen on the page in
// range. Single-view sessions contribute zero.
func (repo *analyticsRepository) AvgSessionDuration(pageID uint64, r utils.DateRange) (float64, error) {
	var avg float64
	err := repo.db.Raw(`
		SELECT COALESCE(AVG(duration), 0) FROM (
			SELECT EXTRACT(EPOCH FROM (MAX(created_at) - MIN(created_at))) AS duration
			FROM page_views
			WHERE page_id = ? AND created_at >= ? AND created_at < ?
			GROUP BY session_id
		) sessions`, pageID, r.From, r.To).Scan(&avg).Error
	return avg, err
}

func (repo *analyticsRepository) ViewsByDate(pageID uint64, r utils.DateRange) ([]DateViews, error) {
	var rows []DateViews
	err := repo.db.Raw(`
		SELECT to_char(created_at, 'YYYY-MM-DD') AS date, COUNT(*) AS views
		FROM page_views
		WHERE page_id = ? AND created_at >= ? AND created_at < ?
		GROUP BY date
		ORDER BY date`, pageID, r.From, r.To).Scan(&rows).Error
	return rows, err
}

func (repo *analyticsRepository) ViewsByCountry(pageID uint64, r utils.DateRange) ([]entities.CountryViews, error) {
	var rows []entities.CountryViews
	err := repo.db.Raw(`
		SELECT country, COUNT(*) AS views
		FROM page_views
		WHERE page_id = ? AND created_at >= ? AND created_at < ? AND country IS NOT NULL
		GROUP BY country
		ORDER BY views DESC, MIN(id) ASC
		LIMIT ?`, pageID, r.From, r.To, countryLimit).Scan(&rows).Error
	return rows, err
}

func (repo *analyticsRepository) ViewsByCity(pageID uint64, r utils.DateRange) ([]entities.CityViews, error) {
	var rows []entities.CityViews
	err := repo.db.Raw(`
		SELECT city, country, COUNT(*) AS views
		FROM page_views
		WHERE page_id = ? AND created_at >= ? AND created_at < ? AND city IS NOT NULL
		GROUP BY city, country
		ORDER BY views DESC, MIN(id) ASC
		LIMIT ?`, pageID, r.From, r.To, cityLimit).Scan(&rows).Error
	return rows, err
}

func (repo *analyticsRepository) ViewsByDevice(pageID uint64, r utils.DateRange) ([]entities.DeviceViews, error) {
	var rows []entities.DeviceViews
	err := repo.db.Raw(`
		SELECT device_type, COUNT(*) AS views
		FROM page_views
		WHERE page_id = ? AND created_at >= ? AND created_at < ?
		GROUP BY device_type
		ORDER BY views DESC, MIN(id) ASC`, pageID, r.From, r.To).Scan(&rows).Error
	return rows, err
}

func (repo *analyticsRepository) ViewsByBrowser(pageID uint64, r utils.DateRange) ([]entities.BrowserViews, error) {
	var rows []entities.BrowserViews
	err := repo.db.Raw(`
		SELECT browser, COUNT(*) AS views
		FROM page_views
		WHERE page_id = ? AND created_at >= ? AND created_at < ?
		GROUP BY browser
		ORDER BY views DESC, MIN(id) ASC
		LIMIT ?`, pageID, r.From, r.To, browserLimit).Scan(&rows).Error
	return rows, err
}

func (repo *analyticsRepository) ViewsByPlatform(pageID uint64, r utils.DateRange) ([]entities.PlatformViews, error) {
	var rows []entities.PlatformViews
	err := repo.db.Raw(`
		SELECT platform, COUNT(*) AS views
		FROM page_views
		WHERE page_id = ? AND created_at >= ? AND created_at < ?
		GROUP BY platform
		ORDER BY views DESC, MIN(id) ASC`, pageID, r.From, r.To).Scan(&rows).Error
	return rows, err
}

func (repo *analyticsRepository) ReferralSources(pageID uint64, r utils.DateRange) ([]entities.ReferralSource, error) {
	var rows []entities.ReferralSource
	err := repo.db.Raw(`
		SELECT referrer, COUNT(*) AS visits
		FROM page_views
		WHERE page_id = ? AND created_at >= ? AND created_at < ? AND referrer IS NOT NULL
		GROUP BY referrer
		ORDER BY visits DESC, MIN(id) ASC
		LIMIT ?`, pageID, r.From, r.To, referrerLimit).Scan(&rows).Error
	return rows, err
}

func (repo *analyticsRepository) UTMSources(pageID uint64, r utils.DateRange) ([]entities.UTMSourceViews, error) {
	var rows []entities.UTMSourceViews
	err := repo.db.Raw(`
		SELECT utm_source, COALESCE(utm_medium, '') AS utm_medium, COALESCE(utm_campaign, '') AS utm_campaign, COUNT(*) AS visits
		FROM page_views
		WHERE page_id = ? AND created_at >= ? AND created_at < ? AND utm_source IS NOT NULL
		GROUP BY utm_source, utm_medium, utm_campaign
		ORDER BY visits DESC, MIN(id) ASC
		LIMIT ?`, pageID, r.From, r.To, utmLimit).Scan(&rows).Error
	return rows, err
}

func (repo *analyticsRepository) ClientTotalViews(clientID uint64, r utils.DateRange) (int64, error) {
	var total int64
	err := repo.db.Raw(`
		SELECT COUNT(*)
		FROM page_views
		JOIN pages ON pages.id = page_views.page_id
		WHERE pages.client_id = ? AND page_views.created_at >= ? AND page_views.created_at < ?`,
		clientID, r.From, r.To).Scan(&total).Error
	return total, err
}

func (repo *analyticsRepository) ClientUniqueVisitors(clientID uint64, r utils.DateRange) (int64, error) {
	var unique int64
	err := repo.db.Raw(`
		SELECT COUNT(DISTINCT page_views.visitor_id)
		FROM page_views
		JOIN pages ON pages.id = page_views.page_id
		WHERE pages.client_id = ? AND page_views.created_at >= ? AND page_views.created_at < ?`,
		clientID, r.From, r.To).Scan(&unique).Error
	return unique, err
}

func (repo *analyticsRepository) ClientSingleViewVisitors(clientID uint64, r utils.DateRange) (int64, error) {
	var count int64
	err := repo.db.Raw(`
		SELECT COUNT(*) FROM (
			SELECT page_views.visitor_id
			FROM page_views
			JOIN pages ON pages.id = page_views.page_id
			WHERE pages.client_id = ? AND page_views.created_at >= ? AND page_views.created_at < ?
			GROUP BY page_views.visitor_id
			HAVING COUNT(*) = 1
		) grouped`, clientID, r.From, r.To).Scan(&count).Error
	return count, err
}

// ClientTopPages ranks the client's pages by views in range. The left join
// keeps zero-view pages in the ranking; ties break on ascending page id so
// pagination stays stable.
func (repo *analyticsRepository) ClientTopPages(clientID uint64, r utils.DateRange, limit int) ([]entities.TopPage, error) {
	if limit <= 0 {
		limit = 10
	}

	var rows []entities.TopPage
	err := repo.db.Raw(`
		SELECT pages.id, pages.title, pages.slug, COUNT(page_views.id) AS views
		FROM pages
		LEFT JOIN page_views
			ON page_views.page_id = pages.id
			AND page_views.created_at >= ? AND page_views.created_at < ?
		WHERE pages.client_id = ?
		GROUP BY pages.id, pages.title, pages.slug
		ORDER BY views DESC, pages.id ASC
		LIMIT ?`, r.From, r.To, clientID, limit).Scan(&rows).Error
	return rows, err
}

func (repo *analyticsRepository) ClientAvgPagesPerSession(clientID uint64, r utils.DateRange) (float64, error) {
	var avg float64
	err := repo.db.Raw(`
		SELECT COALESCE(AVG(visitor_sessions.page_views_count), 0)
		FROM page_views
		JOIN pages ON pages.id = page_views.page_id
		JOIN visitor_sessions ON visitor_sessions.visitor_id = page_views.visitor_id
		WHERE pages.client_id = ? AND page_views.created_at >= ? AND page_views.created_at < ?`,
		clientID, r.From, r.To).Scan(&avg).Error
	return avg, err
}

func (repo *analyticsRepository) ClientAvgSessionDuration(clientID uint64, r utils.DateRange) (float64, error) {
	var avg float64
	err := repo.db.Raw(`
		SELECT COALESCE(AVG(duration), 0) FROM (
			SELECT EXTRACT(EPOCH FROM (MAX(page_views.created_at) - MIN(page_views.created_at))) AS duration
			FROM page_views
			JOIN pages ON pages.id = page_views.page_id
			WHERE pages.client_id = ? AND page_views.created_at >= ? AND page_views.created_at < ?
			GROUP BY page_views.session_id
		) sessions`, clientID, r.From, r.To).Scan(&avg).Error
	return avg, err
}

// EventsForExport returns the raw rows for the export formatter, oldest
// first, ties broken by id. Export always reads the log directly and never
// goes through the aggregate cache.
func (repo *analyticsRepository) EventsForExport(pageID uint64, r utils.DateRange) ([]ExportRow, error) {
	var rows []ExportRow
	err := repo.db.Raw(`
		SELECT
			page_views.created_at,
			pages.title AS page_title,
			page_views.visitor_id,
			page_views.ip_address,
			page_views.country,
			page_views.city,
			page_views.device_type,
			page_views.browser,
			page_views.platform,
			page_views.referrer,
			page_views.session_id
		FROM page_views
		JOIN pages ON pages.id = page_views.page_id
		WHERE page_views.page_id = ? AND page_views.created_at >= ? AND page_views.created_at < ?
		ORDER BY page_views.created_at ASC, page_views.id ASC`,
		pageID, r.From, r.To).Scan(&rows).Error
	return rows, err
}
