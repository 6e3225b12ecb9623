package repositories

import (
	"time"

	"github.com/pagecraft/analytics-api/internal/domain/entities"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TrackingRepository owns the two durable writes of the ingestion pipeline.
// They are deliberately independent: the page view append is the audit
// trail, the visitor session upsert is a best-effort rollup that self-heals
// on the next view.
type TrackingRepository interface {
	InsertPageView(view *entities.PageView) error
	UpsertVisitorSession(visitorID, sessionID string, seenAt time.Time) error
}

type trackingRepository struct {
	db *gorm.DB
}

func NewTrackingRepository(db *gorm.DB) TrackingRepository {
	return &trackingRepository{db}
}

func (repo *trackingRepository) InsertPageView(view *entities.PageView) error {
	return repo.db.Create(view).Error
}

// UpsertVisitorSession creates the rollup row on a visitor's first tracked
// view and increments it atomically afterwards.
func (repo *trackingRepository) UpsertVisitorSession(visitorID, sessionID string, seenAt time.Time) error {
	session := entities.VisitorSession{
		VisitorID:      visitorID,
		FirstVisitAt:   seenAt,
		LastVisitAt:    seenAt,
		SessionID:      sessionID,
		PageViewsCount: 1,
	}

	return repo.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "visitor_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"last_visit_at":    seenAt,
			"session_id":       sessionID,
			"page_views_count": gorm.Expr("visitor_sessions.page_views_count + 1"),
			"updated_at":       seenAt,
		}),
	}).Create(&session).Error
}
