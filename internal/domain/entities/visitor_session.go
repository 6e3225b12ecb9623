package entities

import "time"

// VisitorSession is the durable rollup kept per pseudonymous visitor id,
// across every page and client. It is created on the first tracked view and
// incremented on every subsequent one. It is best effort: the page_views log
// stays the source of truth and a missed update self-heals on the next view.
type VisitorSession struct {
	ID             uint64    `json:"id" gorm:"primaryKey;autoIncrement;column:id"`
	VisitorID      string    `json:"visitor_id" gorm:"column:visitor_id;size:64;uniqueIndex;not null"`
	FirstVisitAt   time.Time `json:"first_visit_at" gorm:"column:first_visit_at;index"`
	LastVisitAt    time.Time `json:"last_visit_at" gorm:"column:last_visit_at"`
	SessionID      string    `json:"session_id" gorm:"column:session_id"`
	PageViewsCount int64     `json:"page_views_count" gorm:"column:page_views_count;default:0"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (VisitorSession) TableName() string {
	return "visitor_sessions"
}
