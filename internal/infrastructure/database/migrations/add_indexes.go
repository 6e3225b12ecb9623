package migrations

import (
	"gorm.io/gorm"
)

// AddIndexes adds the composite indexes the aggregation queries lean on.
// All of them are (dimension, created_at) pairs because every aggregate is
// scoped to a date range first.
func AddIndexes(db *gorm.DB) error {
	statements := []string{
		"CREATE INDEX IF NOT EXISTS idx_page_views_page_created ON page_views (page_id, created_at)",
		"CREATE INDEX IF NOT EXISTS idx_page_views_visitor_created ON page_views (visitor_id, created_at)",
		"CREATE INDEX IF NOT EXISTS idx_page_views_country_created ON page_views (country, created_at)",
		"CREATE INDEX IF NOT EXISTS idx_page_views_device_created ON page_views (device_type, created_at)",
		"CREATE INDEX IF NOT EXISTS idx_page_views_session_created ON page_views (session_id, created_at)",
		"CREATE INDEX IF NOT EXISTS idx_visitor_sessions_first_visit ON visitor_sessions (first_visit_at)",
		"CREATE INDEX IF NOT EXISTS idx_pages_client_id ON pages (client_id)",
	}

	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}

	return nil
}
