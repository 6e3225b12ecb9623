package migrations

import (
	"github.com/pagecraft/analytics-api/internal/domain/entities"
	"gorm.io/gorm"
)

// Migrate creates or updates the analytics tables. Pages and clients are
// owned by the builder application; they are migrated here too so the
// service runs standalone in development.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entities.Client{},
		&entities.Page{},
		&entities.PageView{},
		&entities.VisitorSession{},
	)
}
