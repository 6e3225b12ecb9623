package repositories

import (
	"github.com/pagecraft/analytics-api/internal/domain/entities"
	"gorm.io/gorm"
)

// PageRepository is the read-only boundary to the builder's page store. The
// analytics core never writes pages.
type PageRepository interface {
	FindForClient(pageID, clientID uint64) (*entities.Page, error)
	FindPublished(clientSlug, pageSlug string) (*entities.Page, error)
	CountClientPages(clientID uint64) (int64, error)
}

type pageRepository struct {
	db *gorm.DB
}

func NewPageRepository(db *gorm.DB) PageRepository {
	return &pageRepository{db}
}

// FindForClient loads a page only when it belongs to the given client.
// Missing and un-owned pages are indistinguishable to the caller
// (gorm.ErrRecordNotFound either way).
func (repo *pageRepository) FindForClient(pageID, clientID uint64) (*entities.Page, error) {
	var page entities.Page
	if err := repo.db.Where("id = ? AND client_id = ?", pageID, clientID).First(&page).Error; err != nil {
		return nil, err
	}
	return &page, nil
}

func (repo *pageRepository) FindPublished(clientSlug, pageSlug string) (*entities.Page, error) {
	var page entities.Page
	err := repo.db.
		Joins("JOIN clients ON clients.id = pages.client_id").
		Where("clients.slug = ? AND pages.slug = ? AND pages.is_published = ?", clientSlug, pageSlug, true).
		First(&page).Error
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (repo *pageRepository) CountClientPages(clientID uint64) (int64, error) {
	var total int64
	err := repo.db.Model(&entities.Page{}).Where("client_id = ?", clientID).Count(&total).Error
	return total, err
}
