package entities

import (
	"encoding/json"
	"time"
)

// Page is the builder-owned entity the analytics core reads from. The core
// never writes back to pages; it only needs the id, the owning client and
// the published flag.
type Page struct {
	ID               uint64          `json:"id" gorm:"primaryKey;column:id"`
	ClientID         uint64          `json:"client_id" gorm:"column:client_id;not null"`
	Title            string          `json:"title" gorm:"column:title"`
	Slug             string          `json:"slug" gorm:"column:slug;index"`
	Content          json.RawMessage `json:"content,omitempty" gorm:"column:content;type:jsonb"`
	PublishedContent json.RawMessage `json:"published_content,omitempty" gorm:"column:published_content;type:jsonb"`
	IsPublished      bool            `json:"is_published" gorm:"column:is_published"`
	Version          int             `json:"version" gorm:"column:version"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`

	Client Client `json:"client,omitempty" gorm:"foreignKey:ClientID"`
}

func (Page) TableName() string {
	return "pages"
}
