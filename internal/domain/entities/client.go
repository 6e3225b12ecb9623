package entities

import "time"

// Client owns pages and, transitively, their page views.
type Client struct {
	ID          uint64    `json:"id" gorm:"primaryKey;column:id"`
	UserID      uint64    `json:"user_id" gorm:"column:user_id"`
	CompanyName string    `json:"company_name" gorm:"column:company_name"`
	Slug        string    `json:"slug" gorm:"column:slug;index"`
	WebsiteURL  string    `json:"website_url" gorm:"column:website_url"`
	Logo        string    `json:"logo" gorm:"column:logo"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Client) TableName() string {
	return "clients"
}
