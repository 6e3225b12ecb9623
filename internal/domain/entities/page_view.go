package entities

import "time"

// PageView is an append-only fact. Rows are never updated or deleted except
// through the page cascade delete; timeline ordering is by created_at with
// ties broken by id.
type PageView struct {
	ID         uint64  `json:"id" gorm:"primaryKey;autoIncrement;column:id"`
	PageID     uint64  `json:"page_id" gorm:"column:page_id;not null;index:idx_page_views_page_created,priority:1"`
	VisitorID  string  `json:"visitor_id" gorm:"column:visitor_id;size:64;not null;index:idx_page_views_visitor_created,priority:1"`
	IPAddress  *string `json:"ip_address" gorm:"column:ip_address;size:45"`
	UserAgent  *string `json:"user_agent" gorm:"column:user_agent;type:text"`
	Referrer   *string `json:"referrer" gorm:"column:referrer"`
	SessionID  string  `json:"session_id" gorm:"column:session_id;not null"`
	Country    *string `json:"country" gorm:"column:country"`
	City       *string `json:"city" gorm:"column:city"`
	DeviceType string  `json:"device_type" gorm:"column:device_type"`
	Browser    string  `json:"browser" gorm:"column:browser"`
	Platform   string  `json:"platform" gorm:"column:platform"`

	UtmSource   *string `json:"utm_source" gorm:"column:utm_source"`
	UtmMedium   *string `json:"utm_medium" gorm:"column:utm_medium"`
	UtmCampaign *string `json:"utm_campaign" gorm:"column:utm_campaign"`
	UtmTerm     *string `json:"utm_term" gorm:"column:utm_term"`
	UtmContent  *string `json:"utm_content" gorm:"column:utm_content"`

	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;index:idx_page_views_page_created,priority:2;index:idx_page_views_visitor_created,priority:2"`
	UpdatedAt time.Time `json:"updated_at"`

	Page Page `json:"page,omitempty" gorm:"foreignKey:PageID;constraint:OnDelete:CASCADE"`
}

func (PageView) TableName() string {
	return "page_views"
}
