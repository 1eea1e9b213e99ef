package models

import "time"

// ClickStat represents a single resolved visit of a short link
// Rows are immutable once created and cascade when the owning link is deleted
// IP, region, browser and OS capture click-time context; unparsable values
// default to "Unknown"
type ClickStat struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	LinkID uint `gorm:"not null;index:idx_click_stats_link_id" json:"link_id"`
	Link   Link `gorm:"foreignKey:LinkID;references:ID" json:"-"`

	IP             *string `gorm:"size:64" json:"ip,omitempty"`
	Region         *string `gorm:"size:255" json:"region,omitempty"`
	Browser        *string `gorm:"size:64" json:"browser,omitempty"`
	BrowserVersion *string `gorm:"size:64" json:"browser_version,omitempty"`
	OS             *string `gorm:"size:64" json:"os,omitempty"`
	UserAgent      *string `gorm:"type:text" json:"user_agent,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_click_stats_created_at" json:"created_at"`
}

// TableName returns the table name for ClickStat
func (ClickStat) TableName() string { return "click_stats" }

// ClickStatFilter provides filter fields for repository queries
type ClickStatFilter struct {
	ID            *uint
	LinkID        *uint
	IP            *string
	Browser       *string
	OS            *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
