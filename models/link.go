package models

import "time"

// Link maps a short code to its original URL
// ShortCode uniqueness is enforced by the database and is the authoritative
// guarantee against generation races
type Link struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	UserID      uint   `gorm:"not null;index:idx_links_user_id" json:"user_id"`
	User        User   `gorm:"foreignKey:UserID;references:ID" json:"-"`
	OriginalURL string `gorm:"type:text;not null" json:"original_url"`
	ShortCode   string `gorm:"size:64;not null;uniqueIndex:uk_links_short_code" json:"short_code"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_links_created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`

	ClickStats []ClickStat `gorm:"foreignKey:LinkID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName returns the table name for Link
func (Link) TableName() string { return "links" }

// LinkFilter provides filter fields for repository queries
type LinkFilter struct {
	ID            *uint
	UserID        *uint
	OriginalURL   *string
	ShortCode     *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
