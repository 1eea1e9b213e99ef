package dto

// CreateLinkRequest represents the request payload for shortening a URL
type CreateLinkRequest struct {
	OriginalURL string `json:"original_url" validate:"required,http_url,max=2048" example:"https://example.com/very/long/path"`
}

// UpdateLinkRequest represents the request payload for updating a link.
// The short code is regenerated on every update.
type UpdateLinkRequest struct {
	OriginalURL string `json:"original_url" validate:"required,http_url,max=2048" example:"https://example.com/new/destination"`
}

// LinkDTO represents a shortened link in API responses
type LinkDTO struct {
	ID          uint   `json:"id" example:"42"`
	OriginalURL string `json:"original_url" example:"https://example.com/very/long/path"`
	ShortCode   string `json:"short_code" example:"Ab3xZ9qK"`
	CreatedAt   string `json:"created_at" example:"2026-01-15T10:30:00Z"`
	UpdatedAt   string `json:"updated_at" example:"2026-01-15T10:30:00Z"`
}

// CreateLinkData represents the payload returned after shortening a URL
type CreateLinkData struct {
	Link    LinkDTO `json:"link"`
	Created bool    `json:"created" example:"true"` // false when an existing link was reused
}

// ListLinksData represents the payload returned when listing a user's links
type ListLinksData struct {
	Links []LinkDTO `json:"links"`
	Total int       `json:"total" example:"3"`
}

// Common error codes for link operations
const (
	ErrorLinkNotFound       = "LINK_NOT_FOUND"
	ErrorCodeSpaceExhausted = "CODE_SPACE_EXHAUSTED"
)
