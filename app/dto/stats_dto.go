package dto

// ClickStatDTO represents a single recorded click in API responses
type ClickStatDTO struct {
	ID             uint   `json:"id" example:"7"`
	IP             string `json:"ip,omitempty" example:"203.0.113.9"`
	Region         string `json:"region,omitempty" example:"Germany, Berlin"`
	Browser        string `json:"browser,omitempty" example:"Chrome"`
	BrowserVersion string `json:"browser_version,omitempty" example:"126.0.0.0"`
	OS             string `json:"os,omitempty" example:"Windows"`
	ClickedAt      string `json:"clicked_at" example:"2026-01-15T10:30:00Z"`
}

// StatsData represents the payload returned for a link's click statistics
type StatsData struct {
	ShortCode  string         `json:"short_code" example:"Ab3xZ9qK"`
	TotalCount int            `json:"total_count" example:"12"`
	Stats      []ClickStatDTO `json:"stats"`
}

// Common error codes for stats operations
const (
	ErrorStatsAccessDenied = "STATS_ACCESS_DENIED"
)
