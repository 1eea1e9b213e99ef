// Package businessflow contains the business logic for the application.
package businessflow

import (
	"time"

	"github.com/rezashm/linkdrop/app/dto"
	"github.com/rezashm/linkdrop/models"
	"github.com/rezashm/linkdrop/utils"
)

// ClientMetadata holds all client-related information for audit logging,
// session tracking and click attribution
type ClientMetadata struct {
	IPAddress    string `json:"ip_address"`
	ForwardedFor string `json:"forwarded_for,omitempty"`
	UserAgent    string `json:"user_agent"`
	RequestID    string `json:"request_id,omitempty"`
	SessionID    string `json:"session_id,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
}

// SetForwardedFor sets the raw X-Forwarded-For header value
func (cm *ClientMetadata) SetForwardedFor(forwardedFor string) {
	cm.ForwardedFor = forwardedFor
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// SetSessionID sets the session ID
func (cm *ClientMetadata) SetSessionID(sessionID string) {
	cm.SessionID = sessionID
}

// ToUserDTO converts a user model to UserDTO for authentication responses
func ToUserDTO(user models.User) dto.UserDTO {
	return dto.UserDTO{
		ID:        user.ID,
		Email:     user.Email,
		IsActive:  utils.IsTrue(user.IsActive),
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
}

// ToLinkDTO converts a link model to LinkDTO
func ToLinkDTO(link models.Link) dto.LinkDTO {
	return dto.LinkDTO{
		ID:          link.ID,
		OriginalURL: link.OriginalURL,
		ShortCode:   link.ShortCode,
		CreatedAt:   link.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   link.UpdatedAt.Format(time.RFC3339),
	}
}

// ToClickStatDTO converts a click stat model to ClickStatDTO
func ToClickStatDTO(stat models.ClickStat) dto.ClickStatDTO {
	deref := func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	}

	return dto.ClickStatDTO{
		ID:             stat.ID,
		IP:             deref(stat.IP),
		Region:         deref(stat.Region),
		Browser:        deref(stat.Browser),
		BrowserVersion: deref(stat.BrowserVersion),
		OS:             deref(stat.OS),
		ClickedAt:      stat.CreatedAt.Format(time.RFC3339),
	}
}
