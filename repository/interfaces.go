// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"

	"github.com/rezashm/linkdrop/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// UserRepository defines operations for users
type UserRepository interface {
	Repository[models.User, models.UserFilter]
	ByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, userID uint) error
}

// LinkRepository defines operations for links
type LinkRepository interface {
	Repository[models.Link, models.LinkFilter]
	ByShortCode(ctx context.Context, shortCode string) (*models.Link, error)
	ByUserAndURL(ctx context.Context, userID uint, originalURL string) (*models.Link, error)
	ListByUser(ctx context.Context, userID uint) ([]*models.Link, error)
	ShortCodeExists(ctx context.Context, shortCode string) (bool, error)
	Update(ctx context.Context, link *models.Link) error
	Delete(ctx context.Context, id uint) error
}

// ClickStatRepository defines operations for click stats
type ClickStatRepository interface {
	Repository[models.ClickStat, models.ClickStatFilter]
	ListByLink(ctx context.Context, linkID uint) ([]*models.ClickStat, error)
	DeleteByLink(ctx context.Context, linkID uint) error
}

// UserSessionRepository defines operations for user sessions
type UserSessionRepository interface {
	Repository[models.UserSession, models.UserSessionFilter]
	BySessionToken(ctx context.Context, token string) (*models.UserSession, error)
	ExpireAllUserSessions(ctx context.Context, userID uint) error
}

// AuditLogRepository defines operations for audit logs
type AuditLogRepository interface {
	Repository[models.AuditLog, models.AuditLogFilter]
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.AuditLog, error)
}
