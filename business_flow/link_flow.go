// Package businessflow contains the core business logic and use cases for link shortening workflows
package businessflow

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/rezashm/linkdrop/app/dto"
	"github.com/rezashm/linkdrop/app/services"
	"github.com/rezashm/linkdrop/models"
	"github.com/rezashm/linkdrop/repository"
	"github.com/rezashm/linkdrop/utils"
	"gorm.io/gorm"
)

// LinkFlow handles creation, listing, update and deletion of short links
type LinkFlow interface {
	CreateLink(ctx context.Context, userID uint, request *dto.CreateLinkRequest, metadata *ClientMetadata) (*dto.CreateLinkData, error)
	ListLinks(ctx context.Context, userID uint) (*dto.ListLinksData, error)
	UpdateLink(ctx context.Context, userID uint, linkID uint, request *dto.UpdateLinkRequest, metadata *ClientMetadata) (*dto.LinkDTO, error)
	DeleteLink(ctx context.Context, userID uint, linkID uint, metadata *ClientMetadata) error
}

// LinkFlowImpl implements the link management business flow
type LinkFlowImpl struct {
	linkRepo      repository.LinkRepository
	clickStatRepo repository.ClickStatRepository
	auditRepo     repository.AuditLogRepository
	codeService   services.ShortCodeService
	cache         services.LinkCache
	db            *gorm.DB
}

// NewLinkFlow creates a new link flow instance
func NewLinkFlow(
	linkRepo repository.LinkRepository,
	clickStatRepo repository.ClickStatRepository,
	auditRepo repository.AuditLogRepository,
	codeService services.ShortCodeService,
	cache services.LinkCache,
	db *gorm.DB,
) LinkFlow {
	return &LinkFlowImpl{
		linkRepo:      linkRepo,
		clickStatRepo: clickStatRepo,
		auditRepo:     auditRepo,
		codeService:   codeService,
		cache:         cache,
		db:            db,
	}
}

// CreateLink shortens a URL for the given user. Submitting the same URL twice
// returns the existing link instead of minting a second code.
func (lf *LinkFlowImpl) CreateLink(ctx context.Context, userID uint, request *dto.CreateLinkRequest, metadata *ClientMetadata) (*dto.CreateLinkData, error) {
	if err := validateOriginalURL(request.OriginalURL); err != nil {
		return nil, NewBusinessError("INVALID_ORIGINAL_URL", "Original URL is invalid", err)
	}

	// Dedup check outside the write path
	existing, err := lf.linkRepo.ByUserAndURL(ctx, userID, request.OriginalURL)
	if err != nil {
		return nil, NewBusinessError("LINK_CREATION_FAILED", "Link creation failed", err)
	}
	if existing != nil {
		return &dto.CreateLinkData{
			Link:    ToLinkDTO(*existing),
			Created: false,
		}, nil
	}

	link := &models.Link{
		UserID:      userID,
		OriginalURL: request.OriginalURL,
	}

	if err := lf.insertWithFreshCode(ctx, link); err != nil {
		errMsg := fmt.Sprintf("Link creation failed: %s", err.Error())
		_ = lf.LogLinkAction(ctx, userID, models.AuditActionLinkCreated, errMsg, false, &errMsg, metadata)

		if IsCodeSpaceExhausted(err) {
			return nil, NewBusinessError("CODE_SPACE_EXHAUSTED", "Unable to allocate a unique short code", err)
		}
		return nil, NewBusinessError("LINK_CREATION_FAILED", "Link creation failed", err)
	}

	msg := fmt.Sprintf("Link created: %s -> %s", link.ShortCode, link.OriginalURL)
	_ = lf.LogLinkAction(ctx, userID, models.AuditActionLinkCreated, msg, true, nil, metadata)

	return &dto.CreateLinkData{
		Link:    ToLinkDTO(*link),
		Created: true,
	}, nil
}

// ListLinks returns all links owned by the user, newest first
func (lf *LinkFlowImpl) ListLinks(ctx context.Context, userID uint) (*dto.ListLinksData, error) {
	links, err := lf.linkRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, NewBusinessError("LINK_LIST_FAILED", "Failed to list links", err)
	}

	items := make([]dto.LinkDTO, 0, len(links))
	for _, link := range links {
		items = append(items, ToLinkDTO(*link))
	}

	return &dto.ListLinksData{
		Links: items,
		Total: len(items),
	}, nil
}

// UpdateLink replaces the original URL and regenerates the short code.
// Links owned by other users are reported as not found.
func (lf *LinkFlowImpl) UpdateLink(ctx context.Context, userID uint, linkID uint, request *dto.UpdateLinkRequest, metadata *ClientMetadata) (*dto.LinkDTO, error) {
	if err := validateOriginalURL(request.OriginalURL); err != nil {
		return nil, NewBusinessError("INVALID_ORIGINAL_URL", "Original URL is invalid", err)
	}

	link, err := lf.ownedLink(ctx, userID, linkID)
	if err != nil {
		return nil, err
	}

	oldCode := link.ShortCode
	link.OriginalURL = request.OriginalURL

	if err := lf.updateWithFreshCode(ctx, link); err != nil {
		errMsg := fmt.Sprintf("Link update failed: %s", err.Error())
		_ = lf.LogLinkAction(ctx, userID, models.AuditActionLinkUpdated, errMsg, false, &errMsg, metadata)

		if IsCodeSpaceExhausted(err) {
			return nil, NewBusinessError("CODE_SPACE_EXHAUSTED", "Unable to allocate a unique short code", err)
		}
		return nil, NewBusinessError("LINK_UPDATE_FAILED", "Link update failed", err)
	}

	// Stale resolve entries must not outlive the old code
	lf.cache.Invalidate(ctx, oldCode)

	msg := fmt.Sprintf("Link updated: %d now %s -> %s", link.ID, link.ShortCode, link.OriginalURL)
	_ = lf.LogLinkAction(ctx, userID, models.AuditActionLinkUpdated, msg, true, nil, metadata)

	result := ToLinkDTO(*link)
	return &result, nil
}

// DeleteLink removes a link and its recorded clicks.
// Links owned by other users are reported as not found.
func (lf *LinkFlowImpl) DeleteLink(ctx context.Context, userID uint, linkID uint, metadata *ClientMetadata) error {
	link, err := lf.ownedLink(ctx, userID, linkID)
	if err != nil {
		return err
	}

	err = repository.WithTransaction(ctx, lf.db, func(ctx context.Context) error {
		if err := lf.clickStatRepo.DeleteByLink(ctx, link.ID); err != nil {
			return err
		}
		return lf.linkRepo.Delete(ctx, link.ID)
	})

	if err != nil {
		errMsg := fmt.Sprintf("Link deletion failed: %s", err.Error())
		_ = lf.LogLinkAction(ctx, userID, models.AuditActionLinkDeleted, errMsg, false, &errMsg, metadata)

		return NewBusinessError("LINK_DELETION_FAILED", "Link deletion failed", err)
	}

	lf.cache.Invalidate(ctx, link.ShortCode)

	msg := fmt.Sprintf("Link deleted: %d (%s)", link.ID, link.ShortCode)
	_ = lf.LogLinkAction(ctx, userID, models.AuditActionLinkDeleted, msg, true, nil, metadata)

	return nil
}

// Private helper methods

// ownedLink loads a link and hides ownership mismatches behind not-found
func (lf *LinkFlowImpl) ownedLink(ctx context.Context, userID uint, linkID uint) (*models.Link, error) {
	link, err := lf.linkRepo.ByID(ctx, linkID)
	if err != nil {
		return nil, NewBusinessError("LINK_LOOKUP_FAILED", "Link lookup failed", err)
	}
	if link == nil || link.UserID != userID {
		return nil, NewBusinessError("LINK_NOT_FOUND", "Link not found", ErrLinkNotFound)
	}
	return link, nil
}

// insertWithFreshCode allocates a code and inserts the link. The generator
// checks existence before use, but the check and the insert are not atomic,
// so a concurrent insert can still trip the unique constraint. Those races
// are caught here and retried with a new code within the same attempt budget.
func (lf *LinkFlowImpl) insertWithFreshCode(ctx context.Context, link *models.Link) error {
	for attempt := 0; attempt < utils.ShortCodeMaxAttempts; attempt++ {
		code, err := lf.codeService.GenerateUnique(ctx, lf.linkRepo.ShortCodeExists, lf.codeService.DefaultLength())
		if err != nil {
			if errors.Is(err, services.ErrCodeSpaceExhausted) {
				return ErrCodeSpaceExhausted
			}
			return err
		}

		link.ShortCode = code
		err = lf.linkRepo.Save(ctx, link)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrDuplicateShortCode) {
			return err
		}
	}
	return ErrCodeSpaceExhausted
}

// updateWithFreshCode is the update-path twin of insertWithFreshCode
func (lf *LinkFlowImpl) updateWithFreshCode(ctx context.Context, link *models.Link) error {
	for attempt := 0; attempt < utils.ShortCodeMaxAttempts; attempt++ {
		code, err := lf.codeService.GenerateUnique(ctx, lf.linkRepo.ShortCodeExists, lf.codeService.DefaultLength())
		if err != nil {
			if errors.Is(err, services.ErrCodeSpaceExhausted) {
				return ErrCodeSpaceExhausted
			}
			return err
		}

		link.ShortCode = code
		err = lf.linkRepo.Update(ctx, link)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrDuplicateShortCode) {
			return err
		}
	}
	return ErrCodeSpaceExhausted
}

func validateOriginalURL(rawURL string) error {
	if rawURL == "" {
		return ErrOriginalURLRequired
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ErrOriginalURLInvalid
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return ErrOriginalURLInvalid
	}

	return nil
}

func (lf *LinkFlowImpl) LogLinkAction(ctx context.Context, userID uint, action string, description string, success bool, errMsg *string, metadata *ClientMetadata) error {
	ipAddress := "127.0.0.1"
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	audit := &models.AuditLog{
		UserID:       &userID,
		Action:       action,
		Description:  &description,
		Success:      utils.ToPtr(success),
		IPAddress:    &ipAddress,
		UserAgent:    &userAgent,
		ErrorMessage: errMsg,
	}

	requestID := ctx.Value(utils.RequestIDKey)
	if requestID != nil {
		requestIDStr, ok := requestID.(string)
		if ok {
			audit.RequestID = &requestIDStr
		}
	}

	return lf.auditRepo.Save(ctx, audit)
}
