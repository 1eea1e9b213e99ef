// Package businessflow contains the core business logic and use cases for link shortening workflows
package businessflow

import (
	"context"
	"log/slog"
	"time"

	"github.com/rezashm/linkdrop/app/services"
	"github.com/rezashm/linkdrop/models"
	"github.com/rezashm/linkdrop/repository"
)

// clickLogTimeout bounds the detached click logging work, including the
// geolocation lookup
const clickLogTimeout = 10 * time.Second

// VisitFlow resolves short codes to their original URLs
type VisitFlow interface {
	Visit(ctx context.Context, shortCode string, metadata *ClientMetadata) (string, error)
}

// VisitFlowImpl implements the short link resolution flow
type VisitFlowImpl struct {
	linkRepo      repository.LinkRepository
	clickStatRepo repository.ClickStatRepository
	geoService    services.GeoIPService
	cache         services.LinkCache
	logger        *slog.Logger
}

// NewVisitFlow creates a new visit flow instance
func NewVisitFlow(
	linkRepo repository.LinkRepository,
	clickStatRepo repository.ClickStatRepository,
	geoService services.GeoIPService,
	cache services.LinkCache,
	logger *slog.Logger,
) VisitFlow {
	return &VisitFlowImpl{
		linkRepo:      linkRepo,
		clickStatRepo: clickStatRepo,
		geoService:    geoService,
		cache:         cache,
		logger:        logger,
	}
}

// Visit resolves a short code and returns the original URL for redirecting.
// Click recording runs in a detached goroutine with its own deadline so its
// latency and failures never delay or break the redirect.
func (vf *VisitFlowImpl) Visit(ctx context.Context, shortCode string, metadata *ClientMetadata) (string, error) {
	if shortCode == "" {
		return "", NewBusinessError("SHORT_CODE_REQUIRED", "Short code is required", ErrShortCodeRequired)
	}

	if originalURL, ok := vf.cache.Get(ctx, shortCode); ok {
		go vf.logClick(shortCode, metadata)
		return originalURL, nil
	}

	link, err := vf.linkRepo.ByShortCode(ctx, shortCode)
	if err != nil {
		return "", NewBusinessError("LINK_LOOKUP_FAILED", "Link lookup failed", err)
	}
	if link == nil {
		return "", NewBusinessError("LINK_NOT_FOUND", "Link not found", ErrLinkNotFound)
	}

	vf.cache.Set(ctx, shortCode, link.OriginalURL)

	go vf.logClick(shortCode, metadata)

	return link.OriginalURL, nil
}

// logClick records one click stat for a resolution. It runs outside the
// request lifecycle, on a background context, and never propagates failures.
func (vf *VisitFlowImpl) logClick(shortCode string, metadata *ClientMetadata) {
	ctx, cancel := context.WithTimeout(context.Background(), clickLogTimeout)
	defer cancel()

	// Resolve again here rather than carrying the row across goroutines;
	// a deleted link simply drops the click
	link, err := vf.linkRepo.ByShortCode(ctx, shortCode)
	if err != nil || link == nil {
		if err != nil {
			vf.logger.Warn("click logging: link lookup failed",
				slog.String("short_code", shortCode),
				slog.Any("error", err))
		}
		return
	}

	forwardedFor := ""
	remoteAddr := ""
	rawUA := ""
	if metadata != nil {
		forwardedFor = metadata.ForwardedFor
		remoteAddr = metadata.IPAddress
		rawUA = metadata.UserAgent
	}

	clientIP := services.ClientIP(forwardedFor, remoteAddr)
	agent := services.ParseUserAgent(rawUA)
	region := vf.geoService.Region(ctx, clientIP)

	stat := &models.ClickStat{
		LinkID:         link.ID,
		IP:             &clientIP,
		Region:         &region,
		Browser:        &agent.Browser,
		BrowserVersion: &agent.BrowserVersion,
		OS:             &agent.OS,
	}
	if rawUA != "" {
		stat.UserAgent = &rawUA
	}

	if err := vf.clickStatRepo.Save(ctx, stat); err != nil {
		vf.logger.Warn("click logging: failed to persist click stat",
			slog.String("short_code", shortCode),
			slog.Uint64("link_id", uint64(link.ID)),
			slog.Any("error", err))
	}
}
