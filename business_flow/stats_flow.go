// Package businessflow contains the core business logic and use cases for link shortening workflows
package businessflow

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rezashm/linkdrop/app/dto"
	"github.com/rezashm/linkdrop/models"
	"github.com/rezashm/linkdrop/repository"
	"github.com/rezashm/linkdrop/utils"
	"github.com/xuri/excelize/v2"
)

// StatsFlow exposes click analytics for a user's links
type StatsFlow interface {
	GetStats(ctx context.Context, userID uint, shortCode string) (*dto.StatsData, error)
	ExportStats(ctx context.Context, userID uint, shortCode string, metadata *ClientMetadata) (string, []byte, error)
}

// StatsFlowImpl implements the click statistics flow
type StatsFlowImpl struct {
	linkRepo      repository.LinkRepository
	clickStatRepo repository.ClickStatRepository
	auditRepo     repository.AuditLogRepository
}

// NewStatsFlow creates a new stats flow instance
func NewStatsFlow(
	linkRepo repository.LinkRepository,
	clickStatRepo repository.ClickStatRepository,
	auditRepo repository.AuditLogRepository,
) StatsFlow {
	return &StatsFlowImpl{
		linkRepo:      linkRepo,
		clickStatRepo: clickStatRepo,
		auditRepo:     auditRepo,
	}
}

// GetStats returns all recorded clicks for a short code.
// Unlike link mutation, requesting stats for another user's link is an
// explicit access denial rather than a hidden not-found.
func (sf *StatsFlowImpl) GetStats(ctx context.Context, userID uint, shortCode string) (*dto.StatsData, error) {
	link, err := sf.authorizedLink(ctx, userID, shortCode)
	if err != nil {
		return nil, err
	}

	stats, err := sf.clickStatRepo.ListByLink(ctx, link.ID)
	if err != nil {
		return nil, NewBusinessError("STATS_FETCH_FAILED", "Failed to fetch click statistics", err)
	}

	items := make([]dto.ClickStatDTO, 0, len(stats))
	for _, stat := range stats {
		items = append(items, ToClickStatDTO(*stat))
	}

	return &dto.StatsData{
		ShortCode:  link.ShortCode,
		TotalCount: len(items),
		Stats:      items,
	}, nil
}

// ExportStats builds an Excel workbook with one row per click
func (sf *StatsFlowImpl) ExportStats(ctx context.Context, userID uint, shortCode string, metadata *ClientMetadata) (string, []byte, error) {
	link, err := sf.authorizedLink(ctx, userID, shortCode)
	if err != nil {
		return "", nil, err
	}

	stats, err := sf.clickStatRepo.ListByLink(ctx, link.ID)
	if err != nil {
		return "", nil, NewBusinessError("STATS_FETCH_FAILED", "Failed to fetch click statistics", err)
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	sheet := sanitizeSheetName(link.ShortCode)
	xl.SetSheetName(xl.GetSheetName(0), sheet)

	header := []string{"id", "ip", "region", "browser", "browser_version", "os", "clicked_at"}
	_ = xl.SetSheetRow(sheet, "A1", &header)

	deref := func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	}

	for ri, stat := range stats {
		record := []any{
			strconv.FormatUint(uint64(stat.ID), 10),
			deref(stat.IP),
			deref(stat.Region),
			deref(stat.Browser),
			deref(stat.BrowserVersion),
			deref(stat.OS),
			stat.CreatedAt.Format(time.RFC3339),
		}

		cellRef, _ := excelize.CoordinatesToCellName(1, ri+2)
		_ = xl.SetSheetRow(sheet, cellRef, &record)
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
	}

	msg := fmt.Sprintf("Stats exported for link %d (%s), %d clicks", link.ID, link.ShortCode, len(stats))
	_ = sf.LogStatsExport(ctx, userID, msg, metadata)

	filename := fmt.Sprintf("clicks_%s.xlsx", link.ShortCode)
	return filename, buf.Bytes(), nil
}

// Private helper methods

func (sf *StatsFlowImpl) authorizedLink(ctx context.Context, userID uint, shortCode string) (*models.Link, error) {
	if shortCode == "" {
		return nil, NewBusinessError("SHORT_CODE_REQUIRED", "Short code is required", ErrShortCodeRequired)
	}

	link, err := sf.linkRepo.ByShortCode(ctx, shortCode)
	if err != nil {
		return nil, NewBusinessError("LINK_LOOKUP_FAILED", "Link lookup failed", err)
	}
	if link == nil {
		return nil, NewBusinessError("LINK_NOT_FOUND", "Link not found", ErrLinkNotFound)
	}
	if link.UserID != userID {
		return nil, NewBusinessError("STATS_ACCESS_DENIED", "Link access denied", ErrLinkAccessDenied)
	}

	return link, nil
}

func (sf *StatsFlowImpl) LogStatsExport(ctx context.Context, userID uint, description string, metadata *ClientMetadata) error {
	ipAddress := "127.0.0.1"
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	audit := &models.AuditLog{
		UserID:      &userID,
		Action:      models.AuditActionStatsExported,
		Description: &description,
		Success:     utils.ToPtr(true),
		IPAddress:   &ipAddress,
		UserAgent:   &userAgent,
	}

	requestID := ctx.Value(utils.RequestIDKey)
	if requestID != nil {
		requestIDStr, ok := requestID.(string)
		if ok {
			audit.RequestID = &requestIDStr
		}
	}

	return sf.auditRepo.Save(ctx, audit)
}

func sanitizeSheetName(name string) string {
	// Excel sheet names cannot contain: : \ / ? * [ ] and must be <= 31 chars
	replacer := strings.NewReplacer(":", "_", "\\", "_", "/", "_", "?", "_", "*", "_", "[", "_", "]", "_")
	safe := replacer.Replace(name)
	safe = strings.TrimSpace(safe)
	if len(safe) > 31 {
		safe = safe[:31]
	}
	if safe == "" {
		return "Sheet"
	}
	return safe
}
