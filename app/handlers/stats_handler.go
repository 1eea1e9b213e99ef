package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v3"
	"github.com/rezashm/linkdrop/app/dto"
	"github.com/rezashm/linkdrop/app/middleware"
	businessflow "github.com/rezashm/linkdrop/business_flow"
)

// StatsHandlerInterface defines the contract for click statistics handlers
type StatsHandlerInterface interface {
	GetStats(c fiber.Ctx) error
	ExportStats(c fiber.Ctx) error
}

// StatsHandler handles click statistics HTTP requests
type StatsHandler struct {
	statsFlow businessflow.StatsFlow
	logger    *slog.Logger
}

func (h *StatsHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *StatsHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(statsFlow businessflow.StatsFlow, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{
		statsFlow: statsFlow,
		logger:    logger,
	}
}

// GetStats returns click analytics for one of the user's links
func (h *StatsHandler) GetStats(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	shortCode := c.Params("shortCode")
	if shortCode == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Short code is required", "SHORT_CODE_REQUIRED", nil)
	}

	result, err := h.statsFlow.GetStats(createRequestContext(c, "/stats/:shortCode"), userID, shortCode)
	if err != nil {
		if businessflow.IsLinkNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Link not found", dto.ErrorLinkNotFound, nil)
		}
		if businessflow.IsLinkAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Link access denied", dto.ErrorStatsAccessDenied, nil)
		}

		h.logger.Error("stats fetch failed", slog.Any("error", err))
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch statistics", "STATS_FETCH_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Statistics retrieved successfully", result)
}

// ExportStats streams the click history as an Excel workbook
func (h *StatsHandler) ExportStats(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	shortCode := c.Params("shortCode")
	if shortCode == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Short code is required", "SHORT_CODE_REQUIRED", nil)
	}

	metadata := clientMetadataFromRequest(c)

	filename, content, err := h.statsFlow.ExportStats(createRequestContext(c, "/stats/:shortCode/export"), userID, shortCode, metadata)
	if err != nil {
		if businessflow.IsLinkNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Link not found", dto.ErrorLinkNotFound, nil)
		}
		if businessflow.IsLinkAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Link access denied", dto.ErrorStatsAccessDenied, nil)
		}

		h.logger.Error("stats export failed", slog.Any("error", err))
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to export statistics", "STATS_EXPORT_FAILED", nil)
	}

	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", "attachment; filename=\""+filename+"\"")
	return c.Status(fiber.StatusOK).Send(content)
}
