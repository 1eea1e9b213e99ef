// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/rezashm/linkdrop/app/dto"
	"github.com/rezashm/linkdrop/app/middleware"
	businessflow "github.com/rezashm/linkdrop/business_flow"
)

// LinkHandlerInterface defines the contract for link management handlers
type LinkHandlerInterface interface {
	ListLinks(c fiber.Ctx) error
	CreateLink(c fiber.Ctx) error
	UpdateLink(c fiber.Ctx) error
	DeleteLink(c fiber.Ctx) error
}

// LinkHandler handles link management HTTP requests
type LinkHandler struct {
	linkFlow  businessflow.LinkFlow
	validator *validator.Validate
	logger    *slog.Logger
}

func (h *LinkHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *LinkHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// NewLinkHandler creates a new link management handler
func NewLinkHandler(linkFlow businessflow.LinkFlow, logger *slog.Logger) *LinkHandler {
	handler := &LinkHandler{
		linkFlow:  linkFlow,
		validator: validator.New(),
		logger:    logger,
	}

	setupCustomValidations(handler.validator)

	return handler
}

// ListLinks returns all links owned by the authenticated user
func (h *LinkHandler) ListLinks(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	result, err := h.linkFlow.ListLinks(createRequestContext(c, "/links"), userID)
	if err != nil {
		h.logger.Error("listing links failed", slog.Any("error", err))
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list links", "LINK_LIST_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Links retrieved successfully", result)
}

// CreateLink shortens a URL for the authenticated user.
// Resubmitting a URL already shortened by the same user returns the existing
// link with 200 instead of 201.
func (h *LinkHandler) CreateLink(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	var req dto.CreateLinkRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := clientMetadataFromRequest(c)

	result, err := h.linkFlow.CreateLink(createRequestContext(c, "/links"), userID, &req, metadata)
	if err != nil {
		if businessflow.IsOriginalURLRequired(err) || businessflow.IsOriginalURLInvalid(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Original URL is invalid", "INVALID_ORIGINAL_URL", nil)
		}
		if businessflow.IsCodeSpaceExhausted(err) {
			return h.ErrorResponse(c, fiber.StatusInternalServerError, "Unable to allocate a unique short code", dto.ErrorCodeSpaceExhausted, nil)
		}

		h.logger.Error("link creation failed", slog.Any("error", err))
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Link creation failed", "LINK_CREATION_FAILED", nil)
	}

	status := fiber.StatusCreated
	message := "Link created successfully"
	if !result.Created {
		status = fiber.StatusOK
		message = "Link already exists"
	}

	return h.SuccessResponse(c, status, message, result)
}

// UpdateLink replaces the destination URL and regenerates the short code
func (h *LinkHandler) UpdateLink(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	linkID, err := parseLinkID(c)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid link ID", "INVALID_LINK_ID", nil)
	}

	var req dto.UpdateLinkRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := clientMetadataFromRequest(c)

	result, err := h.linkFlow.UpdateLink(createRequestContext(c, "/links/:id"), userID, linkID, &req, metadata)
	if err != nil {
		// Foreign links surface as not found, never as forbidden
		if businessflow.IsLinkNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Link not found", dto.ErrorLinkNotFound, nil)
		}
		if businessflow.IsOriginalURLRequired(err) || businessflow.IsOriginalURLInvalid(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Original URL is invalid", "INVALID_ORIGINAL_URL", nil)
		}
		if businessflow.IsCodeSpaceExhausted(err) {
			return h.ErrorResponse(c, fiber.StatusInternalServerError, "Unable to allocate a unique short code", dto.ErrorCodeSpaceExhausted, nil)
		}

		h.logger.Error("link update failed", slog.Any("error", err))
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Link update failed", "LINK_UPDATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Link updated successfully", result)
}

// DeleteLink removes a link and its click history
func (h *LinkHandler) DeleteLink(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	linkID, err := parseLinkID(c)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid link ID", "INVALID_LINK_ID", nil)
	}

	metadata := clientMetadataFromRequest(c)

	if err := h.linkFlow.DeleteLink(createRequestContext(c, "/links/:id"), userID, linkID, metadata); err != nil {
		if businessflow.IsLinkNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Link not found", dto.ErrorLinkNotFound, nil)
		}

		h.logger.Error("link deletion failed", slog.Any("error", err))
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Link deletion failed", "LINK_DELETION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Link deleted successfully", nil)
}

func parseLinkID(c fiber.Ctx) (uint, error) {
	raw := c.Params("id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, strconv.ErrSyntax
	}
	return uint(id), nil
}
