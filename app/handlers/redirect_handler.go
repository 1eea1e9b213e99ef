package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v3"
	"github.com/rezashm/linkdrop/app/middleware"
	businessflow "github.com/rezashm/linkdrop/business_flow"
)

// RedirectHandlerInterface defines the contract for the public short link redirect
type RedirectHandlerInterface interface {
	Visit(c fiber.Ctx) error
}

type RedirectHandler struct {
	visitFlow businessflow.VisitFlow
	logger    *slog.Logger
}

// NewRedirectHandler creates a new redirect handler
func NewRedirectHandler(visitFlow businessflow.VisitFlow, logger *slog.Logger) RedirectHandlerInterface {
	return &RedirectHandler{visitFlow: visitFlow, logger: logger}
}

// Visit resolves a short code and redirects to the original URL.
// The redirect route serves bare responses, not the JSON envelope.
func (h *RedirectHandler) Visit(c fiber.Ctx) error {
	shortCode := c.Params("shortCode")
	if shortCode == "" {
		middleware.RecordRedirect("error")
		return c.Status(fiber.StatusBadRequest).SendString("invalid short link")
	}

	metadata := clientMetadataFromRequest(c)

	originalURL, err := h.visitFlow.Visit(createRequestContext(c, "/links/:shortCode"), shortCode, metadata)
	if err != nil {
		if businessflow.IsLinkNotFound(err) {
			middleware.RecordRedirect("not_found")
			return c.Status(fiber.StatusNotFound).SendString("not found")
		}
		h.logger.Error("short link visit failed",
			slog.String("short_code", shortCode),
			slog.Any("error", err))
		middleware.RecordRedirect("error")
		return c.Status(fiber.StatusInternalServerError).SendString("internal error")
	}

	middleware.RecordRedirect("resolved")
	return c.Redirect().Status(fiber.StatusFound).To(originalURL)
}
