package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/pagecraft/analytics-api/internal/application/usecases"
	"github.com/pagecraft/analytics-api/internal/domain/repositories"
)

// TrackHandler serves published pages to the public and feeds the tracking
// pipeline as a side effect. Tracking failures are logged and swallowed; a
// visitor always gets the page if it exists.
type TrackHandler struct {
	trackingUseCase usecases.TrackingUseCase
	pageRepo        repositories.PageRepository
}

func NewTrackHandler(trackingUseCase usecases.TrackingUseCase, pageRepo repositories.PageRepository) *TrackHandler {
	return &TrackHandler{
		trackingUseCase: trackingUseCase,
		pageRepo:        pageRepo,
	}
}

// ServePage resolves /:clientSlug/:pageSlug to a published page. Unpublished
// and unknown pages are both a plain 404.
func (h *TrackHandler) ServePage(c *fiber.Ctx) error {
	page, err := h.pageRepo.FindPublished(c.Params("clientSlug"), c.Params("pageSlug"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "page not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load page",
		})
	}

	sessionID, _ := c.Locals("session_id").(string)

	tc := usecases.TrackingContext{
		IP:          c.IP(),
		UserAgent:   c.Get(fiber.HeaderUserAgent),
		Referrer:    c.Get(fiber.HeaderReferer),
		SessionID:   sessionID,
		UtmSource:   c.Query("utm_source"),
		UtmMedium:   c.Query("utm_medium"),
		UtmCampaign: c.Query("utm_campaign"),
		UtmTerm:     c.Query("utm_term"),
		UtmContent:  c.Query("utm_content"),
	}

	if err := h.trackingUseCase.TrackPageView(c.Context(), page, tc); err != nil {
		log.Printf("tracking failed for page %d: %v", page.ID, err)
	}

	return c.JSON(fiber.Map{
		"id":      page.ID,
		"title":   page.Title,
		"slug":    page.Slug,
		"content": page.PublishedContent,
	})
}
