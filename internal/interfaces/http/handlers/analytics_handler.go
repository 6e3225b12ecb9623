package handlers

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/pagecraft/analytics-api/internal/application/usecases"
	"github.com/pagecraft/analytics-api/internal/domain/entities"
	"github.com/pagecraft/analytics-api/internal/domain/repositories"
	"github.com/pagecraft/analytics-api/internal/utils"
)

// AnalyticsHandler serves the authenticated dashboard endpoints. Every route
// resolves the page through the caller's client id, so a client can never
// read another client's numbers.
type AnalyticsHandler struct {
	analyticsUseCase usecases.AnalyticsUseCase
	exportUseCase    usecases.ExportUseCase
	pageRepo         repositories.PageRepository
}

func NewAnalyticsHandler(analyticsUseCase usecases.AnalyticsUseCase, exportUseCase usecases.ExportUseCase, pageRepo repositories.PageRepository) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsUseCase: analyticsUseCase,
		exportUseCase:    exportUseCase,
		pageRepo:         pageRepo,
	}
}

func clientID(c *fiber.Ctx) uint64 {
	id, _ := c.Locals("client_id").(uint64)
	return id
}

// loadPage resolves the :id route param against the authenticated client.
// Pages that do not exist and pages owned by someone else both come back as
// 404.
func (h *AnalyticsHandler) loadPage(c *fiber.Ctx) (*entities.Page, error) {
	pageID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid page id",
		})
	}

	page, err := h.pageRepo.FindForClient(pageID, clientID(c))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "page not found",
			})
		}
		return nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load page",
		})
	}

	return page, nil
}

// GetPageAnalytics returns the full stats bundle plus the live counters for
// one page.
func (h *AnalyticsHandler) GetPageAnalytics(c *fiber.Ctx) error {
	page, err := h.loadPage(c)
	if page == nil {
		return err
	}

	period := utils.ParsePeriod(c.Query("period", "30d"))

	stats, err := h.analyticsUseCase.GetPageStats(page, period)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fmt.Sprintf("failed to compute page analytics: %s", err.Error()),
		})
	}

	return c.JSON(fiber.Map{
		"page_id":   page.ID,
		"period":    period,
		"stats":     stats,
		"real_time": h.analyticsUseCase.GetRealTimeData(page),
	})
}

// GetRealTimeVisitors returns only the live counters, cheap enough to poll.
func (h *AnalyticsHandler) GetRealTimeVisitors(c *fiber.Ctx) error {
	page, err := h.loadPage(c)
	if page == nil {
		return err
	}

	return c.JSON(fiber.Map{
		"page_id":   page.ID,
		"real_time": h.analyticsUseCase.GetRealTimeData(page),
	})
}

func (h *AnalyticsHandler) GetVisitorTimeline(c *fiber.Ctx) error {
	page, err := h.loadPage(c)
	if page == nil {
		return err
	}

	period := utils.ParsePeriod(c.Query("period", "30d"))

	timeline, stats, err := h.analyticsUseCase.GetVisitorTimeline(page, period)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fmt.Sprintf("failed to compute timeline: %s", err.Error()),
		})
	}

	return c.JSON(fiber.Map{
		"page_id":  page.ID,
		"period":   period,
		"timeline": timeline,
		"stats":    stats,
	})
}

func (h *AnalyticsHandler) GetGeographicData(c *fiber.Ctx) error {
	page, err := h.loadPage(c)
	if page == nil {
		return err
	}

	period := utils.ParsePeriod(c.Query("period", "30d"))

	geo, err := h.analyticsUseCase.GetGeographicData(page, period)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fmt.Sprintf("failed to compute geographic data: %s", err.Error()),
		})
	}

	return c.JSON(fiber.Map{
		"page_id": page.ID,
		"period":  period,
		"data":    geo,
	})
}

func (h *AnalyticsHandler) GetDeviceAnalytics(c *fiber.Ctx) error {
	page, err := h.loadPage(c)
	if page == nil {
		return err
	}

	period := utils.ParsePeriod(c.Query("period", "30d"))

	devices, err := h.analyticsUseCase.GetDeviceData(page, period)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fmt.Sprintf("failed to compute device data: %s", err.Error()),
		})
	}

	return c.JSON(fiber.Map{
		"page_id": page.ID,
		"period":  period,
		"data":    devices,
	})
}

func (h *AnalyticsHandler) GetTrafficSources(c *fiber.Ctx) error {
	page, err := h.loadPage(c)
	if page == nil {
		return err
	}

	period := utils.ParsePeriod(c.Query("period", "30d"))

	referrers, campaigns, err := h.analyticsUseCase.GetTrafficSources(page, period)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fmt.Sprintf("failed to compute traffic sources: %s", err.Error()),
		})
	}

	return c.JSON(fiber.Map{
		"page_id":   page.ID,
		"period":    period,
		"referrers": referrers,
		"campaigns": campaigns,
	})
}

// GetClientAnalytics rolls up all of the authenticated client's pages.
func (h *AnalyticsHandler) GetClientAnalytics(c *fiber.Ctx) error {
	client := &entities.Client{ID: clientID(c)}
	period := utils.ParsePeriod(c.Query("period", "30d"))

	summary, err := h.analyticsUseCase.GetClientSummary(client, period)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fmt.Sprintf("failed to compute client analytics: %s", err.Error()),
		})
	}

	return c.JSON(fiber.Map{
		"client_id": client.ID,
		"period":    period,
		"summary":   summary,
	})
}

func (h *AnalyticsHandler) GetTopPages(c *fiber.Ctx) error {
	client := &entities.Client{ID: clientID(c)}
	period := utils.ParsePeriod(c.Query("period", "30d"))

	limit, err := strconv.Atoi(c.Query("limit", "10"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 10
	}

	topPages, err := h.analyticsUseCase.GetTopPages(client, period, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fmt.Sprintf("failed to compute top pages: %s", err.Error()),
		})
	}

	totalPages, err := h.pageRepo.CountClientPages(client.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to count pages",
		})
	}

	return c.JSON(fiber.Map{
		"client_id":   client.ID,
		"period":      period,
		"top_pages":   topPages,
		"total_pages": totalPages,
	})
}

// ExportPageAnalytics downloads the period's raw events as an anonymized CSV
// attachment.
func (h *AnalyticsHandler) ExportPageAnalytics(c *fiber.Ctx) error {
	page, err := h.loadPage(c)
	if page == nil {
		return err
	}

	period := utils.ParsePeriod(c.Query("period", "30d"))

	rows, err := h.exportUseCase.BuildRows(page, period)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fmt.Sprintf("failed to build export: %s", err.Error()),
		})
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(h.exportUseCase.Headers()); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to write export",
		})
	}
	if err := w.WriteAll(rows); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to write export",
		})
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="analytics-%s-%s.csv"`, page.Slug, period))
	return c.Send(buf.Bytes())
}
