package usecases

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/pagecraft/analytics-api/internal/domain/entities"
	"github.com/pagecraft/analytics-api/internal/domain/repositories"
	"github.com/pagecraft/analytics-api/internal/utils"
)

var exportHeaders = []string{
	"Date & Time",
	"Page Title",
	"Visitor ID",
	"IP Address",
	"Country",
	"City",
	"Device Type",
	"Browser",
	"Operating System",
	"Referrer",
	"Session ID",
	"Status",
}

// ExportUseCase turns raw events into the anonymized tabular export. It
// always reads the event log directly - exports are never aggregated and
// never cached.
type ExportUseCase interface {
	Headers() []string
	BuildRows(page *entities.Page, period string) ([][]string, error)
}

type exportUseCase struct {
	repo  repositories.AnalyticsRepository
	nowFn func() time.Time
}

func NewExportUseCase(repo repositories.AnalyticsRepository) *exportUseCase {
	return &exportUseCase{
		repo:  repo,
		nowFn: time.Now,
	}
}

func (uc *exportUseCase) Headers() []string {
	return exportHeaders
}

// BuildRows produces one anonymized row per raw event in the period, oldest
// first.
func (uc *exportUseCase) BuildRows(page *entities.Page, period string) ([][]string, error) {
	r := utils.PeriodRange(utils.ParsePeriod(period), uc.nowFn())

	events, err := uc.repo.EventsForExport(page.ID, r)
	if err != nil {
		return nil, fmt.Errorf("export events: %w", err)
	}

	rows := make([][]string, 0, len(events))
	for _, e := range events {
		rows = append(rows, []string{
			e.CreatedAt.Format("2006-01-02 15:04:05"),
			e.PageTitle,
			anonymizeVisitorID(e.VisitorID),
			anonymizeIP(e.IPAddress),
			fallback(e.Country, "Unknown"),
			fallback(e.City, "Unknown"),
			orUnknown(e.DeviceType),
			orUnknown(e.Browser),
			orUnknown(e.Platform),
			fallback(e.Referrer, "Direct"),
			e.SessionID,
			"Viewed",
		})
	}

	return rows, nil
}

// anonymizeVisitorID keeps the first 8 and last 4 characters of the id.
func anonymizeVisitorID(id string) string {
	prefix := id
	if len(id) > 8 {
		prefix = id[:8]
	}
	suffix := id
	if len(id) > 4 {
		suffix = id[len(id)-4:]
	}
	return prefix + "..." + suffix
}

// anonymizeIP masks the last IPv4 octet with ".xxx" and the last IPv6 group
// with ":xxxx". Unparsable addresses render as "Invalid IP", absent ones as
// "N/A".
func anonymizeIP(ip *string) string {
	if ip == nil || *ip == "" {
		return "N/A"
	}

	parsed := net.ParseIP(*ip)
	if parsed == nil {
		return "Invalid IP"
	}

	// V4-mapped addresses in hex form ("::ffff:0:0") parse as IPv4 but
	// carry no dots; mask those like the IPv6 they were written as.
	if parsed.To4() != nil {
		if idx := strings.LastIndex(*ip, "."); idx >= 0 {
			return (*ip)[:idx] + ".xxx"
		}
	}

	idx := strings.LastIndex(*ip, ":")
	return (*ip)[:idx] + ":xxxx"
}

func fallback(s *string, def string) string {
	if s == nil || *s == "" {
		return def
	}
	return *s
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
