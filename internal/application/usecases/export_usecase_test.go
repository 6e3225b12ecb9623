package usecases

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagecraft/analytics-api/internal/domain/entities"
	"github.com/pagecraft/analytics-api/internal/domain/repositories"
)

func str(s string) *string { return &s }

func newExportFixture() (*exportUseCase, *fakeAnalyticsRepo) {
	repo := &fakeAnalyticsRepo{}
	uc := NewExportUseCase(repo)
	uc.nowFn = func() time.Time { return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC) }
	return uc, repo
}

func TestExportHeaders(t *testing.T) {
	uc, _ := newExportFixture()

	assert.Equal(t, []string{
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
	}, uc.Headers())
}

func TestBuildRowsAnonymizesEverySensitiveField(t *testing.T) {
	uc, repo := newExportFixture()
	repo.exportRows = []repositories.ExportRow{
		{
			CreatedAt:  time.Date(2025, 3, 9, 14, 30, 5, 0, time.UTC),
			PageTitle:  "Landing",
			VisitorID:  "abcdefgh12345678",
			IPAddress:  str("203.0.113.7"),
			Country:    str("Brazil"),
			City:       str("Sao Paulo"),
			DeviceType: "desktop",
			Browser:    "chrome",
			Platform:   "windows",
			Referrer:   str("google.com"),
			SessionID:  "sess-1",
		},
	}

	rows, err := uc.BuildRows(&entities.Page{ID: 1}, "30d")
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, []string{
		"2025-03-09 14:30:05",
		"Landing",
		"abcdefgh...5678",
		"203.0.113.xxx",
		"Brazil",
		"Sao Paulo",
		"desktop",
		"chrome",
		"windows",
		"google.com",
		"sess-1",
		"Viewed",
	}, rows[0])
}

func TestBuildRowsFallbacks(t *testing.T) {
	uc, repo := newExportFixture()
	repo.exportRows = []repositories.ExportRow{
		{
			CreatedAt: time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC),
			VisitorID: "ab",
			SessionID: "s",
		},
	}

	rows, err := uc.BuildRows(&entities.Page{ID: 1}, "30d")
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, "N/A", row[3])
	assert.Equal(t, "Unknown", row[4])
	assert.Equal(t, "Unknown", row[5])
	assert.Equal(t, "Unknown", row[6])
	assert.Equal(t, "Unknown", row[7])
	assert.Equal(t, "Unknown", row[8])
	assert.Equal(t, "Direct", row[9])
}

func TestAnonymizeVisitorID(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"abcdefgh12345678", "abcdefgh...5678"},
		{"abc", "abc...abc"},
		{"abcdef", "abcdef...cdef"},
		{"", "..."},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, anonymizeVisitorID(tt.id), tt.id)
	}
}

func TestAnonymizeIP(t *testing.T) {
	tests := []struct {
		name string
		ip   *string
		want string
	}{
		{"ipv4", str("203.0.113.7"), "203.0.113.xxx"},
		{"ipv6", str("2001:db8::1"), "2001:db8::xxxx"},
		{"v4-mapped ipv6 hex form", str("::ffff:0:0"), "::ffff:0:xxxx"},
		{"v4-mapped ipv6 dotted form", str("::ffff:203.0.113.7"), "::ffff:203.0.113.xxx"},
		{"ipv6 full", str("2001:db8:0:0:0:0:0:1"), "2001:db8:0:0:0:0:0:xxxx"},
		{"invalid", str("not-an-ip"), "Invalid IP"},
		{"empty", str(""), "N/A"},
		{"nil", nil, "N/A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, anonymizeIP(tt.ip))
		})
	}
}
