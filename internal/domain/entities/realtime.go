package entities

// CurrentVisitor is one live entry of a page's active-visitor set.
type CurrentVisitor struct {
	VisitorID  string `json:"visitor_id"`
	LastActive string `json:"last_active"`
}

// RealTimeData is the ephemeral "pulse" of a page. It comes from the
// TTL-bounded counter store, not the event log, and may undercount after a
// restart.
type RealTimeData struct {
	ActiveVisitors  int64            `json:"active_visitors"`
	ViewsLastHour   int64            `json:"views_last_hour"`
	ViewsToday      int64            `json:"views_today"`
	CurrentVisitors []CurrentVisitor `json:"current_visitors"`
}
