package models

// DayCount is one point of the dashboard message-volume series.
type DayCount struct {
	Date      string `json:"date"` // YYYY-MM-DD
	Sent      int    `json:"sent"`
	Delivered int    `json:"delivered"`
	Failed    int    `json:"failed"`
}

// DashboardSummary is the analytics payload for the dashboard view,
// computed server-side over the requested day window.
type DashboardSummary struct {
	TotalMessages int        `json:"total_messages"`
	Delivered     int        `json:"delivered"`
	Failed        int        `json:"failed"`
	Inbound       int        `json:"inbound"`
	Outbound      int        `json:"outbound"`
	ActiveMappings int       `json:"active_mappings"`
	Days          []DayCount `json:"days"`
}
