package api

import (
	"net/url"

	"github.com/textlinq/smsbridge-admin/internal/models"
)

// TagDashboard groups cached dashboard summaries.
const TagDashboard = "Dashboard"

const dashboardPath = "/core/dashboard-analytics/"

// DashboardArgs selects the day window and an optional account scope.
type DashboardArgs struct {
	Days       int    `json:"days,omitempty"`
	GHLAccount string `json:"ghl_account,omitempty"`
}

// Dashboard reads the message-volume summary.
var Dashboard = Query[DashboardArgs, models.DashboardSummary]{
	Name: "dashboard",
	Path: dashboardPath,
	Params: func(a DashboardArgs) url.Values {
		v := url.Values{}
		setInt(v, "days", a.Days)
		setStr(v, "ghl_account", a.GHLAccount)
		return v
	},
	Tags: func(DashboardArgs) []string {
		return []string{TagDashboard, TagMessage}
	},
}
