package api

import (
	"net/http"
	"net/url"

	"github.com/textlinq/smsbridge-admin/internal/models"
)

// Cache tags for HighLevel accounts. List results additionally carry one
// tag per item so an update to a single account only refetches lists that
// contain it.
const (
	TagGHLAccount     = "GHLAccount"
	TagGHLAccountList = "GHLAccount:LIST"
)

const ghlAccountsPath = "/core/ghl-auth-credentials/"

func ghlAccountTag(id string) string { return TagGHLAccount + ":" + id }

// GHLAccountListArgs pages and searches HighLevel accounts.
type GHLAccountListArgs struct {
	Page   int    `json:"page,omitempty"`
	Search string `json:"search,omitempty"`
}

// GHLAccountList lists HighLevel accounts.
var GHLAccountList = Query[GHLAccountListArgs, models.Page[models.GHLAccount]]{
	Name: "ghlAccountList",
	Path: ghlAccountsPath,
	Params: func(a GHLAccountListArgs) url.Values {
		v := url.Values{}
		setInt(v, "page", a.Page)
		setStr(v, "search", a.Search)
		return v
	},
	Tags: func(GHLAccountListArgs) []string {
		return []string{TagGHLAccount, TagGHLAccountList}
	},
	ResultTags: func(p models.Page[models.GHLAccount]) []string {
		tags := make([]string, 0, len(p.Results))
		for _, acc := range p.Results {
			tags = append(tags, ghlAccountTag(acc.ID))
		}
		return tags
	},
}

// GHLAccountCreate connects a new HighLevel account.
var GHLAccountCreate = Mutation[models.GHLAccountInput, models.GHLAccount]{
	Name:   "ghlAccountCreate",
	Method: http.MethodPost,
	Path:   ghlAccountsPath,
	Body:   func(in models.GHLAccountInput) any { return in },
	Invalidates: func(models.GHLAccountInput) []string {
		return []string{TagGHLAccountList}
	},
}

// GHLAccountUpdateArgs carries the target ID and the new field values.
type GHLAccountUpdateArgs struct {
	ID    string                 `json:"id"`
	Input models.GHLAccountInput `json:"input"`
}

// GHLAccountUpdate updates one account; only lists containing it refetch.
var GHLAccountUpdate = Mutation[GHLAccountUpdateArgs, models.GHLAccount]{
	Name:   "ghlAccountUpdate",
	Method: http.MethodPut,
	PathFn: func(a GHLAccountUpdateArgs) string { return ghlAccountsPath + a.ID + "/" },
	Body:   func(a GHLAccountUpdateArgs) any { return a.Input },
	Invalidates: func(a GHLAccountUpdateArgs) []string {
		return []string{ghlAccountTag(a.ID)}
	},
}

// GHLAccountDeleteArgs identifies the account to disconnect.
type GHLAccountDeleteArgs struct {
	ID string `json:"id"`
}

// GHLAccountDelete disconnects an account. Mappings referencing it are
// server-side cascaded, so mapping lists go stale too.
var GHLAccountDelete = Mutation[GHLAccountDeleteArgs, struct{}]{
	Name:   "ghlAccountDelete",
	Method: http.MethodDelete,
	PathFn: func(a GHLAccountDeleteArgs) string { return ghlAccountsPath + a.ID + "/" },
	Invalidates: func(a GHLAccountDeleteArgs) []string {
		return []string{TagGHLAccountList, ghlAccountTag(a.ID), TagMapping}
	},
}
