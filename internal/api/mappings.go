package api

import (
	"net/http"
	"net/url"

	"github.com/textlinq/smsbridge-admin/internal/models"
)

// Cache tags for account mappings.
const (
	TagMapping     = "AccountMapping"
	TagMappingList = "AccountMapping:LIST"
)

const mappingsPath = "/core/account-mappings/"

// MappingListArgs pages through account mappings.
type MappingListArgs struct {
	Page     int `json:"page,omitempty"`
	PageSize int `json:"page_size,omitempty"`
}

// MappingList lists account mappings.
var MappingList = Query[MappingListArgs, models.Page[models.AccountMapping]]{
	Name: "mappingList",
	Path: mappingsPath,
	Params: func(a MappingListArgs) url.Values {
		v := url.Values{}
		setInt(v, "page", a.Page)
		setInt(v, "page_size", a.PageSize)
		return v
	},
	Tags: func(MappingListArgs) []string {
		return []string{TagMapping, TagMappingList}
	},
}

// MappingCreateArgs pairs a HighLevel account with a Transmit-SMS account.
type MappingCreateArgs struct {
	GHLAccount      string `json:"ghl_account"`
	TransmitAccount string `json:"transmit_account"`
}

// MappingCreate creates a mapping and invalidates every mapping list.
var MappingCreate = Mutation[MappingCreateArgs, models.AccountMapping]{
	Name:   "mappingCreate",
	Method: http.MethodPost,
	Path:   mappingsPath,
	Body:   func(a MappingCreateArgs) any { return a },
	Invalidates: func(MappingCreateArgs) []string {
		return []string{TagMapping}
	},
}

// MappingDeleteArgs identifies the mapping to remove.
type MappingDeleteArgs struct {
	ID string `json:"id"`
}

// MappingDelete removes a mapping.
var MappingDelete = Mutation[MappingDeleteArgs, struct{}]{
	Name:   "mappingDelete",
	Method: http.MethodDelete,
	PathFn: func(a MappingDeleteArgs) string { return mappingsPath + a.ID + "/" },
	Invalidates: func(MappingDeleteArgs) []string {
		return []string{TagMapping}
	},
}
