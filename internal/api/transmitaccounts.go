package api

import (
	"net/http"
	"net/url"

	"github.com/textlinq/smsbridge-admin/internal/models"
)

// Cache tags for Transmit-SMS accounts, same per-item pattern as HighLevel
// accounts.
const (
	TagTransmitAccount     = "TransmitAccount"
	TagTransmitAccountList = "TransmitAccount:LIST"
)

const transmitAccountsPath = "/transmit-sms/accounts/"

func transmitAccountTag(id string) string { return TagTransmitAccount + ":" + id }

// TransmitAccountListArgs pages and searches provider accounts.
type TransmitAccountListArgs struct {
	Page   int    `json:"page,omitempty"`
	Search string `json:"search,omitempty"`
}

// TransmitAccountList lists Transmit-SMS accounts.
var TransmitAccountList = Query[TransmitAccountListArgs, models.Page[models.TransmitAccount]]{
	Name: "transmitAccountList",
	Path: transmitAccountsPath,
	Params: func(a TransmitAccountListArgs) url.Values {
		v := url.Values{}
		setInt(v, "page", a.Page)
		setStr(v, "search", a.Search)
		return v
	},
	Tags: func(TransmitAccountListArgs) []string {
		return []string{TagTransmitAccount, TagTransmitAccountList}
	},
	ResultTags: func(p models.Page[models.TransmitAccount]) []string {
		tags := make([]string, 0, len(p.Results))
		for _, acc := range p.Results {
			tags = append(tags, transmitAccountTag(acc.ID))
		}
		return tags
	},
}

// TransmitAccountCreate registers a provider account.
var TransmitAccountCreate = Mutation[models.TransmitAccountInput, models.TransmitAccount]{
	Name:   "transmitAccountCreate",
	Method: http.MethodPost,
	Path:   transmitAccountsPath,
	Body:   func(in models.TransmitAccountInput) any { return in },
	Invalidates: func(models.TransmitAccountInput) []string {
		return []string{TagTransmitAccountList}
	},
}

// TransmitAccountUpdateArgs carries the target ID and new field values.
type TransmitAccountUpdateArgs struct {
	ID    string                      `json:"id"`
	Input models.TransmitAccountInput `json:"input"`
}

// TransmitAccountUpdate updates one provider account.
var TransmitAccountUpdate = Mutation[TransmitAccountUpdateArgs, models.TransmitAccount]{
	Name:   "transmitAccountUpdate",
	Method: http.MethodPut,
	PathFn: func(a TransmitAccountUpdateArgs) string { return transmitAccountsPath + a.ID + "/" },
	Body:   func(a TransmitAccountUpdateArgs) any { return a.Input },
	Invalidates: func(a TransmitAccountUpdateArgs) []string {
		return []string{transmitAccountTag(a.ID)}
	},
}

// TransmitAccountDeleteArgs identifies the account to remove.
type TransmitAccountDeleteArgs struct {
	ID string `json:"id"`
}

// TransmitAccountDelete removes a provider account.
var TransmitAccountDelete = Mutation[TransmitAccountDeleteArgs, struct{}]{
	Name:   "transmitAccountDelete",
	Method: http.MethodDelete,
	PathFn: func(a TransmitAccountDeleteArgs) string { return transmitAccountsPath + a.ID + "/" },
	Invalidates: func(a TransmitAccountDeleteArgs) []string {
		return []string{TagTransmitAccountList, transmitAccountTag(a.ID), TagMapping}
	},
}
