package api

import (
	"net/url"
	"time"

	"github.com/textlinq/smsbridge-admin/internal/models"
)

// TagMessage groups every cached message list.
const TagMessage = "Message"

const messagesPath = "/sms/sms-messages/"

// MessageListArgs filters the message log. Zero values mean "unfiltered"
// and are omitted from the request; status and direction also treat "all"
// as unset to match the backend's filtering semantics exactly.
type MessageListArgs struct {
	Page      int       `json:"page,omitempty"`
	PageSize  int       `json:"page_size,omitempty"`
	Search    string    `json:"search,omitempty"`
	Status    string    `json:"status,omitempty"`
	Direction string    `json:"direction,omitempty"`
	Ordering  string    `json:"ordering,omitempty"`
	DateFrom  time.Time `json:"date_from,omitempty"`
	DateTo    time.Time `json:"date_to,omitempty"`
}

// MessageList lists messages with delivery state.
var MessageList = Query[MessageListArgs, models.Page[models.Message]]{
	Name: "messageList",
	Path: messagesPath,
	Params: func(a MessageListArgs) url.Values {
		v := url.Values{}
		setInt(v, "page", a.Page)
		setInt(v, "page_size", a.PageSize)
		setStr(v, "search", a.Search)
		setChoice(v, "status", a.Status)
		setChoice(v, "direction", a.Direction)
		setStr(v, "ordering", a.Ordering)
		setDate(v, "date_from", a.DateFrom)
		setDate(v, "date_to", a.DateTo)
		return v
	},
	Tags: func(MessageListArgs) []string {
		return []string{TagMessage}
	},
}
