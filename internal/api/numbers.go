package api

import (
	"net/url"

	"github.com/textlinq/smsbridge-admin/internal/models"
)

// TagNumber groups cached available-number lists.
const TagNumber = "AvailableNumber"

const numbersPath = "/transmit-sms/numbers/"

// NumberListArgs filters purchasable numbers. Price bounds are pointers so
// an explicit 0 can be sent while an unset bound is omitted.
type NumberListArgs struct {
	Page     int      `json:"page,omitempty"`
	Search   string   `json:"search,omitempty"`
	Label    string   `json:"label,omitempty"`
	MinPrice *float64 `json:"min_price,omitempty"`
	MaxPrice *float64 `json:"max_price,omitempty"`
	SortBy   string   `json:"sort_by,omitempty"`
}

// NumberList lists available dedicated numbers.
var NumberList = Query[NumberListArgs, models.Page[models.AvailableNumber]]{
	Name: "numberList",
	Path: numbersPath,
	Params: func(a NumberListArgs) url.Values {
		v := url.Values{}
		setInt(v, "page", a.Page)
		setStr(v, "search", a.Search)
		setStr(v, "label", a.Label)
		setFloat(v, "min_price", a.MinPrice)
		setFloat(v, "max_price", a.MaxPrice)
		setStr(v, "sort_by", a.SortBy)
		return v
	},
	Tags: func(NumberListArgs) []string {
		return []string{TagNumber}
	},
}
