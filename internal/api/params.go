package api

import (
	"net/url"
	"strconv"
	"time"
)

// Query-string helpers. The backend treats an absent parameter and an empty
// one differently, so unset values are never added.

func setStr(v url.Values, key, val string) {
	if val != "" {
		v.Set(key, val)
	}
}

// setChoice omits the value when it is empty or the UI's "all" sentinel,
// which means "do not constrain".
func setChoice(v url.Values, key, val string) {
	if val != "" && val != "all" {
		v.Set(key, val)
	}
}

func setInt(v url.Values, key string, n int) {
	if n > 0 {
		v.Set(key, strconv.Itoa(n))
	}
}

func setFloat(v url.Values, key string, f *float64) {
	if f != nil {
		v.Set(key, strconv.FormatFloat(*f, 'f', -1, 64))
	}
}

func setDate(v url.Values, key string, t time.Time) {
	if !t.IsZero() {
		v.Set(key, t.Format("2006-01-02"))
	}
}
