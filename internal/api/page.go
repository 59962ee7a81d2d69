package api

import (
	"net/url"
	"strconv"
)

// PageFromURL extracts the page parameter from a next/previous URL as
// returned inside a pagination envelope. The number is reused verbatim;
// filters can change the page count, so page arithmetic on the client is
// not safe. A next URL without an explicit page parameter means page 1.
func PageFromURL(raw string) (int, bool) {
	if raw == "" {
		return 0, false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return 0, false
	}
	p := u.Query().Get("page")
	if p == "" {
		return 1, true
	}
	n, err := strconv.Atoi(p)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
