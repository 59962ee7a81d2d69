package models

// Page is the pagination envelope every list endpoint returns.
// Next and Previous are full URLs (or null); the backend decides ordering,
// so Results must never be resorted client-side without re-querying.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// HasNext reports whether a next page exists.
func (p Page[T]) HasNext() bool {
	return p.Next != nil && *p.Next != ""
}

// HasPrevious reports whether a previous page exists.
func (p Page[T]) HasPrevious() bool {
	return p.Previous != nil && *p.Previous != ""
}
