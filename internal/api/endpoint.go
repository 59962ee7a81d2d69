// Package api declares the query and mutation endpoints of the admin API.
// Each declaration pairs a request shape with the cache tags its results
// carry (queries) or invalidate (mutations); the cache store and transport
// do the rest.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/textlinq/smsbridge-admin/internal/cache"
	"github.com/textlinq/smsbridge-admin/internal/transport"
)

// Backend bundles the transport and cache a declaration executes against.
type Backend struct {
	HTTP  *transport.Client
	Cache *cache.Store
}

// Query is a declared read endpoint: how to build the request from typed
// arguments, and which tags the cached result carries.
type Query[A any, R any] struct {
	Name string
	// Path is the endpoint path; PathFn overrides it when the path depends
	// on the arguments.
	Path   string
	PathFn func(A) string
	// Params builds the query string. Unset optional fields must be
	// omitted entirely, not sent empty.
	Params func(A) url.Values
	// Tags are the invalidation tags known from the arguments alone.
	Tags func(A) []string
	// ResultTags adds per-item tags once the payload is decoded.
	ResultTags func(R) []string
}

// Key returns the cache key for the given arguments.
func (q Query[A, R]) Key(args A) string {
	return cache.Key(q.Name, args)
}

// Use returns the query result, served from cache when fresh. Concurrent
// callers with equal arguments share one HTTP call. The returned error is
// always a *transport.APIError.
func (q Query[A, R]) Use(ctx context.Context, b *Backend, args A) (R, error) {
	var out R
	key := q.Key(args)

	raw, err := b.Cache.Fetch(ctx, key, q.tags(args), func(ctx context.Context) (json.RawMessage, error) {
		return b.HTTP.Get(ctx, q.path(args), q.params(args))
	})
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, decodeError(q.Name, err)
	}
	if q.ResultTags != nil {
		b.Cache.AddTags(key, q.ResultTags(out)...)
	}
	return out, nil
}

// Subscribe pins the cache entry for args and reports invalidations so a
// long-lived consumer can refetch.
func (q Query[A, R]) Subscribe(b *Backend, args A) *cache.Subscription {
	return b.Cache.Subscribe(q.Key(args))
}

func (q Query[A, R]) path(args A) string {
	if q.PathFn != nil {
		return q.PathFn(args)
	}
	return q.Path
}

func (q Query[A, R]) params(args A) url.Values {
	if q.Params == nil {
		return nil
	}
	return q.Params(args)
}

func (q Query[A, R]) tags(args A) []string {
	if q.Tags == nil {
		return nil
	}
	return q.Tags(args)
}

// Mutation is a declared write endpoint. Do settles to either the decoded
// payload or a *transport.APIError, and invalidates the declared tags only
// after the server confirms success.
type Mutation[A any, R any] struct {
	Name   string
	Method string
	Path   string
	PathFn func(A) string
	// Body builds the request body; nil means no body.
	Body func(A) any
	// Invalidates lists the tags whose cached entries go stale when the
	// mutation succeeds.
	Invalidates func(A) []string
}

// Do executes the mutation and waits for the settled result.
func (m Mutation[A, R]) Do(ctx context.Context, b *Backend, args A) (R, error) {
	var out R

	path := m.Path
	if m.PathFn != nil {
		path = m.PathFn(args)
	}
	method := m.Method
	if method == "" {
		method = http.MethodPost
	}
	var body any
	if m.Body != nil {
		body = m.Body(args)
	}

	raw, err := b.HTTP.Do(ctx, method, path, nil, body)
	if err != nil {
		return out, err
	}

	if m.Invalidates != nil {
		b.Cache.Invalidate(m.Invalidates(args)...)
	}

	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			return out, decodeError(m.Name, err)
		}
	}
	return out, nil
}

func decodeError(name string, err error) *transport.APIError {
	return &transport.APIError{
		StatusCode: 0,
		Message:    fmt.Sprintf("decode %s response: %v", name, err),
	}
}
