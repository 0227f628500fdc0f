package server

import (
	"context"
	"net/http"
	"strconv"
)

// RequestContext contains parsed information from an HTTP request that
// is relevant to JSON:API resource operations.
type RequestContext struct {
	ResourceType          string // The type of the requested resource
	ResourceID            string // The ID of the requested resource
	Relationship          string // The name of the requested relationship
	FetchRelatedResources bool   // Whether to fetch related resources instead of relationship linkage
}

// PageRequest parses the page[number] and page[size] query parameters
// into a storage page request.
func (rc RequestContext) PageRequest(req *http.Request) PageRequest {
	page := PageRequest{}
	if number, err := strconv.Atoi(req.URL.Query().Get("page[number]")); err == nil {
		page.Number = number
	}
	if size, err := strconv.Atoi(req.URL.Query().Get("page[size]")); err == nil {
		page.Size = size
	}
	return page
}

// requestContextKey is the context key for RequestContext values.
type requestContextKey struct{}

// SetRequestContext returns a context carrying the parsed request
// information.
func SetRequestContext(ctx context.Context, rc *RequestContext) context.Context {
	return context.WithValue(ctx, requestContextKey{}, rc)
}

// GetRequestContext extracts JSON:API request information from the
// context.
func GetRequestContext(ctx context.Context) (*RequestContext, bool) {
	rc, ok := ctx.Value(requestContextKey{}).(*RequestContext)
	return rc, ok
}

// RequestContextResolver parses HTTP requests into request contexts.
// Implementations can extract resource information from URLs, headers,
// or other request components.
type RequestContextResolver interface {
	ResolveRequestContext(r *http.Request) (*RequestContext, error)
}

// DefaultContextResolver extracts JSON:API context information from
// URL path parameters using the standard router's path values. It is
// opinionated on the path variable names: {type}, {id},
// {relationship}, and {related}.
type DefaultContextResolver struct{}

// ResolveRequestContext implements RequestContextResolver.
func (DefaultContextResolver) ResolveRequestContext(r *http.Request) (*RequestContext, error) {
	rc := &RequestContext{
		ResourceType: r.PathValue("type"),
		ResourceID:   r.PathValue("id"),
		Relationship: r.PathValue("relationship"),
	}

	if related := r.PathValue("related"); related != "" {
		rc.Relationship = related
		rc.FetchRelatedResources = true
	}

	return rc, nil
}
