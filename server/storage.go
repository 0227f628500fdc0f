package server

import (
	"context"
	"errors"

	"github.com/newcontext-oss/jsonapi"
)

// ErrNotFound is returned by Storage implementations when no record
// matches the requested type and id.
var ErrNotFound = errors.New("resource not found")

// PageRequest carries the pagination parameters of a list request.
// A zero Size means the storage default.
type PageRequest struct {
	Number int
	Size   int
}

// PageInfo describes the page a List call produced.
type PageInfo struct {
	Page  int
	Pages int
	Count int
}

// Storage is the persistence collaborator the handlers drive. The
// transcoding core never touches it; records cross this boundary only
// after decoding and before encoding.
type Storage interface {
	// Lookup returns the record with the given type and id.
	Lookup(ctx context.Context, resourceType, id string) (jsonapi.FlatRecord, error)
	// Create persists a new record and returns it with its assigned id.
	Create(ctx context.Context, record jsonapi.FlatRecord) (jsonapi.FlatRecord, error)
	// Update persists changes to an existing record.
	Update(ctx context.Context, record jsonapi.FlatRecord) (jsonapi.FlatRecord, error)
	// Delete removes the record with the given type and id.
	Delete(ctx context.Context, resourceType, id string) error
	// List returns one page of records of the given type, in a stable
	// order, along with the page cursor data.
	List(ctx context.Context, resourceType string, page PageRequest) ([]jsonapi.FlatRecord, PageInfo, error)
}
