// Package server provides HTTP collaborator wiring for the jsonapi
// transcoding core: request context management, content negotiation,
// and resource handlers that drive a Storage implementation through a
// Codec. Status mapping lives here, not in the core.
package server

import (
	"errors"
	"io"
	"net/http"

	json "github.com/goccy/go-json"
	"github.com/newcontext-oss/jsonapi"
	"github.com/sirupsen/logrus"
)

// DefaultHandler creates an HTTP handler with the standard JSON:API
// routes configured, wrapping the mux with content negotiation,
// request context resolution, and request logging.
//
// The following endpoints are configured:
//
//	"GET    /{type}"                                   // List resources of a type
//	"GET    /{type}/{id}"                              // Get a single resource by ID
//	"POST   /{type}"                                   // Create a new resource
//	"PATCH  /{type}/{id}"                              // Update an existing resource
//	"DELETE /{type}/{id}"                              // Delete a resource
//	"GET    /{type}/{id}/relationships/{relationship}" // Get a resource's relationship linkage
//	"GET    /{type}/{id}/{related}"                    // Get related resources
func DefaultHandler(handler http.Handler, log *logrus.Logger) http.Handler {
	wrapped := UseRequestContextResolver(handler, DefaultContextResolver{})
	wrapped = UseContentNegotiation(wrapped)
	if log != nil {
		wrapped = UseRequestLogging(wrapped, log)
	}

	serveMux := http.NewServeMux()
	serveMux.Handle("GET /{type}", wrapped)
	serveMux.Handle("GET /{type}/{id}", wrapped)
	serveMux.Handle("POST /{type}", wrapped)
	serveMux.Handle("PATCH /{type}/{id}", wrapped)
	serveMux.Handle("DELETE /{type}/{id}", wrapped)
	serveMux.Handle("GET /{type}/{id}/relationships/{relationship}", wrapped)
	serveMux.Handle("GET /{type}/{id}/{related}", wrapped)

	return serveMux
}

// ResourceHandler serves the standard JSON:API operations for the
// resource types its codec has schemas for, persisting records
// through the configured storage.
type ResourceHandler struct {
	Codec *jsonapi.Codec
	Store Storage
	Log   *logrus.Logger
}

// ServeHTTP routes requests to the appropriate operation based on the
// HTTP method and parsed request context.
func (h ResourceHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rc, ok := GetRequestContext(r.Context())
	if !ok || rc.ResourceType == "" {
		h.writeError(w, http.StatusNotFound, errors.New("resource type not resolved"))
		return
	}

	if _, ok := h.Codec.Schema(rc.ResourceType); !ok {
		h.writeError(w, http.StatusNotFound, ErrNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		switch {
		case rc.Relationship != "":
			h.handleRelationship(w, r, rc)
		case rc.ResourceID != "":
			h.handleGet(w, r, rc)
		default:
			h.handleList(w, r, rc)
		}
	case http.MethodPost:
		h.handleCreate(w, r, rc)
	case http.MethodPatch:
		h.handleUpdate(w, r, rc)
	case http.MethodDelete:
		h.handleDelete(w, r, rc)
	default:
		h.writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
	}
}

func (h ResourceHandler) handleGet(w http.ResponseWriter, r *http.Request, rc *RequestContext) {
	record, err := h.Store.Lookup(r.Context(), rc.ResourceType, rc.ResourceID)
	if err != nil {
		h.writeStorageError(w, err)
		return
	}

	doc, err := h.Codec.EncodeDocument(jsonapi.OneRecord(record))
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}
	h.writeDocument(w, http.StatusOK, doc)
}

func (h ResourceHandler) handleList(w http.ResponseWriter, r *http.Request, rc *RequestContext) {
	page := rc.PageRequest(r)
	records, info, err := h.Store.List(r.Context(), rc.ResourceType, page)
	if err != nil {
		h.writeStorageError(w, err)
		return
	}

	cursor := jsonapi.PageNumberCursor{
		URL:   requestURL(r),
		Param: "page[number]",
		Page:  info.Page,
		Pages: info.Pages,
		Count: info.Count,
	}

	doc, err := h.Codec.EncodeDocument(
		jsonapi.ManyRecords(records...),
		jsonapi.WithPagination(cursor),
	)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}
	h.writeDocument(w, http.StatusOK, doc)
}

func (h ResourceHandler) handleCreate(w http.ResponseWriter, r *http.Request, rc *RequestContext) {
	record, ok := h.decodeOne(w, r)
	if !ok {
		return
	}

	if record.Type() != rc.ResourceType {
		h.writeError(w, http.StatusConflict, errors.New("resource type does not match endpoint"))
		return
	}

	created, err := h.Store.Create(r.Context(), record)
	if err != nil {
		h.writeStorageError(w, err)
		return
	}

	doc, err := h.Codec.EncodeDocument(jsonapi.OneRecord(created))
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}
	h.writeDocument(w, http.StatusCreated, doc)
}

func (h ResourceHandler) handleUpdate(w http.ResponseWriter, r *http.Request, rc *RequestContext) {
	record, ok := h.decodeOne(w, r)
	if !ok {
		return
	}

	if record.Type() != rc.ResourceType || record.ID() != rc.ResourceID {
		h.writeError(w, http.StatusConflict, errors.New("resource identifier does not match endpoint"))
		return
	}

	updated, err := h.Store.Update(r.Context(), record)
	if err != nil {
		h.writeStorageError(w, err)
		return
	}

	doc, err := h.Codec.EncodeDocument(jsonapi.OneRecord(updated))
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}
	h.writeDocument(w, http.StatusOK, doc)
}

func (h ResourceHandler) handleDelete(w http.ResponseWriter, r *http.Request, rc *RequestContext) {
	if err := h.Store.Delete(r.Context(), rc.ResourceType, rc.ResourceID); err != nil {
		h.writeStorageError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleRelationship serves both relationship linkage requests and
// related-resource requests for a single relationship.
func (h ResourceHandler) handleRelationship(w http.ResponseWriter, r *http.Request, rc *RequestContext) {
	record, err := h.Store.Lookup(r.Context(), rc.ResourceType, rc.ResourceID)
	if err != nil {
		h.writeStorageError(w, err)
		return
	}

	schema, _ := h.Codec.Schema(rc.ResourceType)
	name := h.Codec.StorageName(rc.Relationship)
	field, ok := schema.Lookup(name)
	if !ok || !field.Relationship() {
		h.writeError(w, http.StatusNotFound, errors.New("relationship not found"))
		return
	}

	if rc.FetchRelatedResources {
		h.writeRelated(w, r, field, record[name])
		return
	}

	doc := &jsonapi.Document{
		Jsonapi: &jsonapi.Implementation{Version: jsonapi.Version},
		Data:    linkageData(field, record[name]),
	}
	h.writeDocument(w, http.StatusOK, doc)
}

// writeRelated resolves relationship references through storage and
// responds with the full related resources.
func (h ResourceHandler) writeRelated(w http.ResponseWriter, r *http.Request, field jsonapi.Field, value interface{}) {
	lookup := func(ref jsonapi.Ref) (jsonapi.FlatRecord, error) {
		return h.Store.Lookup(r.Context(), ref.Type, ref.ID)
	}

	var records jsonapi.Records
	switch field.Kind {
	case jsonapi.RelationToOne:
		ref, ok := value.(jsonapi.Ref)
		if !ok {
			records = jsonapi.NoRecords()
			break
		}
		related, err := lookup(ref)
		if err != nil {
			h.writeStorageError(w, err)
			return
		}
		records = jsonapi.OneRecord(related)
	default:
		refs, _ := value.([]jsonapi.Ref)
		related := make([]jsonapi.FlatRecord, 0, len(refs))
		for _, ref := range refs {
			record, err := lookup(ref)
			if err != nil {
				h.writeStorageError(w, err)
				return
			}
			related = append(related, record)
		}
		records = jsonapi.ManyRecords(related...)
	}

	doc, err := h.Codec.EncodeDocument(records)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}
	h.writeDocument(w, http.StatusOK, doc)
}

// linkageData builds the primary data of a relationship linkage
// document from a record's relationship value.
func linkageData(field jsonapi.Field, value interface{}) *jsonapi.PrimaryData {
	switch field.Kind {
	case jsonapi.RelationToOne:
		ref, ok := value.(jsonapi.Ref)
		if !ok {
			return jsonapi.NullResource()
		}
		return jsonapi.SingleResource(jsonapi.Resource{Type: ref.Type, ID: ref.ID})
	default:
		refs, _ := value.([]jsonapi.Ref)
		resources := make([]jsonapi.Resource, len(refs))
		for i, ref := range refs {
			resources[i] = jsonapi.Resource{Type: ref.Type, ID: ref.ID}
		}
		return jsonapi.MultiResource(resources...)
	}
}

// decodeOne reads and decodes a request body expected to carry a
// single resource, writing the error response itself on failure.
func (h ResourceHandler) decodeOne(w http.ResponseWriter, r *http.Request) (jsonapi.FlatRecord, bool) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return nil, false
	}

	records, err := h.Codec.Decode(body)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return nil, false
	}

	record, ok := records.One()
	if !ok {
		h.writeError(w, http.StatusBadRequest, errors.New("expected a single resource in `data`"))
		return nil, false
	}
	return record, true
}

func (h ResourceHandler) writeStorageError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNotFound) {
		h.writeError(w, http.StatusNotFound, err)
		return
	}
	h.writeError(w, http.StatusInternalServerError, err)
}

func (h ResourceHandler) writeError(w http.ResponseWriter, status int, err error) {
	if h.Log != nil {
		h.Log.WithError(err).WithField("status", status).Warn("request failed")
	}
	h.writeDocument(w, status, h.Codec.EncodeErrors(status, err))
}

func (h ResourceHandler) writeDocument(w http.ResponseWriter, status int, doc *jsonapi.Document) {
	out, err := json.Marshal(doc)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", ContentType)
	w.WriteHeader(status)
	_, _ = w.Write(out)
}

// requestURL reconstructs the absolute request URL for pagination
// links.
func requestURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}
