package jsonapi

import (
	"bytes"
	"fmt"
	"iter"

	json "github.com/goccy/go-json"
)

// Document represents the top-level JSON:API document structure. A nil
// Data field means the `data` member was absent from the wire payload,
// which is distinct from an explicit `"data": null`.
type Document struct {
	Data     *PrimaryData           `json:"data,omitempty"`
	Errors   []Error                `json:"errors,omitempty"`
	Meta     map[string]interface{} `json:"meta,omitempty"`
	Jsonapi  *Implementation        `json:"jsonapi,omitempty"`
	Links    map[string]Link        `json:"links,omitempty"`
	Included []Resource             `json:"included,omitempty"`
}

// UnmarshalJSON implements json.Unmarshaler for Document. Members are
// decoded through a raw map so that presence of `data`, `errors`, and
// `meta` survives the round trip; the document-level member rules all
// hinge on which members were actually present.
func (d *Document) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if member, ok := raw["data"]; ok {
		d.Data = &PrimaryData{}
		if err := json.Unmarshal(member, d.Data); err != nil {
			return err
		}
	}
	if member, ok := raw["errors"]; ok {
		d.Errors = []Error{}
		if err := json.Unmarshal(member, &d.Errors); err != nil {
			return err
		}
	}
	if member, ok := raw["meta"]; ok {
		d.Meta = map[string]interface{}{}
		if err := json.Unmarshal(member, &d.Meta); err != nil {
			return err
		}
	}
	if member, ok := raw["jsonapi"]; ok {
		d.Jsonapi = &Implementation{}
		if err := json.Unmarshal(member, d.Jsonapi); err != nil {
			return err
		}
	}
	if member, ok := raw["links"]; ok {
		d.Links = map[string]Link{}
		if err := json.Unmarshal(member, &d.Links); err != nil {
			return err
		}
	}
	if member, ok := raw["included"]; ok {
		d.Included = []Resource{}
		if err := json.Unmarshal(member, &d.Included); err != nil {
			return err
		}
	}

	return nil
}

// Implementation describes the server's JSON:API implementation, the
// `jsonapi` top-level member.
type Implementation struct {
	Version string                 `json:"version,omitempty"`
	Meta    map[string]interface{} `json:"meta,omitempty"`
}

// PrimaryData represents a document's primary data: a single resource
// object, an ordered collection of resource objects, or null. Every
// accessor behaves correctly under all three forms.
type PrimaryData struct {
	one    Resource
	many   []Resource
	isMany bool
	null   bool
}

// SingleResource creates primary data holding one resource.
func SingleResource(resource Resource) *PrimaryData {
	return &PrimaryData{one: resource}
}

// MultiResource creates primary data holding a resource collection.
func MultiResource(resources ...Resource) *PrimaryData {
	if resources == nil {
		resources = []Resource{}
	}
	return &PrimaryData{many: resources, isMany: true}
}

// NullResource creates null primary data.
func NullResource() *PrimaryData {
	return &PrimaryData{null: true}
}

// Null returns true if the primary data is null.
func (p PrimaryData) Null() bool { return p.null }

// One returns the resource and true if the data holds one resource.
func (p PrimaryData) One() (Resource, bool) {
	if p.isMany || p.null {
		return Resource{}, false
	}
	return p.one, true
}

// Many returns the resource collection and true if the data holds a
// collection.
func (p PrimaryData) Many() ([]Resource, bool) {
	if !p.isMany || p.null {
		return nil, false
	}
	return p.many, true
}

// Iter returns an iterator over the primary resources in order.
func (p PrimaryData) Iter() iter.Seq[Resource] {
	return func(yield func(Resource) bool) {
		if p.null {
			return
		}
		if one, ok := p.One(); ok {
			yield(one)
			return
		}
		for _, resource := range p.many {
			if !yield(resource) {
				return
			}
		}
	}
}

// MarshalJSON implements json.Marshaler for PrimaryData.
func (p PrimaryData) MarshalJSON() ([]byte, error) {
	if p.null {
		return []byte("null"), nil
	}
	if p.isMany {
		return json.Marshal(p.many)
	}
	return json.Marshal(p.one)
}

// UnmarshalJSON implements json.Unmarshaler for PrimaryData.
func (p *PrimaryData) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		p.null = true
		return nil
	}

	if bytes.HasPrefix(data, []byte("{")) {
		return json.Unmarshal(data, &p.one)
	}

	if bytes.HasPrefix(data, []byte("[")) {
		p.isMany = true
		p.many = []Resource{}
		return json.Unmarshal(data, &p.many)
	}

	return fmt.Errorf("primary data must be an object, an array, or null")
}
