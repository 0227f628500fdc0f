package jsonapi

import (
	"bytes"
	"fmt"
	"iter"

	json "github.com/goccy/go-json"
)

// Relationship represents a JSON:API relationship object. A
// relationship object must contain at least one of `links`, `data`,
// or `meta`; a nil Data field means the `data` member was absent,
// which is distinct from an explicit `"data": null`.
type Relationship struct {
	Data  *RelationshipData      `json:"data,omitempty"`
	Links map[string]Link        `json:"links,omitempty"`
	Meta  map[string]interface{} `json:"meta,omitempty"`
}

// Empty reports whether none of the links, data, and meta members were
// present, which the JSON:API specification forbids.
func (r Relationship) Empty() bool {
	return r.Data == nil && r.Links == nil && r.Meta == nil
}

// UnmarshalJSON implements json.Unmarshaler for Relationship. It
// decodes through a raw member map so that an explicit `"data": null`
// is preserved as non-nil null RelationshipData rather than collapsing
// into an absent member.
func (r *Relationship) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if member, ok := raw["data"]; ok {
		r.Data = &RelationshipData{}
		if err := json.Unmarshal(member, r.Data); err != nil {
			return err
		}
	}
	if member, ok := raw["links"]; ok {
		r.Links = map[string]Link{}
		if err := json.Unmarshal(member, &r.Links); err != nil {
			return err
		}
	}
	if member, ok := raw["meta"]; ok {
		r.Meta = map[string]interface{}{}
		if err := json.Unmarshal(member, &r.Meta); err != nil {
			return err
		}
	}

	return nil
}

// RelationshipData is the resource linkage of a relationship: a single
// resource identifier, an ordered collection of identifiers, or null.
// Order is preserved for to-many linkage; uniqueness is a document
// level concern, not enforced here.
type RelationshipData struct {
	one    Ref
	many   []Ref
	isMany bool
	null   bool
}

// ToOne creates to-one resource linkage.
func ToOne(ref Ref) *RelationshipData {
	return &RelationshipData{one: ref}
}

// ToMany creates to-many resource linkage. The empty collection is
// valid and distinct from null.
func ToMany(refs ...Ref) *RelationshipData {
	if refs == nil {
		refs = []Ref{}
	}
	return &RelationshipData{many: refs, isMany: true}
}

// NullRef creates null resource linkage, representing an empty to-one
// relationship.
func NullRef() *RelationshipData {
	return &RelationshipData{null: true}
}

// Null returns true if the linkage is null.
func (d RelationshipData) Null() bool { return d.null }

// One returns the single identifier and true for to-one linkage.
func (d RelationshipData) One() (Ref, bool) {
	if d.isMany || d.null {
		return Ref{}, false
	}
	return d.one, true
}

// Many returns the identifier collection and true for to-many linkage.
func (d RelationshipData) Many() ([]Ref, bool) {
	if !d.isMany || d.null {
		return nil, false
	}
	return d.many, true
}

// Iter returns an iterator over the linkage identifiers in order.
func (d RelationshipData) Iter() iter.Seq[Ref] {
	return func(yield func(Ref) bool) {
		if d.null {
			return
		}
		if one, ok := d.One(); ok {
			yield(one)
			return
		}
		for _, ref := range d.many {
			if !yield(ref) {
				return
			}
		}
	}
}

// MarshalJSON implements json.Marshaler for RelationshipData.
func (d RelationshipData) MarshalJSON() ([]byte, error) {
	if d.null {
		return []byte("null"), nil
	}
	if d.isMany {
		return json.Marshal(d.many)
	}
	return json.Marshal(d.one)
}

// UnmarshalJSON implements json.Unmarshaler for RelationshipData.
func (d *RelationshipData) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		d.null = true
		return nil
	}

	if bytes.HasPrefix(data, []byte("{")) {
		return json.Unmarshal(data, &d.one)
	}

	if bytes.HasPrefix(data, []byte("[")) {
		d.isMany = true
		d.many = []Ref{}
		return json.Unmarshal(data, &d.many)
	}

	return fmt.Errorf("relationship data must be an object, an array, or null")
}
