package jsonapi

import "iter"

// FlatRecord is the storage-agnostic representation of one entity:
// a mapping from field name (storage convention) to value. Attribute
// values are plain scalars or nested scalars; relationship values are
// a Ref, a []Ref, or nil for an empty to-one relationship. The
// reserved keys "id" and "type" identify the record.
//
// Codecs never mutate a FlatRecord in place; transforms operate on
// copies.
type FlatRecord map[string]interface{}

// ID returns the record's reserved id field.
func (r FlatRecord) ID() string {
	id, _ := r[memberID].(string)
	return id
}

// Type returns the record's reserved type field.
func (r FlatRecord) Type() string {
	t, _ := r[memberType].(string)
	return t
}

// Ref returns the record's resource identifier.
func (r FlatRecord) Ref() Ref {
	return Ref{Type: r.Type(), ID: r.ID()}
}

// Records carries the flat side of a document's primary data: one
// record, an ordered collection of records, or none. It mirrors
// PrimaryData so that the single/many polymorphism of a document is
// preserved through a decode/encode round trip.
type Records struct {
	one    FlatRecord
	many   []FlatRecord
	isMany bool
	null   bool
}

// OneRecord creates a carrier holding a single record.
func OneRecord(record FlatRecord) Records {
	return Records{one: record}
}

// ManyRecords creates a carrier holding an ordered record collection.
func ManyRecords(records ...FlatRecord) Records {
	if records == nil {
		records = []FlatRecord{}
	}
	return Records{many: records, isMany: true}
}

// NoRecords creates a carrier for null primary data.
func NoRecords() Records {
	return Records{null: true}
}

// Null returns true if the carrier holds null primary data.
func (r Records) Null() bool { return r.null }

// One returns the record and true if the carrier holds one record.
func (r Records) One() (FlatRecord, bool) {
	if r.isMany || r.null {
		return nil, false
	}
	return r.one, true
}

// Many returns the collection and true if the carrier holds many.
func (r Records) Many() ([]FlatRecord, bool) {
	if !r.isMany || r.null {
		return nil, false
	}
	return r.many, true
}

// Iter returns an iterator over the records in order.
func (r Records) Iter() iter.Seq[FlatRecord] {
	return func(yield func(FlatRecord) bool) {
		if r.null {
			return
		}
		if one, ok := r.One(); ok {
			yield(one)
			return
		}
		for _, record := range r.many {
			if !yield(record) {
				return
			}
		}
	}
}
