package jsonapi

// FieldKind classifies a record field for encoding purposes.
type FieldKind int

const (
	// Attribute fields carry plain values.
	Attribute FieldKind = iota
	// RelationToOne fields reference a single related record.
	RelationToOne
	// RelationToMany fields reference an ordered collection of
	// related records.
	RelationToMany
)

// Field describes one declared field of a resource type.
type Field struct {
	Name        string
	Kind        FieldKind
	RelatedType string // resource type of the referenced records, for relationship fields
}

// Relationship reports whether the field is relationship-shaped.
func (f Field) Relationship() bool {
	return f.Kind == RelationToOne || f.Kind == RelationToMany
}

// Schema is the declared field table for one resource type: the
// ordered list of field names in storage convention and, for each,
// whether it is attribute- or relationship-shaped. The Codec uses
// schemas to classify fields on encode; classification on decode
// follows from which sub-object a field arrived in.
//
// Field names use the storage convention; the codec's inflector chain
// converts them to and from the wire convention.
type Schema struct {
	resourceType string
	fields       []Field
	index        map[string]int
}

// NewSchema creates an empty schema for the given resource type.
func NewSchema(resourceType string) *Schema {
	return &Schema{
		resourceType: resourceType,
		index:        map[string]int{},
	}
}

// Type returns the resource type the schema describes.
func (s *Schema) Type() string { return s.resourceType }

// Attribute declares an attribute-shaped field.
func (s *Schema) Attribute(name string) *Schema {
	return s.add(Field{Name: name, Kind: Attribute})
}

// ToOne declares a to-one relationship field referencing the given
// resource type.
func (s *Schema) ToOne(name, relatedType string) *Schema {
	return s.add(Field{Name: name, Kind: RelationToOne, RelatedType: relatedType})
}

// ToMany declares a to-many relationship field referencing the given
// resource type.
func (s *Schema) ToMany(name, relatedType string) *Schema {
	return s.add(Field{Name: name, Kind: RelationToMany, RelatedType: relatedType})
}

func (s *Schema) add(field Field) *Schema {
	if at, ok := s.index[field.Name]; ok {
		s.fields[at] = field
		return s
	}
	s.index[field.Name] = len(s.fields)
	s.fields = append(s.fields, field)
	return s
}

// Fields returns the declared fields in declaration order.
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Lookup returns the declared field with the given storage name.
func (s *Schema) Lookup(name string) (Field, bool) {
	at, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[at], true
}
