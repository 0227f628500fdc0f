package jsonapi

import (
	"fmt"
	"sort"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/newcontext-oss/jsonapi/inflect"
)

// Codec transcodes between JSON:API documents and flat records. A
// codec is configured once with the field schemas of the resource
// types it handles and a chain of name inflectors; afterwards it is
// immutable and safe for concurrent use.
type Codec struct {
	schemas     map[string]*Schema
	inflectors  inflect.Chain
	objectLinks bool
	marshal     func(interface{}) ([]byte, error)
	unmarshal   func([]byte, interface{}) error
}

// Option configures a Codec.
type Option func(*Codec)

// WithSchemas registers field schemas with the codec.
func WithSchemas(schemas ...*Schema) Option {
	return func(c *Codec) {
		for _, schema := range schemas {
			c.schemas[schema.Type()] = schema
		}
	}
}

// WithInflectors replaces the default field-name inflector chain.
func WithInflectors(chain inflect.Chain) Option {
	return func(c *Codec) {
		c.inflectors = chain
	}
}

// WithObjectFormLinks makes the codec emit every link in the object
// form, even links without meta that would otherwise render as bare
// URL strings.
func WithObjectFormLinks() Option {
	return func(c *Codec) {
		c.objectLinks = true
	}
}

// WithMarshaler uses a custom JSON marshaler to serialize documents.
func WithMarshaler(fn func(interface{}) ([]byte, error)) Option {
	return func(c *Codec) {
		c.marshal = fn
	}
}

// WithUnmarshaler uses a custom JSON unmarshaler to parse documents.
func WithUnmarshaler(fn func([]byte, interface{}) error) Option {
	return func(c *Codec) {
		c.unmarshal = fn
	}
}

// NewCodec creates a codec with the given options. By default the
// codec parameterizes field names and serializes with goccy/go-json.
func NewCodec(opts ...Option) *Codec {
	codec := &Codec{
		schemas:    map[string]*Schema{},
		inflectors: inflect.Default(),
		marshal:    func(v interface{}) ([]byte, error) { return json.Marshal(v) },
		unmarshal:  func(data []byte, v interface{}) error { return json.Unmarshal(data, v) },
	}
	for _, opt := range opts {
		opt(codec)
	}
	return codec
}

// Schema returns the registered schema for a resource type.
func (c *Codec) Schema(resourceType string) (*Schema, bool) {
	schema, ok := c.schemas[resourceType]
	return schema, ok
}

// WireName converts a storage-convention field name into the wire
// convention by applying the inflector chain.
func (c *Codec) WireName(name string) string {
	return c.inflectors.Apply(name)
}

// StorageName converts a wire-convention field name back into the
// storage convention by applying the inverse transforms in reverse
// order.
func (c *Codec) StorageName(name string) string {
	return c.inflectors.Invert(name)
}

// DecodeOptions contains options for document decoding.
type DecodeOptions struct {
	allowIncluded bool
}

// DecodeOption configures a decode operation.
type DecodeOption func(*DecodeOptions)

// AllowIncluded relaxes the write-request rule that rejects any
// `included` member. With this option the document is treated as a
// server response being parsed client side, where `included` is legal
// as long as primary data is present.
func AllowIncluded() DecodeOption {
	return func(opts *DecodeOptions) {
		opts.allowIncluded = true
	}
}

// Decode parses a JSON:API payload and decodes its primary data into
// flat records. Structural violations are collected and reported
// together as one MultiError; per-resource failures in a "many"
// document are indexed by element position in their source pointers.
func (c *Codec) Decode(data []byte, opts ...DecodeOption) (Records, error) {
	doc, err := c.DecodeDocument(data, opts...)
	if err != nil {
		return Records{}, err
	}
	return c.DecodeRecords(doc)
}

// DecodeDocument parses a JSON:API payload into a Document and runs
// the document-level structural validation.
func (c *Codec) DecodeDocument(data []byte, opts ...DecodeOption) (*Document, error) {
	options := DecodeOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	var doc Document
	if err := c.unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}

	if err := c.validateDocument(&doc, options); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ValidateDocument runs the document-level structural checks against
// an already parsed document, accumulating every violation into one
// combined report instead of stopping at the first.
func (c *Codec) ValidateDocument(doc *Document, opts ...DecodeOption) error {
	options := DecodeOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	return c.validateDocument(doc, options)
}

func (c *Codec) validateDocument(doc *Document, options DecodeOptions) error {
	var violations MultiError

	if doc.Errors != nil && doc.Data != nil {
		violations = append(violations, newError(CodeErrorsAndData, "/",
			"the members `data` and `errors` MUST NOT coexist in the same document"))
	}

	if doc.Data == nil && doc.Errors == nil && doc.Meta == nil {
		violations = append(violations, newError(CodeMissingTopLevelMember, "/",
			"a document MUST contain at least one of the following top-level members: `data`, `errors`, `meta`"))
	}

	if doc.Included != nil {
		if !options.allowIncluded {
			violations = append(violations, newError(CodeIncludedNotAllowed, "/included",
				"a document may not contain `included` resources on incoming write requests"))
		} else if doc.Data == nil {
			violations = append(violations, newError(CodeIncludedWithoutData, "/included",
				"if a document does not contain a top-level `data` member, the `included` member MUST NOT be present either"))
		}
	}

	violations = append(violations, duplicateResources(doc)...)

	if err := validateVersion(doc.Jsonapi); err != nil {
		violations = append(violations, *err)
	}

	if len(violations) > 0 {
		return violations
	}
	return nil
}

// typeID is the comparable form of a resource identifier used for
// duplicate detection.
type typeID struct {
	resourceType string
	id           string
}

// duplicateResources checks the (type, id) uniqueness invariant across
// the union of a document's primary data and included resources.
func duplicateResources(doc *Document) MultiError {
	var (
		violations MultiError
		seen       = map[typeID]struct{}{}
		report     = func(member string, resource Resource) {
			key := typeID{resourceType: resource.Type, id: resource.ID}
			if _, dup := seen[key]; dup {
				violations = append(violations, newError(CodeDuplicateResource,
					fmt.Sprintf("/%s/%s/%s", member, resource.Type, resource.ID),
					"a document MUST NOT include more than one resource object for each type (%q) and id (%q) pair, duplicate found in %q",
					resource.Type, resource.ID, member))
			}
			seen[key] = struct{}{}
		}
	)

	if doc.Data != nil {
		for resource := range doc.Data.Iter() {
			report("data", resource)
		}
	}
	for _, resource := range doc.Included {
		report("included", resource)
	}

	return violations
}

// DecodeRecords converts a validated document's primary data into
// flat records, dispatching between the single and many forms.
func (c *Codec) DecodeRecords(doc *Document) (Records, error) {
	if doc.Data == nil || doc.Data.Null() {
		return NoRecords(), nil
	}

	if one, ok := doc.Data.One(); ok {
		record, err := c.DecodeResource(one)
		if err != nil {
			return Records{}, errorList(err).prefix("/data")
		}
		return OneRecord(record), nil
	}

	many, _ := doc.Data.Many()
	records, err := liftMany(many, "/data", c.DecodeResource)
	if err != nil {
		return Records{}, err
	}
	return ManyRecords(records...), nil
}

// liftMany lifts a single-item operation into its plural form, mapping
// over the items in order and merging per-element error reports with
// position-indexed pointer prefixes.
func liftMany[T, U any](items []T, base string, fn func(T) (U, error)) ([]U, error) {
	var (
		out    = make([]U, len(items))
		merged MultiError
	)
	for i, item := range items {
		value, err := fn(item)
		if err != nil {
			merged = append(merged, errorList(err).prefix(fmt.Sprintf("%s/%d", base, i))...)
			continue
		}
		out[i] = value
	}
	if len(merged) > 0 {
		return nil, merged
	}
	return out, nil
}

// DecodeResource decodes a single resource object into a flat record.
// Attribute and relationship names are de-inflected with the inverse
// transforms in reverse chain order; the reserved `type` and `id`
// members carry over verbatim. Source pointers in the returned errors
// are relative to the resource object.
func (c *Codec) DecodeResource(resource Resource) (FlatRecord, error) {
	var violations MultiError

	if resource.Type == "" {
		violations = append(violations, newError(CodeMissingRequiredMember, "/type",
			"a resource object MUST contain a `type` member"))
	}
	if resource.ID == "" {
		violations = append(violations, newError(CodeMissingRequiredMember, "/id",
			"a resource object MUST contain an `id` member"))
	}

	for _, member := range []struct {
		name string
		keys []string
	}{
		{name: "attributes", keys: attributeNames(resource.Attributes)},
		{name: "relationships", keys: relationshipNames(resource.Relationships)},
	} {
		if reserved := reservedNames(member.keys); len(reserved) > 0 {
			violations = append(violations, newError(CodeReservedField, "/"+member.name,
				"a resource can not have %q fields named: %s",
				member.name, quoteJoin(reserved)))
		}
	}

	if conflicts := intersectNames(resource.Attributes, resource.Relationships); len(conflicts) > 0 {
		violations = append(violations, newError(CodeFieldConflicts, "/attributes",
			"a resource can not have `attributes` and `relationships` with the same name: %s",
			quoteJoin(conflicts)))
	}

	for _, name := range relationshipNames(resource.Relationships) {
		if resource.Relationships[name].Empty() {
			violations = append(violations, newError(CodeMissingRelationshipMember,
				"/relationships/"+name,
				"a relationship object MUST contain at least one of the following: `links`, `data`, `meta`"))
		}
	}

	if len(violations) > 0 {
		return nil, violations
	}

	record := FlatRecord{
		memberType: resource.Type,
		memberID:   resource.ID,
	}

	for name, value := range resource.Attributes {
		record[c.inflectors.Invert(name)] = value
	}
	for name, relationship := range resource.Relationships {
		value, ok := decodeRelationship(relationship)
		if !ok {
			continue
		}
		record[c.inflectors.Invert(name)] = value
	}

	return record, nil
}

// decodeRelationship extracts the identifier linkage of a
// relationship object. Relationships without a `data` member carry no
// linkage and are omitted from the decoded record.
func decodeRelationship(relationship Relationship) (interface{}, bool) {
	data := relationship.Data
	if data == nil {
		return nil, false
	}
	if data.Null() {
		return nil, true
	}
	if one, ok := data.One(); ok {
		return one, true
	}
	many, _ := data.Many()
	refs := make([]Ref, len(many))
	copy(refs, many)
	return refs, true
}

// EncodeOptions contains options for document encoding.
type EncodeOptions struct {
	links    map[string]Link
	meta     map[string]interface{}
	included []FlatRecord
	pager    Pager
}

// EncodeOption configures an encode operation.
type EncodeOption func(*EncodeOptions)

// WithDocumentLinks sets the top-level links object of the encoded
// document.
func WithDocumentLinks(links map[string]Link) EncodeOption {
	return func(opts *EncodeOptions) {
		opts.links = links
	}
}

// WithDocumentMeta sets the top-level meta object of the encoded
// document.
func WithDocumentMeta(meta map[string]interface{}) EncodeOption {
	return func(opts *EncodeOptions) {
		opts.meta = meta
	}
}

// WithIncluded adds server-generated included resources to the
// encoded document. The duplicate-resource invariant is re-checked
// over the final output, covering these records.
func WithIncluded(records ...FlatRecord) EncodeOption {
	return func(opts *EncodeOptions) {
		opts.included = append(opts.included, records...)
	}
}

// WithPagination attaches a pagination cursor whose links and
// metadata are merged into the document envelope.
func WithPagination(pager Pager) EncodeOption {
	return func(opts *EncodeOptions) {
		opts.pager = pager
	}
}

// Encode encodes flat records into a serialized JSON:API document.
func (c *Codec) Encode(records Records, opts ...EncodeOption) ([]byte, error) {
	doc, err := c.EncodeDocument(records, opts...)
	if err != nil {
		return nil, err
	}
	return c.marshal(doc)
}

// EncodeDocument encodes flat records into a JSON:API document,
// stamping the supported implementation version and re-running the
// duplicate-resource check over the output shape: the invariants held
// against input hold equally for what the codec emits.
func (c *Codec) EncodeDocument(records Records, opts ...EncodeOption) (*Document, error) {
	options := EncodeOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	doc := &Document{Jsonapi: &Implementation{Version: Version}}

	switch {
	case records.Null():
		doc.Data = NullResource()
	default:
		if one, ok := records.One(); ok {
			resource, err := c.EncodeResource(one)
			if err != nil {
				return nil, fmt.Errorf("encode primary data: %w", err)
			}
			doc.Data = SingleResource(resource)
		} else {
			many, _ := records.Many()
			resources, err := liftMany(many, "/data", c.EncodeResource)
			if err != nil {
				return nil, err
			}
			doc.Data = MultiResource(resources...)
		}
	}

	if len(options.included) > 0 {
		included, err := liftMany(options.included, "/included", c.EncodeResource)
		if err != nil {
			return nil, err
		}
		doc.Included = included
	}

	if options.links != nil {
		doc.Links = options.links
	}
	if options.meta != nil {
		doc.Meta = options.meta
	}
	if options.pager != nil {
		ApplyPagination(doc, options.pager)
	}
	if c.objectLinks {
		for name, link := range doc.Links {
			link.ObjectForm = true
			doc.Links[name] = link
		}
	}

	if violations := duplicateResources(doc); len(violations) > 0 {
		return nil, violations
	}

	return doc, nil
}

// EncodeResource encodes one flat record into a resource object. The
// record's fields are classified by the declared schema for its type,
// never by runtime value shape; fields with no value present are
// omitted entirely.
func (c *Codec) EncodeResource(record FlatRecord) (Resource, error) {
	resourceType := record.Type()
	if resourceType == "" {
		return Resource{}, newError(CodeMissingRequiredMember, "/type",
			"a record MUST carry a `type` field")
	}
	if record.ID() == "" {
		return Resource{}, newError(CodeMissingRequiredMember, "/id",
			"a record MUST carry an `id` field")
	}

	schema, ok := c.schemas[resourceType]
	if !ok {
		return Resource{}, fmt.Errorf("no schema registered for resource type %q", resourceType)
	}

	resource := Resource{
		Type: resourceType,
		ID:   record.ID(),
	}

	for _, field := range schema.Fields() {
		if field.Name == memberType || field.Name == memberID {
			return Resource{}, newError(CodeReservedField, "/"+field.Name,
				"a schema can not declare fields named: %q", field.Name)
		}

		value, ok := record[field.Name]
		if !ok {
			continue
		}

		wire := c.inflectors.Apply(field.Name)

		if !field.Relationship() {
			if resource.Attributes == nil {
				resource.Attributes = map[string]interface{}{}
			}
			resource.Attributes[wire] = value
			continue
		}

		relationship, err := encodeRelationship(field, value)
		if err != nil {
			return Resource{}, fmt.Errorf("encode relationship %q: %w", field.Name, err)
		}
		if resource.Relationships == nil {
			resource.Relationships = map[string]Relationship{}
		}
		resource.Relationships[wire] = relationship
	}

	return resource, nil
}

// encodeRelationship wraps a record's relationship value in resource
// linkage according to the field's declared cardinality.
func encodeRelationship(field Field, value interface{}) (Relationship, error) {
	switch field.Kind {
	case RelationToOne:
		if value == nil {
			return Relationship{Data: NullRef()}, nil
		}
		ref, ok := value.(Ref)
		if !ok {
			return Relationship{}, fmt.Errorf("to-one field value must be a Ref, got %T", value)
		}
		return Relationship{Data: ToOne(ref)}, nil
	case RelationToMany:
		if value == nil {
			return Relationship{Data: ToMany()}, nil
		}
		refs, ok := value.([]Ref)
		if !ok {
			return Relationship{}, fmt.Errorf("to-many field value must be a []Ref, got %T", value)
		}
		return Relationship{Data: ToMany(refs...)}, nil
	default:
		return Relationship{}, fmt.Errorf("field %q is not relationship-shaped", field.Name)
	}
}

// EncodeErrors builds an error document from the given errors. The
// `data` and `errors` members never co-occur in output; a document
// carries one or the other. Errors without a status are stamped with
// the given HTTP status code.
func (c *Codec) EncodeErrors(status int, errs ...error) *Document {
	doc := &Document{Jsonapi: &Implementation{Version: Version}}
	for _, err := range errs {
		for _, item := range errorList(err) {
			if item.Status == "" {
				item.Status = fmt.Sprintf("%d", status)
			}
			if item.ID == "" {
				item.ID = item.Code
			}
			doc.Errors = append(doc.Errors, item)
		}
	}
	return doc
}

// EncodeErrorDetails builds an error document from a nested
// error-detail tree produced by a validation subsystem, flattening it
// into JSON-Pointer indexed error objects.
func (c *Codec) EncodeErrorDetails(tree interface{}, status int) *Document {
	return &Document{
		Jsonapi: &Implementation{Version: Version},
		Errors:  FormatErrorDetails(tree, status),
	}
}

// PartitionErrorDetails re-nests a validation detail tree keyed by
// storage field names into the wire shape, so that error paths mirror
// input paths: attribute fields under `attributes`, relationship
// fields under `relationships`, with names re-inflected into the wire
// convention. The reserved `id` and `type` fields are the exception
// and stay at the top level.
func (c *Codec) PartitionErrorDetails(resourceType string, details map[string]interface{}) map[string]interface{} {
	schema := c.schemas[resourceType]
	out := map[string]interface{}{}

	for name, detail := range details {
		if name == memberID || name == memberType {
			out[name] = detail
			continue
		}

		member := "attributes"
		if schema != nil {
			if field, ok := schema.Lookup(name); ok && field.Relationship() {
				member = "relationships"
			}
		}

		bucket, ok := out[member].(map[string]interface{})
		if !ok {
			bucket = map[string]interface{}{}
			out[member] = bucket
		}
		bucket[c.inflectors.Apply(name)] = detail
	}

	return out
}

// Name set helpers shared by the resource checks.

func attributeNames(attributes map[string]interface{}) []string {
	names := make([]string, 0, len(attributes))
	for name := range attributes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func relationshipNames(relationships map[string]Relationship) []string {
	names := make([]string, 0, len(relationships))
	for name := range relationships {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func reservedNames(names []string) []string {
	var reserved []string
	for _, name := range names {
		if name == memberType || name == memberID {
			reserved = append(reserved, name)
		}
	}
	return reserved
}

func intersectNames(attributes map[string]interface{}, relationships map[string]Relationship) []string {
	var conflicts []string
	for name := range attributes {
		if _, ok := relationships[name]; ok {
			conflicts = append(conflicts, name)
		}
	}
	sort.Strings(conflicts)
	return conflicts
}

func quoteJoin(names []string) string {
	quoted := make([]string, len(names))
	for i, name := range names {
		quoted[i] = fmt.Sprintf("%q", name)
	}
	return strings.Join(quoted, ", ")
}
