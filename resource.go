package jsonapi

// Reserved resource object member names. Neither attributes nor
// relationships may contain a field with one of these names.
const (
	memberType = "type"
	memberID   = "id"
)

// Resource represents a JSON:API resource object.
type Resource struct {
	ID            string                  `json:"id"`
	Type          string                  `json:"type"`
	Attributes    map[string]interface{}  `json:"attributes,omitempty"`
	Relationships map[string]Relationship `json:"relationships,omitempty"`
	Links         map[string]Link         `json:"links,omitempty"`
	Meta          map[string]interface{}  `json:"meta,omitempty"`
}

// Ref returns the resource identifier for this resource.
func (r Resource) Ref() Ref {
	return Ref{Type: r.Type, ID: r.ID}
}

// Ref is a resource identifier: the minimal {type, id} reference used
// inside relationship data and as the relationship value of a decoded
// flat record. The pair must be unique across a document's primary
// data and included resources.
type Ref struct {
	Type string                 `json:"type"`
	ID   string                 `json:"id"`
	Meta map[string]interface{} `json:"meta,omitempty"`
}
