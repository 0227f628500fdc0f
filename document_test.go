package jsonapi

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument_UnmarshalTracksMemberPresence(t *testing.T) {
	// The top-level member rules hinge on which members were actually
	// present, so absent and explicitly-null data must stay distinct
	// after decoding.
	var metaOnly Document
	require.NoError(t, json.Unmarshal([]byte(`{"meta":{"total":3}}`), &metaOnly))
	assert.Nil(t, metaOnly.Data)
	assert.Nil(t, metaOnly.Errors)
	require.NotNil(t, metaOnly.Meta)

	var nullData Document
	require.NoError(t, json.Unmarshal([]byte(`{"data":null}`), &nullData))
	require.NotNil(t, nullData.Data)
	assert.True(t, nullData.Data.Null())

	var errorsOnly Document
	require.NoError(t, json.Unmarshal([]byte(`{"errors":[]}`), &errorsOnly))
	assert.NotNil(t, errorsOnly.Errors)
	assert.Nil(t, errorsOnly.Data)
}

func TestDocument_UnmarshalSingleResource(t *testing.T) {
	raw := `{
		"data": {
			"type": "articles",
			"id": "1",
			"attributes": {"title": "JSON:API paints my bikeshed!"},
			"relationships": {
				"author": {"data": {"type": "people", "id": "9"}}
			}
		}
	}`

	var doc Document
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))

	resource, ok := doc.Data.One()
	require.True(t, ok)
	assert.Equal(t, "articles", resource.Type)
	assert.Equal(t, "1", resource.ID)
	assert.Equal(t, "JSON:API paints my bikeshed!", resource.Attributes["title"])

	author := resource.Relationships["author"]
	require.NotNil(t, author.Data)
	ref, ok := author.Data.One()
	require.True(t, ok)
	assert.Equal(t, Ref{Type: "people", ID: "9"}, ref)
}

func TestDocument_UnmarshalResourceCollection(t *testing.T) {
	raw := `{"data": [
		{"type": "articles", "id": "1"},
		{"type": "articles", "id": "2"}
	]}`

	var doc Document
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))

	resources, ok := doc.Data.Many()
	require.True(t, ok)
	require.Len(t, resources, 2)
	assert.Equal(t, "1", resources[0].ID)
	assert.Equal(t, "2", resources[1].ID)
}

func TestDocument_MarshalNullData(t *testing.T) {
	doc := Document{Data: NullResource()}

	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":null}`, string(raw))
}

func TestDocument_MarshalOmitsAbsentData(t *testing.T) {
	doc := Document{Meta: map[string]interface{}{"total": 3}}

	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"meta":{"total":3}}`, string(raw))
}

func TestPrimaryData_Accessors(t *testing.T) {
	single := SingleResource(Resource{Type: "articles", ID: "1"})
	one, ok := single.One()
	require.True(t, ok)
	assert.Equal(t, "1", one.ID)
	_, ok = single.Many()
	assert.False(t, ok)

	multi := MultiResource(
		Resource{Type: "articles", ID: "1"},
		Resource{Type: "articles", ID: "2"},
	)
	many, ok := multi.Many()
	require.True(t, ok)
	assert.Len(t, many, 2)
	_, ok = multi.One()
	assert.False(t, ok)

	null := NullResource()
	assert.True(t, null.Null())
	_, ok = null.One()
	assert.False(t, ok)
	_, ok = null.Many()
	assert.False(t, ok)
}

func TestPrimaryData_IterVisitsInOrder(t *testing.T) {
	multi := MultiResource(
		Resource{Type: "articles", ID: "1"},
		Resource{Type: "articles", ID: "2"},
		Resource{Type: "articles", ID: "3"},
	)

	var ids []string
	for resource := range multi.Iter() {
		ids = append(ids, resource.ID)
	}
	assert.Equal(t, []string{"1", "2", "3"}, ids)

	ids = nil
	for resource := range SingleResource(Resource{ID: "9"}).Iter() {
		ids = append(ids, resource.ID)
	}
	assert.Equal(t, []string{"9"}, ids)

	for range NullResource().Iter() {
		t.Fatal("null primary data should yield nothing")
	}
}

func TestResource_Ref(t *testing.T) {
	resource := Resource{Type: "articles", ID: "1"}
	assert.Equal(t, Ref{Type: "articles", ID: "1"}, resource.Ref())
}

func TestResource_MarshalAlwaysEmitsIdentifiers(t *testing.T) {
	raw, err := json.Marshal(Resource{Type: "people", ID: "9"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"people","id":"9"}`, string(raw))
}
