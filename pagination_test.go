package jsonapi

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// queryParam extracts one query parameter from a link href.
func queryParam(t *testing.T, link Link, key string) (string, bool) {
	t.Helper()
	u, err := url.Parse(link.Href)
	require.NoError(t, err)
	if !u.Query().Has(key) {
		return "", false
	}
	return u.Query().Get(key), true
}

func TestPageNumberCursor_MiddlePage(t *testing.T) {
	cursor := PageNumberCursor{
		URL:   "http://example.com/articles?page=3",
		Page:  3,
		Pages: 5,
		Count: 42,
	}

	links := cursor.PageLinks()
	require.Len(t, links, 4)

	for name, page := range map[string]string{
		"first": "1",
		"prev":  "2",
		"next":  "4",
		"last":  "5",
	} {
		got, ok := queryParam(t, links[name], "page")
		require.True(t, ok, "link %q", name)
		assert.Equal(t, page, got, "link %q", name)
	}

	assert.Equal(t, map[string]interface{}{
		"page":  3,
		"pages": 5,
		"count": 42,
	}, cursor.PageMeta())
}

func TestPageNumberCursor_Boundaries(t *testing.T) {
	// The first page has no prev link; the last page has no next link.
	first := PageNumberCursor{URL: "http://example.com/articles", Page: 1, Pages: 3}
	links := first.PageLinks()
	assert.NotContains(t, links, "prev")
	assert.Contains(t, links, "next")

	last := PageNumberCursor{URL: "http://example.com/articles", Page: 3, Pages: 3}
	links = last.PageLinks()
	assert.Contains(t, links, "prev")
	assert.NotContains(t, links, "next")

	single := PageNumberCursor{URL: "http://example.com/articles", Page: 1, Pages: 1}
	links = single.PageLinks()
	assert.NotContains(t, links, "prev")
	assert.NotContains(t, links, "next")
	assert.Contains(t, links, "first")
	assert.Contains(t, links, "last")
}

func TestPageNumberCursor_CustomParam(t *testing.T) {
	cursor := PageNumberCursor{
		URL:   "http://example.com/articles",
		Param: "page[number]",
		Page:  1,
		Pages: 2,
	}

	got, ok := queryParam(t, cursor.PageLinks()["next"], "page[number]")
	require.True(t, ok)
	assert.Equal(t, "2", got)
}

func TestLimitOffsetCursor_MiddlePage(t *testing.T) {
	cursor := LimitOffsetCursor{
		URL:    "http://example.com/articles",
		Count:  10,
		Limit:  3,
		Offset: 3,
	}

	links := cursor.PageLinks()
	require.Len(t, links, 4)

	// The first link drops the offset parameter entirely.
	_, ok := queryParam(t, links["first"], "page[offset]")
	assert.False(t, ok)

	// prev from the second page also drops the offset.
	_, ok = queryParam(t, links["prev"], "page[offset]")
	assert.False(t, ok)

	next, ok := queryParam(t, links["next"], "page[offset]")
	require.True(t, ok)
	assert.Equal(t, "6", next)

	// The last page starts at the greatest limit-aligned offset below
	// the count.
	last, ok := queryParam(t, links["last"], "page[offset]")
	require.True(t, ok)
	assert.Equal(t, "9", last)

	assert.Equal(t, map[string]interface{}{
		"count":  10,
		"limit":  3,
		"offset": 3,
	}, cursor.PageMeta())
}

func TestLimitOffsetCursor_DeepOffset(t *testing.T) {
	cursor := LimitOffsetCursor{
		URL:    "http://example.com/articles",
		Count:  10,
		Limit:  3,
		Offset: 9,
	}

	links := cursor.PageLinks()
	assert.NotContains(t, links, "next")

	prev, ok := queryParam(t, links["prev"], "page[offset]")
	require.True(t, ok)
	assert.Equal(t, "6", prev)
}

func TestLimitOffsetCursor_EmptyCollection(t *testing.T) {
	cursor := LimitOffsetCursor{URL: "http://example.com/articles", Count: 0, Limit: 3}
	assert.Empty(t, cursor.PageLinks())
}

func TestLimitOffsetCursor_CustomParams(t *testing.T) {
	cursor := LimitOffsetCursor{
		URL:         "http://example.com/articles",
		LimitParam:  "limit",
		OffsetParam: "offset",
		Count:       6,
		Limit:       2,
		Offset:      0,
	}

	next, ok := queryParam(t, cursor.PageLinks()["next"], "offset")
	require.True(t, ok)
	assert.Equal(t, "2", next)
}

func TestApplyPagination_MergesIntoEnvelope(t *testing.T) {
	doc := &Document{
		Links: map[string]Link{"self": {Href: "http://example.com/articles?page=2"}},
	}
	cursor := PageNumberCursor{
		URL:   "http://example.com/articles?page=2",
		Page:  2,
		Pages: 4,
		Count: 40,
	}

	ApplyPagination(doc, cursor)

	// Existing non-pagination links survive the merge.
	assert.Equal(t, "http://example.com/articles?page=2", doc.Links["self"].Href)
	assert.Contains(t, doc.Links, "first")
	assert.Contains(t, doc.Links, "last")
	assert.Contains(t, doc.Links, "prev")
	assert.Contains(t, doc.Links, "next")

	pagination, ok := doc.Meta["pagination"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 40, pagination["count"])
}

func TestEncode_WithPagination(t *testing.T) {
	c := NewCodec(WithSchemas(articleSchemas()...))

	doc, err := c.EncodeDocument(
		ManyRecords(FlatRecord{"type": "articles", "id": "1"}),
		WithPagination(PageNumberCursor{
			URL:   "http://example.com/articles",
			Page:  1,
			Pages: 2,
			Count: 2,
		}),
	)
	require.NoError(t, err)
	assert.Contains(t, doc.Links, "next")
	assert.Contains(t, doc.Meta, "pagination")
}
