package jsonapi

import (
	"net/url"
	"strconv"
)

// Pager supplies the pagination links and metadata for a document
// envelope without knowing the storage mechanism behind the page.
type Pager interface {
	// PageLinks returns the pagination links: first, last, prev, next.
	PageLinks() map[string]Link
	// PageMeta returns the pagination counters for meta.pagination.
	PageMeta() map[string]interface{}
}

// ApplyPagination reshapes a cursor into the document's links and
// meta.pagination members. Links already present on the document are
// preserved; pagination link names overwrite on collision.
func ApplyPagination(doc *Document, pager Pager) {
	links := pager.PageLinks()
	if len(links) > 0 && doc.Links == nil {
		doc.Links = map[string]Link{}
	}
	for name, link := range links {
		doc.Links[name] = link
	}

	if doc.Meta == nil {
		doc.Meta = map[string]interface{}{}
	}
	doc.Meta["pagination"] = pager.PageMeta()
}

// PageNumberCursor paginates by page number. URL is the request URL
// the page links derive from; the page query parameter is replaced
// per link.
type PageNumberCursor struct {
	URL   string
	Param string // page query parameter name, default "page"
	Page  int    // current page, 1-based
	Pages int    // total pages
	Count int    // total record count
}

func (p PageNumberCursor) param() string {
	if p.Param == "" {
		return "page"
	}
	return p.Param
}

// PageLinks returns first/last/prev/next links for the cursor. Absent
// boundaries produce no link rather than a null one.
func (p PageNumberCursor) PageLinks() map[string]Link {
	links := map[string]Link{}
	put := func(name string, page int) {
		if page < 1 || page > p.Pages {
			return
		}
		links[name] = Link{Href: replaceQueryParam(p.URL, p.param(), strconv.Itoa(page))}
	}

	put("first", 1)
	put("last", p.Pages)
	put("prev", p.Page-1)
	put("next", p.Page+1)
	return links
}

// PageMeta returns the page counters.
func (p PageNumberCursor) PageMeta() map[string]interface{} {
	return map[string]interface{}{
		"page":  p.Page,
		"pages": p.Pages,
		"count": p.Count,
	}
}

// LimitOffsetCursor paginates by limit and offset. The offset query
// parameter is replaced per link; the first link removes it.
type LimitOffsetCursor struct {
	URL         string
	LimitParam  string // default "page[limit]"
	OffsetParam string // default "page[offset]"
	Count       int
	Limit       int
	Offset      int
}

func (p LimitOffsetCursor) limitParam() string {
	if p.LimitParam == "" {
		return "page[limit]"
	}
	return p.LimitParam
}

func (p LimitOffsetCursor) offsetParam() string {
	if p.OffsetParam == "" {
		return "page[offset]"
	}
	return p.OffsetParam
}

// PageLinks returns first/last/prev/next links for the cursor.
func (p LimitOffsetCursor) PageLinks() map[string]Link {
	if p.Count == 0 || p.Limit <= 0 {
		return map[string]Link{}
	}

	links := map[string]Link{
		"first": {Href: removeQueryParam(p.URL, p.offsetParam())},
	}

	last := ((p.Count - 1) / p.Limit) * p.Limit
	withLimit := replaceQueryParam(p.URL, p.limitParam(), strconv.Itoa(p.Limit))
	links["last"] = Link{Href: replaceQueryParam(withLimit, p.offsetParam(), strconv.Itoa(last))}

	if next := p.Offset + p.Limit; next < p.Count {
		links["next"] = Link{Href: replaceQueryParam(p.URL, p.offsetParam(), strconv.Itoa(next))}
	}
	if p.Offset > 0 {
		prev := p.Offset - p.Limit
		if prev <= 0 {
			links["prev"] = Link{Href: removeQueryParam(p.URL, p.offsetParam())}
		} else {
			links["prev"] = Link{Href: replaceQueryParam(p.URL, p.offsetParam(), strconv.Itoa(prev))}
		}
	}

	return links
}

// PageMeta returns the limit/offset counters.
func (p LimitOffsetCursor) PageMeta() map[string]interface{} {
	return map[string]interface{}{
		"count":  p.Count,
		"limit":  p.Limit,
		"offset": p.Offset,
	}
}

func replaceQueryParam(rawURL, key, value string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	query := u.Query()
	query.Set(key, value)
	u.RawQuery = query.Encode()
	return u.String()
}

func removeQueryParam(rawURL, key string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	query := u.Query()
	query.Del(key)
	u.RawQuery = query.Encode()
	return u.String()
}
