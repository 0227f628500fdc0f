package jsonapi

import (
	"bytes"

	json "github.com/goccy/go-json"
)

// Link represents a JSON:API link. On the wire a link is either a bare
// URL string or an object with an "href" member and optional "meta";
// both forms decode into the same Link value.
type Link struct {
	Href string                 `json:"href,omitempty"`
	Meta map[string]interface{} `json:"meta,omitempty"`

	// ObjectForm forces the object representation on encode even when
	// no meta is present. The common case in the JSON:API examples is
	// the bare string form, so that is the default.
	ObjectForm bool `json:"-"`
}

// MarshalJSON implements json.Marshaler for Link. Links without meta
// render as bare URL strings unless ObjectForm is set.
func (l Link) MarshalJSON() ([]byte, error) {
	if l.Href == "" {
		return []byte("null"), nil
	}

	if len(l.Meta) == 0 && !l.ObjectForm {
		return json.Marshal(l.Href)
	}

	type link struct {
		Href string                 `json:"href"`
		Meta map[string]interface{} `json:"meta,omitempty"`
	}

	return json.Marshal(link{Href: l.Href, Meta: l.Meta})
}

// UnmarshalJSON implements json.Unmarshaler for Link. Object forms
// without an "href" member fail with a malformed_link error.
func (l *Link) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		l.Href = ""
		l.Meta = nil
		return nil
	}

	if bytes.HasPrefix(data, []byte("{")) {
		var link struct {
			Href *string                `json:"href"`
			Meta map[string]interface{} `json:"meta"`
		}

		if err := json.Unmarshal(data, &link); err != nil {
			return err
		}

		if link.Href == nil {
			return newError(CodeMalformedLink, "",
				"a link object MUST contain an `href` member")
		}

		l.Href = *link.Href
		l.Meta = link.Meta
		return nil
	}

	l.Meta = nil
	return json.Unmarshal(data, &l.Href)
}
