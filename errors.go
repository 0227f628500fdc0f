package jsonapi

import (
	"errors"
	"fmt"
	"iter"
	"sort"
	"strconv"

	"github.com/gobuffalo/flect"
)

// Error codes carried by the structured errors this package raises.
// Every failure is a deterministic function of input shape; there are
// no transient errors in the transcoding core.
const (
	CodeMissingRequiredMember     = "missing_required_member"
	CodeReservedField             = "reserved_field"
	CodeFieldConflicts            = "field_conflicts"
	CodeMissingRelationshipMember = "missing_relationship_member"
	CodeErrorsAndData             = "errors_and_data"
	CodeMissingTopLevelMember     = "missing_top_level_member"
	CodeIncludedWithoutData       = "included_without_data"
	CodeIncludedNotAllowed        = "included_not_allowed"
	CodeDuplicateResource         = "duplicate_resource"
	CodeVersionTooHigh            = "version_too_high"
	CodeMalformedLink             = "malformed_link"
)

// Error represents a JSON:API error object.
type Error struct {
	ID     string                 `json:"id,omitempty"`
	Links  map[string]Link        `json:"links,omitempty"`
	Status string                 `json:"status,omitempty"`
	Code   string                 `json:"code,omitempty"`
	Title  string                 `json:"title,omitempty"`
	Detail string                 `json:"detail,omitempty"`
	Source *ErrorSource           `json:"source,omitempty"`
	Meta   map[string]interface{} `json:"meta,omitempty"`
}

// ErrorSource references the location in the request document or
// query string that caused an error.
type ErrorSource struct {
	Pointer   string `json:"pointer,omitempty"`
	Parameter string `json:"parameter,omitempty"`
}

// Error returns a string representation of the error. The returned
// string includes the source pointer and code when available.
func (e Error) Error() string {
	detail := e.Detail
	if e.Title != "" {
		detail = fmt.Sprintf("%s: %s", e.Title, e.Detail)
	}
	if e.Code != "" {
		detail = fmt.Sprintf("%s (%s)", detail, e.Code)
	}
	if e.Source != nil && e.Source.Pointer != "" {
		detail = fmt.Sprintf("%s: %s", e.Source.Pointer, detail)
	}
	return detail
}

// Pointer returns the JSON-Pointer of the error source, or "" if the
// error carries none.
func (e Error) Pointer() string {
	if e.Source == nil {
		return ""
	}
	return e.Source.Pointer
}

// newError constructs a structured error for the given code and
// source pointer. The title is the titleized code.
func newError(code, pointer, format string, args ...interface{}) Error {
	err := Error{
		Code:   code,
		Title:  flect.Titleize(code),
		Detail: fmt.Sprintf(format, args...),
	}
	if pointer != "" {
		err.Source = &ErrorSource{Pointer: pointer}
	}
	return err
}

// MultiError is a collection of JSON:API errors reported together as
// one combined failure, such as the accumulated structural violations
// of a document.
type MultiError []Error

// Error implements the error interface by joining the collected
// errors.
func (me MultiError) Error() string {
	if len(me) == 0 {
		return "no errors"
	}
	if len(me) == 1 {
		return me[0].Error()
	}

	errs := make([]error, len(me))
	for i := range me {
		errs[i] = me[i]
	}
	return errors.Join(errs...).Error()
}

// prefix returns a copy of the collection with every source pointer
// prefixed, used to index per-element errors when decoding a "many"
// document.
func (me MultiError) prefix(pointer string) MultiError {
	out := make(MultiError, len(me))
	for i, err := range me {
		src := ErrorSource{}
		if err.Source != nil {
			src = *err.Source
		}
		src.Pointer = pointer + src.Pointer
		err.Source = &src
		out[i] = err
	}
	return out
}

// errorList flattens an error into a MultiError, unwrapping nested
// collections and converting foreign errors into bare error objects.
func errorList(err error) MultiError {
	var (
		multi  MultiError
		single Error
	)
	switch {
	case errors.As(err, &multi):
		return multi
	case errors.As(err, &single):
		return MultiError{single}
	default:
		return MultiError{{Detail: err.Error()}}
	}
}

// ErrorDetail is a terminal message in a nested error-detail tree, as
// produced by a validation subsystem. The zero Code is allowed.
type ErrorDetail struct {
	Message string
	Code    string
}

// FlattenErrorDetails recursively walks a heterogeneous tree of nested
// maps, slices, and leaf messages, yielding (JSON-Pointer, detail)
// pairs in deterministic order: map keys visited sorted, slice indices
// in order. When a slice element is itself a terminal message the
// index is not appended to the pointer, so multiple errors for the
// same logical source share one pointer.
//
// Leaves may be ErrorDetail values, strings, errors, or anything
// convertible with fmt.Sprint.
func FlattenErrorDetails(tree interface{}) iter.Seq2[string, ErrorDetail] {
	return func(yield func(string, ErrorDetail) bool) {
		flattenErrorDetails(tree, "", yield)
	}
}

func flattenErrorDetails(data interface{}, source string, yield func(string, ErrorDetail) bool) bool {
	switch node := data.(type) {
	case []interface{}:
		for idx, item := range node {
			itemSource := source
			if !isTerminalDetail(item) {
				itemSource = fmt.Sprintf("%s/%d", source, idx)
			}
			if !flattenErrorDetails(item, itemSource, yield) {
				return false
			}
		}
		return true
	case map[string]interface{}:
		keys := make([]string, 0, len(node))
		for key := range node {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			if !flattenErrorDetails(node[key], source+"/"+key, yield) {
				return false
			}
		}
		return true
	default:
		return yield(source, toErrorDetail(node))
	}
}

// isTerminalDetail reports whether a tree node is a leaf message
// rather than a further nested container.
func isTerminalDetail(node interface{}) bool {
	switch node.(type) {
	case []interface{}, map[string]interface{}:
		return false
	}
	return true
}

func toErrorDetail(node interface{}) ErrorDetail {
	switch leaf := node.(type) {
	case ErrorDetail:
		return leaf
	case Error:
		return ErrorDetail{Message: leaf.Detail, Code: leaf.Code}
	case error:
		return ErrorDetail{Message: leaf.Error()}
	case string:
		return ErrorDetail{Message: leaf}
	default:
		return ErrorDetail{Message: fmt.Sprint(leaf)}
	}
}

// FormatErrorDetails flattens a nested error-detail tree into the flat
// array of JSON:API error objects, stamping each with the given HTTP
// status code.
func FormatErrorDetails(tree interface{}, status int) []Error {
	var out []Error
	for pointer, detail := range FlattenErrorDetails(tree) {
		err := Error{
			ID:     detail.Code,
			Status: strconv.Itoa(status),
			Title:  flect.Titleize(detail.Code),
			Detail: detail.Message,
			Source: &ErrorSource{Pointer: pointer},
		}
		out = append(out, err)
	}
	return out
}
