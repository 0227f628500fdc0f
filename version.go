package jsonapi

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is the highest JSON:API specification version this
// implementation supports. It is stamped on every encoded document
// and bounds the version a client may request.
const Version = "1.0"

// compareVersions compares two dotted-numeric version strings,
// returning -1, 0, or 1. Missing segments compare as zero, so
// "1" == "1.0". Non-numeric segments are rejected.
func compareVersions(a, b string) (int, error) {
	as, err := parseVersion(a)
	if err != nil {
		return 0, err
	}
	bs, err := parseVersion(b)
	if err != nil {
		return 0, err
	}

	for i := 0; i < len(as) || i < len(bs); i++ {
		var av, bv int
		if i < len(as) {
			av = as[i]
		}
		if i < len(bs) {
			bv = bs[i]
		}
		if av != bv {
			if av < bv {
				return -1, nil
			}
			return 1, nil
		}
	}
	return 0, nil
}

func parseVersion(v string) ([]int, error) {
	parts := strings.Split(v, ".")
	out := make([]int, len(parts))
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid version segment %q in %q", part, v)
		}
		out[i] = n
	}
	return out, nil
}

// validateVersion checks a client-supplied implementation object
// against the supported version, failing with a version_too_high
// error when the request exceeds it.
func validateVersion(impl *Implementation) *Error {
	if impl == nil || impl.Version == "" {
		return nil
	}

	cmp, err := compareVersions(impl.Version, Version)
	if err != nil || cmp > 0 {
		e := newError(CodeVersionTooHigh, "/jsonapi/version",
			"the JSON API version requested is too high and not supported: %s",
			impl.Version)
		return &e
	}
	return nil
}
