// Package deeplink turns test ids into shareable links and back.
package deeplink

import (
	"errors"
	"net/url"
	"strings"
)

// Prefix marks a start parameter as a test reference.
const Prefix = "s_"

// ErrInvalidRef is returned by Parse for anything that does not name a test.
var ErrInvalidRef = errors.New("not a test reference")

// Builder builds links from a fixed base such as
// "https://t.me/knowme_bot?start=".
type Builder struct {
	base string
}

// NewBuilder returns a Builder appending test ids to base.
func NewBuilder(base string) Builder {
	return Builder{base: base}
}

// Link returns the shareable link for testID.
func (b Builder) Link(testID string) string {
	return b.base + testID
}

// Parse extracts the test id from a raw start parameter or a full link.
func Parse(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if strings.Contains(ref, "?") {
		u, err := url.Parse(ref)
		if err != nil {
			return "", ErrInvalidRef
		}
		ref = u.Query().Get("start")
	}
	if !strings.HasPrefix(ref, Prefix) || len(ref) == len(Prefix) {
		return "", ErrInvalidRef
	}
	if strings.ContainsAny(ref, " \t\n/?&#") {
		return "", ErrInvalidRef
	}
	return ref, nil
}
