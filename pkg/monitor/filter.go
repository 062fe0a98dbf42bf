package monitor

import (
	"strings"

	"github.com/blobr/blobr/pkg/celenium"
)

// Filter is a case-insensitive namespace substring match. The zero value
// matches every blob.
type Filter struct {
	pattern string
}

// NewFilter lower-cases pattern and otherwise keeps it verbatim, whitespace
// included. An empty pattern yields an inactive filter.
func NewFilter(pattern string) Filter {
	return Filter{pattern: strings.ToLower(pattern)}
}

// Active reports whether a pattern is configured.
func (f Filter) Active() bool { return f.pattern != "" }

func (f Filter) String() string { return f.pattern }

// Match reports whether the blob's namespace id contains the pattern. A blob
// without a namespace id never matches an active filter.
func (f Filter) Match(b celenium.Blob) bool {
	if !f.Active() {
		return true
	}
	id := b.NamespaceID()
	if id == "" {
		return false
	}
	return strings.Contains(strings.ToLower(id), f.pattern)
}
