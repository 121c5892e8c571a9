// Package index models the snapshot of tracked elements for one stage.
//
// An Index is immutable once persisted: merges operate on clones and a new
// hash is computed for every mutated version.
package index

import (
	"encoding/json"
	"regexp"
	"sort"
)

// Element keys are "<type>/<name>" with both segments alphanumeric.
var elementKeyRegex = regexp.MustCompile(`^[A-Za-z0-9]+/[A-Za-z0-9]+$`)

// File filters are looser than stored keys: the name may contain anything.
var fileFilterRegex = regexp.MustCompile(`^[A-Za-z0-9]+/.+$`)

// IsElementKey reports whether key is a valid stored element key
func IsElementKey(key string) bool {
	return elementKeyRegex.MatchString(key)
}

// IsFileFilter reports whether entry is a valid file filter entry
func IsFileFilter(entry string) bool {
	return fileFilterRegex.MatchString(entry)
}

// Entry is one tracked element's state
type Entry struct {
	LocalContentHash Hash            `json:"localContentHash"`
	BaseContentHash  *Hash           `json:"baseContentHash,omitempty"` // nil when there is no common ancestor
	Fingerprint      string          `json:"fingerprint,omitempty"`
	Metadata         json.RawMessage `json:"metadata,omitempty"`
	ElementKey       string          `json:"elementKey"`
}

// HasBase reports whether the entry records a base content hash
func (e *Entry) HasBase() bool {
	return e.BaseContentHash != nil
}

// BaseEquals reports whether the base hash is present and equal to h
func (e *Entry) BaseEquals(h Hash) bool {
	return e.BaseContentHash != nil && *e.BaseContentHash == h
}

// Clone returns a deep copy of the entry
func (e *Entry) Clone() *Entry {
	c := *e
	if e.BaseContentHash != nil {
		base := *e.BaseContentHash
		c.BaseContentHash = &base
	}
	if e.Metadata != nil {
		c.Metadata = append(json.RawMessage(nil), e.Metadata...)
	}
	return &c
}

// Index is a snapshot of all tracked elements for one stage
type Index struct {
	StageName string            `json:"stageName"`
	Elements  map[string]*Entry `json:"elements"`
}

// New creates an empty index for the given stage
func New(stageName string) *Index {
	return &Index{
		StageName: stageName,
		Elements:  make(map[string]*Entry),
	}
}

// Clone returns an independent copy of the index under a new stage name.
// Entries are copied so that mutating the clone never touches the source.
func (i *Index) Clone(stageName string) *Index {
	c := New(stageName)
	for key, entry := range i.Elements {
		c.Elements[key] = entry.Clone()
	}
	return c
}

// Get returns the entry for key and whether it exists
func (i *Index) Get(key string) (*Entry, bool) {
	if i == nil {
		return nil, false
	}
	entry, ok := i.Elements[key]
	return entry, ok
}

// Put adds or replaces an entry, keyed by its ElementKey
func (i *Index) Put(entry *Entry) {
	if i.Elements == nil {
		i.Elements = make(map[string]*Entry)
	}
	i.Elements[entry.ElementKey] = entry
}

// Keys returns the element keys in sorted order
func (i *Index) Keys() []string {
	if i == nil {
		return nil
	}
	keys := make([]string, 0, len(i.Elements))
	for key := range i.Elements {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of tracked elements
func (i *Index) Len() int {
	if i == nil {
		return 0
	}
	return len(i.Elements)
}
