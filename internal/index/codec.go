package index

import (
	"encoding/json"
	"fmt"

	stagesyncerrors "stagesync.dev/stagesync/internal/errors"
)

// Encode serializes the index. Output is canonical (map keys are sorted by
// encoding/json), so equal indexes always encode to equal bytes.
func Encode(idx *Index) ([]byte, error) {
	if idx == nil {
		return nil, fmt.Errorf("cannot encode nil index")
	}
	if err := idx.Validate(); err != nil {
		return nil, err
	}
	elements := idx.Elements
	if elements == nil {
		elements = map[string]*Entry{}
	}
	data, err := json.Marshal(&Index{StageName: idx.StageName, Elements: elements})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal index: %w", err)
	}
	return data, nil
}

// Decode parses a serialized index and checks its invariants
func Decode(data []byte) (*Index, error) {
	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, stagesyncerrors.NewInvalidIndexError("", fmt.Sprintf("failed to parse: %v", err))
	}
	if idx.Elements == nil {
		idx.Elements = make(map[string]*Entry)
	}
	if err := idx.Validate(); err != nil {
		return nil, err
	}
	return &idx, nil
}

// Validate checks that every entry is keyed by its own well-formed element key
// and carries well-formed hashes
func (i *Index) Validate() error {
	for key, entry := range i.Elements {
		if entry == nil {
			return stagesyncerrors.NewInvalidIndexError(key, "entry is empty")
		}
		if !IsElementKey(key) {
			return stagesyncerrors.NewInvalidIndexError(key, "key must match <type>/<name>")
		}
		if entry.ElementKey != key {
			return stagesyncerrors.NewInvalidIndexError(key, fmt.Sprintf("entry records key %q", entry.ElementKey))
		}
		if !IsHash(string(entry.LocalContentHash)) {
			return stagesyncerrors.NewInvalidIndexError(key, "malformed local content hash")
		}
		if entry.BaseContentHash != nil && !IsHash(string(*entry.BaseContentHash)) {
			return stagesyncerrors.NewInvalidIndexError(key, "malformed base content hash")
		}
	}
	return nil
}
