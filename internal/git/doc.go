// Package git provides the storage layers stagesync reconciles.
//
// It wraps go-git and go-billy and provides:
//   - ObjectStore: content-addressed blobs and serialized indexes
//   - RefStore: stage name to index hash pointers (local and remote partitions)
//   - WorkingTree: element files under the checkout root
//
// This package should be the only place that touches go-git storage directly.
package git
