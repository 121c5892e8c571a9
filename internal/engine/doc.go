// Package engine reconciles a local index with a remote index.
//
// It is the core of stagesync, responsible for:
//   - Computing the sorted union of element keys to consider
//   - Deciding one outcome per element (deleted, up to date, fast-forward,
//     three-way merge)
//   - Realizing each decision against the object store and the working tree
//
// The engine never persists indexes or refs. It returns its working copy of
// the local index and leaves persistence to the caller.
package engine
