// Package runtime provides the execution context for stagesync commands.
//
// It encapsulates shared dependencies needed by actions: the repository root,
// its configuration, the logger and the storage, working tree and merger
// collaborators.
package runtime
