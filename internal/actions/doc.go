// Package actions provides high-level business logic for CLI commands.
//
// Each action corresponds to a stagesync command (merge, status, abort,
// diff, etc.) and orchestrates operations across the stores, the working
// tree and the merge state markers.
//
// Key patterns:
//   - Actions accept runtime.Context which provides the stores, Splog and other dependencies
//   - Actions return values and narrate through Splog
//   - Actions handle user interaction through the tui package
package actions
