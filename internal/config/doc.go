// Package config manages stagesync configuration and state persistence.
//
// It handles:
//   - Repository configuration in .stagesync/config.json, overridable by
//     STAGESYNC_* environment variables
//   - Merge state markers left for the commit step (pending remote index and
//     conflict list)
package config
