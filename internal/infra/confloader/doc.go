// Package confloader layers service configuration from several sources
// using koanf.
//
// Priority (highest to lowest):
//
//  1. Command-line flags (WithOverrides)
//  2. Environment variables (PREFIX_SECTION_KEY)
//  3. YAML configuration file
//  4. Defaults already present in the target struct
//
// Watcher notifies callers when the configuration file changes on disk so
// hot-reloadable settings (the log level) can be re-applied.
package confloader
