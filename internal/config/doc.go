// Package config loads the arbor configuration file.
//
// The file is JSONC (JSON with Comments) — a user-edited file deserves
// comments — so github.com/tidwall/jsonc strips them before parsing with
// the standard encoding/json library. A missing file is not an error:
// every field has a default, and most users never create a config at all.
//
// The loaded values are plain inputs to the lifecycle components; nothing
// below the CLI layer reads configuration itself.
package config
