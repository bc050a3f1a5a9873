// Package catalog embeds the preset destination and activity labels.
// The API serves them when no database is configured.
package catalog

import _ "embed"

// Presets contains the raw bytes of presets.yaml, embedded at compile time.
//
//go:embed presets.yaml
var Presets []byte
