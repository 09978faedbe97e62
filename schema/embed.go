// Package schema provides the embedded JSON schemas for manifests and external
// report data.
package schema

import "embed"

// FS contains the embedded schema files.
//
//go:embed *.schema.json
var FS embed.FS
