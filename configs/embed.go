// Package configs provides the embedded default document catalog.
//
// The catalog is embedded at build time with //go:embed so it ships
// inside the binary in all distributions. `bylaw catalog init` writes
// it to the data directory, where it can be edited before ingestion.
package configs

import _ "embed"

// DefaultCatalog is the catalog template written by `bylaw catalog init`.
//
//go:embed catalog.yaml
var DefaultCatalog []byte
