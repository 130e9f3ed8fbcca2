// Package domain defines the core business entities for sitesearch.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - PageResult: One crawled page and its MatchRecord
//   - SearchSession: Accumulated results for one (base URL, search text) pair
//   - SearchOutcome: The render-ready view of a completed search
//   - AppSettings: Endpoint and storage configuration
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
