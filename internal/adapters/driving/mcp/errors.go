// Package mcp exposes site search over the Model Context Protocol, so AI
// assistants can run and resume searches and read the search history.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")
