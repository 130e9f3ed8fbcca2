package mcp

import (
	"github.com/custodia-labs/sitesearch-cli/internal/core/ports/driving"
)

// Ports aggregates the driving ports the MCP server needs.
type Ports struct {
	// Search runs searches and reads history.
	Search driving.SearchService
}

// Validate reports a missing port. A nil *Ports is treated as empty.
func (p *Ports) Validate() error {
	if p == nil || p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
