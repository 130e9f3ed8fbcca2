// Package tui provides an interactive terminal user interface for sitesearch.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/sitesearch-cli/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the TUI.
type Ports struct {
	// Search runs searches and reads the local history.
	Search driving.SearchService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(search driving.SearchService) *Ports {
	return &Ports{Search: search}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
