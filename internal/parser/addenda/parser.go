// Package addenda recovers business identifiers from vendor addenda blocks.
//
// Addenda are free-form extensions appended to a CFDI document. Each vendor
// writes them differently, so every format is handled by its own Parser and
// looked up through a Registry.
package addenda

import (
	"github.com/rezonia/cfdi-reader/internal/model"
)

// Location tells the document reader where a vendor keeps its free text.
// Container is searched anywhere below the Addenda element, Element must be
// a direct child of Container, and Attr names the attribute holding the text.
type Location struct {
	Namespace string
	Container string
	Element   string
	Attr      string
}

// Parser turns a vendor's raw addenda text into identifiers
type Parser interface {
	// Vendor returns a short vendor name
	Vendor() string

	// Location returns where the raw text lives in the document
	Location() Location

	// Parse returns nil when nothing could be recovered. It never fails.
	Parse(text string) *model.AddendaInfo
}

// Registry holds the known vendor parsers
type Registry struct {
	parsers []Parser
}

// NewRegistry creates a registry with the built-in parsers
func NewRegistry() *Registry {
	return &Registry{
		parsers: []Parser{
			NewFourGFacturaParser(),
		},
	}
}

// RegisterParser adds a custom parser; it takes priority over built-in ones
func (r *Registry) RegisterParser(p Parser) {
	r.parsers = append([]Parser{p}, r.parsers...)
}

// Parsers returns the registered parsers in lookup order
func (r *Registry) Parsers() []Parser {
	out := make([]Parser, len(r.parsers))
	copy(out, r.parsers)
	return out
}

// GetParser returns the first parser registered for vendor
func (r *Registry) GetParser(vendor string) Parser {
	for _, p := range r.parsers {
		if p.Vendor() == vendor {
			return p
		}
	}
	return nil
}
