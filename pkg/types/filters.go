// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// SearchFilters holds the search parameters for one retrieval call. Values
// within a set-valued field are combined with OR; distinct fields are
// combined with AND. Filters are not mutated by retrieval.
type SearchFilters struct {
	// Query is the free-text search term.
	Query string `json:"query" yaml:"query"`

	// MaxResults caps the number of records produced. Must be positive.
	MaxResults int `json:"max_results" yaml:"max_results"`

	// Phases restricts results to trials listing any of these phase codes.
	Phases []string `json:"phases,omitempty" yaml:"phases,omitempty"`

	// Statuses restricts results to these recruitment status codes.
	Statuses []string `json:"statuses,omitempty" yaml:"statuses,omitempty"`

	// Conditions restricts results to trials studying any of these conditions.
	Conditions []string `json:"conditions,omitempty" yaml:"conditions,omitempty"`

	// Sponsors restricts results to trials sponsored by any of these organizations.
	Sponsors []string `json:"sponsors,omitempty" yaml:"sponsors,omitempty"`

	// Countries restricts results to trials with a site in any of these countries.
	Countries []string `json:"countries,omitempty" yaml:"countries,omitempty"`
}

// Validate reports whether the filters describe a usable retrieval.
func (f SearchFilters) Validate() error {
	if f.MaxResults <= 0 {
		return fmt.Errorf("max results must be positive, got %d", f.MaxResults)
	}
	return nil
}
