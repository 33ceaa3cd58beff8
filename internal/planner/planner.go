// Package planner builds the retrieval query that selects the rule documents
// applicable to one incoming product-search request.
package planner

import (
	"log"
	"strings"

	enginerrors "github.com/merchstack/rule-engine/internal/errors"
	"github.com/merchstack/rule-engine/model"
	"github.com/merchstack/rule-engine/services"
)

// Request is the page context a retrieval query is planned for. BrandID and
// IsCloseout are derived by the caller from the incoming request's existing
// filters; they are not first-class request parameters.
type Request struct {
	Query          string
	CategoryFilter string // display-path filter, blank on search pages
	IsSearch       bool
	CatalogID      string
	SiteIDs        []string // resolved from the catalog when empty
	BrandID        string
	IsCloseout     bool
}

// Planner translates a page context into the document store's structured
// query.
type Planner struct {
	registry services.TaxonomyRegistry
	rows     int
}

// New creates a planner. rows is the retrieval page size.
func New(registry services.TaxonomyRegistry, rows int) *Planner {
	return &Planner{registry: registry, rows: rows}
}

// Plan builds the retrieval query for the given context. A missing catalog
// id yields no query and no error: the caller must skip rule application
// entirely. A search page with a blank query is a caller bug and fails.
//
// The base query matches every document; narrowing happens exclusively
// through the ordered filter clauses.
func (p *Planner) Plan(req Request) (*services.RetrievalQuery, error) {
	if req.CatalogID == "" {
		return nil, nil
	}
	if req.IsSearch && strings.TrimSpace(req.Query) == "" {
		return nil, enginerrors.NewValidationError("query", "search pages require a non-blank query")
	}

	subTarget := model.DocSubTargetRetail
	if req.IsCloseout {
		subTarget = model.DocSubTargetOutlet
	}

	var categoryValues []string
	if req.CategoryFilter != "" {
		categoryValues = []string{req.CategoryFilter}
	}

	var brandValues []string
	if req.BrandID != "" {
		brandValues = []string{req.BrandID}
	}

	query := &services.RetrievalQuery{
		Rows: p.rows,
		Sorts: []services.SortClause{
			{Field: "sortPriority", Order: services.SortAsc},
			{Field: "score", Order: services.SortAsc},
			{Field: "id", Order: services.SortAsc},
		},
		Filters: []services.FilterClause{
			services.TargetClause{IsSearch: req.IsSearch, Query: strings.ToLower(req.Query)},
			services.ScopeClause{Field: "category", Values: categoryValues},
			services.ScopeClause{Field: "siteId", Values: p.siteIDs(req)},
			services.ScopeClause{Field: "brandId", Values: brandValues},
			services.ScopeClause{Field: "subTarget", Values: []string{subTarget}},
			services.ScopeClause{Field: "catalogId", Values: []string{req.CatalogID}},
			services.DateValidityClause{},
		},
	}
	return query, nil
}

// siteIDs returns the request's explicit site ids, falling back to the sites
// assigned to the catalog.
func (p *Planner) siteIDs(req Request) []string {
	if len(req.SiteIDs) > 0 {
		return req.SiteIDs
	}
	catalog, err := p.registry.Catalog(req.CatalogID)
	if err != nil {
		log.Printf("Failed to resolve sites for catalog %s: %v", req.CatalogID, err)
		return nil
	}
	return catalog.SiteIDs
}
