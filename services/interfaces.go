// Package services defines the interfaces and shared request types the rule
// engine components communicate through. External collaborators (the document
// store, the registries) are consumed through these interfaces only.
package services

import (
	"context"

	"github.com/merchstack/rule-engine/model"
)

// DocumentStore is the client for the engine that holds compiled rule
// documents. Query is a synchronous, blocking call; retry and backoff, if
// any, are the implementation's responsibility.
type DocumentStore interface {
	Index(ctx context.Context, doc *model.RuleDocument) error
	Delete(ctx context.Context, id string) error
	Query(ctx context.Context, q *RetrievalQuery) (*RetrievalResult, error)
}

// FacetRegistry resolves facet definitions referenced from facet-rule
// payloads.
type FacetRegistry interface {
	Facet(id string) (*model.Facet, error)
}

// TaxonomyRegistry resolves category, catalog and brand entities together
// with their relationships.
type TaxonomyRegistry interface {
	Category(id string) (*model.Category, error)
	Catalog(id string) (*model.Catalog, error)
	Brand(id string) (*model.Brand, error)
}

// RetrievalResult is one page of matching rule documents plus the total
// match count, so callers can page through large result sets.
type RetrievalResult struct {
	Documents []*model.RuleDocument
	Total     int
}

// SortOrder is the direction of one sort clause.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// SortClause is one entry of a request's sort spec.
type SortClause struct {
	Field string
	Order SortOrder
}

// SearchRequest is the outgoing product-search request the rule applier
// mutates: sort clauses, filter queries, facet parameters, boost functions
// and free-form engine parameters. It deliberately mirrors the parameter
// surface of the underlying engine rather than abstracting it away.
type SearchRequest struct {
	Query         string
	Sorts         []SortClause
	FilterQueries []string
	FacetFields   []string
	FacetQueries  []string
	BoostFuncs    []string
	Params        map[string][]string
}

// NewSearchRequest builds an empty request for the given query text.
func NewSearchRequest(query string) *SearchRequest {
	return &SearchRequest{Query: query, Params: make(map[string][]string)}
}

// AddSort appends a sort clause.
func (r *SearchRequest) AddSort(field string, order SortOrder) {
	r.Sorts = append(r.Sorts, SortClause{Field: field, Order: order})
}

// AddFilterQuery appends a filter query.
func (r *SearchRequest) AddFilterQuery(fq string) {
	r.FilterQueries = append(r.FilterQueries, fq)
}

// AddFacetField requests a count facet on a field (possibly prefixed with
// local params).
func (r *SearchRequest) AddFacetField(field string) {
	r.FacetFields = append(r.FacetFields, field)
}

// AddFacetQuery requests a facet count for one literal query.
func (r *SearchRequest) AddFacetQuery(fq string) {
	r.FacetQueries = append(r.FacetQueries, fq)
}

// AddBoostFunction appends a scoring function to the request's boost chain.
func (r *SearchRequest) AddBoostFunction(fn string) {
	r.BoostFuncs = append(r.BoostFuncs, fn)
}

// SetParam replaces the values of an engine parameter.
func (r *SearchRequest) SetParam(name string, values ...string) {
	if r.Params == nil {
		r.Params = make(map[string][]string)
	}
	r.Params[name] = values
}

// AddParam appends a value to an engine parameter.
func (r *SearchRequest) AddParam(name, value string) {
	if r.Params == nil {
		r.Params = make(map[string][]string)
	}
	r.Params[name] = append(r.Params[name], value)
}
