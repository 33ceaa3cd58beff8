// Package facets converts facet definitions into the parameter set of the
// outgoing search request.
package facets

import (
	"strconv"
	"strings"

	"github.com/merchstack/rule-engine/internal/queryutil"
	"github.com/merchstack/rule-engine/model"
	"github.com/merchstack/rule-engine/services"
)

// Manager accumulates the facets selected by matching facet rules and
// translates them onto a search request. Facets are keyed by field name in
// insertion order: rules arrive in retrieval order, so a facet added later
// (lower priority rule processed later redefining the same field) replaces
// the earlier definition while keeping its position.
type Manager struct {
	order  []string
	byName map[string]*model.Facet
}

// NewManager creates an empty facet manager.
func NewManager() *Manager {
	return &Manager{byName: make(map[string]*model.Facet)}
}

// Add registers a facet under its field name, replacing any facet previously
// registered for the same field.
func (m *Manager) Add(facet *model.Facet) {
	if _, exists := m.byName[facet.FieldName]; !exists {
		m.order = append(m.order, facet.FieldName)
	}
	m.byName[facet.FieldName] = facet
}

// Clear drops all accumulated facets.
func (m *Manager) Clear() {
	m.order = nil
	m.byName = make(map[string]*model.Facet)
}

// Len returns the number of accumulated facets.
func (m *Manager) Len() int {
	return len(m.byName)
}

// FieldNames returns the accumulated field names in insertion order.
func (m *Manager) FieldNames() []string {
	return append([]string(nil), m.order...)
}

// Apply sets the facet parameters for every accumulated facet on the
// request, in insertion order.
func (m *Manager) Apply(req *services.SearchRequest) {
	for _, fieldName := range m.order {
		facet := m.byName[fieldName]
		switch facet.Type {
		case model.FacetTypeField:
			applyFieldFacet(req, facet)
		case model.FacetTypeRange:
			applyRangeFacet(req, facet)
		case model.FacetTypeQuery:
			applyQueryFacet(req, facet)
		case model.FacetTypeDate:
			// date facets carry no request-side parameters
		}
	}
}

// applyFieldFacet adds a plain field facet. Multi-select facets exclude
// their own filter via a tag so selecting one bucket does not collapse the
// others. Only explicitly configured parameters are propagated.
func applyFieldFacet(req *services.SearchRequest, facet *model.Facet) {
	req.AddFacetField(localParams(facet) + facet.FieldName)

	if facet.Limit != nil {
		setFacetParam(req, facet.FieldName, "limit", strconv.Itoa(*facet.Limit))
	}
	if facet.MinCount != nil {
		setFacetParam(req, facet.FieldName, "mincount", strconv.Itoa(*facet.MinCount))
	}
	if facet.Sort != nil {
		setFacetParam(req, facet.FieldName, "sort", *facet.Sort)
	}
	if facet.IsMissing != nil {
		setFacetParam(req, facet.FieldName, "missing", strconv.FormatBool(*facet.IsMissing))
	}
}

// applyRangeFacet adds a numeric range facet with bucket boundaries pinned
// to the configured start/end/gap, counting boundary values in the lower
// bucket and overflow on both sides.
func applyRangeFacet(req *services.SearchRequest, facet *model.Facet) {
	req.AddParam("facet.range", facet.FieldName)
	if lp := localParams(facet); lp != "" {
		req.AddParam("facet.range", lp+facet.FieldName)
	}

	if facet.Start != nil {
		setRangeParam(req, facet.FieldName, "start", strconv.Itoa(*facet.Start))
	}
	if facet.End != nil {
		setRangeParam(req, facet.FieldName, "end", strconv.Itoa(*facet.End))
	}
	if facet.Gap != nil {
		setRangeParam(req, facet.FieldName, "gap", strconv.Itoa(*facet.Gap))
	}
	if facet.IsHardened != nil {
		setFacetParam(req, facet.FieldName, "hardened", strconv.FormatBool(*facet.IsHardened))
	}
	setFacetParam(req, facet.FieldName, "mincount", "1")
	addRangeParam(req, facet.FieldName, "include", "lower")
	addRangeParam(req, facet.FieldName, "other", "before")
	addRangeParam(req, facet.FieldName, "other", "after")
}

// applyQueryFacet adds one facet query per configured literal. Range
// expressions pass through unescaped; everything else is escaped.
func applyQueryFacet(req *services.SearchRequest, facet *model.Facet) {
	lp := localParams(facet)
	for _, q := range facet.Queries {
		q = strings.TrimSpace(q)
		if !queryutil.IsRangeExpression(q) {
			q = queryutil.Escape(q)
		}
		req.AddFacetQuery(lp + facet.FieldName + ":" + q)
	}
}

func localParams(facet *model.Facet) string {
	if facet.IsMultiSelect {
		return "{!ex=" + facet.FieldName + "}"
	}
	return ""
}

func setFacetParam(req *services.SearchRequest, fieldName, param, value string) {
	req.SetParam("f."+fieldName+".facet."+param, value)
}

func setRangeParam(req *services.SearchRequest, fieldName, param, value string) {
	req.SetParam("f."+fieldName+".facet.range."+param, value)
}

func addRangeParam(req *services.SearchRequest, fieldName, param, value string) {
	req.AddParam("f."+fieldName+".facet.range."+param, value)
}
