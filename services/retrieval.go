package services

import (
	"strings"
	"time"

	"github.com/merchstack/rule-engine/internal/queryutil"
	"github.com/merchstack/rule-engine/model"
)

// RetrievalQuery is the structured query the planner sends to the document
// store. Filters are kept structured in memory and rendered to the engine's
// string syntax only at the store boundary.
type RetrievalQuery struct {
	Start   int
	Rows    int
	Fields  []string
	Sorts   []SortClause
	Filters []FilterClause
}

// FilterClause is one ANDed filter of a retrieval query. Render produces the
// engine's wire syntax; Matches evaluates the clause against a document,
// which embedded and in-memory stores use directly.
type FilterClause interface {
	Render() string
	Matches(doc *model.RuleDocument, now time.Time) bool
}

// TargetClause is the page-target filter. On search pages it also restricts
// by the user query: a document matches on its literal query (scored ahead
// of wildcard matches by the real engine) or on the query wildcard.
type TargetClause struct {
	IsSearch bool
	Query    string // lowercased user query, search pages only
}

func (c TargetClause) Render() string {
	var b strings.Builder
	if c.IsSearch {
		b.WriteString("(target:" + model.DocTargetAllPages + " OR target:" + model.DocTargetSearchPages + ")")
		b.WriteString(" AND ((")
		b.WriteString(queryutil.Escape(c.Query))
		b.WriteString(")^2 OR query:" + model.Wildcard + ")")
	} else {
		b.WriteString("target:" + model.DocTargetAllPages + " OR target:" + model.DocTargetCategoryPages)
	}
	return b.String()
}

func (c TargetClause) Matches(doc *model.RuleDocument, _ time.Time) bool {
	if c.IsSearch {
		if doc.Target != model.DocTargetAllPages && doc.Target != model.DocTargetSearchPages {
			return false
		}
		if doc.Query == model.Wildcard {
			return true
		}
		q := doc.Query
		if queryutil.IsExactMatch(q) {
			q = queryutil.TrimExactMatch(q)
		}
		return strings.EqualFold(q, c.Query)
	}
	return doc.Target == model.DocTargetAllPages || doc.Target == model.DocTargetCategoryPages
}

// ScopeClause matches one scope dimension: the document's wildcard branch
// always passes, otherwise the document's values must intersect the
// request's values.
type ScopeClause struct {
	Field  string // siteId, catalogId, category, brandId or subTarget
	Values []string
}

func (c ScopeClause) Render() string {
	var b strings.Builder
	b.WriteString(c.Field + ":" + model.Wildcard)
	for _, v := range c.Values {
		b.WriteString(" OR " + c.Field + ":" + v)
	}
	return b.String()
}

func (c ScopeClause) Matches(doc *model.RuleDocument, _ time.Time) bool {
	var scope model.Scope
	switch c.Field {
	case "siteId":
		scope = doc.SiteID
	case "catalogId":
		scope = doc.CatalogID
	case "category":
		scope = doc.Category
	case "brandId":
		scope = doc.BrandID
	case "subTarget":
		if doc.SubTarget == model.Wildcard {
			return true
		}
		scope = model.ScopedTo(doc.SubTarget)
	default:
		return false
	}
	if scope.IsWildcard() {
		return true
	}
	return scope.ContainsAny(c.Values)
}

// DateValidityClause excludes documents whose start date is set and future
// or whose end date is set and past. Unconstrained documents always pass.
// Dates are rounded up to the next midnight so the engine's filter cache can
// be reused across a day's queries.
type DateValidityClause struct{}

func (DateValidityClause) Render() string {
	return "-(((startDate:[* TO *]) AND -(startDate:[* TO NOW/DAY+1DAY])) OR (endDate:[* TO *] AND -endDate:[NOW/DAY+1DAY TO *]))"
}

func (DateValidityClause) Matches(doc *model.RuleDocument, now time.Time) bool {
	cutoff := now.Truncate(24 * time.Hour).Add(24 * time.Hour)
	if doc.StartDate != nil && doc.StartDate.After(cutoff) {
		return false
	}
	if doc.EndDate != nil && doc.EndDate.Before(cutoff) {
		return false
	}
	return true
}

// RenderFilters renders every filter clause in order.
func (q *RetrievalQuery) RenderFilters() []string {
	out := make([]string, 0, len(q.Filters))
	for _, f := range q.Filters {
		out = append(out, f.Render())
	}
	return out
}
