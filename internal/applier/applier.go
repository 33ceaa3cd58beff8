// Package applier merges retrieved rule documents into an outgoing
// product-search request.
package applier

import (
	"log"
	"strings"

	"github.com/merchstack/rule-engine/internal/facets"
	"github.com/merchstack/rule-engine/internal/queryutil"
	"github.com/merchstack/rule-engine/model"
	"github.com/merchstack/rule-engine/services"
)

// Context carries the request-side facts document dispatch depends on.
type Context struct {
	Query        string // user query, lowercased by the caller
	CategoryPath string // current category path on category pages
	IsRuleBased  bool   // the page is a rule-driven virtual category
}

// Result is the out-of-band output of an apply pass: the redirect the caller
// must act on, and the ranking boost functions the caller must add to the
// scoring chain.
type Result struct {
	RedirectURL    string
	BoostFunctions []string
}

// Applier mutates search requests according to the rule documents retrieved
// for them.
type Applier struct {
	registry services.FacetRegistry
}

// New creates an applier resolving facet references through the given
// registry.
func New(registry services.FacetRegistry) *Applier {
	return &Applier{registry: registry}
}

// Apply processes the documents in retrieval order and mutates the request:
// exclusion filters for blocked products, a position-ordered boost sort for
// boosted products, facet parameters, and normalized sort clauses. Redirects
// and ranking functions are returned, not applied; acting on them is the
// caller's job. Zero documents of a type leaves that concern untouched,
// except sorts: every applied request gets the relevance tie-breaker.
func (a *Applier) Apply(docs []*model.RuleDocument, ctx Context, req *services.SearchRequest) *Result {
	result := &Result{}
	manager := facets.NewManager()
	var boostedIDs []string

	// Sorts present before any rule runs. An explicit caller sort disables
	// product boosting entirely.
	callerSorted := hasNonRelevanceSort(req.Sorts)

	for _, doc := range docs {
		if !matchesQuery(doc, ctx.Query) {
			continue
		}
		if ctx.IsRuleBased && doc.RuleType != model.RuleTypeFacet && !doc.Category.Contains(ctx.CategoryPath) {
			continue
		}

		switch doc.RuleType {
		case model.RuleTypeBlock:
			for _, id := range doc.BlockedProducts {
				req.AddFilterQuery("-productId:" + id)
			}
		case model.RuleTypeBoost:
			boostedIDs = append(boostedIDs, doc.BoostedProducts...)
		case model.RuleTypeFacet:
			if doc.CombineMode == model.CombineModeReplace {
				manager.Clear()
			}
			a.addFacets(manager, doc)
		case model.RuleTypeRedirect:
			if result.RedirectURL == "" {
				result.RedirectURL = doc.RedirectURL
			}
		case model.RuleTypeRanking:
			if doc.BoostFunction != "" {
				result.BoostFunctions = append(result.BoostFunctions, doc.BoostFunction)
			}
		}
	}

	if len(boostedIDs) > 0 && !callerSorted {
		req.Sorts = append([]services.SortClause{
			{Field: boostSortTerm(boostedIDs), Order: services.SortAsc},
		}, req.Sorts...)
	}
	normalizeSorts(req)

	manager.Apply(req)
	return result
}

func (a *Applier) addFacets(manager *facets.Manager, doc *model.RuleDocument) {
	for _, facetID := range doc.FacetID {
		facet, err := a.registry.Facet(facetID)
		if err != nil {
			log.Printf("Skipping unresolvable facet %s referenced by rule %s: %v", facetID, doc.ID, err)
			continue
		}
		manager.Add(facet)
	}
}

// matchesQuery applies the exact-match query syntax: a document query
// wrapped in brackets applies only when the user query is exactly that
// text. All other documents already matched in the store.
func matchesQuery(doc *model.RuleDocument, query string) bool {
	if !queryutil.IsExactMatch(doc.Query) {
		return true
	}
	return strings.EqualFold(queryutil.TrimExactMatch(doc.Query), query)
}

// boostSortTerm renders the deterministic-position scoring term for the
// boosted id list, first id first.
func boostSortTerm(ids []string) string {
	var b strings.Builder
	b.WriteString("fixedBoost(productId")
	for _, id := range ids {
		b.WriteString(",'")
		b.WriteString(strings.ReplaceAll(id, "'", `\'`))
		b.WriteString("'")
	}
	b.WriteString(")")
	return b.String()
}

// normalizeSorts dedupes sort fields keeping the first occurrence, drops
// explicit relevance entries, and reinstates relevance as the final
// tie-breaker.
func normalizeSorts(req *services.SearchRequest) {
	seen := make(map[string]bool, len(req.Sorts))
	normalized := req.Sorts[:0]
	for _, clause := range req.Sorts {
		if clause.Field == "score" || seen[clause.Field] {
			continue
		}
		seen[clause.Field] = true
		normalized = append(normalized, clause)
	}
	req.Sorts = append(normalized, services.SortClause{Field: "score", Order: services.SortDesc})
}

func hasNonRelevanceSort(sorts []services.SortClause) bool {
	for _, clause := range sorts {
		if clause.Field != "score" {
			return true
		}
	}
	return false
}
