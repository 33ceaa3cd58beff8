package rules

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/merchstack/rule-engine/internal/boost"
	enginerrors "github.com/merchstack/rule-engine/internal/errors"
	"github.com/merchstack/rule-engine/internal/taxonomy"
	"github.com/merchstack/rule-engine/model"
	"github.com/merchstack/rule-engine/services"
)

// DocumentBuilder compiles an authored rule into the flat document the
// retrieval store matches at request time. Scope references that cannot be
// resolved against the registry are logged and omitted from their field; the
// document still compiles.
type DocumentBuilder struct {
	registry services.TaxonomyRegistry
	expander *taxonomy.Expander
}

// NewDocumentBuilder creates a builder over the given registry and category
// expander.
func NewDocumentBuilder(registry services.TaxonomyRegistry, expander *taxonomy.Expander) *DocumentBuilder {
	return &DocumentBuilder{registry: registry, expander: expander}
}

// Build produces the rule's document. It fails only when a ranking rule's
// conditions cannot be compiled, or when the rule references categories and
// none of them expand to a single path (a document with an empty category
// field would be unreachable).
func (b *DocumentBuilder) Build(rule *model.Rule) (*model.RuleDocument, error) {
	doc := &model.RuleDocument{
		ID:           rule.ID,
		Query:        normalizeQuery(rule.Query),
		Target:       strings.ToLower(string(rule.Target)),
		SubTarget:    docSubTarget(rule.SubTarget),
		SortPriority: rule.SortPriority,
		StartDate:    rule.StartDate,
		EndDate:      rule.EndDate,
		RuleType:     rule.RuleType,
	}

	// Site ids are opaque to the registry; they pass through as authored.
	doc.SiteID = model.ScopedTo(rule.SiteIDs...)
	doc.CatalogID = model.ScopedTo(b.resolveCatalogs(rule)...)
	doc.BrandID = model.ScopedTo(b.resolveBrands(rule)...)

	if len(rule.CategoryIDs) > 0 {
		paths := b.expandCategories(rule)
		if len(paths) == 0 {
			return nil, enginerrors.ErrNoCategoryPaths
		}
		doc.Category = model.ScopedTo(paths...)
	}

	switch rule.RuleType {
	case model.RuleTypeFacet:
		doc.CombineMode = rule.CombineMode
		doc.FacetID = append([]string(nil), rule.FacetIDs...)
	case model.RuleTypeBoost:
		doc.BoostedProducts = append([]string(nil), rule.BoostedProducts...)
	case model.RuleTypeBlock:
		doc.BlockedProducts = append([]string(nil), rule.BlockedProducts...)
	case model.RuleTypeRedirect:
		doc.RedirectURL = rule.RedirectURL
	case model.RuleTypeRanking:
		fn, err := boost.Compile(rule)
		if err != nil {
			return nil, fmt.Errorf("failed to compile boost function for rule %s: %w", rule.ID, err)
		}
		doc.BoostFunction = fn
	}

	return doc, nil
}

// normalizeQuery returns the document query field: the wildcard token for a
// match-anything query, otherwise the lowercased literal.
func normalizeQuery(query string) string {
	query = strings.TrimSpace(query)
	if query == "" || query == "*" {
		return model.Wildcard
	}
	return strings.ToLower(query)
}

func docSubTarget(subTarget model.SubTarget) string {
	switch subTarget {
	case model.SubTargetRetail:
		return model.DocSubTargetRetail
	case model.SubTargetOutlet:
		return model.DocSubTargetOutlet
	default:
		return model.Wildcard
	}
}

func (b *DocumentBuilder) resolveCatalogs(rule *model.Rule) []string {
	var ids []string
	for _, id := range rule.CatalogIDs {
		if _, err := b.registry.Catalog(id); err != nil {
			log.Printf("Omitting unresolvable catalog %s from rule %s: %v", id, rule.ID, err)
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func (b *DocumentBuilder) resolveBrands(rule *model.Rule) []string {
	var ids []string
	for _, id := range rule.BrandIDs {
		if _, err := b.registry.Brand(id); err != nil {
			log.Printf("Omitting unresolvable brand %s from rule %s: %v", id, rule.ID, err)
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// expandCategories concatenates the expander output per referenced category
// in authored order. Unresolvable categories are omitted.
func (b *DocumentBuilder) expandCategories(rule *model.Rule) []string {
	var paths []string
	for _, id := range rule.CategoryIDs {
		expanded, err := b.expander.Expand(id, rule.IncludeSubcategories)
		if err != nil {
			if errors.Is(err, enginerrors.ErrEntityNotFound) {
				log.Printf("Omitting unresolvable category %s from rule %s", id, rule.ID)
				continue
			}
			log.Printf("Failed to expand category %s for rule %s: %v", id, rule.ID, err)
			continue
		}
		paths = append(paths, expanded...)
	}
	return paths
}
