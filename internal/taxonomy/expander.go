// Package taxonomy expands category references into the flat match keys and
// catalog-qualified paths rule documents are indexed with.
package taxonomy

import (
	"errors"
	"log"

	enginerrors "github.com/merchstack/rule-engine/internal/errors"
	"github.com/merchstack/rule-engine/model"
	"github.com/merchstack/rule-engine/services"
)

// Expander turns a category reference into the ordered path strings a rule
// document carries in its category field. No de-duplication is performed and
// paths are emitted ancestor-first; both are part of the contract.
type Expander struct {
	registry  services.TaxonomyRegistry
	separator string
}

// NewExpander creates an expander over the given registry. The separator
// joins catalog and category ids in the dotted path form.
func NewExpander(registry services.TaxonomyRegistry, separator string) *Expander {
	return &Expander{registry: registry, separator: separator}
}

// Expand resolves the category and returns its path strings. A regular
// category contributes its match keys, plus every descendant's keys and
// catalog-qualified paths when includeSubcategories is set. A rule-based
// category contributes one dotted path per parent catalog of its nearest
// regular ancestor. An unresolvable reference returns ErrEntityNotFound so
// the caller can omit it without failing the whole document.
func (e *Expander) Expand(categoryID string, includeSubcategories bool) ([]string, error) {
	category, err := e.registry.Category(categoryID)
	if err != nil {
		return nil, err
	}

	if category.Type != model.CategoryTypeRegular {
		return e.dottedPaths(category), nil
	}

	paths := e.matchKeys(category)
	if includeSubcategories {
		catalogs := e.rootCatalogs(category)
		e.walkDescendants(category, catalogs, &paths)
	}
	return paths, nil
}

// matchKeys returns the category's own search tokens. When they are empty it
// falls back one level only: each immediate child of regular type contributes
// its tokens; children of any other type are skipped.
func (e *Expander) matchKeys(category *model.Category) []string {
	if len(category.SearchTokens) > 0 {
		return append([]string(nil), category.SearchTokens...)
	}

	var keys []string
	for _, childID := range category.ChildCategories {
		child, err := e.registry.Category(childID)
		if err != nil {
			log.Printf("Skipping unresolvable child category %s of %s: %v", childID, category.ID, err)
			continue
		}
		if child.Type != model.CategoryTypeRegular {
			// wrong taxonomy type, not an error
			continue
		}
		keys = append(keys, child.SearchTokens...)
	}
	return keys
}

// walkDescendants emits, per descendant at any depth and in ancestor-first
// order, the descendant's flat match keys plus one dotted path per catalog
// of the root category. Descendant catalogs are not consulted.
func (e *Expander) walkDescendants(category *model.Category, rootCatalogs []string, paths *[]string) {
	for _, childID := range category.ChildCategories {
		child, err := e.registry.Category(childID)
		if err != nil {
			log.Printf("Skipping unresolvable child category %s of %s: %v", childID, category.ID, err)
			continue
		}
		*paths = append(*paths, child.SearchTokens...)
		for _, catalogID := range rootCatalogs {
			*paths = append(*paths, catalogID+e.separator+child.ID)
		}
		e.walkDescendants(child, rootCatalogs, paths)
	}
}

// dottedPaths builds one "<catalogId>.<categoryId>" path per parent catalog
// of the category's nearest regular ancestor. Rule-based categories never
// carry catalogs of their own.
func (e *Expander) dottedPaths(category *model.Category) []string {
	ancestor := e.nearestRegularAncestor(category)
	if ancestor == nil {
		return nil
	}
	paths := make([]string, 0, len(ancestor.ParentCatalogs))
	for _, catalogID := range ancestor.ParentCatalogs {
		paths = append(paths, catalogID+e.separator+category.ID)
	}
	return paths
}

func (e *Expander) rootCatalogs(category *model.Category) []string {
	if category.Type == model.CategoryTypeRegular {
		return category.ParentCatalogs
	}
	if ancestor := e.nearestRegularAncestor(category); ancestor != nil {
		return ancestor.ParentCatalogs
	}
	return nil
}

// nearestRegularAncestor walks the first-parent chain until it finds a
// regular category.
func (e *Expander) nearestRegularAncestor(category *model.Category) *model.Category {
	current := category
	for {
		if len(current.ParentCategories) == 0 {
			return nil
		}
		parent, err := e.registry.Category(current.ParentCategories[0])
		if err != nil {
			if !errors.Is(err, enginerrors.ErrEntityNotFound) {
				log.Printf("Failed to resolve parent of category %s: %v", current.ID, err)
			}
			return nil
		}
		if parent.Type == model.CategoryTypeRegular {
			return parent
		}
		current = parent
	}
}
