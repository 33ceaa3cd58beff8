package model

// CategoryType distinguishes taxonomy categories from rule-driven virtual
// ones. Rule-based categories never carry their own search tokens.
type CategoryType string

const (
	CategoryTypeRegular   CategoryType = "regular"
	CategoryTypeRuleBased CategoryType = "ruleBased"
)

// Valid reports whether the category type is one of the known kinds.
func (t CategoryType) Valid() bool {
	return t == CategoryTypeRegular || t == CategoryTypeRuleBased
}

// Category is a taxonomy entity. Relationships are held by id and resolved
// through the taxonomy registry.
type Category struct {
	ID               string       `json:"id"`
	Name             string       `json:"name"`
	Type             CategoryType `json:"type"`
	ParentCategories []string     `json:"parent_categories,omitempty"`
	ParentCatalogs   []string     `json:"parent_catalogs,omitempty"` // meaningful for regular categories only
	ChildCategories  []string     `json:"child_categories,omitempty"`
	SearchTokens     []string     `json:"search_tokens,omitempty"` // precomputed hierarchical match keys
}

// Catalog groups categories per storefront and carries the site assignments
// used when planning rule retrieval.
type Catalog struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	SiteIDs []string `json:"site_ids,omitempty"`
}

// Brand is the minimal brand entity rules can be scoped to.
type Brand struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
