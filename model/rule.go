package model

import (
	"time"
)

// RuleType identifies the behavior a rule controls. The set is closed;
// dispatch on it must be exhaustive.
type RuleType string

const (
	RuleTypeFacet    RuleType = "facetRule"
	RuleTypeBoost    RuleType = "boostRule"
	RuleTypeBlock    RuleType = "blockRule"
	RuleTypeRedirect RuleType = "redirectRule"
	RuleTypeRanking  RuleType = "rankingRule"
)

// Valid reports whether the rule type is one of the known kinds.
func (t RuleType) Valid() bool {
	switch t {
	case RuleTypeFacet, RuleTypeBoost, RuleTypeBlock, RuleTypeRedirect, RuleTypeRanking:
		return true
	}
	return false
}

// Target selects which page kinds a rule applies to.
type Target string

const (
	TargetAllPages      Target = "allPages"
	TargetSearchPages   Target = "searchPages"
	TargetCategoryPages Target = "categoryPages"
)

// Valid reports whether the target is one of the known page kinds.
func (t Target) Valid() bool {
	switch t {
	case TargetAllPages, TargetSearchPages, TargetCategoryPages:
		return true
	}
	return false
}

// SubTarget narrows a rule to retail or outlet traffic.
type SubTarget string

const (
	SubTargetAll    SubTarget = "all"
	SubTargetRetail SubTarget = "retail"
	SubTargetOutlet SubTarget = "outlet"
)

// Valid reports whether the sub target is one of the known values.
func (t SubTarget) Valid() bool {
	switch t {
	case SubTargetAll, SubTargetRetail, SubTargetOutlet, "":
		return true
	}
	return false
}

// CombineMode controls how multiple matching facet rules merge their facet
// lists. Replace discards whatever earlier rules accumulated; Append adds.
type CombineMode string

const (
	CombineModeReplace CombineMode = "Replace"
	CombineModeAppend  CombineMode = "Append"
)

// BoostBy selects between a fixed strength multiplier and a document
// attribute expression for ranking rules.
type BoostBy string

const (
	BoostByFactor    BoostBy = "factor"
	BoostByAttribute BoostBy = "attributeValue"
)

// Strength is the named boost level of a factor ranking rule.
type Strength string

const (
	StrengthMaximumDemote Strength = "maximum-demote"
	StrengthStrongDemote  Strength = "strong-demote"
	StrengthMediumDemote  Strength = "medium-demote"
	StrengthWeakDemote    Strength = "weak-demote"
	StrengthNeutral       Strength = "neutral"
	StrengthWeakBoost     Strength = "weak-boost"
	StrengthMediumBoost   Strength = "medium-boost"
	StrengthStrongBoost   Strength = "strong-boost"
	StrengthMaximumBoost  Strength = "maximum-boost"
)

// ConditionType tags one condition of a ranking rule's condition tree.
type ConditionType string

const (
	ConditionBrand      ConditionType = "brand"
	ConditionPctOff     ConditionType = "pct_off"
	ConditionGender     ConditionType = "gender"
	ConditionShowSale   ConditionType = "show_sale"
	ConditionPastSeason ConditionType = "past_season"
	ConditionKeyword    ConditionType = "keyword"
	ConditionCategory   ConditionType = "category"
	ConditionOutlet     ConditionType = "outlet"
	ConditionPrice      ConditionType = "price"
)

// Joiner is the boolean operator linking a condition to the previous sibling
// at the same nesting level.
type Joiner string

const (
	JoinerAnd    Joiner = "AND"
	JoinerOr     Joiner = "OR"
	JoinerAndNot Joiner = "ANDNOT"
)

// Condition is one node of a ranking rule's condition tree in its flat
// authored form: nesting is encoded positionally through NestLevel. The
// compiler reconstructs an explicit boolean tree before rendering.
type Condition struct {
	Type      ConditionType `json:"type"`
	NestLevel int           `json:"nest_level"`
	Value     string        `json:"value"`
	Joiner    Joiner        `json:"joiner,omitempty"` // to the previous sibling, empty on the first node
}

// Rule is the business-authored entity. It is edited through the API and
// compiled into a RuleDocument on every save; the document, not the rule, is
// what the retrieval store matches at request time.
type Rule struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	RuleType     RuleType  `json:"rule_type"`
	Target       Target    `json:"target"`
	SubTarget    SubTarget `json:"sub_target,omitempty"`
	Query        string    `json:"query,omitempty"` // empty or "*" means any query
	SortPriority int       `json:"sort_priority"`
	IsActive     bool      `json:"is_active"`

	// Scope dimensions. Empty slice means the dimension is unconstrained.
	SiteIDs              []string `json:"site_ids,omitempty"`
	CatalogIDs           []string `json:"catalog_ids,omitempty"`
	CategoryIDs          []string `json:"category_ids,omitempty"`
	BrandIDs             []string `json:"brand_ids,omitempty"`
	IncludeSubcategories bool     `json:"include_subcategories,omitempty"`

	// Validity window. Nil means no constraint on that side.
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`

	// Type-specific payloads.
	CombineMode     CombineMode `json:"combine_mode,omitempty"`     // facet rules
	FacetIDs        []string    `json:"facet_ids,omitempty"`        // facet rules
	BoostedProducts []string    `json:"boosted_products,omitempty"` // boost rules, ordered
	BlockedProducts []string    `json:"blocked_products,omitempty"` // block rules
	RedirectURL     string      `json:"redirect_url,omitempty"`     // redirect rules
	Conditions      []Condition `json:"conditions,omitempty"`       // ranking rules
	BoostBy         BoostBy     `json:"boost_by,omitempty"`         // ranking rules
	Strength        Strength    `json:"strength,omitempty"`         // ranking rules, factor mode
	Attribute       string      `json:"attribute,omitempty"`        // ranking rules, attribute mode

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Expired reports whether the rule's end date has passed at the given time.
// Expired rules are logically retired but kept in the authoring store.
func (r *Rule) Expired(now time.Time) bool {
	return r.EndDate != nil && r.EndDate.Before(now)
}
