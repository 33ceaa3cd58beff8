package model

import (
	"encoding/json"
	"time"
)

// Wildcard is the sentinel the document store understands as "matches
// regardless of this dimension's value". It only ever appears at the store
// boundary; in memory a Scope keeps the unconstrained case explicit.
const Wildcard = "__all__"

// Document-side target values (lowercased, no spaces).
const (
	DocTargetAllPages      = "allpages"
	DocTargetSearchPages   = "searchpages"
	DocTargetCategoryPages = "categorypages"
)

// Document-side sub-target values.
const (
	DocSubTargetRetail = "Retail"
	DocSubTargetOutlet = "Outlet"
)

// Scope is one scope dimension of a rule document: either unconstrained or a
// list of concrete values. The zero value is unconstrained. Order and
// duplicates of the values are preserved; the category dimension relies on
// both.
type Scope struct {
	values []string
}

// ScopedTo builds a constrained scope over the given values. With no values
// the scope is unconstrained.
func ScopedTo(values ...string) Scope {
	return Scope{values: values}
}

// IsWildcard reports whether the dimension is unconstrained.
func (s Scope) IsWildcard() bool {
	return len(s.values) == 0
}

// Values returns the serialized form: the wildcard token for an
// unconstrained scope, otherwise the concrete values. Never empty.
func (s Scope) Values() []string {
	if s.IsWildcard() {
		return []string{Wildcard}
	}
	return s.values
}

// Contains reports whether the scope admits the given value. An
// unconstrained scope admits everything.
func (s Scope) Contains(v string) bool {
	if s.IsWildcard() {
		return true
	}
	for _, sv := range s.values {
		if sv == v {
			return true
		}
	}
	return false
}

// ContainsAny reports whether the scope admits any of the given values.
func (s Scope) ContainsAny(vs []string) bool {
	if s.IsWildcard() {
		return true
	}
	for _, v := range vs {
		if s.Contains(v) {
			return true
		}
	}
	return false
}

// MarshalJSON serializes the scope as its wildcard-or-values array.
func (s Scope) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Values())
}

// GobEncode serializes the scope for snapshots using the same
// wildcard-or-values form as JSON.
func (s Scope) GobEncode() ([]byte, error) {
	return s.MarshalJSON()
}

// GobDecode restores a snapshot-serialized scope.
func (s *Scope) GobDecode(data []byte) error {
	return s.UnmarshalJSON(data)
}

// UnmarshalJSON reads the store representation back, mapping a lone wildcard
// token to the unconstrained scope.
func (s *Scope) UnmarshalJSON(data []byte) error {
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	if len(values) == 1 && values[0] == Wildcard {
		s.values = nil
		return nil
	}
	s.values = values
	return nil
}

// RuleDocument is the flat, queryable compilation of a Rule. It is replaced
// wholesale in the document store every time the rule is saved. Invariant:
// no scope field ever serializes to an empty list.
type RuleDocument struct {
	ID           string     `json:"id"`
	Query        string     `json:"query"` // literal text or the wildcard token
	SiteID       Scope      `json:"siteId"`
	CatalogID    Scope      `json:"catalogId"`
	Category     Scope      `json:"category"` // fully expanded paths
	BrandID      Scope      `json:"brandId"`
	Target       string     `json:"target"`
	SubTarget    string     `json:"subTarget"`
	SortPriority int        `json:"sortPriority"`
	StartDate    *time.Time `json:"startDate,omitempty"`
	EndDate      *time.Time `json:"endDate,omitempty"`
	RuleType     RuleType   `json:"ruleType"`

	CombineMode     CombineMode `json:"combineMode,omitempty"`
	FacetID         []string    `json:"facetId,omitempty"`
	BoostedProducts []string    `json:"boostedProducts,omitempty"`
	BlockedProducts []string    `json:"blockedProducts,omitempty"`
	RedirectURL     string      `json:"redirectUrl,omitempty"`
	BoostFunction   string      `json:"boostFunction,omitempty"`
}
