package model

// FacetType is the kind of aggregate a facet definition describes.
type FacetType string

const (
	FacetTypeField FacetType = "fieldFacet"
	FacetTypeRange FacetType = "rangeFacet"
	FacetTypeQuery FacetType = "queryFacet"
	FacetTypeDate  FacetType = "dateFacet"
)

// Valid reports whether the facet type is one of the known kinds.
func (t FacetType) Valid() bool {
	switch t {
	case FacetTypeField, FacetTypeRange, FacetTypeQuery, FacetTypeDate:
		return true
	}
	return false
}

// Facet is a facet definition referenced by id from facet-rule payloads.
// Optional numeric and string settings use pointers so that only explicitly
// configured values reach the engine parameters.
type Facet struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	FieldName     string    `json:"field_name"`
	Type          FacetType `json:"type"`
	IsMultiSelect bool      `json:"is_multi_select,omitempty"`
	MinBuckets    *int      `json:"min_buckets,omitempty"`
	UIType        string    `json:"ui_type,omitempty"`
	IsMixedSort   bool      `json:"is_mixed_sorting,omitempty"`

	// Field facet settings.
	Limit     *int    `json:"limit,omitempty"`
	MinCount  *int    `json:"min_count,omitempty"`
	Sort      *string `json:"sort,omitempty"`
	IsMissing *bool   `json:"is_missing,omitempty"`

	// Range facet settings.
	Start      *int  `json:"start,omitempty"`
	End        *int  `json:"end,omitempty"`
	Gap        *int  `json:"gap,omitempty"`
	IsHardened *bool `json:"is_hardened,omitempty"`

	// Query facet settings.
	Queries []string `json:"queries,omitempty"`
}
