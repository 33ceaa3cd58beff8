package facets

import (
	"reflect"
	"testing"

	"github.com/merchstack/rule-engine/model"
	"github.com/merchstack/rule-engine/services"
)

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }
func boolPtr(v bool) *bool    { return &v }

func TestApplyFieldFacet(t *testing.T) {
	m := NewManager()
	m.Add(&model.Facet{
		ID:        "facet1",
		FieldName: "brand",
		Type:      model.FacetTypeField,
		Limit:     intPtr(40),
		MinCount:  intPtr(1),
		Sort:      strPtr("count"),
		IsMissing: boolPtr(false),
	})

	req := services.NewSearchRequest("jackets")
	m.Apply(req)

	if !reflect.DeepEqual(req.FacetFields, []string{"brand"}) {
		t.Errorf("Unexpected facet fields: %v", req.FacetFields)
	}
	want := map[string]string{
		"f.brand.facet.limit":    "40",
		"f.brand.facet.mincount": "1",
		"f.brand.facet.sort":     "count",
		"f.brand.facet.missing":  "false",
	}
	for name, value := range want {
		if got := req.Params[name]; len(got) != 1 || got[0] != value {
			t.Errorf("Param %s: expected %q, got %v", name, value, got)
		}
	}
}

func TestApplyFieldFacetOmitsUnsetParams(t *testing.T) {
	m := NewManager()
	m.Add(&model.Facet{ID: "facet1", FieldName: "brand", Type: model.FacetTypeField})

	req := services.NewSearchRequest("jackets")
	m.Apply(req)

	if len(req.Params) != 0 {
		t.Errorf("Expected no facet params, got %v", req.Params)
	}
}

func TestApplyMultiSelectFieldFacet(t *testing.T) {
	m := NewManager()
	m.Add(&model.Facet{
		ID:            "facet1",
		FieldName:     "category",
		Type:          model.FacetTypeField,
		IsMultiSelect: true,
	})

	req := services.NewSearchRequest("jackets")
	m.Apply(req)

	if !reflect.DeepEqual(req.FacetFields, []string{"{!ex=category}category"}) {
		t.Errorf("Expected exclusion tag on facet field, got %v", req.FacetFields)
	}
}

func TestApplyRangeFacet(t *testing.T) {
	m := NewManager()
	m.Add(&model.Facet{
		ID:         "facet1",
		FieldName:  "salePrice",
		Type:       model.FacetTypeRange,
		Start:      intPtr(0),
		End:        intPtr(500),
		Gap:        intPtr(50),
		IsHardened: boolPtr(true),
	})

	req := services.NewSearchRequest("jackets")
	m.Apply(req)

	want := map[string][]string{
		"facet.range":                     {"salePrice"},
		"f.salePrice.facet.range.start":   {"0"},
		"f.salePrice.facet.range.end":     {"500"},
		"f.salePrice.facet.range.gap":     {"50"},
		"f.salePrice.facet.hardened":      {"true"},
		"f.salePrice.facet.mincount":      {"1"},
		"f.salePrice.facet.range.include": {"lower"},
		"f.salePrice.facet.range.other":   {"before", "after"},
	}
	if !reflect.DeepEqual(req.Params, want) {
		t.Errorf("Unexpected range params:\n got %v\nwant %v", req.Params, want)
	}
}

func TestApplyQueryFacet(t *testing.T) {
	m := NewManager()
	m.Add(&model.Facet{
		ID:        "facet1",
		FieldName: "discountPercent",
		Type:      model.FacetTypeQuery,
		Queries:   []string{"[10 TO 20]", "big deal"},
	})

	req := services.NewSearchRequest("jackets")
	m.Apply(req)

	want := []string{
		"discountPercent:[10 TO 20]",
		`discountPercent:big\ deal`,
	}
	if !reflect.DeepEqual(req.FacetQueries, want) {
		t.Errorf("Unexpected facet queries: %v", req.FacetQueries)
	}
}

func TestApplyDateFacetIsNoOp(t *testing.T) {
	m := NewManager()
	m.Add(&model.Facet{ID: "facet1", FieldName: "launchDate", Type: model.FacetTypeDate})

	req := services.NewSearchRequest("jackets")
	m.Apply(req)

	if len(req.FacetFields) != 0 || len(req.FacetQueries) != 0 || len(req.Params) != 0 {
		t.Error("Expected date facet to add nothing to the request")
	}
}

func TestManagerDedupesByFieldName(t *testing.T) {
	m := NewManager()
	m.Add(&model.Facet{ID: "facet1", FieldName: "brand", Type: model.FacetTypeField, Limit: intPtr(10)})
	m.Add(&model.Facet{ID: "facet2", FieldName: "category", Type: model.FacetTypeField})
	m.Add(&model.Facet{ID: "facet3", FieldName: "brand", Type: model.FacetTypeField, Limit: intPtr(99)})

	if m.Len() != 2 {
		t.Fatalf("Expected 2 facets after dedup, got %d", m.Len())
	}
	if !reflect.DeepEqual(m.FieldNames(), []string{"brand", "category"}) {
		t.Errorf("Expected insertion order preserved, got %v", m.FieldNames())
	}

	req := services.NewSearchRequest("jackets")
	m.Apply(req)
	if got := req.Params["f.brand.facet.limit"]; len(got) != 1 || got[0] != "99" {
		t.Errorf("Expected the later facet to win, got %v", got)
	}
}
