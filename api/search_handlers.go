package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/merchstack/rule-engine/internal/engine"
	"github.com/merchstack/rule-engine/internal/planner"
	"github.com/merchstack/rule-engine/services"
)

// SortClauseJSON is the wire form of one sort clause.
type SortClauseJSON struct {
	Field string `json:"field"`
	Order string `json:"order"`
}

// ApplyRulesRequest carries the page context of an incoming product search
// plus the request state rules are merged into.
type ApplyRulesRequest struct {
	Query          string           `json:"query"`
	IsSearch       bool             `json:"is_search"`
	CatalogID      string           `json:"catalog_id"`
	SiteIDs        []string         `json:"site_ids,omitempty"`
	BrandID        string           `json:"brand_id,omitempty"`
	IsCloseout     bool             `json:"is_closeout,omitempty"`
	CategoryID     string           `json:"category_id,omitempty"`
	CategoryFilter string           `json:"category_filter,omitempty"`
	Sorts          []SortClauseJSON `json:"sorts,omitempty"`
	FilterQueries  []string         `json:"filter_queries,omitempty"`
}

// ApplyRulesResponse is the mutated search request plus the out-of-band rule
// outputs the caller must act on.
type ApplyRulesResponse struct {
	Status         string              `json:"status"`
	Sorts          []SortClauseJSON    `json:"sorts,omitempty"`
	FilterQueries  []string            `json:"filter_queries,omitempty"`
	FacetFields    []string            `json:"facet_fields,omitempty"`
	FacetQueries   []string            `json:"facet_queries,omitempty"`
	BoostFuncs     []string            `json:"boost_funcs,omitempty"`
	Params         map[string][]string `json:"params,omitempty"`
	RedirectURL    string              `json:"redirect_url,omitempty"`
	BoostFunctions []string            `json:"boost_functions,omitempty"`
}

// ApplyRulesHandler handles POST /search/_apply
func (api *API) ApplyRulesHandler(c *gin.Context) {
	var body ApplyRulesRequest
	if result := ValidateJSONBinding(c, &body); result.HasErrors() {
		SendStructuredValidationError(c, result)
		return
	}

	req := services.NewSearchRequest(body.Query)
	for _, s := range body.Sorts {
		req.AddSort(s.Field, services.SortOrder(s.Order))
	}
	for _, fq := range body.FilterQueries {
		req.AddFilterQuery(fq)
	}

	params := engine.SearchParams{
		Request: planner.Request{
			Query:          body.Query,
			CategoryFilter: body.CategoryFilter,
			IsSearch:       body.IsSearch,
			CatalogID:      body.CatalogID,
			SiteIDs:        body.SiteIDs,
			BrandID:        body.BrandID,
			IsCloseout:     body.IsCloseout,
		},
		CategoryID: body.CategoryID,
	}

	result, err := api.engine.ApplyRules(c.Request.Context(), params, req)
	if err != nil {
		SendDomainError(c, "rule application", err)
		return
	}

	sorts := make([]SortClauseJSON, 0, len(req.Sorts))
	for _, s := range req.Sorts {
		sorts = append(sorts, SortClauseJSON{Field: s.Field, Order: string(s.Order)})
	}

	c.JSON(http.StatusOK, ApplyRulesResponse{
		Status:         "success",
		Sorts:          sorts,
		FilterQueries:  req.FilterQueries,
		FacetFields:    req.FacetFields,
		FacetQueries:   req.FacetQueries,
		BoostFuncs:     req.BoostFuncs,
		Params:         req.Params,
		RedirectURL:    result.RedirectURL,
		BoostFunctions: result.BoostFunctions,
	})
}

// BoostMappingResponse is one boost mapping read through the cache.
type BoostMappingResponse struct {
	Status  string             `json:"status"`
	BoostID string             `json:"boost_id"`
	Boosts  map[string]float64 `json:"boosts"`
}

// GetBoostMappingHandler handles GET /boosts/:boostId
func (api *API) GetBoostMappingHandler(c *gin.Context) {
	boostID := c.Param("boostId")
	if result := ValidateBoostID(boostID); result.HasErrors() {
		SendStructuredValidationError(c, result)
		return
	}

	boosts, err := api.engine.BoostMapping(c.Request.Context(), boostID)
	if err != nil {
		SendDomainError(c, "boost mapping lookup", err)
		return
	}

	c.JSON(http.StatusOK, BoostMappingResponse{
		Status:  "success",
		BoostID: boostID,
		Boosts:  boosts,
	})
}

// InvalidateBoostMappingHandler handles DELETE /boosts/:boostId/cache
func (api *API) InvalidateBoostMappingHandler(c *gin.Context) {
	boostID := c.Param("boostId")
	if result := ValidateBoostID(boostID); result.HasErrors() {
		SendStructuredValidationError(c, result)
		return
	}

	api.engine.InvalidateBoostMapping(boostID)
	c.JSON(http.StatusOK, RuleMessageResponse{
		Status:  "success",
		Message: "Cached mapping for '" + boostID + "' dropped",
	})
}
