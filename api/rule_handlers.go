package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/merchstack/rule-engine/model"
)

// RuleResponse represents the JSON response for single rule operations
type RuleResponse struct {
	Status  string     `json:"status"`
	Rule    model.Rule `json:"rule"`
	Message string     `json:"message,omitempty"`
}

// RuleListResponse represents the JSON response for listing rules
type RuleListResponse struct {
	Status string       `json:"status"`
	Rules  []model.Rule `json:"rules"`
	Count  int          `json:"count"`
}

// RuleMessageResponse represents the JSON response for operations that only return a message
type RuleMessageResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// CreateRuleHandler handles POST /rules
func (api *API) CreateRuleHandler(c *gin.Context) {
	var rule model.Rule
	if result := ValidateJSONBinding(c, &rule); result.HasErrors() {
		SendStructuredValidationError(c, result)
		return
	}

	created, err := api.engine.CreateRule(c.Request.Context(), rule)
	if err != nil {
		SendDomainError(c, "rule creation", err)
		return
	}

	c.JSON(http.StatusCreated, RuleResponse{
		Status:  "success",
		Rule:    created,
		Message: "Rule created successfully",
	})
}

// GetRuleHandler handles GET /rules/:ruleId
func (api *API) GetRuleHandler(c *gin.Context) {
	ruleID := c.Param("ruleId")
	if result := ValidateRuleID(ruleID); result.HasErrors() {
		SendStructuredValidationError(c, result)
		return
	}

	rule, err := api.engine.GetRule(ruleID)
	if err != nil {
		SendDomainError(c, "rule lookup", err)
		return
	}

	c.JSON(http.StatusOK, RuleResponse{
		Status: "success",
		Rule:   rule,
	})
}

// ListRulesHandler handles GET /rules with optional rule_type and is_active
// query filters.
func (api *API) ListRulesHandler(c *gin.Context) {
	ruleType := model.RuleType(c.Query("rule_type"))
	if ruleType != "" && !ruleType.Valid() {
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidRequest,
			"Unknown rule type '"+string(ruleType)+"'")
		return
	}

	var isActive *bool
	if raw := c.Query("is_active"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			SendError(c, http.StatusBadRequest, ErrorCodeInvalidRequest,
				"is_active must be a boolean, got '"+raw+"'")
			return
		}
		isActive = &parsed
	}

	rules, err := api.engine.ListRules(ruleType, isActive)
	if err != nil {
		SendDomainError(c, "rule listing", err)
		return
	}

	c.JSON(http.StatusOK, RuleListResponse{
		Status: "success",
		Rules:  rules,
		Count:  len(rules),
	})
}

// UpdateRuleHandler handles PUT /rules/:ruleId
func (api *API) UpdateRuleHandler(c *gin.Context) {
	ruleID := c.Param("ruleId")
	if result := ValidateRuleID(ruleID); result.HasErrors() {
		SendStructuredValidationError(c, result)
		return
	}

	var rule model.Rule
	if result := ValidateJSONBinding(c, &rule); result.HasErrors() {
		SendStructuredValidationError(c, result)
		return
	}
	rule.ID = ruleID

	updated, err := api.engine.UpdateRule(c.Request.Context(), rule)
	if err != nil {
		SendDomainError(c, "rule update", err)
		return
	}

	c.JSON(http.StatusOK, RuleResponse{
		Status:  "success",
		Rule:    updated,
		Message: "Rule updated successfully",
	})
}

// DeleteRuleHandler handles DELETE /rules/:ruleId
func (api *API) DeleteRuleHandler(c *gin.Context) {
	ruleID := c.Param("ruleId")
	if result := ValidateRuleID(ruleID); result.HasErrors() {
		SendStructuredValidationError(c, result)
		return
	}

	if err := api.engine.DeleteRule(c.Request.Context(), ruleID); err != nil {
		SendDomainError(c, "rule deletion", err)
		return
	}

	c.JSON(http.StatusOK, RuleMessageResponse{
		Status:  "success",
		Message: "Rule '" + ruleID + "' deleted",
	})
}

// ActivateRuleHandler handles POST /rules/:ruleId/activate
func (api *API) ActivateRuleHandler(c *gin.Context) {
	api.setRuleActive(c, true)
}

// DeactivateRuleHandler handles POST /rules/:ruleId/deactivate
func (api *API) DeactivateRuleHandler(c *gin.Context) {
	api.setRuleActive(c, false)
}

func (api *API) setRuleActive(c *gin.Context, active bool) {
	ruleID := c.Param("ruleId")
	if result := ValidateRuleID(ruleID); result.HasErrors() {
		SendStructuredValidationError(c, result)
		return
	}

	rule, err := api.engine.SetRuleActive(c.Request.Context(), ruleID, active)
	if err != nil {
		SendDomainError(c, "rule activation", err)
		return
	}

	c.JSON(http.StatusOK, RuleResponse{
		Status: "success",
		Rule:   rule,
	})
}

// ReindexResponse reports the outcome of a full recompilation run.
type ReindexResponse struct {
	Status  string `json:"status"`
	Total   int    `json:"total"`
	Indexed int    `json:"indexed"`
	Skipped int    `json:"skipped"`
	Failed  int    `json:"failed"`
}

// ReindexHandler handles POST /reindex
func (api *API) ReindexHandler(c *gin.Context) {
	summary, err := api.engine.Reindex(c.Request.Context())
	if err != nil {
		SendError(c, http.StatusInternalServerError, ErrorCodeFeedFailed,
			"Reindex failed: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, ReindexResponse{
		Status:  "success",
		Total:   summary.Total,
		Indexed: summary.Indexed,
		Skipped: summary.Skipped,
		Failed:  summary.Failed,
	})
}
