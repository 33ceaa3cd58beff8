package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	enginetest "github.com/merchstack/rule-engine/internal/testing"
	"github.com/merchstack/rule-engine/model"
)

func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	env := enginetest.NewTestEnv(t)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	SetupRoutes(router, env.Engine, env.Registry)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeRule(t *testing.T, w *httptest.ResponseRecorder) model.Rule {
	t.Helper()
	var resp RuleResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode rule response: %v", err)
	}
	return resp.Rule
}

func TestCreateRuleHandler(t *testing.T) {
	router := setupTestRouter(t)

	tests := []struct {
		name           string
		requestBody    interface{}
		expectedStatus int
	}{
		{
			name: "valid block rule",
			requestBody: model.Rule{
				Name:            "hide p9",
				RuleType:        model.RuleTypeBlock,
				Target:          model.TargetAllPages,
				IsActive:        true,
				BlockedProducts: []string{"p9"},
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "invalid JSON",
			requestBody:    "not a rule",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "missing payload",
			requestBody: model.Rule{
				Name:     "empty block",
				RuleType: model.RuleTypeBlock,
				Target:   model.TargetAllPages,
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodPost, "/rules", tt.requestBody)
			if w.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d (body: %s)", w.Code, tt.expectedStatus, w.Body.String())
			}
		})
	}
}

func TestGetRuleHandlerNotFound(t *testing.T) {
	router := setupTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/rules/ghost", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	var apiErr APIError
	if err := json.Unmarshal(w.Body.Bytes(), &apiErr); err != nil {
		t.Fatalf("Failed to decode error: %v", err)
	}
	if apiErr.Code != ErrorCodeRuleNotFound {
		t.Errorf("code = %q, want %q", apiErr.Code, ErrorCodeRuleNotFound)
	}
}

func TestRuleLifecycleOverHTTP(t *testing.T) {
	router := setupTestRouter(t)

	created := decodeRule(t, doJSON(t, router, http.MethodPost, "/rules", enginetest.MakeBlockRule("hide p9", "p9")))
	if created.ID == "" {
		t.Fatal("created rule has no id")
	}

	w := doJSON(t, router, http.MethodPost, "/rules/"+created.ID+"/deactivate", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("deactivate status = %d (body: %s)", w.Code, w.Body.String())
	}
	if rule := decodeRule(t, w); rule.IsActive {
		t.Error("rule still active after deactivate")
	}

	w = doJSON(t, router, http.MethodGet, "/rules?is_active=false", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var list RuleListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("Failed to decode list: %v", err)
	}
	if list.Count != 1 {
		t.Fatalf("inactive count = %d, want 1", list.Count)
	}

	w = doJSON(t, router, http.MethodDelete, "/rules/"+created.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d", w.Code)
	}
	w = doJSON(t, router, http.MethodGet, "/rules/"+created.ID, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d, want 404", w.Code)
	}
}

func TestListRulesHandlerRejectsUnknownType(t *testing.T) {
	router := setupTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/rules?rule_type=bogusRule", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestApplyRulesHandler(t *testing.T) {
	router := setupTestRouter(t)

	for _, rule := range []model.Rule{
		enginetest.MakeBlockRule("hide p9", "p9"),
		{
			Name:        "bike redirect",
			RuleType:    model.RuleTypeRedirect,
			Target:      model.TargetSearchPages,
			Query:       "bike sale",
			IsActive:    true,
			RedirectURL: "/promo/bikes",
		},
	} {
		if w := doJSON(t, router, http.MethodPost, "/rules", rule); w.Code != http.StatusCreated {
			t.Fatalf("create %q status = %d (body: %s)", rule.Name, w.Code, w.Body.String())
		}
	}

	w := doJSON(t, router, http.MethodPost, "/search/_apply", ApplyRulesRequest{
		Query:     "bike sale",
		IsSearch:  true,
		CatalogID: "outdoorCatalog",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("apply status = %d (body: %s)", w.Code, w.Body.String())
	}

	var resp ApplyRulesResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode apply response: %v", err)
	}
	if len(resp.FilterQueries) != 1 || resp.FilterQueries[0] != "-productId:p9" {
		t.Errorf("filter_queries = %v, want [-productId:p9]", resp.FilterQueries)
	}
	if resp.RedirectURL != "/promo/bikes" {
		t.Errorf("redirect_url = %q, want /promo/bikes", resp.RedirectURL)
	}
}

func TestApplyRulesHandlerBlankSearchQuery(t *testing.T) {
	router := setupTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/search/_apply", ApplyRulesRequest{
		IsSearch:  true,
		CatalogID: "outdoorCatalog",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 (body: %s)", w.Code, w.Body.String())
	}
}

func TestReindexHandler(t *testing.T) {
	router := setupTestRouter(t)

	if w := doJSON(t, router, http.MethodPost, "/rules", enginetest.MakeBlockRule("hide p9", "p9")); w.Code != http.StatusCreated {
		t.Fatalf("create status = %d", w.Code)
	}

	w := doJSON(t, router, http.MethodPost, "/reindex", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("reindex status = %d (body: %s)", w.Code, w.Body.String())
	}
	var resp ReindexResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode reindex response: %v", err)
	}
	if resp.Total != 1 || resp.Indexed != 1 {
		t.Errorf("reindex summary = %+v, want 1 indexed", resp)
	}
}

func TestCategoryGraphHandler(t *testing.T) {
	router := setupTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/categories/_graph", CategoryGraphRequest{
		Categories: []CategoryCount{
			{Path: "shoes.running", Name: "Running", Count: 12},
			{Path: "shoes", Name: "Shoes", Count: 40},
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d (body: %s)", w.Code, w.Body.String())
	}

	var resp CategoryGraphResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode graph response: %v", err)
	}
	if len(resp.Root.Children) != 1 {
		t.Fatalf("root children = %d, want 1", len(resp.Root.Children))
	}
	shoes := resp.Root.Children[0]
	if shoes.Name != "Shoes" || shoes.Count != 40 || len(shoes.Children) != 1 {
		t.Errorf("shoes node = %+v", shoes)
	}
}

func TestBoostMappingHandlerWithoutSource(t *testing.T) {
	router := setupTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/boosts/boost1", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 (body: %s)", w.Code, w.Body.String())
	}
}
