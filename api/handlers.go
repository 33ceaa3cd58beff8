package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/merchstack/rule-engine/internal/engine"
)

// API holds dependencies for API handlers: the rule engine orchestrator and
// the taxonomy/facet registry admin surface.
type API struct {
	engine   *engine.Engine
	registry RegistryAdmin
}

// NewAPI creates a new API handler structure.
func NewAPI(eng *engine.Engine, reg RegistryAdmin) *API {
	return &API{engine: eng, registry: reg}
}

// SetupRoutes defines all the API routes for the rule engine.
func SetupRoutes(router *gin.Engine, eng *engine.Engine, reg RegistryAdmin) {
	apiHandler := NewAPI(eng, reg)

	// Health check route
	router.GET("/health", apiHandler.HealthCheckHandler)

	// Rule authoring routes
	ruleRoutes := router.Group("/rules")
	{
		ruleRoutes.POST("", apiHandler.CreateRuleHandler)
		ruleRoutes.GET("", apiHandler.ListRulesHandler)
		ruleRoutes.GET("/:ruleId", apiHandler.GetRuleHandler)
		ruleRoutes.PUT("/:ruleId", apiHandler.UpdateRuleHandler)
		ruleRoutes.DELETE("/:ruleId", apiHandler.DeleteRuleHandler)
		ruleRoutes.POST("/:ruleId/activate", apiHandler.ActivateRuleHandler)
		ruleRoutes.POST("/:ruleId/deactivate", apiHandler.DeactivateRuleHandler)
	}

	// Reindex sits outside the rules group: a static segment under /rules
	// would collide with the :ruleId wildcard.
	router.POST("/reindex", apiHandler.ReindexHandler)

	// Search integration route
	router.POST("/search/_apply", apiHandler.ApplyRulesHandler)

	// Boost mapping routes
	boostRoutes := router.Group("/boosts")
	{
		boostRoutes.GET("/:boostId", apiHandler.GetBoostMappingHandler)
		boostRoutes.DELETE("/:boostId/cache", apiHandler.InvalidateBoostMappingHandler)
	}

	// Category browse route
	router.POST("/categories/_graph", apiHandler.CategoryGraphHandler)

	// Registry admin routes, the ingestion path for taxonomy entities and
	// facet definitions.
	registryRoutes := router.Group("/registry")
	{
		registryRoutes.PUT("/categories/:entityId", apiHandler.PutCategoryHandler)
		registryRoutes.GET("/categories/:entityId", apiHandler.GetCategoryHandler)
		registryRoutes.DELETE("/categories/:entityId", apiHandler.DeleteCategoryHandler)
		registryRoutes.PUT("/catalogs/:entityId", apiHandler.PutCatalogHandler)
		registryRoutes.GET("/catalogs/:entityId", apiHandler.GetCatalogHandler)
		registryRoutes.DELETE("/catalogs/:entityId", apiHandler.DeleteCatalogHandler)
		registryRoutes.PUT("/brands/:entityId", apiHandler.PutBrandHandler)
		registryRoutes.GET("/brands/:entityId", apiHandler.GetBrandHandler)
		registryRoutes.DELETE("/brands/:entityId", apiHandler.DeleteBrandHandler)
		registryRoutes.PUT("/facets/:entityId", apiHandler.PutFacetHandler)
		registryRoutes.GET("/facets/:entityId", apiHandler.GetFacetHandler)
		registryRoutes.DELETE("/facets/:entityId", apiHandler.DeleteFacetHandler)
	}
}

// HealthCheckHandler confirms the service is up.
func (api *API) HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
