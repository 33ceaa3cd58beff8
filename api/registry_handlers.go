package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/merchstack/rule-engine/model"
)

// RegistryAdmin is the write-and-read surface of the taxonomy/facet
// registry exposed over the admin endpoints. Product feeds push categories,
// catalogs, brands and facet definitions through it so that rule scopes and
// facet references resolve against current data.
type RegistryAdmin interface {
	PutCategory(category *model.Category) error
	PutCatalog(catalog *model.Catalog) error
	PutBrand(brand *model.Brand) error
	PutFacet(facet *model.Facet) error

	Category(id string) (*model.Category, error)
	Catalog(id string) (*model.Catalog, error)
	Brand(id string) (*model.Brand, error)
	Facet(id string) (*model.Facet, error)

	DeleteCategory(id string) error
	DeleteCatalog(id string) error
	DeleteBrand(id string) error
	DeleteFacet(id string) error
}

// RegistryMessageResponse is the confirmation payload of registry writes.
type RegistryMessageResponse struct {
	Message string `json:"message"`
}

// PutCategoryHandler handles PUT /registry/categories/:entityId.
func (api *API) PutCategoryHandler(c *gin.Context) {
	var category model.Category
	if result := ValidateJSONBinding(c, &category); result.HasErrors() {
		SendStructuredValidationError(c, result)
		return
	}
	category.ID = c.Param("entityId")

	if !category.Type.Valid() {
		SendError(c, http.StatusBadRequest, ErrorCodeValidationFailed,
			"Unknown category type: "+string(category.Type))
		return
	}
	if err := api.registry.PutCategory(&category); err != nil {
		SendInternalError(c, "store category", err)
		return
	}
	c.JSON(http.StatusOK, RegistryMessageResponse{
		Message: "Category '" + category.ID + "' stored",
	})
}

// GetCategoryHandler handles GET /registry/categories/:entityId.
func (api *API) GetCategoryHandler(c *gin.Context) {
	category, err := api.registry.Category(c.Param("entityId"))
	if err != nil {
		SendDomainError(c, "get category", err)
		return
	}
	c.JSON(http.StatusOK, category)
}

// DeleteCategoryHandler handles DELETE /registry/categories/:entityId.
func (api *API) DeleteCategoryHandler(c *gin.Context) {
	id := c.Param("entityId")
	if err := api.registry.DeleteCategory(id); err != nil {
		SendInternalError(c, "delete category", err)
		return
	}
	c.JSON(http.StatusOK, RegistryMessageResponse{Message: "Category '" + id + "' deleted"})
}

// PutCatalogHandler handles PUT /registry/catalogs/:entityId.
func (api *API) PutCatalogHandler(c *gin.Context) {
	var catalog model.Catalog
	if result := ValidateJSONBinding(c, &catalog); result.HasErrors() {
		SendStructuredValidationError(c, result)
		return
	}
	catalog.ID = c.Param("entityId")

	if err := api.registry.PutCatalog(&catalog); err != nil {
		SendInternalError(c, "store catalog", err)
		return
	}
	c.JSON(http.StatusOK, RegistryMessageResponse{
		Message: "Catalog '" + catalog.ID + "' stored",
	})
}

// GetCatalogHandler handles GET /registry/catalogs/:entityId.
func (api *API) GetCatalogHandler(c *gin.Context) {
	catalog, err := api.registry.Catalog(c.Param("entityId"))
	if err != nil {
		SendDomainError(c, "get catalog", err)
		return
	}
	c.JSON(http.StatusOK, catalog)
}

// DeleteCatalogHandler handles DELETE /registry/catalogs/:entityId.
func (api *API) DeleteCatalogHandler(c *gin.Context) {
	id := c.Param("entityId")
	if err := api.registry.DeleteCatalog(id); err != nil {
		SendInternalError(c, "delete catalog", err)
		return
	}
	c.JSON(http.StatusOK, RegistryMessageResponse{Message: "Catalog '" + id + "' deleted"})
}

// PutBrandHandler handles PUT /registry/brands/:entityId.
func (api *API) PutBrandHandler(c *gin.Context) {
	var brand model.Brand
	if result := ValidateJSONBinding(c, &brand); result.HasErrors() {
		SendStructuredValidationError(c, result)
		return
	}
	brand.ID = c.Param("entityId")

	if err := api.registry.PutBrand(&brand); err != nil {
		SendInternalError(c, "store brand", err)
		return
	}
	c.JSON(http.StatusOK, RegistryMessageResponse{
		Message: "Brand '" + brand.ID + "' stored",
	})
}

// GetBrandHandler handles GET /registry/brands/:entityId.
func (api *API) GetBrandHandler(c *gin.Context) {
	brand, err := api.registry.Brand(c.Param("entityId"))
	if err != nil {
		SendDomainError(c, "get brand", err)
		return
	}
	c.JSON(http.StatusOK, brand)
}

// DeleteBrandHandler handles DELETE /registry/brands/:entityId.
func (api *API) DeleteBrandHandler(c *gin.Context) {
	id := c.Param("entityId")
	if err := api.registry.DeleteBrand(id); err != nil {
		SendInternalError(c, "delete brand", err)
		return
	}
	c.JSON(http.StatusOK, RegistryMessageResponse{Message: "Brand '" + id + "' deleted"})
}

// PutFacetHandler handles PUT /registry/facets/:entityId.
func (api *API) PutFacetHandler(c *gin.Context) {
	var facet model.Facet
	if result := ValidateJSONBinding(c, &facet); result.HasErrors() {
		SendStructuredValidationError(c, result)
		return
	}
	facet.ID = c.Param("entityId")

	if !facet.Type.Valid() {
		SendError(c, http.StatusBadRequest, ErrorCodeValidationFailed,
			"Unknown facet type: "+string(facet.Type))
		return
	}
	if facet.FieldName == "" {
		SendError(c, http.StatusBadRequest, ErrorCodeValidationFailed,
			"Facet field_name cannot be empty")
		return
	}
	if err := api.registry.PutFacet(&facet); err != nil {
		SendInternalError(c, "store facet", err)
		return
	}
	c.JSON(http.StatusOK, RegistryMessageResponse{
		Message: "Facet '" + facet.ID + "' stored",
	})
}

// GetFacetHandler handles GET /registry/facets/:entityId.
func (api *API) GetFacetHandler(c *gin.Context) {
	facet, err := api.registry.Facet(c.Param("entityId"))
	if err != nil {
		SendDomainError(c, "get facet", err)
		return
	}
	c.JSON(http.StatusOK, facet)
}

// DeleteFacetHandler handles DELETE /registry/facets/:entityId.
func (api *API) DeleteFacetHandler(c *gin.Context) {
	id := c.Param("entityId")
	if err := api.registry.DeleteFacet(id); err != nil {
		SendInternalError(c, "delete facet", err)
		return
	}
	c.JSON(http.StatusOK, RegistryMessageResponse{Message: "Facet '" + id + "' deleted"})
}
