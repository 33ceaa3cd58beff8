package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/merchstack/rule-engine/internal/browse"
)

// CategoryCount is one faceted category path with its hit count.
type CategoryCount struct {
	Path  string `json:"path" binding:"required"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// CategoryGraphRequest carries the category facet counts of one search
// response. Separator defaults to ".".
type CategoryGraphRequest struct {
	Separator  string          `json:"separator,omitempty"`
	Categories []CategoryCount `json:"categories" binding:"required"`
}

// CategoryGraphResponse is the assembled category display tree.
type CategoryGraphResponse struct {
	Status string       `json:"status"`
	Root   *browse.Node `json:"root"`
}

// CategoryGraphHandler handles POST /categories/_graph
func (api *API) CategoryGraphHandler(c *gin.Context) {
	var body CategoryGraphRequest
	if result := ValidateJSONBinding(c, &body); result.HasErrors() {
		SendStructuredValidationError(c, result)
		return
	}

	separator := body.Separator
	if separator == "" {
		separator = "."
	}

	builder := browse.NewGraphBuilder(separator)
	for _, category := range body.Categories {
		builder.Add(category.Path, category.Name, category.Count)
	}

	c.JSON(http.StatusOK, CategoryGraphResponse{
		Status: "success",
		Root:   builder.Root(),
	})
}
