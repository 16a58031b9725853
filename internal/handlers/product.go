// internal/handlers/product.go
package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/purbeurre/internal/i18n"
	"github.com/javajoker/purbeurre/internal/models"
	"github.com/javajoker/purbeurre/internal/services"
	"github.com/javajoker/purbeurre/internal/utils"
)

type ProductHandler struct {
	productService *services.ProductService
}

func NewProductHandler(productService *services.ProductService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
	}
}

func productDetail(product *models.Product) gin.H {
	return gin.H{
		"product":            product,
		"brands":             product.BrandList(),
		"stores":             product.StoreList(),
		"nutriscore_letters": models.NutriscoreLetters(),
	}
}

// GET /products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	productID, ok := paramID(c, "id")
	if !ok {
		return
	}

	product, err := h.productService.GetProduct(c.Request.Context(), productID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, productDetail(product))
}

// GET /products/slug/:slug
func (h *ProductHandler) GetProductBySlug(c *gin.Context) {
	product, err := h.productService.GetProductBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, productDetail(product))
}

// GET /products/search?query=&page=
func (h *ProductHandler) SearchProducts(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	query := strings.TrimSpace(c.Query("query"))

	result, err := h.productService.Search(c.Request.Context(), query, utils.GetPage(c))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	message := i18n.T(lang, i18n.KeySearchNoResults)
	if result.TotalHits > 0 {
		message = i18n.T(lang, i18n.KeySearchResultsFound, result.TotalHits)
	}

	utils.SuccessResponseWithMeta(c, result.Hits, gin.H{
		"query":   query,
		"message": message,
		"pagination": gin.H{
			"page":        result.Page,
			"limit":       result.PerPage,
			"total":       result.TotalHits,
			"total_pages": result.TotalPages,
			"has_next":    result.Page < result.TotalPages,
			"has_prev":    result.Page > 1,
			"page_range":  utils.PageRange(result.TotalPages, result.Page),
		},
	})
}
