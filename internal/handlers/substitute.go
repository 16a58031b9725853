// internal/handlers/substitute.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/purbeurre/internal/i18n"
	"github.com/javajoker/purbeurre/internal/models"
	"github.com/javajoker/purbeurre/internal/services"
	"github.com/javajoker/purbeurre/internal/utils"
)

type SubstituteHandler struct {
	substituteService *services.SubstituteService
}

func NewSubstituteHandler(substituteService *services.SubstituteService) *SubstituteHandler {
	return &SubstituteHandler{
		substituteService: substituteService,
	}
}

// SubstituteCandidate is a ranked product plus whether the caller already
// saved it for the original.
type SubstituteCandidate struct {
	models.Product
	Saved bool `json:"saved"`
}

// GET /products/:id/substitutes?page=
func (h *SubstituteHandler) FindSubstitutes(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	productID, ok := paramID(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	page, err := h.substituteService.FindSubstitutes(ctx, productID, utils.GetPage(c))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	ids := make([]uint, 0, len(page.Substitutes))
	for _, p := range page.Substitutes {
		ids = append(ids, p.ID)
	}
	saved, err := h.substituteService.SavedSubstituteIDs(ctx, userID, productID, ids)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	candidates := make([]SubstituteCandidate, 0, len(page.Substitutes))
	for _, p := range page.Substitutes {
		candidates = append(candidates, SubstituteCandidate{Product: p, Saved: saved[p.ID]})
	}

	result := page.Result()
	result.Data = gin.H{
		"original":    page.Original,
		"substitutes": candidates,
	}
	utils.PaginatedResponse(c, result)
}

// POST /substitutes
func (h *SubstituteHandler) SaveSubstitute(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.SaveSubstituteRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := utils.Validate(&req); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	result, err := h.substituteService.Save(c.Request.Context(), userID, req.OriginalProductID, req.SubstituteProductID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	if result.Status == services.SaveStatusAlreadyExists {
		c.JSON(http.StatusOK, utils.APIResponse{
			Success: true,
			Data: gin.H{
				"status":     result.Status,
				"message":    i18n.T(lang, i18n.KeySubstituteAlreadySaved),
				"substitute": result.Substitute,
			},
		})
		return
	}

	utils.CreatedResponse(c, gin.H{
		"status":     result.Status,
		"message":    i18n.T(lang, i18n.KeySubstituteSaved),
		"substitute": result.Substitute,
	})
}

// DELETE /substitutes/:id
func (h *SubstituteHandler) DeleteSubstitute(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	substituteID, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.substituteService.Delete(c.Request.Context(), userID, substituteID); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeySubstituteDeleted),
	})
}

// GET /substitutes?page=
func (h *SubstituteHandler) ListSubstitutes(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	page, err := h.substituteService.ListForUser(c.Request.Context(), userID, utils.GetPage(c))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.PaginatedResponse(c, page.Result())
}
