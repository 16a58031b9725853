// internal/handlers/review.go
package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/purbeurre/internal/i18n"
	"github.com/javajoker/purbeurre/internal/models"
	"github.com/javajoker/purbeurre/internal/services"
	"github.com/javajoker/purbeurre/internal/utils"
)

type ReviewHandler struct {
	reviewService *services.ReviewService
}

func NewReviewHandler(reviewService *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
	}
}

type ReviewAuthor struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

// ReviewResponse exposes a review with its author's public identity only.
type ReviewResponse struct {
	ID        uint          `json:"id"`
	Title     string        `json:"title"`
	Content   string        `json:"content"`
	Rating    int           `json:"rating"`
	ProductID uint          `json:"product_id"`
	Author    *ReviewAuthor `json:"author,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

func newReviewResponse(r *models.Review) *ReviewResponse {
	if r == nil {
		return nil
	}
	resp := &ReviewResponse{
		ID:        r.ID,
		Title:     r.Title,
		Content:   r.Content,
		Rating:    r.Rating,
		ProductID: r.ProductID,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.User != nil {
		resp.Author = &ReviewAuthor{ID: r.User.ID, Username: r.User.Username}
	}
	return resp
}

func newReviewResponses(reviews []models.Review) []*ReviewResponse {
	out := make([]*ReviewResponse, 0, len(reviews))
	for i := range reviews {
		out = append(out, newReviewResponse(&reviews[i]))
	}
	return out
}

// GET /products/:id/reviews?page=
func (h *ReviewHandler) GetProductReviews(c *gin.Context) {
	productID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var requesterID *uint
	if userID, ok := utils.GetUserIDFromContext(c); ok {
		requesterID = &userID
	}

	page, err := h.reviewService.GetProductReviews(c.Request.Context(), requesterID, productID, utils.GetPage(c))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	result := page.Result()
	result.Data = gin.H{
		"reviews":   newReviewResponses(page.Reviews),
		"my_review": newReviewResponse(page.MyReview),
	}
	utils.PaginatedResponse(c, result)
}

// GET /products/:id/rating
func (h *ReviewHandler) GetAverageRating(c *gin.Context) {
	productID, ok := paramID(c, "id")
	if !ok {
		return
	}

	average, total, err := h.reviewService.GetAverageRating(c.Request.Context(), productID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"product_id": productID,
		"average":    average,
		"total":      total,
	})
}

// POST /products/:id/reviews
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	productID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req services.ReviewRequest
	if !bindJSON(c, &req) {
		return
	}

	review, err := h.reviewService.Create(c.Request.Context(), userID, productID, &req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyReviewCreated),
		"review":  newReviewResponse(review),
	})
}

// GET /reviews/:id
func (h *ReviewHandler) GetReview(c *gin.Context) {
	reviewID, ok := paramID(c, "id")
	if !ok {
		return
	}

	review, err := h.reviewService.Get(c.Request.Context(), reviewID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, newReviewResponse(review))
}

// PUT /reviews/:id
func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	reviewID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req services.ReviewRequest
	if !bindJSON(c, &req) {
		return
	}

	review, err := h.reviewService.Update(c.Request.Context(), userID, reviewID, &req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyReviewUpdated),
		"review":  newReviewResponse(review),
	})
}

// DELETE /reviews/:id
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	reviewID, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.reviewService.Delete(c.Request.Context(), userID, reviewID); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyReviewDeleted),
	})
}
