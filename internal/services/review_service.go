// internal/services/review_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/javajoker/purbeurre/internal/apperrors"
	"github.com/javajoker/purbeurre/internal/models"
	"github.com/javajoker/purbeurre/internal/utils"
)

type ReviewService struct {
	db *gorm.DB
}

type ReviewRequest struct {
	Title   string `json:"title" validate:"required,max=64"`
	Content string `json:"content" validate:"required"`
	Rating  int    `json:"rating" validate:"gte=1,lte=5"`
}

// ProductReviews is one page of a product's reviews. The requester's own
// review is never part of Reviews and is returned as MyReview instead.
type ProductReviews struct {
	Reviews    []models.Review
	MyReview   *models.Review
	Total      int64
	Pagination utils.PaginationParams
}

func (p *ProductReviews) Result() utils.PaginationResult {
	return utils.CreatePaginationResult(p.Reviews, p.Total, p.Pagination)
}

func NewReviewService(db *gorm.DB) *ReviewService {
	return &ReviewService{db: db}
}

// GetProductReviews lists the reviews of productID in insertion order.
// requesterID is nil for anonymous callers.
func (s *ReviewService) GetProductReviews(ctx context.Context, requesterID *uint, productID uint, page int) (*ProductReviews, error) {
	db := s.db.WithContext(ctx)

	if err := s.ensureProduct(db, productID); err != nil {
		return nil, err
	}

	others := func() *gorm.DB {
		q := db.Model(&models.Review{}).Where("product_id = ?", productID)
		if requesterID != nil {
			q = q.Where("user_id <> ?", *requesterID)
		}
		return q
	}

	var total int64
	if err := others().Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count reviews: %w", err)
	}

	params := utils.Paginate(total, page, utils.DefaultPerPage)

	reviews := make([]models.Review, 0, params.Limit)
	if err := utils.ApplyPagination(others().Preload("User").Order("id ASC"), params).Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}

	result := &ProductReviews{
		Reviews:    reviews,
		Total:      total,
		Pagination: params,
	}

	if requesterID != nil {
		var mine models.Review
		err := db.Preload("User").
			Where("product_id = ? AND user_id = ?", productID, *requesterID).
			Order("id ASC").
			First(&mine).Error
		switch {
		case err == nil:
			result.MyReview = &mine
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, fmt.Errorf("failed to load own review: %w", err)
		}
	}

	return result, nil
}

// GetAverageRating returns the mean rating rounded half up, and the number
// of reviews. A product without reviews averages 0.
func (s *ReviewService) GetAverageRating(ctx context.Context, productID uint) (int, int64, error) {
	var row struct {
		Average float64
		Total   int64
	}

	err := s.db.WithContext(ctx).Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS total").
		Where("product_id = ?", productID).
		Scan(&row).Error
	if err != nil {
		return 0, 0, fmt.Errorf("failed to aggregate ratings: %w", err)
	}

	if row.Total == 0 {
		return 0, 0, nil
	}
	return int(math.Floor(row.Average + 0.5)), row.Total, nil
}

func (s *ReviewService) Get(ctx context.Context, reviewID uint) (*models.Review, error) {
	var review models.Review
	if err := s.db.WithContext(ctx).Preload("User").First(&review, reviewID).Error; err != nil {
		return nil, lookupError(err, "review", reviewID)
	}
	return &review, nil
}

// Create publishes userID's review of productID. A user reviews a product
// once; later changes go through Update.
func (s *ReviewService) Create(ctx context.Context, userID, productID uint, req *ReviewRequest) (*models.Review, error) {
	if err := utils.Validate(req); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	if err := s.ensureProduct(db, productID); err != nil {
		return nil, err
	}

	review := &models.Review{
		Title:     req.Title,
		Content:   req.Content,
		Rating:    req.Rating,
		UserID:    userID,
		ProductID: productID,
	}

	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(review)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to create review: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.AlreadyExists("product already reviewed by this user")
	}

	logrus.WithFields(logrus.Fields{
		"review_id":  review.ID,
		"user_id":    userID,
		"product_id": productID,
		"rating":     review.Rating,
	}).Info("Review created")

	return s.Get(ctx, review.ID)
}

// Update rewrites a review. Only its author may change it.
func (s *ReviewService) Update(ctx context.Context, userID, reviewID uint, req *ReviewRequest) (*models.Review, error) {
	if err := utils.Validate(req); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)

	var review models.Review
	if err := db.First(&review, reviewID).Error; err != nil {
		return nil, lookupError(err, "review", reviewID)
	}

	if !review.OwnedBy(userID) {
		return nil, apperrors.Forbidden("review belongs to another user")
	}

	err := db.Model(&review).Updates(map[string]interface{}{
		"title":   req.Title,
		"content": req.Content,
		"rating":  req.Rating,
	}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to update review: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"review_id": reviewID,
		"user_id":   userID,
	}).Info("Review updated")

	return s.Get(ctx, reviewID)
}

// Delete removes a review. Only its author may delete it.
func (s *ReviewService) Delete(ctx context.Context, userID, reviewID uint) error {
	db := s.db.WithContext(ctx)

	var review models.Review
	if err := db.First(&review, reviewID).Error; err != nil {
		return lookupError(err, "review", reviewID)
	}

	if !review.OwnedBy(userID) {
		return apperrors.Forbidden("review belongs to another user")
	}

	if err := db.Delete(&review).Error; err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"review_id": reviewID,
		"user_id":   userID,
	}).Info("Review deleted")
	return nil
}

func (s *ReviewService) ensureProduct(db *gorm.DB, productID uint) error {
	var count int64
	if err := db.Model(&models.Product{}).Where("id = ?", productID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check product %d: %w", productID, err)
	}
	if count == 0 {
		return apperrors.NotFound("product", productID)
	}
	return nil
}
