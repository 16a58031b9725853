// internal/services/substitute_service.go
package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/javajoker/purbeurre/internal/apperrors"
	"github.com/javajoker/purbeurre/internal/models"
	"github.com/javajoker/purbeurre/internal/utils"
)

// SubstituteService ranks substitute candidates and manages the substitutes
// users keep for themselves.
type SubstituteService struct {
	db *gorm.DB
}

func NewSubstituteService(db *gorm.DB) *SubstituteService {
	return &SubstituteService{db: db}
}

// SubstitutePage is one page of ranked candidates for Original.
type SubstitutePage struct {
	Original    *models.Product
	Substitutes []models.Product
	Total       int64
	Pagination  utils.PaginationParams
}

func (p *SubstitutePage) Result() utils.PaginationResult {
	return utils.CreatePaginationResult(p.Substitutes, p.Total, p.Pagination)
}

type SaveStatus string

const (
	SaveStatusCreated       SaveStatus = "created"
	SaveStatusAlreadyExists SaveStatus = "already_exists"
)

// SaveResult tells a newly recorded substitute apart from one the user had
// already saved. Substitute is the stored row in both cases.
type SaveResult struct {
	Status     SaveStatus
	Substitute *models.UserSubstitute
}

type SaveSubstituteRequest struct {
	OriginalProductID   uint `json:"original_product_id" validate:"required"`
	SubstituteProductID uint `json:"substitute_product_id" validate:"required"`
}

type SubstituteListPage struct {
	Substitutes []models.UserSubstitute
	Total       int64
	Pagination  utils.PaginationParams
}

func (p *SubstituteListPage) Result() utils.PaginationResult {
	return utils.CreatePaginationResult(p.Substitutes, p.Total, p.Pagination)
}

// FindSubstitutes lists the products sharing at least one category with the
// original and graded at least as well, most shared categories first, then
// best grade, then insertion order.
func (s *SubstituteService) FindSubstitutes(ctx context.Context, originalProductID uint, page int) (*SubstitutePage, error) {
	db := s.db.WithContext(ctx)

	var original models.Product
	if err := db.Preload("Categories").First(&original, originalProductID).Error; err != nil {
		return nil, lookupError(err, "product", originalProductID)
	}

	categoryIDs := make([]uint, 0, len(original.Categories))
	for _, category := range original.Categories {
		categoryIDs = append(categoryIDs, category.ID)
	}

	if len(categoryIDs) == 0 {
		return &SubstitutePage{
			Original:    &original,
			Substitutes: []models.Product{},
			Pagination:  utils.Paginate(0, page, utils.DefaultPerPage),
		}, nil
	}

	candidates := func() *gorm.DB {
		return db.Model(&models.Product{}).
			Joins("JOIN product_categories ON product_categories.product_id = products.id").
			Where("product_categories.category_id IN ?", categoryIDs).
			Where("products.nutriscore_grade <= ?", original.NutriscoreGrade).
			Where("products.id <> ?", original.ID)
	}

	var total int64
	if err := candidates().Distinct("products.id").Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count substitutes: %w", err)
	}

	params := utils.Paginate(total, page, utils.DefaultPerPage)

	substitutes := make([]models.Product, 0, params.Limit)
	err := utils.ApplyPagination(candidates().
		Select("products.*, COUNT(DISTINCT product_categories.category_id) AS shared_category_count").
		Group("products.id").
		Order("shared_category_count DESC, products.nutriscore_grade ASC, products.id ASC"), params).
		Find(&substitutes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to rank substitutes: %w", err)
	}

	return &SubstitutePage{
		Original:    &original,
		Substitutes: substitutes,
		Total:       total,
		Pagination:  params,
	}, nil
}

// Save records that userID replaces originalID with substituteID. Saving the
// same pair twice is not an error: the existing row is returned with
// SaveStatusAlreadyExists.
func (s *SubstituteService) Save(ctx context.Context, userID, originalID, substituteID uint) (*SaveResult, error) {
	if originalID == substituteID {
		return nil, apperrors.NewValidationError().
			Add("original_product_id", "nefield", "A product cannot substitute itself").
			Add("substitute_product_id", "nefield", "A product cannot substitute itself")
	}

	db := s.db.WithContext(ctx)

	for _, id := range []uint{originalID, substituteID} {
		var count int64
		if err := db.Model(&models.Product{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("failed to check product %d: %w", id, err)
		}
		if count == 0 {
			return nil, apperrors.NotFound("product", id)
		}
	}

	row := models.UserSubstitute{
		UserID:              userID,
		OriginalProductID:   originalID,
		SubstituteProductID: substituteID,
	}

	// The unique index on the triple arbitrates concurrent saves.
	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to save substitute: %w", res.Error)
	}

	status := SaveStatusCreated
	if res.RowsAffected == 0 {
		status = SaveStatusAlreadyExists
		row = models.UserSubstitute{}
		err := db.Where("user_id = ? AND original_product_id = ? AND substitute_product_id = ?",
			userID, originalID, substituteID).First(&row).Error
		if err != nil {
			return nil, fmt.Errorf("failed to load existing substitute: %w", err)
		}
	}

	if err := db.Preload("OriginalProduct").Preload("SubstituteProduct").First(&row, row.ID).Error; err != nil {
		return nil, fmt.Errorf("failed to load substitute products: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"user_id":       userID,
		"original_id":   originalID,
		"substitute_id": substituteID,
		"status":        status,
	}).Info("Substitute saved")

	return &SaveResult{Status: status, Substitute: &row}, nil
}

// Delete removes one of userID's substitutes. Rows owned by other users are
// left untouched.
func (s *SubstituteService) Delete(ctx context.Context, userID, substituteID uint) error {
	db := s.db.WithContext(ctx)

	var row models.UserSubstitute
	if err := db.First(&row, substituteID).Error; err != nil {
		return lookupError(err, "substitute", substituteID)
	}

	if row.UserID != userID {
		return apperrors.Forbidden("substitute belongs to another user")
	}

	if err := db.Delete(&row).Error; err != nil {
		return fmt.Errorf("failed to delete substitute: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"user_id":       userID,
		"substitute_id": substituteID,
	}).Info("Substitute deleted")
	return nil
}

// ListForUser pages through userID's substitutes in the order they were saved.
func (s *SubstituteService) ListForUser(ctx context.Context, userID uint, page int) (*SubstituteListPage, error) {
	db := s.db.WithContext(ctx)

	var total int64
	if err := db.Model(&models.UserSubstitute{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count substitutes: %w", err)
	}

	params := utils.Paginate(total, page, utils.DefaultPerPage)

	substitutes := make([]models.UserSubstitute, 0, params.Limit)
	err := utils.ApplyPagination(db.
		Preload("OriginalProduct").
		Preload("SubstituteProduct").
		Where("user_id = ?", userID).
		Order("id ASC"), params).
		Find(&substitutes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list substitutes: %w", err)
	}

	return &SubstituteListPage{
		Substitutes: substitutes,
		Total:       total,
		Pagination:  params,
	}, nil
}

// SavedSubstituteIDs returns which of candidateIDs userID already saved as a
// substitute for originalID.
func (s *SubstituteService) SavedSubstituteIDs(ctx context.Context, userID, originalID uint, candidateIDs []uint) (map[uint]bool, error) {
	saved := make(map[uint]bool, len(candidateIDs))
	if len(candidateIDs) == 0 {
		return saved, nil
	}

	var ids []uint
	err := s.db.WithContext(ctx).Model(&models.UserSubstitute{}).
		Where("user_id = ? AND original_product_id = ?", userID, originalID).
		Where("substitute_product_id IN ?", candidateIDs).
		Pluck("substitute_product_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load saved substitutes: %w", err)
	}

	for _, id := range ids {
		saved[id] = true
	}
	return saved, nil
}
