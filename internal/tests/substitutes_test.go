package tests

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/javajoker/purbeurre/internal/database/dbtest"
	"github.com/javajoker/purbeurre/internal/models"
)

type SubstituteTestSuite struct {
	apiSuite

	nutella     *models.Product
	puree       *models.Product
	chocoSpread *models.Product
	biscuit     *models.Product
	soda        *models.Product

	alice *models.User
	bob   *models.User
}

type candidate struct {
	ID                  uint   `json:"id"`
	Name                string `json:"name"`
	SharedCategoryCount int    `json:"shared_category_count"`
	Saved               bool   `json:"saved"`
}

type substitutesData struct {
	Original struct {
		ID uint `json:"id"`
	} `json:"original"`
	Substitutes []candidate `json:"substitutes"`
}

type savedSubstitute struct {
	ID                  uint `json:"id"`
	OriginalProductID   uint `json:"original_product_id"`
	SubstituteProductID uint `json:"substitute_product_id"`
	SubstituteProduct   *struct {
		Name string `json:"name"`
	} `json:"substitute_product"`
}

type saveData struct {
	Status     string          `json:"status"`
	Substitute savedSubstitute `json:"substitute"`
}

func (s *SubstituteTestSuite) SetupTest() {
	s.apiSuite.SetupTest()

	spreads := dbtest.Category(s.T(), s.db, "Pâtes à tartiner")
	chocolate := dbtest.Category(s.T(), s.db, "Chocolat")
	drinks := dbtest.Category(s.T(), s.db, "Boissons")

	s.nutella = dbtest.Product(s.T(), s.db, "nutella", models.NutriscoreE, spreads, chocolate)
	s.puree = dbtest.Product(s.T(), s.db, "puree-amandes", models.NutriscoreA, spreads)
	s.chocoSpread = dbtest.Product(s.T(), s.db, "pate-chocolat-bio", models.NutriscoreB, spreads, chocolate)
	s.biscuit = dbtest.Product(s.T(), s.db, "biscuit-chocolat", models.NutriscoreD, chocolate)
	s.soda = dbtest.Product(s.T(), s.db, "soda", models.NutriscoreA, drinks)

	s.alice = dbtest.User(s.T(), s.db, "alice")
	s.bob = dbtest.User(s.T(), s.db, "bob")
}

func (s *SubstituteTestSuite) findSubstitutes(productID uint, token string) substitutesData {
	w, resp := s.request(http.MethodGet, productPath(productID, "/substitutes"), nil, token)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var data substitutesData
	s.decode(resp.Data, &data)
	return data
}

func (s *SubstituteTestSuite) save(original, substitute uint, token string) (int, saveData) {
	w, resp := s.request(http.MethodPost, "/v1/substitutes", map[string]uint{
		"original_product_id":   original,
		"substitute_product_id": substitute,
	}, token)

	var data saveData
	if resp.Success {
		s.decode(resp.Data, &data)
	}
	return w.Code, data
}

func (s *SubstituteTestSuite) TestFindSubstitutesRanking() {
	data := s.findSubstitutes(s.nutella.ID, s.tokenFor(s.alice))

	s.Equal(s.nutella.ID, data.Original.ID)
	s.Require().Len(data.Substitutes, 3)

	// Two shared categories beat one; then the better grade wins.
	s.Equal(s.chocoSpread.ID, data.Substitutes[0].ID)
	s.Equal(2, data.Substitutes[0].SharedCategoryCount)
	s.Equal(s.puree.ID, data.Substitutes[1].ID)
	s.Equal(s.biscuit.ID, data.Substitutes[2].ID)

	for _, c := range data.Substitutes {
		s.False(c.Saved)
		s.NotEqual(s.soda.ID, c.ID)
	}
}

func (s *SubstituteTestSuite) TestFindSubstitutesExcludesWorseGrades() {
	data := s.findSubstitutes(s.chocoSpread.ID, s.tokenFor(s.alice))

	s.Require().Len(data.Substitutes, 1)
	s.Equal(s.puree.ID, data.Substitutes[0].ID)
}

func (s *SubstituteTestSuite) TestFindSubstitutesPagination() {
	spreads := models.Category{}
	s.Require().NoError(s.db.Where("name = ?", "Pâtes à tartiner").First(&spreads).Error)
	for i := 0; i < 6; i++ {
		dbtest.Product(s.T(), s.db, fmt.Sprintf("extra-%d", i), models.NutriscoreC, &spreads)
	}

	token := s.tokenFor(s.alice)

	w, resp := s.request(http.MethodGet, productPath(s.nutella.ID, "/substitutes?page=2"), nil, token)
	s.Require().Equal(http.StatusOK, w.Code)
	var data substitutesData
	s.decode(resp.Data, &data)
	s.Len(data.Substitutes, 3)

	meta := s.pagination(resp)
	s.Equal(2, meta.Pagination.Page)
	s.Equal(int64(9), meta.Pagination.Total)
	s.Equal(2, meta.Pagination.TotalPages)
	s.True(meta.Pagination.HasPrev)
	s.False(meta.Pagination.HasNext)

	// Past the end clamps to the last page; garbage means page 1.
	_, resp = s.request(http.MethodGet, productPath(s.nutella.ID, "/substitutes?page=40"), nil, token)
	s.Equal(2, s.pagination(resp).Pagination.Page)

	_, resp = s.request(http.MethodGet, productPath(s.nutella.ID, "/substitutes?page=abc"), nil, token)
	s.Equal(1, s.pagination(resp).Pagination.Page)
}

func (s *SubstituteTestSuite) TestFindSubstitutesRequiresAuth() {
	w, _ := s.request(http.MethodGet, productPath(s.nutella.ID, "/substitutes"), nil, "")
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *SubstituteTestSuite) TestFindSubstitutesUnknownProduct() {
	w, resp := s.request(http.MethodGet, productPath(9999, "/substitutes"), nil, s.tokenFor(s.alice))
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal("NOT_FOUND", resp.Error.Code)
}

func (s *SubstituteTestSuite) TestSaveSubstituteTwice() {
	token := s.tokenFor(s.alice)

	status, first := s.save(s.nutella.ID, s.puree.ID, token)
	s.Require().Equal(http.StatusCreated, status)
	s.Equal("created", first.Status)
	s.Require().NotNil(first.Substitute.SubstituteProduct)
	s.Equal("puree-amandes", first.Substitute.SubstituteProduct.Name)

	status, second := s.save(s.nutella.ID, s.puree.ID, token)
	s.Require().Equal(http.StatusOK, status)
	s.Equal("already_exists", second.Status)
	s.Equal(first.Substitute.ID, second.Substitute.ID)

	data := s.findSubstitutes(s.nutella.ID, token)
	for _, c := range data.Substitutes {
		s.Equal(c.ID == s.puree.ID, c.Saved, c.Name)
	}

	// Saved flags are per user.
	for _, c := range s.findSubstitutes(s.nutella.ID, s.tokenFor(s.bob)).Substitutes {
		s.False(c.Saved)
	}
}

func (s *SubstituteTestSuite) TestSaveSubstituteValidation() {
	token := s.tokenFor(s.alice)

	status, _ := s.save(s.nutella.ID, s.nutella.ID, token)
	s.Equal(http.StatusBadRequest, status)

	status, _ = s.save(s.nutella.ID, 9999, token)
	s.Equal(http.StatusNotFound, status)

	status, _ = s.save(0, s.puree.ID, token)
	s.Equal(http.StatusBadRequest, status)
}

func (s *SubstituteTestSuite) TestListSubstitutes() {
	aliceToken := s.tokenFor(s.alice)
	s.save(s.nutella.ID, s.puree.ID, aliceToken)
	s.save(s.nutella.ID, s.chocoSpread.ID, aliceToken)
	s.save(s.biscuit.ID, s.chocoSpread.ID, s.tokenFor(s.bob))

	w, resp := s.request(http.MethodGet, "/v1/substitutes", nil, aliceToken)
	s.Require().Equal(http.StatusOK, w.Code)

	var rows []savedSubstitute
	s.decode(resp.Data, &rows)
	s.Require().Len(rows, 2)
	s.Equal(s.puree.ID, rows[0].SubstituteProductID)
	s.Equal(s.chocoSpread.ID, rows[1].SubstituteProductID)
	s.Equal(int64(2), s.pagination(resp).Pagination.Total)
}

func (s *SubstituteTestSuite) TestDeleteSubstitute() {
	aliceToken := s.tokenFor(s.alice)
	_, saved := s.save(s.nutella.ID, s.puree.ID, aliceToken)
	path := fmt.Sprintf("/v1/substitutes/%d", saved.Substitute.ID)

	w, resp := s.request(http.MethodDelete, path, nil, s.tokenFor(s.bob))
	s.Equal(http.StatusForbidden, w.Code)
	s.Equal("FORBIDDEN", resp.Error.Code)

	w, _ = s.request(http.MethodDelete, path, nil, aliceToken)
	s.Equal(http.StatusOK, w.Code)

	w, _ = s.request(http.MethodDelete, path, nil, aliceToken)
	s.Equal(http.StatusNotFound, w.Code)

	w, _ = s.request(http.MethodDelete, "/v1/substitutes/abc", nil, aliceToken)
	s.Equal(http.StatusBadRequest, w.Code)
}

func TestSubstituteTestSuite(t *testing.T) {
	suite.Run(t, new(SubstituteTestSuite))
}
