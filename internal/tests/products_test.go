package tests

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/javajoker/purbeurre/internal/database/dbtest"
	"github.com/javajoker/purbeurre/internal/models"
	"github.com/javajoker/purbeurre/internal/search"
)

type ProductTestSuite struct {
	apiSuite

	nutella *models.Product
	puree   *models.Product
}

type productDetail struct {
	Product struct {
		ID         uint   `json:"id"`
		Name       string `json:"name"`
		Categories []struct {
			Name string `json:"name"`
		} `json:"categories"`
	} `json:"product"`
	Brands            []string `json:"brands"`
	NutriscoreLetters []string `json:"nutriscore_letters"`
}

func (s *ProductTestSuite) SetupTest() {
	s.apiSuite.SetupTest()

	spreads := dbtest.Category(s.T(), s.db, "Pâtes à tartiner")
	s.nutella = dbtest.Product(s.T(), s.db, "nutella", models.NutriscoreE, spreads)
	s.puree = dbtest.Product(s.T(), s.db, "puree-amandes", models.NutriscoreA, spreads)

	brands := "Ferrero, Nutella"
	s.Require().NoError(s.db.Model(s.nutella).Update("brands", brands).Error)
	s.nutella.Brands = &brands

	s.Require().NoError(s.index.BulkIndex(context.Background(), []search.Document{
		search.NewDocument(s.nutella),
		search.NewDocument(s.puree),
	}))
}

func (s *ProductTestSuite) TestGetProduct() {
	w, resp := s.request(http.MethodGet, productPath(s.nutella.ID, ""), nil, "")
	s.Require().Equal(http.StatusOK, w.Code)

	var data productDetail
	s.decode(resp.Data, &data)
	s.Equal("nutella", data.Product.Name)
	s.Require().Len(data.Product.Categories, 1)
	s.Equal("Pâtes à tartiner", data.Product.Categories[0].Name)
	s.Equal([]string{"Ferrero", "Nutella"}, data.Brands)
	s.Equal([]string{"a", "b", "c", "d", "e"}, data.NutriscoreLetters)
}

func (s *ProductTestSuite) TestGetProductNotFound() {
	w, resp := s.request(http.MethodGet, productPath(9999, ""), nil, "")
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal("NOT_FOUND", resp.Error.Code)

	w, _ = s.request(http.MethodGet, "/v1/products/abc", nil, "")
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *ProductTestSuite) TestGetProductBySlug() {
	w, resp := s.request(http.MethodGet, "/v1/products/slug/puree-amandes", nil, "")
	s.Require().Equal(http.StatusOK, w.Code)

	var data productDetail
	s.decode(resp.Data, &data)
	s.Equal(s.puree.ID, data.Product.ID)
}

func (s *ProductTestSuite) TestSearchProducts() {
	w, resp := s.request(http.MethodGet, "/v1/products/search?query=tartiner", nil, "")
	s.Require().Equal(http.StatusOK, w.Code)

	var hits []search.Document
	s.decode(resp.Data, &hits)
	s.Require().Len(hits, 2)
	// Equal relevance: better grade first.
	s.Equal(s.puree.ID, hits[0].ID)
	s.Equal(s.nutella.ID, hits[1].ID)

	w, resp = s.request(http.MethodGet, "/v1/products/search?query=", nil, "")
	s.Require().Equal(http.StatusOK, w.Code)
	hits = nil
	s.decode(resp.Data, &hits)
	s.Empty(hits)
}

func (s *ProductTestSuite) TestHealthAndMetrics() {
	w, _ := s.request(http.MethodGet, "/health", nil, "")
	s.Equal(http.StatusOK, w.Code)

	s.request(http.MethodGet, productPath(s.nutella.ID, ""), nil, "")

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `purbeurre_http_requests_total{method="GET",route="/v1/products/:id",status="200"}`)
}

func TestProductTestSuite(t *testing.T) {
	suite.Run(t, new(ProductTestSuite))
}
