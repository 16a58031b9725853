package tests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/javajoker/purbeurre/internal/config"
	"github.com/javajoker/purbeurre/internal/database/dbtest"
	"github.com/javajoker/purbeurre/internal/models"
	"github.com/javajoker/purbeurre/internal/router"
	"github.com/javajoker/purbeurre/internal/search"
	"github.com/javajoker/purbeurre/internal/utils"
)

const testSecret = "test-secret"

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Meta    json.RawMessage `json:"meta"`
	Error   *struct {
		Code    string                  `json:"code"`
		Message string                  `json:"message"`
		Details []utils.ValidationError `json:"details"`
	} `json:"error"`
}

type paginationMeta struct {
	Pagination struct {
		Page       int   `json:"page"`
		Total      int64 `json:"total"`
		TotalPages int   `json:"total_pages"`
		HasNext    bool  `json:"has_next"`
		HasPrev    bool  `json:"has_prev"`
	} `json:"pagination"`
}

// apiSuite serves the full router over a fresh in-memory database per test.
type apiSuite struct {
	suite.Suite
	db     *gorm.DB
	router *gin.Engine
	index  *search.MemoryIndex
}

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		JWT: config.JWTConfig{
			SecretKey:       testSecret,
			AccessTokenTTL:  1,
			RefreshTokenTTL: 24,
		},
		CORS: config.CORSConfig{
			AllowedOrigins: []string{"*"},
		},
	}
}

func (s *apiSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	utils.SetJWTSecret(testSecret)

	s.db = dbtest.Open(s.T())
	s.index = search.NewMemoryIndex()
	s.router = router.Initialize(s.db, testConfig(), s.index)
}

func (s *apiSuite) request(method, path string, body interface{}, token string) (*httptest.ResponseRecorder, envelope) {
	var payload bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&payload).Encode(body))
	}

	req := httptest.NewRequest(method, path, &payload)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var resp envelope
	if w.Body.Len() > 0 {
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	}
	return w, resp
}

// tokenFor issues an access token without going through login.
func (s *apiSuite) tokenFor(user *models.User) string {
	token, err := utils.GenerateJWT(user.ID, user.Username, user.Email, 1)
	s.Require().NoError(err)
	return token
}

func (s *apiSuite) decode(raw json.RawMessage, v interface{}) {
	s.Require().NoError(json.Unmarshal(raw, v), string(raw))
}

func (s *apiSuite) pagination(resp envelope) paginationMeta {
	var meta paginationMeta
	s.decode(resp.Meta, &meta)
	return meta
}

func productPath(id uint, suffix string) string {
	return fmt.Sprintf("/v1/products/%d%s", id, suffix)
}
