// internal/utils/pagination.go
package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// DefaultPerPage is the page size of every listing in the application.
const DefaultPerPage = 6

type PaginationParams struct {
	Page   int `json:"page"`
	Limit  int `json:"limit"`
	Offset int `json:"-"`
}

type PaginationResult struct {
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	Total      int64       `json:"total"`
	TotalPages int         `json:"total_pages"`
	HasNext    bool        `json:"has_next"`
	HasPrev    bool        `json:"has_prev"`
	Data       interface{} `json:"data"`
}

// ParsePage reads a 1-indexed page number. Missing, non-numeric, zero and
// negative values all mean the first page.
func ParsePage(raw string) int {
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// GetPage reads the "page" query parameter.
func GetPage(c *gin.Context) int {
	return ParsePage(c.Query("page"))
}

// TotalPages returns the number of pages needed for total items. An empty
// listing still has one (empty) page.
func TotalPages(total int64, limit int) int {
	if limit < 1 {
		limit = DefaultPerPage
	}
	pages := int((total + int64(limit) - 1) / int64(limit))
	if pages < 1 {
		return 1
	}
	return pages
}

// Paginate resolves the requested page against the total item count.
// Pages past the end clamp to the last page.
func Paginate(total int64, page, limit int) PaginationParams {
	if limit < 1 {
		limit = DefaultPerPage
	}
	if page < 1 {
		page = 1
	}
	if last := TotalPages(total, limit); page > last {
		page = last
	}

	return PaginationParams{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

func ApplyPagination(db *gorm.DB, params PaginationParams) *gorm.DB {
	return db.Offset(params.Offset).Limit(params.Limit)
}

func CreatePaginationResult(data interface{}, total int64, params PaginationParams) PaginationResult {
	totalPages := TotalPages(total, params.Limit)

	return PaginationResult{
		Page:       params.Page,
		Limit:      params.Limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    params.Page < totalPages,
		HasPrev:    params.Page > 1,
		Data:       data,
	}
}

// PageRange returns at most five page numbers centred on current, shifted
// to stay inside [1, totalPages].
func PageRange(totalPages, current int) []int {
	const window = 5
	if totalPages < 1 {
		return nil
	}
	if current < 1 {
		current = 1
	}
	if current > totalPages {
		current = totalPages
	}

	start := current - window/2
	end := current + window/2
	if start < 1 {
		end += 1 - start
		start = 1
	}
	if end > totalPages {
		start -= end - totalPages
		end = totalPages
	}
	if start < 1 {
		start = 1
	}

	pages := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		pages = append(pages, p)
	}
	return pages
}

func SetPaginationHeaders(c *gin.Context, result PaginationResult) {
	c.Header("X-Total-Count", strconv.FormatInt(result.Total, 10))
	c.Header("X-Page", strconv.Itoa(result.Page))
	c.Header("X-Per-Page", strconv.Itoa(result.Limit))
	c.Header("X-Total-Pages", strconv.Itoa(result.TotalPages))
}
