// Package openfoodfacts reads product pages from the Open Food Facts
// search API.
package openfoodfacts

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const searchPath = "/cgi/search.pl"

// Fields requested for every product.
var productFields = []string{
	"product_name", "generic_name", "nutriscore_grade", "brands",
	"stores", "url", "image_url", "image_small_url",
	"categories", "categories_tags",
}

type Product struct {
	ProductName     string   `json:"product_name"`
	GenericName     string   `json:"generic_name"`
	NutriscoreGrade string   `json:"nutriscore_grade"`
	Brands          string   `json:"brands"`
	Stores          string   `json:"stores"`
	URL             string   `json:"url"`
	ImageURL        string   `json:"image_url"`
	ImageSmallURL   string   `json:"image_small_url"`
	Categories      string   `json:"categories"`
	CategoriesTags  []string `json:"categories_tags"`
}

// CategoryPairs zips the comma-separated category names with their tags.
// Extra names or tags without a partner are dropped.
func (p *Product) CategoryPairs() [][2]string {
	if p.Categories == "" {
		return nil
	}
	names := strings.Split(p.Categories, ",")
	n := len(names)
	if len(p.CategoriesTags) < n {
		n = len(p.CategoriesTags)
	}

	pairs := make([][2]string, 0, n)
	for i := 0; i < n; i++ {
		name := strings.TrimSpace(names[i])
		tag := strings.TrimSpace(p.CategoriesTags[i])
		if name == "" || tag == "" {
			continue
		}
		pairs = append(pairs, [2]string{name, tag})
	}
	return pairs
}

type SearchPage struct {
	Count    FlexibleInt `json:"count"`
	Page     FlexibleInt `json:"page"`
	Products []Product   `json:"products"`
}

// FlexibleInt accepts both 42 and "42"; the API returns either.
type FlexibleInt int

func (f *FlexibleInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("openfoodfacts: invalid integer %s", data)
	}
	*f = FlexibleInt(n)
	return nil
}

type Config struct {
	BaseURL           string
	PageSize          int
	StateTag          string
	RequestsPerSecond float64
	Timeout           time.Duration
}

type Client struct {
	baseURL    string
	pageSize   int
	stateTag   string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewClient(cfg Config) *Client {
	if cfg.PageSize < 1 {
		cfg.PageSize = 1000
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		pageSize:   cfg.PageSize,
		stateTag:   cfg.StateTag,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(limit, 1),
	}
}

func (c *Client) PageSize() int {
	return c.pageSize
}

// FetchPage downloads one 1-indexed page of products, waiting for the rate
// limiter first.
func (c *Client) FetchPage(ctx context.Context, page int) (*SearchPage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("json", "true")
	params.Set("action", "process")
	params.Set("page_size", strconv.Itoa(c.pageSize))
	params.Set("page", strconv.Itoa(page))
	params.Set("fields", strings.Join(productFields, ","))
	if c.stateTag != "" {
		params.Set("tagtype_0", "states")
		params.Set("tag_contains_0", "contains")
		params.Set("tag_0", c.stateTag)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+searchPath+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "purbeurre-import/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openfoodfacts: page %d: %w", page, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openfoodfacts: page %d: unexpected status %s", page, resp.Status)
	}

	var result SearchPage
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("openfoodfacts: page %d: decode response: %w", page, err)
	}
	return &result, nil
}

// LastPage is the number of pages needed for count products.
func (c *Client) LastPage(count int) int {
	return (count + c.pageSize - 1) / c.pageSize
}
