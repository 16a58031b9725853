// internal/models/product.go
package models

import (
	"strings"
)

type Product struct {
	BaseModel
	Name            string          `json:"name" gorm:"size:254;not null"`
	Slug            string          `json:"slug" gorm:"size:254;not null;index"`
	GenericName     *string         `json:"generic_name" gorm:"size:254"`
	Brands          *string         `json:"brands" gorm:"size:128"`
	Stores          *string         `json:"stores" gorm:"size:128"`
	NutriscoreGrade NutriscoreGrade `json:"nutriscore_grade" gorm:"type:varchar(1);not null;index"`
	URL             *string         `json:"url" gorm:"size:255"`
	ImageURL        *string         `json:"image_url" gorm:"size:255"`
	ImageSmallURL   *string         `json:"image_small_url" gorm:"size:255"`

	// Filled only by the substitute ranking query.
	SharedCategoryCount int `json:"shared_category_count,omitempty" gorm:"->;-:migration"`

	// Relationships
	Categories []Category `json:"categories,omitempty" gorm:"many2many:product_categories;constraint:OnDelete:CASCADE"`
}

// CategoryNames returns the display names of the loaded categories.
func (p *Product) CategoryNames() []string {
	names := make([]string, 0, len(p.Categories))
	for _, category := range p.Categories {
		names = append(names, category.Name)
	}
	return names
}

// BrandList splits the comma-joined brands column.
func (p *Product) BrandList() []string {
	return splitList(p.Brands)
}

// StoreList splits the comma-joined stores column.
func (p *Product) StoreList() []string {
	return splitList(p.Stores)
}

func splitList(value *string) []string {
	if value == nil || *value == "" {
		return nil
	}
	var items []string
	for _, item := range strings.Split(*value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// Category identity is its tag: names may collide across languages.
type Category struct {
	BaseModel
	Name string `json:"name" gorm:"size:254;not null"`
	Tag  string `json:"tag" gorm:"size:128;not null;uniqueIndex"`

	// Relationships
	Products []Product `json:"products,omitempty" gorm:"many2many:product_categories;constraint:OnDelete:CASCADE"`
}
