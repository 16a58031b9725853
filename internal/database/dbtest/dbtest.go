// Package dbtest opens migrated in-memory SQLite databases and builds
// catalog fixtures for tests.
package dbtest

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/javajoker/purbeurre/internal/database"
	"github.com/javajoker/purbeurre/internal/models"
)

// Open returns a fresh, migrated database private to the test.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Every pooled connection to ":memory:" would be a separate database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.RunMigrations(db))
	return db
}

// Category creates a category whose tag is derived from name.
func Category(t testing.TB, db *gorm.DB, name string) *models.Category {
	t.Helper()

	category := &models.Category{Name: name, Tag: "fr:" + name}
	require.NoError(t, db.Create(category).Error)
	return category
}

// Product creates a product with the given grade attached to categories.
func Product(t testing.TB, db *gorm.DB, name string, grade models.NutriscoreGrade, categories ...*models.Category) *models.Product {
	t.Helper()

	product := &models.Product{
		Name:            name,
		Slug:            name,
		NutriscoreGrade: grade,
	}
	for _, category := range categories {
		product.Categories = append(product.Categories, *category)
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

// User creates a user with a unique username and email.
func User(t testing.TB, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := &models.User{
		Username:  username,
		Email:     fmt.Sprintf("%s@example.com", username),
		FirstName: username,
		LastName:  "Test",
	}
	require.NoError(t, user.SetPassword("Secret123!"))
	require.NoError(t, db.Create(user).Error)
	return user
}

// Review creates a review with the given rating.
func Review(t testing.TB, db *gorm.DB, user *models.User, product *models.Product, rating int) *models.Review {
	t.Helper()

	review := &models.Review{
		Title:     fmt.Sprintf("%d stars", rating),
		Content:   "Tasted as expected.",
		Rating:    rating,
		UserID:    user.ID,
		ProductID: product.ID,
	}
	require.NoError(t, db.Create(review).Error)
	return review
}
