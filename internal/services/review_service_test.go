package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/purbeurre/internal/apperrors"
	"github.com/javajoker/purbeurre/internal/database/dbtest"
	"github.com/javajoker/purbeurre/internal/models"
)

func validReview(rating int) *ReviewRequest {
	return &ReviewRequest{Title: "Pas mal", Content: "Moins sucré que l'original.", Rating: rating}
}

func TestGetAverageRating(t *testing.T) {
	db := dbtest.Open(t)
	product := dbtest.Product(t, db, "Compote", models.NutriscoreA)
	svc := NewReviewService(db)

	avg, total, err := svc.GetAverageRating(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, avg)
	assert.Equal(t, int64(0), total)

	for i, rating := range []int{3, 3, 3, 5, 5} {
		user := dbtest.User(t, db, fmt.Sprintf("reviewer%d", i))
		dbtest.Review(t, db, user, product, rating)
	}

	avg, total, err = svc.GetAverageRating(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, avg)
	assert.Equal(t, int64(5), total)
}

func TestGetAverageRating_RoundsHalfUp(t *testing.T) {
	tests := []struct {
		ratings []int
		want    int
	}{
		{[]int{2, 3}, 3},
		{[]int{3, 4}, 4},
		{[]int{1, 2, 2, 2}, 2},
		{[]int{5}, 5},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.ratings), func(t *testing.T) {
			db := dbtest.Open(t)
			product := dbtest.Product(t, db, "Yaourt", models.NutriscoreB)
			for i, rating := range tt.ratings {
				dbtest.Review(t, db, dbtest.User(t, db, fmt.Sprintf("u%d", i)), product, rating)
			}

			avg, _, err := NewReviewService(db).GetAverageRating(context.Background(), product.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, avg)
		})
	}
}

func TestGetProductReviews_ExtractsOwnReview(t *testing.T) {
	db := dbtest.Open(t)
	product := dbtest.Product(t, db, "Muesli", models.NutriscoreA)
	alice := dbtest.User(t, db, "alice")
	bob := dbtest.User(t, db, "bob")
	carol := dbtest.User(t, db, "carol")

	dbtest.Review(t, db, bob, product, 4)
	mine := dbtest.Review(t, db, alice, product, 2)
	dbtest.Review(t, db, carol, product, 5)

	svc := NewReviewService(db)
	res, err := svc.GetProductReviews(context.Background(), &alice.ID, product.ID, 1)
	require.NoError(t, err)

	require.NotNil(t, res.MyReview)
	assert.Equal(t, mine.ID, res.MyReview.ID)
	assert.Equal(t, int64(2), res.Total)
	for _, r := range res.Reviews {
		assert.NotEqual(t, mine.ID, r.ID)
	}
	assert.Equal(t, bob.ID, res.Reviews[0].UserID)
	assert.Equal(t, carol.ID, res.Reviews[1].UserID)
}

func TestGetProductReviews_Anonymous(t *testing.T) {
	db := dbtest.Open(t)
	product := dbtest.Product(t, db, "Muesli", models.NutriscoreA)
	dbtest.Review(t, db, dbtest.User(t, db, "alice"), product, 2)
	dbtest.Review(t, db, dbtest.User(t, db, "bob"), product, 4)

	res, err := NewReviewService(db).GetProductReviews(context.Background(), nil, product.ID, 1)
	require.NoError(t, err)
	assert.Nil(t, res.MyReview)
	assert.Len(t, res.Reviews, 2)
	require.NotNil(t, res.Reviews[0].User)
	assert.Equal(t, "alice", res.Reviews[0].User.Username)
}

func TestGetProductReviews_RequesterWithoutReview(t *testing.T) {
	db := dbtest.Open(t)
	product := dbtest.Product(t, db, "Muesli", models.NutriscoreA)
	dbtest.Review(t, db, dbtest.User(t, db, "bob"), product, 4)
	dave := dbtest.User(t, db, "dave")

	res, err := NewReviewService(db).GetProductReviews(context.Background(), &dave.ID, product.ID, 1)
	require.NoError(t, err)
	assert.Nil(t, res.MyReview)
	assert.Len(t, res.Reviews, 1)
}

func TestGetProductReviews_PaginatesAndClamps(t *testing.T) {
	db := dbtest.Open(t)
	product := dbtest.Product(t, db, "Muesli", models.NutriscoreA)
	for i := 0; i < 8; i++ {
		dbtest.Review(t, db, dbtest.User(t, db, fmt.Sprintf("u%d", i)), product, 3)
	}

	res, err := NewReviewService(db).GetProductReviews(context.Background(), nil, product.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Pagination.Page)
	assert.Len(t, res.Reviews, 2)
	assert.Equal(t, 2, res.Result().TotalPages)
}

func TestCreateReview(t *testing.T) {
	db := dbtest.Open(t)
	product := dbtest.Product(t, db, "Muesli", models.NutriscoreA)
	alice := dbtest.User(t, db, "alice")
	svc := NewReviewService(db)

	review, err := svc.Create(context.Background(), alice.ID, product.ID, validReview(4))
	require.NoError(t, err)
	assert.NotZero(t, review.ID)
	assert.Equal(t, 4, review.Rating)
	require.NotNil(t, review.User)
	assert.Equal(t, "alice", review.User.Username)

	_, err = svc.Create(context.Background(), alice.ID, product.ID, validReview(5))
	assert.True(t, errors.Is(err, apperrors.ErrAlreadyExists))
}

func TestCreateReview_Validation(t *testing.T) {
	db := dbtest.Open(t)
	product := dbtest.Product(t, db, "Muesli", models.NutriscoreA)
	alice := dbtest.User(t, db, "alice")
	svc := NewReviewService(db)

	tests := []struct {
		name  string
		req   *ReviewRequest
		field string
	}{
		{"rating too low", &ReviewRequest{Title: "t", Content: "c", Rating: 0}, "rating"},
		{"rating too high", &ReviewRequest{Title: "t", Content: "c", Rating: 6}, "rating"},
		{"missing title", &ReviewRequest{Content: "c", Rating: 3}, "title"},
		{"long title", &ReviewRequest{Title: string(make([]byte, 65)), Content: "c", Rating: 3}, "title"},
		{"missing content", &ReviewRequest{Title: "t", Rating: 3}, "content"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), alice.ID, product.ID, tt.req)
			require.Error(t, err)

			var validationErr *apperrors.ValidationError
			require.True(t, errors.As(err, &validationErr))
			assert.Equal(t, tt.field, validationErr.Fields[0].Field)
		})
	}
}

func TestCreateReview_UnknownProduct(t *testing.T) {
	db := dbtest.Open(t)
	alice := dbtest.User(t, db, "alice")

	_, err := NewReviewService(db).Create(context.Background(), alice.ID, 404, validReview(3))
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestUpdateReview_OwnerOnly(t *testing.T) {
	db := dbtest.Open(t)
	product := dbtest.Product(t, db, "Muesli", models.NutriscoreA)
	alice := dbtest.User(t, db, "alice")
	bob := dbtest.User(t, db, "bob")
	review := dbtest.Review(t, db, alice, product, 2)
	svc := NewReviewService(db)

	_, err := svc.Update(context.Background(), bob.ID, review.ID, validReview(5))
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))

	unchanged, err := svc.Get(context.Background(), review.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, unchanged.Rating)

	updated, err := svc.Update(context.Background(), alice.ID, review.ID, validReview(5))
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Rating)
	assert.Equal(t, "Pas mal", updated.Title)

	_, err = svc.Update(context.Background(), alice.ID, 999, validReview(5))
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestDeleteReview_OwnerOnly(t *testing.T) {
	db := dbtest.Open(t)
	product := dbtest.Product(t, db, "Muesli", models.NutriscoreA)
	alice := dbtest.User(t, db, "alice")
	bob := dbtest.User(t, db, "bob")
	review := dbtest.Review(t, db, alice, product, 2)
	svc := NewReviewService(db)

	err := svc.Delete(context.Background(), bob.ID, review.ID)
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))
	_, err = svc.Get(context.Background(), review.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), alice.ID, review.ID))
	_, err = svc.Get(context.Background(), review.ID)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}
