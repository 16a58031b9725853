// internal/models/review.go
package models

type Review struct {
	BaseModel
	Title     string `json:"title" gorm:"size:64;not null"`
	Content   string `json:"content" gorm:"type:text;not null"`
	Rating    int    `json:"rating" gorm:"not null;check:chk_reviews_rating,rating >= 1 AND rating <= 5"`
	UserID    uint   `json:"user_id" gorm:"not null;uniqueIndex:idx_review_user_product,priority:1"`
	ProductID uint   `json:"product_id" gorm:"not null;uniqueIndex:idx_review_user_product,priority:2;index"`

	// Relationships
	User    *User    `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Product *Product `json:"-" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

// OwnedBy reports whether userID wrote the review.
func (r *Review) OwnedBy(userID uint) bool {
	return r.UserID == userID
}
