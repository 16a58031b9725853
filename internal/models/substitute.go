// internal/models/substitute.go
package models

// UserSubstitute records that a user replaced OriginalProduct with
// SubstituteProduct. The triple is unique.
type UserSubstitute struct {
	BaseModel
	UserID              uint `json:"user_id" gorm:"not null;uniqueIndex:idx_user_substitute_pair,priority:1"`
	OriginalProductID   uint `json:"original_product_id" gorm:"not null;uniqueIndex:idx_user_substitute_pair,priority:2;index"`
	SubstituteProductID uint `json:"substitute_product_id" gorm:"not null;uniqueIndex:idx_user_substitute_pair,priority:3;index"`

	// Relationships
	User              *User    `json:"-" gorm:"foreignKey:UserID"`
	OriginalProduct   *Product `json:"original_product,omitempty" gorm:"foreignKey:OriginalProductID;constraint:OnDelete:CASCADE"`
	SubstituteProduct *Product `json:"substitute_product,omitempty" gorm:"foreignKey:SubstituteProductID;constraint:OnDelete:CASCADE"`
}
