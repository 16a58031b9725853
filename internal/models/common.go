// internal/models/common.go
package models

import (
	"time"
)

// Base model with common fields
type BaseModel struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NutriscoreGrade is the single-letter nutritional rating, "a" being the
// healthiest. Grades compare lexicographically.
type NutriscoreGrade string

const (
	NutriscoreA NutriscoreGrade = "a"
	NutriscoreB NutriscoreGrade = "b"
	NutriscoreC NutriscoreGrade = "c"
	NutriscoreD NutriscoreGrade = "d"
	NutriscoreE NutriscoreGrade = "e"
)

// NutriscoreLetters lists every grade from best to worst.
func NutriscoreLetters() []NutriscoreGrade {
	return []NutriscoreGrade{NutriscoreA, NutriscoreB, NutriscoreC, NutriscoreD, NutriscoreE}
}

func (g NutriscoreGrade) Valid() bool {
	switch g {
	case NutriscoreA, NutriscoreB, NutriscoreC, NutriscoreD, NutriscoreE:
		return true
	}
	return false
}

// AtLeastAsHealthyAs reports whether g is the same grade as other or a better one.
func (g NutriscoreGrade) AtLeastAsHealthyAs(other NutriscoreGrade) bool {
	return g <= other
}

const (
	MinRating = 1
	MaxRating = 5
)
