package models

// Confidence is the AI's self-reported certainty tier for a recognized item.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Valid reports whether c is one of the three known tiers.
func (c Confidence) Valid() bool {
	switch c {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
		return true
	}
	return false
}

// FoodItem is one recognized or edited food component of a meal. Items are
// exclusively owned by their meal and never exist without one.
type FoodItem struct {
	ID         string     `gorm:"primaryKey;size:36" json:"id"`
	MealID     string     `gorm:"not null;index;size:36" json:"mealId"`
	Name       string     `gorm:"not null;size:100" json:"name"`
	Grams      int        `gorm:"not null" json:"grams"`
	Calories   int        `gorm:"not null" json:"calories"`
	Confidence Confidence `gorm:"not null;size:8" json:"confidence"`
}
