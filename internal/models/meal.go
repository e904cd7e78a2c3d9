package models

// MealType is the coarse time-of-day category of a logged meal.
type MealType string

const (
	MealTypeBreakfast MealType = "Breakfast"
	MealTypeLunch     MealType = "Lunch"
	MealTypeDinner    MealType = "Dinner"
	MealTypeSnack     MealType = "Snack"
)

// Valid reports whether t is one of the four known meal types.
func (t MealType) Valid() bool {
	switch t {
	case MealTypeBreakfast, MealTypeLunch, MealTypeDinner, MealTypeSnack:
		return true
	}
	return false
}

// Meal is a logged eating event. TotalCalories is always kept equal to the
// sum of calories of its food items; every item mutation recomputes it in the
// same transaction. A meal never persists with zero items.
type Meal struct {
	ID            string   `gorm:"primaryKey;size:36" json:"id"`
	Timestamp     int64    `gorm:"not null;index" json:"timestamp"` // ms since epoch
	Date          string   `gorm:"not null;size:10;index" json:"date"`
	Type          MealType `gorm:"size:16" json:"type,omitempty"`
	TotalCalories int      `gorm:"not null" json:"totalCalories"`

	Items []FoodItem `gorm:"foreignKey:MealID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}
