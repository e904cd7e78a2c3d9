package models

import "time"

// InferMealType maps a point in time to a meal category using half-open hour
// ranges: [5,11) breakfast, [11,16) lunch, [16,21) dinner, everything else
// (late night and early morning) snack.
func InferMealType(t time.Time) MealType {
	hour := t.Hour()
	switch {
	case hour >= 5 && hour < 11:
		return MealTypeBreakfast
	case hour >= 11 && hour < 16:
		return MealTypeLunch
	case hour >= 16 && hour < 21:
		return MealTypeDinner
	default:
		return MealTypeSnack
	}
}
