package client

import (
	"encoding/json"
	"fmt"
	"math"

	"meallens/internal/apperrors"
	"meallens/internal/models"
)

const maxNameLength = 100

type rawItem struct {
	Name       *string  `json:"name"`
	Grams      *float64 `json:"grams"`
	Calories   *float64 `json:"calories"`
	Confidence string   `json:"confidence"`
}

type itemsEnvelope struct {
	Items *[]rawItem `json:"items"`
}

// ParseItems validates and normalizes the JSON content of an AI reply.
// Fields are checked in declared order and the first failure aborts with an
// item-indexed message. Names are truncated to 100 characters, grams and
// calories rounded to the nearest integer. An empty items array is a valid
// result, not an error.
func ParseItems(content string) ([]models.FoodItem, error) {
	var envelope itemsEnvelope
	if err := json.Unmarshal([]byte(content), &envelope); err != nil {
		return nil, apperrors.NewMalformedResponse(err.Error())
	}
	if envelope.Items == nil {
		return nil, apperrors.NewMalformedResponse("missing 'items' array")
	}

	items := make([]models.FoodItem, 0, len(*envelope.Items))
	for i, raw := range *envelope.Items {
		if raw.Name == nil || *raw.Name == "" {
			return nil, apperrors.NewMalformedResponse(fmt.Sprintf("item %d: missing or invalid name", i))
		}
		if raw.Grams == nil || *raw.Grams < 1 {
			return nil, apperrors.NewMalformedResponse(fmt.Sprintf("item %d: grams must be >= 1", i))
		}
		if raw.Calories == nil || *raw.Calories < 0 {
			return nil, apperrors.NewMalformedResponse(fmt.Sprintf("item %d: calories must be non-negative", i))
		}
		confidence := models.Confidence(raw.Confidence)
		if !confidence.Valid() {
			return nil, apperrors.NewMalformedResponse(fmt.Sprintf("item %d: confidence must be high, medium, or low", i))
		}

		items = append(items, models.FoodItem{
			Name:       truncate(*raw.Name, maxNameLength),
			Grams:      int(math.Round(*raw.Grams)),
			Calories:   int(math.Round(*raw.Calories)),
			Confidence: confidence,
		})
	}
	return items, nil
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
