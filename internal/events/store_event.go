package events

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventMealSaved   EventType = "meal:saved"
	EventMealDeleted EventType = "meal:deleted"
	EventItemUpdated EventType = "item:updated"
	EventItemDeleted EventType = "item:deleted"
	EventDataCleared EventType = "data:cleared"
)

// StoreEvent is the payload published after a committed store mutation.
// Subscribers (a UI layer, the CLI logger) use it to refresh derived views.
type StoreEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	MealID    string    `json:"mealId,omitempty"`
	ItemID    string    `json:"itemId,omitempty"`
	Date      string    `json:"date,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewStoreEvent(eventType EventType) StoreEvent {
	return StoreEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
	}
}

// NewMealSaved creates a meal-saved event for the given meal.
func NewMealSaved(mealID, date string) StoreEvent {
	evt := NewStoreEvent(EventMealSaved)
	evt.MealID = mealID
	evt.Date = date
	return evt
}

// NewMealDeleted creates a meal-deleted event.
func NewMealDeleted(mealID string) StoreEvent {
	evt := NewStoreEvent(EventMealDeleted)
	evt.MealID = mealID
	return evt
}

// NewItemUpdated creates an item-updated event carrying the owning meal id.
func NewItemUpdated(itemID, mealID string) StoreEvent {
	evt := NewStoreEvent(EventItemUpdated)
	evt.ItemID = itemID
	evt.MealID = mealID
	return evt
}

// NewItemDeleted creates an item-deleted event carrying the owning meal id.
func NewItemDeleted(itemID, mealID string) StoreEvent {
	evt := NewStoreEvent(EventItemDeleted)
	evt.ItemID = itemID
	evt.MealID = mealID
	return evt
}

// NewDataCleared creates a factory-reset event.
func NewDataCleared() StoreEvent {
	return NewStoreEvent(EventDataCleared)
}
