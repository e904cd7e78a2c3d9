package events

import (
	"context"
	"encoding/json"
	"log"
)

// Emit publishes a store event to the currently installed emitter. The
// default is a no-op so the core never requires a subscriber to function.
var Emit = func(ctx context.Context, evt StoreEvent) {}

// EnableLogEmitter routes store events to the standard logger.
func EnableLogEmitter() {
	Emit = func(ctx context.Context, evt StoreEvent) {
		data, err := json.Marshal(evt)
		if err != nil {
			log.Printf("events: failed to marshal store event: %v", err)
			return
		}
		log.Printf("event %s", data)
	}
}

// SetCustomEmitter installs f as the event sink. Passing nil restores the
// no-op emitter.
func SetCustomEmitter(f func(ctx context.Context, evt StoreEvent)) {
	if f == nil {
		Emit = func(context.Context, StoreEvent) {}
		return
	}
	Emit = f
}
