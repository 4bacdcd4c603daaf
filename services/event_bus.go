package services

import (
	"fmt"
	"strings"
	"time"
)

// EventBus carries plan lifecycle events (plan.created, meal.replaced) to
// the websocket hub and push endpoints. Delivery is best-effort and never
// blocks or fails the request path.
type EventBus struct {
	rt *RealtimeHub
	ps *PushService
}

func NewEventBus(rt *RealtimeHub, ps *PushService) *EventBus {
	return &EventBus{rt: rt, ps: ps}
}

func (b *EventBus) Emit(userID uint, kind string, payload map[string]any) {
	if b == nil {
		return
	}
	if payload == nil {
		payload = map[string]any{}
	}
	payload["kind"] = kind
	payload["at"] = time.Now().UTC().Format(time.RFC3339)

	if b.rt != nil {
		b.rt.BroadcastEvent(userID, payload)
	}
	if b.ps != nil {
		title, body := pushText(kind)
		data := map[string]string{"kind": kind}
		if id, ok := payload["plan_id"]; ok {
			data["planId"] = fmt.Sprintf("%v", id)
		}
		go b.ps.PushToUser(userID, title, body, data)
	}
}

func pushText(kind string) (title, body string) {
	switch kind {
	case "plan.created":
		return "Meal plan ready", "Your new weekly meal plan has been generated."
	case "meal.replaced":
		return "Meal replaced", "A meal in your plan has been swapped."
	default:
		return "Update", strings.ReplaceAll(kind, ".", " ")
	}
}
