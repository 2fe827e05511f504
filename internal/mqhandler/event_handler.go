// Package mqhandler consumes the notification events published by the
// engine. Delivery to real channels (mail, push) lives elsewhere; this
// worker drains the queues and records what came through.
package mqhandler

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"projecttracker/internal/notify"
)

type EventHandler struct {
	eventType string
	logger    *zap.Logger
}

func NewEventHandler(eventType string, logger *zap.Logger) *EventHandler {
	return &EventHandler{eventType: eventType, logger: logger}
}

func (h *EventHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	var ev notify.Event
	if err := json.Unmarshal(raw, &ev); err != nil {
		h.logger.Error("Failed to unmarshal event",
			zap.String("event_type", h.eventType),
			zap.Error(err),
		)
		return err
	}

	fields := []zap.Field{
		zap.String("event_type", ev.EventType),
		zap.Int("user_id", ev.UserID),
		zap.String("message", ev.Message),
	}
	if ev.ProjectID != nil {
		fields = append(fields, zap.Int("project_id", *ev.ProjectID))
	}
	h.logger.Info("Handling notification event", fields...)

	return nil
}
