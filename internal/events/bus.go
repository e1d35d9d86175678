package events

import (
	platformevents "noticedesk_backend/platform/events"
	"noticedesk_backend/platform/logger"
)

// InMemoryBus re-exports the platform bus implementation.
type InMemoryBus = platformevents.InMemoryBus

// NewInMemoryBus creates a new in-memory event bus.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return platformevents.NewInMemoryBus(log)
}
