package services

import (
	"context"

	"github.com/google/uuid"

	types "github.com/mirrorwell/mirrorwell-backend/internal/domain"
	"github.com/mirrorwell/mirrorwell-backend/internal/pkg/logger"
	"github.com/mirrorwell/mirrorwell-backend/internal/realtime"
	"github.com/mirrorwell/mirrorwell-backend/internal/realtime/bus"
)

// Notifier pushes progression events to the user's realtime channel. Every
// call is fire-and-forget; a missed event is recoverable from the REST surface.
type Notifier interface {
	MilestoneUnlocked(ctx context.Context, userID uuid.UUID, m *types.Milestone)
	PhaseAdvanced(ctx context.Context, userID uuid.UUID, phase string)
	SessionUnlocked(ctx context.Context, userID uuid.UUID, mirror string, sessionNumber int)
	StreakUpdated(ctx context.Context, userID uuid.UUID, current int, longest int)
}

type hubNotifier struct {
	log *logger.Logger
	hub *realtime.SSEHub
	bus bus.Bus
}

// NewNotifier builds a Notifier over the local hub plus an optional
// cross-instance bus. Pass a nil bus for single-instance deploys.
func NewNotifier(baseLog *logger.Logger, hub *realtime.SSEHub, b bus.Bus) Notifier {
	return &hubNotifier{
		log: baseLog.With("service", "Notifier"),
		hub: hub,
		bus: b,
	}
}

func (n *hubNotifier) publish(ctx context.Context, userID uuid.UUID, event realtime.SSEEvent, data any) {
	msg := realtime.SSEMessage{
		Channel: realtime.UserChannel(userID),
		Event:   event,
		Data:    data,
	}
	if n.hub != nil {
		n.hub.Broadcast(msg)
	}
	if n.bus != nil {
		if err := n.bus.Publish(ctx, msg); err != nil {
			n.log.Warn("failed to publish SSE message to bus", "event", event, "error", err)
		}
	}
}

func (n *hubNotifier) MilestoneUnlocked(ctx context.Context, userID uuid.UUID, m *types.Milestone) {
	if m == nil {
		return
	}
	n.publish(ctx, userID, realtime.SSEEventMilestoneUnlocked, map[string]any{
		"key":         m.Key,
		"title":       m.Title,
		"description": m.Description,
	})
}

func (n *hubNotifier) PhaseAdvanced(ctx context.Context, userID uuid.UUID, phase string) {
	n.publish(ctx, userID, realtime.SSEEventPhaseAdvanced, map[string]any{
		"phase": phase,
	})
}

func (n *hubNotifier) SessionUnlocked(ctx context.Context, userID uuid.UUID, mirror string, sessionNumber int) {
	n.publish(ctx, userID, realtime.SSEEventSessionUnlocked, map[string]any{
		"mirror":         mirror,
		"session_number": sessionNumber,
	})
}

func (n *hubNotifier) StreakUpdated(ctx context.Context, userID uuid.UUID, current int, longest int) {
	n.publish(ctx, userID, realtime.SSEEventStreakUpdated, map[string]any{
		"current_streak": current,
		"longest_streak": longest,
	})
}

// NoopNotifier satisfies Notifier without a hub, for tests and tooling.
type NoopNotifier struct{}

func (NoopNotifier) MilestoneUnlocked(context.Context, uuid.UUID, *types.Milestone) {}
func (NoopNotifier) PhaseAdvanced(context.Context, uuid.UUID, string)               {}
func (NoopNotifier) SessionUnlocked(context.Context, uuid.UUID, string, int)        {}
func (NoopNotifier) StreakUpdated(context.Context, uuid.UUID, int, int)             {}
