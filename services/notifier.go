package services

import (
	"context"
	"log/slog"

	"github.com/Dosada05/scoreboard/metrics"
)

// Live update events pushed to viewers after a successful write.
const (
	EventTeamCreated         = "team_created"
	EventTeamDeleted         = "team_deleted"
	EventTeamUpdated         = "team_updated"
	EventRoundCreated        = "round_created"
	EventRoundDeleted        = "round_deleted"
	EventRoundUpdated        = "round_updated"
	EventEliminationUpdated  = "elimination_updated"
	EventPositionsUpdated    = "positions_updated"
	EventEliminationsSynced  = "eliminations_synced"
	EventNotificationTracked = "notification_tracked"
	EventNotificationShown   = "notification_displayed"
	EventNotificationsReset  = "notifications_reset"
	EventInitialData         = "initial-data"
)

// Notifier delivers live updates. The WebSocket hub implements it.
type Notifier interface {
	Broadcast(event string, payload interface{}) error
	BroadcastToRoom(room string, event string, payload interface{}) error
}

// broadcaster sends best-effort updates: failures are logged and counted and
// never reach the caller of the write.
type broadcaster struct {
	notifier Notifier
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func (b broadcaster) broadcast(ctx context.Context, event string, payload interface{}) {
	if b.notifier == nil {
		return
	}
	err := b.notifier.Broadcast(event, payload)
	b.metrics.ObserveBroadcast(event, err)
	if err != nil {
		b.logger.WarnContext(ctx, "Broadcast failed", slog.String("event", event), slog.Any("error", err))
	}
}

func (b broadcaster) broadcastToRoom(ctx context.Context, room, event string, payload interface{}) {
	if b.notifier == nil {
		return
	}
	err := b.notifier.BroadcastToRoom(room, event, payload)
	b.metrics.ObserveBroadcast(event, err)
	if err != nil {
		b.logger.WarnContext(ctx, "Room broadcast failed", slog.String("event", event), slog.String("room", room), slog.Any("error", err))
	}
}
