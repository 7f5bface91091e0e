package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/campus360/incident-service/internal/events"
)

// NotificationService reacts to ticket events. Today it records them in the
// structured log; the broker forwarder handles delivery to other services.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketAssigned, n.handleTicketAssigned)
	n.dispatcher.Subscribe(events.EventTicketStateChanged, n.handleTicketStateChanged)
	n.dispatcher.Subscribe(events.EventTicketCommentAdded, n.handleCommentAdded)
}

func (n *NotificationService) handleTicketCreated(_ context.Context, event events.Event) error {
	n.logger.Info("TicketCreated", zap.Int64("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleTicketAssigned(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketAssignedPayload)
	if !ok {
		return nil
	}
	n.logger.Info("TicketAssigned",
		zap.Int64("ticket_id", event.TicketID),
		zap.String("notify", payload.NewResponsibleID),
		zap.Bool("state_advanced", payload.StateAdvanced))
	return nil
}

func (n *NotificationService) handleTicketStateChanged(_ context.Context, event events.Event) error {
	n.logger.Info("TicketStateChanged", zap.Int64("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleCommentAdded(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCommentAddedPayload)
	if !ok || payload.Internal {
		return nil
	}
	n.logger.Info("TicketCommentAdded", zap.Int64("ticket_id", event.TicketID), zap.Int64("comment_id", payload.CommentID))
	return nil
}
