package command

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/koreline/koreline-hub/internal/domain/message"
	"github.com/koreline/koreline-hub/internal/domain/notification"
	"github.com/koreline/koreline-hub/internal/domain/profile"
)

// ══════════════════════════════════════════════════════════════════════════════
// SEND MESSAGE COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// SendMessageCommand sends a direct message to another profile.
type SendMessageCommand struct {
	SenderID         string
	ReceiverUsername string
	Title            string
	Text             string
}

// SendMessageHandler handles the SendMessageCommand.
type SendMessageHandler struct {
	messages message.Repository
	profiles profile.Repository
}

// NewSendMessageHandler creates a new SendMessageHandler.
func NewSendMessageHandler(messages message.Repository, profiles profile.Repository) *SendMessageHandler {
	return &SendMessageHandler{messages: messages, profiles: profiles}
}

// Handle executes the send message command.
func (h *SendMessageHandler) Handle(ctx context.Context, cmd SendMessageCommand) (*message.Message, error) {
	receiver, err := h.profiles.GetByUsername(ctx, cmd.ReceiverUsername)
	if err != nil {
		return nil, err
	}

	m, err := message.New(uuid.NewString(), cmd.SenderID, receiver.ID, cmd.Title, cmd.Text, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if err := h.messages.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// MARK READ COMMANDS
// ══════════════════════════════════════════════════════════════════════════════

// MarkMessageReadCommand marks one inbox message as read.
type MarkMessageReadCommand struct {
	// ActorID must be the message receiver.
	ActorID string

	MessageID string
}

// MarkMessageReadHandler handles the MarkMessageReadCommand.
type MarkMessageReadHandler struct {
	messages message.Repository
}

// NewMarkMessageReadHandler creates a new MarkMessageReadHandler.
func NewMarkMessageReadHandler(messages message.Repository) *MarkMessageReadHandler {
	return &MarkMessageReadHandler{messages: messages}
}

// Handle executes the mark message read command.
func (h *MarkMessageReadHandler) Handle(ctx context.Context, cmd MarkMessageReadCommand) error {
	return h.messages.MarkRead(ctx, cmd.MessageID, cmd.ActorID)
}

// MarkNotificationReadCommand marks one notification as read.
type MarkNotificationReadCommand struct {
	// ActorID must be the notification recipient.
	ActorID string

	NotificationID string
}

// MarkNotificationReadHandler handles the MarkNotificationReadCommand.
type MarkNotificationReadHandler struct {
	notifications notification.Repository
}

// NewMarkNotificationReadHandler creates a new MarkNotificationReadHandler.
func NewMarkNotificationReadHandler(notifications notification.Repository) *MarkNotificationReadHandler {
	return &MarkNotificationReadHandler{notifications: notifications}
}

// Handle executes the mark notification read command.
func (h *MarkNotificationReadHandler) Handle(ctx context.Context, cmd MarkNotificationReadCommand) error {
	return h.notifications.MarkRead(ctx, cmd.NotificationID, cmd.ActorID)
}
