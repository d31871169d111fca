package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/repository"
)

// NotificationService turns ticket lifecycle events into emails. Every
// delivery is fire-and-forget: failures are logged and never surface to
// the operation that triggered them.
type NotificationService struct {
	dispatcher events.Dispatcher
	users      repository.UserRepository
	mailer     Mailer
	logger     *zap.Logger

	// recipients maps each lifecycle event to the set of users who
	// should hear about it.
	recipients map[events.EventType]recipientRule
}

type recipientRule func(ctx context.Context, event events.Event) ([]domain.UserRef, error)

// NewNotificationService creates the service and builds the
// event-to-recipients table: creation goes to every admin, assignment
// to the assignee, resolution to the ticket's creator.
func NewNotificationService(dispatcher events.Dispatcher, users repository.UserRepository, mailer Mailer, logger *zap.Logger) *NotificationService {
	n := &NotificationService{
		dispatcher: dispatcher,
		users:      users,
		mailer:     mailer,
		logger:     logger,
	}
	n.recipients = map[events.EventType]recipientRule{
		events.EventTicketCreated:  n.allAdmins,
		events.EventTicketAssigned: payloadAssignee,
		events.EventTicketResolved: payloadCreator,
	}
	return n
}

// RegisterHandlers subscribes to the lifecycle events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	for eventType := range n.recipients {
		n.dispatcher.Subscribe(eventType, n.handleEvent)
	}
}

func (n *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	rule, ok := n.recipients[event.Type]
	if !ok {
		return nil
	}
	recipients, err := rule(ctx, event)
	if err != nil {
		n.logger.Warn("notification recipients unavailable",
			zap.String("event_type", string(event.Type)),
			zap.String("ticket_id", event.TicketID),
			zap.Error(err))
		return nil
	}

	subject, body := composeEmail(event)
	for _, recipient := range recipients {
		if err := n.mailer.Send(ctx, recipient.Email, subject, body); err != nil {
			n.logger.Warn("notification delivery failed",
				zap.String("event_type", string(event.Type)),
				zap.String("ticket_id", event.TicketID),
				zap.String("to", recipient.Email),
				zap.Error(err))
		}
	}
	return nil
}

func (n *NotificationService) allAdmins(ctx context.Context, _ events.Event) ([]domain.UserRef, error) {
	admins, err := n.users.ListByRole(ctx, domain.RoleAdmin)
	if err != nil {
		return nil, err
	}
	refs := make([]domain.UserRef, 0, len(admins))
	for i := range admins {
		refs = append(refs, admins[i].Ref())
	}
	return refs, nil
}

func payloadAssignee(_ context.Context, event events.Event) ([]domain.UserRef, error) {
	payload, ok := event.Payload.(events.TicketAssignedPayload)
	if !ok {
		return nil, fmt.Errorf("unexpected payload for %s", event.Type)
	}
	return []domain.UserRef{payload.Assignee}, nil
}

func payloadCreator(_ context.Context, event events.Event) ([]domain.UserRef, error) {
	payload, ok := event.Payload.(events.TicketResolvedPayload)
	if !ok {
		return nil, fmt.Errorf("unexpected payload for %s", event.Type)
	}
	return []domain.UserRef{payload.Creator}, nil
}

func composeEmail(event events.Event) (subject, body string) {
	switch payload := event.Payload.(type) {
	case events.TicketCreatedPayload:
		subject = "New Ticket Submitted by Employee"
		body = fmt.Sprintf("A new support ticket has been submitted.\n\nSubmitted By: %s\nTitle: %s\nDescription: %s\nCategory: %s\n\nPlease log in to the system to assign and handle the ticket.",
			payload.Creator.Name, payload.Title, payload.Description, payload.Category)
	case events.TicketAssignedPayload:
		subject = "New Ticket Assigned"
		priority := "unset"
		if payload.Priority != nil {
			priority = string(*payload.Priority)
		}
		body = fmt.Sprintf("A ticket has been assigned to you.\n\nTitle: %s\nDescription: %s\nPriority: %s\n\nPlease check the system to take action.",
			payload.Title, payload.Description, priority)
	case events.TicketResolvedPayload:
		subject = "Your Ticket Has Been Resolved"
		body = fmt.Sprintf("Your ticket titled %q has been marked as Resolved.\n\nDescription: %s\n\nIf your issue still persists, feel free to reopen the ticket.",
			payload.Title, payload.Description)
	default:
		subject = fmt.Sprintf("Ticket event: %s", event.Type)
		body = fmt.Sprintf("Ticket %s emitted event %s.", event.TicketID, event.Type)
	}
	return subject, body
}
