package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/repository"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

// TicketService owns the ticket lifecycle: creation, assignment, status
// transitions, internal notes and queries. No other component mutates
// status, assignment or priority.
type TicketService struct {
	tickets    repository.TicketRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
}

// TicketCreateInput describes the ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	Category    domain.TicketCategory
}

// TicketQuery describes admin/support listing filters.
type TicketQuery struct {
	Status      *domain.TicketStatus
	Priority    *domain.TicketPriority
	Category    *domain.TicketCategory
	AssignedTo  *string
	SearchTerm  *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
	}
}

// CreateTicket files a new ticket for an employee. Every admin is
// notified, best-effort.
func (s *TicketService) CreateTicket(ctx context.Context, creatorID string, input TicketCreateInput) (*domain.Ticket, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" || input.Category == "" {
		return nil, apperrors.NewValidationError("title, description and category are required", nil)
	}
	if !input.Category.Valid() {
		return nil, apperrors.NewValidationError("unrecognized category", map[string]any{"category": input.Category})
	}

	creator, err := s.users.GetByID(ctx, creatorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("creator user", map[string]any{"user_id": creatorID})
		}
		return nil, apperrors.MapError(err)
	}
	if creator.Role != domain.RoleEmployee {
		return nil, apperrors.NewValidationError("tickets can only be created by employees", map[string]any{"role": creator.Role})
	}

	ticket := &domain.Ticket{
		Title:       title,
		Description: description,
		Category:    input.Category,
		Status:      domain.TicketStatusOpen,
		CreatedBy:   creator.ID,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	ticket.Creator = refPtr(creator.Ref())

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		ActorID:  creator.ID,
		Payload: events.TicketCreatedPayload{
			Title:       ticket.Title,
			Description: ticket.Description,
			Category:    ticket.Category,
			Creator:     creator.Ref(),
		},
	})
	return ticket, nil
}

// AssignTicket sets the assignee and optionally the priority. The
// assignee's role is intentionally not validated; route gating keeps
// this an admin-only operation and admins may route tickets to anyone.
func (s *TicketService) AssignTicket(ctx context.Context, actorID, ticketID, assigneeID string, priority *domain.TicketPriority) (*domain.Ticket, error) {
	if assigneeID == "" {
		return nil, apperrors.NewValidationError("assignee is required", nil)
	}
	if priority != nil && !priority.Valid() {
		return nil, apperrors.NewValidationError("unrecognized priority", map[string]any{"priority": *priority})
	}

	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	ticket.AssignedTo = &assigneeID
	if priority != nil {
		ticket.Priority = priority
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	// Notification only goes out when the assignee resolves to a real
	// user; the assignment itself stands either way.
	if assignee, err := s.users.GetByID(ctx, assigneeID); err == nil {
		ticket.Assignee = refPtr(assignee.Ref())
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketAssigned,
			TicketID: ticket.ID,
			ActorID:  actorID,
			Payload: events.TicketAssignedPayload{
				Title:       ticket.Title,
				Description: ticket.Description,
				Priority:    ticket.Priority,
				Assignee:    assignee.Ref(),
			},
		})
	}
	return ticket, nil
}

// UpdateStatus overwrites the ticket status. Any recognized status may
// move to any other: operator flexibility beats strict workflow
// enforcement for an internal tool, so an agent can reopen a closed
// ticket. The creator is notified whenever a ticket lands in Resolved.
func (s *TicketService) UpdateStatus(ctx context.Context, actorID, ticketID string, newStatus domain.TicketStatus) (*domain.Ticket, error) {
	if !newStatus.Valid() {
		return nil, apperrors.NewValidationError("unrecognized status", map[string]any{"status": newStatus})
	}

	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	if newStatus == domain.TicketStatusResolved && ticket.Status != domain.TicketStatusResolved {
		now := time.Now()
		ticket.ResolvedAt = &now
	}
	ticket.Status = newStatus
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	if newStatus == domain.TicketStatusResolved && ticket.Creator != nil {
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketResolved,
			TicketID: ticket.ID,
			ActorID:  actorID,
			Payload: events.TicketResolvedPayload{
				Title:       ticket.Title,
				Description: ticket.Description,
				Creator:     *ticket.Creator,
			},
		})
	}
	return ticket, nil
}

// UpdateInternalNotes overwrites the notes verbatim. No append, no
// history.
func (s *TicketService) UpdateInternalNotes(ctx context.Context, ticketID, notes string) (*domain.Ticket, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	ticket.InternalNotes = notes
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// Query lists tickets matching the filter, newest first.
func (s *TicketService) Query(ctx context.Context, query TicketQuery) ([]domain.Ticket, error) {
	if query.Status != nil && !query.Status.Valid() {
		return nil, apperrors.NewValidationError("unrecognized status", map[string]any{"status": *query.Status})
	}
	if query.Priority != nil && !query.Priority.Valid() {
		return nil, apperrors.NewValidationError("unrecognized priority", map[string]any{"priority": *query.Priority})
	}
	if query.Category != nil && !query.Category.Valid() {
		return nil, apperrors.NewValidationError("unrecognized category", map[string]any{"category": *query.Category})
	}
	tickets, err := s.tickets.ListWithFilter(ctx, repository.TicketFilter{
		Status:      query.Status,
		Priority:    query.Priority,
		Category:    query.Category,
		AssignedTo:  query.AssignedTo,
		SearchTerm:  query.SearchTerm,
		CreatedFrom: query.CreatedFrom,
		CreatedTo:   query.CreatedTo,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// ListCreatedBy returns the tickets a user filed, newest first.
func (s *TicketService) ListCreatedBy(ctx context.Context, userID string) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListWithFilter(ctx, repository.TicketFilter{CreatedBy: &userID})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// ListAssignedTo returns the tickets assigned to an agent, newest first.
func (s *TicketService) ListAssignedTo(ctx context.Context, userID string) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListWithFilter(ctx, repository.TicketFilter{AssignedTo: &userID})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// GetByID fetches a single ticket. Any authenticated role may view a
// ticket detail; callers decide whether internal notes are shown.
func (s *TicketService) GetByID(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	return s.getTicket(ctx, ticketID)
}

func (s *TicketService) getTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func refPtr(ref domain.UserRef) *domain.UserRef {
	return &ref
}
