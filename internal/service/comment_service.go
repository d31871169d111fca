package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

// CommentService appends and reads comments tied to a ticket. Comments
// are immutable once created.
type CommentService struct {
	comments repository.CommentRepository
	tickets  repository.TicketRepository
}

// NewCommentService constructs the service.
func NewCommentService(comments repository.CommentRepository, tickets repository.TicketRepository) *CommentService {
	return &CommentService{comments: comments, tickets: tickets}
}

// Add creates a comment on an existing ticket.
func (s *CommentService) Add(ctx context.Context, ticketID, authorID, text string, attachment *string) (*domain.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.NewValidationError("comment text is required", nil)
	}

	if _, err := s.tickets.GetByID(ctx, ticketID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}

	comment := &domain.Comment{
		TicketID:   ticketID,
		UserID:     authorID,
		Text:       strings.TrimSpace(text),
		Attachment: attachment,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperrors.MapError(err)
	}
	return comment, nil
}

// ListByTicket returns the ticket's comments ordered oldest first, each
// annotated with the author's name and email for display.
func (s *CommentService) ListByTicket(ctx context.Context, ticketID string) ([]domain.Comment, error) {
	if _, err := s.tickets.GetByID(ctx, ticketID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	comments, err := s.comments.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return comments, nil
}
