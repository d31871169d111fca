package dto

import (
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
)

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Text       string  `json:"text"`
	Attachment *string `json:"attachment,omitempty"`
}

// CommentResponse is a comment annotated with its author projection.
type CommentResponse struct {
	ID         string          `json:"id"`
	TicketID   string          `json:"ticketId"`
	Author     *domain.UserRef `json:"user,omitempty"`
	Text       string          `json:"text"`
	Attachment *string         `json:"attachment,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// CommentFromDomain projects a comment for responses.
func CommentFromDomain(comment *domain.Comment) CommentResponse {
	return CommentResponse{
		ID:         comment.ID,
		TicketID:   comment.TicketID,
		Author:     comment.Author,
		Text:       comment.Text,
		Attachment: comment.Attachment,
		CreatedAt:  comment.CreatedAt,
	}
}

// CommentsFromDomain projects a slice of comments.
func CommentsFromDomain(comments []domain.Comment) []CommentResponse {
	result := make([]CommentResponse, 0, len(comments))
	for i := range comments {
		result = append(result, CommentFromDomain(&comments[i]))
	}
	return result
}
