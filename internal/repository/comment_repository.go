package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-desk/internal/domain"
)

// CommentRepository handles persistence for ticket comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.Comment, error)
}

type commentRepository struct {
	pool *pgxpool.Pool
}

// NewCommentRepository instantiates the repository.
func NewCommentRepository(pool *pgxpool.Pool) CommentRepository {
	return &commentRepository{pool: pool}
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	const query = `
        INSERT INTO comments (ticket_id, user_id, text, attachment)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		comment.TicketID,
		comment.UserID,
		comment.Text,
		comment.Attachment,
	).Scan(&comment.ID, &comment.CreatedAt)
}

func (r *commentRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Comment, error) {
	const query = `
        SELECT m.id, m.ticket_id, m.user_id, m.text, m.attachment, m.created_at,
               u.name, u.email
        FROM comments m
        JOIN users u ON u.id = m.user_id
        WHERE m.ticket_id=$1
        ORDER BY m.created_at ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Comment
	for rows.Next() {
		var (
			comment     domain.Comment
			authorName  string
			authorEmail string
		)
		if err := rows.Scan(
			&comment.ID,
			&comment.TicketID,
			&comment.UserID,
			&comment.Text,
			&comment.Attachment,
			&comment.CreatedAt,
			&authorName,
			&authorEmail,
		); err != nil {
			return nil, err
		}
		comment.Author = &domain.UserRef{ID: comment.UserID, Name: authorName, Email: authorEmail}
		result = append(result, comment)
	}
	return result, rows.Err()
}
