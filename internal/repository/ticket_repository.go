package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-desk/internal/domain"
)

// TicketFilter captures ticket query parameters. Result sets are not
// paginated: expected volumes for an internal tool stay small enough to
// return in full.
type TicketFilter struct {
	Status      *domain.TicketStatus
	Priority    *domain.TicketPriority
	Category    *domain.TicketCategory
	CreatedBy   *string
	AssignedTo  *string
	SearchTerm  *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates the repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (title, description, category, priority, status, created_by, assigned_to, internal_notes)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Category,
		ticket.Priority,
		ticket.Status,
		ticket.CreatedBy,
		ticket.AssignedTo,
		ticket.InternalNotes,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET title=$1, description=$2, category=$3, priority=$4, status=$5,
            assigned_to=$6, internal_notes=$7, resolved_at=$8, updated_at=NOW()
        WHERE id=$9`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Category,
		ticket.Priority,
		ticket.Status,
		ticket.AssignedTo,
		ticket.InternalNotes,
		ticket.ResolvedAt,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ticketSelect joins the creator and assignee so list and detail views
// can show who filed and who handles a ticket without extra queries.
const ticketSelect = `
        SELECT t.id, t.title, t.description, t.category, t.priority, t.status,
               t.created_by, t.assigned_to, t.internal_notes, t.resolved_at,
               t.created_at, t.updated_at,
               c.name, c.email,
               a.id, a.name, a.email
        FROM tickets t
        JOIN users c ON c.id = t.created_by
        LEFT JOIN users a ON a.id = t.assigned_to`

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := ticketSelect + ` WHERE t.id=$1`
	row := r.pool.QueryRow(ctx, query, id)
	ticket, err := scanTicket(row)
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("t.status=$%d", len(args)))
	}
	if filter.Priority != nil {
		args = append(args, *filter.Priority)
		clauses = append(clauses, fmt.Sprintf("t.priority=$%d", len(args)))
	}
	if filter.Category != nil {
		args = append(args, *filter.Category)
		clauses = append(clauses, fmt.Sprintf("t.category=$%d", len(args)))
	}
	if filter.CreatedBy != nil {
		args = append(args, *filter.CreatedBy)
		clauses = append(clauses, fmt.Sprintf("t.created_by=$%d", len(args)))
	}
	if filter.AssignedTo != nil {
		args = append(args, *filter.AssignedTo)
		clauses = append(clauses, fmt.Sprintf("t.assigned_to=$%d", len(args)))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("t.created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("t.created_at <= $%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		clauses = append(clauses, fmt.Sprintf("LOWER(t.title) LIKE $%d", len(args)))
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY t.created_at DESC`, ticketSelect, strings.Join(clauses, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var (
		ticket        domain.Ticket
		creatorName   string
		creatorEmail  string
		assigneeID    *string
		assigneeName  *string
		assigneeEmail *string
	)
	if err := row.Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Category,
		&ticket.Priority,
		&ticket.Status,
		&ticket.CreatedBy,
		&ticket.AssignedTo,
		&ticket.InternalNotes,
		&ticket.ResolvedAt,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&creatorName,
		&creatorEmail,
		&assigneeID,
		&assigneeName,
		&assigneeEmail,
	); err != nil {
		return nil, err
	}
	ticket.Creator = &domain.UserRef{ID: ticket.CreatedBy, Name: creatorName, Email: creatorEmail}
	if assigneeID != nil {
		ticket.Assignee = &domain.UserRef{ID: *assigneeID, Name: *assigneeName, Email: *assigneeEmail}
	}
	return &ticket, nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}
