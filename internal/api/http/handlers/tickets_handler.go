package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-desk/internal/api/dto"
	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/service"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

// TicketsHandler exposes ticket lifecycle and statistics endpoints.
type TicketsHandler struct {
	tickets *service.TicketService
	stats   *service.StatsService
}

// NewTicketsHandler constructs the handler.
func NewTicketsHandler(ticketService *service.TicketService, statsService *service.StatsService) *TicketsHandler {
	return &TicketsHandler{tickets: ticketService, stats: statsService}
}

// Create handles POST /tickets (employee only by route gating).
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.tickets.CreateTicket(c.Context(), principal.User.ID, service.TicketCreateInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.TicketFromDomain(ticket, false)})
}

// ListMine handles GET /tickets/my (employee only).
func (h *TicketsHandler) ListMine(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	tickets, err := h.tickets.ListCreatedBy(c.Context(), principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketsFromDomain(tickets, false)})
}

// ListAssigned handles GET /tickets/assigned (support only).
func (h *TicketsHandler) ListAssigned(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	tickets, err := h.tickets.ListAssignedTo(c.Context(), principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketsFromDomain(tickets, true)})
}

// List handles GET /tickets with filters (admin, support).
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	query, err := parseTicketQuery(c)
	if err != nil {
		return err
	}
	tickets, err := h.tickets.Query(c.Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketsFromDomain(tickets, true)})
}

// Get handles GET /tickets/:id. Any authenticated role may view the
// detail regardless of ownership: comments and ticket detail views are
// shared across roles. Internal notes stay admin/support only.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticket, err := h.tickets.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	includeNotes := principal.Role == domain.RoleAdmin || principal.Role == domain.RoleSupport
	return c.JSON(fiber.Map{"data": dto.TicketFromDomain(ticket, includeNotes)})
}

// UpdateStatus handles PATCH /tickets/:id/status (support, admin).
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.tickets.UpdateStatus(c.Context(), principal.User.ID, c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketFromDomain(ticket, true)})
}

// Assign handles PATCH /tickets/:id/assign (admin only).
func (h *TicketsHandler) Assign(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.AssignTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.tickets.AssignTicket(c.Context(), principal.User.ID, c.Params("id"), req.AssignedTo, req.Priority)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketFromDomain(ticket, true)})
}

// UpdateNotes handles PATCH /tickets/:id/notes (admin, support).
func (h *TicketsHandler) UpdateNotes(c *fiber.Ctx) error {
	var req dto.UpdateNotesRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.tickets.UpdateInternalNotes(c.Context(), c.Params("id"), req.InternalNotes)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketFromDomain(ticket, true)})
}

// Stats handles GET /tickets/stats (admin, support, employee).
func (h *TicketsHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.stats.Global(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": stats})
}

// EmployeeStats handles GET /tickets/stats/employee (employee only).
func (h *TicketsHandler) EmployeeStats(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	stats, err := h.stats.ForEmployee(c.Context(), principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": stats})
}

// AgentStats handles GET /tickets/stats/support-agent (support only).
func (h *TicketsHandler) AgentStats(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	stats, err := h.stats.ForAgent(c.Context(), principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": stats})
}

func parseTicketQuery(c *fiber.Ctx) (service.TicketQuery, error) {
	var query service.TicketQuery
	if v := c.Query("status"); v != "" {
		status := domain.TicketStatus(v)
		query.Status = &status
	}
	if v := c.Query("priority"); v != "" {
		priority := domain.TicketPriority(v)
		query.Priority = &priority
	}
	if v := c.Query("category"); v != "" {
		category := domain.TicketCategory(v)
		query.Category = &category
	}
	if v := c.Query("assignedTo"); v != "" {
		query.AssignedTo = &v
	}
	if v := c.Query("search"); v != "" {
		query.SearchTerm = &v
	}
	if v := c.Query("dateFrom"); v != "" {
		from, err := parseDate(v)
		if err != nil {
			return query, apperrors.NewValidationError("invalid dateFrom", map[string]any{"dateFrom": v})
		}
		query.CreatedFrom = &from
	}
	if v := c.Query("dateTo"); v != "" {
		to, err := parseDate(v)
		if err != nil {
			return query, apperrors.NewValidationError("invalid dateTo", map[string]any{"dateTo": v})
		}
		query.CreatedTo = &to
	}
	return query, nil
}

func parseDate(value string) (time.Time, error) {
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, nil
	}
	return time.Parse("2006-01-02", value)
}
