package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-desk/internal/api/dto"
	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/service"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

// CommentsHandler exposes ticket comment endpoints.
type CommentsHandler struct {
	comments *service.CommentService
}

// NewCommentsHandler constructs the handler.
func NewCommentsHandler(commentService *service.CommentService) *CommentsHandler {
	return &CommentsHandler{comments: commentService}
}

// Add handles POST /comments/:ticketId.
func (h *CommentsHandler) Add(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	comment, err := h.comments.Add(c.Context(), c.Params("ticketId"), principal.User.ID, req.Text, req.Attachment)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.CommentFromDomain(comment)})
}

// List handles GET /comments/:ticketId.
func (h *CommentsHandler) List(c *fiber.Ctx) error {
	comments, err := h.comments.ListByTicket(c.Context(), c.Params("ticketId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.CommentsFromDomain(comments)})
}
