package service

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/google/uuid"

	"github.com/spec-kit/support-desk/internal/domain"
)

var _ = Describe("CommentService", func() {
	var (
		ctx         context.Context
		userRepo    *mockUserRepo
		ticketRepo  *mockTicketRepo
		commentRepo *mockCommentRepo
		svc         *CommentService

		employee *domain.User
		agent    *domain.User
		ticket   *domain.Ticket
	)

	BeforeEach(func() {
		ctx = context.Background()
		userRepo = newMockUserRepo()
		ticketRepo = newMockTicketRepo(userRepo)
		commentRepo = newMockCommentRepo(userRepo)
		svc = NewCommentService(commentRepo, ticketRepo)

		employee = userRepo.add("Dana Soto", "dana@corp.example", domain.RoleEmployee)
		agent = userRepo.add("Priya Nair", "priya@corp.example", domain.RoleSupport)

		ticket = &domain.Ticket{
			ID:          uuid.NewString(),
			Title:       "Keyboard missing keys",
			Description: "The E and R keys fell off",
			Category:    domain.TicketCategoryIT,
			Status:      domain.TicketStatusOpen,
			CreatedBy:   employee.ID,
			CreatedAt:   time.Now(),
			UpdatedAt:   time.Now(),
		}
		ticketRepo.tickets = append(ticketRepo.tickets, ticket)
	})

	Describe("Add", func() {
		It("appends a comment attributed to its author", func() {
			comment, err := svc.Add(ctx, ticket.ID, agent.ID, "replacement keys ordered", nil)

			Expect(err).NotTo(HaveOccurred())
			Expect(comment.TicketID).To(Equal(ticket.ID))
			Expect(comment.UserID).To(Equal(agent.ID))
			Expect(comment.Text).To(Equal("replacement keys ordered"))
		})

		It("rejects empty text", func() {
			_, err := svc.Add(ctx, ticket.ID, agent.ID, "   ", nil)

			Expect(domainCode(err)).To(Equal("VALIDATION_FAILED"))
			Expect(commentRepo.comments).To(BeEmpty())
		})

		It("refuses to attach a comment to an unknown ticket", func() {
			_, err := svc.Add(ctx, "no-such-ticket", agent.ID, "hello", nil)

			Expect(domainCode(err)).To(Equal("NOT_FOUND"))
			Expect(commentRepo.comments).To(BeEmpty())
		})

		It("keeps the optional attachment reference", func() {
			attachment := "/uploads/receipt.png"
			comment, err := svc.Add(ctx, ticket.ID, employee.ID, "receipt attached", &attachment)

			Expect(err).NotTo(HaveOccurred())
			Expect(comment.Attachment).To(HaveValue(Equal(attachment)))
		})
	})

	Describe("ListByTicket", func() {
		It("returns the thread oldest first with author details", func() {
			base := time.Now().Add(-time.Hour)
			for i, text := range []string{"first", "second", "third"} {
				commentRepo.comments = append(commentRepo.comments, &domain.Comment{
					ID:        uuid.NewString(),
					TicketID:  ticket.ID,
					UserID:    agent.ID,
					Text:      text,
					CreatedAt: base.Add(time.Duration(i) * time.Minute),
				})
			}

			comments, err := svc.ListByTicket(ctx, ticket.ID)

			Expect(err).NotTo(HaveOccurred())
			Expect(comments).To(HaveLen(3))
			Expect(comments[0].Text).To(Equal("first"))
			Expect(comments[2].Text).To(Equal("third"))
			Expect(comments[0].Author).NotTo(BeNil())
			Expect(comments[0].Author.Name).To(Equal(agent.Name))
		})

		It("returns not found for an unknown ticket", func() {
			_, err := svc.ListByTicket(ctx, "no-such-ticket")
			Expect(domainCode(err)).To(Equal("NOT_FOUND"))
		})
	})
})
