package service

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/events"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

func domainCode(err error) string {
	var derr *apperrors.DomainError
	if errors.As(err, &derr) {
		return derr.Code
	}
	return ""
}

var _ = Describe("TicketService", func() {
	var (
		ctx        context.Context
		userRepo   *mockUserRepo
		ticketRepo *mockTicketRepo
		dispatcher *recordingDispatcher
		svc        *TicketService

		employee *domain.User
		admin    *domain.User
		agent    *domain.User
	)

	BeforeEach(func() {
		ctx = context.Background()
		userRepo = newMockUserRepo()
		ticketRepo = newMockTicketRepo(userRepo)
		dispatcher = &recordingDispatcher{}
		svc = NewTicketService(TicketDependencies{
			TicketRepo: ticketRepo,
			UserRepo:   userRepo,
			Dispatcher: dispatcher,
		})

		employee = userRepo.add("Dana Soto", "dana@corp.example", domain.RoleEmployee)
		admin = userRepo.add("Ade Okafor", "ade@corp.example", domain.RoleAdmin)
		agent = userRepo.add("Priya Nair", "priya@corp.example", domain.RoleSupport)
	})

	Describe("CreateTicket", func() {
		It("defaults a new ticket to Open with no assignee or priority", func() {
			// When an employee files a ticket
			ticket, err := svc.CreateTicket(ctx, employee.ID, TicketCreateInput{
				Title:       "Printer out of toner",
				Description: "3rd floor printer shows a toner warning",
				Category:    domain.TicketCategoryOffice,
			})

			// Then it starts in Open, owned by the creator
			Expect(err).NotTo(HaveOccurred())
			Expect(ticket.Status).To(Equal(domain.TicketStatusOpen))
			Expect(ticket.CreatedBy).To(Equal(employee.ID))
			Expect(ticket.AssignedTo).To(BeNil())
			Expect(ticket.Priority).To(BeNil())
			Expect(ticket.Creator).NotTo(BeNil())
			Expect(ticket.Creator.Email).To(Equal(employee.Email))
		})

		It("rejects missing fields and persists nothing", func() {
			_, err := svc.CreateTicket(ctx, employee.ID, TicketCreateInput{
				Title:    "",
				Category: domain.TicketCategoryIT,
			})

			Expect(domainCode(err)).To(Equal("VALIDATION_FAILED"))
			Expect(ticketRepo.tickets).To(BeEmpty())
			Expect(dispatcher.events).To(BeEmpty())
		})

		It("rejects an unrecognized category", func() {
			_, err := svc.CreateTicket(ctx, employee.ID, TicketCreateInput{
				Title:       "VPN drops",
				Description: "Connection drops every hour",
				Category:    domain.TicketCategory("Facilities"),
			})

			Expect(domainCode(err)).To(Equal("VALIDATION_FAILED"))
			Expect(ticketRepo.tickets).To(BeEmpty())
		})

		It("rejects creators that are not employees", func() {
			_, err := svc.CreateTicket(ctx, admin.ID, TicketCreateInput{
				Title:       "Test",
				Description: "Test",
				Category:    domain.TicketCategoryIT,
			})

			Expect(domainCode(err)).To(Equal("VALIDATION_FAILED"))
		})

		It("rejects an unknown creator", func() {
			_, err := svc.CreateTicket(ctx, "no-such-user", TicketCreateInput{
				Title:       "Test",
				Description: "Test",
				Category:    domain.TicketCategoryIT,
			})

			Expect(domainCode(err)).To(Equal("NOT_FOUND"))
		})

		It("publishes a created event carrying the creator", func() {
			ticket, err := svc.CreateTicket(ctx, employee.ID, TicketCreateInput{
				Title:       "Laptop battery swollen",
				Description: "Battery bulging under the trackpad",
				Category:    domain.TicketCategoryIT,
			})
			Expect(err).NotTo(HaveOccurred())

			published := dispatcher.byType(events.EventTicketCreated)
			Expect(published).To(HaveLen(1))
			Expect(published[0].TicketID).To(Equal(ticket.ID))
			payload, ok := published[0].Payload.(events.TicketCreatedPayload)
			Expect(ok).To(BeTrue())
			Expect(payload.Creator.ID).To(Equal(employee.ID))
		})
	})

	Describe("AssignTicket", func() {
		var ticket *domain.Ticket

		BeforeEach(func() {
			var err error
			ticket, err = svc.CreateTicket(ctx, employee.ID, TicketCreateInput{
				Title:       "Badge reader broken",
				Description: "East entrance reader does not beep",
				Category:    domain.TicketCategoryOffice,
			})
			Expect(err).NotTo(HaveOccurred())
		})

		It("sets the assignee and priority", func() {
			priority := domain.TicketPriorityHigh
			updated, err := svc.AssignTicket(ctx, admin.ID, ticket.ID, agent.ID, &priority)

			Expect(err).NotTo(HaveOccurred())
			Expect(updated.AssignedTo).To(HaveValue(Equal(agent.ID)))
			Expect(updated.Priority).To(HaveValue(Equal(domain.TicketPriorityHigh)))
			Expect(updated.Status).To(Equal(domain.TicketStatusOpen))
		})

		It("keeps the existing priority when none is given", func() {
			priority := domain.TicketPriorityLow
			_, err := svc.AssignTicket(ctx, admin.ID, ticket.ID, agent.ID, &priority)
			Expect(err).NotTo(HaveOccurred())

			updated, err := svc.AssignTicket(ctx, admin.ID, ticket.ID, agent.ID, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Priority).To(HaveValue(Equal(domain.TicketPriorityLow)))
		})

		It("requires an assignee", func() {
			_, err := svc.AssignTicket(ctx, admin.ID, ticket.ID, "", nil)
			Expect(domainCode(err)).To(Equal("VALIDATION_FAILED"))
		})

		It("rejects an unrecognized priority", func() {
			priority := domain.TicketPriority("Critical")
			_, err := svc.AssignTicket(ctx, admin.ID, ticket.ID, agent.ID, &priority)
			Expect(domainCode(err)).To(Equal("VALIDATION_FAILED"))
		})

		It("returns not found for an unknown ticket", func() {
			_, err := svc.AssignTicket(ctx, admin.ID, "no-such-ticket", agent.ID, nil)
			Expect(domainCode(err)).To(Equal("NOT_FOUND"))
		})

		It("publishes an assigned event addressed to the assignee", func() {
			_, err := svc.AssignTicket(ctx, admin.ID, ticket.ID, agent.ID, nil)
			Expect(err).NotTo(HaveOccurred())

			published := dispatcher.byType(events.EventTicketAssigned)
			Expect(published).To(HaveLen(1))
			payload, ok := published[0].Payload.(events.TicketAssignedPayload)
			Expect(ok).To(BeTrue())
			Expect(payload.Assignee.ID).To(Equal(agent.ID))
		})
	})

	Describe("UpdateStatus", func() {
		var ticket *domain.Ticket

		BeforeEach(func() {
			var err error
			ticket, err = svc.CreateTicket(ctx, employee.ID, TicketCreateInput{
				Title:       "Expense portal 500s",
				Description: "Submitting a report returns a server error",
				Category:    domain.TicketCategoryIT,
			})
			Expect(err).NotTo(HaveOccurred())
		})

		It("rejects an unrecognized status and leaves the ticket unchanged", func() {
			_, err := svc.UpdateStatus(ctx, agent.ID, ticket.ID, domain.TicketStatus("Escalated"))

			Expect(domainCode(err)).To(Equal("VALIDATION_FAILED"))
			current, getErr := svc.GetByID(ctx, ticket.ID)
			Expect(getErr).NotTo(HaveOccurred())
			Expect(current.Status).To(Equal(domain.TicketStatusOpen))
		})

		It("allows any recognized transition, including reopening", func() {
			_, err := svc.UpdateStatus(ctx, agent.ID, ticket.ID, domain.TicketStatusClosed)
			Expect(err).NotTo(HaveOccurred())

			updated, err := svc.UpdateStatus(ctx, agent.ID, ticket.ID, domain.TicketStatusOpen)
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Status).To(Equal(domain.TicketStatusOpen))
		})

		It("stamps the resolution time on the transition into Resolved", func() {
			updated, err := svc.UpdateStatus(ctx, agent.ID, ticket.ID, domain.TicketStatusResolved)

			Expect(err).NotTo(HaveOccurred())
			Expect(updated.ResolvedAt).NotTo(BeNil())
		})

		It("keeps the original resolution time when re-set to Resolved", func() {
			first, err := svc.UpdateStatus(ctx, agent.ID, ticket.ID, domain.TicketStatusResolved)
			Expect(err).NotTo(HaveOccurred())
			stamped := *first.ResolvedAt

			again, err := svc.UpdateStatus(ctx, agent.ID, ticket.ID, domain.TicketStatusResolved)
			Expect(err).NotTo(HaveOccurred())
			Expect(*again.ResolvedAt).To(Equal(stamped))
		})

		It("notifies the creator when the ticket is resolved", func() {
			_, err := svc.UpdateStatus(ctx, agent.ID, ticket.ID, domain.TicketStatusResolved)
			Expect(err).NotTo(HaveOccurred())

			published := dispatcher.byType(events.EventTicketResolved)
			Expect(published).To(HaveLen(1))
			payload, ok := published[0].Payload.(events.TicketResolvedPayload)
			Expect(ok).To(BeTrue())
			Expect(payload.Creator.ID).To(Equal(employee.ID))
		})
	})

	Describe("UpdateInternalNotes", func() {
		It("overwrites the notes verbatim", func() {
			ticket, err := svc.CreateTicket(ctx, employee.ID, TicketCreateInput{
				Title:       "Monitor flickers",
				Description: "External monitor flickers on wake",
				Category:    domain.TicketCategoryIT,
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = svc.UpdateInternalNotes(ctx, ticket.ID, "checked cable, ordered replacement")
			Expect(err).NotTo(HaveOccurred())

			updated, err := svc.UpdateInternalNotes(ctx, ticket.ID, "replacement delivered")
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.InternalNotes).To(Equal("replacement delivered"))
		})
	})

	Describe("Query", func() {
		BeforeEach(func() {
			titles := []string{"VPN unstable", "New hire laptop", "Broken chair"}
			categories := []domain.TicketCategory{
				domain.TicketCategoryIT,
				domain.TicketCategoryHR,
				domain.TicketCategoryOffice,
			}
			for i, title := range titles {
				_, err := svc.CreateTicket(ctx, employee.ID, TicketCreateInput{
					Title:       title,
					Description: "details",
					Category:    categories[i],
				})
				Expect(err).NotTo(HaveOccurred())
			}
		})

		It("filters by category", func() {
			category := domain.TicketCategoryHR
			tickets, err := svc.Query(ctx, TicketQuery{Category: &category})

			Expect(err).NotTo(HaveOccurred())
			Expect(tickets).To(HaveLen(1))
			Expect(tickets[0].Title).To(Equal("New hire laptop"))
		})

		It("matches the search term case-insensitively against the title", func() {
			term := "vpn"
			tickets, err := svc.Query(ctx, TicketQuery{SearchTerm: &term})

			Expect(err).NotTo(HaveOccurred())
			Expect(tickets).To(HaveLen(1))
			Expect(tickets[0].Title).To(Equal("VPN unstable"))
		})

		It("rejects filter values outside the recognized enums", func() {
			status := domain.TicketStatus("Pending")
			_, err := svc.Query(ctx, TicketQuery{Status: &status})
			Expect(domainCode(err)).To(Equal("VALIDATION_FAILED"))
		})

		It("returns an empty result for a selective filter, not an error", func() {
			resolved := domain.TicketStatusResolved
			tickets, err := svc.Query(ctx, TicketQuery{Status: &resolved})

			Expect(err).NotTo(HaveOccurred())
			Expect(tickets).To(BeEmpty())
		})
	})

	Describe("scoped listings", func() {
		It("returns only the caller's own tickets, newest first", func() {
			other := userRepo.add("Sam Lee", "sam@corp.example", domain.RoleEmployee)
			_, err := svc.CreateTicket(ctx, employee.ID, TicketCreateInput{
				Title: "Mine", Description: "d", Category: domain.TicketCategoryIT,
			})
			Expect(err).NotTo(HaveOccurred())
			_, err = svc.CreateTicket(ctx, other.ID, TicketCreateInput{
				Title: "Theirs", Description: "d", Category: domain.TicketCategoryIT,
			})
			Expect(err).NotTo(HaveOccurred())

			mine, err := svc.ListCreatedBy(ctx, employee.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(mine).To(HaveLen(1))
			Expect(mine[0].Title).To(Equal("Mine"))
		})

		It("returns only tickets assigned to the agent", func() {
			ticket, err := svc.CreateTicket(ctx, employee.ID, TicketCreateInput{
				Title: "Assigned one", Description: "d", Category: domain.TicketCategoryIT,
			})
			Expect(err).NotTo(HaveOccurred())
			_, err = svc.CreateTicket(ctx, employee.ID, TicketCreateInput{
				Title: "Unassigned one", Description: "d", Category: domain.TicketCategoryIT,
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = svc.AssignTicket(ctx, admin.ID, ticket.ID, agent.ID, nil)
			Expect(err).NotTo(HaveOccurred())

			assigned, err := svc.ListAssignedTo(ctx, agent.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(assigned).To(HaveLen(1))
			Expect(assigned[0].Title).To(Equal("Assigned one"))
		})
	})

	Describe("full lifecycle", func() {
		It("carries a ticket from creation through assignment to resolution", func() {
			ticket, err := svc.CreateTicket(ctx, employee.ID, TicketCreateInput{
				Title:       "Printer not working",
				Description: "2nd floor printer jams on every job",
				Category:    domain.TicketCategoryIT,
			})
			Expect(err).NotTo(HaveOccurred())

			listed, err := svc.Query(ctx, TicketQuery{})
			Expect(err).NotTo(HaveOccurred())
			Expect(listed).To(HaveLen(1))
			Expect(listed[0].Status).To(Equal(domain.TicketStatusOpen))
			Expect(listed[0].AssignedTo).To(BeNil())

			priority := domain.TicketPriorityMedium
			_, err = svc.AssignTicket(ctx, admin.ID, ticket.ID, agent.ID, &priority)
			Expect(err).NotTo(HaveOccurred())

			// Backdate the filing so the resolution span is measurable.
			for _, stored := range ticketRepo.tickets {
				if stored.ID == ticket.ID {
					stored.CreatedAt = stored.CreatedAt.Add(-48 * time.Hour)
				}
			}

			resolved, err := svc.UpdateStatus(ctx, agent.ID, ticket.ID, domain.TicketStatusResolved)
			Expect(err).NotTo(HaveOccurred())
			Expect(resolved.Status).To(Equal(domain.TicketStatusResolved))

			stats := NewStatsService(ticketRepo)
			employeeStats, err := stats.ForEmployee(ctx, employee.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(employeeStats.TotalTickets).To(Equal(1))
			Expect(employeeStats.StatusCounts[domain.TicketStatusResolved]).To(Equal(1))
			Expect(employeeStats.AvgResolutionTimeInDays).To(BeNumerically(">", 0))
		})
	})
})
