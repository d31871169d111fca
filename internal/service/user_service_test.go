package service

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/domain"
)

var _ = Describe("UserService", func() {
	var (
		ctx      context.Context
		userRepo *mockUserRepo
		svc      *UserService

		employee *domain.User
	)

	BeforeEach(func() {
		ctx = context.Background()
		userRepo = newMockUserRepo()
		svc = NewUserService(userRepo, 4)

		employee = userRepo.add("Dana Soto", "dana@corp.example", domain.RoleEmployee)
		hash, err := auth.HashPassword("s3cret", 4)
		Expect(err).NotTo(HaveOccurred())
		employee.PasswordHash = hash
	})

	Describe("ListSupportAgents", func() {
		It("returns only users holding the support role", func() {
			userRepo.add("Priya Nair", "priya@corp.example", domain.RoleSupport)
			userRepo.add("Ade Okafor", "ade@corp.example", domain.RoleAdmin)

			agents, err := svc.ListSupportAgents(ctx)

			Expect(err).NotTo(HaveOccurred())
			Expect(agents).To(HaveLen(1))
			Expect(agents[0].Email).To(Equal("priya@corp.example"))
		})
	})

	Describe("UpdateRole", func() {
		It("promotes a user to support", func() {
			updated, err := svc.UpdateRole(ctx, employee.ID, domain.RoleSupport)

			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Role).To(Equal(domain.RoleSupport))
		})

		It("rejects roles outside the recognized set", func() {
			_, err := svc.UpdateRole(ctx, employee.ID, domain.Role("owner"))
			Expect(domainCode(err)).To(Equal("VALIDATION_FAILED"))
		})

		It("returns not found for an unknown user", func() {
			_, err := svc.UpdateRole(ctx, "no-such-user", domain.RoleSupport)
			Expect(domainCode(err)).To(Equal("NOT_FOUND"))
		})
	})

	Describe("UpdateProfile", func() {
		It("changes name and email", func() {
			updated, err := svc.UpdateProfile(ctx, employee.ID, "Dana S.", "dana.s@corp.example")

			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Name).To(Equal("Dana S."))
			Expect(updated.Email).To(Equal("dana.s@corp.example"))
		})

		It("requires both fields", func() {
			_, err := svc.UpdateProfile(ctx, employee.ID, "Dana S.", "  ")
			Expect(domainCode(err)).To(Equal("VALIDATION_FAILED"))
		})
	})

	Describe("ChangePassword", func() {
		It("replaces the stored hash when the current password checks out", func() {
			err := svc.ChangePassword(ctx, employee.ID, "s3cret", "n3w-pass", "n3w-pass")
			Expect(err).NotTo(HaveOccurred())

			stored, err := userRepo.GetByID(ctx, employee.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(auth.ComparePassword(stored.PasswordHash, "n3w-pass")).To(Succeed())
		})

		It("rejects a wrong current password", func() {
			err := svc.ChangePassword(ctx, employee.ID, "wrong", "n3w-pass", "n3w-pass")
			Expect(domainCode(err)).To(Equal("UNAUTHORIZED"))
		})

		It("rejects a mismatched confirmation", func() {
			err := svc.ChangePassword(ctx, employee.ID, "s3cret", "n3w-pass", "different")
			Expect(domainCode(err)).To(Equal("VALIDATION_FAILED"))
		})

		It("requires every field", func() {
			err := svc.ChangePassword(ctx, employee.ID, "", "n3w-pass", "n3w-pass")
			Expect(domainCode(err)).To(Equal("VALIDATION_FAILED"))
		})
	})

	Describe("SetProfileImage", func() {
		It("stores the image reference", func() {
			updated, err := svc.SetProfileImage(ctx, employee.ID, "/profile-images/abc.png")

			Expect(err).NotTo(HaveOccurred())
			Expect(updated.ProfileImage).To(HaveValue(Equal("/profile-images/abc.png")))
		})
	})
})
