package service

import (
	"context"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/domain"
)

// fakeRevoker tracks revoked token ids in memory.
type fakeRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func newFakeRevoker() *fakeRevoker {
	return &fakeRevoker{revoked: make(map[string]time.Time)}
}

func (r *fakeRevoker) Revoke(_ context.Context, tokenID string, until time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revoked[tokenID] = until
	return nil
}

func (r *fakeRevoker) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.revoked[tokenID]
	return ok, nil
}

var _ = Describe("AuthService", func() {
	var (
		ctx      context.Context
		userRepo *mockUserRepo
		revoker  *fakeRevoker
		svc      *AuthService
	)

	authConfig := config.AuthConfig{
		JWTSecret:       "test-secret",
		SessionTTLHours: 24,
		BcryptCost:      4,
		CookieName:      "token",
	}

	BeforeEach(func() {
		ctx = context.Background()
		userRepo = newMockUserRepo()
		revoker = newFakeRevoker()
		svc = NewAuthService(authConfig, AuthDependencies{UserRepo: userRepo, Revoker: revoker})
	})

	Describe("CreateUser", func() {
		It("registers a user and never stores the plain password", func() {
			user, err := svc.CreateUser(ctx, "Dana Soto", "dana@corp.example", "s3cret", domain.RoleEmployee)

			Expect(err).NotTo(HaveOccurred())
			Expect(user.ID).NotTo(BeEmpty())
			Expect(user.PasswordHash).NotTo(BeEmpty())
			Expect(user.PasswordHash).NotTo(Equal("s3cret"))
		})

		It("defaults the role to employee", func() {
			user, err := svc.CreateUser(ctx, "Dana Soto", "dana@corp.example", "s3cret", "")

			Expect(err).NotTo(HaveOccurred())
			Expect(user.Role).To(Equal(domain.RoleEmployee))
		})

		It("rejects an unrecognized role", func() {
			_, err := svc.CreateUser(ctx, "Dana Soto", "dana@corp.example", "s3cret", domain.Role("manager"))
			Expect(domainCode(err)).To(Equal("VALIDATION_FAILED"))
		})

		It("conflicts on a duplicate email", func() {
			_, err := svc.CreateUser(ctx, "Dana Soto", "dana@corp.example", "s3cret", domain.RoleEmployee)
			Expect(err).NotTo(HaveOccurred())

			_, err = svc.CreateUser(ctx, "Other Dana", "dana@corp.example", "s3cret", domain.RoleEmployee)
			Expect(domainCode(err)).To(Equal("CONFLICT"))
		})
	})

	Describe("Login", func() {
		BeforeEach(func() {
			_, err := svc.CreateUser(ctx, "Dana Soto", "dana@corp.example", "s3cret", domain.RoleEmployee)
			Expect(err).NotTo(HaveOccurred())
		})

		It("issues a session token carrying the user's id and role", func() {
			user, token, expiresAt, err := svc.Login(ctx, "dana@corp.example", "s3cret")

			Expect(err).NotTo(HaveOccurred())
			Expect(token).NotTo(BeEmpty())
			Expect(expiresAt).To(BeTemporally(">", time.Now()))

			claims, err := svc.TokenManager().ParseToken(token)
			Expect(err).NotTo(HaveOccurred())
			Expect(claims.UserID).To(Equal(user.ID))
			Expect(claims.Role).To(Equal(domain.RoleEmployee))
			Expect(claims.ID).NotTo(BeEmpty())
		})

		It("reports an unknown email as not found", func() {
			_, _, _, err := svc.Login(ctx, "nobody@corp.example", "s3cret")
			Expect(domainCode(err)).To(Equal("NOT_FOUND"))
		})

		It("rejects a wrong password as unauthorized", func() {
			_, _, _, err := svc.Login(ctx, "dana@corp.example", "wrong")
			Expect(domainCode(err)).To(Equal("UNAUTHORIZED"))
		})

		It("requires both email and password", func() {
			_, _, _, err := svc.Login(ctx, "dana@corp.example", "")
			Expect(domainCode(err)).To(Equal("VALIDATION_FAILED"))
		})
	})

	Describe("Logout", func() {
		It("revokes the presented token's session id", func() {
			_, err := svc.CreateUser(ctx, "Dana Soto", "dana@corp.example", "s3cret", domain.RoleEmployee)
			Expect(err).NotTo(HaveOccurred())
			_, token, _, err := svc.Login(ctx, "dana@corp.example", "s3cret")
			Expect(err).NotTo(HaveOccurred())

			svc.Logout(ctx, token)

			claims, err := svc.TokenManager().ParseToken(token)
			Expect(err).NotTo(HaveOccurred())
			revokedNow, err := revoker.IsRevoked(ctx, claims.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(revokedNow).To(BeTrue())
		})

		It("ignores garbage tokens", func() {
			svc.Logout(ctx, "not-a-token")
			Expect(revoker.revoked).To(BeEmpty())
		})
	})

	Describe("EnsureAdmin", func() {
		It("creates the bootstrap admin once", func() {
			seed := config.SeedConfig{
				AdminName:     "Root Admin",
				AdminEmail:    "admin@corp.example",
				AdminPassword: "bootstrap",
			}

			created, err := svc.EnsureAdmin(ctx, seed)
			Expect(err).NotTo(HaveOccurred())
			Expect(created.Role).To(Equal(domain.RoleAdmin))

			again, err := svc.EnsureAdmin(ctx, seed)
			Expect(err).NotTo(HaveOccurred())
			Expect(again.ID).To(Equal(created.ID))
			Expect(userRepo.users).To(HaveLen(1))
		})

		It("does nothing without seed credentials", func() {
			user, err := svc.EnsureAdmin(ctx, config.SeedConfig{})

			Expect(err).NotTo(HaveOccurred())
			Expect(user).To(BeNil())
			Expect(userRepo.users).To(BeEmpty())
		})
	})
})
