package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/workforce-service/internal/domain"
	"github.com/spec-kit/workforce-service/internal/repository"
	apperrors "github.com/spec-kit/workforce-service/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// WorkerIDKey is the Locals key carrying the caller's ID for request logs.
const WorkerIDKey = "worker_id"

// Principal represents the authenticated caller.
type Principal struct {
	Worker *domain.Worker
}

// Role returns the caller's role.
func (p *Principal) Role() domain.Role {
	if p == nil || p.Worker == nil {
		return ""
	}
	return p.Worker.Role
}

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	tokens  *TokenManager
	workers repository.WorkerRepository
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, workers repository.WorkerRepository) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, workers: workers}
}

// Handle enforces authentication for protected routes. The role is always
// read from the stored worker, so a demotion takes effect before the token
// expires.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	worker, err := m.workers.GetByID(c.UserContext(), claims.SubjectID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NewUnauthorized("worker not found")
		}
		return apperrors.MapError(err)
	}
	if !worker.Active {
		return apperrors.NewUnauthorized("worker inactive")
	}

	c.Locals(principalKey, &Principal{Worker: worker})
	c.Locals(WorkerIDKey, worker.ID)
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok && principal.Worker != nil
}
