package service

import (
	"context"
	"time"

	"github.com/spec-kit/workforce-service/internal/auth"
	"github.com/spec-kit/workforce-service/internal/config"
	"github.com/spec-kit/workforce-service/internal/domain"
	"github.com/spec-kit/workforce-service/internal/repository"
	apperrors "github.com/spec-kit/workforce-service/pkg/util/errorutil"
)

// AuthService coordinates login and credential changes.
type AuthService struct {
	workers    repository.WorkerRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	WorkerRepo repository.WorkerRepository
}

// LoginResult is an issued session.
type LoginResult struct {
	Worker    *domain.Worker
	Token     string
	ExpiresAt time.Time
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		workers:    deps.WorkerRepo,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// Login authenticates a worker and returns a role-bearing token. Unknown
// emails and wrong passwords produce the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	worker, err := s.workers.GetByEmail(ctx, email)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(worker.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	if !worker.Active {
		return nil, apperrors.NewUnauthorized("worker inactive")
	}
	token, exp, err := s.tokenMgr.GenerateToken(worker.ID, worker.Role)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &LoginResult{Worker: worker, Token: token, ExpiresAt: exp}, nil
}

// ChangePassword verifies current password before updating to new hash.
func (s *AuthService) ChangePassword(ctx context.Context, worker *domain.Worker, currentPassword, newPassword string) error {
	if worker == nil {
		return apperrors.NewUnauthorized("worker required")
	}
	stored, err := s.workers.GetByID(ctx, worker.ID)
	if err != nil {
		return apperrors.NotFoundOr(err, "worker", nil)
	}
	if err := auth.ComparePassword(stored.PasswordHash, currentPassword); err != nil {
		return apperrors.NewUnauthorized("invalid credentials")
	}
	if currentPassword == newPassword {
		return apperrors.NewValidationError("new password must differ from the current one", nil)
	}
	if err := auth.CheckPasswordPolicy(newPassword); err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	stored.PasswordHash = hash
	return apperrors.MapError(s.workers.Update(ctx, stored))
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
