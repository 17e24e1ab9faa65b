// Package service implements the admin account-management operations that
// sit behind the Admin API Guard. Every mutation is a single-row update
// keyed by primary id (last-writer-wins between concurrent operators) and is
// preceded by the self-action guard: an administrator can never block,
// delete, or demote their own account.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"careergate/internal/account"
	"careergate/internal/account/store"
	id "careergate/pkg/domain"
	dErrors "careergate/pkg/domain-errors"
	audit "careergate/pkg/platform/audit"
	"careergate/pkg/platform/sentinel"
	"careergate/pkg/requestcontext"
)

// UserPage is one page of the admin user listing.
type UserPage struct {
	Users  []*account.Account
	Total  int
	Limit  int
	Offset int
}

// UpdateParams patches mutable account fields. Nil fields are untouched.
type UpdateParams struct {
	Email    *string
	FullName *string
	Role     *account.Role
}

// Service wires the account store and the audit trail together.
type Service struct {
	accounts store.Store
	auditor  audit.Auditor
	logger   *slog.Logger
}

func New(accounts store.Store, auditor audit.Auditor, logger *slog.Logger) *Service {
	return &Service{
		accounts: accounts,
		auditor:  auditor,
		logger:   logger,
	}
}

const defaultPageSize = 50

// ListUsers returns a page of accounts plus the total count.
func (s *Service) ListUsers(ctx context.Context, limit, offset int) (*UserPage, error) {
	if limit <= 0 || limit > 200 {
		limit = defaultPageSize
	}
	if offset < 0 {
		offset = 0
	}

	users, total, err := s.accounts.List(ctx, store.ListParams{Limit: limit, Offset: offset})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list users")
	}
	return &UserPage{Users: users, Total: total, Limit: limit, Offset: offset}, nil
}

// GetUser fetches one account by id.
func (s *Service) GetUser(ctx context.Context, userID id.UserID) (*account.Account, error) {
	acct, err := s.accounts.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "User not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to fetch user")
	}
	return acct, nil
}

// BlockUser flags the target account as blocked. Rejects before any store
// write when the target is the acting admin.
func (s *Service) BlockUser(ctx context.Context, actor, target id.UserID) error {
	if actor == target {
		return dErrors.New(dErrors.CodeBadRequest, "Cannot block your own admin account")
	}

	acct, err := s.GetUser(ctx, target)
	if err != nil {
		return err
	}

	now := requestcontext.Now(ctx)
	blockedAt := now
	if err := s.accounts.SetBlocked(ctx, target, &blockedAt, now); err != nil {
		return s.mutationError(err, "failed to block user")
	}

	s.logAudit(ctx, audit.EventUserBlocked, actor, acct)
	return nil
}

// UnblockUser clears the blocked flag on the target account.
func (s *Service) UnblockUser(ctx context.Context, actor, target id.UserID) error {
	acct, err := s.GetUser(ctx, target)
	if err != nil {
		return err
	}

	now := requestcontext.Now(ctx)
	if err := s.accounts.SetBlocked(ctx, target, nil, now); err != nil {
		return s.mutationError(err, "failed to unblock user")
	}

	s.logAudit(ctx, audit.EventUserUnblocked, actor, acct)
	return nil
}

// UpdateUser patches profile fields and/or the role. A role change that
// would demote the acting admin is rejected before any write.
func (s *Service) UpdateUser(ctx context.Context, actor, target id.UserID, params UpdateParams) (*account.Account, error) {
	if params.Role != nil {
		if !params.Role.Valid() {
			return nil, dErrors.New(dErrors.CodeInvalidInput, "Invalid role")
		}
		if actor == target && *params.Role != account.RoleAdmin {
			return nil, dErrors.New(dErrors.CodeBadRequest, "Cannot change the role of your own admin account")
		}
	}
	if params.Email != nil && *params.Email == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "Email must not be empty")
	}

	acct, err := s.GetUser(ctx, target)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	if params.Email != nil || params.FullName != nil {
		if err := s.accounts.UpdateProfile(ctx, target, params.Email, params.FullName, now); err != nil {
			return nil, s.mutationError(err, "failed to update user")
		}
		s.logAudit(ctx, audit.EventUserUpdated, actor, acct)
	}
	if params.Role != nil && *params.Role != acct.Role {
		if err := s.accounts.SetRole(ctx, target, *params.Role, now); err != nil {
			return nil, s.mutationError(err, "failed to update user role")
		}
		s.logAudit(ctx, audit.EventUserRoleChanged, actor, acct,
			fmt.Sprintf("role changed from %s to %s", acct.Role, *params.Role))
	}

	return s.GetUser(ctx, target)
}

// DeleteUser removes the target account. Rejects before any store write when
// the target is the acting admin.
func (s *Service) DeleteUser(ctx context.Context, actor, target id.UserID) error {
	if actor == target {
		return dErrors.New(dErrors.CodeBadRequest, "Cannot delete your own admin account")
	}

	// Capture the account before deletion to enrich the audit event.
	acct, err := s.GetUser(ctx, target)
	if err != nil {
		return err
	}

	if err := s.accounts.Delete(ctx, target); err != nil {
		return s.mutationError(err, "failed to delete user")
	}

	s.logAudit(ctx, audit.EventUserDeleted, actor, acct)
	return nil
}

func (s *Service) mutationError(err error, message string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		// The row vanished between the read and the write; report it the
		// same way as a missing target.
		return dErrors.New(dErrors.CodeNotFound, "User not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, message)
}

func (s *Service) logAudit(ctx context.Context, action audit.AuditEvent, actor id.UserID, acct *account.Account, reason ...string) {
	event := audit.Event{
		Action:    string(action),
		UserID:    acct.ID,
		Email:     acct.Email,
		ActorID:   actor.String(),
		RequestID: requestcontext.RequestID(ctx),
	}
	if len(reason) > 0 {
		event.Reason = reason[0]
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event",
			"error", err,
			"action", action,
			"user_id", acct.ID.String(),
		)
	}
}
