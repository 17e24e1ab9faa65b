// Package handler exposes the admin user-management API. Every route
// registered by Register sits behind the admin guard; the login verification
// endpoint is mounted separately because it runs before the caller has
// proven they are an admin.
package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/mssola/useragent"

	"careergate/internal/account"
	"careergate/internal/account/service"
	"careergate/internal/admin/guard"
	"careergate/internal/gate"
	"careergate/internal/identity"
	id "careergate/pkg/domain"
	dErrors "careergate/pkg/domain-errors"
	"careergate/pkg/platform/audit"
	"careergate/pkg/platform/httputil"
	"careergate/pkg/requestcontext"
)

type Handler struct {
	users    *service.Service
	resolver *identity.Resolver
	roles    gate.RoleLookup
	auditor  audit.Auditor
	logger   *slog.Logger
}

func New(users *service.Service, resolver *identity.Resolver, roles gate.RoleLookup, auditor audit.Auditor, logger *slog.Logger) *Handler {
	return &Handler{
		users:    users,
		resolver: resolver,
		roles:    roles,
		auditor:  auditor,
		logger:   logger,
	}
}

// Register mounts the user-management routes. The router passed in must
// already carry the admin guard middleware.
func (h *Handler) Register(r chi.Router) {
	r.Get("/users", h.handleListUsers)
	r.Get("/users/{userID}", h.handleGetUser)
	r.Patch("/users/{userID}", h.handleUpdateUser)
	r.Post("/users/{userID}/block", h.handleBlockUser)
	r.Post("/users/{userID}/unblock", h.handleUnblockUser)
	r.Delete("/users/{userID}", h.handleDeleteUser)
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	page, err := h.users.ListUsers(r.Context(), limit, offset)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toUsersListResponse(page))
}

func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	target, err := targetID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	acct, err := h.users.GetUser(r.Context(), target)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toUserResponse(acct))
}

func (h *Handler) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	actor, target, ok := h.actorAndTarget(w, r)
	if !ok {
		return
	}
	req, ok := httputil.Decode[UpdateUserRequest](w, r, h.logger)
	if !ok {
		return
	}

	params := service.UpdateParams{Email: req.Email, FullName: req.FullName}
	if req.Role != nil {
		role := account.Role(*req.Role)
		params.Role = &role
	}

	acct, err := h.users.UpdateUser(r.Context(), actor, target, params)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toUserResponse(acct))
}

func (h *Handler) handleBlockUser(w http.ResponseWriter, r *http.Request) {
	actor, target, ok := h.actorAndTarget(w, r)
	if !ok {
		return
	}
	if err := h.users.BlockUser(r.Context(), actor, target); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleUnblockUser(w http.ResponseWriter, r *http.Request) {
	actor, target, ok := h.actorAndTarget(w, r)
	if !ok {
		return
	}
	if err := h.users.UnblockUser(r.Context(), actor, target); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	actor, target, ok := h.actorAndTarget(w, r)
	if !ok {
		return
	}
	if err := h.users.DeleteUser(r.Context(), actor, target); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleVerifyLogin confirms the caller who just completed the admin login
// flow actually holds the admin role. Non-admins get signed out so a stolen
// regular-user session cannot keep retrying the admin surface.
func (h *Handler) HandleVerifyLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ident, _ := h.resolver.Resolve(r)
	if ident == nil {
		h.writeError(w, r, dErrors.New(dErrors.CodeUnauthorized, "Unauthorized"))
		return
	}

	acct, err := h.roles.FindByID(ctx, ident.ID)
	if err != nil || acct.Role != account.RoleAdmin {
		if err != nil {
			h.logger.ErrorContext(ctx, "role lookup failed during admin login verification",
				"error", err,
				"user_id", ident.ID.String(),
			)
		}
		h.resolver.SignOut(r)
		h.auditLoginDenied(r, ident)
		h.writeError(w, r, dErrors.New(dErrors.CodeForbidden, "Forbidden"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, VerifyLoginResponse{
		ID:    acct.ID.String(),
		Email: acct.Email,
		Role:  acct.Role.String(),
	})
}

func (h *Handler) auditLoginDenied(r *http.Request, ident *identity.Identity) {
	ctx := r.Context()
	ua := useragent.New(r.UserAgent())
	browser, version := ua.Browser()
	event := audit.Event{
		UserID:    ident.ID,
		Email:     ident.Email,
		Action:    string(audit.EventAdminLoginDenied),
		RequestID: requestcontext.RequestID(ctx),
		IP:        requestcontext.ClientIP(ctx),
		Browser:   strings.TrimSpace(browser + " " + version),
		OS:        ua.OS(),
	}
	if err := h.auditor.Emit(ctx, event); err != nil {
		h.logger.WarnContext(ctx, "failed to emit audit event",
			"error", err,
			"action", event.Action,
		)
	}
}

// actorAndTarget extracts the acting admin from the guard context and the
// target user id from the URL.
func (h *Handler) actorAndTarget(w http.ResponseWriter, r *http.Request) (actor, target id.UserID, ok bool) {
	admin, found := guard.AdminFromContext(r.Context())
	if !found {
		h.writeError(w, r, dErrors.New(dErrors.CodeUnauthorized, "Unauthorized"))
		return actor, target, false
	}

	target, err := targetID(r)
	if err != nil {
		h.writeError(w, r, err)
		return actor, target, false
	}
	return admin.ID, target, true
}

func targetID(r *http.Request) (id.UserID, error) {
	return id.ParseUserID(chi.URLParam(r, "userID"))
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		ctx := r.Context()
		h.logger.ErrorContext(ctx, "admin API request failed",
			"error", err,
			"path", r.URL.Path,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	httputil.WriteError(w, err)
}
