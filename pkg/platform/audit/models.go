package audit

import (
	"context"
	"time"

	id "careergate/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose. Categories
// drive retention and routing on the consumer side.
type EventCategory string

const (
	// CategoryCompliance covers events with legal/regulatory significance:
	// account mutations performed by administrators.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers events relevant to security monitoring:
	// denied admin access, failed admin-login verification.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine events useful for debugging.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from the gate and the admin service to capture key
// actions. Keep it transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	UserID    id.UserID // the account affected
	Action    string
	Reason    string
	Email     string // affected account's email when available
	RequestID string // correlation ID from the HTTP request context
	// ActorID tracks the administrator who performed the action when
	// different from UserID.
	ActorID string
	// Client forensics, populated for security events.
	IP      string
	Browser string
	OS      string
}

type AuditEvent string

const (
	// Admin account-management events
	EventUserBlocked     AuditEvent = "user_blocked"
	EventUserUnblocked   AuditEvent = "user_unblocked"
	EventUserRoleChanged AuditEvent = "user_role_changed"
	EventUserUpdated     AuditEvent = "user_updated"
	EventUserDeleted     AuditEvent = "user_deleted"

	// Gate events
	EventAdminAccessDenied AuditEvent = "admin_access_denied"
	EventAdminLoginDenied  AuditEvent = "admin_login_denied"
	EventBlockedRedirect   AuditEvent = "blocked_redirect"

	// Session events
	EventSessionRefreshed AuditEvent = "session_refreshed"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventUserBlocked:     CategoryCompliance,
	EventUserUnblocked:   CategoryCompliance,
	EventUserRoleChanged: CategoryCompliance,
	EventUserUpdated:     CategoryCompliance,
	EventUserDeleted:     CategoryCompliance,

	EventAdminAccessDenied: CategorySecurity,
	EventAdminLoginDenied:  CategorySecurity,
	EventBlockedRedirect:   CategorySecurity,

	EventSessionRefreshed: CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Auditor is the emission interface services depend on. Implementations:
// publisher.Publisher (store-backed) and kafka.Publisher (broker-backed).
type Auditor interface {
	Emit(ctx context.Context, event Event) error
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByUser(ctx context.Context, userID id.UserID) ([]Event, error)
}
