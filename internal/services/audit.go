package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/otcheredev/clinic-management/internal/metrics"
	"github.com/otcheredev/clinic-management/internal/models"
	"github.com/otcheredev/clinic-management/internal/policy"
	"github.com/rs/zerolog/log"
)

type clientIPKey struct{}

// WithClientIP attaches the request's client address to the context so audit
// entries can record where a decision came from. The auth middleware calls
// this after RealIP has resolved the address.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}

func clientIP(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey{}).(string)
	return ip
}

// auditor records the outcome of guarded operations. Audit failures are
// logged, never surfaced: the guarded operation's result stands on its own.
type auditor struct {
	repo AuditStore
}

func (a *auditor) record(ctx context.Context, caller policy.Caller, action string, resource policy.ResourceType, resourceID uuid.UUID, decision policy.Decision) {
	entry := &models.AuditLog{
		UserID:       caller.UserID,
		Action:       action,
		ResourceType: string(resource),
		IPAddress:    clientIP(ctx),
		Status:       "success",
	}
	if caller.ClinicID != uuid.Nil {
		clinicID := caller.ClinicID
		entry.ClinicID = &clinicID
	}
	if resourceID != uuid.Nil {
		entry.ResourceID = resourceID.String()
	}
	if !decision.Allowed {
		entry.Status = "denied"
		entry.DenyReason = string(decision.Reason)
	}

	verb := action
	if i := strings.LastIndex(action, "."); i >= 0 {
		verb = action[i+1:]
	}
	metrics.RecordDecision(string(resource), verb, decision.Allowed)

	if err := a.repo.Create(ctx, entry); err != nil {
		log.Warn().Err(err).
			Str("action", action).
			Str("resource_type", string(resource)).
			Msg("Failed to write audit log")
	}
}
