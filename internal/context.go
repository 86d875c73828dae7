package internal

import (
	"context"
	"time"

	"github.com/maviontech/project-management/internal/core/datamodel/tenant"
)

// Principal is the request-scoped identity resolved from the session: the
// authenticated user, their roster member id, and the tenant database config
// resolved at login. It is passed explicitly through every call chain; there
// is no process-wide "current tenant".
type Principal struct {
	UserID   int64         `json:"user_id"`
	MemberID int64         `json:"member_id"`
	Email    string        `json:"email"`
	FullName string        `json:"full_name"`
	Tenant   tenant.Config `json:"tenant"`
}

type ctxKey string

const principalKey ctxKey = "principal"

func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	if ctx == nil {
		return nil, false
	}
	p, ok := ctx.Value(principalKey).(*Principal)
	return p, ok && p != nil
}

func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if
// duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
