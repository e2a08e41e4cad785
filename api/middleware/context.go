package middleware

import "context"

type contextKey string

const (
	ctxSubjectID  contextKey = "subject_id"
	ctxCustomerID contextKey = "customer_id"
	ctxBusinessID contextKey = "business_id"
	ctxBranchID   contextKey = "branch_id"
	ctxRole       contextKey = "actor_role"
)

func stringFromContext(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

func SubjectIDFromContext(ctx context.Context) string {
	return stringFromContext(ctx, ctxSubjectID)
}

// CustomerIDFromContext is empty for staff tokens.
func CustomerIDFromContext(ctx context.Context) string {
	return stringFromContext(ctx, ctxCustomerID)
}

func BusinessIDFromContext(ctx context.Context) string {
	return stringFromContext(ctx, ctxBusinessID)
}

func BranchIDFromContext(ctx context.Context) string {
	return stringFromContext(ctx, ctxBranchID)
}

func RoleFromContext(ctx context.Context) string {
	return stringFromContext(ctx, ctxRole)
}

// Identity holds the claims a request was authenticated with.
type Identity struct {
	SubjectID  string
	CustomerID string
	BusinessID string
	BranchID   string
	Role       string
}

// WithIdentity seeds the context the way Auth does. Handlers under test use it directly.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxSubjectID, id.SubjectID)
	ctx = context.WithValue(ctx, ctxBusinessID, id.BusinessID)
	ctx = context.WithValue(ctx, ctxRole, id.Role)
	if id.CustomerID != "" {
		ctx = context.WithValue(ctx, ctxCustomerID, id.CustomerID)
	}
	if id.BranchID != "" {
		ctx = context.WithValue(ctx, ctxBranchID, id.BranchID)
	}
	return ctx
}
