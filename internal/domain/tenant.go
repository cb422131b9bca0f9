package domain

import "context"

// DefaultOrg is the organization used when neither the context nor the
// configuration names one.
const DefaultOrg = "FLAWLESS"

type orgContextKey struct{}

// WithOrg returns a copy of ctx scoped to the given organization.
func WithOrg(ctx context.Context, org string) context.Context {
	return context.WithValue(ctx, orgContextKey{}, org)
}

// OrgFromContext returns the organization carried by ctx, if any.
// An empty organization counts as unset.
func OrgFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(orgContextKey{}).(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
