package tenantctx

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type keyType string

const (
	// CompanyIDKey carries the trusted tenant identifier resolved by the
	// request middleware.
	CompanyIDKey keyType = "company_id"
)

// WithCompanyID returns a context annotated with the tenant identifier.
func WithCompanyID(ctx context.Context, id snowflake.ID) context.Context {
	return context.WithValue(ctx, CompanyIDKey, id)
}

// CompanyID extracts the tenant identifier from the context.
func CompanyID(ctx context.Context) (snowflake.ID, bool) {
	id, ok := ctx.Value(CompanyIDKey).(snowflake.ID)
	return id, ok
}
