package ctxlogger

import (
	"context"
	"sync/atomic"

	"github.com/bwmarrin/snowflake"
	"github.com/portpak/portpak/pkg/tenantctx"
	"go.uber.org/zap"
)

var serviceName atomic.Pointer[string]

// SetServiceName configures the service name added to every log entry.
func SetServiceName(name string) {
	serviceName.Store(&name)
}

// FromContext returns a logger enriched with tenant metadata from context.
func FromContext(ctx context.Context) *zap.Logger {
	return WithContext(ctx, zap.L())
}

// WithContext enriches the provided logger using metadata in the context.
func WithContext(ctx context.Context, base *zap.Logger) *zap.Logger {
	if ctx == nil {
		return base
	}

	fields := make([]zap.Field, 0, 3)

	name := "unknown"
	if namePtr := serviceName.Load(); namePtr != nil {
		name = *namePtr
	}
	fields = append(fields, zap.String("service", name))

	if companyID, ok := tenantctx.CompanyID(ctx); ok && companyID != snowflake.ID(0) {
		fields = append(fields, zap.String("company_id", companyID.String()))
	}

	return base.With(fields...)
}
