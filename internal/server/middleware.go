package server

import (
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/portpak/portpak/internal/config"
	"github.com/portpak/portpak/pkg/telemetry"
	"github.com/portpak/portpak/pkg/tenantctx"
	"go.uber.org/zap"
)

// HeaderCompany carries the acting company on every request. Upstream
// auth terminates before this service, so the header is trusted here.
const HeaderCompany = "X-Company-ID"

// CompanyContextMiddleware resolves the tenant for the request. The
// header wins; the configured default company covers single-tenant
// installs that never send one.
func CompanyContextMiddleware(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(HeaderCompany))

		var companyID snowflake.ID
		if raw != "" {
			parsed, err := snowflake.ParseString(raw)
			if err != nil {
				AbortWithError(c, ErrInvalidRequest)
				return
			}
			companyID = parsed
		} else if cfg.DefaultCompanyID != 0 {
			companyID = snowflake.ParseInt64(cfg.DefaultCompanyID)
		}

		if companyID != 0 {
			ctx := tenantctx.WithCompanyID(c.Request.Context(), companyID)
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
}

// RequestLogMiddleware emits one structured log line and one metrics
// observation per request.
func RequestLogMiddleware(log *zap.Logger, metrics *telemetry.Metrics) gin.HandlerFunc {
	requestLog := log.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		status := c.Writer.Status()

		company := "unknown"
		if id, ok := tenantctx.CompanyID(c.Request.Context()); ok {
			company = id.String()
		}

		metrics.ObserveAPIRequest(c.Request.Method+" "+path, strconv.Itoa(status), company, elapsed)

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("duration", elapsed),
			zap.String("company_id", company),
		}
		if last := c.Errors.Last(); last != nil {
			fields = append(fields, zap.Error(last.Err))
		}

		switch {
		case status >= 500:
			requestLog.Error("request", fields...)
		case status >= 400:
			requestLog.Warn("request", fields...)
		default:
			requestLog.Info("request", fields...)
		}
	}
}
