package middleware

import (
	"hr-portal/internal/shared/contextutil"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ContextLogger attaches a request-scoped logger. It runs after RequestID and
// AuthMiddleware so both ids are known.
func ContextLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		fields := []zap.Field{zap.String("request_id", contextutil.GetRequestID(ctx))}
		if p, ok := CurrentPrincipal(c); ok {
			fields = append(fields,
				zap.String("user_id", p.ID),
				zap.String("role", string(p.Role)),
			)
		}

		// Logger ini yang akan digunakan di sepanjang request ini
		reqLogger := logger.With(fields...)
		c.Request = c.Request.WithContext(contextutil.WithLogger(ctx, reqLogger))

		c.Next()
	}
}
