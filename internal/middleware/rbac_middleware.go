package middleware

import (
	"hr-portal/internal/domain"
	middlewareerrors "hr-portal/internal/middleware/errors"
	"hr-portal/internal/shared/apperror"
	"hr-portal/internal/shared/response"

	"github.com/gin-gonic/gin"
)

// RBACService adalah interface lokal.
// Apapun package yang punya method Enforce(domain.EnforceRequest) bisa masuk ke sini.
type RBACService interface {
	Enforce(req domain.EnforceRequest) (bool, error)
}

func RBACAuthorize(service RBACService, resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := CurrentPrincipal(c)
		if !ok {
			abortWith(c, middlewareerrors.ErrMissingPrincipal)
			return
		}

		allowed, err := service.Enforce(domain.EnforceRequest{
			Role:     string(p.Role),
			Resource: resource,
			Action:   action,
		})
		if err != nil {
			httpErr := apperror.ToHTTP(err)
			response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, nil)
			c.Abort()
			return
		}

		if !allowed {
			abortWith(c, middlewareerrors.ErrRoleNotAllowed.WithDetails(map[string]string{
				"required": resource + ":" + action,
			}))
			return
		}
		c.Next()
	}
}
