package middleware

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"hr-portal/internal/domain"
	middlewareerrors "hr-portal/internal/middleware/errors"
	"hr-portal/internal/shared/apperror"
	"hr-portal/internal/shared/contextutil"
	"hr-portal/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const PrincipalKey = "principal"

// PrincipalSource refreshes role and department from the roster so that a
// role change takes effect before the token expires.
type PrincipalSource interface {
	ResolvePrincipal(ctx context.Context, userID string) (domain.Principal, error)
}

func abortWith(c *gin.Context, err *apperror.AppError) {
	response.Error(c, err.HTTPStatus, err.Code, err.Message, err.Details)
	c.Abort()
}

// AuthMiddleware verifies the bearer token (or access_token cookie) issued by
// the identity provider and stores the resulting principal. source may be nil.
func AuthMiddleware(secret string, source PrincipalSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !found {
			tokenString = ""
		}
		if tokenString == "" {
			if cookie, err := c.Cookie("access_token"); err == nil {
				tokenString = cookie
			}
		}
		if tokenString == "" {
			abortWith(c, middlewareerrors.ErrTokenNotFound)
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			if errors.Is(err, jwt.ErrTokenExpired) {
				abortWith(c, middlewareerrors.ErrTokenExpired)
				return
			}
			abortWith(c, middlewareerrors.ErrInvalidToken)
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			abortWith(c, middlewareerrors.ErrInvalidToken)
			return
		}
		userID, _ := claims["user_id"].(string)
		if userID == "" {
			abortWith(c, middlewareerrors.ErrInvalidToken.WithDetails("user_id not found in token"))
			return
		}
		roleClaim, _ := claims["role"].(string)
		department, _ := claims["department"].(string)
		role, _ := domain.ParseRole(roleClaim)

		p := domain.Principal{ID: userID, Role: role, Department: department}
		if source != nil {
			p, err = source.ResolvePrincipal(c.Request.Context(), userID)
			if err != nil {
				if apperror.HasCode(err, apperror.CodeNotFound) {
					abortWith(c, middlewareerrors.ErrUnknownAccount)
					return
				}
				httpErr := apperror.ToHTTP(err)
				response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
				c.Abort()
				return
			}
		}
		if p.Role == "" {
			abortWith(c, middlewareerrors.ErrInvalidToken.WithDetails("unknown role"))
			return
		}

		c.Set(PrincipalKey, p)
		c.Set("user_id_validated", p.ID)
		c.Set("role", string(p.Role))
		c.Request = c.Request.WithContext(contextutil.WithPrincipal(c.Request.Context(), p))

		c.Next()
	}
}

// CurrentPrincipal returns the principal stored by AuthMiddleware.
func CurrentPrincipal(c *gin.Context) (domain.Principal, bool) {
	if v, ok := c.Get(PrincipalKey); ok {
		if p, ok := v.(domain.Principal); ok {
			return p, true
		}
	}
	return contextutil.GetPrincipal(c.Request.Context())
}
