package roster

import (
	"hr-portal/internal/middleware"
	"hr-portal/internal/rbac"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes expects r to already run AuthMiddleware.
func RegisterRoutes(r *gin.RouterGroup, handler *Handler, rbacService rbac.Service) {
	r.GET("/me", handler.Me)

	admin := r.Group("/admin")
	{
		admin.GET("/stats", middleware.RBACAuthorize(rbacService, rbac.ResourceRoster, rbac.ActionRead), handler.SystemStats)
		admin.GET("/users", middleware.RBACAuthorize(rbacService, rbac.ResourceRoster, rbac.ActionRead), handler.ListUsers)
		admin.PUT("/users/:id", middleware.RBACAuthorize(rbacService, rbac.ResourceRoster, rbac.ActionManage), handler.UpdateUser)
		admin.DELETE("/users/:id", middleware.RBACAuthorize(rbacService, rbac.ResourceRoster, rbac.ActionManage), handler.DeleteUser)
		admin.POST("/users/:id/credit-salary", middleware.RBACAuthorize(rbacService, rbac.ResourceRoster, rbac.ActionManage), handler.CreditSalary)
	}
}
