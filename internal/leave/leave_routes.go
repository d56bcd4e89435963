package leave

import (
	"hr-portal/internal/middleware"
	"hr-portal/internal/rbac"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes expects r to already run AuthMiddleware.
func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
	idempotency gin.HandlerFunc,
) {
	leaves := r.Group("/leaves")
	{
		leaves.POST("", middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionCreate), idempotency, handler.Apply)
		leaves.GET("/my", middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionRead), handler.ListMine)
		leaves.GET("/team", middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionReview), handler.ListTeam)
		leaves.GET("/stats", middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionRead), handler.Stats)
		leaves.GET("/:id", middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionRead), handler.GetByID)
		leaves.PATCH("/:id/cancel", middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionCancel), handler.Cancel)
		leaves.PUT("/:id", middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionReview), handler.Review)
		leaves.PATCH("/:id/approve", middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionReview), handler.Approve)
		leaves.PATCH("/:id/reject", middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionReview), handler.Reject)
	}
}
