package reimbursement

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
	reimbursements := r.Group("/reimbursements")
	{
		reimbursements.GET("/categories", middleware.RBACAuthorize(rbacService, rbac.ResourceCategory, rbac.ActionRead), handler.ListCategories)
		reimbursements.POST("/categories", middleware.RBACAuthorize(rbacService, rbac.ResourceCategory, rbac.ActionManage), handler.CreateCategory)
		reimbursements.PATCH("/categories/:id", middleware.RBACAuthorize(rbacService, rbac.ResourceCategory, rbac.ActionManage), handler.UpdateCategory)

		reimbursements.POST("/apply", middleware.RBACAuthorize(rbacService, rbac.ResourceReimbursement, rbac.ActionCreate), idempotency, handler.Apply)
		reimbursements.GET("/my", middleware.RBACAuthorize(rbacService, rbac.ResourceReimbursement, rbac.ActionRead), handler.ListMine)
		reimbursements.GET("/team", middleware.RBACAuthorize(rbacService, rbac.ResourceReimbursement, rbac.ActionReview), handler.ListVisible)
		reimbursements.GET("", middleware.RBACAuthorize(rbacService, rbac.ResourceReimbursement, rbac.ActionReadAll), handler.ListVisible)

		reimbursements.GET("/admin/stats", middleware.RBACAuthorize(rbacService, rbac.ResourceReimbursement, rbac.ActionAnalytics), handler.AdminStats)
		reimbursements.GET("/admin/categories", middleware.RBACAuthorize(rbacService, rbac.ResourceCategory, rbac.ActionManage), handler.ListAllCategories)

		reimbursements.GET("/:id", middleware.RBACAuthorize(rbacService, rbac.ResourceReimbursement, rbac.ActionRead), handler.GetByID)
		reimbursements.PATCH("/:id/action", middleware.RBACAuthorize(rbacService, rbac.ResourceReimbursement, rbac.ActionReview), handler.Review)
	}
}
