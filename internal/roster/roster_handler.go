package roster

import (
	"net/http"

	"hr-portal/internal/domain"
	"hr-portal/internal/middleware"
	"hr-portal/internal/shared/apperror"
	"hr-portal/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("roster.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("roster.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) principal(c *gin.Context) (domain.Principal, bool) {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		response.Error(c, apperror.ErrUnauthorized.HTTPStatus, apperror.ErrUnauthorized.Code, apperror.ErrUnauthorized.Message, nil)
		return domain.Principal{}, false
	}
	return p, true
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("roster request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) Me(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	resp, err := h.service.Lookup(c.Request.Context(), p.ID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) ListUsers(c *gin.Context) {
	resp, err := h.service.ListUsers(c.Request.Context())
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	items, meta := response.Page(c, resp)
	response.Success(c, http.StatusOK, items, &meta)
}

func (h *Handler) UpdateUser(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id := c.Param("id")
	h.logger.Debug("http update user", zap.String("user_id", id), zap.String("actor_id", p.ID))

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.UpdateUser(c.Request.Context(), p, id, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) DeleteUser(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id := c.Param("id")

	if err := h.service.DeleteUser(c.Request.Context(), p, id); err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"id": id, "deleted": true}, nil)
}

func (h *Handler) CreditSalary(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id := c.Param("id")

	var req CreditSalaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.CreditSalary(c.Request.Context(), p, id, req.Amount.String())
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) SystemStats(c *gin.Context) {
	resp, err := h.service.SystemStats(c.Request.Context())
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}
