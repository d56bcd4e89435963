package leave

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
	l := zap.L().Named("leave.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.handler")
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
	h.logger.Warn("leave request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) Apply(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	h.logger.Debug("http apply leave", zap.String("actor_id", p.ID))

	var req CreateLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("http apply leave validation failed", zap.Error(err))
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.Apply(c.Request.Context(), p, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) ListMine(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	resp, err := h.service.ListMine(c.Request.Context(), p)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	items, meta := response.Page(c, resp)
	response.Success(c, http.StatusOK, items, &meta)
}

func (h *Handler) ListTeam(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	resp, err := h.service.ListVisible(c.Request.Context(), p)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	items, meta := response.Page(c, resp)
	response.Success(c, http.StatusOK, items, &meta)
}

func (h *Handler) Stats(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	resp, err := h.service.Stats(c.Request.Context(), p)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetByID(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	resp, err := h.service.GetByID(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Cancel(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id := c.Param("id")

	if err := h.service.Cancel(c.Request.Context(), p, id); err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"id": id, "cancelled": true}, nil)
}

// Review takes the target status from the body.
func (h *Handler) Review(c *gin.Context) {
	var req ReviewLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("http review leave validation failed", zap.Error(err))
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}
	h.review(c, req)
}

func (h *Handler) Approve(c *gin.Context) {
	h.reviewAs(c, domain.StatusApproved)
}

func (h *Handler) Reject(c *gin.Context) {
	h.reviewAs(c, domain.StatusRejected)
}

// reviewAs accepts an optional body carrying only a comment.
func (h *Handler) reviewAs(c *gin.Context, status domain.Status) {
	var req ReviewLeaveRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.logger.Warn("http review leave validation failed", zap.Error(err))
			h.writeServiceError(c, apperror.MapValidationError(err))
			return
		}
	}
	req.Status = string(status)
	h.review(c, req)
}

func (h *Handler) review(c *gin.Context, req ReviewLeaveRequest) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	resp, err := h.service.Review(c.Request.Context(), p, c.Param("id"), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}
