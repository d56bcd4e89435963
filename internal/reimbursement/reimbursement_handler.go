package reimbursement

import (
	"context"
	"errors"
	"net/http"

	"hr-portal/internal/blobstore"
	"hr-portal/internal/domain"
	"hr-portal/internal/middleware"
	reimbursementerrors "hr-portal/internal/reimbursement/errors"
	"hr-portal/internal/shared/apperror"
	"hr-portal/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	receiptField = "receipt"

	DefaultMaxUploadBytes int64 = 10 << 20
)

type Handler struct {
	service        Service
	categories     CategoryService
	receipts       blobstore.Store
	maxUploadBytes int64
	logger         *zap.Logger
}

func NewHandler(service Service, categories CategoryService, receipts blobstore.Store, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("reimbursement.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("reimbursement.handler")
	}
	return &Handler{
		service:        service,
		categories:     categories,
		receipts:       receipts,
		maxUploadBytes: DefaultMaxUploadBytes,
		logger:         l,
	}
}

// WithMaxUploadBytes caps multipart apply bodies. Non-positive keeps the default.
func (h *Handler) WithMaxUploadBytes(n int64) *Handler {
	if n > 0 {
		h.maxUploadBytes = n
	}
	return h
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
	h.logger.Warn("reimbursement request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

// Apply accepts JSON or a multipart form with an optional "receipt" file.
func (h *Handler) Apply(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	h.logger.Debug("http apply reimbursement", zap.String("actor_id", p.ID), zap.String("content_type", c.ContentType()))

	multipartForm := c.ContentType() == gin.MIMEMultipartPOSTForm
	if multipartForm {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}

	var req CreateReimbursementRequest
	if err := c.ShouldBind(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.logger.Warn("http apply reimbursement body too large", zap.Int64("limit", tooLarge.Limit))
			h.writeServiceError(c, reimbursementerrors.ErrReceiptTooLarge)
			return
		}
		h.logger.Warn("http apply reimbursement validation failed", zap.Error(err))
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	receiptRef := ""
	if multipartForm {
		ref, err := h.storeReceipt(c)
		if err != nil {
			h.logger.Error("http apply reimbursement receipt failed", zap.Error(err))
			h.writeServiceError(c, reimbursementerrors.ErrReceiptUpload)
			return
		}
		receiptRef = ref
	}

	resp, err := h.service.Apply(c.Request.Context(), p, req, receiptRef)
	if err != nil {
		h.discardReceipt(c, receiptRef)
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) storeReceipt(c *gin.Context) (string, error) {
	fh, err := c.FormFile(receiptField)
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if h.receipts == nil {
		return "", errors.New("no receipt store configured")
	}
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	return h.receipts.Put(c.Request.Context(), fh.Filename, f)
}

// discardReceipt removes a receipt stored for a claim that was not created.
func (h *Handler) discardReceipt(c *gin.Context, ref string) {
	if ref == "" || h.receipts == nil {
		return
	}
	if err := h.receipts.Delete(context.WithoutCancel(c.Request.Context()), ref); err != nil {
		h.logger.Warn("discard orphan receipt failed", zap.String("ref", ref), zap.Error(err))
	}
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

// ListVisible serves both /team and the admin listing; the resolver decides
// the rows.
func (h *Handler) ListVisible(c *gin.Context) {
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

func (h *Handler) Review(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	var req ReviewReimbursementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("http review reimbursement validation failed", zap.Error(err))
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.Review(c.Request.Context(), p, c.Param("id"), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) AdminStats(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	resp, err := h.service.AdminStats(c.Request.Context(), p)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) ListCategories(c *gin.Context) {
	resp, err := h.categories.ListActive(c.Request.Context())
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) ListAllCategories(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	resp, err := h.categories.ListAll(c.Request.Context(), p)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) CreateCategory(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.categories.Create(c.Request.Context(), p, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) UpdateCategory(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	var req UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.categories.Update(c.Request.Context(), p, c.Param("id"), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}
