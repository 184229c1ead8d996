package resumes

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-studio/internal/extract"
	"resume-studio/internal/shared/server/middleware"
	"resume-studio/internal/shared/server/respond"
	"resume-studio/resume/export"
	"resume-studio/resume/model"
)

type Handler struct {
	Svc *Service
	// WriteUpstreamError maps parser failures during import; nil falls back to a 502.
	WriteUpstreamError func(c *gin.Context, err error)
}

func NewHandler(svc *Service, upstreamErrors func(c *gin.Context, err error)) *Handler {
	return &Handler{Svc: svc, WriteUpstreamError: upstreamErrors}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/resumes", h.list)
	rg.POST("/resumes", h.create)
	rg.POST("/resumes/import", h.importFile)
	rg.GET("/resumes/:id", h.get)
	rg.PUT("/resumes/:id", h.update)
	rg.DELETE("/resumes/:id", h.delete)
	rg.POST("/resumes/:id/duplicate", h.duplicate)
	rg.GET("/resumes/:id/export", h.export)
}

func (h *Handler) list(c *gin.Context) {
	limit, offset := respond.Pagination(c)
	items, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c), limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.List(c, items)
}

func (h *Handler) create(c *gin.Context) {
	var doc model.ResumeDocument
	if err := c.ShouldBindJSON(&doc); err != nil {
		respond.InvalidBody(c, err)
		return
	}
	out, err := h.Svc.Create(c.Request.Context(), middleware.UserIDFromContext(c), doc)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Set("resumeId", out.ID)
	respond.Created(c, out)
}

func (h *Handler) get(c *gin.Context) {
	c.Set("resumeId", c.Param("id"))
	doc, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, doc)
}

type updateRequest struct {
	Document model.ResumeDocument `json:"document"`
	Status   string               `json:"status"`
}

func (h *Handler) update(c *gin.Context) {
	c.Set("resumeId", c.Param("id"))
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.InvalidBody(c, err)
		return
	}
	var status model.Status
	if req.Status != "" {
		status = model.NormalizeStatus(req.Status)
	}
	doc, err := h.Svc.Update(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"), req.Document, status)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, doc)
}

func (h *Handler) delete(c *gin.Context) {
	c.Set("resumeId", c.Param("id"))
	if err := h.Svc.Delete(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	respond.NoContent(c)
}

func (h *Handler) duplicate(c *gin.Context) {
	c.Set("resumeId", c.Param("id"))
	doc, err := h.Svc.Duplicate(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.Created(c, doc)
}

func (h *Handler) export(c *gin.Context) {
	c.Set("resumeId", c.Param("id"))
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "format must be pdf, html or txt", gin.H{"format": c.Query("format")})
		return
	}
	art, err := h.Svc.Export(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"), format)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", art.FileName))
	c.Data(http.StatusOK, art.ContentType, art.Body)
}

func (h *Handler) importFile(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, extract.MaxUploadBytes+(1<<20))
	fh, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "multipart field \"file\" is required", nil)
		return
	}
	f, err := fh.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "cannot read upload", nil)
		return
	}
	defer f.Close()

	doc, err := h.Svc.Import(c.Request.Context(), middleware.UserIDFromContext(c), Upload{
		FileName:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Body:        f,
	})
	if err != nil {
		if !errors.Is(err, ErrInvalidInput) && h.WriteUpstreamError != nil {
			h.WriteUpstreamError(c, err)
			return
		}
		writeError(c, err)
		return
	}
	c.Set("resumeId", doc.ID)
	respond.Created(c, doc)
}

func writeError(c *gin.Context, err error) {
	var verr *model.ValidationError
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "resume not found", nil)
	case errors.As(err, &verr):
		respond.Error(c, http.StatusBadRequest, "validation_error", "resume failed validation", gin.H{"fields": verr.Fields})
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, export.ErrUnsupportedFormat):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "resume operation failed", nil)
	}
}
