package handler

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/learnhub-io/learnhub-api/internal/models"
	"github.com/learnhub-io/learnhub-api/internal/service"
	appErrors "github.com/learnhub-io/learnhub-api/pkg/errors"
	"github.com/learnhub-io/learnhub-api/pkg/response"
)

// MaterialHandler exposes material management for instructor courses.
type MaterialHandler struct {
	materials   *service.MaterialService
	maxFileSize int64
}

// NewMaterialHandler constructs a material handler.
func NewMaterialHandler(materials *service.MaterialService, maxFileSize int64) *MaterialHandler {
	return &MaterialHandler{materials: materials, maxFileSize: maxFileSize}
}

// List godoc
// @Summary List course materials
// @Description Returns a course's materials ordered by position
// @Tags Materials
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /instructor/courses/{id}/materials [get]
func (h *MaterialHandler) List(c *gin.Context) {
	materials, err := h.materials.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, materials, nil)
}

// Create godoc
// @Summary Add course material
// @Description Add a material to an owned course, with an optional file upload
// @Tags Materials
// @Accept json
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Course ID"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Router /instructor/courses/{id}/materials [post]
func (h *MaterialHandler) Create(c *gin.Context) {
	profile := profileFromContext(c)
	if profile == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	req, upload, err := h.bindCreate(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	material, err := h.materials.Create(c.Request.Context(), c.Param("id"), req, upload, profile.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, material)
}

func (h *MaterialHandler) bindCreate(c *gin.Context) (service.CreateMaterialRequest, *service.FileUpload, error) {
	var req service.CreateMaterialRequest

	contentType := c.GetHeader("Content-Type")
	if !strings.HasPrefix(contentType, "multipart/form-data") {
		if err := c.ShouldBindJSON(&req); err != nil {
			return req, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid material payload")
		}
		return req, nil, nil
	}

	req.Title = c.PostForm("title")
	req.MaterialType = models.MaterialType(c.PostForm("material_type"))
	req.ContentText = c.PostForm("content_text")
	if raw := c.PostForm("is_free"); raw != "" {
		isFree, err := strconv.ParseBool(raw)
		if err != nil {
			return req, nil, appErrors.Clone(appErrors.ErrValidation, "is_free must be a boolean")
		}
		req.IsFree = isFree
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		if err == http.ErrMissingFile {
			return req, nil, nil
		}
		return req, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid file upload")
	}
	if h.maxFileSize > 0 && fileHeader.Size > h.maxFileSize {
		return req, nil, appErrors.ErrFileTooLarge
	}

	file, err := fileHeader.Open()
	if err != nil {
		return req, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open upload")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return req, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload")
	}

	return req, &service.FileUpload{Name: fileHeader.Filename, Data: data}, nil
}

// Delete godoc
// @Summary Delete material
// @Description Delete a material from one of the instructor's courses
// @Tags Materials
// @Produce json
// @Param id path string true "Material ID"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /instructor/materials/{id} [delete]
func (h *MaterialHandler) Delete(c *gin.Context) {
	profile := profileFromContext(c)
	if profile == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.materials.Delete(c.Request.Context(), c.Param("id"), profile.ID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Download godoc
// @Summary Resolve material download link
// @Description Returns the file link for a material; paid materials get a signed expiring link
// @Tags Materials
// @Produce json
// @Param id path string true "Material ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /materials/{id}/download [get]
func (h *MaterialHandler) Download(c *gin.Context) {
	link, err := h.materials.DownloadLink(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, link, nil)
}
