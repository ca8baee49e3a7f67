package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/learnhub-io/learnhub-api/internal/service"
	"github.com/learnhub-io/learnhub-api/pkg/response"
)

// CatalogHandler serves the public marketing endpoints.
type CatalogHandler struct {
	catalog *service.CatalogService
}

// NewCatalogHandler constructs a catalog handler.
func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// Featured godoc
// @Summary Featured courses
// @Description Returns the curated featured course rail for the landing page
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /catalog/featured [get]
func (h *CatalogHandler) Featured(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.catalog.Featured(), nil)
}

// Published godoc
// @Summary Published courses
// @Description Returns every published course, newest first
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /catalog/courses [get]
func (h *CatalogHandler) Published(c *gin.Context) {
	courses, err := h.catalog.Published(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, nil)
}

// Stats godoc
// @Summary Platform stats
// @Description Returns headline numbers for the marketing pages
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /catalog/stats [get]
func (h *CatalogHandler) Stats(c *gin.Context) {
	stats, err := h.catalog.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}
