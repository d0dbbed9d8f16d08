package handlers

import (
	"net/http"

	"github.com/mysupport/mysupport/pkg"
	"github.com/mysupport/mysupport/services"
)

type ContentHandler struct {
	contentService services.ContentService
}

func NewContentHandler(contentService services.ContentService) *ContentHandler {
	return &ContentHandler{contentService: contentService}
}

// Catalogue handles GET /api/content.
func (h *ContentHandler) Catalogue(w http.ResponseWriter, r *http.Request) {
	pkg.JSON(w, http.StatusOK, h.contentService.Catalogue())
}
