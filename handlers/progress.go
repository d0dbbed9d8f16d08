package handlers

import (
	"net/http"

	"github.com/mysupport/mysupport/pkg"
	"github.com/mysupport/mysupport/services"
)

type ProgressHandler struct {
	progressService services.ProgressService
}

func NewProgressHandler(progressService services.ProgressService) *ProgressHandler {
	return &ProgressHandler{progressService: progressService}
}

// Get handles GET /api/progress.
func (h *ProgressHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		pkg.Error(w, r, pkg.Localized(pkg.ErrUnauthorized, "auth.unauthorized"))
		return
	}

	progress, err := h.progressService.Get(r.Context(), user.ID)
	if err != nil {
		pkg.Error(w, r, err)
		return
	}

	pkg.JSON(w, http.StatusOK, progress)
}
