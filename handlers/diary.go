package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/mysupport/mysupport/models"
	"github.com/mysupport/mysupport/pkg"
	"github.com/mysupport/mysupport/services"
)

type DiaryHandler struct {
	diaryService services.DiaryService
}

func NewDiaryHandler(diaryService services.DiaryService) *DiaryHandler {
	return &DiaryHandler{diaryService: diaryService}
}

// List handles GET /api/diary.
func (h *DiaryHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		pkg.Error(w, r, pkg.Localized(pkg.ErrUnauthorized, "auth.unauthorized"))
		return
	}

	entries, err := h.diaryService.List(r.Context(), user.ID)
	if err != nil {
		pkg.Error(w, r, err)
		return
	}

	pkg.JSON(w, http.StatusOK, models.DiaryListResponse{Entries: entries})
}

// Create handles POST /api/diary.
func (h *DiaryHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		pkg.Error(w, r, pkg.Localized(pkg.ErrUnauthorized, "auth.unauthorized"))
		return
	}

	var req models.CreateDiaryEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.Error(w, r, pkg.Localized(pkg.ErrBadRequest, "errors.invalidBody"))
		return
	}

	resp, err := h.diaryService.Create(r.Context(), user.ID, &req)
	if err != nil {
		pkg.Error(w, r, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, resp)
}
