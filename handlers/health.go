package handlers

import (
	"net/http"

	"github.com/mysupport/mysupport/pkg"
)

// Health handles GET /api/health.
func Health(w http.ResponseWriter, r *http.Request) {
	pkg.JSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "mysupport"})
}
