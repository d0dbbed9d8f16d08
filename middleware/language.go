package middleware

import (
	"net/http"

	"github.com/mysupport/mysupport/pkg/i18n"
)

// Language attaches an i18n.Localizer for the Accept-Language header.
func Language(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang := i18n.DetectLanguage(r.Header.Get("Accept-Language"))
		ctx := i18n.WithLocalizer(r.Context(), i18n.NewLocalizer(lang))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
