package middlewares

import (
	"net/http"

	"portal/internal/configuration"
	"portal/internal/helpers"

	"go.uber.org/zap"
)

// Guest keeps signed-in users away from the password reset pages: a request
// carrying a valid session cookie is sent to the home page.
func Guest(jwtSecret string, cookieName string, basePath string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := helpers.ParseSessionToken(jwtSecret, cookie.Value)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			helpers.GetLogger(r.Context()).Debug("Signed-in user sent away from guest page",
				zap.String("user_id", claims.UserID.String()))

			if helpers.WantsJSON(r) {
				helpers.RespondWithError(w, http.StatusForbidden, []string{"ALREADY_AUTHENTICATED"})
				return
			}
			http.Redirect(w, r, helpers.Handles(basePath, configuration.RouteHome), http.StatusFound)
		}
		return http.HandlerFunc(fn)
	}
}
