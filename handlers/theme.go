package handlers

import (
	"net/http"
	"strings"
)

// ToggleTheme flips the session theme and returns to current_page when it is
// a path on this site.
func ToggleTheme(w http.ResponseWriter, r *http.Request) {
	currentSession(r).ToggleTheme()
	target := r.URL.Query().Get("current_page")
	if !isLocalPath(target) {
		target = "/"
	}
	redirect(w, r, target)
}

func isLocalPath(p string) bool {
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.HasPrefix(p, "/\\") {
		return false
	}
	return !strings.ContainsAny(p, "\r\n")
}
