package validators

import (
	"net/http"
	"strconv"
	"strings"
)

// ParseQueryInt reads an integer query parameter, returning fallback for
// missing or malformed values.
func ParseQueryInt(r *http.Request, name string, fallback int) int {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
