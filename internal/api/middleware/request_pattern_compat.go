//go:build !go1.23

package middleware

import "net/http"

// requestPattern returns the ServeMux pattern that matched the request.
// http.Request.Pattern does not exist before Go 1.23, so older toolchains
// report no pattern and callers fall back to the raw URL path.
func requestPattern(r *http.Request) string {
	return ""
}
