//go:build go1.23

package middleware

import "net/http"

// requestPattern returns the ServeMux pattern that matched the request.
func requestPattern(r *http.Request) string {
	return r.Pattern
}
