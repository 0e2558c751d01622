package middleware

import (
	"net/http"
	"os"
	"strconv"
	"strings"
)

// MaxBodyMiddleware enforces a maximum request body size read from env var MAX_BODY_BYTES (in bytes)
// default is 1<<20 (1 MiB)
func MaxBodyMiddleware(next http.Handler) http.Handler {
	max := int64(1 << 20) // 1 MiB default
	if s := os.Getenv("MAX_BODY_BYTES"); s != "" {
		if v, err := strconv.ParseInt(s, 10, 64); err == nil && v > 0 {
			max = v
		}
	}

	// media uploads carry multipart bodies well past the JSON limit
	maxUpload := int64(30 << 20)
	if s := os.Getenv("MAX_UPLOAD_BYTES"); s != "" {
		if v, err := strconv.ParseInt(s, 10, 64); err == nil && v > 0 {
			maxUpload = v
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limit := max
		if strings.HasPrefix(r.URL.Path, "/api/media") {
			limit = maxUpload
		}
		// apply MaxBytesReader to limit request body size
		r.Body = http.MaxBytesReader(w, r.Body, limit)
		// call handler
		next.ServeHTTP(w, r)
	})
}
