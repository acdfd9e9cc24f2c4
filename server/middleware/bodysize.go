package middleware

import (
	"net/http"

	"github.com/kbukum/whisperbridge/util"
)

// DefaultMaxBodySize fits about five minutes of 16 kHz float32 PCM encoded
// as JSON numbers.
const DefaultMaxBodySize = 256 * 1024 * 1024

// BodySizeLimit restricts request bodies to maxSize ("64MB", "512KB").
func BodySizeLimit(maxSize string) Middleware {
	size := util.ParseSize(maxSize, DefaultMaxBodySize)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, size)
			next.ServeHTTP(w, r)
		})
	}
}
