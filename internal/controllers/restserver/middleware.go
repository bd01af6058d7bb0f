package restserver

import (
	"net/http"
	"time"

	"github.com/uvmon/uvmon/internal/log"
)

// statusRecorder captures the response status and size for request logging
type statusRecorder struct {
	http.ResponseWriter
	status int
	size   int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	n, err := r.ResponseWriter.Write(b)
	r.size += n
	return n, err
}

// requestLogger logs one line per HTTP request
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, req)
		log.Debugf("%s %s %d %v %d bytes %s", req.Method, req.URL.Path, rec.status,
			time.Since(start), rec.size, req.RemoteAddr)
	})
}
