package http

import (
	"net/http"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/segmentio/encoding/json"
)

// ErrBadRequest is the reply for requests whose body cannot be decoded.
var ErrBadRequest = errors.New("bad request")

func HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func HandleReadyCheck(readinessCheck func() bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !readinessCheck() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

func HandleVersion(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(version))
	}
}

// HandleWithCORS decorates the given handler to accept cross-origin
// requests.
func HandleWithCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, "+HeaderClientID)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// BadRequest replies with a 400 status and a JSON error body.
func BadRequest(w http.ResponseWriter, err error) {
	replyWithError(w, http.StatusBadRequest, err)
}

// InternalServerError replies with a 500 status and a JSON error body.
func InternalServerError(w http.ResponseWriter, err error) {
	replyWithError(w, http.StatusInternalServerError, err)
}

func replyWithError(w http.ResponseWriter, statusCode int, err error) {
	logs.WithTag("status_code", statusCode).Warn(err)

	body, _ := json.Marshal(struct {
		Error string `json:"error"`
	}{
		Error: err.Error(),
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(body)
}
