package http

import (
	"net/http"
	"strings"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"golang.org/x/net/websocket"
)

// VerifyAuthToken returns a WebSocket handshake guard that rejects
// connections not bearing the given token. An empty token leaves the
// endpoint open.
func VerifyAuthToken(authToken string) func(*websocket.Config, *http.Request) error {
	return func(c *websocket.Config, r *http.Request) error {
		if authToken == "" {
			return nil
		}

		if UserTokenFromRequest(r) != authToken {
			err := errors.New("mismatched auth token")
			logs.WithTag(logs.ClientIDTag, r.Header.Get(HeaderClientID)).Error(err)
			return err
		}

		return nil
	}
}

// VerifyAuthTokenHandler guards an HTTP endpoint the same way
// VerifyAuthToken guards the WebSocket handshake.
func VerifyAuthTokenHandler(authToken string, next http.HandlerFunc) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		if authToken != "" && UserTokenFromRequest(r) != authToken {
			logs.WithTag(logs.ClientIDTag, r.Header.Get(HeaderClientID)).
				Error(errors.New("mismatched auth token"))
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	}
}

// UserTokenFromRequest extracts the bearer token from the Authorization
// header.
func UserTokenFromRequest(r *http.Request) string {
	auth := r.Header.Get(HeaderAuthorization)
	if !strings.HasPrefix(auth, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(auth, "Bearer ")
}
