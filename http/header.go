package http

// Headers recognized across raido endpoints.
const (
	// HeaderClientID carries the caller-chosen id used to correlate logs
	// across requests and connections.
	HeaderClientID = "X-Raido-Client-Id"

	HeaderAuthorization = "Authorization"
	HeaderXForwardedFor = "X-Forwarded-For"
)
