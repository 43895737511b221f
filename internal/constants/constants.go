package constants

import "time"

// Context keys set by middleware
const (
	ContextKeyUserID    = "user_id"
	ContextKeyUser      = "user"
	ContextKeyRequestID = "request_id"
)

const (
	// HeaderRequestID carries the request id in and out of the API
	HeaderRequestID = "X-Request-ID"

	// DefaultTokenTTL is the lifetime of an issued bearer token
	DefaultTokenTTL = 7 * 24 * time.Hour

	// DefaultPurgeConcurrency bounds parallel deletes during a bulk purge
	DefaultPurgeConcurrency = 8
)
