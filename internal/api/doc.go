// Package api exposes the service's JSON endpoints (health and application
// info) behind request-id, access-log, panic-recovery, CORS and rate-limit
// middleware.
package api
