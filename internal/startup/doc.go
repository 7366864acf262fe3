// Package startup renders the human-readable trace logged once the service is
// up: application name, local and external URLs, active profiles and the
// config server status.
package startup
