// Package application provides application initialization and dependency wiring.
// It encapsulates the creation of handlers, routers, the Swagger UI mount and
// the HTTP server, and logs the startup trace once the server is listening,
// keeping the main package focused on CLI parsing and orchestration.
package application
