// Package server provides HTTP routing, middleware, and the read-only
// upload status endpoints.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Status Endpoints
//
// [StatusHandler] serves the current status record for an upload id straight
// from the status store and, when history is available, recent upload rows:
//
//	GET /healthz       → liveness probe
//	GET /status/{id}   → current status record for one upload
//	GET /uploads       → recent upload history rows
//
// The endpoints are strictly read-only. Uploads are driven by the CLI and
// the watch loop, never over HTTP.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
