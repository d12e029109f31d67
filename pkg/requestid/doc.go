// Package requestid correlates log records of one HTTP request.
//
// Middleware reuses a well formed X-Request-ID header or generates a time
// ordered UUID, echoes it in the response and stores it in the request
// context. LogAttr plugs into logger.WithContextExtractors.
package requestid
