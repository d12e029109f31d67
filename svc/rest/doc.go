// Package rest exposes the subscription and API key managers over HTTP.
//
// Every request builds a domain.Actor from the X-User-ID,
// X-Environment-ID, X-Role and X-Groups headers. Errors are answered as
//
//	{"error": "subscriptionNotFound", "message": "subscription not found"}
//
// with 404 for missing records, 409 for conflicting state, 400 for other
// lifecycle violations and malformed input, and 500 for infrastructure
// faults.
package rest
