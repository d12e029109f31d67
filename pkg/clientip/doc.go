// Package clientip resolves the address of the HTTP client.
//
// Forwarding headers are only consulted when named as trusted, since any
// client can send them:
//
//	r.Use(clientip.Middleware("X-Forwarded-For", "X-Real-IP"))
package clientip
