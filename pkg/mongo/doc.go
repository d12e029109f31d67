// Package mongo connects to MongoDB with the official v2 driver.
//
// Connect retries until the server answers a ping or the attempts run out,
// and Healthcheck adapts a client to the readiness probe signature used by
// the HTTP server. The audit trail is the only collection stored here.
package mongo
