// Package redis connects to Redis with github.com/redis/go-redis/v9. The
// key sync publisher uses the client for pub/sub fan-out to gateways.
package redis
